package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/soundvault/soundvault-agent/internal/dataset"
)

// Text fields in a multipart upload are small; anything longer is
// truncated rather than buffered.
const maxFieldBytes = 1024

// trainingUploadHandler accepts a multipart form with "speaker",
// "category" (or its legacy alias "label") and "file" parts. The file
// part is streamed straight into the dataset store, so text fields must
// precede it in the form - which is how browser FormData serializes.
func trainingUploadHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes)

		mr, err := r.MultipartReader()
		if err != nil {
			WriteError(w, http.StatusBadRequest, "expected multipart/form-data", "BAD_REQUEST")
			return
		}

		var speaker, category string
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				WriteError(w, http.StatusBadRequest, "malformed multipart body", "BAD_REQUEST")
				return
			}

			switch part.FormName() {
			case "speaker":
				speaker = readField(part)
			case "category", "label":
				category = readField(part)
			case "file":
				entry, err := cfg.Store.Ingest(r.Context(), dataset.Request{
					Mode:     dataset.ModeTraining,
					Speaker:  speaker,
					Category: category,
					Payload:  part,
					SizeHint: -1,
				})
				part.Close()
				if err != nil {
					writeIngestError(w, err)
					return
				}
				recordEntry(cfg, r, entry)
				writeUploadResponse(w, entry)
				return
			default:
				part.Close()
			}
		}

		WriteError(w, http.StatusBadRequest, "file part is required", "EMPTY_PAYLOAD")
	}
}

// recognitionUploadHandler accepts a multipart form with a "file" part
// and an optional "label" tag. The part's client-supplied filename is
// kept for traceability after sanitization; it never selects the target
// directory.
func recognitionUploadHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes)

		mr, err := r.MultipartReader()
		if err != nil {
			WriteError(w, http.StatusBadRequest, "expected multipart/form-data", "BAD_REQUEST")
			return
		}

		var tag string
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				WriteError(w, http.StatusBadRequest, "malformed multipart body", "BAD_REQUEST")
				return
			}

			switch part.FormName() {
			case "label":
				tag = readField(part)
			case "file":
				entry, err := cfg.Store.Ingest(r.Context(), dataset.Request{
					Mode:         dataset.ModeRecognition,
					Category:     tag,
					OriginalName: part.FileName(),
					Payload:      part,
					SizeHint:     -1,
				})
				part.Close()
				if err != nil {
					writeIngestError(w, err)
					return
				}
				recordEntry(cfg, r, entry)
				writeUploadResponse(w, entry)
				return
			default:
				part.Close()
			}
		}

		WriteError(w, http.StatusBadRequest, "file part is required", "EMPTY_PAYLOAD")
	}
}

func readField(part io.ReadCloser) string {
	defer part.Close()
	data, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
	if err != nil {
		return ""
	}
	return string(data)
}

// recordEntry indexes the persisted sample in the catalog. The file on
// disk is the source of truth, so an index failure downgrades to a
// warning instead of failing an upload that already succeeded.
func recordEntry(cfg ServerConfig, r *http.Request, entry *dataset.Entry) {
	if cfg.Catalog == nil {
		return
	}
	if _, err := cfg.Catalog.RecordEntry(r.Context(), entry); err != nil {
		requestID, _ := r.Context().Value(RequestIDKey).(string)
		cfg.Logger.Warn("failed to index entry",
			"error", err,
			"filename", entry.Filename,
			"request_id", requestID,
		)
	}
}

func writeUploadResponse(w http.ResponseWriter, entry *dataset.Entry) {
	WriteJSON(w, http.StatusCreated, UploadResponse{
		Status:    "success",
		Mode:      string(entry.Mode),
		Speaker:   entry.Speaker,
		Category:  entry.Category,
		Filename:  entry.Filename,
		Path:      entry.Path,
		SizeBytes: entry.Size,
	})
}

func writeIngestError(w http.ResponseWriter, err error) {
	var verr *dataset.ValidationError
	if errors.As(err, &verr) {
		WriteError(w, http.StatusBadRequest, verr.Error(), strings.ToUpper(verr.Kind))
		return
	}

	var serr *dataset.StorageError
	if errors.As(err, &serr) {
		WriteError(w, http.StatusInternalServerError, serr.Error(), strings.ToUpper(serr.Kind))
		return
	}

	WriteError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
