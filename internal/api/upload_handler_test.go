package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/soundvault/soundvault-agent/internal/catalog"
	"github.com/soundvault/soundvault-agent/internal/dataset"
)

type fakeCatalog struct {
	recorded  []*catalog.Entry
	recordErr error
}

func (f *fakeCatalog) RecordEntry(ctx context.Context, de *dataset.Entry) (*catalog.Entry, error) {
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	entry := &catalog.Entry{
		ID:        catalog.NewID(),
		Mode:      string(de.Mode),
		Speaker:   de.Speaker,
		Category:  de.Category,
		Filename:  de.Filename,
		Path:      de.Path,
		Size:      de.Size,
		CreatedAt: de.CreatedAt,
	}
	f.recorded = append(f.recorded, entry)
	return entry, nil
}

func (f *fakeCatalog) GetEntries(ctx context.Context, filter catalog.ListFilter) ([]*catalog.Entry, error) {
	return f.recorded, nil
}

func (f *fakeCatalog) GetSpeakers(ctx context.Context) ([]*catalog.SpeakerSummary, error) {
	return nil, nil
}

func (f *fakeCatalog) GetStats(ctx context.Context) (*catalog.Stats, error) {
	return &catalog.Stats{}, nil
}

func testServerConfig(t *testing.T) (ServerConfig, *fakeCatalog) {
	t.Helper()

	store, err := dataset.NewStore(dataset.StoreConfig{
		Root: filepath.Join(t.TempDir(), "dataset"),
		Now: func() time.Time {
			return time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
		},
	})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	fake := &fakeCatalog{}
	return ServerConfig{
		Port:           0,
		Store:          store,
		Catalog:        fake,
		MaxUploadBytes: 4 * 1024 * 1024,
		AllowedOrigins: []string{"*"},
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		StartTime:      time.Now(),
	}, fake
}

func multipartBody(t *testing.T, fields map[string]string, fileName string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			t.Fatalf("WriteField(%s) error = %v", name, err)
		}
	}
	if fileData != nil {
		fw, err := w.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("CreateFormFile() error = %v", err)
		}
		if _, err := fw.Write(fileData); err != nil {
			t.Fatalf("writing file part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func decodeJSONBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return body
}

func TestTrainingUpload_Success(t *testing.T) {
	cfg, fake := testServerConfig(t)
	payload := bytes.Repeat([]byte{0xAB}, 512)

	body, contentType := multipartBody(t, map[string]string{
		"speaker":  "alice",
		"category": "keyboard",
	}, "clip.wav", payload)

	req := httptest.NewRequest(http.MethodPost, "/uploads/training", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	trainingUploadHandler(cfg).ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeJSONBody(t, rr)
	if resp["status"] != "success" {
		t.Errorf("status field = %v", resp["status"])
	}
	if resp["filename"] != "keyboard_20240101_100000.wav" {
		t.Errorf("filename = %v", resp["filename"])
	}
	if resp["size_bytes"].(float64) != 512 {
		t.Errorf("size_bytes = %v, want 512", resp["size_bytes"])
	}

	path, _ := resp["path"].(string)
	wantDir := filepath.Join(cfg.Store.Root(), "training", "alice")
	if filepath.Dir(path) != wantDir {
		t.Errorf("path = %q, want under %q", path, wantDir)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading persisted file: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Error("persisted bytes differ from upload")
	}

	if len(fake.recorded) != 1 {
		t.Fatalf("catalog recorded %d entries, want 1", len(fake.recorded))
	}
	if fake.recorded[0].Speaker != "alice" {
		t.Errorf("catalog speaker = %q", fake.recorded[0].Speaker)
	}
}

func TestTrainingUpload_MissingSpeaker(t *testing.T) {
	cfg, fake := testServerConfig(t)

	body, contentType := multipartBody(t, map[string]string{
		"category": "keyboard",
	}, "clip.wav", []byte("audio"))

	req := httptest.NewRequest(http.MethodPost, "/uploads/training", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	trainingUploadHandler(cfg).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	resp := decodeJSONBody(t, rr)
	if resp["code"] != "MISSING_FIELD" {
		t.Errorf("code = %v, want MISSING_FIELD", resp["code"])
	}

	entries, err := os.ReadDir(filepath.Join(cfg.Store.Root(), "training"))
	if err != nil {
		t.Fatalf("reading training dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("training dir has %d entries after rejected upload", len(entries))
	}
	if len(fake.recorded) != 0 {
		t.Errorf("catalog recorded %d entries after rejected upload", len(fake.recorded))
	}
}

func TestTrainingUpload_LabelAlias(t *testing.T) {
	cfg, _ := testServerConfig(t)

	body, contentType := multipartBody(t, map[string]string{
		"speaker": "alice",
		"label":   "keyboard",
	}, "clip.wav", []byte("audio"))

	req := httptest.NewRequest(http.MethodPost, "/uploads/training", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	trainingUploadHandler(cfg).ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, http.StatusCreated, rr.Body.String())
	}
	resp := decodeJSONBody(t, rr)
	if resp["category"] != "keyboard" {
		t.Errorf("category = %v, want keyboard", resp["category"])
	}
}

func TestTrainingUpload_NoFilePart(t *testing.T) {
	cfg, _ := testServerConfig(t)

	body, contentType := multipartBody(t, map[string]string{
		"speaker":  "alice",
		"category": "keyboard",
	}, "", nil)

	req := httptest.NewRequest(http.MethodPost, "/uploads/training", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	trainingUploadHandler(cfg).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	resp := decodeJSONBody(t, rr)
	if resp["code"] != "EMPTY_PAYLOAD" {
		t.Errorf("code = %v, want EMPTY_PAYLOAD", resp["code"])
	}
}

func TestTrainingUpload_NotMultipart(t *testing.T) {
	cfg, _ := testServerConfig(t)

	req := httptest.NewRequest(http.MethodPost, "/uploads/training", strings.NewReader(`{"speaker":"alice"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	trainingUploadHandler(cfg).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestRecognitionUpload_Success(t *testing.T) {
	cfg, fake := testServerConfig(t)

	body, contentType := multipartBody(t, nil, "clip.wav", []byte("audio"))

	req := httptest.NewRequest(http.MethodPost, "/uploads/recognition", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	recognitionUploadHandler(cfg).ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeJSONBody(t, rr)
	if resp["mode"] != "recognition" {
		t.Errorf("mode = %v", resp["mode"])
	}
	path, _ := resp["path"].(string)
	if filepath.Dir(path) != filepath.Join(cfg.Store.Root(), "recognition") {
		t.Errorf("path = %q, want under recognition pool", path)
	}
	if len(fake.recorded) != 1 || fake.recorded[0].Speaker != "" {
		t.Errorf("catalog record = %+v, want unattributed entry", fake.recorded)
	}
}

func TestRecognitionUpload_TraversalFilename(t *testing.T) {
	cfg, _ := testServerConfig(t)

	body, contentType := multipartBody(t, nil, "../../etc/passwd", []byte("audio"))

	req := httptest.NewRequest(http.MethodPost, "/uploads/recognition", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	recognitionUploadHandler(cfg).ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeJSONBody(t, rr)
	filename, _ := resp["filename"].(string)
	if strings.Contains(filename, "..") || strings.ContainsAny(filename, "/\\") {
		t.Errorf("filename %q contains traversal sequence", filename)
	}
	path, _ := resp["path"].(string)
	if filepath.Dir(path) != filepath.Join(cfg.Store.Root(), "recognition") {
		t.Errorf("path %q escaped the recognition pool", path)
	}
}

func TestUpload_CatalogFailureDoesNotFailUpload(t *testing.T) {
	cfg, fake := testServerConfig(t)
	fake.recordErr = os.ErrClosed

	body, contentType := multipartBody(t, map[string]string{
		"speaker":  "alice",
		"category": "keyboard",
	}, "clip.wav", []byte("audio"))

	req := httptest.NewRequest(http.MethodPost, "/uploads/training", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	trainingUploadHandler(cfg).ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d despite catalog failure", rr.Code, http.StatusCreated)
	}
}
