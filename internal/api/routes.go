package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/soundvault/soundvault-agent/internal/catalog"
	"github.com/soundvault/soundvault-agent/internal/config"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", healthHandler(cfg))

	r.Post("/uploads/training", trainingUploadHandler(cfg))
	r.Post("/uploads/recognition", recognitionUploadHandler(cfg))

	r.Get("/dataset/entries", listEntriesHandler(cfg))
	r.Get("/dataset/speakers", listSpeakersHandler(cfg))
	r.Get("/dataset/stats", statsHandler(cfg))

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: config.Version,
			UptimeS: uptime,
		})
	}
}

func listEntriesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := catalog.ListFilter{
			Mode:    r.URL.Query().Get("mode"),
			Speaker: r.URL.Query().Get("speaker"),
		}
		if l := r.URL.Query().Get("limit"); l != "" {
			limit, err := strconv.Atoi(l)
			if err != nil || limit < 1 {
				WriteError(w, http.StatusBadRequest, "invalid limit", "BAD_REQUEST")
				return
			}
			filter.Limit = limit
		}

		entries, err := cfg.Catalog.GetEntries(r.Context(), filter)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list entries", "INTERNAL_ERROR")
			return
		}

		resp := EntriesResponse{Entries: make([]EntryResponse, len(entries))}
		for i, e := range entries {
			resp.Entries[i] = EntryToResponse(e)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func listSpeakersHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		speakers, err := cfg.Catalog.GetSpeakers(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list speakers", "INTERNAL_ERROR")
			return
		}

		resp := SpeakersResponse{Speakers: make([]SpeakerResponse, len(speakers))}
		for i, s := range speakers {
			resp.Speakers[i] = SpeakerResponse{Speaker: s.Speaker, Samples: s.Samples, Bytes: s.Bytes}
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func statsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := cfg.Catalog.GetStats(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to compute stats", "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, StatsResponse{
			TrainingCount:    stats.TrainingCount,
			RecognitionCount: stats.RecognitionCount,
			Speakers:         stats.Speakers,
			TotalBytes:       stats.TotalBytes,
		})
	}
}
