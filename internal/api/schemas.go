package api

import (
	"time"

	"github.com/soundvault/soundvault-agent/internal/catalog"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type UploadResponse struct {
	Status    string `json:"status"`
	Mode      string `json:"mode"`
	Speaker   string `json:"speaker,omitempty"`
	Category  string `json:"category,omitempty"`
	Filename  string `json:"filename"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type EntryResponse struct {
	ID        string `json:"id"`
	Mode      string `json:"mode"`
	Speaker   string `json:"speaker,omitempty"`
	Category  string `json:"category,omitempty"`
	Filename  string `json:"filename"`
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	CreatedAt string `json:"created_at"`
}

type EntriesResponse struct {
	Entries []EntryResponse `json:"entries"`
}

type SpeakerResponse struct {
	Speaker string `json:"speaker"`
	Samples int    `json:"samples"`
	Bytes   int64  `json:"bytes"`
}

type SpeakersResponse struct {
	Speakers []SpeakerResponse `json:"speakers"`
}

type StatsResponse struct {
	TrainingCount    int   `json:"training_count"`
	RecognitionCount int   `json:"recognition_count"`
	Speakers         int   `json:"speakers"`
	TotalBytes       int64 `json:"total_bytes"`
}

func EntryToResponse(e *catalog.Entry) EntryResponse {
	return EntryResponse{
		ID:        e.ID,
		Mode:      e.Mode,
		Speaker:   e.Speaker,
		Category:  e.Category,
		Filename:  e.Filename,
		Path:      e.Path,
		Size:      e.Size,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}
