package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Entry is the catalog record for one persisted sample. The file on
// disk is the source of truth; the catalog is a read-optimized index
// for listing and stats.
type Entry struct {
	ID        string    `json:"id"`
	Mode      string    `json:"mode"`
	Speaker   string    `json:"speaker,omitempty"`
	Category  string    `json:"category,omitempty"`
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

type SpeakerSummary struct {
	Speaker string `json:"speaker"`
	Samples int    `json:"samples"`
	Bytes   int64  `json:"bytes"`
}

type Stats struct {
	TrainingCount    int   `json:"training_count"`
	RecognitionCount int   `json:"recognition_count"`
	Speakers         int   `json:"speakers"`
	TotalBytes       int64 `json:"total_bytes"`
}

func NewID() string {
	return uuid.NewString()
}
