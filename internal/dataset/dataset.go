// Package dataset implements the ingestion core: it validates incoming
// sample requests, resolves their target directory, allocates a
// collision-free filename and streams the payload to disk. Training and
// recognition samples live in separate subtrees and never mix.
package dataset

import (
	"io"
	"time"
)

// Mode says which population a sample belongs to. It is fixed by the
// operation the caller invoked, never by a client-supplied field.
type Mode string

const (
	ModeTraining    Mode = "training"
	ModeRecognition Mode = "recognition"
)

// Request is one ingestion attempt. It is ephemeral: it exists only for
// the duration of a single Ingest call and produces at most one file.
type Request struct {
	Mode     Mode
	Speaker  string
	Category string

	// OriginalName is the client-supplied filename, used only for
	// recognition-mode traceability. Untrusted input; sanitized before
	// it reaches filename derivation.
	OriginalName string

	Payload io.Reader

	// SizeHint is the declared payload length in bytes, or -1 when the
	// length is not known up front (e.g. a multipart stream).
	SizeHint int64
}

// Entry describes one persisted sample. Entries are immutable; the
// store never re-opens a path once written.
type Entry struct {
	Path      string    `json:"path"`
	Filename  string    `json:"filename"`
	Mode      Mode      `json:"mode"`
	Speaker   string    `json:"speaker,omitempty"`
	Category  string    `json:"category,omitempty"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}
