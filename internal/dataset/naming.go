package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	timestampLayout   = "20060102_150405"
	recognitionPrefix = "sample"

	// Upper bound on same-second collisions for one base name before
	// allocation gives up.
	maxNameAttempts = 1000
)

// baseName derives the human-traceable filename stem for a request:
// <category>_<timestamp> for training, and for recognition a fixed
// prefix plus the sanitized original name when the client supplied one.
func baseName(req Request, at time.Time) string {
	ts := at.Format(timestampLayout)
	if req.Mode == ModeTraining {
		return req.Category + "_" + ts
	}
	if name := trimExtension(req.OriginalName); name != "" {
		return recognitionPrefix + "_" + ts + "_" + name
	}
	return recognitionPrefix + "_" + ts
}

func trimExtension(name string) string {
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

// claim atomically allocates the first free filename derived from base
// inside dir and returns the opened file. O_EXCL makes the
// check-and-claim atomic across concurrent writers targeting the same
// directory: the timestamp resolution is one second, so simultaneous
// requests can compute identical bases, and the loser of the create
// race moves on to the next numeric suffix. An existing entry is never
// overwritten.
func (s *Store) claim(dir, base string) (*os.File, string, error) {
	for i := 0; i < maxNameAttempts; i++ {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s_%d", base, i)
		}
		name += s.ext

		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", &StorageError{Kind: WriteFailed, Path: path, Err: err}
		}
	}
	return nil, "", &StorageError{Kind: NameAllocationFailed, Path: filepath.Join(dir, base+s.ext)}
}
