package dataset

import "fmt"

// Validation failure kinds. Validation errors are caller errors and are
// reported before any disk activity.
const (
	MissingField = "missing_field"
	EmptyPayload = "empty_payload"
)

// Storage failure kinds.
const (
	DirectoryCreateFailed = "directory_create_failed"
	WriteFailed           = "write_failed"
	ShortWrite            = "short_write"
	NameAllocationFailed  = "name_allocation_failed"
)

type ValidationError struct {
	Kind  string
	Field string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	}
	return e.Kind
}

type StorageError struct {
	Kind string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Path)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
