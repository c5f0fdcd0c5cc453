package dataset

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	trainingDir    = "training"
	recognitionDir = "recognition"
)

// Store persists samples under a configured dataset root. It holds no
// per-request state and is safe for concurrent use; the filesystem is
// the only shared resource, and the exclusive-create filename claim is
// the only cross-writer synchronization point.
type Store struct {
	root   string
	ext    string
	logger *slog.Logger
	now    func() time.Time
}

type StoreConfig struct {
	// Root is the dataset root directory. Provisioned at construction;
	// a root that cannot be created or written is a fatal configuration
	// error, not a per-request one.
	Root string

	// Extension is the audio container extension samples are stored
	// with, e.g. ".wav". The store never inspects payload bytes.
	Extension string

	Logger *slog.Logger

	// Now overrides the receive-time clock. Tests only.
	Now func() time.Time
}

func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("dataset root is required")
	}
	ext := cfg.Extension
	if ext == "" {
		ext = ".wav"
	}

	for _, sub := range []string{trainingDir, recognitionDir} {
		if err := os.MkdirAll(filepath.Join(cfg.Root, sub), 0755); err != nil {
			return nil, fmt.Errorf("failed to provision dataset dir %s: %w", sub, err)
		}
	}

	probe, err := os.CreateTemp(cfg.Root, ".probe-*")
	if err != nil {
		return nil, fmt.Errorf("dataset root is not writable: %w", err)
	}
	probe.Close()
	os.Remove(probe.Name())

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Store{
		root:   cfg.Root,
		ext:    ext,
		logger: cfg.Logger,
		now:    now,
	}, nil
}

// Root returns the dataset root directory.
func (s *Store) Root() string {
	return s.root
}

// Ingest validates req and persists its payload as a new entry. At most
// one file is created; on any failure zero files remain. The payload is
// streamed to disk, never buffered whole in memory.
func (s *Store) Ingest(ctx context.Context, req Request) (*Entry, error) {
	req, err := Validate(req)
	if err != nil {
		return nil, err
	}

	payload := req.Payload
	if req.SizeHint < 0 {
		// Length unknown: peek one byte so an empty stream is rejected
		// before any directory or file is created.
		br := bufio.NewReader(payload)
		if _, err := br.Peek(1); err != nil {
			if err == io.EOF {
				return nil, &ValidationError{Kind: EmptyPayload, Field: "payload"}
			}
			return nil, &StorageError{Kind: WriteFailed, Err: err}
		}
		payload = br
	}

	dir := s.resolveDir(req)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &StorageError{Kind: DirectoryCreateFailed, Path: dir, Err: err}
	}

	receivedAt := s.now()
	f, name, err := s.claim(dir, baseName(req, receivedAt))
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, name)

	written, err := io.Copy(f, &contextReader{ctx: ctx, r: payload})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, &StorageError{Kind: WriteFailed, Path: path, Err: err}
	}
	if req.SizeHint >= 0 && written != req.SizeHint {
		os.Remove(path)
		return nil, &StorageError{
			Kind: ShortWrite,
			Path: path,
			Err:  fmt.Errorf("wrote %d of %d bytes", written, req.SizeHint),
		}
	}

	if s.logger != nil {
		s.logger.Info("sample stored",
			"mode", req.Mode,
			"speaker", req.Speaker,
			"category", req.Category,
			"filename", name,
			"size", written,
		)
	}

	return &Entry{
		Path:      path,
		Filename:  name,
		Mode:      req.Mode,
		Speaker:   req.Speaker,
		Category:  req.Category,
		Size:      written,
		CreatedAt: receivedAt,
	}, nil
}

// resolveDir maps a validated request to its target directory. Training
// samples get one directory per speaker; recognition samples share a
// single flat pool with no speaker attribution, so training-side
// readers scanning root/training never see them.
func (s *Store) resolveDir(req Request) string {
	if req.Mode == ModeTraining {
		return filepath.Join(s.root, trainingDir, req.Speaker)
	}
	return filepath.Join(s.root, recognitionDir)
}

// contextReader fails the copy when the caller aborts mid-transfer, so
// the partial file is removed instead of lingering half-written.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
