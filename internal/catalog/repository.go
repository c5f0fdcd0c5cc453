package catalog

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

type ListFilter struct {
	Mode    string
	Speaker string
	Limit   int
}

type Repository interface {
	CreateEntry(ctx context.Context, entry *Entry) error
	GetEntry(ctx context.Context, id string) (*Entry, error)
	ListEntries(ctx context.Context, filter ListFilter) ([]*Entry, error)
	CountByMode(ctx context.Context, mode string) (int, error)
	ListSpeakers(ctx context.Context) ([]*SpeakerSummary, error)
	TotalBytes(ctx context.Context) (int64, error)
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateEntry(ctx context.Context, e *Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO entries (id, mode, speaker, category, filename, path, size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Mode, nullString(e.Speaker), nullString(e.Category), e.Filename, e.Path, e.Size, e.CreatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetEntry(ctx context.Context, id string) (*Entry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, mode, speaker, category, filename, path, size, created_at
		FROM entries WHERE id = ?
	`, id)

	e, err := scanEntry(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func (r *SQLiteRepository) ListEntries(ctx context.Context, f ListFilter) ([]*Entry, error) {
	q := `
		SELECT id, mode, speaker, category, filename, path, size, created_at
		FROM entries
	`
	var conds []string
	var args []interface{}
	if f.Mode != "" {
		conds = append(conds, "mode = ?")
		args = append(args, f.Mode)
	}
	if f.Speaker != "" {
		conds = append(conds, "speaker = ?")
		args = append(args, f.Speaker)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC, id"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *SQLiteRepository) CountByMode(ctx context.Context, mode string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries WHERE mode = ?", mode).Scan(&count)
	return count, err
}

func (r *SQLiteRepository) ListSpeakers(ctx context.Context) ([]*SpeakerSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT speaker, COUNT(*), COALESCE(SUM(size), 0)
		FROM entries
		WHERE speaker IS NOT NULL
		GROUP BY speaker
		ORDER BY speaker
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var speakers []*SpeakerSummary
	for rows.Next() {
		var s SpeakerSummary
		if err := rows.Scan(&s.Speaker, &s.Samples, &s.Bytes); err != nil {
			return nil, err
		}
		speakers = append(speakers, &s)
	}
	return speakers, rows.Err()
}

func (r *SQLiteRepository) TotalBytes(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(size), 0) FROM entries").Scan(&total)
	return total, err
}

func scanEntry(scan func(dest ...interface{}) error) (*Entry, error) {
	var e Entry
	var speaker, category sql.NullString
	var createdAt string

	if err := scan(&e.ID, &e.Mode, &speaker, &category, &e.Filename, &e.Path, &e.Size, &createdAt); err != nil {
		return nil, err
	}
	e.Speaker = speaker.String
	e.Category = category.String
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &e, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
