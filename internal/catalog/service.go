package catalog

import (
	"context"
	"log/slog"

	"github.com/soundvault/soundvault-agent/internal/dataset"
)

const defaultListLimit = 100

type CatalogService interface {
	RecordEntry(ctx context.Context, entry *dataset.Entry) (*Entry, error)
	GetEntries(ctx context.Context, filter ListFilter) ([]*Entry, error)
	GetSpeakers(ctx context.Context) ([]*SpeakerSummary, error)
	GetStats(ctx context.Context) (*Stats, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// RecordEntry indexes a freshly persisted sample.
func (s *Service) RecordEntry(ctx context.Context, de *dataset.Entry) (*Entry, error) {
	entry := &Entry{
		ID:        NewID(),
		Mode:      string(de.Mode),
		Speaker:   de.Speaker,
		Category:  de.Category,
		Filename:  de.Filename,
		Path:      de.Path,
		Size:      de.Size,
		CreatedAt: de.CreatedAt,
	}
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Service) GetEntries(ctx context.Context, filter ListFilter) ([]*Entry, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = defaultListLimit
	}
	return s.repo.ListEntries(ctx, filter)
}

func (s *Service) GetSpeakers(ctx context.Context) ([]*SpeakerSummary, error) {
	return s.repo.ListSpeakers(ctx)
}

func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	training, err := s.repo.CountByMode(ctx, string(dataset.ModeTraining))
	if err != nil {
		return nil, err
	}
	recognition, err := s.repo.CountByMode(ctx, string(dataset.ModeRecognition))
	if err != nil {
		return nil, err
	}
	speakers, err := s.repo.ListSpeakers(ctx)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.TotalBytes(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TrainingCount:    training,
		RecognitionCount: recognition,
		Speakers:         len(speakers),
		TotalBytes:       total,
	}, nil
}
