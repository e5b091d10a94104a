package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/voyagemap/itinerary-sync/internal/core/domain"
	"github.com/voyagemap/itinerary-sync/internal/core/ports"
	"github.com/voyagemap/itinerary-sync/internal/metrics"
)

type SyncService struct {
	repo   ports.SyncRepository
	logger zerolog.Logger
}

func NewSyncService(repo ports.SyncRepository, logger zerolog.Logger) *SyncService {
	return &SyncService{repo: repo, logger: logger}
}

// GetUserData returns the stored state for userID. A missing record is a
// normal first-time-user state and yields (nil, nil).
func (s *SyncService) GetUserData(ctx context.Context, userID string) (*ports.SyncData, error) {
	start := time.Now()
	rec, err := s.repo.Get(ctx, userID)
	metrics.StoreDuration.WithLabelValues("get").Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			metrics.ReadsTotal.WithLabelValues("empty").Inc()
			return nil, nil
		}
		metrics.StoreErrorsTotal.WithLabelValues("get").Inc()
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to read sync record")
		return nil, err
	}

	metrics.ReadsTotal.WithLabelValues("found").Inc()
	return &ports.SyncData{
		Paris:     rec.Paris,
		London:    rec.London,
		UpdatedAt: rec.UpdatedAt,
	}, nil
}

// PutUserData replaces the user's stored state wholesale. An omitted payload
// field clears the stored value for that city rather than preserving it; the
// client is expected to always send its complete current state.
//
// The returned timestamp is assigned here, at the moment of the write, so it
// reflects acceptance rather than submission.
func (s *SyncService) PutUserData(ctx context.Context, input ports.PutSyncInput) (time.Time, error) {
	now := time.Now().UTC()
	rec := &domain.UserRecord{
		UserID:    input.UserID,
		Paris:     input.Paris,
		London:    input.London,
		UpdatedAt: now,
	}

	start := time.Now()
	err := s.repo.Put(ctx, rec)
	metrics.StoreDuration.WithLabelValues("put").Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("put").Inc()
		s.logger.Error().Err(err).Str("user_id", input.UserID).Msg("failed to write sync record")
		return time.Time{}, err
	}

	metrics.WritesTotal.Inc()
	s.logger.Info().Str("user_id", input.UserID).Time("updated_at", now).Msg("sync record written")
	return now, nil
}

// Stats returns aggregate counts over all stored records.
func (s *SyncService) Stats(ctx context.Context) (*ports.SyncStats, error) {
	start := time.Now()
	defer func() {
		metrics.StoreDuration.WithLabelValues("stats").Observe(time.Since(start).Seconds())
	}()

	users, err := s.repo.CountUsers(ctx)
	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("stats").Inc()
		s.logger.Error().Err(err).Msg("failed to count users")
		return nil, err
	}

	lastDay, err := s.repo.CountUpdatedSince(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("stats").Inc()
		s.logger.Error().Err(err).Msg("failed to count recent updates")
		return nil, err
	}

	return &ports.SyncStats{UserCount: users, UpdatedLastDay: lastDay}, nil
}
