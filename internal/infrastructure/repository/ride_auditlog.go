package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hilthontt/ridehail/internal/domain"
)

type rideAuditRepository struct {
	logs []domain.RideAuditLog
	mu   sync.RWMutex
}

// NewRideAuditRepository backs the audit consumer when no database is configured.
func NewRideAuditRepository() domain.RideAuditRepository {
	return &rideAuditRepository{}
}

func (r *rideAuditRepository) Log(ctx context.Context, log *domain.RideAuditLog) error {
	if log == nil || log.RideID == "" {
		return domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *log)
	return nil
}

// GetByRideID returns newest entries first; limit <= 0 means no limit.
func (r *rideAuditRepository) GetByRideID(ctx context.Context, rideID string, limit int) ([]domain.RideAuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.RideAuditLog, 0)
	for _, l := range r.logs {
		if l.RideID == rideID {
			out = append(out, l)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *rideAuditRepository) DeleteOlderThan(ctx context.Context, before time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.logs[:0]
	for _, l := range r.logs {
		if !l.Timestamp.Before(before) {
			kept = append(kept, l)
		}
	}
	r.logs = kept
	return nil
}

func (r *rideAuditRepository) EnsureIndexes(ctx context.Context) error {
	return nil
}
