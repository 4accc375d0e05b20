package storage

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// FallbackStore wraps a durable MemoryStore with an in-process local store.
// When the durable backend is unavailable, writes land in the local store so
// the engine keeps answering from whatever it has.
type FallbackStore struct {
	durable MemoryStore
	local   MemoryStore
	logger  *logrus.Logger
}

// NewFallbackStore creates a fallback store. durable may be nil, in which
// case all operations go to the local store. local must not be nil.
func NewFallbackStore(durable, local MemoryStore, logger *logrus.Logger) *FallbackStore {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &FallbackStore{
		durable: durable,
		local:   local,
		logger:  logger,
	}
}

// Insert writes to the durable store, falling back to the local store when
// the durable backend reports unavailability.
func (s *FallbackStore) Insert(ctx context.Context, memory *Memory) error {
	if s.durable == nil {
		return s.local.Insert(ctx, memory)
	}

	err := s.durable.Insert(ctx, memory)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrUnavailable) {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"memory_id": memory.ID,
		"error":     err.Error(),
	}).Warn("durable store unavailable, keeping memory in process")

	return s.local.Insert(ctx, memory)
}

// ScanByFilter merges results from both stores, deduplicating by ID. A
// durable-store failure is logged and only the local results are returned.
func (s *FallbackStore) ScanByFilter(ctx context.Context, filter *Filter, sort Sort, limit int) ([]*Memory, error) {
	localMems, err := s.local.ScanByFilter(ctx, filter, SortNone, 0)
	if err != nil {
		return nil, err
	}

	if s.durable == nil {
		return SortMemories(localMems, sort, limit), nil
	}

	durableMems, err := s.durable.ScanByFilter(ctx, filter, SortNone, 0)
	if err != nil {
		if !errors.Is(err, ErrUnavailable) {
			return nil, err
		}
		s.logger.WithField("error", err.Error()).
			Warn("durable store unavailable, answering from process-local memories")
		return SortMemories(localMems, sort, limit), nil
	}

	seen := make(map[int64]bool, len(durableMems))
	merged := make([]*Memory, 0, len(durableMems)+len(localMems))
	for _, m := range durableMems {
		seen[m.ID] = true
		merged = append(merged, m)
	}
	for _, m := range localMems {
		if !seen[m.ID] {
			merged = append(merged, m)
		}
	}

	return SortMemories(merged, sort, limit), nil
}

// Count counts distinct memories across both stores.
func (s *FallbackStore) Count(ctx context.Context, filter *Filter) (int, error) {
	memories, err := s.ScanByFilter(ctx, filter, SortNone, 0)
	if err != nil {
		return 0, err
	}
	return len(memories), nil
}

// TouchRecalled updates recall bookkeeping in both stores. Bookkeeping is
// best effort; an unavailable backend does not fail the call.
func (s *FallbackStore) TouchRecalled(ctx context.Context, ids []int64, at time.Time) error {
	if err := s.local.TouchRecalled(ctx, ids, at); err != nil {
		s.logger.WithField("error", err.Error()).Debug("local recall bookkeeping failed")
	}
	if s.durable != nil {
		if err := s.durable.TouchRecalled(ctx, ids, at); err != nil {
			s.logger.WithField("error", err.Error()).Debug("durable recall bookkeeping failed")
		}
	}
	return nil
}

// Close closes both stores, returning the first error encountered.
func (s *FallbackStore) Close() error {
	var firstErr error
	if s.durable != nil {
		if err := s.durable.Close(); err != nil {
			firstErr = err
		}
	}
	if err := s.local.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
