package telemetry

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]Run
	frames      map[string][]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]Run)
	s.frames = make(map[string][]Record)
	return nil
}

func (s *MemoryStore) BeginRun(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	run.Frames = len(s.frames[run.ID])
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) Record(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	run, ok := s.runs[rec.RunID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRun, rec.RunID)
	}
	s.frames[rec.RunID] = append(s.frames[rec.RunID], rec)
	run.Frames++
	s.runs[rec.RunID] = run
	return nil
}

func (s *MemoryStore) Runs(_ context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}
	runs := make([]Run, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].StartedAt.Before(runs[j].StartedAt)
	})
	return runs, nil
}

func (s *MemoryStore) Frames(_ context.Context, runID string) ([]Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, false, ErrNotInitialized
	}
	if _, ok := s.runs[runID]; !ok {
		return nil, false, nil
	}
	return append([]Record(nil), s.frames[runID]...), true, nil
}
