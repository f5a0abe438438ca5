package memory

import (
	"context"
	"fmt"
	"sort"

	"safetrip/internal/domain"
	"safetrip/pkg/e"

	"github.com/google/uuid"
)

func (s *Store) CreateReport(_ context.Context, r *domain.Report) error {
	const op = "memory.Report.Create"

	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reports[r.ID]; ok {
		return fmt.Errorf("%s: %w", op, e.ErrUniqueViolation)
	}
	c := *r
	s.reports[r.ID] = &c
	return nil
}

func (s *Store) GetReport(_ context.Context, id uuid.UUID) (*domain.Report, error) {
	const op = "memory.Report.Get"

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	c := *r
	return &c, nil
}

// ListReports returns matches newest first.
func (s *Store) ListReports(_ context.Context, f domain.ReportFilter) ([]*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Report, 0)
	for _, r := range s.reports {
		if f.Category != nil && r.Category != *f.Category {
			continue
		}
		if !f.Within(r.Lat, r.Lng) {
			continue
		}
		c := *r
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
