package service

import (
	"context"
	"io"

	"github.com/iliyamo/restaurant-dashboard/internal/cache"
	"github.com/iliyamo/restaurant-dashboard/internal/model"
	"github.com/iliyamo/restaurant-dashboard/internal/report"
	"github.com/iliyamo/restaurant-dashboard/internal/repository"
)

// CallService reads the phone call history.  Calls are never mutated from
// the dashboard, so there is no executor.
type CallService struct {
	repo *repository.CallRepo
	col  *cache.Collection[model.Call]
}

func NewCallService(d Deps) *CallService {
	d = d.withDefaults()
	repo := repository.NewCallRepo(d.Transport)
	// The cache always holds the largest page; smaller limits are cut
	// from it.
	fetch := func(ctx context.Context, rid string) ([]model.Call, error) {
		return repo.List(ctx, rid, repository.MaxCallLimit)
	}
	return &CallService{repo: repo, col: newCollection(d, cache.Calls, fetch)}
}

// List returns up to limit most recent calls, 0 meaning the default.
func (s *CallService) List(ctx context.Context, restaurantID string, limit int) ([]model.Call, error) {
	es, err := s.col.Read(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	calls := cache.Values(es)
	if n := repository.ClampLimit(limit); len(calls) > n {
		calls = calls[:n]
	}
	return calls, nil
}

// Get returns one call with its transcript, always from the backend.
func (s *CallService) Get(ctx context.Context, restaurantID, id string) (model.Call, error) {
	return s.repo.Get(ctx, restaurantID, id)
}

// Refresh drops the cached history so the next List goes to the backend.
func (s *CallService) Refresh(restaurantID string) {
	s.col.Revalidate(restaurantID)
}

// Export writes the cached history as an xlsx workbook.
func (s *CallService) Export(ctx context.Context, restaurantID string, w io.Writer) error {
	calls, err := s.List(ctx, restaurantID, repository.MaxCallLimit)
	if err != nil {
		return err
	}
	return report.CallsWorkbook(w, calls)
}
