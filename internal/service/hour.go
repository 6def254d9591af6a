package service

import (
	"context"
	"errors"
	"sort"

	"github.com/iliyamo/restaurant-dashboard/internal/backend"
	"github.com/iliyamo/restaurant-dashboard/internal/cache"
	"github.com/iliyamo/restaurant-dashboard/internal/model"
	"github.com/iliyamo/restaurant-dashboard/internal/mutation"
	"github.com/iliyamo/restaurant-dashboard/internal/repository"
)

// HourService manages the weekly opening hours.  The week is always
// written as a whole.
type HourService struct {
	x *mutation.Executor[model.OperatingHour]

	replace mutation.Replace[model.OperatingHour, []model.HourInput]
	clear   mutation.Replace[model.OperatingHour, struct{}]
}

func NewHourService(d Deps) *HourService {
	d = d.withDefaults()
	repo := repository.NewHourRepo(d.Transport)
	return &HourService{
		x: newExecutor(d, newCollection(d, cache.Hours, repo.List)),
		replace: mutation.Replace[model.OperatingHour, []model.HourInput]{
			Call: func(ctx context.Context, rid string, in []model.HourInput) ([]model.OperatingHour, error) {
				hours, err := repo.Replace(ctx, rid, in)
				if errors.Is(err, model.ErrInvalidHours) {
					return nil, backend.Invalid("hours", err)
				}
				return sortWeek(hours), err
			},
			Synthesize: func(d mutation.Draft, in []model.HourInput) []model.OperatingHour {
				// Unnormalizable input is shown as typed until the call rejects it.
				week, err := model.NormalizeWeek(in)
				if err != nil {
					week = in
				}
				out := make([]model.OperatingHour, len(week))
				for i, h := range week {
					out[i] = model.OperatingHour{
						ID:           d.Sub(i).LocalID,
						RestaurantID: d.RestaurantID,
						DayOfWeek:    h.DayOfWeek,
						OpenTime:     h.OpenTime,
						CloseTime:    h.CloseTime,
						IsClosed:     h.IsClosed,
						CreatedAt:    d.Now,
						UpdatedAt:    d.Now,
					}
				}
				return sortWeek(out)
			},
			Messages: mutation.Messages{Success: "Operating hours saved", Failure: "Failed to save operating hours"},
		},
		clear: mutation.Replace[model.OperatingHour, struct{}]{
			Call: func(ctx context.Context, rid string, _ struct{}) ([]model.OperatingHour, error) {
				return nil, repo.DeleteAll(ctx, rid)
			},
			Synthesize: func(mutation.Draft, struct{}) []model.OperatingHour { return nil },
			Messages:   mutation.Messages{Success: "Operating hours cleared", Failure: "Failed to clear operating hours"},
		},
	}
}

// List returns the week sorted Monday first.
func (s *HourService) List(ctx context.Context, restaurantID string) ([]cache.Entry[model.OperatingHour], error) {
	es, err := s.x.Collection().Read(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(es, func(i, j int) bool {
		return model.DayIndex(es[i].Value.DayOfWeek) < model.DayIndex(es[j].Value.DayOfWeek)
	})
	return es, nil
}

func (s *HourService) Replace(ctx context.Context, restaurantID string, week []model.HourInput) ([]model.OperatingHour, error) {
	return s.replace.Run(ctx, s.x, restaurantID, week)
}

func (s *HourService) DeleteAll(ctx context.Context, restaurantID string) error {
	_, err := s.clear.Run(ctx, s.x, restaurantID, struct{}{})
	return err
}

func sortWeek(hs []model.OperatingHour) []model.OperatingHour {
	sort.SliceStable(hs, func(i, j int) bool { return model.DayIndex(hs[i].DayOfWeek) < model.DayIndex(hs[j].DayOfWeek) })
	return hs
}
