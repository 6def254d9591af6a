package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/restaurant-dashboard/internal/model"
)

// HourRepo manages /restaurants/{rid}/hours.  Hours are replaced as a
// whole week, never one day at a time.
type HourRepo struct {
	t Transport
}

func NewHourRepo(t Transport) *HourRepo { return &HourRepo{t: t} }

func (r *HourRepo) List(ctx context.Context, restaurantID string) ([]model.OperatingHour, error) {
	var out []model.OperatingHour
	if err := r.t.Do(ctx, "GET", scoped(restaurantID, "hours"), nil, &out); err != nil {
		return nil, fmt.Errorf("list hours: %w", err)
	}
	return out, nil
}

// Replace validates and normalizes in, then swaps the stored week.
func (r *HourRepo) Replace(ctx context.Context, restaurantID string, in []model.HourInput) ([]model.OperatingHour, error) {
	week, err := model.NormalizeWeek(in)
	if err != nil {
		return nil, err
	}
	body := struct {
		Hours []model.HourInput `json:"hours"`
	}{Hours: week}
	var out []model.OperatingHour
	if err := r.t.Do(ctx, "PUT", scoped(restaurantID, "hours"), body, &out); err != nil {
		return nil, fmt.Errorf("replace hours: %w", err)
	}
	return out, nil
}

func (r *HourRepo) DeleteAll(ctx context.Context, restaurantID string) error {
	if err := r.t.Do(ctx, "DELETE", scoped(restaurantID, "hours"), nil, nil); err != nil {
		return fmt.Errorf("delete hours: %w", err)
	}
	return nil
}
