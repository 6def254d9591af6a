package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/restaurant-dashboard/internal/model"
)

// ZoneRepo manages /restaurants/{rid}/zones and the GeoJSON boundary of
// each zone.
type ZoneRepo struct {
	crud[model.DeliveryZone, model.ZoneInput, model.ZonePatch]
}

func NewZoneRepo(t Transport) *ZoneRepo {
	return &ZoneRepo{crud[model.DeliveryZone, model.ZoneInput, model.ZonePatch]{t: t, resource: "zones"}}
}

// SetBoundary replaces the polygon.  The backend answers with the
// geometry it stored, not with the zone.
func (r *ZoneRepo) SetBoundary(ctx context.Context, restaurantID, zoneID string, g model.GeoPolygon) (*model.GeoPolygon, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	in := struct {
		Boundary model.GeoPolygon `json:"boundary"`
	}{g}
	var out struct {
		Success  bool              `json:"success"`
		Boundary *model.GeoPolygon `json:"boundary"`
	}
	if err := r.t.Do(ctx, "POST", scoped(restaurantID, r.resource, zoneID, "boundary"), in, &out); err != nil {
		return nil, fmt.Errorf("set boundary of %s: %w", zoneID, notFound(err))
	}
	if !out.Success {
		return nil, fmt.Errorf("set boundary of %s: %w", zoneID, errNotSaved)
	}
	return out.Boundary, nil
}

// GetBoundary reads the map Feature of a zone.  A zone without a boundary
// answers 404, reported as a nil polygon.
func (r *ZoneRepo) GetBoundary(ctx context.Context, restaurantID, zoneID string) (*model.GeoPolygon, error) {
	var out model.GeoPolygon
	if err := r.t.Do(ctx, "GET", scoped(restaurantID, r.resource, zoneID, "map"), nil, &out); err != nil {
		if errors.Is(notFound(err), ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get boundary of %s: %w", zoneID, err)
	}
	if out.Type == "" {
		return nil, nil
	}
	return &out, nil
}

var errNotSaved = errors.New("backend did not confirm the boundary")
