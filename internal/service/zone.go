package service

import (
	"context"
	"log/slog"

	"github.com/iliyamo/restaurant-dashboard/internal/backend"
	"github.com/iliyamo/restaurant-dashboard/internal/cache"
	"github.com/iliyamo/restaurant-dashboard/internal/model"
	"github.com/iliyamo/restaurant-dashboard/internal/mutation"
	"github.com/iliyamo/restaurant-dashboard/internal/repository"
)

// ZoneService manages delivery zones and their map boundaries.
type ZoneService struct {
	repo *repository.ZoneRepo
	x    *mutation.Executor[model.DeliveryZone]
	log  *slog.Logger

	create   mutation.Create[model.DeliveryZone, model.ZoneInput]
	update   mutation.Update[model.DeliveryZone, model.ZonePatch]
	remove   mutation.Delete[model.DeliveryZone]
	boundary mutation.Update[model.DeliveryZone, model.GeoPolygon]
}

func NewZoneService(d Deps) *ZoneService {
	d = d.withDefaults()
	repo := repository.NewZoneRepo(d.Transport)
	s := &ZoneService{
		repo: repo,
		x:    newExecutor(d, newCollection(d, cache.Zones, repo.List)),
		log:  d.Log.With("component", "zones"),
	}
	s.create = mutation.Create[model.DeliveryZone, model.ZoneInput]{
		Call: func(ctx context.Context, rid string, in model.ZoneInput) (model.DeliveryZone, error) {
			err := firstErr(
				required("zone_name", in.ZoneName),
				nonNegative("delivery_fee", in.DeliveryFee),
				nonNegative("min_order", ptrOr(in.MinOrder, 0)),
			)
			if err != nil {
				return model.DeliveryZone{}, err
			}
			return repo.Create(ctx, rid, in)
		},
		Synthesize: func(d mutation.Draft, in model.ZoneInput) model.DeliveryZone {
			return model.DeliveryZone{
				ID:           d.LocalID,
				RestaurantID: d.RestaurantID,
				ZoneName:     in.ZoneName,
				Description:  in.Description,
				DeliveryFee:  in.DeliveryFee,
				MinOrder:     in.MinOrder,
				CreatedAt:    d.Now,
				UpdatedAt:    d.Now,
			}
		},
		Messages: mutation.Messages{Success: "Delivery zone created", Failure: "Failed to create delivery zone"},
	}
	s.update = mutation.Update[model.DeliveryZone, model.ZonePatch]{
		Call: func(ctx context.Context, rid, id string, p model.ZonePatch) (model.DeliveryZone, error) {
			if p.ZoneName != nil {
				if err := required("zone_name", *p.ZoneName); err != nil {
					return model.DeliveryZone{}, err
				}
			}
			err := firstErr(
				nonNegative("delivery_fee", ptrOr(p.DeliveryFee, 0)),
				nonNegative("min_order", ptrOr(p.MinOrder, 0)),
			)
			if err != nil {
				return model.DeliveryZone{}, err
			}
			return repo.Update(ctx, rid, id, p)
		},
		Merge:    func(z model.DeliveryZone, p model.ZonePatch) model.DeliveryZone { return p.Apply(z) },
		Messages: mutation.Messages{Success: "Delivery zone updated", Failure: "Failed to update delivery zone"},
	}
	s.remove = mutation.Delete[model.DeliveryZone]{
		Call: func(ctx context.Context, rid, id string) error {
			return idempotentDelete(repo.Delete(ctx, rid, id))
		},
		Messages: mutation.Messages{Success: "Delivery zone deleted", Failure: "Failed to delete delivery zone"},
	}
	s.boundary = mutation.Update[model.DeliveryZone, model.GeoPolygon]{
		Call: func(ctx context.Context, rid, id string, g model.GeoPolygon) (model.DeliveryZone, error) {
			if err := g.Validate(); err != nil {
				return model.DeliveryZone{}, backend.Invalid("boundary", err)
			}
			stored, err := repo.SetBoundary(ctx, rid, id, g)
			if err != nil {
				return model.DeliveryZone{}, err
			}
			if stored == nil {
				stored = &g
			}
			return s.saved(ctx, rid, id, stored), nil
		},
		Merge: func(z model.DeliveryZone, g model.GeoPolygon) model.DeliveryZone {
			z.Boundary = &g
			return z
		},
		Messages: mutation.Messages{Success: "Delivery area saved", Failure: "Failed to save delivery area"},
	}
	return s
}

// saved is the zone to reconcile with once the backend stored a boundary.
// The boundary reply carries no zone, so the zone is read back; when that
// read fails the cached zone with the stored polygon stands in until the
// revalidation.
func (s *ZoneService) saved(ctx context.Context, restaurantID, id string, stored *model.GeoPolygon) model.DeliveryZone {
	z, err := s.repo.Get(ctx, restaurantID, id)
	if err == nil {
		z.Boundary = stored
		return z
	}
	s.log.Warn("reading zone after boundary save failed", "zone", id, "error", err)
	z = model.DeliveryZone{ID: id, RestaurantID: restaurantID}
	if es, ok := s.x.Collection().Peek(restaurantID); ok {
		for _, e := range es {
			if e.Value.ID == id {
				z = e.Value
			}
		}
	}
	z.Boundary = stored
	return z
}

func (s *ZoneService) List(ctx context.Context, restaurantID string) ([]cache.Entry[model.DeliveryZone], error) {
	return s.x.Collection().Read(ctx, restaurantID)
}

func (s *ZoneService) Create(ctx context.Context, restaurantID string, in model.ZoneInput) (model.DeliveryZone, error) {
	return s.create.Run(ctx, s.x, restaurantID, in)
}

func (s *ZoneService) Update(ctx context.Context, restaurantID, id string, p model.ZonePatch) (model.DeliveryZone, error) {
	return s.update.Run(ctx, s.x, restaurantID, id, p)
}

func (s *ZoneService) Delete(ctx context.Context, restaurantID, id string) error {
	return s.remove.Run(ctx, s.x, restaurantID, id)
}

// SetBoundary shows the new polygon on the map at once and saves it.
func (s *ZoneService) SetBoundary(ctx context.Context, restaurantID, id string, g model.GeoPolygon) (model.DeliveryZone, error) {
	return s.boundary.Run(ctx, s.x, restaurantID, id, g)
}

// Boundary returns the polygon of a zone, from the cache when the zone is
// loaded there.
func (s *ZoneService) Boundary(ctx context.Context, restaurantID, id string) (*model.GeoPolygon, error) {
	if es, ok := s.x.Collection().Peek(restaurantID); ok {
		for _, e := range es {
			if e.Value.ID == id && e.Value.Boundary != nil {
				return e.Value.Boundary, nil
			}
		}
	}
	return s.repo.GetBoundary(ctx, restaurantID, id)
}
