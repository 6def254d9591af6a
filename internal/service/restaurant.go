package service

import (
	"context"
	"io"
	"net/http"

	"github.com/iliyamo/restaurant-dashboard/internal/cache"
	"github.com/iliyamo/restaurant-dashboard/internal/model"
	"github.com/iliyamo/restaurant-dashboard/internal/mutation"
	"github.com/iliyamo/restaurant-dashboard/internal/report"
	"github.com/iliyamo/restaurant-dashboard/internal/repository"
)

// RestaurantService reads the signed-in user's restaurant.
type RestaurantService struct {
	repo    *repository.RestaurantRepo
	outcome outcome
}

func NewRestaurantService(d Deps) *RestaurantService {
	d = d.withDefaults()
	return &RestaurantService{repo: repository.NewRestaurantRepo(d.Transport), outcome: newOutcome(d)}
}

// Mine returns repository.ErrNoRestaurant when no restaurant is linked.
func (s *RestaurantService) Mine(ctx context.Context) (model.Restaurant, error) {
	return s.repo.Mine(ctx)
}

func (s *RestaurantService) Stats(ctx context.Context, restaurantID string) (model.RestaurantStats, error) {
	return s.repo.Stats(ctx, restaurantID)
}

// Update saves restaurant settings.  The restaurant is not cached, so the
// change is not optimistic.
func (s *RestaurantService) Update(ctx context.Context, restaurantID string, p model.RestaurantPatch) (model.Restaurant, error) {
	var out model.Restaurant
	var err error
	if p.Name != nil {
		err = required("name", *p.Name)
	}
	if err == nil {
		out, err = s.repo.Update(ctx, restaurantID, p)
	}
	return out, s.outcome.done(ctx, "restaurants", http.MethodPut, restaurantID, err,
		mutation.Messages{Success: "Restaurant updated", Failure: "Failed to update restaurant"})
}

// ExportMenu writes categories, menu items and modifiers as one workbook.
func (d *Dashboard) ExportMenu(ctx context.Context, restaurantID string, w io.Writer) error {
	cats, err := d.Categories.List(ctx, restaurantID)
	if err != nil {
		return err
	}
	items, err := d.MenuItems.List(ctx, restaurantID)
	if err != nil {
		return err
	}
	mods, err := d.Modifiers.List(ctx, restaurantID)
	if err != nil {
		return err
	}
	return report.MenuWorkbook(w, cache.Values(cats), cache.Values(items), cache.Values(mods))
}
