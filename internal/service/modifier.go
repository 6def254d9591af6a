package service

import (
	"context"

	"github.com/iliyamo/restaurant-dashboard/internal/cache"
	"github.com/iliyamo/restaurant-dashboard/internal/model"
	"github.com/iliyamo/restaurant-dashboard/internal/mutation"
	"github.com/iliyamo/restaurant-dashboard/internal/repository"
)

// ModifierService manages add-ons such as "Extra Cheese".
type ModifierService struct {
	x *mutation.Executor[model.Modifier]

	create mutation.Create[model.Modifier, model.ModifierInput]
	update mutation.Update[model.Modifier, model.ModifierPatch]
	remove mutation.Delete[model.Modifier]
}

func NewModifierService(d Deps) *ModifierService {
	d = d.withDefaults()
	repo := repository.NewModifierRepo(d.Transport)
	return &ModifierService{
		x: newExecutor(d, newCollection(d, cache.Modifiers, repo.List)),
		create: mutation.Create[model.Modifier, model.ModifierInput]{
			Call: func(ctx context.Context, rid string, in model.ModifierInput) (model.Modifier, error) {
				if err := firstErr(required("name", in.Name), nonNegative("price", in.Price)); err != nil {
					return model.Modifier{}, err
				}
				return repo.Create(ctx, rid, in)
			},
			Synthesize: func(d mutation.Draft, in model.ModifierInput) model.Modifier {
				return model.Modifier{
					ID:           d.LocalID,
					RestaurantID: d.RestaurantID,
					Name:         in.Name,
					Description:  in.Description,
					Price:        in.Price,
					CreatedAt:    d.Now,
					UpdatedAt:    d.Now,
				}
			},
			Messages: mutation.Messages{Success: "Modifier created", Failure: "Failed to create modifier"},
		},
		update: mutation.Update[model.Modifier, model.ModifierPatch]{
			Call: func(ctx context.Context, rid, id string, p model.ModifierPatch) (model.Modifier, error) {
				if p.Name != nil {
					if err := required("name", *p.Name); err != nil {
						return model.Modifier{}, err
					}
				}
				if err := nonNegative("price", ptrOr(p.Price, 0)); err != nil {
					return model.Modifier{}, err
				}
				return repo.Update(ctx, rid, id, p)
			},
			Merge:    func(m model.Modifier, p model.ModifierPatch) model.Modifier { return p.Apply(m) },
			Messages: mutation.Messages{Success: "Modifier updated", Failure: "Failed to update modifier"},
		},
		remove: mutation.Delete[model.Modifier]{
			Call: func(ctx context.Context, rid, id string) error {
				return idempotentDelete(repo.Delete(ctx, rid, id))
			},
			Messages: mutation.Messages{Success: "Modifier deleted", Failure: "Failed to delete modifier"},
		},
	}
}

func (s *ModifierService) List(ctx context.Context, restaurantID string) ([]cache.Entry[model.Modifier], error) {
	return s.x.Collection().Read(ctx, restaurantID)
}

func (s *ModifierService) Create(ctx context.Context, restaurantID string, in model.ModifierInput) (model.Modifier, error) {
	return s.create.Run(ctx, s.x, restaurantID, in)
}

func (s *ModifierService) Update(ctx context.Context, restaurantID, id string, p model.ModifierPatch) (model.Modifier, error) {
	return s.update.Run(ctx, s.x, restaurantID, id, p)
}

func (s *ModifierService) Delete(ctx context.Context, restaurantID, id string) error {
	return s.remove.Run(ctx, s.x, restaurantID, id)
}
