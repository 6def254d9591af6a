package service

import (
	"context"

	"github.com/iliyamo/restaurant-dashboard/internal/cache"
	"github.com/iliyamo/restaurant-dashboard/internal/model"
	"github.com/iliyamo/restaurant-dashboard/internal/mutation"
	"github.com/iliyamo/restaurant-dashboard/internal/repository"
)

// CategoryService manages menu categories.
type CategoryService struct {
	repo *repository.CategoryRepo
	x    *mutation.Executor[model.Category]

	create mutation.Create[model.Category, model.CategoryInput]
	update mutation.Update[model.Category, model.CategoryPatch]
	remove mutation.Delete[model.Category]
}

func NewCategoryService(d Deps) *CategoryService {
	d = d.withDefaults()
	repo := repository.NewCategoryRepo(d.Transport)
	s := &CategoryService{
		repo: repo,
		x:    newExecutor(d, newCollection(d, cache.Categories, repo.List)),
	}
	s.create = mutation.Create[model.Category, model.CategoryInput]{
		Call: func(ctx context.Context, rid string, in model.CategoryInput) (model.Category, error) {
			if err := firstErr(required("name", in.Name), nonNegative("display_order", float64(in.DisplayOrder))); err != nil {
				return model.Category{}, err
			}
			return repo.Create(ctx, rid, in)
		},
		Synthesize: func(d mutation.Draft, in model.CategoryInput) model.Category {
			return model.Category{
				ID:           d.LocalID,
				RestaurantID: d.RestaurantID,
				Name:         in.Name,
				Description:  in.Description,
				DisplayOrder: in.DisplayOrder,
				CreatedAt:    d.Now,
				UpdatedAt:    d.Now,
			}
		},
		Messages: mutation.Messages{Success: "Category created", Failure: "Failed to create category"},
	}
	s.update = mutation.Update[model.Category, model.CategoryPatch]{
		Call: func(ctx context.Context, rid, id string, p model.CategoryPatch) (model.Category, error) {
			if p.Name != nil {
				if err := required("name", *p.Name); err != nil {
					return model.Category{}, err
				}
			}
			return repo.Update(ctx, rid, id, p)
		},
		Merge:    func(c model.Category, p model.CategoryPatch) model.Category { return p.Apply(c) },
		Messages: mutation.Messages{Success: "Category updated", Failure: "Failed to update category"},
	}
	s.remove = mutation.Delete[model.Category]{
		Call: func(ctx context.Context, rid, id string) error {
			return idempotentDelete(repo.Delete(ctx, rid, id))
		},
		Messages: mutation.Messages{Success: "Category deleted", Failure: "Failed to delete category"},
	}
	return s
}

// List returns the cached categories of restaurantID.
func (s *CategoryService) List(ctx context.Context, restaurantID string) ([]cache.Entry[model.Category], error) {
	return s.x.Collection().Read(ctx, restaurantID)
}

func (s *CategoryService) Create(ctx context.Context, restaurantID string, in model.CategoryInput) (model.Category, error) {
	return s.create.Run(ctx, s.x, restaurantID, in)
}

func (s *CategoryService) Update(ctx context.Context, restaurantID, id string, p model.CategoryPatch) (model.Category, error) {
	return s.update.Run(ctx, s.x, restaurantID, id, p)
}

func (s *CategoryService) Delete(ctx context.Context, restaurantID, id string) error {
	return s.remove.Run(ctx, s.x, restaurantID, id)
}
