package repository

import "github.com/iliyamo/restaurant-dashboard/internal/model"

// CategoryRepo manages /restaurants/{rid}/categories.
type CategoryRepo struct {
	crud[model.Category, model.CategoryInput, model.CategoryPatch]
}

func NewCategoryRepo(t Transport) *CategoryRepo {
	return &CategoryRepo{crud[model.Category, model.CategoryInput, model.CategoryPatch]{t: t, resource: "categories"}}
}
