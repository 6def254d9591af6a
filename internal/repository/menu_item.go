package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/restaurant-dashboard/internal/model"
)

// MenuItemRepo manages /restaurants/{rid}/menu-items and its image and
// modifier sub-resources.
type MenuItemRepo struct {
	crud[model.MenuItem, model.MenuItemInput, model.MenuItemPatch]
}

func NewMenuItemRepo(t Transport) *MenuItemRepo {
	return &MenuItemRepo{crud[model.MenuItem, model.MenuItemInput, model.MenuItemPatch]{t: t, resource: "menu-items"}}
}

// UploadImage posts the image as multipart field "file" and returns the
// public URL the backend stored.
func (r *MenuItemRepo) UploadImage(ctx context.Context, restaurantID, itemID, filename, contentType string, data []byte) (string, error) {
	var out model.ImageUpload
	if err := r.t.Upload(ctx, scoped(restaurantID, r.resource, itemID, "image"), "file", filename, contentType, data, &out); err != nil {
		return "", fmt.Errorf("upload image %s: %w", itemID, notFound(err))
	}
	return out.ImageURL, nil
}

func (r *MenuItemRepo) DeleteImage(ctx context.Context, restaurantID, itemID string) error {
	if err := r.t.Do(ctx, "DELETE", scoped(restaurantID, r.resource, itemID, "image"), nil, nil); err != nil {
		return fmt.Errorf("delete image %s: %w", itemID, notFound(err))
	}
	return nil
}

func (r *MenuItemRepo) ListModifiers(ctx context.Context, restaurantID, itemID string) ([]model.MenuItemModifier, error) {
	var out []model.MenuItemModifier
	if err := r.t.Do(ctx, "GET", scoped(restaurantID, r.resource, itemID, "modifiers"), nil, &out); err != nil {
		return nil, fmt.Errorf("list modifiers of %s: %w", itemID, notFound(err))
	}
	return out, nil
}

func (r *MenuItemRepo) LinkModifier(ctx context.Context, restaurantID, itemID string, in model.LinkModifierInput) (model.MenuItemModifier, error) {
	var out struct {
		Link model.MenuItemModifier `json:"link"`
	}
	if err := r.t.Do(ctx, "POST", scoped(restaurantID, r.resource, itemID, "modifiers"), in, &out); err != nil {
		return model.MenuItemModifier{}, fmt.Errorf("link modifier %s to %s: %w", in.ModifierID, itemID, notFound(err))
	}
	return out.Link, nil
}

func (r *MenuItemRepo) UnlinkModifier(ctx context.Context, restaurantID, itemID, modifierID string) error {
	if err := r.t.Do(ctx, "DELETE", scoped(restaurantID, r.resource, itemID, "modifiers", modifierID), nil, nil); err != nil {
		return fmt.Errorf("unlink modifier %s from %s: %w", modifierID, itemID, notFound(err))
	}
	return nil
}
