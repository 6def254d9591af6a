package model

import "time"

// DefaultMenuCategory is used by the backend when an item has no category.
const DefaultMenuCategory = "General"

// MenuItem is a single orderable dish.  Price is expressed in the
// restaurant currency as returned by the backend (decimal).
type MenuItem struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	Price        float64   `json:"price"`
	Category     string    `json:"category"`
	Available    bool      `json:"available"`
	ImageURL     *string   `json:"image_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (m MenuItem) EntityID() string { return m.ID }
func (m MenuItem) Scope() string    { return m.RestaurantID }

type MenuItemInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Category    string  `json:"category,omitempty"`
	Available   *bool   `json:"available,omitempty"`
}

type MenuItemPatch struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Available   *bool    `json:"available,omitempty"`
}

// Apply merges the non-nil fields of p into a copy of m.
func (p MenuItemPatch) Apply(m MenuItem) MenuItem {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Description != nil {
		m.Description = p.Description
	}
	if p.Price != nil {
		m.Price = *p.Price
	}
	if p.Category != nil {
		m.Category = *p.Category
	}
	if p.Available != nil {
		m.Available = *p.Available
	}
	return m
}

// MenuItemModifier links a modifier to a menu item.  Modifier is filled
// when the backend expands the link.
type MenuItemModifier struct {
	ID           string     `json:"id,omitempty"`
	MenuItemID   string     `json:"menu_item_id"`
	ModifierID   string     `json:"modifier_id"`
	Modifier     *Modifier  `json:"modifier,omitempty"`
	IsRequired   bool       `json:"is_required"`
	DisplayOrder int        `json:"display_order"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// LinkModifierInput attaches a modifier to a menu item.
type LinkModifierInput struct {
	ModifierID   string `json:"modifier_id"`
	IsRequired   bool   `json:"is_required"`
	DisplayOrder int    `json:"display_order"`
}

// ImageUpload is the backend reply to an image upload.
type ImageUpload struct {
	ImageURL string `json:"image_url"`
	Message  string `json:"message,omitempty"`
}
