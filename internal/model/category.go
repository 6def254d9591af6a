package model

import "time"

// Category groups menu items for display.  Categories are ordered by
// DisplayOrder and belong to exactly one restaurant.
//
// Fields:
//  ID           – server assigned UUID.
//  RestaurantID – owning restaurant.
//  Name         – display name (e.g. "Appetizers").
//  Description  – optional free text.
//  DisplayOrder – sort key, zero or positive.
//  CreatedAt    – server creation timestamp.
//  UpdatedAt    – server update timestamp.
type Category struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (c Category) EntityID() string { return c.ID }
func (c Category) Scope() string    { return c.RestaurantID }

// CategoryInput is the create payload.
type CategoryInput struct {
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
	DisplayOrder int     `json:"display_order"`
}

// CategoryPatch is the update payload; nil fields are left unchanged.
type CategoryPatch struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	DisplayOrder *int    `json:"display_order,omitempty"`
}

// Apply returns a copy of c with the non-nil patch fields merged in.
func (p CategoryPatch) Apply(c Category) Category {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = p.Description
	}
	if p.DisplayOrder != nil {
		c.DisplayOrder = *p.DisplayOrder
	}
	return c
}
