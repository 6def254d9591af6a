package model

import "time"

// Modifier is an add-on (e.g. "Extra Cheese") that can be linked to
// menu items.  Price is the additional charge.
type Modifier struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	Price        float64   `json:"price"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (m Modifier) EntityID() string { return m.ID }
func (m Modifier) Scope() string    { return m.RestaurantID }

type ModifierInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Price       float64 `json:"price"`
}

type ModifierPatch struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
}

func (p ModifierPatch) Apply(m Modifier) Modifier {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Description != nil {
		m.Description = p.Description
	}
	if p.Price != nil {
		m.Price = *p.Price
	}
	return m
}
