package model

import "time"

// Restaurant is the tenant every cached entity is scoped to.
type Restaurant struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	PhoneNumber *string    `json:"phone_number,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// RestaurantPatch is the update payload for restaurant settings.
type RestaurantPatch struct {
	Name *string `json:"name,omitempty"`
}

// RestaurantStats backs the dashboard overview.
type RestaurantStats struct {
	TotalCallsToday int    `json:"total_calls_today"`
	MenuItemsCount  int    `json:"menu_items_count"`
	CategoriesCount int    `json:"categories_count"`
	PhoneStatus     string `json:"phone_status"`
}
