package repository

import "github.com/iliyamo/restaurant-dashboard/internal/model"

// ModifierRepo manages /restaurants/{rid}/modifiers.
type ModifierRepo struct {
	crud[model.Modifier, model.ModifierInput, model.ModifierPatch]
}

func NewModifierRepo(t Transport) *ModifierRepo {
	return &ModifierRepo{crud[model.Modifier, model.ModifierInput, model.ModifierPatch]{t: t, resource: "modifiers"}}
}
