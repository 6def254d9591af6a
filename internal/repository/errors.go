// Package repository wraps the restaurant REST API in one repo per
// resource.  Repos translate HTTP failures into the sentinel values below
// where a caller needs to branch on them; every other failure keeps its
// *backend.APIError or *backend.NetworkError so it can be classified.
package repository

import (
	"errors"
	"fmt"

	"github.com/iliyamo/restaurant-dashboard/internal/backend"
)

// ErrNotFound is returned when the backend answers 404 for a single
// entity.  Handlers translate it into a 404 response.
var ErrNotFound = errors.New("not found")

// ErrNoRestaurant is returned when the signed-in user has no restaurant
// (the backend answers 403 or 404 on /restaurants/me).  It is an empty
// state, not a failure: the console renders an explanation.
var ErrNoRestaurant = errors.New("no restaurant linked to this account")

// notFound wraps 404 replies with ErrNotFound and leaves other errors as is.
func notFound(err error) error {
	if err != nil && backend.Classify(err) == backend.KindNotFound {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
