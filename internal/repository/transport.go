package repository

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Transport is the subset of *backend.Client the repos use.
type Transport interface {
	Do(ctx context.Context, method, path string, in, out any) error
	Upload(ctx context.Context, path, field, filename, contentType string, data []byte, out any) error
}

// path joins escaped segments under a leading slash.
func path(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// scoped builds /restaurants/{rid}/{resource}[/{id}...].
func scoped(restaurantID, resource string, rest ...string) string {
	return path(append([]string{"restaurants", restaurantID, resource}, rest...)...)
}

// crud is the list/get/create/update/delete shape every restaurant scoped
// resource shares.  C is the create payload and P the update payload.
type crud[T any, C any, P any] struct {
	t        Transport
	resource string
}

func (c crud[T, C, P]) List(ctx context.Context, restaurantID string) ([]T, error) {
	var out []T
	if err := c.t.Do(ctx, "GET", scoped(restaurantID, c.resource), nil, &out); err != nil {
		return nil, fmt.Errorf("list %s: %w", c.resource, err)
	}
	return out, nil
}

func (c crud[T, C, P]) Get(ctx context.Context, restaurantID, id string) (T, error) {
	var out T
	if err := c.t.Do(ctx, "GET", scoped(restaurantID, c.resource, id), nil, &out); err != nil {
		return out, fmt.Errorf("get %s %s: %w", c.resource, id, notFound(err))
	}
	return out, nil
}

func (c crud[T, C, P]) Create(ctx context.Context, restaurantID string, in C) (T, error) {
	var out T
	if err := c.t.Do(ctx, "POST", scoped(restaurantID, c.resource), in, &out); err != nil {
		return out, fmt.Errorf("create %s: %w", c.resource, err)
	}
	return out, nil
}

func (c crud[T, C, P]) Update(ctx context.Context, restaurantID, id string, in P) (T, error) {
	var out T
	if err := c.t.Do(ctx, "PUT", scoped(restaurantID, c.resource, id), in, &out); err != nil {
		return out, fmt.Errorf("update %s %s: %w", c.resource, id, notFound(err))
	}
	return out, nil
}

func (c crud[T, C, P]) Delete(ctx context.Context, restaurantID, id string) error {
	if err := c.t.Do(ctx, "DELETE", scoped(restaurantID, c.resource, id), nil, nil); err != nil {
		return fmt.Errorf("delete %s %s: %w", c.resource, id, notFound(err))
	}
	return nil
}
