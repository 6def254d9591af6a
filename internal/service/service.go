// Package service binds each dashboard resource to its repository, its
// cache collection and its mutation executor.  Views call services only;
// nothing outside this package writes to a collection.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/restaurant-dashboard/internal/backend"
	"github.com/iliyamo/restaurant-dashboard/internal/cache"
	"github.com/iliyamo/restaurant-dashboard/internal/config"
	"github.com/iliyamo/restaurant-dashboard/internal/mutation"
	"github.com/iliyamo/restaurant-dashboard/internal/notify"
	"github.com/iliyamo/restaurant-dashboard/internal/repository"
	"github.com/iliyamo/restaurant-dashboard/internal/telemetry"
)

// Deps are the collaborators every service shares.
type Deps struct {
	Transport       repository.Transport
	Sink            notify.Sink
	Reporter        telemetry.Reporter
	Cache           config.CacheConfig
	RefetchTimeout  time.Duration
	MutationTimeout time.Duration
	Log             *slog.Logger

	// Now and NewID are overridden in tests.
	Now   func() time.Time
	NewID func() string
}

func (d Deps) withDefaults() Deps {
	if d.Reporter == nil {
		d.Reporter = telemetry.Nop{}
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.RefetchTimeout <= 0 {
		d.RefetchTimeout = 15 * time.Second
	}
	if d.MutationTimeout <= 0 {
		d.MutationTimeout = 30 * time.Second
	}
	return d
}

func newCollection[T cache.Entity](d Deps, r cache.Resource, fetch cache.Fetcher[T]) *cache.Collection[T] {
	return cache.New(r, fetch, d.Cache.For(string(r)),
		cache.WithRefetchTimeout(d.RefetchTimeout),
		cache.WithClock(d.Now),
		cache.WithLogger(d.Log),
	)
}

func newExecutor[T cache.Entity](d Deps, col *cache.Collection[T]) *mutation.Executor[T] {
	opts := []mutation.Option{
		mutation.WithReporter(d.Reporter),
		mutation.WithLogger(d.Log),
		mutation.WithClock(d.Now),
		mutation.WithTimeout(d.MutationTimeout),
	}
	if d.NewID != nil {
		opts = append(opts, mutation.WithIDs(d.NewID))
	}
	return mutation.NewExecutor(col, d.Sink, opts...)
}

// Dashboard aggregates the services of one console session.
type Dashboard struct {
	Categories  *CategoryService
	MenuItems   *MenuItemService
	Modifiers   *ModifierService
	Zones       *ZoneService
	Hours       *HourService
	Calls       *CallService
	Restaurants *RestaurantService
	Sink        notify.Sink
}

// NewDashboard builds every service on the same transport and sink.
func NewDashboard(d Deps) *Dashboard {
	if d.Transport == nil || d.Sink == nil {
		panic("nil transport or sink passed to NewDashboard")
	}
	d = d.withDefaults()
	return &Dashboard{
		Categories:  NewCategoryService(d),
		MenuItems:   NewMenuItemService(d),
		Modifiers:   NewModifierService(d),
		Zones:       NewZoneService(d),
		Hours:       NewHourService(d),
		Calls:       NewCallService(d),
		Restaurants: NewRestaurantService(d),
		Sink:        d.Sink,
	}
}

var (
	errRequired = errors.New("is required")
	errNegative = errors.New("must not be negative")
)

// required fails when s is blank.
func required(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return backend.Invalid(field, errRequired)
	}
	return nil
}

func nonNegative(field string, v float64) error {
	if v < 0 {
		return backend.Invalid(field, errNegative)
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// idempotentDelete treats an entity the backend no longer has as deleted.
func idempotentDelete(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

func ptrOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// outcome reports a call that touches no cached collection, with the
// same single notification and telemetry rules as a mutation.
type outcome struct {
	sink     notify.Sink
	reporter telemetry.Reporter
	now      func() time.Time
}

func newOutcome(d Deps) outcome {
	return outcome{sink: d.Sink, reporter: d.Reporter, now: d.Now}
}

func (o outcome) done(ctx context.Context, resource cache.Resource, method, restaurantID string, err error, m mutation.Messages) error {
	if err == nil {
		o.sink.Show(m.Success, notify.Success)
		return nil
	}
	o.sink.Show(backend.Message(err, m.Failure), notify.Error)
	if backend.ShouldReport(err) {
		o.reporter.Report(ctx, telemetry.Event{
			Kind:         backend.Classify(err).String(),
			Resource:     string(resource),
			Method:       method,
			Status:       backend.StatusOf(err),
			Message:      err.Error(),
			RestaurantID: restaurantID,
			OccurredAt:   o.now().UTC(),
		})
	}
	return err
}
