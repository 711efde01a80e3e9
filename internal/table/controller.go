// Package table holds the generic data-table controller every admin page is
// built on: load with timeout and sample-data fallback, stale response
// detection, and reconcile-by-id after mutations.
package table

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"villagemart-admin/internal/apiclient"
	"villagemart-admin/internal/util"
	"villagemart-admin/internal/view"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single list load.
const DefaultTimeout = 5 * time.Second

// FallbackSuffix is appended to the banner when sample data is shown.
const FallbackSuffix = " Using sample data."

// ErrStale is returned when a newer load superseded this one. Its response was discarded.
var ErrStale = errors.New("stale response discarded")

// Entity is anything with a stable id.
type Entity interface {
	EntityID() string
}

// Fetch loads the full list for a resource.
type Fetch[T any] func(ctx context.Context) ([]T, error)

// Options configure a Controller.
type Options[T Entity] struct {
	Resource string
	Timeout  time.Duration
	// Fallback is copied into the list when a load fails. Nil disables it.
	Fallback []T
	View     view.Spec[T]
}

// Page is one rendered view of the table.
type Page[T any] struct {
	Items    []T       `json:"items"`
	Total    int       `json:"total"`
	Shown    int       `json:"shown"`
	Banner   string    `json:"banner,omitempty"`
	Fallback bool      `json:"fallback"`
	Pending  []string  `json:"pending,omitempty"`
	LoadedAt time.Time `json:"loadedAt"`
}

// Controller caches one resource list for one operator.
type Controller[T Entity] struct {
	opts   Options[T]
	logger *zap.Logger

	mu       sync.Mutex
	items    []T
	loaded   bool
	stale    bool
	banner   string
	fallback bool
	loadedAt time.Time

	seq     uint64
	latest  map[string]uint64
	applied uint64
	lastErr error
	settled chan struct{}
	pending map[string]int
}

// New creates an empty controller.
func New[T Entity](opts Options[T]) *Controller[T] {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Controller[T]{
		opts:    opts,
		logger:  util.Named("table").With(zap.String("resource", opts.Resource)),
		latest:  make(map[string]uint64),
		settled: make(chan struct{}),
		pending: make(map[string]int),
	}
}

// Load fetches the list for key (resource plus params). Only the newest load
// is applied; a response that was overtaken returns ErrStale while a list is
// cached. With nothing cached yet it waits for the newer load instead and
// returns that load's error. On failure the fallback list, when configured,
// replaces the current one and the fetch error is still returned.
func (c *Controller[T]) Load(ctx context.Context, key string, fetch Fetch[T]) (err error) {
	ctx, span := util.StartSpan(ctx, "table.Load",
		attribute.String("resource", c.opts.Resource),
		attribute.String("key", key),
	)
	defer func() { util.EndSpan(span, err) }()

	c.mu.Lock()
	c.seq++
	gen := c.seq
	c.latest[key] = gen
	c.mu.Unlock()

	loadCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	items, fetchErr := fetch(loadCtx)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.latest[key] != gen || gen < c.applied {
		util.TableLoadsTotal.WithLabelValues(c.opts.Resource, "stale").Inc()
		c.logger.Debug("Discarding stale response", zap.String("key", key), zap.Uint64("generation", gen))
		if c.loaded {
			return ErrStale
		}
		return c.awaitNewer(ctx, key)
	}
	c.applied = gen
	c.stale = false
	defer func() { c.settle(err) }()

	if fetchErr == nil {
		c.items = append([]T(nil), items...)
		c.loaded = true
		c.banner = ""
		c.fallback = false
		c.loadedAt = time.Now()
		util.TableLoadsTotal.WithLabelValues(c.opts.Resource, "ok").Inc()
		return nil
	}

	msg := apiclient.UserMessage(fetchErr)
	if c.opts.Fallback != nil && !apiclient.IsUnauthorized(fetchErr) {
		c.items = append([]T(nil), c.opts.Fallback...)
		c.loaded = true
		c.banner = msg + FallbackSuffix
		c.fallback = true
		c.loadedAt = time.Now()
		util.TableLoadsTotal.WithLabelValues(c.opts.Resource, "fallback").Inc()
		c.logger.Warn("Load failed, showing sample data", zap.Error(fetchErr))
		return fetchErr
	}

	c.banner = msg
	util.TableLoadsTotal.WithLabelValues(c.opts.Resource, "failed").Inc()
	c.logger.Warn("Load failed", zap.Error(fetchErr))
	return fetchErr
}

// settle publishes the outcome of an applied load to waiting callers. c.mu must be held.
func (c *Controller[T]) settle(err error) {
	c.lastErr = err
	close(c.settled)
	c.settled = make(chan struct{})
}

// awaitNewer blocks until the newest load for key has been applied and
// returns its error. c.mu must be held; it is released while waiting.
func (c *Controller[T]) awaitNewer(ctx context.Context, key string) error {
	for c.applied < c.latest[key] {
		settled := c.settled
		c.mu.Unlock()
		select {
		case <-settled:
			c.mu.Lock()
		case <-ctx.Done():
			c.mu.Lock()
			return ErrStale
		}
	}
	return c.lastErr
}

// Ensure loads only when nothing is cached yet or the cache was invalidated.
func (c *Controller[T]) Ensure(ctx context.Context, key string, fetch Fetch[T]) error {
	if c.Fresh() {
		return nil
	}
	return c.Load(ctx, key, fetch)
}

// Fresh reports whether the cached list can be served without a load.
func (c *Controller[T]) Fresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded && !c.stale
}

// Invalidate makes the next Ensure reload.
func (c *Controller[T]) Invalidate() {
	c.mu.Lock()
	c.stale = true
	c.mu.Unlock()
}

// Items returns a copy of the cached list.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

// Get returns the cached entity with id.
func (c *Controller[T]) Get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Banner returns the current page-level message, if any.
func (c *Controller[T]) Banner() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.banner
}

// Snapshot applies q to the cached list.
func (c *Controller[T]) Snapshot(q view.Query) Page[T] {
	c.mu.Lock()
	items := append([]T(nil), c.items...)
	page := Page[T]{
		Total:    len(c.items),
		Banner:   c.banner,
		Fallback: c.fallback,
		LoadedAt: c.loadedAt,
	}
	for id := range c.pending {
		page.Pending = append(page.Pending, id)
	}
	c.mu.Unlock()

	sort.Strings(page.Pending)
	page.Items = view.Apply(items, c.opts.View, q)
	page.Shown = len(page.Items)
	return page
}

// IsPending reports whether a mutation for id is in flight.
func (c *Controller[T]) IsPending(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[id] > 0
}

func (c *Controller[T]) indexOf(id string) int {
	for i, item := range c.items {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}
