package table

import (
	"context"

	"villagemart-admin/internal/util"

	"go.uber.org/zap"
)

const (
	actionCreate = "create"
	actionUpdate = "update"
	actionDelete = "delete"
)

// Create runs fn and appends the entity it returns. On error the list is untouched.
func (c *Controller[T]) Create(ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	created, err := fn(ctx)
	if err != nil {
		c.record(actionCreate, err)
		var zero T
		return zero, err
	}

	c.mu.Lock()
	c.items = append(c.items, created)
	c.mu.Unlock()

	c.record(actionCreate, nil)
	return created, nil
}

// Update runs fn and replaces the entity with id by its result. The id is
// reported as pending while fn runs.
func (c *Controller[T]) Update(ctx context.Context, id string, fn func(context.Context) (T, error)) (T, error) {
	c.markPending(id)
	defer c.clearPending(id)

	updated, err := fn(ctx)
	if err != nil {
		c.record(actionUpdate, err)
		var zero T
		return zero, err
	}

	c.replace(id, updated)
	c.record(actionUpdate, nil)
	return updated, nil
}

// UpdateOptimistic applies change to the cached entity before fn runs and
// restores the previous value when fn fails.
func (c *Controller[T]) UpdateOptimistic(ctx context.Context, id string, change func(*T), fn func(context.Context) (T, error)) (T, error) {
	c.markPending(id)
	defer c.clearPending(id)

	c.mu.Lock()
	var (
		prev T
		had  bool
	)
	if i := c.indexOf(id); i >= 0 {
		prev, had = c.items[i], true
		change(&c.items[i])
	}
	c.mu.Unlock()

	updated, err := fn(ctx)
	if err != nil {
		if had {
			c.replace(id, prev)
		}
		c.record(actionUpdate, err)
		c.logger.Info("Rolled back optimistic update", zap.String("id", id), zap.Error(err))
		var zero T
		return zero, err
	}

	c.replace(id, updated)
	c.record(actionUpdate, nil)
	return updated, nil
}

// Delete runs fn and removes the entity with id.
func (c *Controller[T]) Delete(ctx context.Context, id string, fn func(context.Context) error) error {
	c.markPending(id)
	defer c.clearPending(id)

	if err := fn(ctx); err != nil {
		c.record(actionDelete, err)
		return err
	}

	c.mu.Lock()
	if i := c.indexOf(id); i >= 0 {
		c.items = append(c.items[:i:i], c.items[i+1:]...)
	}
	c.mu.Unlock()

	c.record(actionDelete, nil)
	return nil
}

// Patch changes the cached entity in place without any network call. It
// reports whether the entity was found.
func (c *Controller[T]) Patch(id string, change func(*T)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	change(&c.items[i])
	return true
}

func (c *Controller[T]) replace(id string, item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		c.items[i] = item
	}
}

func (c *Controller[T]) markPending(id string) {
	c.mu.Lock()
	c.pending[id]++
	c.mu.Unlock()
}

func (c *Controller[T]) clearPending(id string) {
	c.mu.Lock()
	if c.pending[id] <= 1 {
		delete(c.pending, id)
	} else {
		c.pending[id]--
	}
	c.mu.Unlock()
}

func (c *Controller[T]) record(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	util.MutationsTotal.WithLabelValues(c.opts.Resource, action, outcome).Inc()
}
