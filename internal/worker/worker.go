package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"villagemart-admin/internal/broker"
	"villagemart-admin/internal/models"
	"villagemart-admin/internal/util"

	"go.uber.org/zap"
)

// ErrStop tells a Poller to exit its loop.
var ErrStop = errors.New("stop polling")

// Poller runs fn every interval and whenever Trigger is called.
type Poller struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context) error
	trigger  chan struct{}
	logger   *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewPoller creates a stopped poller.
func NewPoller(name string, interval time.Duration, fn func(ctx context.Context) error) *Poller {
	return &Poller{
		name:     name,
		interval: interval,
		fn:       fn,
		trigger:  make(chan struct{}, 1),
		logger:   util.Named("worker").With(zap.String("poller", name)),
	}
}

// Start launches the loop. Starting a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	go p.loop(ctx, p.done)
}

// Trigger asks for an immediate run. Requests made while one is already
// queued are coalesced. It reports whether the request was queued.
func (p *Poller) Trigger() bool {
	select {
	case p.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Running reports whether the loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Stop cancels the loop and waits for it to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-p.trigger:
		}

		if err := p.fn(ctx); err != nil {
			if errors.Is(err, ErrStop) {
				p.logger.Info("Poller stopped by callback")
				return
			}
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("Poll failed", zap.Error(err))
		}
	}
}

// Invalidator marks a resource stale for every open workspace.
type Invalidator interface {
	InvalidateAll(resource string)
}

// CatalogWorker turns catalog change events into cache invalidations so the
// next page view reloads.
type CatalogWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewCatalogWorker creates a new catalog worker
func NewCatalogWorker(consumer *broker.Consumer, target Invalidator) *CatalogWorker {
	w := &CatalogWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		logger:       util.Named("worker"),
	}
	w.eventHandler.OnCatalogChange(func(_ context.Context, resource string, event *models.CatalogEvent) error {
		w.logger.Debug("Invalidating resource", zap.String("resource", resource), zap.String("entity", event.EntityID))
		target.InvalidateAll(resource)
		return nil
	})
	return w
}

// Start blocks consuming until ctx is cancelled.
func (w *CatalogWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting catalog worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop closes the underlying reader.
func (w *CatalogWorker) Stop() error {
	w.logger.Info("Stopping catalog worker...")
	return w.consumer.Close()
}
