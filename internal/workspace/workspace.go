// Package workspace keeps the page state of every signed-in operator: one
// table controller per resource plus the dashboard. State lives as long as
// the session and is discarded on logout or when the API rejects the token.
package workspace

import (
	"context"
	"sync"
	"time"

	"villagemart-admin/internal/models"
	"villagemart-admin/internal/service"
	"villagemart-admin/internal/table"
	"villagemart-admin/internal/util"
	"villagemart-admin/internal/worker"

	"go.uber.org/zap"
)

// Workspace is one operator's cached pages.
type Workspace struct {
	ID         string
	Products   *table.Controller[models.Product]
	Categories *table.Controller[models.Category]
	Orders     *table.Controller[models.Order]
	Customers  *table.Controller[models.Customer]
	Inventory  *table.Controller[models.InventoryItem]
	Dashboard  *service.DashboardState

	mu       sync.Mutex
	poller   *worker.Poller
	lastSeen time.Time
}

func newWorkspace(id string, cfg service.TableConfig) *Workspace {
	return &Workspace{
		ID:         id,
		Products:   service.NewProductTable(cfg),
		Categories: service.NewCategoryTable(cfg),
		Orders:     service.NewOrderTable(cfg),
		Customers:  service.NewCustomerTable(cfg),
		Inventory:  service.NewInventoryTable(cfg),
		Dashboard:  &service.DashboardState{},
		lastSeen:   time.Now(),
	}
}

// Invalidate marks one resource stale. Unknown resources are ignored.
func (w *Workspace) Invalidate(resource string) {
	switch resource {
	case "products":
		w.Products.Invalidate()
		// Inventory rows may be derived from products.
		w.Inventory.Invalidate()
	case "categories":
		w.Categories.Invalidate()
	case "orders":
		w.Orders.Invalidate()
	case "customers":
		w.Customers.Invalidate()
	case "inventory":
		w.Inventory.Invalidate()
		w.Products.Invalidate()
	}
}

// StartDashboard starts the periodic dashboard refresh once per workspace
// and returns the poller.
func (w *Workspace) StartDashboard(interval time.Duration, refresh func(ctx context.Context) error) *worker.Poller {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.poller == nil {
		w.poller = worker.NewPoller("dashboard:"+w.ID, interval, refresh)
	}
	w.poller.Start(context.Background())
	return w.poller
}

// DashboardPoller returns the poller, or nil if the dashboard was never opened.
func (w *Workspace) DashboardPoller() *worker.Poller {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.poller
}

func (w *Workspace) touch() {
	w.mu.Lock()
	w.lastSeen = time.Now()
	w.mu.Unlock()
}

func (w *Workspace) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

func (w *Workspace) stop() {
	w.mu.Lock()
	p := w.poller
	w.mu.Unlock()
	if p != nil {
		p.Stop()
	}
}

// Manager owns every open workspace.
type Manager struct {
	cfg    service.TableConfig
	logger *zap.Logger

	mu    sync.Mutex
	items map[string]*Workspace
}

func NewManager(cfg service.TableConfig) *Manager {
	return &Manager{
		cfg:    cfg,
		logger: util.Named("workspace"),
		items:  make(map[string]*Workspace),
	}
}

// Get returns the workspace for a session id, creating it on first use.
func (m *Manager) Get(id string) *Workspace {
	m.mu.Lock()
	ws, ok := m.items[id]
	if !ok {
		ws = newWorkspace(id, m.cfg)
		m.items[id] = ws
	}
	m.mu.Unlock()

	ws.touch()
	return ws
}

// Close stops the dashboard poller and discards the workspace.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	ws, ok := m.items[id]
	delete(m.items, id)
	m.mu.Unlock()

	if ok {
		ws.stop()
		m.logger.Debug("Workspace closed", zap.String("session", id))
	}
}

// CloseAll discards every workspace, used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := m.items
	m.items = make(map[string]*Workspace)
	m.mu.Unlock()

	for _, ws := range all {
		ws.stop()
	}
}

// InvalidateAll marks resource stale in every workspace.
func (m *Manager) InvalidateAll(resource string) {
	for _, ws := range m.snapshot() {
		ws.Invalidate(resource)
	}
}

// Prune closes workspaces not used for maxIdle and returns how many were closed.
func (m *Manager) Prune(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	closed := 0
	for _, ws := range m.snapshot() {
		if ws.idleSince().Before(cutoff) {
			m.Close(ws.ID)
			closed++
		}
	}
	if closed > 0 {
		m.logger.Info("Pruned idle workspaces", zap.Int("count", closed))
	}
	return closed
}

// Len returns the number of open workspaces.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Manager) snapshot() []*Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Workspace, 0, len(m.items))
	for _, ws := range m.items {
		out = append(out, ws)
	}
	return out
}
