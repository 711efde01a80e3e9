package workspace

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"villagemart-admin/internal/models"
	"villagemart-admin/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func loadProducts(t *testing.T, ws *Workspace) {
	t.Helper()
	err := ws.Products.Load(context.Background(), "products", func(context.Context) ([]models.Product, error) {
		return []models.Product{{ID: "1"}}, nil
	})
	require.NoError(t, err)
}

func TestGetCreatesLazilyAndReuses(t *testing.T) {
	m := NewManager(service.TableConfig{})
	a := m.Get("s1")
	b := m.Get("s1")
	c := m.Get("s2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, m.Len())
}

func TestInvalidateAll(t *testing.T) {
	m := NewManager(service.TableConfig{})
	one, two := m.Get("s1"), m.Get("s2")
	loadProducts(t, one)
	loadProducts(t, two)
	require.True(t, one.Products.Fresh())

	m.InvalidateAll("products")
	assert.False(t, one.Products.Fresh())
	assert.False(t, two.Products.Fresh())

	m.InvalidateAll("nonsense")
}

func TestCloseStopsDashboardPoller(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewManager(service.TableConfig{})
	ws := m.Get("s1")

	var runs atomic.Int32
	p := ws.StartDashboard(time.Hour, func(context.Context) error {
		runs.Add(1)
		return nil
	})
	assert.Same(t, p, ws.StartDashboard(time.Hour, nil))
	require.True(t, p.Running())

	p.Trigger()
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	m.Close("s1")
	assert.False(t, p.Running())
	assert.Equal(t, 0, m.Len())

	// A new session gets fresh state.
	assert.NotSame(t, ws, m.Get("s1"))
	m.CloseAll()
}

func TestPrune(t *testing.T) {
	m := NewManager(service.TableConfig{})
	old := m.Get("old")
	old.mu.Lock()
	old.lastSeen = time.Now().Add(-2 * time.Hour)
	old.mu.Unlock()
	m.Get("new")

	assert.Equal(t, 1, m.Prune(time.Hour))
	assert.Equal(t, 1, m.Len())
}
