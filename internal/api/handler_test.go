package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"villagemart-admin/internal/apiclient"
	"villagemart-admin/internal/models"
	"villagemart-admin/internal/service"
	"villagemart-admin/internal/session"
	"villagemart-admin/internal/workspace"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cookieName = "vm_test_session"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAPI struct {
	t      *testing.T
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  map[string]int
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	f.mu.Lock()
	f.calls[key]++
	h, ok := f.routes[key]
	f.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Cannot `+key+`"}`)
		return
	}
	h(w, r)
}

func (f *fakeAPI) data(key string, status int, v any) {
	raw, err := json.Marshal(v)
	require.NoError(f.t, err)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[key] = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(apiclient.Envelope{Data: raw, StatusCode: status})
	}
}

func (f *fakeAPI) handle(key string, fn http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[key] = fn
}

func (f *fakeAPI) fail(key string, status int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[key] = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
	}
}

func (f *fakeAPI) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

type fakeActivity struct {
	rows []models.AdminAction
}

func (f *fakeActivity) ListRecentActions(_ context.Context, limit int) ([]models.AdminAction, error) {
	if limit < len(f.rows) {
		return f.rows[:limit], nil
	}
	return f.rows, nil
}

func (f *fakeActivity) ListEntityActions(_ context.Context, resource, entityID string, _ int) ([]models.AdminAction, error) {
	var out []models.AdminAction
	for _, r := range f.rows {
		if r.Resource == resource && r.EntityID == entityID {
			out = append(out, r)
		}
	}
	return out, nil
}

type pingFunc func(ctx context.Context) error

func (p pingFunc) Ping(ctx context.Context) error { return p(ctx) }

type harness struct {
	t          *testing.T
	api        *fakeAPI
	router     *gin.Engine
	sessions   *session.Manager
	workspaces *workspace.Manager
}

func newHarness(t *testing.T, fallback bool, mutate func(*Options)) *harness {
	t.Helper()
	fake := &fakeAPI{t: t, routes: make(map[string]http.HandlerFunc), calls: make(map[string]int)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := apiclient.New(srv.URL, nil)
	sessions := session.NewManager(session.NewMemoryStore(), time.Hour)
	tables := service.TableConfig{Timeout: 2 * time.Second, SampleFallback: fallback}
	workspaces := workspace.NewManager(tables)
	t.Cleanup(workspaces.CloseAll)

	svc := Services{
		Auth:       service.NewAuthService(client, sessions, "admin", nil),
		Products:   service.NewProductService(client, nil),
		Categories: service.NewCategoryService(client, nil),
		Orders:     service.NewOrderService(client, nil),
		Customers:  service.NewCustomerService(client, nil),
		Inventory:  service.NewInventoryService(client, nil),
		Settings:   service.NewSettingsService(client, sessions, nil),
		Dashboard:  service.NewDashboardService(client, tables),
	}
	opts := Options{CookieName: cookieName, SessionTTL: time.Hour, LoginPath: "/login", PollInterval: time.Hour}
	if mutate != nil {
		mutate(&opts)
	}

	router := gin.New()
	NewHandler(svc, sessions, session.NewGuard(sessions, "admin"), workspaces, opts).SetupRoutes(router)

	return &harness{t: t, api: fake, router: router, sessions: sessions, workspaces: workspaces}
}

func (h *harness) signIn(role string) *session.Session {
	h.t.Helper()
	sess, err := h.sessions.Create(context.Background(), "tok-1", models.AdminUser{ID: "admin-1", Email: "admin@villagemart.test", Role: role})
	require.NoError(h.t, err)
	return sess
}

func (h *harness) do(sess *session.Session, method, target string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess != nil {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: sess.ID})
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthAndReady(t *testing.T) {
	h := newHarness(t, true, func(o *Options) {
		o.Checks = map[string]Pinger{
			"redis": pingFunc(func(context.Context) error { return nil }),
			"store": pingFunc(func(context.Context) error { return errors.New("connection refused") }),
		}
	})

	w := h.do(nil, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(nil, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "store", decode(t, w)["failed"])
}

func TestAdminRequiresSession(t *testing.T) {
	h := newHarness(t, true, nil)

	w := h.do(nil, http.MethodGet, "/admin/products", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	customer := h.signIn("customer")
	w = h.do(customer, http.MethodGet, "/admin/products", nil)
	assert.Equal(t, http.StatusFound, w.Code)

	_, err := h.sessions.Load(context.Background(), customer.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestLogin(t *testing.T) {
	h := newHarness(t, true, nil)

	w := h.do(nil, http.MethodPost, "/login", map[string]string{"email": "not-an-email", "password": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs := decode(t, w)["errors"].(map[string]any)
	assert.Equal(t, "Please enter a valid email address", errs["email"])
	assert.Equal(t, "Password is required", errs["password"])
	assert.Equal(t, 0, h.api.count("POST /auth/signin"))

	h.api.data("POST /auth/signin", http.StatusOK, models.AuthResponse{Token: "t", User: models.AdminUser{ID: "c1", Email: "c@x.io", Role: "customer"}})
	w = h.do(nil, http.MethodPost, "/login", map[string]string{"email": "c@x.io", "password": "pw"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	h.api.fail("POST /auth/signin", http.StatusUnauthorized, "Invalid email or password")
	w = h.do(nil, http.MethodPost, "/login", map[string]string{"email": "c@x.io", "password": "pw"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decode(t, w)["error"])

	h.api.data("POST /auth/signin", http.StatusOK, models.AuthResponse{Token: "t", User: models.AdminUser{ID: "a1", Email: "a@x.io", Role: "admin"}})
	w = h.do(nil, http.MethodPost, "/login", map[string]string{"email": "a@x.io", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, cookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	_, err := h.sessions.Load(context.Background(), cookies[0].Value)
	assert.NoError(t, err)
}

func TestLogoutClearsSession(t *testing.T) {
	h := newHarness(t, true, nil)
	sess := h.signIn("admin")
	h.workspaces.Get(sess.ID)

	w := h.do(sess, http.MethodPost, "/logout", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	_, err := h.sessions.Load(context.Background(), sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.Equal(t, 0, h.workspaces.Len())
}

func TestListProductsAppliesQuery(t *testing.T) {
	h := newHarness(t, true, nil)
	fruits := &models.CategoryRef{ID: "c1", Name: "Fruits"}
	h.api.data("GET /products", http.StatusOK, []models.Product{
		{ID: "1", Name: "Organic Apples", SKU: "APL", Price: 4.99, Stock: 50, IsActive: true, Category: fruits},
		{ID: "2", Name: "Bananas", SKU: "BAN", Price: 1.99, Stock: 3, IsActive: true, Category: fruits},
		{ID: "3", Name: "Apple Juice", SKU: "AJ", Price: 3.49, Stock: 20, IsActive: false},
	})
	h.api.data("GET /categories", http.StatusOK, []models.Category{{ID: "c1", Name: "Fruits"}})
	sess := h.signIn("admin")

	w := h.do(sess, http.MethodGet, "/admin/products?q=apple&sort=price&order=desc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	p := body["page"].(map[string]any)
	items := p["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].(map[string]any)["id"])
	assert.Equal(t, float64(3), p["total"])
	assert.Len(t, body["categories"], 1)

	w = h.do(sess, http.MethodGet, "/admin/products?status=active&stock=low_stock", nil)
	items = decode(t, w)["page"].(map[string]any)["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "2", items[0].(map[string]any)["id"])

	// Cached until refresh=1.
	assert.Equal(t, 1, h.api.count("GET /products"))
	h.do(sess, http.MethodGet, "/admin/products?refresh=1", nil)
	assert.Equal(t, 2, h.api.count("GET /products"))
}

func TestUnauthorizedClearsSessionAndRedirects(t *testing.T) {
	tests := []struct {
		name    string
		route   string
		backend string
	}{
		{"products", "/admin/products", "GET /products"},
		{"categories", "/admin/categories", "GET /categories"},
		{"orders", "/admin/orders", "GET /orders"},
		{"order detail", "/admin/orders/o1", "GET /orders/o1"},
		{"customers", "/admin/customers", "GET /admin/customers"},
		{"inventory", "/admin/inventory", "GET /inventory"},
		{"dashboard", "/admin/dashboard", "GET /admin/stats"},
		{"appearance", "/admin/settings/appearance", "GET /admin/settings/appearance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, true, nil)
			h.api.fail(tt.backend, http.StatusUnauthorized, "jwt expired")
			sess := h.signIn("admin")

			w := h.do(sess, http.MethodGet, tt.route, nil)
			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "/login", w.Header().Get("Location"))

			_, err := h.sessions.Load(context.Background(), sess.ID)
			assert.ErrorIs(t, err, session.ErrNotFound)
			assert.Equal(t, 0, h.workspaces.Len())
		})
	}
}

func TestOverlappingRefreshesBothRenderTheList(t *testing.T) {
	h := newHarness(t, true, nil)
	h.api.data("GET /categories", http.StatusOK, []models.Category{})

	raw, err := json.Marshal([]models.Product{{ID: "1", Name: "Organic Apples", SKU: "APL", Price: 4.99, Stock: 50, IsActive: true}})
	require.NoError(t, err)
	secondArrived := make(chan struct{})
	var n int
	var nmu sync.Mutex
	h.api.handle("GET /products", func(w http.ResponseWriter, _ *http.Request) {
		nmu.Lock()
		n++
		call := n
		nmu.Unlock()
		if call == 1 {
			// Answer only after the second refresh reached the API.
			select {
			case <-secondArrived:
			case <-time.After(time.Second):
			}
		} else {
			close(secondArrived)
			time.Sleep(20 * time.Millisecond)
		}
		_ = json.NewEncoder(w).Encode(apiclient.Envelope{Data: raw, StatusCode: http.StatusOK})
	})
	sess := h.signIn("admin")

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() { first <- h.do(sess, http.MethodGet, "/admin/products?refresh=1", nil) }()
	require.Eventually(t, func() bool { return h.api.count("GET /products") == 1 }, time.Second, time.Millisecond)

	second := h.do(sess, http.MethodGet, "/admin/products?refresh=1", nil)
	for i, w := range []*httptest.ResponseRecorder{<-first, second} {
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
		p := decode(t, w)["page"].(map[string]any)
		assert.Equal(t, float64(1), p["total"], "request %d", i)
		assert.Len(t, p["items"], 1, "request %d", i)
	}
	assert.Equal(t, 2, h.api.count("GET /products"))
}

func TestStockChangesInvalidateTheOtherList(t *testing.T) {
	h := newHarness(t, true, nil)
	h.api.data("GET /products", http.StatusOK, []models.Product{{ID: "p1", Name: "Apples", SKU: "APL", Price: 1, Stock: 10, IsActive: true}})
	h.api.data("GET /categories", http.StatusOK, []models.Category{})
	h.api.data("GET /inventory", http.StatusOK, []models.InventoryItem{
		{ID: "i1", ProductID: "p1", ProductName: "Apples", CurrentStock: 10, MinStockLevel: 5, MaxStockLevel: 50, UnitCost: 1},
	})
	h.api.data("POST /inventory/p1/adjust", http.StatusOK, map[string]bool{"ok": true})
	h.api.data("PATCH /products/p1", http.StatusOK, models.Product{ID: "p1", Name: "Apples", SKU: "APL", Price: 1, Stock: 25, IsActive: true})
	sess := h.signIn("admin")

	require.Equal(t, http.StatusOK, h.do(sess, http.MethodGet, "/admin/products", nil).Code)
	require.Equal(t, http.StatusOK, h.do(sess, http.MethodGet, "/admin/inventory", nil).Code)
	ws := h.workspaces.Get(sess.ID)
	require.True(t, ws.Products.Fresh())
	require.True(t, ws.Inventory.Fresh())

	w := h.do(sess, http.MethodPost, "/admin/inventory/p1/adjust", map[string]any{"type": "increase", "newQuantity": 5, "reason": "Delivery"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, ws.Products.Fresh())
	assert.True(t, ws.Inventory.Fresh())

	h.do(sess, http.MethodGet, "/admin/products", nil)
	assert.Equal(t, 2, h.api.count("GET /products"))

	w = h.do(sess, http.MethodPatch, "/admin/products/p1", map[string]any{
		"name": "Apples", "description": "Red", "sku": "APL", "price": 1, "stock": 25, "categoryId": "c1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, ws.Inventory.Fresh())

	h.do(sess, http.MethodGet, "/admin/inventory", nil)
	assert.Equal(t, 2, h.api.count("GET /inventory"))
}

func TestFallbackBanner(t *testing.T) {
	h := newHarness(t, true, nil)
	h.api.fail("GET /categories", http.StatusBadGateway, "bad gateway")
	sess := h.signIn("admin")

	w := h.do(sess, http.MethodGet, "/admin/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := decode(t, w)["page"].(map[string]any)
	assert.Equal(t, true, p["fallback"])
	assert.Equal(t, "Server error. Please try again later. Using sample data.", p["banner"])
}

func TestLoadFailureWithoutFallback(t *testing.T) {
	h := newHarness(t, false, nil)
	sess := h.signIn("admin")

	w := h.do(sess, http.MethodGet, "/admin/customers", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Customers API endpoint not found.", decode(t, w)["error"])
}

func TestCreateProductValidation(t *testing.T) {
	h := newHarness(t, true, nil)
	sess := h.signIn("admin")

	w := h.do(sess, http.MethodPost, "/admin/products", map[string]any{"name": "Bread", "price": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs := decode(t, w)["errors"].(map[string]any)
	assert.Equal(t, "Price must be greater than 0", errs["price"])
	assert.Equal(t, "SKU is required", errs["sku"])
	assert.Equal(t, 0, h.api.count("POST /products"))
}

func TestCreateProductSaveErrorKeepsModalOpen(t *testing.T) {
	h := newHarness(t, true, nil)
	h.api.fail("POST /products", http.StatusConflict, "SKU already exists")
	sess := h.signIn("admin")

	w := h.do(sess, http.MethodPost, "/admin/products", map[string]any{
		"name": "Bread", "description": "Rye", "sku": "BR", "price": 2.5, "stock": 1, "categoryId": "c1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	assert.Equal(t, "SKU already exists", body["error"])
	assert.Equal(t, true, body["modal"].(map[string]any)["open"])
}

func TestCreateCustomerRequiresPassword(t *testing.T) {
	h := newHarness(t, true, nil)
	h.api.data("GET /admin/customers", http.StatusOK, []models.Customer{})
	h.api.data("PATCH /admin/customers/u1", http.StatusOK, models.Customer{ID: "u1", Email: "a@b.co"})
	sess := h.signIn("admin")

	draft := map[string]any{"email": "a@b.co", "firstName": "A", "lastName": "B"}
	w := h.do(sess, http.MethodPost, "/admin/customers", draft)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Password is required", decode(t, w)["errors"].(map[string]any)["password"])

	// Edits do not need one.
	w = h.do(sess, http.MethodPatch, "/admin/customers/u1", draft)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOrderStatusEndpoints(t *testing.T) {
	h := newHarness(t, true, nil)
	h.api.data("GET /orders", http.StatusOK, []models.Order{{ID: "o1", Status: models.OrderStatusPending}})
	h.api.data("PATCH /orders/o1/status", http.StatusOK, models.Order{ID: "o1", Status: models.OrderStatusShipped})
	sess := h.signIn("admin")

	require.Equal(t, http.StatusOK, h.do(sess, http.MethodGet, "/admin/orders", nil).Code)

	w := h.do(sess, http.MethodPatch, "/admin/orders/o1/status", map[string]string{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(sess, http.MethodPatch, "/admin/orders/o1/status", map[string]string{"status": "shipped"})
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(sess, http.MethodGet, "/admin/orders?status=shipped", nil)
	items := decode(t, w)["page"].(map[string]any)["items"].([]any)
	assert.Len(t, items, 1)
}

func TestAdjustStock(t *testing.T) {
	h := newHarness(t, true, nil)
	h.api.data("GET /inventory", http.StatusOK, []models.InventoryItem{
		{ID: "i1", ProductID: "p1", ProductName: "Apples", CurrentStock: 10, MinStockLevel: 5, MaxStockLevel: 50, UnitCost: 1},
	})
	h.api.data("POST /inventory/p1/adjust", http.StatusOK, map[string]bool{"ok": true})
	sess := h.signIn("admin")

	require.Equal(t, http.StatusOK, h.do(sess, http.MethodGet, "/admin/inventory", nil).Code)

	w := h.do(sess, http.MethodPost, "/admin/inventory/p1/adjust", map[string]any{"type": "increase", "newQuantity": 5})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = h.do(sess, http.MethodPost, "/admin/inventory/p1/adjust", map[string]any{"type": "increase", "newQuantity": 5, "reason": "Delivery"})
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(15), data["currentStock"])
	assert.Equal(t, "in_stock", data["status"])
}

func TestDashboard(t *testing.T) {
	h := newHarness(t, true, nil)
	h.api.data("GET /admin/stats", http.StatusOK, models.DashboardStats{TotalOrders: 4, TotalProducts: 39})
	sess := h.signIn("admin")

	w := h.do(sess, http.MethodGet, "/admin/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)["stats"].(map[string]any)
	assert.Equal(t, float64(39), stats["totalProducts"])

	ws := h.workspaces.Get(sess.ID)
	require.NotNil(t, ws.DashboardPoller())
	assert.True(t, ws.DashboardPoller().Running())

	w = h.do(sess, http.MethodPost, "/admin/dashboard/refresh", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Eventually(t, func() bool { return h.api.count("GET /admin/stats") == 2 }, time.Second, 5*time.Millisecond)
}

func TestActivity(t *testing.T) {
	h := newHarness(t, true, nil)
	sess := h.signIn("admin")
	w := h.do(sess, http.MethodGet, "/admin/activity", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	log := &fakeActivity{rows: []models.AdminAction{
		{EventID: "e1", Resource: "products", EntityID: "1", Action: models.ActionUpdate},
		{EventID: "e2", Resource: "orders", EntityID: "o1", Action: models.ActionStatusChange},
	}}
	h = newHarness(t, true, func(o *Options) { o.Activity = log })
	sess = h.signIn("admin")

	w = h.do(sess, http.MethodGet, "/admin/activity?resource=orders&id=o1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)

	w = h.do(sess, http.MethodGet, "/admin/activity?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadRejectsNonImage(t *testing.T) {
	h := newHarness(t, true, nil)
	sess := h.signIn("admin")

	body := &bytes.Buffer{}
	body.WriteString("--b\r\nContent-Disposition: form-data; name=\"image\"; filename=\"a.txt\"\r\nContent-Type: text/plain\r\n\r\nhello\r\n--b--\r\n")
	req := httptest.NewRequest(http.MethodPost, "/admin/products/upload", body)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=b")
	req.AddCookie(&http.Cookie{Name: cookieName, Value: sess.ID})
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "valid image file"))
	assert.Equal(t, 0, h.api.count("POST /products/upload"))
}
