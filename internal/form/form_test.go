package form

import (
	"context"
	"errors"
	"testing"

	"villagemart-admin/internal/apiclient"
	"villagemart-admin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Fresh Fruits!":          "fresh-fruits",
		"  Dairy & Eggs  ":       "dairy-eggs",
		"Snacks__and--Sweets":    "snacks-and-sweets",
		"-Leading and trailing-": "leading-and-trailing",
		"":                       "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestCategorySlugFollowsName(t *testing.T) {
	var d CategoryDraft
	d.SetName("Fresh Fruits!")
	assert.Equal(t, "fresh-fruits", d.Slug)

	d.SetSlug("fruit")
	d.SetName("Fresh Fruit & Veg")
	assert.Equal(t, "fruit", d.Slug)

	d.SetSlug("")
	assert.Equal(t, "fresh-fruit-veg", d.Slug)
}

func TestCategoryDraftFromKeepsSlug(t *testing.T) {
	d := CategoryDraftFrom(models.Category{Name: "Dairy", Slug: "dairy-products"})
	d.SetName("Dairy & Eggs")
	assert.Equal(t, "dairy-products", d.Slug)
}

func TestCategoryNormalizeDefaultsSlug(t *testing.T) {
	d := CategoryDraft{Name: "Bakery Goods", Description: "Fresh bread daily"}
	require.NoError(t, Validate("category", &d))
	assert.Equal(t, "bakery-goods", d.Slug)
}

func TestCategoryValidation(t *testing.T) {
	d := CategoryDraft{Name: "Bakery", Description: "short", ImageURL: "not a url"}
	fe, ok := AsFieldErrors(Validate("category", &d))
	require.True(t, ok)
	assert.Equal(t, "Description must be at least 10 characters long", fe["description"])
	assert.Equal(t, "Please enter a valid image URL", fe["imageUrl"])
}

func TestCustomerEmailShape(t *testing.T) {
	d := CustomerDraft{Email: "not-an-email", FirstName: "Ada", LastName: "Lovelace", Password: "secret1", Creating: true}
	fe, ok := AsFieldErrors(Validate("customer", &d))
	require.True(t, ok)
	assert.Equal(t, FieldErrors{"email": "Please enter a valid email address"}, fe)
}

func TestCustomerPasswordOnlyOnCreate(t *testing.T) {
	d := CustomerDraft{Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace", Password: "abc", Creating: true}
	fe, ok := AsFieldErrors(Validate("customer", &d))
	require.True(t, ok)
	assert.Equal(t, "Password must be at least 6 characters long", fe["password"])

	d.Password = ""
	fe, _ = AsFieldErrors(Validate("customer", &d))
	assert.Equal(t, "Password is required", fe["password"])

	d.Creating = false
	assert.NoError(t, Validate("customer", &d))
}

func TestProductValidation(t *testing.T) {
	d := ProductDraft{Name: "  ", Description: "Crisp", SKU: "FRU-1", Price: 0, Stock: -1}
	fe, ok := AsFieldErrors(Validate("product", &d))
	require.True(t, ok)
	assert.Equal(t, "Name is required", fe["name"])
	assert.Equal(t, "Price must be greater than 0", fe["price"])
	assert.Equal(t, "Stock cannot be negative", fe["stock"])
	assert.Equal(t, "Category is required", fe["categoryId"])
	_, hasSKU := fe["sku"]
	assert.False(t, hasSKU)
}

func TestPasswordDraft(t *testing.T) {
	d := PasswordDraft{CurrentPassword: "old", NewPassword: "short", ConfirmPassword: "other"}
	fe, ok := AsFieldErrors(Validate("password", &d))
	require.True(t, ok)
	assert.Equal(t, "New password must be at least 8 characters long", fe["newPassword"])
	assert.Equal(t, "Passwords do not match", fe["confirmPassword"])

	d = PasswordDraft{CurrentPassword: "old", NewPassword: "longenough", ConfirmPassword: "longenough"}
	assert.NoError(t, Validate("password", &d))
}

func TestStockAdjustmentDraft(t *testing.T) {
	d := StockAdjustmentDraft{ProductID: "p1", NewQuantity: 5, Reason: " recount "}
	require.NoError(t, Validate("stock", &d))
	assert.Equal(t, models.AdjustSet, d.Type)
	assert.Equal(t, "recount", d.Adjustment().Reason)

	d.Type = "double"
	fe, _ := AsFieldErrors(Validate("stock", &d))
	assert.Equal(t, "Type must be one of: set, increase, decrease", fe["type"])
}

func TestAppearanceDraft(t *testing.T) {
	d := AppearanceDraft{Theme: "neon", AccentColor: "green"}
	fe, ok := AsFieldErrors(Validate("appearance", &d))
	require.True(t, ok)
	assert.Contains(t, fe, "theme")
	assert.Contains(t, fe, "accentColor")

	d = AppearanceDraft{Theme: "dark", AccentColor: "#10b981"}
	require.NoError(t, Validate("appearance", &d))
	assert.Equal(t, "dark", d.Appearance().Theme)
}

func TestCheckImage(t *testing.T) {
	assert.NoError(t, CheckImage("image/png", 1024))
	assert.NoError(t, CheckImage("image/jpeg; charset=binary", MaxImageBytes))
	assert.Error(t, CheckImage("image/webp", 1024))
	assert.Error(t, CheckImage("image/gif", MaxImageBytes+1))
}

func TestImageURL(t *testing.T) {
	assert.Equal(t, "http://localhost:4000/uploads/a.png", ImageURL("http://localhost:4000/", "/uploads/a.png"))
	assert.Equal(t, "https://cdn.test/a.png", ImageURL("http://localhost:4000", "https://cdn.test/a.png"))
}

func TestModalSubmit(t *testing.T) {
	t.Run("validation failure skips save", func(t *testing.T) {
		m := NewModal("customer", CustomerDraft{Email: "not-an-email", FirstName: "Ada", LastName: "L"})
		called := false
		err := m.Submit(context.Background(), func(context.Context, CustomerDraft) error {
			called = true
			return nil
		})
		require.Error(t, err)
		assert.False(t, called)
		assert.True(t, m.Open)
		assert.Contains(t, m.Errors, "email")
	})

	t.Run("save error keeps modal open", func(t *testing.T) {
		m := NewModal("customer", CustomerDraft{Email: "ada@example.com", FirstName: "Ada", LastName: "L"})
		err := m.Submit(context.Background(), func(context.Context, CustomerDraft) error {
			return &apiclient.APIError{Kind: apiclient.KindHTTP, Status: 409, Message: "Email already registered"}
		})
		require.Error(t, err)
		assert.True(t, m.Open)
		assert.Equal(t, "Email already registered", m.Err)
	})

	t.Run("save error without message uses fallback", func(t *testing.T) {
		m := NewModal("category", CategoryDraft{Name: "Bakery", Description: "Fresh bread daily"})
		err := m.Submit(context.Background(), func(context.Context, CategoryDraft) error {
			return &apiclient.APIError{Kind: apiclient.KindHTTP, Status: 400}
		})
		require.Error(t, err)
		assert.Equal(t, "Failed to save category", m.Err)
	})

	t.Run("success closes", func(t *testing.T) {
		m := NewModal("category", CategoryDraft{Name: "Bakery", Description: "Fresh bread daily"})
		var saved CategoryDraft
		err := m.Submit(context.Background(), func(_ context.Context, d CategoryDraft) error {
			saved = d
			return nil
		})
		require.NoError(t, err)
		assert.False(t, m.Open)
		assert.Equal(t, "bakery", saved.Slug)
	})

	t.Run("plain error is shown as is", func(t *testing.T) {
		m := NewModal("category", CategoryDraft{Name: "Bakery", Description: "Fresh bread daily"})
		_ = m.Submit(context.Background(), func(context.Context, CategoryDraft) error { return errors.New("boom") })
		assert.Equal(t, "boom", m.Err)
	})
}
