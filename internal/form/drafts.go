package form

import (
	"strings"

	"villagemart-admin/internal/models"

	"github.com/go-playground/validator/v10"
)

// ProductDraft is the create/edit product form.
type ProductDraft struct {
	Name            string  `json:"name" validate:"required"`
	Description     string  `json:"description" validate:"required"`
	SKU             string  `json:"sku" validate:"required" label:"SKU"`
	Price           float64 `json:"price" validate:"gt=0"`
	Stock           int     `json:"stock" validate:"gte=0"`
	CategoryID      string  `json:"categoryId" validate:"required" label:"Category"`
	ImageURL        string  `json:"imageUrl,omitempty"`
	IsActive        bool    `json:"isActive"`
	Brand           string  `json:"brand,omitempty"`
	Weight          float64 `json:"weight,omitempty" validate:"gte=0"`
	Dimensions      string  `json:"dimensions,omitempty"`
	MetaTitle       string  `json:"metaTitle,omitempty"`
	MetaDescription string  `json:"metaDescription,omitempty"`
}

func (d *ProductDraft) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	d.SKU = strings.TrimSpace(d.SKU)
	d.ImageURL = strings.TrimSpace(d.ImageURL)
}

// ProductDraftFrom fills the edit form from an existing product.
func ProductDraftFrom(p models.Product) ProductDraft {
	d := ProductDraft{
		Name:            p.Name,
		Description:     p.Description,
		SKU:             p.SKU,
		Price:           float64(p.Price),
		Stock:           p.Stock,
		ImageURL:        p.ImageURL,
		IsActive:        p.IsActive,
		Brand:           p.Brand,
		Weight:          p.Weight,
		Dimensions:      p.Dimensions,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
	}
	if p.Category != nil {
		d.CategoryID = p.Category.ID
	}
	return d
}

// CategoryDraft is the create/edit category form. The slug follows the name
// until it is set explicitly.
type CategoryDraft struct {
	Name            string `json:"name" validate:"required"`
	Slug            string `json:"slug"`
	Description     string `json:"description" validate:"required,min=10"`
	ImageURL        string `json:"imageUrl,omitempty" validate:"omitempty,url"`
	MetaTitle       string `json:"metaTitle,omitempty"`
	MetaDescription string `json:"metaDescription,omitempty"`
	IsActive        bool   `json:"isActive"`

	slugOverridden bool
}

// SetName updates the name and, unless overridden, the slug.
func (d *CategoryDraft) SetName(name string) {
	d.Name = name
	if !d.slugOverridden {
		d.Slug = Slugify(name)
	}
}

// SetSlug overrides the derived slug. An empty slug goes back to following the name.
func (d *CategoryDraft) SetSlug(slug string) {
	d.slugOverridden = strings.TrimSpace(slug) != ""
	if d.slugOverridden {
		d.Slug = slug
		return
	}
	d.Slug = Slugify(d.Name)
}

func (d *CategoryDraft) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	d.ImageURL = strings.TrimSpace(d.ImageURL)
	d.Slug = strings.TrimSpace(d.Slug)
	if d.Slug == "" {
		d.Slug = Slugify(d.Name)
	}
}

// CategoryDraftFrom fills the edit form. Existing slugs are kept as overrides.
func CategoryDraftFrom(c models.Category) CategoryDraft {
	return CategoryDraft{
		Name:            c.Name,
		Slug:            c.Slug,
		Description:     c.Description,
		ImageURL:        c.ImageURL,
		MetaTitle:       c.MetaTitle,
		MetaDescription: c.MetaDescription,
		IsActive:        c.IsActive,
		slugOverridden:  c.Slug != "",
	}
}

// CustomerDraft is the create/edit customer form. A password is only
// required when creating.
type CustomerDraft struct {
	Email     string `json:"email" validate:"required,loose_email"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone,omitempty"`
	Password  string `json:"password,omitempty"`
	IsActive  bool   `json:"isActive"`

	Creating bool `json:"-"`
}

func (d *CustomerDraft) Normalize() {
	d.Email = strings.TrimSpace(d.Email)
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Phone = strings.TrimSpace(d.Phone)
}

func customerLevel(sl validator.StructLevel) {
	d := sl.Current().Interface().(CustomerDraft)
	if !d.Creating {
		return
	}
	switch {
	case d.Password == "":
		sl.ReportError(d.Password, "password", "Password", "required", "")
	case len(d.Password) < 6:
		sl.ReportError(d.Password, "password", "Password", "min", "6")
	}
}

// ProfileDraft edits the signed-in admin's own details.
type ProfileDraft struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,loose_email"`
	Phone     string `json:"phone,omitempty"`
}

func (d *ProfileDraft) Normalize() {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Email = strings.TrimSpace(d.Email)
	d.Phone = strings.TrimSpace(d.Phone)
}

// PasswordDraft is the change-password form.
type PasswordDraft struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8" label:"New password"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// StockAdjustmentDraft is the inventory adjust form.
type StockAdjustmentDraft struct {
	ProductID   string                `json:"productId" validate:"required" label:"Product"`
	Type        models.AdjustmentType `json:"type" validate:"required,oneof=set increase decrease"`
	NewQuantity int                   `json:"newQuantity" validate:"gte=0" label:"Quantity"`
	Reason      string                `json:"reason" validate:"required"`
}

func (d *StockAdjustmentDraft) Normalize() {
	d.Reason = strings.TrimSpace(d.Reason)
	if d.Type == "" {
		d.Type = models.AdjustSet
	}
}

// Adjustment converts the form to the request body.
func (d StockAdjustmentDraft) Adjustment() models.StockAdjustment {
	return models.StockAdjustment{
		ProductID:   d.ProductID,
		NewQuantity: d.NewQuantity,
		Reason:      d.Reason,
		Type:        d.Type,
	}
}

// LoginDraft is the sign-in form.
type LoginDraft struct {
	Email    string `json:"email" validate:"required,loose_email"`
	Password string `json:"password" validate:"required"`
}

func (d *LoginDraft) Normalize() {
	d.Email = strings.TrimSpace(d.Email)
}

// AppearanceDraft edits the console theme.
type AppearanceDraft struct {
	Theme            string `json:"theme" validate:"required,oneof=light dark system"`
	AccentColor      string `json:"accentColor,omitempty" validate:"omitempty,hexcolor" label:"Accent colour"`
	LogoURL          string `json:"logoUrl,omitempty" validate:"omitempty,url" label:"Logo URL"`
	SidebarCollapsed bool   `json:"sidebarCollapsed"`
}

func (d AppearanceDraft) Appearance() models.Appearance {
	return models.Appearance{
		Theme:            d.Theme,
		AccentColor:      d.AccentColor,
		LogoURL:          d.LogoURL,
		SidebarCollapsed: d.SidebarCollapsed,
	}
}
