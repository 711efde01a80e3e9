package service

import (
	"context"
	"math"

	"villagemart-admin/internal/apiclient"
	"villagemart-admin/internal/form"
	"villagemart-admin/internal/models"
	"villagemart-admin/internal/sample"
	"villagemart-admin/internal/session"
	"villagemart-admin/internal/table"
	"villagemart-admin/internal/view"
)

var CategoryFilters = []string{"status"}

var CategoryView = view.Spec[models.Category]{
	Search: func(c models.Category) []string { return []string{c.Name, c.Description, c.Slug} },
	Filters: map[string]func(models.Category) string{
		"status": func(c models.Category) string { return activeLabel(c.IsActive) },
	},
	Sorts: map[string]view.Compare[models.Category]{
		"name":         view.By(func(c models.Category) string { return c.Name }, view.Strings),
		"productCount": view.By(func(c models.Category) int { return c.ProductCount }, view.Ordered[int]),
		"createdAt":    view.By(func(c models.Category) int64 { return c.CreatedAt.UnixNano() }, view.Ordered[int64]),
	},
	DefaultSort: "name",
}

// CategoryStats are the summary cards on the categories page.
type CategoryStats struct {
	Total                  int `json:"totalCategories"`
	Active                 int `json:"activeCategories"`
	TotalProducts          int `json:"totalProducts"`
	AvgProductsPerCategory int `json:"avgProductsPerCategory"`
}

func SummarizeCategories(categories []models.Category) CategoryStats {
	stats := CategoryStats{Total: len(categories)}
	for _, c := range categories {
		if c.IsActive {
			stats.Active++
		}
		stats.TotalProducts += c.ProductCount
	}
	if stats.Total > 0 {
		stats.AvgProductsPerCategory = int(math.Round(float64(stats.TotalProducts) / float64(stats.Total)))
	}
	return stats
}

func NewCategoryTable(cfg TableConfig) *table.Controller[models.Category] {
	return table.New(table.Options[models.Category]{
		Resource: "categories",
		Timeout:  cfg.Timeout,
		Fallback: fallback(cfg, sample.Categories),
		View:     CategoryView,
	})
}

type CategoryService struct {
	api   *apiclient.Client
	audit *Auditor
}

func NewCategoryService(api *apiclient.Client, audit *Auditor) *CategoryService {
	return &CategoryService{api: api, audit: audit}
}

func (s *CategoryService) Load(ctx context.Context, sess *session.Session, c *table.Controller[models.Category], force bool) error {
	return loadOrEnsure(ctx, c, "categories", force, listOf[models.Category](s.api, sess, "/categories"))
}

// Create posts a category. A blank slug is derived from the name.
func (s *CategoryService) Create(ctx context.Context, sess *session.Session, c *table.Controller[models.Category], draft form.CategoryDraft) (models.Category, error) {
	if draft.Slug == "" {
		draft.Slug = form.Slugify(draft.Name)
	}
	created, err := c.Create(ctx, func(ctx context.Context) (models.Category, error) {
		var cat models.Category
		err := s.api.Post(ctx, sess, "/categories", draft, &cat)
		return cat, err
	})
	if err != nil {
		return created, err
	}
	s.audit.Record(ctx, sess, "categories", created.ID, models.ActionCreate, created.Slug)
	return created, nil
}

func (s *CategoryService) Update(ctx context.Context, sess *session.Session, c *table.Controller[models.Category], id string, draft form.CategoryDraft) (models.Category, error) {
	if draft.Slug == "" {
		draft.Slug = form.Slugify(draft.Name)
	}
	updated, err := c.Update(ctx, id, func(ctx context.Context) (models.Category, error) {
		var cat models.Category
		err := s.api.Patch(ctx, sess, "/categories/"+escape(id), draft, &cat)
		return cat, err
	})
	if err != nil {
		return updated, err
	}
	s.audit.Record(ctx, sess, "categories", id, models.ActionUpdate, updated.Slug)
	return updated, nil
}

func (s *CategoryService) Delete(ctx context.Context, sess *session.Session, c *table.Controller[models.Category], id string) error {
	err := c.Delete(ctx, id, func(ctx context.Context) error {
		return s.api.Delete(ctx, sess, "/categories/"+escape(id), nil)
	})
	if err != nil {
		return err
	}
	s.audit.Record(ctx, sess, "categories", id, models.ActionDelete, "")
	return nil
}
