package api

import (
	"context"
	"io"
	"net/http"

	"villagemart-admin/internal/form"
	"villagemart-admin/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listProducts(c *gin.Context) {
	sess, ws := currentSession(c), currentWorkspace(c)
	ctx := c.Request.Context()

	err := h.svc.Products.Load(ctx, sess, ws.Products, forceRefresh(c))
	p, ok := page(h, c, ws.Products, err, service.ProductFilters)
	if !ok {
		return
	}

	// The category dropdown is best effort.
	if catErr := h.svc.Categories.Load(ctx, sess, ws.Categories, false); h.expired(c, catErr) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page":       p,
		"stats":      service.SummarizeProducts(ws.Products.Items()),
		"categories": ws.Categories.Items(),
	})
}

func (h *Handler) createProduct(c *gin.Context) {
	var draft form.ProductDraft
	if !bind(c, &draft) {
		return
	}
	sess, ws := currentSession(c), currentWorkspace(c)
	submit(h, c, "product", draft, http.StatusCreated, func(ctx context.Context, d form.ProductDraft) (any, error) {
		p, err := h.svc.Products.Create(ctx, sess, ws.Products, d)
		if err == nil {
			ws.Inventory.Invalidate()
		}
		return p, err
	})
}

func (h *Handler) updateProduct(c *gin.Context) {
	var draft form.ProductDraft
	if !bind(c, &draft) {
		return
	}
	sess, ws, id := currentSession(c), currentWorkspace(c), c.Param("id")
	submit(h, c, "product", draft, http.StatusOK, func(ctx context.Context, d form.ProductDraft) (any, error) {
		p, err := h.svc.Products.Update(ctx, sess, ws.Products, id, d)
		if err == nil {
			ws.Inventory.Invalidate()
		}
		return p, err
	})
}

func (h *Handler) deleteProduct(c *gin.Context) {
	sess, ws := currentSession(c), currentWorkspace(c)
	if err := h.svc.Products.Delete(c.Request.Context(), sess, ws.Products, c.Param("id")); err != nil {
		h.fail(c, err, "Failed to delete product")
		return
	}
	ws.Inventory.Invalidate()
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

func (h *Handler) toggleProduct(c *gin.Context) {
	sess, ws := currentSession(c), currentWorkspace(c)
	p, err := h.svc.Products.ToggleActive(c.Request.Context(), sess, ws.Products, c.Param("id"))
	if err != nil {
		h.fail(c, err, "Failed to update product status")
		return
	}
	ws.Inventory.Invalidate()
	c.JSON(http.StatusOK, gin.H{"data": p})
}

func (h *Handler) uploadProductImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Please select an image to upload",
			"details": err.Error(),
		})
		return
	}
	if err := form.CheckImage(file.Header.Get("Content-Type"), file.Size); err != nil {
		h.fail(c, err, "Failed to upload image")
		return
	}

	f, err := file.Open()
	if err != nil {
		h.fail(c, err, "Failed to read image")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, form.MaxImageBytes+1))
	if err != nil {
		h.fail(c, err, "Failed to read image")
		return
	}

	url, err := h.svc.Products.UploadImage(c.Request.Context(), currentSession(c), file.Filename, file.Header.Get("Content-Type"), data)
	if err != nil {
		h.fail(c, err, "Failed to upload image")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *Handler) listCategories(c *gin.Context) {
	sess, ws := currentSession(c), currentWorkspace(c)
	err := h.svc.Categories.Load(c.Request.Context(), sess, ws.Categories, forceRefresh(c))
	p, ok := page(h, c, ws.Categories, err, service.CategoryFilters)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"page":  p,
		"stats": service.SummarizeCategories(ws.Categories.Items()),
	})
}

func (h *Handler) createCategory(c *gin.Context) {
	var draft form.CategoryDraft
	if !bind(c, &draft) {
		return
	}
	sess, ws := currentSession(c), currentWorkspace(c)
	submit(h, c, "category", draft, http.StatusCreated, func(ctx context.Context, d form.CategoryDraft) (any, error) {
		return h.svc.Categories.Create(ctx, sess, ws.Categories, d)
	})
}

func (h *Handler) updateCategory(c *gin.Context) {
	var draft form.CategoryDraft
	if !bind(c, &draft) {
		return
	}
	sess, ws, id := currentSession(c), currentWorkspace(c), c.Param("id")
	submit(h, c, "category", draft, http.StatusOK, func(ctx context.Context, d form.CategoryDraft) (any, error) {
		return h.svc.Categories.Update(ctx, sess, ws.Categories, id, d)
	})
}

func (h *Handler) deleteCategory(c *gin.Context) {
	sess, ws := currentSession(c), currentWorkspace(c)
	if err := h.svc.Categories.Delete(c.Request.Context(), sess, ws.Categories, c.Param("id")); err != nil {
		h.fail(c, err, "Failed to delete category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}
