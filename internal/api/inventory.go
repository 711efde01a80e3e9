package api

import (
	"context"
	"net/http"

	"villagemart-admin/internal/form"
	"villagemart-admin/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listInventory(c *gin.Context) {
	sess, ws := currentSession(c), currentWorkspace(c)
	err := h.svc.Inventory.Load(c.Request.Context(), sess, ws.Inventory, forceRefresh(c))
	p, ok := page(h, c, ws.Inventory, err, service.InventoryFilters)
	if !ok {
		return
	}
	items := ws.Inventory.Items()
	c.JSON(http.StatusOK, gin.H{
		"page":       p,
		"summary":    service.SummarizeInventory(items),
		"categories": service.Categories(items),
	})
}

// adjustStock takes the product id from the path; a body productId is ignored.
// The products list shows stock too, so it is reloaded on its next view.
func (h *Handler) adjustStock(c *gin.Context) {
	var draft form.StockAdjustmentDraft
	if !bind(c, &draft) {
		return
	}
	draft.ProductID = c.Param("productId")

	sess, ws := currentSession(c), currentWorkspace(c)
	submit(h, c, "stock adjustment", draft, http.StatusOK, func(ctx context.Context, d form.StockAdjustmentDraft) (any, error) {
		item, err := h.svc.Inventory.Adjust(ctx, sess, ws.Inventory, d)
		if err == nil {
			ws.Products.Invalidate()
		}
		return item, err
	})
}
