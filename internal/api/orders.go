package api

import (
	"context"
	"net/http"

	"villagemart-admin/internal/form"
	"villagemart-admin/internal/models"
	"villagemart-admin/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listOrders(c *gin.Context) {
	sess, ws := currentSession(c), currentWorkspace(c)
	err := h.svc.Orders.Load(c.Request.Context(), sess, ws.Orders, forceRefresh(c))
	p, ok := page(h, c, ws.Orders, err, service.OrderFilters)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"page":  p,
		"stats": service.SummarizeOrders(ws.Orders.Items()),
	})
}

func (h *Handler) getOrder(c *gin.Context) {
	sess, ws := currentSession(c), currentWorkspace(c)
	o, err := h.svc.Orders.Get(c.Request.Context(), sess, ws.Orders, c.Param("id"))
	if err != nil {
		h.fail(c, err, "Order not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": o})
}

type statusRequest struct {
	Status models.OrderStatus `json:"status"`
}

type paymentRequest struct {
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	var req statusRequest
	if !bind(c, &req) {
		return
	}
	sess, ws := currentSession(c), currentWorkspace(c)
	o, err := h.svc.Orders.UpdateStatus(c.Request.Context(), sess, ws.Orders, c.Param("id"), req.Status)
	if err != nil {
		h.fail(c, err, "Failed to update order status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": o})
}

func (h *Handler) updateOrderPayment(c *gin.Context) {
	var req paymentRequest
	if !bind(c, &req) {
		return
	}
	sess, ws := currentSession(c), currentWorkspace(c)
	o, err := h.svc.Orders.UpdatePayment(c.Request.Context(), sess, ws.Orders, c.Param("id"), req.PaymentStatus)
	if err != nil {
		h.fail(c, err, "Failed to update payment status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": o})
}

func (h *Handler) listCustomers(c *gin.Context) {
	sess, ws := currentSession(c), currentWorkspace(c)
	err := h.svc.Customers.Load(c.Request.Context(), sess, ws.Customers, forceRefresh(c))
	p, ok := page(h, c, ws.Customers, err, service.CustomerFilters)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"page":  p,
		"stats": service.SummarizeCustomers(ws.Customers.Items()),
	})
}

func (h *Handler) createCustomer(c *gin.Context) {
	var draft form.CustomerDraft
	if !bind(c, &draft) {
		return
	}
	draft.Creating = true
	sess, ws := currentSession(c), currentWorkspace(c)
	submit(h, c, "customer", draft, http.StatusCreated, func(ctx context.Context, d form.CustomerDraft) (any, error) {
		return h.svc.Customers.Create(ctx, sess, ws.Customers, d)
	})
}

func (h *Handler) updateCustomer(c *gin.Context) {
	var draft form.CustomerDraft
	if !bind(c, &draft) {
		return
	}
	draft.Creating = false
	sess, ws, id := currentSession(c), currentWorkspace(c), c.Param("id")
	submit(h, c, "customer", draft, http.StatusOK, func(ctx context.Context, d form.CustomerDraft) (any, error) {
		return h.svc.Customers.Update(ctx, sess, ws.Customers, id, d)
	})
}

func (h *Handler) deleteCustomer(c *gin.Context) {
	sess, ws := currentSession(c), currentWorkspace(c)
	if err := h.svc.Customers.Delete(c.Request.Context(), sess, ws.Customers, c.Param("id")); err != nil {
		h.fail(c, err, "Failed to delete customer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}
