package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/provider"
	"github.com/sulphurninja/oceanlinux-sub001/internal/wallet"
	"github.com/sulphurninja/oceanlinux-sub001/pkg/remote"
)

func (r *Router) orderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return 0, false
	}
	return id, true
}

// writeError maps domain and provider failures onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var insufficient *wallet.InsufficientBalanceError
	if errors.As(err, &insufficient) {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":     err.Error(),
			"available": insufficient.Available,
			"required":  insufficient.Required,
		})
		return
	}
	if errors.Is(err, provider.ErrUnsupported) {
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
		return
	}
	var transportErr *remote.TransportError
	if errors.As(err, &transportErr) {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
		return
	}
	var protoErr *remote.ProtocolError
	if errors.As(err, &protoErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if strings.Contains(err.Error(), "not found") {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// ProvisionOrder kicks the full provisioning flow for a pending order.
func (r *Router) ProvisionOrder(c *gin.Context) {
	id, ok := r.orderID(c)
	if !ok {
		return
	}
	if err := r.provisionUC.Execute(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "provisioned"})
}

type renewRequest struct {
	Months int `json:"months"`
}

func (r *Router) RenewOrder(c *gin.Context) {
	id, ok := r.orderID(c)
	if !ok {
		return
	}
	// Body is optional; a missing or empty months defaults to one period.
	var req renewRequest
	_ = c.ShouldBindJSON(&req)
	if req.Months < 1 {
		req.Months = 1
	}
	if err := r.renewUC.Execute(c.Request.Context(), id, req.Months); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "renewed"})
}

func (r *Router) StartOrder(c *gin.Context) {
	r.runAction(c, r.actionUC.Start, "started")
}

func (r *Router) StopOrder(c *gin.Context) {
	r.runAction(c, r.actionUC.Stop, "stopped")
}

func (r *Router) RebootOrder(c *gin.Context) {
	r.runAction(c, r.actionUC.Reboot, "rebooted")
}

type passwordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func (r *Router) ChangeOrderPassword(c *gin.Context) {
	id, ok := r.orderID(c)
	if !ok {
		return
	}
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := r.actionUC.ChangePassword(c.Request.Context(), id, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "password_changed"})
}

type reinstallRequest struct {
	TemplateID string `json:"template_id"`
}

func (r *Router) ReinstallOrder(c *gin.Context) {
	id, ok := r.orderID(c)
	if !ok {
		return
	}
	var req reinstallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	newPassword, err := r.actionUC.Reinstall(c.Request.Context(), id, req.TemplateID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reinstalling", "new_password": newPassword})
}

func (r *Router) ListOrderTemplates(c *gin.Context) {
	id, ok := r.orderID(c)
	if !ok {
		return
	}
	templates, err := r.actionUC.ListTemplates(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

func (r *Router) OrderStatus(c *gin.Context) {
	id, ok := r.orderID(c)
	if !ok {
		return
	}
	status, err := r.actionUC.Status(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": status.State, "ip": status.IP})
}

func (r *Router) ListOrderAudits(c *gin.Context) {
	id, ok := r.orderID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	records, err := r.auditStore.ListByOrder(c.Request.Context(), id, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audits": records})
}

func (r *Router) runAction(c *gin.Context, action func(ctx context.Context, orderID int64) error, status string) {
	id, ok := r.orderID(c)
	if !ok {
		return
	}
	if err := action(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
