package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sulphurninja/oceanlinux-sub001/internal/wallet"
)

func (r *Router) resellerID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reseller id"})
		return 0, false
	}
	return id, true
}

func (r *Router) WalletBalance(c *gin.Context) {
	id, ok := r.resellerID(c)
	if !ok {
		return
	}
	reseller, err := r.ledger.Balance(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, wallet.ErrResellerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reseller_id":       reseller.ID,
		"balance":           reseller.Balance,
		"credit_limit":      reseller.CreditLimit,
		"available":         reseller.Balance + reseller.CreditLimit,
		"balance_display":   wallet.FormatINR(reseller.Balance),
		"available_display": wallet.FormatINR(reseller.Balance + reseller.CreditLimit),
		"total_spent":       reseller.TotalSpent,
		"total_orders":      reseller.TotalOrders,
	})
}

func (r *Router) WalletTransactions(c *gin.Context) {
	id, ok := r.resellerID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	txns, err := r.ledger.Transactions(c.Request.Context(), id, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns})
}

type rechargeRequest struct {
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Description string `json:"description"`
}

func (r *Router) WalletRecharge(c *gin.Context) {
	id, ok := r.resellerID(c)
	if !ok {
		return
	}
	var req rechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Description == "" {
		req.Description = "Wallet recharge"
	}
	if err := r.ledger.Recharge(c.Request.Context(), id, req.Amount, req.Description); err != nil {
		if errors.Is(err, wallet.ErrResellerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "recharged"})
}
