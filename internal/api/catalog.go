package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sulphurninja/oceanlinux-sub001/internal/catalog"
	"github.com/sulphurninja/oceanlinux-sub001/internal/domain/provider"
)

func (r *Router) ListCatalog(c *gin.Context) {
	name := provider.Name(c.Param("provider"))
	switch name {
	case provider.Hostycare, provider.SmartVPS, provider.Virtualizor:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown provider"})
		return
	}

	mappings, err := r.registry.ListByProvider(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mappings": mappings})
}

type catalogRequest struct {
	Provider   string `json:"provider" binding:"required"`
	MemoryTier string `json:"memory_tier" binding:"required"`
	ProductID  string `json:"product_id" binding:"required"`
	TemplateID string `json:"template_id"`
	IsDefault  bool   `json:"is_default"`
	Active     *bool  `json:"active"`
}

func (r *Router) UpsertCatalog(c *gin.Context) {
	var req catalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	mapping := &catalog.ProductMapping{
		Provider:   req.Provider,
		MemoryTier: req.MemoryTier,
		ProductID:  req.ProductID,
		TemplateID: req.TemplateID,
		IsDefault:  req.IsDefault,
		Active:     active,
	}
	if err := r.registry.Upsert(c.Request.Context(), mapping); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved", "mapping": mapping})
}
