package handler

import (
	"net/http"

	"github.com/aman1195/risk-scan-pro/model"
	"github.com/aman1195/risk-scan-pro/provider"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the option lists the forms are built from
type CatalogHandler struct {
	registry *provider.Registry
}

func NewCatalogHandler(registry *provider.Registry) *CatalogHandler {
	return &CatalogHandler{registry: registry}
}

func (h *CatalogHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"contractTypes": model.ContractTypes,
		"jurisdictions": model.Jurisdictions,
		"intensities":   model.Intensities,
		"aiModels":      h.registry.List(),
	})
}

func (h *CatalogHandler) RiskBands(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"bands": model.RiskBands()})
}
