package handler

import (
	"net/http"

	"github.com/aman1195/risk-scan-pro/middleware"
	"github.com/aman1195/risk-scan-pro/model"
	"github.com/aman1195/risk-scan-pro/service"
	"github.com/gin-gonic/gin"
)

// ContractHandler serves the user's contract library
type ContractHandler struct {
	contracts *service.ContractService
}

func NewContractHandler(contracts *service.ContractService) *ContractHandler {
	return &ContractHandler{contracts: contracts}
}

type CreateContractRequest struct {
	Title string `json:"title"`
	model.ContractParams
}

// Create stores a draft from the form parameters
func (h *ContractHandler) Create(c *gin.Context) {
	var req CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	contract, err := h.contracts.Create(c.Request.Context(), middleware.GetUserID(c), req.Title, req.ContractParams)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, contract)
}

// List returns the caller's contracts without their content
func (h *ContractHandler) List(c *gin.Context) {
	contracts, err := h.contracts.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]gin.H, len(contracts))
	for i, contract := range contracts {
		result[i] = gin.H{
			"id":           contract.ID,
			"title":        contract.Title,
			"contractType": contract.Params.ContractType,
			"aiModel":      contract.Params.AIModel,
			"status":       contract.Status,
			"created_at":   contract.CreatedAt,
			"updated_at":   contract.UpdatedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{"contracts": result})
}

func (h *ContractHandler) Get(c *gin.Context) {
	contract, err := h.contracts.Get(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}

// Generate drafts the contract's content. Failures leave the contract
// failed and are reported with the matching status.
func (h *ContractHandler) Generate(c *gin.Context) {
	contract, err := h.contracts.Generate(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}

func (h *ContractHandler) Save(c *gin.Context) {
	contract, err := h.contracts.Save(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}

// Download returns a presigned link to the archived markup
func (h *ContractHandler) Download(c *gin.Context) {
	url, err := h.contracts.ArchiveURL(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *ContractHandler) Delete(c *gin.Context) {
	if err := h.contracts.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contract deleted"})
}
