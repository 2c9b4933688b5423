package handler

import (
	"net/http"

	"github.com/aman1195/risk-scan-pro/model"
	"github.com/aman1195/risk-scan-pro/service"
	"github.com/gin-gonic/gin"
)

// GenerateHandler serves the one-shot contract generation endpoint
type GenerateHandler struct {
	generator *service.Generator
}

func NewGenerateHandler(generator *service.Generator) *GenerateHandler {
	return &GenerateHandler{generator: generator}
}

// GenerateRequest is the flat form the browser posts
type GenerateRequest struct {
	ContractType       string          `json:"contractType"`
	FirstParty         string          `json:"firstParty"`
	FirstPartyAddress  string          `json:"firstPartyAddress"`
	SecondParty        string          `json:"secondParty"`
	SecondPartyAddress string          `json:"secondPartyAddress"`
	Jurisdiction       string          `json:"jurisdiction"`
	Description        string          `json:"description"`
	KeyTerms           string          `json:"keyTerms"`
	Intensity          model.Intensity `json:"intensity"`
	AIModel            string          `json:"aiModel"`
}

func (r *GenerateRequest) params() model.ContractParams {
	return model.ContractParams{
		ContractType: r.ContractType,
		FirstParty:   model.Party{Name: r.FirstParty, Address: r.FirstPartyAddress},
		SecondParty:  model.Party{Name: r.SecondParty, Address: r.SecondPartyAddress},
		Jurisdiction: r.Jurisdiction,
		Description:  r.Description,
		KeyTerms:     r.KeyTerms,
		Intensity:    r.Intensity,
		AIModel:      r.AIModel,
	}
}

type GenerateResponse struct {
	ContractText string `json:"contractText"`
}

func (h *GenerateHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	html, err := h.generator.Generate(c.Request.Context(), req.params())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{ContractText: html})
}
