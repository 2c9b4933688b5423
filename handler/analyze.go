package handler

import (
	"net/http"
	"strings"

	"github.com/aman1195/risk-scan-pro/middleware"
	"github.com/aman1195/risk-scan-pro/model"
	"github.com/aman1195/risk-scan-pro/service"
	"github.com/gin-gonic/gin"
)

// AnalyzeHandler serves the synchronous analysis endpoint
type AnalyzeHandler struct {
	lifecycle *service.Lifecycle
	analyzer  *service.Analyzer
}

func NewAnalyzeHandler(lifecycle *service.Lifecycle, analyzer *service.Analyzer) *AnalyzeHandler {
	return &AnalyzeHandler{lifecycle: lifecycle, analyzer: analyzer}
}

type AnalyzeRequest struct {
	DocumentID string `json:"documentId"`
	Content    string `json:"content"`
}

type AnalyzeResponse struct {
	Success  bool            `json:"success"`
	Analysis *model.Analysis `json:"analysis"`
}

// Analyze runs analysis for a document the caller already created and
// waits for the result.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.DocumentID == "" || strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Document ID and content are required"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.lifecycle.Document(ctx, middleware.GetUserID(c), req.DocumentID); err != nil {
		respondError(c, err)
		return
	}

	analysis, err := h.analyzer.Analyze(ctx, req.DocumentID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AnalyzeResponse{Success: true, Analysis: analysis})
}
