package handler

import (
	"net/http"

	"github.com/aman1195/risk-scan-pro/middleware"
	"github.com/aman1195/risk-scan-pro/model"
	"github.com/aman1195/risk-scan-pro/service"
	"github.com/gin-gonic/gin"
)

// DocumentHandler serves the user's analyzed document library
type DocumentHandler struct {
	lifecycle *service.Lifecycle
	analyzer  *service.Analyzer
}

func NewDocumentHandler(lifecycle *service.Lifecycle, analyzer *service.Analyzer) *DocumentHandler {
	return &DocumentHandler{lifecycle: lifecycle, analyzer: analyzer}
}

type SubmitRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Submit stores a document and queues its analysis. The response is the
// document in its analyzing state.
func (h *DocumentHandler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	doc, err := h.analyzer.Submit(c.Request.Context(), middleware.GetUserID(c), req.Title, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, doc)
}

// List returns the caller's documents, optionally filtered by status,
// risk level and a title search.
func (h *DocumentHandler) List(c *gin.Context) {
	filter := service.DocumentFilter{Query: c.Query("q")}

	if s := c.Query("status"); s != "" {
		status := model.DocumentStatus(s)
		switch status {
		case model.StatusAnalyzing, model.StatusCompleted, model.StatusError:
			filter.Status = status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
	}
	if r := c.Query("risk"); r != "" {
		level, err := model.ParseRiskLevel(r)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid risk filter"})
			return
		}
		filter.Risk = level
	}

	docs, err := h.lifecycle.Documents(c.Request.Context(), middleware.GetUserID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.lifecycle.Document(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// GetStatus returns only the state fields, for polling
func (h *DocumentHandler) GetStatus(c *gin.Context) {
	doc, err := h.lifecycle.Document(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"id": doc.ID, "status": doc.Status()}
	switch s := doc.State.(type) {
	case model.Analyzing:
		resp["progress"] = s.Progress
	case model.Completed:
		resp["progress"] = 100
	case model.Failed:
		resp["error"] = s.Error
	default:
		panic("handler: unhandled document state")
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.analyzer.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}
