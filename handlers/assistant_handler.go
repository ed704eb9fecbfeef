package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"legalassist-backend/export"
	"legalassist-backend/legifrance"
	"legalassist-backend/models"
	"legalassist-backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	detailEmptyQuestion  = "La question ne peut pas être vide."
	detailInvalidRequest = "Requête invalide."
	detailInternal       = "Erreur interne pendant l'analyse"
	detailUnavailable    = "Assistant indisponible"
	pdfFilename          = "analyse_juridique.pdf"
)

// Assistant answers legal questions
type Assistant interface {
	Ask(ctx context.Context, question string, code *string) (*models.ChatResponse, error)
	Mode() string
}

// AssistantProvider returns the assistant, building it on first use
type AssistantProvider func() (Assistant, error)

// AssistantHandler handles HTTP requests for the legal assistant
type AssistantHandler struct {
	assistant AssistantProvider
	logger    *zap.Logger
}

// NewAssistantHandler creates a new assistant handler
func NewAssistantHandler(assistant AssistantProvider, logger *zap.Logger) *AssistantHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssistantHandler{
		assistant: assistant,
		logger:    logger,
	}
}

// Health handles GET /api/health
func (h *AssistantHandler) Health(c *gin.Context) {
	a, err := h.assistant()
	if err != nil {
		h.logger.Error("assistant unavailable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"detail": detailUnavailable,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"mode":   a.Mode(),
	})
}

// ListCodes handles GET /api/codes
func (h *AssistantHandler) ListCodes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"codes": legifrance.Codes(),
	})
}

// Chat handles POST /api/chat
func (h *AssistantHandler) Chat(c *gin.Context) {
	resp, ok := h.ask(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ChatPDF handles POST /api/chat/pdf. It answers the question and returns the analysis as a PDF.
func (h *AssistantHandler) ChatPDF(c *gin.Context) {
	resp, ok := h.ask(c)
	if !ok {
		return
	}

	pdf, err := export.BuildAnalysisPDF(resp.Question, resp.Analysis)
	if err != nil {
		h.logger.Error("failed to build PDF", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": detailInternal})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+pdfFilename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// ask binds the request and runs the assistant. On failure it writes the error response.
func (h *AssistantHandler) ask(c *gin.Context) (*models.ChatResponse, bool) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": detailInvalidRequest})
		return nil, false
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": detailEmptyQuestion})
		return nil, false
	}

	a, err := h.assistant()
	if err != nil {
		h.logger.Error("assistant unavailable", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": detailInternal})
		return nil, false
	}

	resp, err := a.Ask(c.Request.Context(), req.Question, req.Code)
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuestion) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": detailEmptyQuestion})
			return nil, false
		}
		h.logger.Error("chat failed", zap.Error(err), zap.String("request_id", c.GetString(requestIDKey)))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": detailInternal})
		return nil, false
	}
	return resp, true
}
