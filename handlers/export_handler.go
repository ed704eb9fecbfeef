package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"legalassist-backend/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DatasetSource opens the CSV export of the stored articles
type DatasetSource interface {
	DatasetCSV(ctx context.Context) (io.ReadCloser, error)
}

// ExportHandler serves the article dataset
type ExportHandler struct {
	source DatasetSource
	logger *zap.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(source DatasetSource, logger *zap.Logger) *ExportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportHandler{source: source, logger: logger}
}

// GetArticlesCSV handles GET /api/exports/articles.csv
func (h *ExportHandler) GetArticlesCSV(c *gin.Context) {
	rc, err := h.source.DatasetCSV(c.Request.Context())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Aucun article enregistré."})
			return
		}
		h.logger.Error("failed to open dataset", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Export indisponible."})
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="articles_dataset.csv"`)
	c.Header("Content-Type", storage.ContentTypeFor("articles_dataset.csv"))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		h.logger.Warn("dataset download interrupted", zap.Error(err))
	}
}
