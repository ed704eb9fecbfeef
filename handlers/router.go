package handlers

import (
	"legalassist-backend/observability"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterConfig lists what the router serves. Export, Metrics and Gatherer are optional.
type RouterConfig struct {
	Assistant   *AssistantHandler
	Export      *ExportHandler
	Metrics     *observability.Metrics
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
	Logger      *zap.Logger
}

// NewRouter builds the gin engine with the API routes
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(logger), CORS(cfg.CORSOrigins), cfg.Metrics.GinMiddleware())

	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", cfg.Assistant.Health)
		api.GET("/codes", cfg.Assistant.ListCodes)
		api.POST("/chat", cfg.Assistant.Chat)
		api.POST("/chat/pdf", cfg.Assistant.ChatPDF)

		if cfg.Export != nil {
			api.GET("/exports/articles.csv", cfg.Export.GetArticlesCSV)
		}
	}
	return r
}
