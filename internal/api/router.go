package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// DataRoute is the single data endpoint.
const DataRoute = "/api/data"

// RouterOptions configures the HTTP surface.
type RouterOptions struct {
	EnableCORS bool
	// CanaryHeader is allowed through CORS preflight when CORS is enabled.
	CanaryHeader string
	// Gatherer serves /metrics when non-nil.
	Gatherer prometheus.Gatherer
}

// NewRouter wires the data handler, health check and metrics endpoint.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(RequestID())
	router.Use(RequestLogger())
	router.Use(gin.Recovery())

	if opts.EnableCORS {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", RequestIDHeader}
		if opts.CanaryHeader != "" {
			corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, opts.CanaryHeader)
		}
		corsConfig.ExposeHeaders = []string{RequestIDHeader}
		router.Use(cors.New(corsConfig))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "simple-blob-manager",
			"time":    time.Now().UTC(),
		})
	})

	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	router.GET(DataRoute, h.Data)
	router.POST(DataRoute, h.Data)

	return router
}
