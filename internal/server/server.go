package server

import (
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ticketdash/internal/dashboard"
	"ticketdash/internal/metrics"
)

type Server struct {
	dash     *dashboard.Service
	log      *zap.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	page     *template.Template
}

// New builds the server. gatherer backs /metrics; nil uses the default
// registry.
func New(dash *dashboard.Service, log *zap.Logger, m *metrics.Metrics, gatherer prometheus.Gatherer) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	page, err := parsePage()
	if err != nil {
		return nil, err
	}
	return &Server{dash: dash, log: log, metrics: m, gatherer: gatherer, page: page}, nil
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())
	r.Use(cors.New(corsConfig(s.dash.Config().CORSOrigins)))

	r.GET("/", s.index)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	api.GET("/tickets", s.tickets)
	api.GET("/choices", s.choices)
	api.GET("/summary", s.summary)
	api.GET("/report", s.report)
	api.GET("/export.xlsx", s.exportXLSX)
	api.GET("/documents/:id", s.document)
	api.GET("/documents/:id/preview", s.preview)
	api.POST("/refresh", s.refresh)

	return r
}

// HTTPServer wraps the router with the timeouts used in production.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Accept-Language"}
	cfg.ExposeHeaders = []string{"Content-Disposition"}
	return cfg
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		if s.metrics != nil {
			s.metrics.Requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		}
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
