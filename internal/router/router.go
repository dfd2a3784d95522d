package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ccsfp/clinic-api/internal/handler"
	accountHandler "github.com/ccsfp/clinic-api/internal/handler/account"
	appointmentHandler "github.com/ccsfp/clinic-api/internal/handler/appointment"
	consultationHandler "github.com/ccsfp/clinic-api/internal/handler/consultation"
	recordHandler "github.com/ccsfp/clinic-api/internal/handler/record"
	"github.com/ccsfp/clinic-api/internal/middleware"
)

type RouterConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
	CORSConfig     middleware.CORSConfig
	MetricsPrefix  string
	ListCacheTTL   time.Duration
}

type Router struct {
	engine        *gin.Engine
	auth          *middleware.AuthMiddleware
	accountH      *accountHandler.Handler
	appointmentH  *appointmentHandler.Handler
	consultationH *consultationHandler.Handler
	recordH       *recordHandler.Handler
	h             *handler.Handler
	listCache     *middleware.ResponseCache
	metrics       *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	accountH *accountHandler.Handler,
	appointmentH *appointmentHandler.Handler,
	consultationH *consultationHandler.Handler,
	recordH *recordHandler.Handler,
	h *handler.Handler,
	config RouterConfig,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	r := &Router{
		engine:        gin.New(),
		auth:          auth,
		accountH:      accountH,
		appointmentH:  appointmentH,
		consultationH: consultationH,
		recordH:       recordH,
		h:             h,
		listCache:     middleware.NewResponseCache(config.ListCacheTTL, time.Minute),
		metrics:       initRouterMetrics(config.MetricsPrefix),
	}

	r.engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
	)

	r.engine.Use(middleware.CORS(config.CORSConfig))

	if config.RateLimitRPS > 0 {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RPS:   config.RateLimitRPS,
			Burst: config.RateLimitBurst,
		})
		r.engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	r.setupHealthCheck(api)

	// Public routes: students book without an account.
	r.accountH.RegisterRoutes(api)
	r.appointmentH.RegisterRoutes(api)

	// Staff routes.
	staff := api.Group("")
	staff.Use(r.auth.Authenticate())
	r.appointmentH.RegisterStaffRoutes(staff)
	r.consultationH.RegisterRoutes(staff)

	records := staff.Group("")
	records.Use(r.listCache.Cache())
	r.recordH.RegisterRoutes(records)

	// Admin routes: account management.
	admin := api.Group("")
	admin.Use(r.auth.Authenticate(), r.auth.RequireAdmin())
	r.accountH.RegisterAdminRoutes(admin)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
		health.GET("/metrics", r.h.MetricsHandler)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	m := &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
	prometheus.MustRegister(m.requestDuration, m.requestTotal, m.errorTotal)
	return m
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
