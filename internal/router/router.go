package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/clinicdesk/clinic-api/internal/middleware"
	"github.com/clinicdesk/clinic-api/pkg/metrics"
)

// Handler is implemented by every HTTP handler that contributes routes.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimitEnabled bool
	RateLimit        float64
	RateBurst        int
	CORS             middleware.CORSConfig
}

type Router struct {
	engine   *gin.Engine
	metrics  *metrics.Metrics
	registry *prometheus.Registry
}

func NewRouter(m *metrics.Metrics, config Config) *Router {
	gin.SetMode(gin.ReleaseMode)
	middleware.RegisterValidators()

	engine := gin.New()

	r := &Router{
		engine:   engine,
		metrics:  m,
		registry: prometheus.NewRegistry(),
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		r.metricsMiddleware(),
	)

	engine.Use(middleware.CORS(config.CORS))

	if config.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(config.RateLimit),
			Burst: config.RateBurst,
		})
		engine.Use(limiter.RateLimit())
	}

	return r
}

// Setup registers the metrics endpoint and mounts every handler under /api/v1.
func (r *Router) Setup(health Handler, handlers ...Handler) error {
	if err := r.metrics.Register(r.registry); err != nil {
		return err
	}
	r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})))

	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	health.RegisterRoutes(api)

	for _, h := range handlers {
		h.RegisterRoutes(api)
	}

	return nil
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.RequestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
