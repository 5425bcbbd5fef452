package bootstrap

import (
	"embed"
	"net/http"
	"time"

	"github.com/Domenick1991/skybooking/api"
	"github.com/Domenick1991/skybooking/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed swagger/*.json
var swaggerFS embed.FS

const swaggerURL = "/swagger/bookings.swagger.json"

type Handlers struct {
	Bookings *api.BookingHandler
	Flights  *api.FlightHandler
}

// NewRouter mounts the API, metrics and docs on a gin engine.
func NewRouter(cfg config.HTTPConfig, h Handlers, log logrus.FieldLogger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	apiGroup := router.Group("/api")
	h.Bookings.Register(apiGroup.Group("/bookings"))
	if h.Flights != nil {
		h.Flights.Register(apiGroup.Group("/flights"))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.SwaggerDir != "" {
		router.StaticFS("/swagger", http.Dir(cfg.SwaggerDir))
	} else {
		router.StaticFS("/swagger", http.FS(mustSub(swaggerFS, "swagger")))
	}
	router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(swaggerURL))))

	return router
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("request failed")
			return
		}
		entry.Debug("request handled")
	}
}
