package httpserver

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"projecttracker/internal/handler"
	"projecttracker/pkg/metrics"
	"projecttracker/pkg/mq"
)

func NewRouter(
	projectHandler *handler.ProjectHandler,
	phaseHandler *handler.PhaseHandler,
	deliverableHandler *handler.DeliverableHandler,
	taskHandler *handler.TaskHandler,
	permissionHandler *handler.PermissionHandler,
	logger *zap.Logger,
	db *pgxpool.Pool,
	publisher *mq.Publisher,
	jwtSecret string,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		logger.Info("HTTP Request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
		metrics.RecordHTTPRequestDuration(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(c.Writer.Status()),
			latency,
		)
	})

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if db != nil {
			if err := db.Ping(ctx); err != nil {
				c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
				return
			}
		}

		if publisher != nil && !publisher.IsConnected() {
			c.JSON(500, gin.H{"status": "mq_not_ready"})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.POST("/project", projectHandler.Create)
		auth.GET("/project/:id", projectHandler.Get)

		auth.POST("/phase", phaseHandler.Create)
		auth.PUT("/phase/:id/status", phaseHandler.SetStatus)
		auth.DELETE("/phase/:id", phaseHandler.Delete)

		auth.POST("/deliverable", deliverableHandler.Create)
		auth.PUT("/deliverable/:id/status", deliverableHandler.SetStatus)
		auth.DELETE("/deliverable/:id", deliverableHandler.Delete)

		auth.POST("/task", taskHandler.Create)
		auth.PUT("/task/:id/status", taskHandler.SetStatus)
		auth.DELETE("/task/:id", taskHandler.Delete)

		auth.POST("/permissions/assign", permissionHandler.Assign)
		auth.GET("/permissions/by-project-and-user", permissionHandler.GetByProjectAndUser)
	}

	return r
}
