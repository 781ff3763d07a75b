package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the stego routes, CORS and request logging onto a gin engine.
func NewRouter(h *StegoHandler, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(h.log))

	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	config.ExposeHeaders = []string{"X-Stego-PSNR", "Content-Disposition"}
	router.Use(cors.New(config))

	router.MaxMultipartMemory = h.maxUploadBytes

	router.GET("/", h.HealthCheck)
	router.POST("/encode", h.EncodeMessage)
	router.POST("/decode", h.DecodeMessage)
	router.GET("/download/:filename", h.Download)

	api := router.Group("/api/v1")
	{
		api.GET("/health", h.HealthCheck)
	}

	return router
}

// RequestLogger logs one line per request through logrus.
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
			"client":  c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry.Error(c.Errors.String())
			return
		}
		entry.Info("request")
	}
}
