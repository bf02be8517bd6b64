package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "surface-inspector/internal/application"
	"surface-inspector/internal/domain/entity"
	"surface-inspector/internal/logger"
)

// InspectionAPI операции сервиса инспекций, доступные по HTTP.
type InspectionAPI interface {
	Inspect(ctx context.Context, photo []byte, subject entity.Subject) (*app.InspectionOutput, error)
	GetReport(ctx context.Context, id string) (*entity.Report, error)
	Recent(ctx context.Context, limit int) ([]*entity.InspectionRecord, error)
	Stats(ctx context.Context) (entity.InspectionStats, error)
	ModelVersions() map[string]string
	Health(ctx context.Context) app.Health
}

// Options параметры HTTP слоя.
type Options struct {
	MaxUploadBytes    int64
	RequestTimeout    time.Duration
	GatekeeperBackend string
	VisionBackend     string
}

// ErrorResponse тело ответа с ошибкой.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewHandler собирает gin роутер.
func NewHandler(svc InspectionAPI, opts Options) http.Handler {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		requestLogger(),
		requestSizeLimiter(opts.MaxUploadBytes),
		errorHandler(),
	)

	h := &handler{svc: svc, opts: opts}
	r.GET("/health", h.health)
	r.POST("/predict", h.predict)
	r.GET("/reports/:id", h.report)
	r.GET("/inspections", h.recent)
	r.GET("/inspections/stats", h.stats)

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
			"ip":          c.ClientIP(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("http request")
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last().Err
			respondError(c, entity.HTTPStatus(err), "request processing failed", err)
		}
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	entry := logger.WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	if code >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Warn("request rejected")
	}

	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Message = err.Error()
	}
	c.AbortWithStatusJSON(code, resp)
}
