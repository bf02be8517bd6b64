package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"surface-inspector/internal/domain/entity"
	"surface-inspector/internal/logger"
)

const defaultListLimit = 50

type handler struct {
	svc  InspectionAPI
	opts Options
}

// PredictResponse ответ POST /predict.
type PredictResponse struct {
	InspectionID   string             `json:"inspection_id"`
	Status         entity.Status      `json:"status"`
	HealthScore    *float64           `json:"health_score"`
	DefectCount    *int               `json:"defect_count"`
	Reason         string             `json:"reason"`
	Confidence     float64            `json:"metal_validation_score"`
	EdgePixelRatio float64            `json:"edge_pixel_ratio"`
	Explanation    entity.Explanation `json:"explanation"`
	Defects        []DefectDTO        `json:"defects"`
	Timestamp      time.Time          `json:"timestamp"`
}

// DefectDTO область дефекта в координатах исходного изображения.
type DefectDTO struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
	Area   int `json:"area"`
}

// RecordDTO запись в списке инспекций.
type RecordDTO struct {
	ID          string        `json:"inspection_id"`
	CreatedAt   time.Time     `json:"timestamp"`
	Inspector   string        `json:"inspector"`
	Batch       string        `json:"batch"`
	Product     string        `json:"product"`
	Status      entity.Status `json:"status"`
	HealthScore *float64      `json:"health_score"`
	DefectCount *int          `json:"defect_count"`
	Reason      string        `json:"reason"`
}

func (h *handler) health(c *gin.Context) {
	state := h.svc.Health(c.Request.Context())

	status, code := "ready", http.StatusOK
	if !state.Ready() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	storage := "ok"
	if state.Storage != nil {
		storage = state.Storage.Error()
		logger.WithError(state.Storage).Warn("health check: storage unavailable")
	}

	c.JSON(code, gin.H{
		"status":             status,
		"gatekeeper_loaded":  state.GatekeeperLoaded,
		"storage":            storage,
		"gatekeeper_backend": h.opts.GatekeeperBackend,
		"vision_backend":     h.opts.VisionBackend,
		"model_versions":     h.svc.ModelVersions(),
		"time":               time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handler) predict(c *gin.Context) {
	ctx := c.Request.Context()
	if h.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.RequestTimeout)
		defer cancel()
	}

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, "image is too large", err)
			return
		}
		respondError(c, http.StatusBadRequest, "multipart field \"file\" is required", err)
		return
	}

	f, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed to read upload", err)
		return
	}
	defer f.Close()

	photo, err := io.ReadAll(f)
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed to read upload", err)
		return
	}

	subject := entity.Subject{
		Inspector: c.PostForm("inspector"),
		Batch:     c.PostForm("batch"),
		Product:   c.PostForm("product"),
	}

	out, err := h.svc.Inspect(ctx, photo, subject)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = entity.Wrap(entity.KindTimeout, "http.predict", "inspection timed out", err)
		}
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toPredictResponse(out.Record))
}

func (h *handler) report(c *gin.Context) {
	report, err := h.svc.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *handler) recent(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(c, http.StatusBadRequest, "limit must be a positive integer", err)
			return
		}
		limit = n
	}

	records, err := h.svc.Recent(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	items := make([]RecordDTO, 0, len(records))
	for _, r := range records {
		items = append(items, RecordDTO{
			ID:          r.ID,
			CreatedAt:   r.CreatedAt,
			Inspector:   r.Subject.Inspector,
			Batch:       r.Subject.Batch,
			Product:     r.Subject.Product,
			Status:      r.Result.Status,
			HealthScore: r.Result.HealthScore,
			DefectCount: r.Result.DefectCount,
			Reason:      r.Result.Reason,
		})
	}
	c.JSON(http.StatusOK, gin.H{"inspections": items, "count": len(items)})
}

func (h *handler) stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func toPredictResponse(r *entity.InspectionRecord) PredictResponse {
	res := r.Result
	sx, sy := 1.0, 1.0
	if res.ImageWidth > 0 && res.ImageHeight > 0 {
		sx = float64(res.SourceWidth) / float64(res.ImageWidth)
		sy = float64(res.SourceHeight) / float64(res.ImageHeight)
	}

	defects := make([]DefectDTO, 0, len(res.Defects))
	for _, d := range res.Defects {
		s := d.Scale(sx, sy)
		defects = append(defects, DefectDTO{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height, Area: s.Area})
	}

	return PredictResponse{
		InspectionID:   r.ID,
		Status:         res.Status,
		HealthScore:    res.HealthScore,
		DefectCount:    res.DefectCount,
		Reason:         res.Reason,
		Confidence:     res.Confidence,
		EdgePixelRatio: res.EdgePixelRatio,
		Explanation:    entity.ExplanationFor(res.Status),
		Defects:        defects,
		Timestamp:      r.CreatedAt,
	}
}
