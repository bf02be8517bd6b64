package config

import (
	"bytes"
	"fmt"
	"math"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"surface-inspector/internal/domain/entity"
)

// Бэкенды гейткипера и обработки изображений.
const (
	BackendNative = "native"
	BackendONNX   = "onnx"
	BackendGoCV   = "gocv"
)

type Config struct {
	HTTPAddr            string
	DatabasePath        string
	ReportsDir          string
	GatekeeperModelPath string
	GatekeeperBackend   string
	ONNXLibraryPath     string
	ONNXPoolSize        int
	VisionBackend       string
	TelegramToken       string
	TelegramAlertChatID int64
	LogLevel            string
	MaxUploadBytes      int64
	RequestTimeout      time.Duration
	Pipeline            PipelineConfig
}

// PipelineConfig пороги конвейера. Может задаваться блоком pipeline в YAML файле.
type PipelineConfig struct {
	AcceptThreshold    float64 `yaml:"accept_threshold"`
	UncertainMargin    float64 `yaml:"uncertain_margin"`
	ScaleFactor        float64 `yaml:"scale_factor"`
	ScoreMin           float64 `yaml:"score_min"`
	ScoreMax           float64 `yaml:"score_max"`
	PassScoreMin       float64 `yaml:"pass_score_min"`
	PassDefectMax      int     `yaml:"pass_defect_max"`
	ResizeMaxDimension int     `yaml:"resize_max_dimension"`
	MaxDecodePixels    int     `yaml:"max_decode_pixels"`
	MinComponentArea   int     `yaml:"min_component_area"`
	ClaheClipLimit     float64 `yaml:"clahe_clip_limit"`
	ClaheTiles         int     `yaml:"clahe_tiles"`
}

type fileConfig struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() *Config {
	return &Config{
		HTTPAddr:            ":8080",
		DatabasePath:        "data/inspections.db",
		ReportsDir:          "data/reports",
		GatekeeperModelPath: "models/surface_gatekeeper.yaml",
		GatekeeperBackend:   BackendNative,
		ONNXPoolSize:        2,
		VisionBackend:       BackendNative,
		LogLevel:            "info",
		MaxUploadBytes:      10 << 20,
		RequestTimeout:      30 * time.Second,
		Pipeline: PipelineConfig{
			AcceptThreshold:    0.5,
			ScaleFactor:        2,
			ScoreMin:           10,
			ScoreMax:           99,
			PassScoreMin:       90,
			PassDefectMax:      5,
			ResizeMaxDimension: 1024,
			MaxDecodePixels:    40_000_000,
			MinComponentArea:   10,
			ClaheClipLimit:     2.0,
			ClaheTiles:         8,
		},
	}
}

// Load читает .env, необязательный YAML файл и переменные окружения.
// Некорректное значение даёт ошибку конфигурации, а не подмену на значение по умолчанию.
func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("INSPECTOR_CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	env := &envReader{}
	env.str("HTTP_ADDR", &cfg.HTTPAddr)
	env.str("DATABASE_PATH", &cfg.DatabasePath)
	env.str("REPORTS_DIR", &cfg.ReportsDir)
	env.str("GATEKEEPER_MODEL_PATH", &cfg.GatekeeperModelPath)
	env.str("GATEKEEPER_BACKEND", &cfg.GatekeeperBackend)
	env.str("ONNX_LIBRARY_PATH", &cfg.ONNXLibraryPath)
	env.integer("ONNX_POOL_SIZE", &cfg.ONNXPoolSize)
	env.str("VISION_BACKEND", &cfg.VisionBackend)
	env.str("TELEGRAM_TOKEN", &cfg.TelegramToken)
	env.int64("TELEGRAM_ALERT_CHAT_ID", &cfg.TelegramAlertChatID)
	env.str("LOG_LEVEL", &cfg.LogLevel)
	env.int64("MAX_UPLOAD_BYTES", &cfg.MaxUploadBytes)
	env.duration("REQUEST_TIMEOUT", &cfg.RequestTimeout)

	p := &cfg.Pipeline
	env.float("ACCEPT_THRESHOLD", &p.AcceptThreshold)
	env.float("UNCERTAIN_MARGIN", &p.UncertainMargin)
	env.float("SCALE_FACTOR", &p.ScaleFactor)
	env.float("SCORE_MIN", &p.ScoreMin)
	env.float("SCORE_MAX", &p.ScoreMax)
	env.float("PASS_SCORE_MIN", &p.PassScoreMin)
	env.integer("PASS_DEFECT_MAX", &p.PassDefectMax)
	env.integer("RESIZE_MAX_DIMENSION", &p.ResizeMaxDimension)
	env.integer("MAX_DECODE_PIXELS", &p.MaxDecodePixels)
	env.integer("MIN_COMPONENT_AREA", &p.MinComponentArea)
	env.float("CLAHE_CLIP_LIMIT", &p.ClaheClipLimit)
	env.integer("CLAHE_TILES", &p.ClaheTiles)
	if env.err != nil {
		return nil, env.err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return entity.Wrap(entity.KindConfiguration, "config.file", "failed to read config file", err)
	}

	fc := fileConfig{Pipeline: c.Pipeline}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return entity.Wrap(entity.KindConfiguration, "config.file", "invalid config file", err)
	}
	c.Pipeline = fc.Pipeline
	return nil
}

// Validate проверяет диапазоны всех значений.
func (c *Config) Validate() error {
	p := c.Pipeline
	var problems []string
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	check(inRange(p.AcceptThreshold, 0, 1), "accept_threshold must be in [0,1], got %v", p.AcceptThreshold)
	check(p.UncertainMargin >= 0 && p.UncertainMargin < 0.5, "uncertain_margin must be in [0,0.5), got %v", p.UncertainMargin)
	check(p.ScaleFactor > 0 && !math.IsInf(p.ScaleFactor, 0), "scale_factor must be positive, got %v", p.ScaleFactor)
	check(p.ScoreMin >= 0 && p.ScoreMin < p.ScoreMax && p.ScoreMax <= 100,
		"score bounds must satisfy 0 <= min < max <= 100, got [%v, %v]", p.ScoreMin, p.ScoreMax)
	check(inRange(p.PassScoreMin, 0, 100), "pass_score_min must be in [0,100], got %v", p.PassScoreMin)
	check(p.PassDefectMax >= 0, "pass_defect_max must be non-negative, got %d", p.PassDefectMax)
	check(p.ResizeMaxDimension >= 16, "resize_max_dimension must be at least 16, got %d", p.ResizeMaxDimension)
	check(p.MaxDecodePixels >= 1, "max_decode_pixels must be positive, got %d", p.MaxDecodePixels)
	check(p.MinComponentArea >= 1, "min_component_area must be at least 1, got %d", p.MinComponentArea)
	check(p.ClaheClipLimit >= 1, "clahe_clip_limit must be at least 1, got %v", p.ClaheClipLimit)
	check(p.ClaheTiles >= 1, "clahe_tiles must be at least 1, got %d", p.ClaheTiles)

	check(validAddr(c.HTTPAddr), "http_addr %q has no valid port", c.HTTPAddr)
	check(c.MaxUploadBytes > 0, "max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	check(c.RequestTimeout > 0, "request_timeout must be positive, got %s", c.RequestTimeout)
	check(c.GatekeeperBackend == BackendNative || c.GatekeeperBackend == BackendONNX,
		"gatekeeper_backend must be %q or %q, got %q", BackendNative, BackendONNX, c.GatekeeperBackend)
	check(c.VisionBackend == BackendNative || c.VisionBackend == BackendGoCV,
		"vision_backend must be %q or %q, got %q", BackendNative, BackendGoCV, c.VisionBackend)
	check(c.ONNXPoolSize >= 1, "onnx_pool_size must be at least 1, got %d", c.ONNXPoolSize)
	check(c.GatekeeperModelPath != "", "gatekeeper_model_path is required")

	if len(problems) > 0 {
		return entity.NewError(entity.KindConfiguration, "config.validate", strings.Join(problems, "; "))
	}
	return nil
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}

func validAddr(addr string) bool {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n > 0 && n <= 65535
}

// envReader читает переменные окружения и запоминает первую ошибку разбора.
type envReader struct {
	err error
}

func (r *envReader) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (r *envReader) fail(key, raw string, err error) {
	if r.err == nil {
		r.err = entity.Wrap(entity.KindConfiguration, "config.env", fmt.Sprintf("invalid %s=%q", key, raw), err)
	}
}

func (r *envReader) str(key string, dst *string) {
	if v, ok := r.lookup(key); ok {
		*dst = v
	}
}

func (r *envReader) float(key string, dst *float64) {
	if v, ok := r.lookup(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			r.fail(key, v, err)
			return
		}
		*dst = f
	}
}

func (r *envReader) integer(key string, dst *int) {
	if v, ok := r.lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			r.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (r *envReader) int64(key string, dst *int64) {
	if v, ok := r.lookup(key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			r.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (r *envReader) duration(key string, dst *time.Duration) {
	if v, ok := r.lookup(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			r.fail(key, v, err)
			return
		}
		*dst = d
	}
}
