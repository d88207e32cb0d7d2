// Package server 提供预测服务的 HTTP 接口（gin）。
package server

import (
	"context"
	_ "embed"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rushteam/inscost/core"
	"github.com/rushteam/inscost/form"
	"github.com/rushteam/inscost/predictor"
)

//go:embed web/index.html
var indexHTML []byte

// RequestIDHeader 请求 ID 响应头
const RequestIDHeader = "X-Request-ID"

// Estimator 是 HTTP 层依赖的预测能力，*predictor.Predictor 实现了它。
type Estimator interface {
	Explain(ctx context.Context, in core.InputRecord) (*predictor.Result, error)
}

// BuildInfo 版本信息
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

// Server HTTP 服务
type Server struct {
	estimator      Estimator
	remapper       *form.Remapper
	options        form.Options
	metrics        http.Handler
	logger         *slog.Logger
	build          BuildInfo
	allowedOrigins []string
	engine         *gin.Engine
}

// Option 服务配置选项
type Option func(*Server)

// WithRemapper 设置表单取值改写器（默认使用内置规则）
func WithRemapper(r *form.Remapper) Option {
	return func(s *Server) {
		s.remapper = r
	}
}

// WithOptions 设置 /api/v1/options 返回的表单可选项
func WithOptions(o form.Options) Option {
	return func(s *Server) {
		s.options = o
	}
}

// WithMetricsHandler 挂载 /metrics
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger 设置日志
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithBuildInfo 设置版本信息
func WithBuildInfo(b BuildInfo) Option {
	return func(s *Server) {
		s.build = b
	}
}

// WithAllowedOrigins 设置 CORS 允许的来源，默认 "*"
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// New 创建 HTTP 服务
func New(est Estimator, opts ...Option) (*Server, error) {
	s := &Server{
		estimator:      est,
		options:        form.DefaultOptions(),
		logger:         slog.Default(),
		build:          BuildInfo{Version: "dev", BuildTime: "unknown", GitCommit: "unknown"},
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.remapper == nil {
		r, err := form.NewRemapper(nil)
		if err != nil {
			return nil, err
		}
		s.remapper = r
	}
	s.engine = s.routes()
	return s, nil
}

// Handler 返回 http.Handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestID(), s.accessLog())

	corsConfig := cors.DefaultConfig()
	if len(s.allowedOrigins) == 0 || slices.Contains(s.allowedOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = s.allowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{RequestIDHeader}
	router.Use(cors.New(corsConfig))

	router.GET("/", s.index)
	router.GET("/health", s.health)
	router.GET("/version", s.version)
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics))
	}

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/predict", s.predict)
		apiV1.POST("/explain", s.explain)
		apiV1.GET("/options", s.formOptions)
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		c.String(http.StatusNotFound, "404 page not found")
	})
	return router
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.InfoContext(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString("request_id"),
		)
	}
}
