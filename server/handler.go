package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rushteam/inscost/core"
	"github.com/rushteam/inscost/form"
	"github.com/rushteam/inscost/predictor"
)

// PredictResponse 是 POST /api/v1/predict 的响应
type PredictResponse struct {
	Cost    int64  `json:"cost"`
	Segment string `json:"segment"`
}

// predict handles POST /api/v1/predict
func (s *Server) predict(c *gin.Context) {
	res, ok := s.run(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, PredictResponse{Cost: res.Cost, Segment: res.Segment})
}

// explain handles POST /api/v1/explain
func (s *Server) explain(c *gin.Context) {
	res, ok := s.run(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res)
}

// run 解析请求体、改写表单取值并执行预测；失败时已写入错误响应。
func (s *Server) run(c *gin.Context) (*predictor.Result, bool) {
	var req form.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return nil, false
	}

	in, err := s.remapper.Apply(req.ToRecord())
	if err != nil {
		err = core.WrapDomainError(core.ModulePredictor, core.ErrorCodePredictionFailed, "prediction failed", err)
		s.logger.ErrorContext(c.Request.Context(), "remap form input", "error", err, "request_id", c.GetString("request_id"))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}

	res, err := s.estimator.Explain(c.Request.Context(), in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return res, true
}

// formOptions handles GET /api/v1/options
func (s *Server) formOptions(c *gin.Context) {
	c.JSON(http.StatusOK, s.options)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"service":    "inscost",
		"version":    s.build.Version,
		"build_time": s.build.BuildTime,
		"git_commit": s.build.GitCommit,
	})
}

func (s *Server) version(c *gin.Context) {
	c.JSON(http.StatusOK, s.build)
}

func (s *Server) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}
