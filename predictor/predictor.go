// Package predictor 实现按年龄分段的保费预测：编码 → 选择 artifact 组 → 标准化 → 模型推理 → 取整。
package predictor

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/rushteam/inscost/artifact"
	"github.com/rushteam/inscost/core"
	"github.com/rushteam/inscost/feature"
)

// 预测结果状态（用于 Observer）
const (
	StatusOK    = "ok"
	StatusError = "error"
)

var tracer = otel.Tracer("github.com/rushteam/inscost/predictor")

// Observer 接收每次预测的分段、状态与耗时（例如 Prometheus 指标）。
type Observer interface {
	ObservePrediction(segment, status string, d time.Duration)
}

// Result 是一次预测的完整结果，包含送入模型的标准化特征。
type Result struct {
	Segment  string             `json:"segment"`
	Model    string             `json:"model"`
	Features map[string]float64 `json:"features"`
	Raw      float64            `json:"raw"`
	Cost     int64              `json:"cost"`
}

// Predictor 无状态预测器，持有只读的 artifact Set，可被多个 goroutine 并发使用。
type Predictor struct {
	set      *artifact.Set
	encoder  *feature.Encoder
	observer Observer
	logger   *slog.Logger
}

// Option 预测器配置选项
type Option func(*Predictor)

// WithEncoder 替换默认编码器
func WithEncoder(enc *feature.Encoder) Option {
	return func(p *Predictor) {
		p.encoder = enc
	}
}

// WithObserver 设置预测观测器
func WithObserver(o Observer) Option {
	return func(p *Predictor) {
		p.observer = o
	}
}

// WithLogger 设置日志
func WithLogger(l *slog.Logger) Option {
	return func(p *Predictor) {
		p.logger = l
	}
}

// New 创建预测器。set 必须已完整加载。
func New(set *artifact.Set, opts ...Option) (*Predictor, error) {
	if set == nil {
		return nil, core.NewDomainError(core.ModulePredictor, core.ErrorCodeArtifactMissing, "artifact set is nil")
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	p := &Predictor{
		set:     set,
		encoder: feature.NewEncoder(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Preprocess 编码并按年龄选择 artifact 组，返回标准化后的特征向量与所选组。
// 缺失的年龄按 0 处理（归入 young）。
func (p *Predictor) Preprocess(in core.InputRecord) (feature.Vector, artifact.Pair, error) {
	v := p.encoder.Encode(in)
	age := v.Get(feature.ColAge)
	pair := p.set.Select(age)

	scaled, err := pair.Scaler.Apply(v)
	if err != nil {
		return nil, pair, fmt.Errorf("scale %s features: %w", pair.Segment, err)
	}
	return scaled, pair, nil
}

// Explain 执行一次预测并返回中间结果。
// 任何编码、标准化、模型错误（包括 panic）都转换为 PREDICTION_FAILED，不重试。
func (p *Predictor) Explain(ctx context.Context, in core.InputRecord) (res *Result, err error) {
	start := time.Now()
	segment := "unknown"
	ctx, span := tracer.Start(ctx, "predictor.Predict")
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		span.SetAttributes(attribute.String("inscost.segment", segment))
		if err != nil {
			err = failed(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "prediction failed")
			p.logger.ErrorContext(ctx, "prediction failed", "segment", segment, "error", err)
		}
		span.End()
		p.observe(segment, err, time.Since(start))
	}()

	vec, pair, err := p.Preprocess(in)
	segment = pair.Segment
	if err != nil {
		return nil, err
	}

	raw, err := pair.Model.Predict(ctx, vec)
	if err != nil {
		return nil, fmt.Errorf("%s model %s: %w", pair.Segment, pair.Model.Name(), err)
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return nil, fmt.Errorf("%s model %s returned %v", pair.Segment, pair.Model.Name(), raw)
	}

	return &Result{
		Segment:  pair.Segment,
		Model:    pair.Model.Name(),
		Features: vec.Map(),
		Raw:      raw,
		Cost:     int64(raw),
	}, nil
}

// Predict 返回预测的年度保费，模型输出向零取整。
func (p *Predictor) Predict(ctx context.Context, in core.InputRecord) (int64, error) {
	res, err := p.Explain(ctx, in)
	if err != nil {
		return 0, err
	}
	return res.Cost, nil
}

func (p *Predictor) observe(segment string, err error, d time.Duration) {
	if p.observer == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	p.observer.ObservePrediction(segment, status, d)
}

func failed(err error) error {
	if core.IsPredictionFailed(err) {
		return err
	}
	return core.WrapDomainError(core.ModulePredictor, core.ErrorCodePredictionFailed, "prediction failed", err)
}
