// Package artifact 负责在启动时加载两组（模型, 标准化器）artifact。
// 加载结果是不可变的 Set，显式传给 predictor，而不是包级全局变量。
package artifact

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/inscost/core"
	"github.com/rushteam/inscost/feature"
	"github.com/rushteam/inscost/model"
)

// artifact 名称
const (
	ModelYoung  = "model_young"
	ModelRest   = "model_rest"
	ScalerYoung = "scaler_young"
	ScalerRest  = "scaler_rest"
)

// DefaultExt 是 artifact 的默认扩展名
const DefaultExt = ".json"

// Names 列出启动必须加载的全部 artifact。
var Names = []string{ModelYoung, ModelRest, ScalerYoung, ScalerRest}

// 年龄分段
const (
	SegmentYoung = "young" // age <= YoungMaxAge
	SegmentRest  = "rest"  // age > YoungMaxAge
)

// YoungMaxAge 是 young 分段的年龄上限（含）。
const YoungMaxAge = 25

// Pair 是一组同时训练、同时选用的模型与标准化器。
type Pair struct {
	Segment string
	Model   model.Regressor
	Scaler  *feature.Scaler
}

// Set 是启动时加载的全部 artifact，加载后只读。
type Set struct {
	Young Pair
	Rest  Pair
}

// NewSet 由已构建好的模型与标准化器组装 Set（测试或嵌入式使用）。
func NewSet(youngModel model.Regressor, youngScaler *feature.Scaler, restModel model.Regressor, restScaler *feature.Scaler) (*Set, error) {
	s := &Set{
		Young: Pair{Segment: SegmentYoung, Model: youngModel, Scaler: youngScaler},
		Rest:  Pair{Segment: SegmentRest, Model: restModel, Scaler: restScaler},
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate 检查两组 artifact 均已就绪。
func (s *Set) Validate() error {
	check := func(name string, ok bool) error {
		if ok {
			return nil
		}
		return core.NewDomainError(core.ModuleArtifact, core.ErrorCodeArtifactMissing, "artifact "+name+" is not loaded")
	}
	return errors.Join(
		check(ModelYoung, s.Young.Model != nil),
		check(ScalerYoung, s.Young.Scaler != nil),
		check(ModelRest, s.Rest.Model != nil),
		check(ScalerRest, s.Rest.Scaler != nil),
	)
}

// Select 按年龄选择 artifact 组：age <= 25 为 young，否则为 rest。
func (s *Set) Select(age float64) Pair {
	if age <= YoungMaxAge {
		return s.Young
	}
	return s.Rest
}

// Load 并发读取并解析全部 artifact。任意一个失败则整体失败，错误信息包含 artifact 名称：
//   - 读取失败：ARTIFACT_MISSING
//   - 解析失败：ARTIFACT_INVALID
func Load(ctx context.Context, src Source) (*Set, error) {
	var (
		youngModel, restModel   model.Regressor
		youngScaler, restScaler *feature.Scaler
	)

	eg, egCtx := errgroup.WithContext(ctx)
	loadModel := func(name string, dst *model.Regressor) {
		eg.Go(func() error {
			data, err := fetch(egCtx, src, name)
			if err != nil {
				return err
			}
			m, err := model.Decode(data)
			if err != nil {
				return invalid(name, src, err)
			}
			*dst = m
			return nil
		})
	}
	loadScaler := func(name string, dst **feature.Scaler) {
		eg.Go(func() error {
			data, err := fetch(egCtx, src, name)
			if err != nil {
				return err
			}
			s, err := feature.DecodeScaler(data)
			if err != nil {
				return invalid(name, src, err)
			}
			*dst = s
			return nil
		})
	}

	loadModel(ModelYoung, &youngModel)
	loadModel(ModelRest, &restModel)
	loadScaler(ScalerYoung, &youngScaler)
	loadScaler(ScalerRest, &restScaler)

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return NewSet(youngModel, youngScaler, restModel, restScaler)
}

func fetch(ctx context.Context, src Source, name string) ([]byte, error) {
	data, err := src.Fetch(ctx, name)
	if err != nil {
		msg := fmt.Sprintf("artifact %s cannot be loaded from %s", name, src.Name())
		if errors.Is(err, ErrNotFound) {
			msg = fmt.Sprintf("artifact %s is missing from %s", name, src.Name())
		}
		return nil, core.WrapDomainError(core.ModuleArtifact, core.ErrorCodeArtifactMissing, msg, err)
	}
	return data, nil
}

func invalid(name string, src Source, err error) error {
	msg := fmt.Sprintf("artifact %s from %s is invalid", name, src.Name())
	return core.WrapDomainError(core.ModuleArtifact, core.ErrorCodeArtifactInvalid, msg, err)
}
