package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/inscost/feature"
)

// Builder 根据 artifact 原始内容构建模型。
// 各模型类型在 init 中调用 Register(typeName, builder) 即可被 Decode 识别。
type Builder func(data []byte) (Regressor, error)

var (
	builders   = make(map[string]Builder)
	buildersMu sync.RWMutex
)

// Register 注册一种模型 artifact 的构建逻辑。
func Register(typeName string, builder Builder) {
	if typeName == "" || builder == nil {
		return
	}
	buildersMu.Lock()
	defer buildersMu.Unlock()
	builders[typeName] = builder
}

// SupportedTypes 返回当前已注册的模型类型列表（排序），用于错误提示与校验。
func SupportedTypes() []string {
	buildersMu.RLock()
	defer buildersMu.RUnlock()
	types := make([]string, 0, len(builders))
	for t := range builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// header 是所有模型 artifact 的公共字段。
type header struct {
	Type         string   `json:"type"`
	FeatureNames []string `json:"feature_names"`
}

// Decode 解析模型 artifact：按 "type" 分发到已注册的 Builder。
// 若 artifact 携带 feature_names，则必须与特征 schema 完全一致。
func Decode(data []byte) (Regressor, error) {
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("parse model header: %w", err)
	}
	if h.Type == "" {
		return nil, fmt.Errorf("model type is required (supported: %v)", SupportedTypes())
	}
	if h.FeatureNames != nil {
		if err := feature.ValidateColumns(h.FeatureNames); err != nil {
			return nil, fmt.Errorf("model %s: %w", h.Type, err)
		}
	}

	buildersMu.RLock()
	builder, ok := builders[h.Type]
	buildersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported model type %q (supported: %v)", h.Type, SupportedTypes())
	}
	return builder(data)
}

// checkRow 校验输入行与特征 schema 等长。
func checkRow(name string, row []float64) error {
	if len(row) != feature.NumColumns {
		return fmt.Errorf("%s: expected %d features, got %d", name, feature.NumColumns, len(row))
	}
	return nil
}
