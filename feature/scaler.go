package feature

import (
	"encoding/json"
	"fmt"
)

// Transformer 是标准化器的变换能力：输入按描述符列顺序排列的一行，输出同长度的一行。
type Transformer interface {
	Transform(row []float64) ([]float64, error)
}

// MinMaxTransformer Min-Max 归一化（sklearn MinMaxScaler 导出格式）
// 公式: x' = x * scale + min
type MinMaxTransformer struct {
	Min   []float64 `json:"min"`
	Scale []float64 `json:"scale"`
}

// Transform 变换一行
func (t *MinMaxTransformer) Transform(row []float64) ([]float64, error) {
	if len(row) != len(t.Min) || len(row) != len(t.Scale) {
		return nil, fmt.Errorf("min_max: expected %d values, got %d", len(t.Min), len(row))
	}
	out := make([]float64, len(row))
	for i, x := range row {
		out[i] = x*t.Scale[i] + t.Min[i]
	}
	return out, nil
}

// StandardTransformer Z-score 标准化（sklearn StandardScaler 导出格式）
// 公式: z = (x - mean) / scale，scale 为 0 时保持原值
type StandardTransformer struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Transform 变换一行
func (t *StandardTransformer) Transform(row []float64) ([]float64, error) {
	if len(row) != len(t.Mean) || len(row) != len(t.Scale) {
		return nil, fmt.Errorf("standard: expected %d values, got %d", len(t.Mean), len(row))
	}
	out := make([]float64, len(row))
	for i, x := range row {
		if t.Scale[i] != 0 {
			out[i] = (x - t.Mean[i]) / t.Scale[i]
		} else {
			out[i] = x
		}
	}
	return out, nil
}

// Scaler 是标准化器描述符：需要变换的列子集 + 变换能力。
// 加载后只读，可在多个请求间共享。
type Scaler struct {
	ColumnsToScale []string
	Transformer    Transformer
}

// Apply 对向量中 ColumnsToScale 指定的列做变换，返回新向量（不修改入参）。
//
// 变换期间会临时加入值为 0 的 PlaceholderColumn（标准化器按包含它的列拟合），
// 变换结束后丢弃，不会出现在返回的向量中。
func (s *Scaler) Apply(v Vector) (Vector, error) {
	if s == nil || s.Transformer == nil {
		return nil, fmt.Errorf("scaler is not loaded")
	}
	work := v.Map()
	work[PlaceholderColumn] = 0

	row := make([]float64, len(s.ColumnsToScale))
	for i, col := range s.ColumnsToScale {
		val, ok := work[col]
		if !ok {
			return nil, fmt.Errorf("scaler column %q is not a feature column", col)
		}
		row[i] = val
	}

	scaled, err := s.Transformer.Transform(row)
	if err != nil {
		return nil, fmt.Errorf("scaler transform: %w", err)
	}
	if len(scaled) != len(row) {
		return nil, fmt.Errorf("scaler transform: expected %d values, got %d", len(row), len(scaled))
	}

	out := v.Clone()
	for i, col := range s.ColumnsToScale {
		if col == PlaceholderColumn {
			continue
		}
		out.Set(col, scaled[i])
	}
	return out, nil
}

// scalerFile 对应 scaler_*.json
//
//	{"cols_to_scale": ["age", ...], "scaler": {"type": "min_max", "min": [...], "scale": [...]}}
type scalerFile struct {
	ColsToScale []string `json:"cols_to_scale"`
	Scaler      struct {
		Type  string    `json:"type"`
		Min   []float64 `json:"min"`
		Mean  []float64 `json:"mean"`
		Scale []float64 `json:"scale"`
	} `json:"scaler"`
}

// DecodeScaler 解析标准化器 artifact，并校验列名与维度。
func DecodeScaler(data []byte) (*Scaler, error) {
	var raw scalerFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("解析标准化器失败: %w", err)
	}
	if len(raw.ColsToScale) == 0 {
		return nil, fmt.Errorf("cols_to_scale is empty")
	}
	for _, col := range raw.ColsToScale {
		if _, ok := ColumnIndex(col); !ok && col != PlaceholderColumn {
			return nil, fmt.Errorf("cols_to_scale: unknown column %q", col)
		}
	}

	n := len(raw.ColsToScale)
	var t Transformer
	switch raw.Scaler.Type {
	case "min_max", "minmax", "":
		if len(raw.Scaler.Min) != n || len(raw.Scaler.Scale) != n {
			return nil, fmt.Errorf("min_max scaler: expected %d params, got min=%d scale=%d", n, len(raw.Scaler.Min), len(raw.Scaler.Scale))
		}
		t = &MinMaxTransformer{Min: raw.Scaler.Min, Scale: raw.Scaler.Scale}
	case "standard":
		if len(raw.Scaler.Mean) != n || len(raw.Scaler.Scale) != n {
			return nil, fmt.Errorf("standard scaler: expected %d params, got mean=%d scale=%d", n, len(raw.Scaler.Mean), len(raw.Scaler.Scale))
		}
		t = &StandardTransformer{Mean: raw.Scaler.Mean, Scale: raw.Scaler.Scale}
	default:
		return nil, fmt.Errorf("unsupported scaler type: %s", raw.Scaler.Type)
	}

	return &Scaler{ColumnsToScale: raw.ColsToScale, Transformer: t}, nil
}
