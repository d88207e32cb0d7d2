package model

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rushteam/inscost/feature"
)

func init() {
	Register("linear", DecodeLinearModel)
}

// LinearModel 实现了线性回归 (Linear Regression) 模型。
//
// 预测: y = Intercept + sum(Coef_i * x_i)
type LinearModel struct {
	Intercept float64   // 截距 (Intercept)
	Coef      []float64 // 系数，按特征 schema 顺序
}

// DecodeLinearModel 解析线性模型 artifact：
//
//	{"type": "linear", "feature_names": [...], "coef": [...], "intercept": 1234.5}
func DecodeLinearModel(data []byte) (Regressor, error) {
	var raw struct {
		Intercept float64   `json:"intercept"`
		Coef      []float64 `json:"coef"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse linear model: %w", err)
	}
	if len(raw.Coef) != feature.NumColumns {
		return nil, fmt.Errorf("linear: expected %d coefficients, got %d", feature.NumColumns, len(raw.Coef))
	}
	return &LinearModel{Intercept: raw.Intercept, Coef: raw.Coef}, nil
}

func (m *LinearModel) Name() string { return "linear" }

func (m *LinearModel) Predict(_ context.Context, row []float64) (float64, error) {
	if err := checkRow(m.Name(), row); err != nil {
		return 0, err
	}
	y := m.Intercept
	for i, x := range row {
		y += m.Coef[i] * x
	}
	return y, nil
}
