package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rushteam/inscost/feature"
)

func init() {
	Register("rpc", DecodeRPCModel)
}

// RPCModel 是通过 HTTP 调用外部打分服务的 Regressor 实现。
// 适合 GBDT / XGBoost 等由独立进程托管的模型。
type RPCModel struct {
	Endpoint string // 例如 "http://localhost:8080/predict"
	Timeout  time.Duration
	Client   *http.Client
}

func NewRPCModel(endpoint string, timeout time.Duration) *RPCModel {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &RPCModel{
		Endpoint: endpoint,
		Timeout:  timeout,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// DecodeRPCModel 解析 RPC 模型 artifact：
//
//	{"type": "rpc", "feature_names": [...], "endpoint": "http://...", "timeout_ms": 2000}
func DecodeRPCModel(data []byte) (Regressor, error) {
	var raw struct {
		Endpoint  string `json:"endpoint"`
		TimeoutMS int    `json:"timeout_ms"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse rpc model: %w", err)
	}
	if raw.Endpoint == "" {
		return nil, fmt.Errorf("rpc: endpoint is required")
	}
	return NewRPCModel(raw.Endpoint, time.Duration(raw.TimeoutMS)*time.Millisecond), nil
}

func (m *RPCModel) Name() string { return "rpc" }

// Predict 调用远程打分服务。
// 请求格式（JSON）：
//
//	{"features_list": [{"age": 0.12, "insurance_plan": 0.5, ...}]}
//
// 响应格式（JSON）：
//
//	{"scores": [15234.7]}
func (m *RPCModel) Predict(ctx context.Context, row []float64) (float64, error) {
	if err := checkRow(m.Name(), row); err != nil {
		return 0, err
	}
	client := m.Client
	if client == nil {
		client = &http.Client{Timeout: m.Timeout}
	}

	reqBody := map[string]any{
		"features_list": []map[string]float64{feature.Vector(row).Map()},
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("rpc call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return 0, fmt.Errorf("rpc error: status=%d, read body failed: %w", resp.StatusCode, err)
		}
		return 0, fmt.Errorf("rpc error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var result struct {
		Scores []float64 `json:"scores"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Scores) != 1 {
		return 0, fmt.Errorf("response scores count mismatch: expected 1, got %d", len(result.Scores))
	}
	return result.Scores[0], nil
}
