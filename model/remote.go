package model

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rushteam/inscost/core"
	"github.com/rushteam/inscost/service"
)

func init() {
	Register(string(service.ServiceTypeKServe), DecodeKServeModel)
	Register(string(service.ServiceTypeTFServing), DecodeTFServingModel)
}

// ServiceModel 把 core.MLService 适配为 Regressor，每次预测发送单行实例。
type ServiceModel struct {
	Service   core.MLService
	Kind      service.ServiceType
	ModelName string
}

// remoteArtifact 是远程模型 artifact 的公共字段
type remoteArtifact struct {
	Endpoint      string `json:"endpoint"`
	ModelName     string `json:"model_name"`
	ModelVersion  string `json:"model_version"`
	Protocol      string `json:"protocol"`
	OutputName    string `json:"output_name"`
	SignatureName string `json:"signature_name"`
	TimeoutMS     int    `json:"timeout_ms"`
}

// DecodeKServeModel 解析 KServe 模型 artifact：
//
//	{"type": "kserve", "feature_names": [...], "endpoint": "http://localhost:8000",
//	 "model_name": "insurance-rest", "protocol": "v2", "timeout_ms": 3000}
func DecodeKServeModel(data []byte) (Regressor, error) {
	return decodeServiceModel(service.ServiceTypeKServe, data)
}

// DecodeTFServingModel 解析 TF Serving 模型 artifact：
//
//	{"type": "tfserving", "feature_names": [...], "endpoint": "http://localhost:8501",
//	 "model_name": "insurance_young", "signature_name": "serving_default"}
func DecodeTFServingModel(data []byte) (Regressor, error) {
	return decodeServiceModel(service.ServiceTypeTFServing, data)
}

func decodeServiceModel(kind service.ServiceType, data []byte) (Regressor, error) {
	var raw remoteArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s model: %w", kind, err)
	}
	cfg := &service.ServiceConfig{
		Type:          kind,
		Endpoint:      raw.Endpoint,
		ModelName:     raw.ModelName,
		ModelVersion:  raw.ModelVersion,
		Protocol:      raw.Protocol,
		OutputName:    raw.OutputName,
		SignatureName: raw.SignatureName,
		Timeout:       time.Duration(raw.TimeoutMS) * time.Millisecond,
	}
	if err := service.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	svc, err := service.NewMLService(cfg)
	if err != nil {
		return nil, err
	}
	return &ServiceModel{Service: svc, Kind: kind, ModelName: raw.ModelName}, nil
}

func (m *ServiceModel) Name() string { return string(m.Kind) + ":" + m.ModelName }

func (m *ServiceModel) Predict(ctx context.Context, row []float64) (float64, error) {
	if err := checkRow(m.Name(), row); err != nil {
		return 0, err
	}
	resp, err := m.Service.Predict(ctx, &core.MLPredictRequest{
		Instances: [][]float64{row},
		ModelName: m.ModelName,
	})
	if err != nil {
		return 0, err
	}
	if len(resp.Predictions) != 1 {
		return 0, fmt.Errorf("%s: expected 1 prediction, got %d", m.Name(), len(resp.Predictions))
	}
	return resp.Predictions[0], nil
}
