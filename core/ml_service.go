package core

import "context"

// MLService 是外部模型推理服务的领域接口。
//
// 实现：
//   - service.KServeClient（KServe V1/V2 推理协议）
//   - service.TFServingClient（TF Serving REST predict API）
//
// 本地 artifact（linear / gbtree）不经过 MLService，直接在进程内计算。
type MLService interface {
	// Predict 批量预测
	Predict(ctx context.Context, req *MLPredictRequest) (*MLPredictResponse, error)

	// Health 健康检查
	Health(ctx context.Context) error

	// Close 关闭连接
	Close(ctx context.Context) error
}

// MLPredictRequest 预测请求
type MLPredictRequest struct {
	// Instances 特征实例列表（每个实例是按特征 schema 顺序排列的向量）
	Instances [][]float64

	// ModelName 模型名称（可选，如果服务支持多模型）
	ModelName string

	// ModelVersion 模型版本（可选）
	ModelVersion string
}

// MLPredictResponse 预测响应
type MLPredictResponse struct {
	// Predictions 预测结果列表（与请求实例一一对应）
	Predictions []float64

	// ModelVersion 模型版本（如果服务返回）
	ModelVersion string
}
