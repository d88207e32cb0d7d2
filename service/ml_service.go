package service

import "time"

// ServiceType 服务类型
type ServiceType string

const (
	ServiceTypeKServe    ServiceType = "kserve"    // KServe / Open Inference Protocol
	ServiceTypeTFServing ServiceType = "tfserving" // TensorFlow Serving REST API
)

// ServiceConfig 远程模型服务配置
type ServiceConfig struct {
	// Type 服务类型
	Type ServiceType

	// Endpoint 服务根地址，如 "http://localhost:8000"
	Endpoint string

	// ModelName 模型名称
	ModelName string

	// ModelVersion 模型版本（可选）
	ModelVersion string

	// Protocol 协议版本："v1" 或 "v2"，默认 "v2"
	Protocol string

	// OutputName V2 协议下期望的输出张量名称（可选）
	OutputName string

	// SignatureName TF Serving 签名名称（可选）
	SignatureName string

	// Timeout 超时时间，0 表示使用默认值
	Timeout time.Duration

	// Auth 认证信息（可选）
	Auth *AuthConfig
}

// AuthConfig 认证配置
type AuthConfig struct {
	Type     string // "basic", "bearer", "api_key"
	Username string
	Password string
	Token    string
	APIKey   string
}
