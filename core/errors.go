package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 使用场景：
//   - 启动期：模型/标准化器 artifact 缺失或无法解析（ARTIFACT_MISSING / ARTIFACT_INVALID）
//   - 请求期：编码、标准化或模型调用失败（PREDICTION_FAILED）
type DomainError struct {
	Code    string // 错误代码（如 "ARTIFACT_MISSING", "PREDICTION_FAILED"）
	Message string // 错误消息
	Module  string // 模块名称（如 "artifact", "predictor"）
	Err     error  // 底层原因（可选）
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// IsDomainError 检查错误链上是否存在 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链上的第一个 DomainError，如果不存在则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// WrapDomainError 创建携带底层原因的领域错误
func WrapDomainError(module, code, message string, err error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound         = "NOT_FOUND"         // 资源不存在
	ErrorCodeArtifactMissing  = "ARTIFACT_MISSING"  // artifact 文件缺失（启动期致命错误）
	ErrorCodeArtifactInvalid  = "ARTIFACT_INVALID"  // artifact 内容无法解析或与特征 schema 不一致
	ErrorCodePredictionFailed = "PREDICTION_FAILED" // 单次预测失败（请求级，可恢复）
	ErrorCodeInvalidInput     = "INVALID_INPUT"     // 请求体无法解析
)

// 模块名称常量
const (
	ModuleStore     = "store"
	ModuleArtifact  = "artifact"
	ModuleFeature   = "feature"
	ModuleModel     = "model"
	ModulePredictor = "predictor"
	ModuleService   = "service"
)

// ErrStoreNotFound 表示存储中不存在该 key
var ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsArtifactMissing 检查错误是否为 ARTIFACT_MISSING
func IsArtifactMissing(err error) bool {
	return hasCode(err, ErrorCodeArtifactMissing)
}

// IsArtifactInvalid 检查错误是否为 ARTIFACT_INVALID
func IsArtifactInvalid(err error) bool {
	return hasCode(err, ErrorCodeArtifactInvalid)
}

// IsPredictionFailed 检查错误是否为 PREDICTION_FAILED
func IsPredictionFailed(err error) bool {
	return hasCode(err, ErrorCodePredictionFailed)
}
