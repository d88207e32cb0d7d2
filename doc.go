// Package inscost 是一个健康保险年度保费预测服务。
//
// 设计要点：
// - 固定特征 schema: 表单输入经 feature.Encoder 编码为 18 列向量，列集合与顺序不变
// - 按年龄分段: age <= 25 使用 young 组（模型 + 标准化器），否则使用 rest 组
// - Artifact 只读: 启动时一次性加载，之后在并发请求间共享
package inscost

import (
	"github.com/rushteam/inscost/artifact"
	"github.com/rushteam/inscost/core"
	"github.com/rushteam/inscost/feature"
	"github.com/rushteam/inscost/predictor"
)

// 轻量 facade：便于用户直接 import "inscost" 使用核心抽象。
type (
	InputRecord = core.InputRecord
	Vector      = feature.Vector
	Encoder     = feature.Encoder
	ArtifactSet = artifact.Set
	Predictor   = predictor.Predictor
	Result      = predictor.Result
)

const (
	SegmentYoung = artifact.SegmentYoung
	SegmentRest  = artifact.SegmentRest
)

var (
	NewEncoder    = feature.NewEncoder
	NewPredictor  = predictor.New
	LoadArtifacts = artifact.Load
)
