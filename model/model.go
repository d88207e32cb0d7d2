package model

import "context"

// Regressor 是回归模型的最小抽象：输入一行按特征 schema 排列的向量，输出一个标量。
// 具体实现可以是本地模型（linear / gbtree）或远程推理服务（KServe / RPC）。
//
// 实现必须是只读的：加载完成后可被任意多个请求并发调用。
type Regressor interface {
	Name() string
	Predict(ctx context.Context, row []float64) (float64, error)
}
