// Package store 提供 core.Store 的实现：启动时从集中存储读取模型 / 标准化器 artifact。
//
// 示例：
//
//	var s core.Store = NewMemoryStore()
//	rs, err := NewRedisStore(ctx, RedisOptions{Addr: "localhost:6379"})
package store
