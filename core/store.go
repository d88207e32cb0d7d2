package core

import "context"

// Store 是只读 artifact 存储的领域接口。
//
// 实现：
//   - store.MemoryStore（测试/开发）
//   - store.RedisStore（集中下发模型 artifact）
//
// 进程只在启动时读取 artifact，运行期不写入。
type Store interface {
	// Name 返回存储后端名称（用于日志）
	Name() string

	// Get 读取单个 key 的值；不存在时返回 ErrStoreNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// BatchGet 批量读取，不存在的 key 不出现在结果中
	BatchGet(ctx context.Context, keys []string) (map[string][]byte, error)

	// Close 关闭连接/释放资源
	Close() error
}
