package builders

import (
	"context"
	"fmt"

	"github.com/rushteam/inscost/artifact"
	"github.com/rushteam/inscost/config"
	"github.com/rushteam/inscost/store"
)

func init() {
	config.Register("dir", BuildDirSource)
	config.Register("http", BuildHTTPSource)
	config.Register("redis", BuildRedisSource)
}

func BuildDirSource(_ context.Context, cfg config.ArtifactsConfig) (artifact.Source, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("artifacts.dir is required for dir source")
	}
	return artifact.NewDirSource(cfg.Dir, cfg.Ext), nil
}

func BuildHTTPSource(_ context.Context, cfg config.ArtifactsConfig) (artifact.Source, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("artifacts.base_url is required for http source")
	}
	return artifact.NewHTTPSource(cfg.BaseURL, cfg.Ext, cfg.Timeout), nil
}

// BuildRedisSource 连接 Redis 并返回数据源；调用方加载完成后应关闭（数据源实现 io.Closer）。
func BuildRedisSource(ctx context.Context, cfg config.ArtifactsConfig) (artifact.Source, error) {
	rs, err := store.NewRedisStore(ctx, store.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
	}
	return artifact.NewStoreSource(rs, cfg.Redis.KeyPrefix, cfg.Ext), nil
}
