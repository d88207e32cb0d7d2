package config

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/inscost/artifact"
)

// 使用配置驱动时，需在 main 或入口处 import _ "github.com/rushteam/inscost/config/builders"
// 以触发内置 artifact 数据源（dir、http、redis）的 init 注册。

// SourceBuilder 根据 artifacts 配置构建 artifact 数据源。
type SourceBuilder func(ctx context.Context, cfg ArtifactsConfig) (artifact.Source, error)

var (
	defaultBuilders   = make(map[string]SourceBuilder)
	defaultBuildersMu sync.RWMutex
)

// Register 注册一种数据源的构建逻辑。
// 建议在 init 中调用，例如：func init() { config.Register("dir", BuildDirSource) }
func Register(typeName string, builder SourceBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultBuildersMu.Lock()
	defer defaultBuildersMu.Unlock()
	defaultBuilders[typeName] = builder
}

// SupportedTypes 返回当前已注册的数据源类型列表（排序），用于错误提示与校验。
func SupportedTypes() []string {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	types := make([]string, 0, len(defaultBuilders))
	for t := range defaultBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func isSupported(typeName string) bool {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	_, ok := defaultBuilders[typeName]
	return ok
}

// BuildSource 按 cfg.Source 构建数据源；未注册的类型返回包含已支持列表的错误。
func BuildSource(ctx context.Context, cfg ArtifactsConfig) (artifact.Source, error) {
	defaultBuildersMu.RLock()
	builder, ok := defaultBuilders[cfg.Source]
	defaultBuildersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported artifact source %q (supported: %v)", cfg.Source, SupportedTypes())
	}
	return builder(ctx, cfg)
}
