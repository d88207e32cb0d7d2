package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rushteam/inscost/core"
)

// ErrNotFound 表示数据源中不存在该 artifact。
var ErrNotFound = errors.New("artifact not found")

// Source artifact 数据源接口
// 支持从不同来源读取 artifact（本地目录、HTTP 接口、Redis 等 KV 存储）
type Source interface {
	// Name 返回数据源描述（用于日志）
	Name() string
	// Fetch 读取 artifact 原始内容；不存在时返回 ErrNotFound
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// DirSource 本地目录数据源：<Dir>/<name><Ext>
type DirSource struct {
	Dir string
	Ext string
}

// NewDirSource 创建本地目录数据源，ext 为空时使用 ".json"。
func NewDirSource(dir, ext string) *DirSource {
	if ext == "" {
		ext = DefaultExt
	}
	return &DirSource{Dir: dir, Ext: ext}
}

func (s *DirSource) Name() string { return "dir:" + s.Dir }

func (s *DirSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	path := filepath.Join(s.Dir, name+s.Ext)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("读取 artifact 文件失败: %w", err)
	}
	return data, nil
}

// HTTPSource HTTP 接口数据源：GET <BaseURL>/<name><Ext>
type HTTPSource struct {
	BaseURL string
	Ext     string
	client  *http.Client
}

// NewHTTPSource 创建 HTTP 数据源
//
// 用法：
//
//	src := artifact.NewHTTPSource("http://models.internal/insurance/v3", "", 5*time.Second)
func NewHTTPSource(baseURL, ext string, timeout time.Duration) *HTTPSource {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if ext == "" {
		ext = DefaultExt
	}
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Ext:     ext,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Name() string { return "http:" + s.BaseURL }

func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	url := s.BaseURL + "/" + name + s.Ext
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 请求失败: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP 请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", url, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("HTTP 请求失败: status=%d, body=%s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取 HTTP 响应失败: %w", err)
	}
	return data, nil
}

// StoreSource KV 存储数据源：key 为 <Prefix><name><Ext>
type StoreSource struct {
	Store  core.Store
	Prefix string
	Ext    string
}

// NewStoreSource 创建 KV 存储数据源（Redis / Memory）
func NewStoreSource(store core.Store, prefix, ext string) *StoreSource {
	if ext == "" {
		ext = DefaultExt
	}
	return &StoreSource{Store: store, Prefix: prefix, Ext: ext}
}

func (s *StoreSource) Name() string { return s.Store.Name() + ":" + s.Prefix }

func (s *StoreSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	key := s.Prefix + name + s.Ext
	data, err := s.Store.Get(ctx, key)
	if core.IsNotFound(err) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("从 %s 读取 artifact 失败: %w", s.Store.Name(), err)
	}
	return data, nil
}

// Close 关闭底层存储
func (s *StoreSource) Close() error { return s.Store.Close() }
