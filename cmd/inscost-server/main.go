package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/rushteam/inscost/artifact"
	"github.com/rushteam/inscost/config"
	_ "github.com/rushteam/inscost/config/builders"
	"github.com/rushteam/inscost/core"
	"github.com/rushteam/inscost/form"
	"github.com/rushteam/inscost/pkg/observability"
	"github.com/rushteam/inscost/predictor"
	"github.com/rushteam/inscost/server"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("inscost-server exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logger.Info("starting inscost-server", "version", Version, "build_time", BuildTime, "git_commit", GitCommit)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, observability.TraceConfig{
		ServiceName: "inscost",
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return err
	}
	defer shutdownTracer(context.Background())

	set, err := loadArtifacts(ctx, cfg.Artifacts, logger)
	if err != nil {
		return err
	}

	var predOpts []predictor.Option
	var srvOpts []server.Option
	predOpts = append(predOpts, predictor.WithLogger(logger))
	if cfg.Metrics.Enabled {
		metrics, err := observability.InitMetrics(observability.MetricsConfig{
			ServiceName: "inscost",
			GoCollector: cfg.Metrics.GoCollector,
		})
		if err != nil {
			return err
		}
		defer metrics.Shutdown(context.Background())
		predOpts = append(predOpts, predictor.WithObserver(metrics))
		srvOpts = append(srvOpts, server.WithMetricsHandler(metrics.Handler()))
	}

	pred, err := predictor.New(set, predOpts...)
	if err != nil {
		return err
	}

	remapper, err := form.NewRemapper(remapRules(cfg.Form))
	if err != nil {
		return err
	}

	gin.SetMode(cfg.Server.GinMode)
	srv, err := server.New(pred, append(srvOpts,
		server.WithRemapper(remapper),
		server.WithLogger(logger),
		server.WithAllowedOrigins(cfg.Server.AllowedOrigins),
		server.WithBuildInfo(server.BuildInfo{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit}),
	)...)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: srv.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// loadArtifacts 启动时加载全部 artifact；任何一个缺失都是致命错误，日志中包含 artifact 名称。
func loadArtifacts(ctx context.Context, cfg config.ArtifactsConfig, logger *slog.Logger) (*artifact.Set, error) {
	loadCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	src, err := config.BuildSource(loadCtx, cfg)
	if err != nil {
		return nil, err
	}
	if c, ok := src.(io.Closer); ok {
		defer c.Close()
	}

	set, err := artifact.Load(loadCtx, src)
	if err != nil {
		code := ""
		if de := core.GetDomainError(err); de != nil {
			code = de.Code
		}
		logger.Error("failed to load artifacts", "source", src.Name(), "code", code, "error", err)
		return nil, err
	}

	for _, p := range []artifact.Pair{set.Young, set.Rest} {
		logger.Info("artifacts loaded",
			"segment", p.Segment,
			"model", p.Model.Name(),
			"scaled_columns", p.Scaler.ColumnsToScale,
			"source", src.Name(),
		)
	}
	return set, nil
}

func remapRules(cfg config.FormConfig) map[string]string {
	if len(cfg.Remap) == 0 {
		return nil
	}
	return cfg.Remap
}
