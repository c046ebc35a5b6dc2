// app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/routenav/config"
	"github.com/dalemusser/routenav/httputil"
	"github.com/dalemusser/routenav/logging"
	"github.com/dalemusser/routenav/metrics"
	"github.com/dalemusser/routenav/pantry/version"
	"github.com/dalemusser/routenav/server"
	"go.uber.org/zap"
)

// Hooks are the integration points a service provides to Run.
type Hooks[C any] struct {
	// Name is used only for logging.
	Name string

	// LoadConfig returns the core config and the service's own config,
	// typically via config.Load with the service's AppKeys.
	LoadConfig func(logger *zap.Logger) (*config.CoreConfig, C, error)

	// BuildHandler constructs the final http.Handler: router, middleware
	// and routes.
	BuildHandler func(core *config.CoreConfig, appCfg C, logger *zap.Logger) (http.Handler, error)
}

// Run executes the startup sequence:
//
//  1. Bootstrap logger
//  2. Load core + app config (Hooks.LoadConfig)
//  3. Build final logger from core config
//  4. Register default metrics
//  5. Wire shutdown signals to a context
//  6. Build the HTTP handler (Hooks.BuildHandler)
//  7. Serve until shutdown
func Run[C any](ctx context.Context, hooks Hooks[C]) error {
	if hooks.LoadConfig == nil || hooks.BuildHandler == nil {
		return errors.New("app: LoadConfig and BuildHandler hooks are required")
	}

	bootstrap := logging.BootstrapLogger()
	defer func() { _ = bootstrap.Sync() }()
	bootstrap.Info("bootstrap logger initialized", zap.String("app", hooks.Name))

	coreCfg, appCfg, err := hooks.LoadConfig(bootstrap)
	if err != nil {
		bootstrap.Error("config load failed", zap.Error(err))
		return fmt.Errorf("load config: %w", err)
	}
	bootstrap.Info("config loaded",
		zap.String("env", coreCfg.Env),
		zap.String("log_level", coreCfg.LogLevel),
	)

	logger, err := logging.BuildLogger(coreCfg.LogLevel, coreCfg.Env)
	if err != nil {
		bootstrap.Error("logger build failed", zap.Error(err))
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("logger initialized", zap.String("app", hooks.Name), zap.String("version", version.String()))
	logger.Debug("core config", zap.String("config", coreCfg.Dump()))
	httputil.SetLogger(logger)

	metrics.RegisterDefault(logger)

	ctx, cancel := server.WithShutdownSignals(ctx, logger)
	defer cancel()

	handler, err := hooks.BuildHandler(coreCfg, appCfg, logger)
	if err != nil {
		logger.Error("handler build failed", zap.Error(err))
		return fmt.Errorf("build handler: %w", err)
	}

	if err := server.ListenAndServeWithContext(ctx, coreCfg, handler, logger); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
