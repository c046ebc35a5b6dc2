// internal/routenavd/routenavd.go
package routenavd

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/dalemusser/routenav/app"
	"github.com/dalemusser/routenav/config"
	"github.com/dalemusser/routenav/internal/navapi"
	"github.com/dalemusser/routenav/pantry/pprof"
	"github.com/dalemusser/routenav/router"
	"go.uber.org/zap"
)

// Config is the service configuration on top of config.CoreConfig.
type Config struct {
	RoutesFile     string
	RedirectStatus int
	FallbackView   string
}

// AppKeys are the service's configuration keys.
var AppKeys = []config.AppKey{
	{Name: "routes_file", Default: "routes.yaml", Desc: "YAML route table (name + chi pattern per view)"},
	{Name: "redirect_status", Default: http.StatusSeeOther, Desc: "HTTP status used for navigation redirects (3xx)"},
	{Name: "fallback_view", Default: "home", Desc: `View targeted by GET /go ("" disables)`},
}

// Hooks wires the service into app.Run.
func Hooks() app.Hooks[Config] {
	return app.Hooks[Config]{
		Name:         "routenavd",
		LoadConfig:   LoadConfig,
		BuildHandler: BuildHandler,
	}
}

// LoadConfig loads core and service configuration.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, Config, error) {
	core, vals, err := config.Load(logger, AppKeys)
	if err != nil {
		return nil, Config{}, err
	}
	cfg, err := configFromValues(vals)
	if err != nil {
		return nil, Config{}, err
	}
	return core, cfg, nil
}

func configFromValues(vals config.AppConfigValues) (Config, error) {
	cfg := Config{
		RoutesFile:     strings.TrimSpace(vals.String("routes_file")),
		RedirectStatus: vals.Int("redirect_status"),
		FallbackView:   strings.TrimSpace(vals.String("fallback_view")),
	}
	switch cfg.RedirectStatus {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
	default:
		return Config{}, fmt.Errorf("redirect_status must be one of 301, 302, 303, 307, 308; got %d", cfg.RedirectStatus)
	}
	return cfg, nil
}

// LoadViews reads the route table at path. A missing file (or empty path)
// yields router.DefaultViews.
func LoadViews(path string, logger *zap.Logger) ([]router.View, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		return router.DefaultViews, nil
	}
	views, err := router.ReadRoutesFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("routes file not found; using built-in views", zap.String("file", path))
		return router.DefaultViews, nil
	}
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded routes file", zap.String("file", path), zap.Int("views", len(views)))
	return views, nil
}

// BuildHandler assembles the router: standard middleware, navigation API,
// one landing handler per view and, in dev, the pprof endpoints.
func BuildHandler(core *config.CoreConfig, cfg Config, logger *zap.Logger) (http.Handler, error) {
	views, err := LoadViews(cfg.RoutesFile, logger)
	if err != nil {
		return nil, err
	}

	reg := router.NewRegistry(logger, cfg.RedirectStatus)
	r := router.New(core, logger)

	h := navapi.New(reg, logger, cfg.FallbackView)
	h.Routes(r)
	if core.Env == "dev" {
		pprof.Mount(r)
	}
	if err := h.MountViews(r, views); err != nil {
		return nil, err
	}
	if cfg.FallbackView != "" && !reg.Has(cfg.FallbackView) {
		return nil, fmt.Errorf("fallback_view %q is not a registered view", cfg.FallbackView)
	}
	return r, nil
}
