package app

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dalemusser/routenav/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRunRequiresHooks(t *testing.T) {
	err := Run(context.Background(), Hooks[struct{}]{Name: "test"})
	assert.ErrorContains(t, err, "hooks are required")
}

func TestRunConfigError(t *testing.T) {
	boom := errors.New("boom")
	err := Run(context.Background(), Hooks[struct{}]{
		Name: "test",
		LoadConfig: func(*zap.Logger) (*config.CoreConfig, struct{}, error) {
			return nil, struct{}{}, boom
		},
		BuildHandler: func(*config.CoreConfig, struct{}, *zap.Logger) (http.Handler, error) {
			t.Fatal("BuildHandler must not run")
			return nil, nil
		},
	})
	assert.ErrorIs(t, err, boom)
}

func TestRunHandlerError(t *testing.T) {
	boom := errors.New("no handler")
	err := Run(context.Background(), Hooks[struct{}]{
		Name: "test",
		LoadConfig: func(*zap.Logger) (*config.CoreConfig, struct{}, error) {
			return &config.CoreConfig{Env: "dev", LogLevel: "error"}, struct{}{}, nil
		},
		BuildHandler: func(*config.CoreConfig, struct{}, *zap.Logger) (http.Handler, error) {
			return nil, boom
		},
	})
	assert.ErrorIs(t, err, boom)
}
