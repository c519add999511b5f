package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pocketcode/pocket-cli/internal/adapters/api"
	statusadapter "github.com/pocketcode/pocket-cli/internal/adapters/render/status"
	statetoml "github.com/pocketcode/pocket-cli/internal/adapters/state/toml"
	"github.com/pocketcode/pocket-cli/internal/application"
	"github.com/pocketcode/pocket-cli/internal/domain"
	"github.com/pocketcode/pocket-cli/internal/ports"
)

type app struct {
	client         *application.Client
	store          ports.IdentityStore
	statusRenderer func(statusadapter.Report, statusadapter.RenderOptions) (string, error)
	logger         *zap.Logger
	now            func() time.Time
}

func errConnect(detail string) error {
	return fmt.Errorf("%w: %s", domain.ErrNotConnected, detail)
}

func wireApp() (*app, error) {
	cfg := viper.New()
	cfg.SetEnvPrefix("POCKET")
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()
	cfg.SetDefault("server.host", "127.0.0.1")
	cfg.SetDefault("server.port", 8765)
	cfg.SetDefault("poll.interval", "5s")
	cfg.SetDefault("request.timeout", "15s")
	cfg.SetDefault("reconnect.auto", true)

	store, err := statetoml.NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire identity store: %w", err)
	}

	logger := newLogger()

	apiClient := api.NewClient(cfg.GetDuration("request.timeout"))
	sessions := application.NewSessionManager(apiClient, store, ports.SystemClock{}, logger)
	apiClient.SetTokenSource(sessions)

	client := application.NewClient(apiClient, sessions, ports.SystemClock{}, logger, application.Config{
		Host:          cfg.GetString("server.host"),
		Port:          cfg.GetInt("server.port"),
		PollInterval:  cfg.GetDuration("poll.interval"),
		AutoReconnect: cfg.GetBool("reconnect.auto"),
	})

	return &app{
		client:         client,
		store:          store,
		statusRenderer: statusadapter.Render,
		logger:         logger,
		now:            time.Now,
	}, nil
}

// newLogger keeps CLI output clean unless debugging is requested.
func newLogger() *zap.Logger {
	if os.Getenv("POCKET_DEBUG") == "" {
		return zap.NewNop()
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
