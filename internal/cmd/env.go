package cmd

import (
	"fmt"

	"github.com/coolteam/cardshop/internal/api"
	"github.com/coolteam/cardshop/internal/config"
	"github.com/coolteam/cardshop/internal/logging"
	"github.com/coolteam/cardshop/internal/model"
	"github.com/coolteam/cardshop/internal/session"
	"github.com/spf13/afero"
)

// newFs is swapped by tests.
var newFs = afero.NewOsFs

// env is what every command that talks to the shop needs.
type env struct {
	cfg    *config.Config
	fs     afero.Fs
	store  *session.Store
	client *api.Client
	logger *logging.Logger
}

func newEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	fs := newFs()
	dir := cfg.Storage.ResolveDir()
	logger := CreateLogger(fs, dir, cfg)
	store := session.New(fs, dir, logger)

	opts := []api.ClientOption{api.WithTokenSource(store), api.WithLogger(logger)}
	if cfg.API.Timeout > 0 {
		opts = append(opts, api.WithTimeout(cfg.API.Timeout))
	}

	return &env{
		cfg:    cfg,
		fs:     fs,
		store:  store,
		client: api.NewClient(cfg.API.BaseURL, opts...),
		logger: logger,
	}, nil
}

// Close flushes the log file.
func (e *env) Close() {
	_ = e.logger.Close()
}

// payTypes returns the configured payment channels in order.
func (e *env) payTypes() ([]model.PayType, error) {
	out := make([]model.PayType, 0, len(e.cfg.Shop.PayTypes))
	for _, s := range e.cfg.Shop.PayTypes {
		p, err := model.ParsePayType(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// CreateLogger returns a file logger under dir when logging is enabled, and
// a no-op logger otherwise or when the file cannot be opened.
func CreateLogger(fs afero.Fs, dir string, cfg *config.Config) *logging.Logger {
	if !cfg.Logging.Enabled {
		return logging.NopLogger()
	}

	logger, err := logging.NewFileLogger(fs, dir, logging.Options{
		Level: cfg.Logging.Level,
		Rotation: logging.RotationConfig{
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			Compress:   cfg.Logging.Compress,
		},
	})
	if err != nil {
		return logging.NopLogger()
	}
	return logger
}
