package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/usagerelay/internal/config"
	logpkg "github.com/kailas-cloud/usagerelay/internal/logger"
	"github.com/kailas-cloud/usagerelay/internal/metrics"
	"github.com/kailas-cloud/usagerelay/internal/state"
	"github.com/kailas-cloud/usagerelay/internal/transport/upstream"
	polluc "github.com/kailas-cloud/usagerelay/internal/usecase/poll"
)

type rootFlags struct {
	configPath string
	env        string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	serve := newServeCmd(flags)
	root := &cobra.Command{
		Use:           "usagerelay",
		Short:         "Poll Claude usage and serve it on the local network",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default config/<env>.yaml)")
	root.PersistentFlags().StringVar(&flags.env, "env", "", "environment name (default $ENV or local)")

	root.AddCommand(serve, newFetchCmd(flags), newStatusCmd(), newVersionCmd())
	return root
}

// runtime is everything the commands share once config is loaded.
type runtime struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
	cell   *state.Cell
	poller *polluc.Service
}

func (f *rootFlags) resolveEnv() string {
	if f.env != "" {
		return f.env
	}
	return config.GetEnv()
}

func (f *rootFlags) loadConfig() (config.Config, error) {
	if f.configPath != "" {
		return config.LoadFile(f.configPath)
	}
	return config.Load(f.resolveEnv())
}

// bootstrap loads config, builds the logger and wires the poller to a fresh state cell.
func bootstrap(flags *rootFlags) (*runtime, error) {
	env := flags.resolveEnv()

	cfg, err := flags.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	metrics.RegisterPollMetrics()

	client, err := upstream.New(upstream.Options{
		BaseURL:    cfg.Upstream.BaseURL,
		OrgID:      cfg.Upstream.OrgID,
		SessionKey: cfg.Upstream.SessionKey,
		UserAgent:  cfg.Upstream.UserAgent,
		Timeout:    cfg.UpstreamTimeout(),
		Logger:     logger,
	})
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("create upstream client: %w", err)
	}

	cell := state.NewCell()
	poller := polluc.New(client, cell, cfg.PollInterval(), logger).
		WithTimeout(cfg.UpstreamTimeout())

	return &runtime{
		env:    env,
		cfg:    cfg,
		logger: logger,
		cell:   cell,
		poller: poller,
	}, nil
}

func (rt *runtime) warnIfPlaceholderCredentials() {
	if rt.cfg.HasCredentials() {
		return
	}
	rt.logger.Warn("credentials are not configured; every fetch will fail until they are set",
		zap.String("org_id_env", "CLAUDE_ORG_ID"),
		zap.String("session_key_env", "CLAUDE_SESSION_KEY"),
	)
}
