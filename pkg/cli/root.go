// Package cli is the operator surface: a cobra command tree around the
// services workspace.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/praveenpotnurii/BifrostLink/pkg/config"
	"github.com/praveenpotnurii/BifrostLink/pkg/gateway"
	"github.com/praveenpotnurii/BifrostLink/pkg/logging"
	"github.com/praveenpotnurii/BifrostLink/pkg/services"
)

type rootOptions struct {
	configPath string
	version    string
	loadConfig func(path, version string) (*config.Config, error)
}

// NewRootCommand builds the bifrost command tree. Running it without a
// subcommand starts the interactive shell.
func NewRootCommand(version string) *cobra.Command {
	return newRootCommand(&rootOptions{version: version, loadConfig: config.Load})
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bifrost",
		Short:         "Run SQL against remote databases through the BifrostLink gateway",
		Version:       opts.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, opts)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config file (default config.yaml if present)")

	rootCmd.AddCommand(newShellCommand(opts))
	rootCmd.AddCommand(newExecCommand(opts))
	rootCmd.AddCommand(newStatusCommand(opts))
	rootCmd.AddCommand(newListCommand(opts))

	return rootCmd
}

// app holds what every command needs once configuration is loaded.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	client *gateway.Client
}

func newApp(opts *rootOptions) (*app, error) {
	cfg, err := opts.loadConfig(opts.configPath, opts.version)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Debug("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("gateway", cfg.Gateway.BaseURL),
		zap.Duration("probe_interval", cfg.Console.ProbeInterval))

	return &app{
		cfg:    cfg,
		logger: logger,
		client: gateway.NewClient(cfg.Gateway, logger),
	}, nil
}

// workspace builds a workspace. One-shot commands pass probing=false and
// check connectivity once themselves.
func (a *app) workspace(probing bool) *services.Workspace {
	consoleCfg := a.cfg.Console
	if !probing {
		consoleCfg.ProbeEnabled = false
	}
	return services.NewWorkspace(a.client, consoleCfg, a.logger)
}

func (a *app) close() {
	_ = a.logger.Sync()
}
