package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"MacroTilt/internal/di"
	"MacroTilt/internal/usecase"
	"MacroTilt/pkg/config"
)

type rootOptions struct {
	configPath string
	store      string
	timeout    time.Duration
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "tiltctl",
		Short: "Query the MacroTilt rebalancing engine from the command line",
		Long: `tiltctl runs one engine evaluation against live indicator data and prints the result
as JSON. It uses the same configuration file as the server, with Kafka publishing and
the shared Redis cache turned off.

Examples:
  tiltctl signal --ticker SPY
  tiltctl evaluate --config config/config.yaml
  tiltctl health --format table
  tiltctl watch --url http://localhost:8080 --tickers SPY,TLT`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "config/config.yaml", "Path to configuration file")
	pf.StringVar(&opts.store, "store", "", "Override store.backend (yaml|clickhouse)")
	pf.DurationVar(&opts.timeout, "timeout", 30*time.Second, "Overall deadline for one command")
	pf.BoolVar(&opts.verbose, "verbose", false, "Log at debug level to stderr")

	cmd.AddCommand(
		newSignalCmd(opts),
		newEvaluateCmd(opts),
		newHealthCmd(opts),
		newWatchCmd(opts),
	)
	return cmd
}

// loadConfig reads the server configuration and narrows it for a one-shot run.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnv(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.store != "" {
		cfg.Store.Backend = o.store
	}
	cfg.Kafka.Enabled = false
	cfg.Cache.Redis.Enabled = false
	cfg.Scheduler.Enabled = false
	cfg.Logging.Output = "stderr"
	cfg.Logging.Level = "warn"
	if o.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (o *rootOptions) useCase() (*usecase.RebalanceUseCase, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	uc, err := di.InitializeRebalanceUseCase(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	return uc, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
