package main

import (
	"context"
	"fmt"
	"os"

	democmd "github.com/rzbill/laneq/internal/cmd/demo"
	cfgpkg "github.com/rzbill/laneq/internal/config"
	"github.com/rzbill/laneq/internal/deadletter"
	"github.com/rzbill/laneq/internal/metrics"
	pebblestore "github.com/rzbill/laneq/internal/storage/pebble"
	logpkg "github.com/rzbill/laneq/pkg/log"
	"github.com/spf13/cobra"
)

func main() {
	// initialize logger for CLI
	// Respect LANEQ_LOG_LEVEL for CLI output
	level := os.Getenv("LANEQ_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)

	// Redirect standard library logs (used by Pebble) to our logger
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "laneq",
		Short: "laneq work-queue CLI",
		Long:  "laneq is a bounded multi-lane work queue. This CLI runs demo workloads and inspects dead letters.",
	}

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a synthetic producer/consumer workload",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return err
			}
			cfgpkg.FromEnv(&cfg)
			overlayFlags(cmd, &cfg)

			procLogger, err := logpkg.ApplyConfig(logpkg.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
			if err != nil {
				procLogger = logger
			}
			logpkg.RedirectStdLog(procLogger)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			return democmd.Run(ctx, democmd.Options{
				Config:  cfg,
				Logger:  procLogger,
				Metrics: metrics.New(),
			})
		},
	}
	addConfigFlags(demoCmd)
	rootCmd.AddCommand(demoCmd)

	dlCmd := &cobra.Command{Use: "deadletter", Short: "Dead-letter operations"}
	dlListCmd := &cobra.Command{
		Use:   "list",
		Short: "List dead letters for a lane",
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")
			laneIdx, _ := cmd.Flags().GetInt("lane")
			limit, _ := cmd.Flags().GetInt("limit")
			if dataDir == "" {
				dataDir = cfgpkg.DefaultDataDir()
			}
			db, err := pebblestore.Open(pebblestore.Options{
				DataDir: dataDir + "/deadletter",
				Fsync:   pebblestore.FsyncModeNever,
			})
			if err != nil {
				return err
			}
			defer db.Close()
			entries, err := deadletter.NewStore(db).Scan(laneIdx, limit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Printf("lane=%d seq=%d reason=%s payload=%s\n", e.Lane, e.Seq, e.Reason, e.Payload)
			}
			return nil
		},
	}
	dlListCmd.Flags().String("data-dir", os.Getenv("LANEQ_DATA_DIR"), "Data directory (defaults to OS-specific application data directory)")
	dlListCmd.Flags().Int("lane", 0, "Lane index")
	dlListCmd.Flags().Int("limit", 100, "Maximum entries to print (0 for all)")
	dlCmd.AddCommand(dlListCmd)
	rootCmd.AddCommand(dlCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", os.Getenv("LANEQ_CONFIG"), "Config file path (JSON or YAML)")
	cmd.Flags().Int("lanes", 0, "Number of lanes")
	cmd.Flags().Int("capacity", 0, "Per-lane capacity")
	cmd.Flags().Int("high", 0, "High watermark")
	cmd.Flags().Int("low", -1, "Low watermark")
	cmd.Flags().String("policy", "", "Overflow policy: reject|evict-oldest")
	cmd.Flags().String("admission", "", "CEL admission expression")
	cmd.Flags().Int("producers", 0, "Producer goroutines")
	cmd.Flags().Int("consumers", 0, "Consumer goroutines")
	cmd.Flags().Duration("duration", 0, "Workload duration")
	cmd.Flags().String("metrics", "", "Prometheus listen address (empty disables)")
	cmd.Flags().String("data-dir", "", "Dead-letter data directory (empty disables persistence)")
	cmd.Flags().String("log-level", os.Getenv("LANEQ_LOG_LEVEL"), "Log level: debug|info|warn|error")
	cmd.Flags().String("log-format", os.Getenv("LANEQ_LOG_FORMAT"), "Log format: text|json (default text)")
}

// overlayFlags applies explicitly set flags on top of file/env config.
func overlayFlags(cmd *cobra.Command, cfg *cfgpkg.Config) {
	if v, _ := cmd.Flags().GetInt("lanes"); v > 0 {
		cfg.Queue.Lanes = v
	}
	if v, _ := cmd.Flags().GetInt("capacity"); v > 0 {
		cfg.Queue.Capacity = v
	}
	if v, _ := cmd.Flags().GetInt("high"); v > 0 {
		cfg.Queue.HighWatermark = v
	}
	if v, _ := cmd.Flags().GetInt("low"); v >= 0 {
		cfg.Queue.LowWatermark = v
	}
	if v, _ := cmd.Flags().GetString("policy"); v != "" {
		cfg.Queue.Policy = v
	}
	if v, _ := cmd.Flags().GetString("admission"); v != "" {
		cfg.Queue.AdmissionExpr = v
	}
	if v, _ := cmd.Flags().GetInt("producers"); v > 0 {
		cfg.Demo.Producers = v
	}
	if v, _ := cmd.Flags().GetInt("consumers"); v > 0 {
		cfg.Demo.Consumers = v
	}
	if v, _ := cmd.Flags().GetDuration("duration"); v > 0 {
		cfg.Demo.Duration = cfgpkg.Duration(v)
	}
	if v, _ := cmd.Flags().GetString("metrics"); v != "" {
		cfg.Demo.MetricsAddr = v
	}
	if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
		cfg.Queue.DataDir = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.Log.Format = v
	}
}
