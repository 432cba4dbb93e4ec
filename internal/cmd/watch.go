package cmd

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/handlevet/handlevet/internal/core"
	"github.com/handlevet/handlevet/internal/core/engine"
	"github.com/handlevet/handlevet/internal/metrics"
	"github.com/handlevet/handlevet/internal/observability"
	"github.com/handlevet/handlevet/internal/output"
)

var (
	watchCurrent string
	watchFormat  string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Check nicknames interactively as they are typed",
	Long: `Read nicknames from stdin and check each one after a debounce delay.

Rapid input cancels the pending check, so only the latest nickname is
resolved. A background janitor prunes expired cache entries and idle
rate limit windows while the watch runs.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit

On shutdown the watch prints a summary of everything it checked.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchCurrent, "current", "", "caller's current nickname; a match is reported as already yours")
	watchCmd.Flags().StringVar(&watchFormat, "format", "table", "Summary format: table, json, markdown")
}

func runWatch(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(watchFormat)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logLevel := viper.GetString("logging.level")
	observability.InitWatchLogger(binaryName, logLevel)
	logger := observability.WatchLogger

	if cfg.Metrics.Enabled {
		if err := observability.InitMetrics(binaryName, cfg.Metrics.Port); err != nil {
			logger.Error("Failed to initialize metrics", zap.Error(err))
			return err
		}
		logger.Info("Metrics endpoint ready", zap.Int("port", observability.GetMetricsPort()))
	}

	ctx := cmd.Context()
	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup

	pipe := buildPipeline(cfg, db, true, logger)
	summary := &output.WatchSummary{Started: time.Now().UTC()}

	logger.Info("Watch started",
		zap.String("version", versionInfo.Version),
		zap.Duration("debounce", cfg.Watch.Debounce),
		zap.Duration("cache_ttl", cfg.Cache.TTL),
		zap.Int("rate_limit", cfg.RateLimit.MaxRequests))

	monitor, err := engine.NewMonitor(ctx, engine.MonitorConfig{
		Check: func(ctx context.Context, nickname, current string) core.CheckResult {
			started := time.Now()
			result := pipe.Service.Check(ctx, nickname, current)
			metrics.RecordCheck(string(result.Status), result.Provenance.Source)
			metrics.RecordCheckDuration(result.Provenance.Source, time.Since(started))
			metrics.RecordCacheEvent(result.Provenance.FromCache)
			if result.Status == core.StatusError && result.Provenance.Source == core.SourceRateLimit {
				metrics.RecordRateLimitRejection()
			}
			return result
		},
		Current: watchCurrent,
		Delay:   cfg.Watch.Debounce,
	})
	if err != nil {
		return err
	}

	janitor := &engine.Janitor{
		Interval: cfg.Cleanup.Interval,
		Cache:    pipe.Cache,
		Limiter:  pipe.Limiter,
		Logger:   logger,
		OnSweep: func(result engine.SweepResult) {
			metrics.RecordJanitorSweep(result.CacheEntries, result.LimiterKeys)
		},
	}
	janitor.Start(ctx)

	// Register graceful shutdown handlers (LIFO order - last registered, first executed)
	// Handler 1: Flush logger (executed last)
	signals.OnShutdown(func(ctx context.Context) error {
		logger.Info("Flushing logger...")
		if err := logger.Sync(); err != nil {
			// Sync errors are often benign (stdout/stderr already closed)
			logger.Warn("Logger sync returned error (may be benign)", zap.Error(err))
		}
		return nil
	})

	// Handler 2: Stop the watch pipeline (executed first)
	signals.OnShutdown(func(ctx context.Context) error {
		logger.Info("Stopping watch pipeline...")
		monitor.Stop()
		janitor.Stop()
		return nil
	})

	// Enable double-tap force quit (Ctrl+C within 2 seconds)
	if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
		Window:  2 * time.Second,
		Message: "Press Ctrl+C again within 2 seconds to force quit",
	}); err != nil {
		logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
	}

	// Start signal listener in background
	go func() {
		if err := signals.Listen(ctx); err != nil {
			logger.Error("Signal handler error", zap.Error(err))
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range monitor.Updates() {
			printUpdate(update)
			tally(summary, update)
		}
	}()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		monitor.SetInput(scanner.Text())
		summary.Inputs++
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("Input stream error", zap.Error(err))
	}

	// Let the final debounced check land before tearing down.
	waitSettled(monitor, cfg.Watch.Debounce)
	monitor.Stop()
	janitor.Stop()
	<-done

	summary.Ended = time.Now().UTC()
	summary.Limits = pipe.Limiter.Snapshot()

	formatter := output.NewFormatter(format)
	rendered, err := formatter.FormatSummary(summary)
	if err != nil {
		return err
	}
	if rendered != "" {
		fmt.Println(rendered)
	}

	logger.Info("Watch finished",
		zap.Int("inputs", summary.Inputs),
		zap.Int("checks", summary.Checks),
		zap.Int("available", summary.Available),
		zap.Int("cache_hits", summary.CacheHits))
	return nil
}

func printUpdate(update engine.Update) {
	switch update.Result.Status {
	case core.StatusIdle:
		fmt.Println("idle")
	case core.StatusChecking:
		fmt.Printf("checking %s\n", update.Input)
	default:
		fmt.Printf("%s %s: %s\n", update.Result.Status, update.Result.Nickname, update.Result.Message)
	}
}

func tally(summary *output.WatchSummary, update engine.Update) {
	if !update.Result.Status.Terminal() {
		return
	}
	summary.Checks++
	switch update.Result.Status {
	case core.StatusAvailable:
		summary.Available++
	case core.StatusUnavailable:
		summary.Unavailable++
	case core.StatusError:
		summary.Errors++
	}
	if update.Result.Provenance.FromCache {
		summary.CacheHits++
	}
}

// waitSettled blocks until no check is pending, bounded by the debounce
// delay plus a grace period. Used after stdin closes so the last queued
// check reaches the summary.
func waitSettled(monitor *engine.Monitor, debounce time.Duration) {
	if debounce <= 0 {
		debounce = engine.DefaultDebounce
	}
	deadline := time.Now().Add(debounce + 2*time.Second)
	for time.Now().Before(deadline) {
		if monitor.State() != core.StatusChecking {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
}
