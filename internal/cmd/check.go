package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/handlevet/handlevet/internal/config"
	"github.com/handlevet/handlevet/internal/core"
	"github.com/handlevet/handlevet/internal/core/cache"
	"github.com/handlevet/handlevet/internal/core/checker"
	"github.com/handlevet/handlevet/internal/core/engine"
	"github.com/handlevet/handlevet/internal/core/ratelimit"
	"github.com/handlevet/handlevet/internal/core/retry"
	"github.com/handlevet/handlevet/internal/core/store"
	"github.com/handlevet/handlevet/internal/metrics"
	"github.com/handlevet/handlevet/internal/observability"
	"github.com/handlevet/handlevet/internal/output"
)

var (
	checkCurrent string
	checkFormat  string
	checkNoCache bool
)

var checkCmd = &cobra.Command{
	Use:   "check <nickname> [nickname...]",
	Short: "Check nickname availability",
	Long:  "Check whether nicknames are valid, unreserved, and free in the profile store.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := runCheck(cmd, args)
		if err != nil {
			return err
		}
		if code != 0 {
			os.Exit(int(code))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkCurrent, "current", "", "caller's current nickname; a match is reported as already yours")
	checkCmd.Flags().StringVar(&checkFormat, "format", "table", "Output format: table, json, markdown")
	checkCmd.Flags().BoolVar(&checkNoCache, "no-cache", false, "Skip cache lookup")
}

func runCheck(cmd *cobra.Command, args []string) (foundry.ExitCode, error) {
	format, err := output.ParseFormat(checkFormat)
	if err != nil {
		return 0, err
	}

	cfg, err := loadConfig()
	if err != nil {
		return 0, err
	}

	ctx := cmd.Context()
	startedAt := time.Now()
	db, err := openStore(ctx, cfg)
	if err != nil {
		return 0, err
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup; errors logged internally

	pipe := buildPipeline(cfg, db, !checkNoCache, nil)

	results := make([]*core.CheckResult, 0, len(args))
	for _, arg := range args {
		result := pipe.Service.Check(ctx, arg, checkCurrent)
		metrics.RecordCheck(string(result.Status), result.Provenance.Source)
		metrics.RecordCheckDuration(result.Provenance.Source, result.Provenance.ResolvedAt.Sub(result.Provenance.RequestedAt))
		results = append(results, &result)
	}

	formatter := output.NewFormatter(format)
	rendered, err := formatter.FormatResults(results)
	if err != nil {
		return 0, err
	}
	if rendered != "" {
		fmt.Println(rendered)
	}

	if format != output.FormatJSON {
		logThroughput(len(results), startedAt)
	}
	return worstExitCode(results), nil
}

// pipeline bundles the service with the cache and limiter behind it so
// commands can reach the shared state for sweeps and snapshots.
type pipeline struct {
	Service *engine.Service
	Cache   *cache.Cache[core.CheckResult]
	Limiter *ratelimit.Limiter
}

func buildPipeline(cfg *config.Config, db *store.Store, useCache bool, logger *logging.Logger) *pipeline {
	limiter := ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	results := cache.New[core.CheckResult](cache.Config{
		TTL:     cfg.Cache.TTL,
		MaxSize: cfg.Cache.MaxSize,
	})

	var chain checker.Checker = &checker.StoreChecker{
		Store:   db,
		Timeout: cfg.Retry.Timeout,
		Retry: retry.Policy{
			MaxRetries:  cfg.Retry.MaxRetries,
			Delay:       cfg.Retry.Delay,
			Exponential: cfg.Retry.Exponential,
		},
		ToolVersion: versionInfo.Version,
	}
	if useCache {
		chain = &checker.CachingChecker{Next: chain, Cache: results}
	}
	chain = &checker.RateLimitedChecker{Next: chain, Limiter: limiter}

	service := &engine.Service{
		Checker:       chain,
		Store:         db,
		Cache:         results,
		ExtraReserved: cfg.Validator.ReservedExtra,
		ToolVersion:   versionInfo.Version,
		Logger:        logger,
	}

	return &pipeline{Service: service, Cache: results, Limiter: limiter}
}

// worstExitCode folds per-nickname outcomes into a process exit code.
// Infrastructure failures outrank everything; taken or invalid nicknames
// exit nonzero so scripts can branch on the answer.
func worstExitCode(results []*core.CheckResult) foundry.ExitCode {
	var code foundry.ExitCode
	for _, result := range results {
		if result == nil {
			continue
		}
		switch result.Status {
		case core.StatusError:
			if result.Provenance.Source != core.SourceValidation {
				return foundry.ExitExternalServiceUnavailable
			}
			code = foundry.ExitFailure
		case core.StatusUnavailable:
			if code == 0 {
				code = foundry.ExitFailure
			}
		}
	}
	return code
}

func logThroughput(count int, startedAt time.Time) {
	if count <= 0 {
		return
	}
	elapsed := time.Since(startedAt)
	if elapsed <= 0 {
		return
	}
	rate := float64(count) / elapsed.Seconds()
	observability.CLILogger.Info(
		"Check throughput",
		zap.Int("checks", count),
		zap.Duration("elapsed", elapsed),
		zap.Float64("rate_per_sec", rate),
	)
}
