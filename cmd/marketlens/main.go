package main

import (
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/marketlens/marketlens/internal/analyze"
	"github.com/marketlens/marketlens/internal/brief"
	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/data"
	"github.com/marketlens/marketlens/internal/persistence"
	"github.com/marketlens/marketlens/internal/persistence/postgres"
	"github.com/marketlens/marketlens/internal/portfolio"
	"github.com/marketlens/marketlens/internal/rank"
	"github.com/marketlens/marketlens/internal/scan"
)

const (
	appName = "marketlens"
	version = "v1.0.0"
)

var (
	flagSettings string
	flagVerbose  bool
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Technical-analysis engine for equities, ETFs, and crypto",
		Version: version,
		Long: `marketlens ingests OHLCV bars, computes a broad indicator set, detects
named signals, ranks them, and qualifies the picture into actionable
trade plans or machine-readable suppression reasons.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagVerbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&flagSettings, "settings", "", "Path to YAML settings file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newPlanCmd(),
		newCompareCmd(),
		newScreenCmd(),
		newScanCmd(),
		newPortfolioCmd(),
		newBriefCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles the composed operations for command runners.
type app struct {
	settings config.Settings
	analyzer *analyze.Analyzer
	scanner  *scan.Scanner
	assessor *portfolio.Assessor
	composer *brief.Composer
	closers  []func()
}

// newApp builds the full stack from settings: Yahoo provider wrapped in
// retry and cache layers, the analyzer with optional Redis store and
// remote ranker, and the fan-out operations on top.
func newApp() (*app, error) {
	settings, err := config.LoadSettings(flagSettings)
	if err != nil {
		return nil, err
	}

	var provider data.Provider = data.NewYahooProvider(log.Logger)
	provider = data.NewRetryProvider(provider, data.RetryConfig{
		MaxAttempts:    settings.Data.MaxRetries,
		BaseDelay:      settings.Data.RetryBaseDelay,
		RequestsPerSec: settings.Data.RequestsPerSec,
		Burst:          settings.Data.RequestBurst,
	})
	provider = data.NewCachedProvider(provider, data.CacheConfig{
		TTL:     settings.Data.CacheTTL,
		MaxSize: settings.Data.CacheSize,
	})

	a := &app{settings: settings}

	opts := []analyze.Option{
		analyze.WithResultCache(settings.Analysis.CacheSize, settings.Analysis.CacheTTL),
	}
	if settings.Ranker.Endpoint != "" {
		opts = append(opts, analyze.WithRemoteRanker(rank.RemoteConfig{
			Endpoint:      settings.Ranker.Endpoint,
			APIKey:        settings.Ranker.APIKey,
			Model:         settings.Ranker.Model,
			Timeout:       settings.Ranker.Timeout,
			MaxConcurrent: settings.Ranker.MaxConcurrent,
			MinCallDelay:  settings.Ranker.MinCallDelay,
		}))
	}
	if settings.Persistence.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr: settings.Persistence.RedisAddr,
			DB:   settings.Persistence.RedisDB,
		})
		a.closers = append(a.closers, func() { _ = client.Close() })
		opts = append(opts, analyze.WithStore(
			persistence.NewRedisStore(client, settings.Persistence.DocumentTTL)))
	}
	a.analyzer = analyze.New(provider, opts...)

	var history persistence.ScanHistoryRepo
	if settings.Persistence.PostgresDSN != "" {
		db, err := postgres.Open(settings.Persistence.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		history = postgres.NewScanRepo(db, 5*time.Second)
	}
	a.scanner = scan.NewScanner(a.analyzer, history)
	a.assessor = portfolio.NewAssessor(a.analyzer, settings.Scan.Workers)
	a.composer = brief.NewComposer(a.analyzer, settings.Scan.Workers)
	return a, nil
}

func (a *app) close() {
	for _, fn := range a.closers {
		fn()
	}
}
