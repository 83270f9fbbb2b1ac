package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/marketlens/marketlens/internal/analyze"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/httpapi"
	"github.com/marketlens/marketlens/internal/portfolio"
	"github.com/marketlens/marketlens/internal/scan"
)

// coreFlags are the flags shared by the per-symbol commands.
type coreFlags struct {
	period    string
	profile   string
	overrides []string
	useAI     bool
}

func (f *coreFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.period, "period", "1y", "Bar history period (15m..max)")
	cmd.Flags().StringVar(&f.profile, "profile", "neutral", "Risk profile (averse|neutral|risky)")
	cmd.Flags().StringSliceVar(&f.overrides, "set", nil, "Config override key=value, repeatable")
	cmd.Flags().BoolVar(&f.useAI, "ai", false, "Use the remote LLM ranker")
}

func (f *coreFlags) request(symbol string) (analyze.Request, error) {
	overrides, err := parseOverrides(f.overrides)
	if err != nil {
		return analyze.Request{}, err
	}
	return analyze.Request{
		Symbol:    symbol,
		Period:    domain.Period(f.period),
		Profile:   f.profile,
		Overrides: overrides,
		UseAI:     f.useAI,
	}, nil
}

func parseOverrides(pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	overrides := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("override %q is not key=value", pair)
		}
		var num float64
		if _, err := fmt.Sscanf(value, "%g", &num); err != nil {
			return nil, fmt.Errorf("override %q: value is not numeric", pair)
		}
		overrides[strings.TrimSpace(key)] = num
	}
	return overrides, nil
}

// printJSON writes the result to stdout; stderr carries the logs.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newAnalyzeCmd() *cobra.Command {
	var flags coreFlags
	cmd := &cobra.Command{
		Use:   "analyze SYMBOL",
		Short: "Run the full analysis pipeline for one symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.close()
			req, err := flags.request(args[0])
			if err != nil {
				return err
			}
			analysis, err := app.analyzer.Analyze(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(analysis)
		},
	}
	flags.register(cmd)
	return cmd
}

func newPlanCmd() *cobra.Command {
	var flags coreFlags
	var timeframe string
	cmd := &cobra.Command{
		Use:   "plan SYMBOL",
		Short: "Qualify a symbol into trade plans or suppression reasons",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.close()
			req, err := flags.request(args[0])
			if err != nil {
				return err
			}
			req.TimeframeHint = domain.Timeframe(timeframe)
			assessment, err := app.analyzer.Plan(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(assessment)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&timeframe, "timeframe", "", "Timeframe hint (swing|day|scalp)")
	return cmd
}

func newCompareCmd() *cobra.Command {
	var flags coreFlags
	var metric string
	cmd := &cobra.Command{
		Use:   "compare SYMBOL SYMBOL...",
		Short: "Rank symbols against each other on one metric",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.close()
			result, err := app.scanner.Compare(cmd.Context(), args, metric, scan.Options{
				Period:  domain.Period(flags.period),
				Profile: flags.profile,
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&metric, "metric", "score",
		"Comparison metric ("+strings.Join(scan.CompareMetricNames(), "|")+")")
	return cmd
}

func newScreenCmd() *cobra.Command {
	var flags coreFlags
	var universe string
	var criteria scan.Criteria
	cmd := &cobra.Command{
		Use:   "screen [SYMBOL...]",
		Short: "Filter a universe or symbol list by boolean criteria",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.close()
			result, err := app.scanner.Screen(cmd.Context(), universe, args, criteria, scan.Options{
				Period:  domain.Period(flags.period),
				Profile: flags.profile,
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&universe, "universe", "",
		"Universe name ("+strings.Join(scan.UniverseNames(), "|")+")")
	cmd.Flags().Float64Var(&criteria.RSIMin, "rsi-min", 0, "Minimum RSI")
	cmd.Flags().Float64Var(&criteria.RSIMax, "rsi-max", 0, "Maximum RSI")
	cmd.Flags().IntVar(&criteria.MinBullish, "min-bullish", 0, "Minimum bullish signal count")
	cmd.Flags().IntVar(&criteria.MaxBearish, "max-bearish", 0, "Maximum bearish signal count")
	cmd.Flags().Float64Var(&criteria.MinScore, "min-score", 0, "Minimum top signal score")
	cmd.Flags().BoolVar(&criteria.AboveSMA50, "above-sma50", false, "Require price above the 50-day SMA")
	return cmd
}

func newScanCmd() *cobra.Command {
	var flags coreFlags
	var maxResults int
	cmd := &cobra.Command{
		Use:   "scan UNIVERSE",
		Short: "Scan a universe for qualified trade setups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.close()
			overrides, err := parseOverrides(flags.overrides)
			if err != nil {
				return err
			}
			result, err := app.scanner.ScanUniverse(cmd.Context(), scan.Options{
				Universe:      args[0],
				MaxResults:    maxResults,
				Period:        domain.Period(flags.period),
				Profile:       flags.profile,
				Overrides:     overrides,
				UseAI:         flags.useAI,
				Workers:       app.settings.Scan.Workers,
				SymbolTimeout: app.settings.Scan.PerSymbolTimeout,
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&maxResults, "max-results", 10, "Maximum qualified trades returned")
	return cmd
}

func newPortfolioCmd() *cobra.Command {
	var flags coreFlags
	var positionsArg []string
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Aggregate portfolio risk by sector",
		Long: `Assess portfolio risk from positions given as SYMBOL:SHARES pairs,
for example: marketlens portfolio --position AAPL:10 --position XOM:5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			positions, err := parsePositions(positionsArg)
			if err != nil {
				return err
			}
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.close()
			report, err := app.assessor.Assess(cmd.Context(), positions,
				domain.Period(flags.period), flags.profile)
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringSliceVar(&positionsArg, "position", nil, "Position as SYMBOL:SHARES, repeatable")
	_ = cmd.MarkFlagRequired("position")
	return cmd
}

func parsePositions(pairs []string) ([]portfolio.Position, error) {
	positions := make([]portfolio.Position, 0, len(pairs))
	for _, pair := range pairs {
		symbol, sharesStr, found := strings.Cut(pair, ":")
		if !found {
			return nil, fmt.Errorf("position %q is not SYMBOL:SHARES", pair)
		}
		var shares float64
		if _, err := fmt.Sscanf(sharesStr, "%g", &shares); err != nil || shares <= 0 {
			return nil, fmt.Errorf("position %q: share count must be a positive number", pair)
		}
		positions = append(positions, portfolio.Position{
			Symbol: strings.ToUpper(strings.TrimSpace(symbol)),
			Shares: shares,
		})
	}
	return positions, nil
}

func newBriefCmd() *cobra.Command {
	var flags coreFlags
	var watchlist []string
	var region string
	cmd := &cobra.Command{
		Use:   "brief",
		Short: "Compose the morning brief for a watchlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.close()
			result, err := app.composer.Compose(cmd.Context(), watchlist, region,
				domain.Period(flags.period), flags.profile)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringSliceVar(&watchlist, "watchlist", nil, "Symbols to cover, default built-in list")
	cmd.Flags().StringVar(&region, "region", "us", "Market region (us|europe|asia|crypto)")
	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API with health and metrics endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.close()

			server := httpapi.NewServer(httpapi.Config{
				Addr:           app.settings.Server.Addr,
				RequestTimeout: app.settings.Server.RequestTimeout,
			}, app.analyzer, app.scanner, app.assessor, app.composer)

			errCh := make(chan error, 1)
			go func() { errCh <- server.ListenAndServe() }()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				log.Info().Str("signal", sig.String()).Msg("shutting down")
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(ctx)
			}
		},
	}
	return cmd
}
