package main

import (
	"os"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mkoziy/portfolio/internal/config"
	"github.com/mkoziy/portfolio/internal/logging"
	"github.com/mkoziy/portfolio/internal/portfolio"
	"github.com/mkoziy/portfolio/internal/sources/fmp"
	"github.com/mkoziy/portfolio/internal/syncer"
)

var (
	cfg    config.Config
	logger zerolog.Logger

	dbPathFlag   string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "portfolio syncs company financial statements and serves the dashboard API",
	Long: `portfolio keeps a local SQLite cache of income statements, cash-flow
statements and balance sheets pulled from Financial Modeling Prep, and serves
the data behind the portfolio dashboard as JSON.

Configuration is read from the environment (DB_PATH, FMP_API_KEY, SYNC_TOKEN,
SYNC_SCHEDULE, ...). Flags given on the command line take precedence.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		if dbPathFlag != "" {
			cfg.Database.Path = dbPathFlag
		}
		if logLevelFlag != "" {
			cfg.Log.Level = logLevelFlag
		}
		logger = logging.New(cfg.Log)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "SQLite database path (overrides DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd, syncCmd, ingestCmd, initDBCmd, financialsCmd, quotesCmd, logsCmd, forgetCmd)
}

func loadHoldings() (portfolio.Holdings, error) {
	if cfg.Portfolio.HoldingsFile == "" {
		return portfolio.Default(), nil
	}
	return portfolio.Load(cfg.Portfolio.HoldingsFile)
}

func newSyncService() (*syncer.Service, *fmp.Client, error) {
	client, err := fmp.New(cfg.MarketData, logger)
	if err != nil {
		return nil, nil, err
	}
	holdings, err := loadHoldings()
	if err != nil {
		return nil, nil, err
	}
	svc := syncer.NewService(cfg, fmp.NewFetcher(client, logger), holdings.Symbols(), logger)
	return svc, client, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
