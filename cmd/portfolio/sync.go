package main

import (
	"github.com/spf13/cobra"

	"github.com/mkoziy/portfolio/internal/syncer"
)

var syncCmd = &cobra.Command{
	Use:   "sync [SYMBOL...]",
	Short: "Sync statements for the given symbols, or for every holding",
	Long: `sync fetches income, cash-flow and balance-sheet statements and upserts
them into the local database. Statement types the upstream API refuses are
stored as empty and recorded in the per-symbol audit; any other error stops
the run. Every run writes one sync log row.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := newSyncService()
		if err != nil {
			return err
		}
		res, err := svc.Run(cmd.Context(), args, syncer.Options{})
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [SYMBOL...]",
	Short: "Sync statements, failing on any refused upstream request",
	Long: `ingest is sync for unattended use: it refuses to start without
FMP_API_KEY and treats a refused upstream request as an error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.MarketData.RequireAPIKey(); err != nil {
			return err
		}
		svc, _, err := newSyncService()
		if err != nil {
			return err
		}
		res, err := svc.Run(cmd.Context(), args, syncer.Options{Strict: true})
		if err != nil {
			return err
		}
		for _, symbol := range res.Symbols {
			counts := res.Results[symbol]
			logger.Info().
				Str("symbol", symbol).
				Int("income", counts.Income).
				Int("cash", counts.Cash).
				Int("balance", counts.Balance).
				Msg("ingested")
		}
		return nil
	},
}
