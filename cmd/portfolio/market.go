package main

import (
	"github.com/spf13/cobra"

	"github.com/mkoziy/portfolio/internal/database"
	"github.com/mkoziy/portfolio/internal/overview"
	"github.com/mkoziy/portfolio/internal/sources/fmp"
)

var financialsCmd = &cobra.Command{
	Use:   "financials",
	Short: "Print the financial overview for the base and compare symbols",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		client, err := fmp.New(cfg.MarketData, logger)
		if err != nil {
			return err
		}
		holdings, err := loadHoldings()
		if err != nil {
			return err
		}
		out, err := overview.NewService(cfg, db, client, holdings, logger).Financial(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(out)
	},
}

var quotesCmd = &cobra.Command{
	Use:   "quotes [SYMBOL...]",
	Short: "Print live quotes for the given symbols, or for every holding",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := fmp.New(cfg.MarketData, logger)
		if err != nil {
			return err
		}
		symbols := args
		if len(symbols) == 0 {
			holdings, err := loadHoldings()
			if err != nil {
				return err
			}
			symbols = holdings.Symbols()
		}
		res, err := client.Quotes(cmd.Context(), symbols)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}
