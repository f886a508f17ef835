package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkoziy/portfolio/internal/database"
	"github.com/mkoziy/portfolio/internal/repositories"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the database file and schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		logger.Info().Str("path", cfg.Database.Path).Msg("database ready")
		return nil
	},
}

var logsLimit int
var logsBatch string

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent sync runs, or the per-symbol audit of one run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		if logsBatch != "" {
			rows, err := repositories.GetSyncLogSymbols(cmd.Context(), db, logsBatch)
			if err != nil {
				return err
			}
			return printJSON(rows)
		}
		logs, err := repositories.GetSyncLogs(cmd.Context(), db, logsLimit)
		if err != nil {
			return err
		}
		return printJSON(logs)
	},
}

var forgetCmd = &cobra.Command{
	Use:   "forget SYMBOL",
	Short: "Delete a company and all of its stored statements",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		symbol := strings.ToUpper(args[0])
		if err := repositories.DeleteCompany(cmd.Context(), db, symbol); err != nil {
			if errors.Is(err, repositories.ErrCompanyNotFound) {
				return fmt.Errorf("%s: %w", symbol, err)
			}
			return err
		}
		logger.Info().Str("symbol", symbol).Msg("company deleted")
		return nil
	},
}

func init() {
	logsCmd.Flags().IntVar(&logsLimit, "limit", repositories.DefaultSyncLogLimit, "number of runs to show")
	logsCmd.Flags().StringVar(&logsBatch, "batch", "", "show the per-symbol rows of this batch id")
}
