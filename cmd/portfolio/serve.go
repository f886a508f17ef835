package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/mkoziy/portfolio/internal/database"
	"github.com/mkoziy/portfolio/internal/overview"
	"github.com/mkoziy/portfolio/internal/scheduler"
	"github.com/mkoziy/portfolio/internal/server"
	"github.com/mkoziy/portfolio/internal/syncer"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API and the admin sync trigger",
	Long: `serve starts the HTTP server. When SYNC_SCHEDULE is set the statement
sync also runs on that cron schedule, e.g. "0 */6 * * *" or "@every 6h".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.Log.Level != "debug" && cfg.Log.Level != "trace" {
			gin.SetMode(gin.ReleaseMode)
		}

		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		svc, client, err := newSyncService()
		if err != nil {
			return err
		}
		holdings, err := loadHoldings()
		if err != nil {
			return err
		}
		if !client.HasAPIKey() {
			logger.Warn().Msg("FMP_API_KEY is not set, live data is disabled")
		}

		srv := server.New(cfg.Server, logger,
			&server.HealthHandler{DB: db},
			&server.SyncHandler{Token: cfg.Sync.Token, Syncer: svc, Logger: logger},
			&server.MarketHandler{Quotes: client, Logger: logger},
			&server.DashboardHandler{
				Overview: overview.NewService(cfg, db, client, holdings, logger),
				DB:       db,
				Logger:   logger,
			},
		)

		if cfg.Sync.Schedule != "" {
			runner := scheduler.New(logger, ctx)
			_, err := runner.ScheduleSync(cfg.Sync.Schedule, func(ctx context.Context) error {
				_, err := svc.Run(ctx, nil, syncer.Options{})
				return err
			})
			if err != nil {
				return err
			}
			runner.Start()
			defer runner.Stop()
		}

		return srv.Run(ctx)
	},
}
