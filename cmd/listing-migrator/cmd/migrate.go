package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/rgoodwin/ebay-listing-migrator/internal/config"
	"github.com/rgoodwin/ebay-listing-migrator/internal/ebay"
	"github.com/rgoodwin/ebay-listing-migrator/internal/migrate"
)

func migrateCmd() *cobra.Command {
	migrateRoot := &cobra.Command{
		Use:   "migrate",
		Short: "Copy production listings into the sandbox",
	}

	migrateRoot.AddCommand(migrateRunCmd())

	return migrateRoot
}

func migrateRunCmd() *cobra.Command {
	var (
		pageSize int
		delay    time.Duration
		schedule time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a migration pass",
		Long: "Copy the first page of active production listings into the sandbox.\n" +
			"Listings are recreated one at a time with sandbox policies; a failed\n" +
			"listing is reported and the run continues with the next one.\n\n" +
			"With --schedule the command stays resident, repeats the migration on\n" +
			"the given interval, and serves /healthz and /metrics while running.",
		Example: `  # One migration pass
  listing-migrator migrate run

  # Larger batch, faster pacing
  listing-migrator migrate run --page-size 50 --delay 250ms

  # Repeat every 6 hours until interrupted
  listing-migrator migrate run --schedule 6h`,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			if c.Flags().Changed("page-size") {
				cfg.Migration.PageSize = pageSize
			}
			if c.Flags().Changed("delay") {
				cfg.Migration.InterItemDelay = delay
			}
			if c.Flags().Changed("schedule") {
				cfg.Migration.Schedule = schedule
			}

			source := buildStack(cfg, ebay.Production)
			target := buildStack(cfg, ebay.Sandbox)

			migrator := migrate.NewMigrator(source, target,
				migrate.WithPageSize(cfg.Migration.PageSize),
				migrate.WithInterItemDelay(cfg.Migration.InterItemDelay),
				migrate.WithNotifier(newNotifier(cfg, logger)),
				migrate.WithLogger(logger),
			)

			if cfg.Migration.Schedule > 0 {
				return runScheduled(cfg, migrator, logger)
			}

			outcome, err := migrator.Run(c.Context())
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(outcome)
			}
			return printOutcome(outcome)
		},
	}

	cmd.Flags().IntVar(&pageSize, "page-size", 0, "listings per migration pass")
	cmd.Flags().DurationVar(&delay, "delay", 0, "pause between listings")
	cmd.Flags().DurationVar(&schedule, "schedule", 0, "repeat interval (0 runs once)")

	return cmd
}

// runScheduled keeps the process resident: migrations repeat on the cron
// interval and a small HTTP surface exposes health and metrics until the
// process is interrupted.
func runScheduled(cfg *config.Config, migrator *migrate.Migrator, logger *log.Logger) error {
	scheduler, err := migrate.NewScheduler(migrator, cfg.Migration.Schedule, logger)
	if err != nil {
		return fmt.Errorf("building scheduler: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	logger.Info("starting scheduled migration",
		"interval", cfg.Migration.Schedule,
		"addr", cfg.Metrics.Addr,
	)

	go func() {
		if err := e.Start(cfg.Metrics.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
		}
	}()

	scheduler.Start()

	// Wait for interrupt signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Let an in-flight migration finish before exiting.
	<-scheduler.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	logger.Info("stopped")
	return nil
}
