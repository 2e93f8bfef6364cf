// Command notifier sends inactivity reminder emails to students.
//
// Usage:
//
//	notifier serve            scheduler, ops HTTP API and optional Telegram admin bot
//	notifier run-once         one synchronous inactivity check, report on stdout
//	notifier validate-config  load and check configuration, then exit
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"inactivity_notifier/internal/app"
	"inactivity_notifier/internal/domain/notification"
	"inactivity_notifier/internal/infra/config"
	idb "inactivity_notifier/internal/infra/database"
	"inactivity_notifier/internal/infra/email"
	"inactivity_notifier/internal/infra/httpapi"
	"inactivity_notifier/internal/infra/logger"
	"inactivity_notifier/internal/infra/redisdb"
	"inactivity_notifier/internal/infra/scheduler"
	"inactivity_notifier/internal/infra/telegram"
	"inactivity_notifier/internal/infra/templates"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/telebot.v3"
)

const shutdownTimeout = 30 * time.Second

func main() {
	root := &cobra.Command{
		Use:           "notifier",
		Short:         "Skill Up Academy inactivity reminder service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(runOnceCmd())
	root.AddCommand(validateConfigCmd())

	if err := root.Execute(); err != nil {
		logger.Log.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load application configuration: %w", err)
	}
	logger.Init(cfg)
	return cfg, nil
}

// components are built once here and passed in; nothing below reaches for globals.
type components struct {
	db       *sql.DB
	redis    *redis.Client
	campaign *app.InactivityCampaign
}

func (c *components) Close() {
	if c.redis != nil {
		_ = c.redis.Close()
	}
	if c.db != nil {
		_ = c.db.Close()
	}
}

func build(cfg *config.AppConfig) (*components, error) {
	log := logger.Get()
	c := &components{}

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	c.db = db
	log.Info("Database connection established successfully.")

	activityRepo := idb.NewPostgresActivityRepository(db, cfg.ActivityPageSize, logger.Component("activity_repository"))

	var logRepo notification.LogRepository
	switch cfg.NotificationLogBackend {
	case config.LogBackendRedis:
		c.redis = redisdb.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := c.redis.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("could not connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		retention := redisdb.DefaultRetention
		if retention < 2*cfg.DedupWindow {
			retention = 2 * cfg.DedupWindow
		}
		logRepo = redisdb.NewNotificationLog(c.redis, retention)
	default:
		logRepo = idb.NewPostgresNotificationRepository(db)
	}
	log.WithField("backend", cfg.NotificationLogBackend).Info("Notification log initialized.")

	renderer, err := templates.NewRenderer(cfg.FrontendURL)
	if err != nil {
		c.Close()
		return nil, err
	}
	dispatcher, err := email.NewDispatcher(cfg, logger.Component("email"))
	if err != nil {
		c.Close()
		return nil, err
	}
	log.WithField("provider", cfg.EmailProvider).Info("Email dispatcher initialized.")

	c.campaign = app.NewInactivityCampaign(
		activityRepo,
		logRepo,
		app.NewDedupGuard(logRepo, cfg.DedupWindow),
		renderer,
		dispatcher,
		cfg.Thresholds,
		app.CampaignOptions{ListTimeout: cfg.ListTimeout, CallTimeout: cfg.CollaboratorTimeout},
		logger.Component("app"),
	)
	return c, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler, the ops HTTP API and the Telegram admin bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := logger.Get()
			log.WithFields(logrus.Fields{
				"environment": cfg.Environment,
				"log_level":   cfg.LogLevel,
			}).Info("Inactivity notifier starting...")

			c, err := build(cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sched := scheduler.NewInactivityScheduler(c.campaign, cfg.CronSpecInactivity, cfg.Location, logger.Component("scheduler"))

			var bot *telebot.Bot
			if cfg.TelegramToken != "" {
				b, err := telegram.NewBot(cfg.TelegramToken, logger.Component("telebot"))
				if err != nil {
					return fmt.Errorf("could not create Telegram bot: %w", err)
				}
				adminService := app.NewAdminService(sched, cfg.AdminTelegramID)
				botLogger := logger.Component("telegram")
				telegram.RegisterBotCommands(b, adminService, botLogger)
				telegram.RegisterAdminHandlers(ctx, b, telegram.NewAdminHandlers(adminService, cfg.Location, 0, botLogger))
				sched.Subscribe(telegram.NewCycleReporter(telegram.NewTelebotAdapter(b), cfg.AdminTelegramID, botLogger).Observe)
				bot = b
				log.Info("Telegram admin bot handlers registered.")
			}

			if err := sched.Start(); err != nil {
				return fmt.Errorf("could not start scheduler: %w", err)
			}

			srv := &http.Server{
				Addr: cfg.HTTPAddr,
				Handler: httpapi.NewRouter(sched, httpapi.RouterConfig{
					AllowedOrigins: cfg.CORSAllowOrigins,
					AdminToken:     cfg.AdminAPIToken,
				}, logger.Component("http")),
				ReadHeaderTimeout: 10 * time.Second,
			}
			srvErr := make(chan error, 1)
			go func() {
				log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					srvErr <- err
				}
			}()

			if bot != nil {
				go bot.Start()
			}

			log.Info("Application setup complete. Waiting for signals...")
			var runErr error
			select {
			case <-ctx.Done():
			case runErr = <-srvErr:
				log.WithError(runErr).Error("HTTP server failed")
			}

			log.Info("Shutting down application...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if bot != nil {
				bot.Stop()
			}
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.WithError(err).Warn("HTTP server shutdown incomplete")
			}
			if err := sched.Stop(shutdownCtx); err != nil {
				log.WithError(err).Warn("Scheduler stopped before the running cycle finished")
			}
			log.Info("Application shut down gracefully.")
			return runErr
		},
	}
}

func runOnceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run-once",
		Short: "Run one inactivity check now and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			c, err := build(cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			report, err := c.campaign.RunCycle(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
}

func validateConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-config",
		Short: "Check configuration and templates without connecting to anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			renderer, err := templates.NewRenderer(cfg.FrontendURL)
			if err != nil {
				return err
			}
			for _, t := range cfg.Thresholds.Thresholds() {
				if _, err := renderer.Render(t.TemplateID, notification.Variables{Name: "Student", DaysInactive: t.Days}); err != nil {
					return fmt.Errorf("template %s: %w", t.TemplateID, err)
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "cron:        %s (%s)\n", cfg.CronSpecInactivity, cfg.Location)
			fmt.Fprintf(out, "thresholds:  %s days\n", cfg.Thresholds)
			fmt.Fprintf(out, "dedup:       %s\n", cfg.DedupWindow)
			fmt.Fprintf(out, "email:       %s from %q at %.2f/s\n", cfg.EmailProvider, cfg.EmailFrom, cfg.EmailRatePerSecond)
			fmt.Fprintf(out, "log backend: %s\n", cfg.NotificationLogBackend)
			fmt.Fprintf(out, "http:        %s\n", cfg.HTTPAddr)
			fmt.Fprintf(out, "telegram:    %t\n", cfg.TelegramToken != "")
			fmt.Fprintln(out, "configuration OK")
			return nil
		},
	}
}
