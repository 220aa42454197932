package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/prescripto/prescripto-api/internal/config"
	dbpkg "github.com/prescripto/prescripto-api/internal/db"
	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	infraRepo "github.com/prescripto/prescripto-api/internal/infra/repository"
	"github.com/prescripto/prescripto-api/internal/logger"
	"github.com/prescripto/prescripto-api/internal/routes"
	"github.com/prescripto/prescripto-api/internal/usecase/reminder"
	"github.com/prescripto/prescripto-api/internal/validators"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}

			if err := validators.Register(); err != nil {
				return fmt.Errorf("register validators: %w", err)
			}

			svc, err := newApp(cfg, log)
			if err != nil {
				return err
			}
			defer svc.Close()

			if cfg.LogLevel != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}
			r := gin.New()
			r.Use(gin.Recovery())
			routes.RegisterRoutes(r, svc.Deps)

			srv := &http.Server{
				Addr:              cfg.Addr(),
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.WithField("addr", cfg.Addr()).Info("server running")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}

			db, err := dbpkg.NewDB(cfg)
			if err != nil {
				return err
			}
			if err := dbpkg.Migrate(db); err != nil {
				return err
			}

			log.Info("migrations applied")
			return nil
		},
	}
}

func remindersCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Send reminders for the scheduled appointments of a day (default tomorrow)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}

			svc, err := newApp(cfg, log)
			if err != nil {
				return err
			}
			// drains the notification queue before exit
			defer svc.Close()

			uc := reminder.NewSendReminders(
				infraRepo.NewReminderGormRepository(svc.DB),
				svc.notifier,
				log,
				svc.Location,
			)

			target := uc.Tomorrow()
			if date != "" {
				if target, err = calendar.ParseDate(date); err != nil {
					return fmt.Errorf("--date: %w", err)
				}
			}

			sent, err := uc.Execute(cmd.Context(), target)
			if err != nil {
				return err
			}

			log.WithField("date", target.String()).WithField("sent", sent).Info("reminders queued")
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day to remind, YYYY-MM-DD")
	return cmd
}

func cleanupCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete notification and reminder logs older than --days",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}

			db, err := dbpkg.NewDB(cfg)
			if err != nil {
				return err
			}

			removed, err := reminder.NewCleanup(infraRepo.NewReminderGormRepository(db)).
				Execute(cmd.Context(), days)
			if err != nil {
				return err
			}

			log.WithField("days", days).WithField("removed", removed).Info("logs cleaned up")
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 90, "retention in days")
	return cmd
}

func bootstrap() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg.LogLevel), nil
}
