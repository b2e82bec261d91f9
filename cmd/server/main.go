package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"threadline/internal/config"
	"threadline/internal/db"
	"threadline/internal/logger"
	"threadline/internal/router"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
)

func main() {
	app := &cli.App{
		Name:  "threadline",
		Usage: "discussion forum API server",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or update the database schema and exit",
				Action: migrate,
			},
			{
				Name:  "create-admin",
				Usage: "create the admin account if it does not exist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "password",
						Usage:   "admin password",
						EnvVars: []string{"ADMIN_PASSWORD"},
					},
				},
				Action: createAdmin,
			},
		},
		Action: serve,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (*config.Config, *zap.Logger) {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.IsDev())
	return cfg, log
}

func serve(c *cli.Context) error {
	cfg, log := setup()
	defer func() { _ = log.Sync() }()

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := db.Init(cfg.DatabaseURL, cfg.AdminPassword, log)
	if err != nil {
		return err
	}

	r, err := router.New(cfg, conn, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Threadline server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
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

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func migrate(c *cli.Context) error {
	cfg, log := setup()
	defer func() { _ = log.Sync() }()

	conn, err := db.Open(postgres.Open(cfg.DatabaseURL), log)
	if err != nil {
		return err
	}
	if err := db.Migrate(conn); err != nil {
		return err
	}
	log.Info("Database migration completed")
	return nil
}

func createAdmin(c *cli.Context) error {
	cfg, log := setup()
	defer func() { _ = log.Sync() }()

	password := c.String("password")
	if password == "" {
		return errors.New("an admin password is required (--password or ADMIN_PASSWORD)")
	}

	conn, err := db.Open(postgres.Open(cfg.DatabaseURL), log)
	if err != nil {
		return err
	}
	if err := db.Migrate(conn); err != nil {
		return err
	}
	return db.SeedAdmin(conn, password, log)
}
