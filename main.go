package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/faizan/spotify-tracks/auth"
	"github.com/faizan/spotify-tracks/catalog"
	"github.com/faizan/spotify-tracks/config"
	"github.com/faizan/spotify-tracks/handlers"
	"github.com/faizan/spotify-tracks/logging"
	"github.com/faizan/spotify-tracks/store"
	"github.com/faizan/spotify-tracks/tracks"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"
)

//go:generate swag init -g main.go -o docs

// @title Spotify Tracks API
// @version 1.0
// @description Stores Spotify track metadata looked up by ISRC behind JWT-protected routes.
// @BasePath /
// @securityDefinitions.apikey bearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token returned by /login.
func main() {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to an optional TOML configuration file",
		Sources: cli.EnvVars("CONFIG_FILE"),
	}

	app := &cli.Command{
		Name:   "spotify-tracks",
		Usage:  "Store Spotify track metadata by ISRC behind a JWT-protected API",
		Flags:  []cli.Flag{configFlag},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Create or update the database tables and exit",
				Action: migrate,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		logrus.Fatalf("application error: %v", err)
	}
}

func setup(cmd *cli.Command) (*config.Config, *logrus.Logger, *gorm.DB, error) {
	// .env has to be read before the config, so its outcome is logged once
	// the logger exists.
	envErr := godotenv.Load()

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	switch {
	case errors.Is(envErr, fs.ErrNotExist):
		logger.Info("No .env file found, using environment variables")
	case envErr != nil:
		logger.WithError(envErr).Warn("failed to read .env file")
	}

	db, err := config.OpenDB(cfg.Database, logging.NewGormLogger(logger))
	if err != nil {
		return nil, nil, nil, err
	}
	if err := config.Migrate(db); err != nil {
		return nil, nil, nil, err
	}
	logger.WithField("driver", cfg.Database.Driver).Info("database ready")

	return cfg, logger, db, nil
}

func migrate(ctx context.Context, cmd *cli.Command) error {
	_, _, db, err := setup(cmd)
	if err != nil {
		return err
	}
	return store.New(db).Close()
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, db, err := setup(cmd)
	if err != nil {
		return err
	}

	st := store.New(db)
	defer st.Close()

	cat := catalog.New(catalog.Options{
		ClientID:     cfg.Catalog.ClientID,
		ClientSecret: cfg.Catalog.ClientSecret,
		TokenURL:     cfg.Catalog.TokenURL,
		RateLimit:    cfg.Catalog.RateLimit,
		Logger:       logger,
	})

	authSvc := auth.NewService(st, auth.NewTokens(cfg.Auth.JWTSecret))
	trackSvc := tracks.NewService(cat, st)

	if !logger.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.SetupRouter(handlers.New(authSvc, trackSvc, logger))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Server is running on port %d", cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
