package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gamescout/backend/internal/catalog"
	"github.com/gamescout/backend/internal/config"
	"github.com/gamescout/backend/internal/database"
	"github.com/gamescout/backend/internal/favorites"
	"github.com/gamescout/backend/internal/logging"
	"github.com/gamescout/backend/internal/recommend"
	"github.com/gamescout/backend/internal/server"
	"github.com/gamescout/backend/internal/trending"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gamescout-api",
		Short: "GameScout game discovery backend service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("igdb-client-id", "", "Metadata catalog client id (overrides env)")
	cmd.PersistentFlags().String("igdb-access-token", "", "Metadata catalog access token (overrides env)")
	cmd.PersistentFlags().String("rawg-api-key", "", "Ranking catalog API key (overrides env)")
	cmd.PersistentFlags().String("openai-api-key", "", "Completion service API key (overrides env)")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "igdb.client_id", "igdb-client-id")
	bindFlag(cmd, "igdb.access_token", "igdb-access-token")
	bindFlag(cmd, "rawg.api_key", "rawg-api-key")
	bindFlag(cmd, "openai.api_key", "openai-api-key")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	// Development secrets commonly live in a .env next to the binary.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	httpClient := &http.Client{Timeout: 15 * time.Second}

	catalogClient, err := catalog.NewClient(catalog.Config{
		BaseURL:     appConfig.CatalogBaseURL,
		ClientID:    appConfig.CatalogClientID,
		AccessToken: appConfig.CatalogAccessToken,
		HTTPClient:  httpClient,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	trendingClient, err := trending.NewClient(trending.Config{
		BaseURL:    appConfig.RankingBaseURL,
		APIKey:     appConfig.RankingAPIKey,
		HTTPClient: httpClient,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	generator := recommend.NewGenerator(recommend.Config{
		BaseURL:    appConfig.CompletionBaseURL,
		APIKey:     appConfig.CompletionAPIKey,
		Model:      appConfig.CompletionModel,
		HTTPClient: httpClient,
		Logger:     logger,
	})

	favoritesService, err := favorites.NewService(favorites.ServiceConfig{
		Database:   db,
		Clock:      time.Now,
		IDProvider: favorites.NewUUIDProvider(),
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Catalog:   catalogClient,
		Trending:  trendingClient,
		Generator: generator,
		Favorites: favoritesService,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
