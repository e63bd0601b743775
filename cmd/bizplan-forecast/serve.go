package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/bizplan-forecast/internal/server"
	"github.com/iwvelando/bizplan-forecast/internal/store"
	"github.com/iwvelando/bizplan-forecast/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type serveOptions struct {
	configPath    string
	address       string
	maxUploadSize string
	logLevel      string
}

var serveOpts serveOptions

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve projections over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd, serveOpts)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveOpts.configPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	serveCmd.Flags().StringVar(&serveOpts.address, "address", "", "listen address override")
	serveCmd.Flags().StringVar(&serveOpts.maxUploadSize, "max-upload-size", "", "upload limit override, e.g. 512K or 2M")
	serveCmd.Flags().StringVar(&serveOpts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
}

// loadServerConfig reads the server configuration and applies the CLI overrides.
func loadServerConfig(opts serveOptions) (*server.Config, error) {
	cfg, err := server.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.address != "" {
		cfg.Address = opts.address
	}
	if opts.maxUploadSize != "" {
		size, err := server.ParseSize(opts.maxUploadSize)
		if err != nil {
			return nil, err
		}
		cfg.SetUploadSizeBytes(size)
	}
	return cfg, nil
}

func serve(cmd *cobra.Command, opts serveOptions) error {
	cfg, err := loadServerConfig(opts)
	if err != nil {
		return err
	}

	logger, err := initializeLogger(cfg.Logging, opts.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	handlerOpts := []server.Option{server.WithWorkers(cfg.Workers)}
	if cfg.Database.Persist {
		repo, err := store.Open(cmd.Context(), logger, cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() {
			_ = repo.Close()
		}()
		handlerOpts = append(handlerOpts, server.WithStore(repo))
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           server.NewHandler(logger, cfg.UploadSizeBytes(), version, handlerOpts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Info("server started",
		zap.String("op", "main.serve"),
		zap.String("address", cfg.Address),
		zap.String("maxUploadSize", cfg.MaxUploadSize),
		zap.Bool("persist", cfg.Database.Persist),
	)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server", zap.String("op", "main.serve"))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
