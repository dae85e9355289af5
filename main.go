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

	"ruzznotes/config"
	"ruzznotes/internal/note/query"
	"ruzznotes/internal/note/repository"
	"ruzznotes/internal/note/service"
	"ruzznotes/pkg/logger"
	"ruzznotes/router"
	"ruzznotes/socket"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var (
	cfg       config.Config
	dotenvErr error
)

var rootCmd = &cobra.Command{
	Use:   "ruzznotes",
	Short: "In-memory note board with a JSON and websocket API",
	Long: `ruzznotes keeps a list of notes in memory and serves a filtered,
sorted view of it to a browser UI. Nothing is written to disk.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(cfg.LogLevel)
		logDotenv(dotenvErr)
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and websocket server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	// Flags default to the environment so either can configure the server.
	cfg, dotenvErr = config.Load()

	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "Address to listen on")
	serveCmd.Flags().StringVar(&cfg.Locale, "locale", cfg.Locale, "BCP 47 locale used to sort subjects")
	serveCmd.Flags().StringVar(&cfg.AllowedOrigin, "allowed-origin", cfg.AllowedOrigin, "CORS origin allowed to call the API")
	serveCmd.Flags().StringVar(&cfg.SeedFile, "seed", cfg.SeedFile, "YAML file with notes to create at startup")

	rootCmd.AddCommand(serveCmd)
}

func logDotenv(err error) {
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		logger.Sugar.Info("No .env file found, using environment variables from OS")
	default:
		logger.Sugar.Warnf("Ignoring .env file: %v", err)
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	defer logger.Sync()

	repo := repository.NewNoteRepository()
	engine := query.NewEngine(query.ParseLocale(cfg.Locale))
	svc := service.NewNoteService(repo, engine)

	// The hub pulls snapshots from the service and the service publishes through the hub.
	hub := socket.NewHub(svc.Snapshot, svc.HandleQuery)
	svc.SetPublisher(hub)

	if cfg.SeedFile != "" {
		entries, err := config.LoadSeed(cfg.SeedFile)
		if err != nil {
			return err
		}
		logger.Sugar.Infof("Seeded %d note(s) from %s", svc.Seed(entries), cfg.SeedFile)
	}

	go hub.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router.Setup(svc, hub, cfg.AllowedOrigin),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Sugar.Infof("Notes server listening on %s", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	case <-ctx.Done():
	}

	logger.Sugar.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
