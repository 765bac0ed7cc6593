// File: cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mybench_backend/internal/candidate"
	"mybench_backend/internal/candidate/esutil"
	"mybench_backend/internal/config"
	"mybench_backend/internal/platform/database"
	platformElasticsearch "mybench_backend/internal/platform/elasticsearch"
	"mybench_backend/internal/platform/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MyBench HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	root := &cobra.Command{
		Use:          "mybench",
		Short:        "MyBench recruiting marketplace backend",
		SilenceUsage: true,
		RunE:         serveCmd.RunE,
	}
	root.AddCommand(serveCmd, newSyncCandidatesCommand())
	return root
}

func newSyncCandidatesCommand() *cobra.Command {
	var batchSize int
	var esRefresh string

	cmd := &cobra.Command{
		Use:   "sync-candidates",
		Short: "Re-index every candidate into Elasticsearch",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch esRefresh {
			case "true", "false", "wait_for":
			default:
				return fmt.Errorf("invalid --es-refresh %q: must be true, false or wait_for", esRefresh)
			}
			return runCandidateSync(cmd.Context(), batchSize, esRefresh)
		},
	}
	cmd.Flags().IntVar(&batchSize, "batch-size", 200, "Batch size for syncing candidates")
	cmd.Flags().StringVar(&esRefresh, "es-refresh", "false", "Elasticsearch refresh policy (true, false, wait_for)")
	return cmd
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("FATAL: Failed to load configuration: %v", err)
		return err
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Printf("FATAL: Failed to initialize server: %v", err)
		return err
	}
	defer cleanup()

	if server.Indexer != nil {
		if err := server.Indexer.EnsureIndex(context.Background()); err != nil {
			server.Logger.Error("Failed to create Elasticsearch candidates index. Indexing will keep failing until it exists.", zap.Error(err))
		}
	} else {
		server.Logger.Info("Elasticsearch not configured, skipping index creation.")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
		return nil
	case sig := <-quit:
		server.Logger.Info("Received signal, shutting down server...", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		server.Logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}
	server.Logger.Info("Server shutdown complete.")
	return nil
}

func runCandidateSync(ctx context.Context, batchSize int, esRefresh string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	appLogger, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = appLogger.Sync() }()

	db, err := database.NewGORM(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize database for sync", zap.Error(err))
		return err
	}
	defer database.CloseGORMDB(db, appLogger)

	esClient, err := platformElasticsearch.NewClient(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize Elasticsearch client for sync", zap.Error(err))
		return err
	}
	indexer := platformElasticsearch.NewIndexer(esClient, appLogger)
	if indexer == nil {
		return fmt.Errorf("ELASTICSEARCH_URL must be set to sync candidates")
	}
	indexer.SetBulkRefresh(esRefresh)

	appLogger.Info("Starting candidate synchronization to Elasticsearch...",
		zap.Int("batchSize", batchSize),
		zap.String("esRefreshPolicy", esRefresh),
	)
	res, err := esutil.SyncAll(ctx, candidate.NewGORMRepository(db), indexer, batchSize, appLogger)
	if err != nil {
		appLogger.Error("Candidate synchronization failed", zap.Error(err))
		return err
	}
	appLogger.Info("Candidate synchronization finished.",
		zap.Int("scanned", res.Scanned),
		zap.Int("indexed", res.Indexed),
		zap.Int("failed", res.Failed),
	)
	if res.Failed > 0 {
		return fmt.Errorf("%d candidates failed to sync", res.Failed)
	}
	return nil
}
