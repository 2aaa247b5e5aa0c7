package quorum

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	root "github.com/soundprediction/quorum"
	"github.com/soundprediction/quorum/pkg/config"
	"github.com/soundprediction/quorum/pkg/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Quorum HTTP server",
	Long: `Start the Quorum HTTP server to provide REST API access to the corpus.

The server provides endpoints for:
- Searching the corpus (POST /search)
- Answering questions with sources (POST /ask)
- Health checks (GET /health, /ready, /live)

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServe,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server-specific flags
	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serveCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serveCmd.Flags().StringVar(&serverMode, "mode", "debug", "Server mode (debug, release, test)")

	// Storage flags
	serveCmd.Flags().String("db-driver", "", "Storage driver (memory, badger, qdrant, neo4j)")
	serveCmd.Flags().String("db-path", "", "Badger database path")
	serveCmd.Flags().String("qdrant-url", "", "Qdrant URL")
	serveCmd.Flags().String("neo4j-uri", "", "Neo4j URI")

	// Telemetry flags
	serveCmd.Flags().String("telemetry-parquet-path", "", "Path to directory for error telemetry")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	overrideConfigWithFlags(cmd, cfg)

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}

	log, errLog := newLogger(cfg)
	defer flushTelemetry(errLog)

	client, err := root.NewClientFromConfig(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize quorum: %w", err)
	}

	if err := client.EnsureIndexes(cmd.Context()); err != nil {
		log.Warn("failed to ensure store indexes", "error", err)
	}

	srv := server.New(cfg, client, client.Store())
	srv.Setup()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		if err := client.Close(shutdownCtx); err != nil {
			log.Warn("error closing client", "error", err)
		}

		log.Info("server stopped gracefully")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}

	if cmd.Flags().Changed("db-driver") {
		cfg.Storage.Driver, _ = cmd.Flags().GetString("db-driver")
	}
	if cmd.Flags().Changed("db-path") {
		cfg.Storage.Path, _ = cmd.Flags().GetString("db-path")
	}
	if cmd.Flags().Changed("qdrant-url") {
		cfg.Storage.URL, _ = cmd.Flags().GetString("qdrant-url")
	}
	if cmd.Flags().Changed("neo4j-uri") {
		cfg.Storage.URI, _ = cmd.Flags().GetString("neo4j-uri")
	}

	if cmd.Flags().Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = cmd.Flags().GetString("telemetry-parquet-path")
	}
}
