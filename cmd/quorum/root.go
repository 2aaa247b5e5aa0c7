package quorum

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/soundprediction/quorum/pkg/config"
	"github.com/soundprediction/quorum/pkg/logger"
	"github.com/soundprediction/quorum/pkg/telemetry"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "quorum",
		Short: "Quorum: document question answering",
		Long: `Quorum indexes committee documents and answers questions over them.

Retrieval blends keyword and embedding scores per source document; ask
feeds the retrieved context to a language model constrained to answer
from the documents alone.

Complete documentation is available at https://github.com/soundprediction/quorum`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize configuration
			initConfig()
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.quorum.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	// Bind flags to viper
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".quorum" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".quorum")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the logging chain: colored terminal output with error
// records persisted to Parquet when a telemetry path is configured. The
// returned handler is nil when no telemetry is configured; otherwise the
// caller must flush it on shutdown or buffered records are lost.
func newLogger(cfg *config.Config) (*slog.Logger, *telemetry.ParquetHandler) {
	colorHandler := logger.NewColorHandler(os.Stderr, &slog.HandlerOptions{
		Level: logger.ParseLevel(cfg.Log.Level),
	})

	if cfg.Telemetry.ParquetPath == "" {
		return slog.New(colorHandler), nil
	}

	parquetHandler, err := telemetry.NewParquetHandler(colorHandler, cfg.Telemetry.ParquetPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to initialize error tracking: %v\n", err)
		return slog.New(colorHandler), nil
	}
	return slog.New(parquetHandler), parquetHandler
}

// flushTelemetry persists error records still buffered below the parquet
// batch size. Every command defers this before exiting.
func flushTelemetry(h *telemetry.ParquetHandler) {
	if h == nil {
		return
	}
	if err := h.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to flush error telemetry: %v\n", err)
	}
}
