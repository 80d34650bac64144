package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chunkserve/pkg/cache"
	"chunkserve/pkg/codec"
	"chunkserve/pkg/config"
	"chunkserve/pkg/registry"
	"chunkserve/pkg/server"
	"chunkserve/pkg/utils"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "0.3.0"

var (
	configFile string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "chunkserve",
		Short: "Multi-codec file chunking server",
		Long: `Serves binary files as ordered, fixed-size text-encoded chunks so that
byte-budgeted clients can fetch and reassemble them. Encoded segments are
cached on disk per (file, codec, mode) and materialized lazily.`,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.AddCommand(
		serveCmd(),
		scanCmd(),
		encodeCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var (
		listenAddr string
		inputDir   string
		cacheDir   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chunk server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(verbose)
			defer logger.Sync()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if listenAddr != "" {
				cfg.ListenAddr = listenAddr
			}
			if inputDir != "" {
				cfg.InputDir = inputDir
			}
			if cacheDir != "" {
				cfg.CacheDir = cacheDir
			}

			reg, err := registry.New(cfg.InputDir, cfg.DefaultChunkSize, logger)
			if err != nil {
				return err
			}
			store, err := cache.NewStore(cfg.CacheDir, reg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if added, err := reg.ScanFolder(ctx); err != nil {
				logger.Warn("initial folder scan failed", zap.Error(err))
			} else {
				logger.Info("initial folder scan complete",
					zap.Int("files", added),
					zap.String("input_dir", cfg.InputDir))
			}

			return server.New(cfg, reg, store, logger).Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "listen address (default :8000)")
	cmd.Flags().StringVar(&inputDir, "input-dir", "", "folder monitored for input files")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "segment cache root directory")

	return cmd
}

func scanCmd() *cobra.Command {
	var inputDir string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the input folder and list discovered files",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(verbose)
			defer logger.Sync()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if inputDir != "" {
				cfg.InputDir = inputDir
			}

			reg, err := registry.New(cfg.InputDir, cfg.DefaultChunkSize, logger)
			if err != nil {
				return err
			}
			if _, err := reg.ScanFolder(cmd.Context()); err != nil {
				return err
			}

			fmt.Println(renderFilesTable(reg.List()))
			return nil
		},
	}

	cmd.Flags().StringVar(&inputDir, "input-dir", "", "folder to scan")

	return cmd
}

func encodeCmd() *cobra.Command {
	var (
		codecName string
		modeName  string
		chunkSize string
		cacheDir  string
	)

	cmd := &cobra.Command{
		Use:   "encode <file>",
		Short: "Pre-materialize the segment cache for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(verbose)
			defer logger.Sync()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cacheDir != "" {
				cfg.CacheDir = cacheDir
			}

			cdc, err := codec.Parse(codecName)
			if err != nil {
				return err
			}
			mode, err := cache.ParseMode(modeName)
			if err != nil {
				return err
			}
			target, err := utils.ParseSize(chunkSize)
			if err != nil {
				return fmt.Errorf("invalid chunk size: %w", err)
			}

			reg, err := registry.New(cfg.InputDir, cfg.DefaultChunkSize, logger)
			if err != nil {
				return err
			}
			store, err := cache.NewStore(cfg.CacheDir, reg, logger)
			if err != nil {
				return err
			}

			record, err := reg.Register(args[0])
			if err != nil {
				return err
			}

			if store.Ready(record.ID, cdc, mode) {
				fmt.Printf("%s already encoded as %s/%s\n", record.Name, cdc, mode)
				return nil
			}

			bar := progressbar.DefaultBytes(record.Size, fmt.Sprintf("Encoding %s", record.Name))
			err = store.Materialize(record.ID, cdc, mode, target, func(n int64) {
				bar.Add64(n)
			})
			if err != nil {
				return err
			}
			bar.Finish()

			fmt.Printf("\n%s -> %s (codec=%s mode=%s)\n",
				record.Name, string(record.ID), cdc, mode)
			return nil
		},
	}

	cmd.Flags().StringVar(&codecName, "codec", "base64", "codec: "+fmt.Sprint(codec.Names()))
	cmd.Flags().StringVar(&modeName, "mode", "stream", "materialization mode: stream or full")
	cmd.Flags().StringVar(&chunkSize, "chunk-size", "1MiB", "target encoded segment size")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "segment cache root directory")

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("chunkserve %s\n", version)
		},
	}
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	return config.LoadFromEnv(), nil
}

func setupLogger(verbose bool) *zap.Logger {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, _ := config.Build()
	return logger
}
