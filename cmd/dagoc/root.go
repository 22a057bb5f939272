package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/aescanero/dagoc/internal/application/graphspec"
	"github.com/aescanero/dagoc/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// cli carries state shared by every subcommand.
type cli struct {
	cfg    *config.Config
	logger *zap.Logger

	logLevel string
	cacheDir string
	encoding string
}

// Execute runs the root command with signal handling
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "dagoc",
		Short: "dagoc - graph compiler for the DA Orchestrator",
		Long: `dagoc compiles CSV workflow definitions into cached, versioned graph
bundles, validates them statically and scaffolds routing stubs.`,
		Version:           fmt.Sprintf("%s (built %s)", Version, BuildTime),
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")
	root.PersistentFlags().StringVar(&c.cacheDir, "cache-dir", "", "bundle cache directory; overrides DAGOC_CACHE_DIR")
	root.PersistentFlags().StringVar(&c.encoding, "encoding", "", "bundle encoding (json, yaml); overrides DAGOC_BUNDLE_ENCODING")

	root.AddCommand(newCompileCmd(c))
	root.AddCommand(newValidateCmd(c))
	root.AddCommand(newScaffoldCmd(c))
	root.AddCommand(newServeCmd(c))

	return root
}

// setup loads configuration, applies flag overrides and builds the logger.
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if c.cacheDir != "" {
		cfg.Cache.Dir = c.cacheDir
	}
	if c.encoding != "" {
		cfg.Cache.Encoding = c.encoding
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	c.cfg = cfg
	c.logger = initLogger(cfg.LogLevel)
	return nil
}

// readSource reads CSV rows from path, or stdin when path is "-".
func readSource(cmd *cobra.Command, path string) ([]graphspec.Row, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open source: %w", err)
		}
		defer f.Close()
		r = f
	}

	rows, err := graphspec.ReadRows(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rows, nil
}

// graphNames returns the distinct graph names of rows in source order.
func graphNames(rows []graphspec.Row) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range rows {
		if r.GraphName != "" && !seen[r.GraphName] {
			seen[r.GraphName] = true
			names = append(names, r.GraphName)
		}
	}
	return names
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}
