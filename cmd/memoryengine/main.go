// =============================================================================
// Memory Engine CLI
// =============================================================================
// A small harness that wires a System against the in-process reference
// back-ends and drives the write/retrieve/flush/rehydrate surface end to
// end, for local exploration and smoke testing.
//
// Usage:
//
//	memoryengine demo                       # run a scripted write/retrieve/flush pass
//	memoryengine demo --config config.yaml  # load config overrides first
//	memoryengine version                    # show version information
// =============================================================================

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agentflow/memoryengine/config"
	"github.com/agentflow/memoryengine/memory"
	"github.com/agentflow/memoryengine/types"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "demo":
		runDemo(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runDemo(args []string) {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	owner := fs.String("owner", "demo-owner", "Owner id to write and retrieve under")
	fs.Parse(args)

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	dir, err := os.MkdirTemp("", "memoryengine-demo-*")
	if err != nil {
		logger.Fatal("failed to create demo cold store directory", zap.Error(err))
	}
	cfg.Storage.ColdRoot = dir

	sys, err := memory.NewDefaultSystem(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build memory system", zap.Error(err))
	}

	ctx := context.Background()

	item, err := sys.Write(ctx, memory.WriteInput{Event: &types.MemoryEvent{
		Content:    "EU carbon border adjustment discussed",
		Type:       types.MemoryEpisodic,
		Owner:      *owner,
		Tags:       []string{"eu", "policy"},
		Confidence: 0.7,
	}})
	if err != nil {
		logger.Fatal("write failed", zap.Error(err))
	}
	logger.Info("wrote item", zap.String("id", item.ID), zap.String("tier", string(item.Tier)))

	bundle, err := sys.RetrieveText(ctx, "What about EU carbon policy?", *owner)
	if err != nil {
		logger.Fatal("retrieve failed", zap.Error(err))
	}
	logger.Info("retrieved bundle",
		zap.Int("blocks", len(bundle.Blocks)),
		zap.Float64("confidence", bundle.Confidence.Total),
		zap.Any("used_tiers", bundle.UsedTiers),
	)

	newItems, err := sys.Flush(ctx, *owner)
	if err != nil {
		logger.Fatal("flush failed", zap.Error(err))
	}
	logger.Info("flush produced consolidated items", zap.Int("count", len(newItems)))

	metrics := sys.Metrics()
	fmt.Printf("requests=%d hot_hit=%d archive_escalation=%d cold_fetch=%d tokens_returned=%d tokens_saved_estimate=%d\n",
		metrics.Requests, metrics.HotHit, metrics.ArchiveEscalation, metrics.ColdFetch, metrics.TokensReturned, metrics.TokensSavedEstimate)

	registry := prometheus.NewRegistry()
	registry.MustRegister(sys.MetricsCollectors()...)
	families, err := registry.Gather()
	if err != nil {
		logger.Fatal("gather prometheus metrics failed", zap.Error(err))
	}
	fmt.Printf("prometheus metric families registered: %d\n", len(families))
}

func printVersion() {
	fmt.Printf("memoryengine %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`memoryengine - tiered agent memory engine CLI

Usage:
  memoryengine <command> [options]

Commands:
  demo      Run a scripted write/retrieve/flush pass against in-process back-ends
  version   Show version information
  help      Show this help message

Options for 'demo':
  --config <path>   Path to configuration file (YAML)
  --owner <id>      Owner id to write and retrieve under (default "demo-owner")

Examples:
  memoryengine demo
  memoryengine demo --config ./memoryengine.yaml --owner alice
  memoryengine version`)
}

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Encoding == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Development,
		Encoding:         cfg.Encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapConfig.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
