package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/config"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/graph"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/service"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	storeDriver string
	sqlitePath  string
	badgerPath  string
	verbose     bool

	rootCmd = &cobra.Command{
		Use:   "kgctl",
		Short: "kgctl: operate the investor knowledge graph",
		Long: `kgctl learns from investor statements and outcomes, and predicts what an
investor would do in a given market context. It reads the same env config as
the server and replays the durable log before every command.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Load()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&storeDriver, "driver", "", "store driver: sqlite, postgres or badger (default $STORE_DRIVER)")
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "sqlite-path", "", "SQLite database path (default $SQLITE_PATH)")
	rootCmd.PersistentFlags().StringVar(&badgerPath, "badger-path", "", "Badger directory (default $BADGER_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")

	rootCmd.AddCommand(predictCmd, learnQuoteCmd, learnOutcomeCmd, relationshipsCmd, replayCmd, decayCmd)
}

func engineConfig(replay bool) service.EngineConfig {
	opts := store.Options{
		Driver:      config.StoreDriver(),
		SQLitePath:  config.SQLitePath(),
		DatabaseURL: config.DatabaseURL(),
		BadgerPath:  config.BadgerPath(),
	}
	if storeDriver != "" {
		opts.Driver = storeDriver
	}
	if sqlitePath != "" {
		opts.SQLitePath = sqlitePath
	}
	if badgerPath != "" {
		opts.BadgerPath = badgerPath
	}

	return service.EngineConfig{
		Store: opts,
		Breaker: store.BreakerConfig{
			MaxConsecutiveFailures: config.BreakerMaxFailures(),
			Timeout:                config.BreakerTimeout(),
		},
		VocabularyPath: config.VocabularyPath(),
		Graph: graph.Config{
			DecayFactor:      config.DecayFactor(),
			MinConfidence:    config.MinConfidence(),
			MaxRecentSources: config.MaxRecentSources(),
		},
		HistoryCapacity: config.HistoryCapacity(),
		ReplayOnStart:   replay,
	}
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	if lvl, err := zapcore.ParseLevel(config.LogLevel()); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// withEngine opens the engine, runs fn and closes the log.
func withEngine(ctx context.Context, replay bool, fn func(*service.Engine) error) error {
	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	engine, err := service.OpenEngine(ctx, engineConfig(replay), logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	return fn(engine)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// reportWarning prints a persistence warning and swallows it; anything else is returned.
func reportWarning(err error) error {
	if err == nil {
		return nil
	}
	if service.IsWarning(err) {
		fmt.Fprintln(os.Stderr, "warning:", err)
		return nil
	}
	return err
}
