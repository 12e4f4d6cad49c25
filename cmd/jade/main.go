// Package main implements the jade CLI - the thread scheduling engine of
// the Hall of Jade Manuscripts drafting tool.
//
// The engine tracks open story obligations ("threads") across chapters,
// computes decaying priority scores, decides which threads the next
// chapter must touch, and enforces guardrails against premature or
// missing payoffs. Prose generation and the dashboard live elsewhere;
// this binary owns the bookkeeping.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/classifier"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/config"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/logging"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/pipeline"
	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/store"
)

var (
	// Global flags
	verbose   bool
	workspace string
	offline   bool // skip classifier calls even when a key is present

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "jade",
	Short: "jade - narrative thread scheduling engine",
	Long: `jade tracks the open narrative threads of a serialized novel:
what was promised, how stale each promise has grown, and which threads
the next chapter must address under a fixed constraint budget.

Chapter text is classified by an external semantic auditor; the engine
never trusts it blindly and degrades to physics-only scheduling when the
auditor is unreachable.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if workspace == "" {
			workspace, _ = os.Getwd()
		}
		if err := logging.Initialize(workspace); err != nil {
			logger.Warn("file logging unavailable", zap.Error(err))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Close()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace directory (default: cwd)")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "run physics-only, without classifier calls")

	rootCmd.AddCommand(advanceCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(threadsCmd)
	rootCmd.AddCommand(healthCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the engine config from the workspace.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(workspacePath(".jade", "engine.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to load engine config: %w", err)
	}
	return cfg, nil
}

// openStore opens the snapshot database under the workspace.
func openStore() (*store.Store, error) {
	s, err := store.NewStore(workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to open thread store: %w", err)
	}
	return s, nil
}

// buildEngine assembles the pipeline, attaching the Gemini classifier
// when a key is configured and --offline is not set.
func buildEngine(ctx context.Context, cfg *config.Config) *pipeline.Engine {
	var opts []pipeline.Option
	if !offline && cfg.Classifier.APIKey != "" {
		gc, err := classifier.NewGeminiClassifier(ctx, cfg)
		if err != nil {
			logger.Warn("classifier unavailable, running physics-only", zap.Error(err))
		} else {
			opts = append(opts, pipeline.WithAuditor(gc), pipeline.WithNarrator(gc))
		}
	}
	return pipeline.New(cfg, opts...)
}

func workspacePath(parts ...string) string {
	return filepath.Join(append([]string{workspace}, parts...)...)
}
