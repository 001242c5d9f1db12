package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/example/nav-agent/internal/config"
	"github.com/example/nav-agent/internal/graph"
	"github.com/example/nav-agent/internal/ledger"
	"github.com/example/nav-agent/internal/pricing"
	"github.com/example/nav-agent/internal/prompts"
	"github.com/example/nav-agent/internal/providers/llm"
	"github.com/example/nav-agent/internal/runner"
	"github.com/example/nav-agent/internal/scaffold"
	"github.com/example/nav-agent/internal/tasks"
)

var (
	cfgPath     string
	tasksPath   string
	graphPath   string
	ledgerPath  string
	snapshotDir string
	cycles      int
	verbose     bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "navagent",
	Short: "LLM navigation-agent eval loop over a pruned site graph",
	Long: `navagent drives an LLM navigation agent against persona-scoped
"find the right page" tasks, critiques each answer with a second model
call, and records outcomes in a sqlite ledger for prompt tuning.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the eval loop over the task list",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLoop(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "navagent.yaml", "path to yaml config")

	runCmd.Flags().StringVar(&tasksPath, "tasks", "", "path to tasks JSON (overrides config)")
	runCmd.Flags().StringVar(&graphPath, "graph", "", "path to graph snapshot JSON (overrides config)")
	runCmd.Flags().StringVar(&ledgerPath, "db", "", "path to ledger sqlite db (overrides config)")
	runCmd.Flags().StringVar(&snapshotDir, "snapshot", "", "crawl snapshot dir for title enrichment (overrides config)")
	runCmd.Flags().IntVar(&cycles, "cycles", 1, "number of passes over the task list")
	rootCmd.AddCommand(runCmd)
}

func runLoop(ctx context.Context) error {
	// Best-effort; credentials normally come from the environment.
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if tasksPath != "" {
		cfg.TasksPath = tasksPath
	}
	if graphPath != "" {
		cfg.GraphPath = graphPath
	}
	if ledgerPath != "" {
		cfg.LedgerPath = ledgerPath
	}
	if snapshotDir != "" {
		cfg.SnapshotDir = snapshotDir
	}
	if cfg.TasksPath == "" || cfg.GraphPath == "" {
		return fmt.Errorf("tasks_path and graph_path must be set via config or flags")
	}

	taskList, err := tasks.Load(cfg.TasksPath)
	if err != nil {
		return err
	}
	g, err := graph.Load(cfg.GraphPath)
	if err != nil {
		return err
	}
	graph.EnrichTitles(g, cfg.SnapshotDir)

	builder := &scaffold.Builder{Graph: g, Limit: cfg.ContextLimit, SupportLimit: cfg.SupportLimit}
	scaffolding, err := builder.BuildAll()
	if err != nil {
		return err
	}

	renderer, err := prompts.New()
	if err != nil {
		return err
	}
	client, err := llm.New(ctx, cfg)
	if err != nil {
		return err
	}
	if closer, ok := client.(io.Closer); ok {
		defer closer.Close()
	}

	store, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		return err
	}
	defer store.Close()

	controller := &runner.Controller{
		Planner:     &runner.Planner{Client: client, Prompts: renderer},
		Subagent:    &runner.SubagentRunner{Client: client, Prompts: renderer},
		Critique:    &runner.CritiqueRunner{Client: client, Prompts: renderer},
		Ledger:      store,
		Pricing:     pricingTable(cfg),
		Log:         logger,
		Model:       cfg.Model,
		MaxAttempts: cfg.MaxAttempts,
	}
	loop := &runner.Loop{
		Controller:    controller,
		Client:        client,
		Prompts:       renderer,
		Log:           logger,
		TuneThreshold: cfg.TuneThreshold,
		HistoryDir:    cfg.HistoryDir,
	}
	return loop.Run(ctx, cycles, taskList, scaffolding)
}

func pricingTable(cfg *config.Config) *pricing.Table {
	return pricing.NewTable(cfg.Pricing)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
