package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/shikc/wotan/pkg/analysis"
	"github.com/shikc/wotan/pkg/arch"
	"github.com/shikc/wotan/pkg/config"
	"github.com/shikc/wotan/pkg/observability"
	"github.com/shikc/wotan/pkg/rrgraph"
)

// analyzeOpts holds the command-line flags for the analyze command.
// Non-zero flags override the corresponding configuration fields.
type analyzeOpts struct {
	fabric     string // device description JSON path
	simple     bool   // analyze the graph as one source-sink connection
	mode       string // probability estimator
	workers    int    // analysis concurrency
	multiplier float64
	jsonOut    string // write the summary as JSON to this path
}

// newAnalyzeCmd creates the analyze command, which runs a full routability
// analysis over a resource graph and prints the summary.
func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze [graph.json]",
		Short: "Run a routability analysis over a resource graph",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			graphPath := ""
			if len(args) == 1 {
				graphPath = args[0]
			}
			return runAnalyze(cmd.Context(), graphPath, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.fabric, "fabric", "", "device description JSON (required unless --simple)")
	cmd.Flags().BoolVar(&opts.simple, "simple", false, "analyze the graph's single source-sink pair as one connection")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "probability estimator: propagate (default), cutline, cutline-simple, cutline-recursive, relpoly")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "analysis concurrency (default: one per CPU)")
	cmd.Flags().Float64Var(&opts.multiplier, "demand-multiplier", 0, "scale applied to enumerated demand")
	cmd.Flags().StringVarP(&opts.jsonOut, "output", "o", "", "write the summary as JSON to this file")

	return cmd
}

// mergeAnalyzeOpts folds non-zero flags over the loaded configuration.
func mergeAnalyzeOpts(cfg *config.Config, graphPath string, opts *analyzeOpts) {
	if graphPath != "" {
		cfg.Graph.Path = graphPath
	}
	if opts.fabric != "" {
		cfg.Graph.Fabric = opts.fabric
	}
	if opts.simple {
		cfg.Graph.Simple = true
	}
	if opts.mode != "" {
		cfg.Analysis.Mode = opts.mode
	}
	if opts.workers != 0 {
		cfg.Analysis.Workers = opts.workers
	}
	if opts.multiplier != 0 {
		cfg.Analysis.DemandMultiplier = opts.multiplier
	}
}

func runAnalyze(ctx context.Context, graphPath string, opts *analyzeOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mergeAnalyzeOpts(cfg, graphPath, opts)
	if cfg.Graph.Path == "" {
		return fmt.Errorf("no graph file: pass a path or set graph.path in the config")
	}
	if !cfg.Graph.Simple && cfg.Graph.Fabric == "" {
		return fmt.Errorf("no device description: pass --fabric or use --simple")
	}
	set, err := cfg.Settings()
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	g, err := rrgraph.ReadGraphFile(cfg.Graph.Path)
	if err != nil {
		return err
	}
	logger.Infof("Loaded graph: %d nodes, %d edges", g.NumNodes(), g.NumEdges())

	var fab *arch.Fabric
	if !cfg.Graph.Simple {
		fab, err = arch.ReadFabricFile(cfg.Graph.Fabric)
		if err != nil {
			return err
		}
		logger.Infof("Loaded fabric: %dx%d grid, %d block types", fab.Width, fab.Height, len(fab.BlockTypes))
	}

	a, err := analysis.New(g, fab, set)
	if err != nil {
		return err
	}

	observability.SetAnalysisHooks(&logAnalysisHooks{logger: logger})
	defer observability.Reset()

	logger.Infof("Analyzing with %s estimator", set.Probability.Mode)
	sum, err := a.Run(ctx)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Analyzed %d connections", sum.AnalyzedConns))

	printSummary(sum)

	if opts.jsonOut != "" {
		if err := writeSummaryJSON(sum, opts.jsonOut); err != nil {
			return err
		}
		printFile(opts.jsonOut)
	}
	return nil
}

// writeSummaryJSON writes the summary as indented JSON.
func writeSummaryJSON(sum *analysis.Summary, path string) error {
	data, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// logAnalysisHooks reports analysis progress through the CLI logger.
type logAnalysisHooks struct {
	observability.NoopAnalysisHooks
	logger *charmlog.Logger
}

func (h *logAnalysisHooks) OnRunStart(_ context.Context, runID string, connections int) {
	h.logger.Infof("Run %s: %d connections", runID, connections)
}

func (h *logAnalysisHooks) OnPhaseStart(_ context.Context, _ string, phase string, connections int) {
	h.logger.Debugf("Phase %s: %d connections", phase, connections)
}

func (h *logAnalysisHooks) OnPhaseComplete(_ context.Context, _ string, phase string, d time.Duration, err error) {
	if err != nil {
		h.logger.Errorf("Phase %s failed after %s: %v", phase, d.Round(time.Millisecond), err)
		return
	}
	h.logger.Debugf("Phase %s done in %s", phase, d.Round(time.Millisecond))
}
