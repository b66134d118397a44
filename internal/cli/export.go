package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shikc/wotan/pkg/export"
	"github.com/shikc/wotan/pkg/rrgraph"
)

// defaultExportLimit caps DOT exports; layouts of full fabrics are
// unreadable and graphviz chokes on them.
const defaultExportLimit = 2000

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	output     string // output file path
	format     string // "dot" or "svg"
	showDemand bool   // label and shade nodes by demand
	maxNodes   int    // abort above this node count, 0 disables
}

// newExportCmd creates the export command, which renders a resource graph
// as Graphviz DOT text or an SVG image.
func newExportCmd() *cobra.Command {
	opts := exportOpts{
		format:   "dot",
		maxNodes: defaultExportLimit,
	}

	cmd := &cobra.Command{
		Use:   "export [graph.json]",
		Short: "Render a resource graph as DOT or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != "dot" && opts.format != "svg" {
				return fmt.Errorf("invalid format: %s (must be 'dot' or 'svg')", opts.format)
			}
			return runExport(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with new extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot (default), svg")
	cmd.Flags().BoolVar(&opts.showDemand, "demand", false, "label and shade nodes by demand")
	cmd.Flags().IntVar(&opts.maxNodes, "max-nodes", opts.maxNodes, "abort for graphs above this node count (0 disables)")

	return cmd
}

func runExport(ctx context.Context, input string, opts *exportOpts) error {
	logger := loggerFromContext(ctx)

	g, err := rrgraph.ReadGraphFile(input)
	if err != nil {
		return err
	}
	logger.Infof("Loaded graph: %d nodes, %d edges", g.NumNodes(), g.NumEdges())

	renderOpts := export.Options{ShowDemand: opts.showDemand, MaxNodes: opts.maxNodes}
	var data []byte
	switch opts.format {
	case "dot":
		dot, err := export.ToDOT(g, renderOpts)
		if err != nil {
			return err
		}
		data = []byte(dot)
	case "svg":
		logger.Debug("Rendering SVG via graphviz")
		data, err = export.RenderSVG(ctx, g, renderOpts)
		if err != nil {
			return err
		}
	}

	path := opts.output
	if path == "" {
		path = strings.TrimSuffix(input, filepath.Ext(input)) + "." + opts.format
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}

	printSuccess("Exported %s", path)
	return nil
}
