// Package pkg provides the core libraries for Wotan routability estimation.
//
// # Overview
//
// Wotan estimates how routable an FPGA routing fabric is without running a
// router: it enumerates paths for a sample of source-sink connections,
// converts path counts into per-wire demand, and estimates the probability
// that each connection routes under that congestion. The pkg directory is
// organized into five main areas:
//
//  1. [rrgraph] - The routing resource graph (nodes, edges, serialization)
//  2. [arch] - Device description (tile grid, block types, pin classes)
//  3. [analysis] - The two-phase analysis run and its estimators
//  4. [cache] / [api] - Result caching and the HTTP analysis API
//  5. [export] / [config] / [observability] - Supporting infrastructure
//
// # Architecture
//
// The typical data flow through Wotan:
//
//	Graph + Fabric JSON
//	         ↓
//	    [analysis] package (connection generation)
//	         ↓
//	    [analysis/distance] package (reachability pruning)
//	         ↓
//	    [analysis/topo] + [analysis/estimate] (enumeration, probability)
//	         ↓
//	    Summary (CLI output, JSON, HTTP API)
//
// # Quick Start
//
// Analyze a simple graph as a single connection:
//
//	import (
//	    "context"
//	    "github.com/shikc/wotan/pkg/analysis"
//	    "github.com/shikc/wotan/pkg/rrgraph"
//	)
//
//	g, err := rrgraph.ReadGraphFile("graph.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	a, err := analysis.New(g, nil, analysis.DefaultSettings())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sum, err := a.Run(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("routability: %.4f\n", sum.Routability)
//
// [rrgraph]: github.com/shikc/wotan/pkg/rrgraph
// [arch]: github.com/shikc/wotan/pkg/arch
// [analysis]: github.com/shikc/wotan/pkg/analysis
// [cache]: github.com/shikc/wotan/pkg/cache
// [api]: github.com/shikc/wotan/pkg/api
// [export]: github.com/shikc/wotan/pkg/export
// [config]: github.com/shikc/wotan/pkg/config
// [observability]: github.com/shikc/wotan/pkg/observability
package pkg
