// Package analysis orchestrates a routability run: it generates the
// connection set from the fabric, drives the two analysis phases across a
// worker pool, and aggregates the results.
//
// A run has two phases over the same connections. The enumeration phase
// counts paths per connection and derives per-node demand; demand is
// applied to the graph once all workers have joined. The probability phase
// then estimates each connection's routability against that demand.
package analysis

import (
	"context"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/shikc/wotan/pkg/analysis/distance"
	"github.com/shikc/wotan/pkg/analysis/estimate"
	"github.com/shikc/wotan/pkg/analysis/topo"
	"github.com/shikc/wotan/pkg/arch"
	"github.com/shikc/wotan/pkg/errors"
	"github.com/shikc/wotan/pkg/observability"
	"github.com/shikc/wotan/pkg/rrgraph"
)

const (
	phaseEnumerate   = "enumerate"
	phaseProbability = "probability"

	// Path weight budget for simple graphs, where no tile geometry bounds
	// the search.
	simpleGraphMaxWeight = 1000
)

// Settings configures a run. The zero value is not usable; start from
// DefaultSettings.
type Settings struct {
	// Workers is the number of concurrent analysis workers. Zero means
	// one per CPU.
	Workers int

	// MaxConnLength is the largest source-sink Manhattan distance, in
	// tiles, that connections are generated for.
	MaxConnLength int

	// CoreOffset excludes source tiles within this many tiles of the
	// perimeter, keeping edge effects out of the metrics. Ignored when
	// the grid is too small to have a core.
	CoreOffset int

	// PathFlexibility scales the shortest possible path weight of a
	// connection into its maximum allowed path weight.
	PathFlexibility float64

	// DemandMultiplier scales the demand applied between phases.
	DemandMultiplier float64

	// WorstPercentile is the fraction of lowest connection probabilities
	// kept per length for the pessimistic metric.
	WorstPercentile float64

	// DemandPercentile is the fraction of highest routing-node demands
	// kept for the congestion metric.
	DemandPercentile float64

	// Probability selects and parameterizes the estimator.
	Probability estimate.Params
}

// DefaultSettings returns the standard run configuration.
func DefaultSettings() Settings {
	return Settings{
		MaxConnLength:    2,
		CoreOffset:       3,
		PathFlexibility:  1.3,
		DemandMultiplier: 1,
		WorstPercentile:  0.10,
		DemandPercentile: 0.05,
		Probability:      estimate.Params{Mode: estimate.Propagate},
	}
}

// connection is one source-sink pair to analyze.
type connection struct {
	src, snk rrgraph.ID
	length   int
	// weight is the number of physical sink pins the super-sink stands
	// for, scaled by their usage probability; it weights the connection's
	// share of the totals and seeds the pin-equivalence scaling of
	// enumeration.
	weight float64
	// fanout is the number of connections sharing this source in the
	// run; the source-side pin demand is split across them.
	fanout float64
	// maxWeight is the weight budget of the distance passes. The measured
	// source-sink distance tightens it before enumeration and probability
	// analysis.
	maxWeight int
}

// Analyzer runs routability analysis over one graph.
type Analyzer struct {
	g    *rrgraph.Graph
	fab  *arch.Fabric
	set  Settings
	res  *Results
	maxW int // largest node weight in the graph
}

// New validates the settings and prepares a run. fab may be nil, which
// selects simple-graph mode: the graph's single SOURCE and SINK are
// analyzed as one connection with a loose weight budget.
func New(g *rrgraph.Graph, fab *arch.Fabric, set Settings) (*Analyzer, error) {
	if !g.Frozen() {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "graph must be frozen before analysis")
	}
	if set.Workers <= 0 {
		set.Workers = runtime.NumCPU()
	}
	if fab != nil && set.MaxConnLength < 1 {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"max connection length %d, must be at least 1", set.MaxConnLength)
	}
	if set.PathFlexibility < 1 {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"path flexibility %v, must be at least 1", set.PathFlexibility)
	}
	if set.WorstPercentile <= 0 || set.WorstPercentile > 1 {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"worst percentile %v outside (0,1]", set.WorstPercentile)
	}
	if set.DemandPercentile <= 0 || set.DemandPercentile > 1 {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"demand percentile %v outside (0,1]", set.DemandPercentile)
	}
	return &Analyzer{g: g, fab: fab, set: set, res: NewResults(), maxW: g.MaxWeight()}, nil
}

// RunID returns the run's unique identifier.
func (a *Analyzer) RunID() string { return a.res.runID }

// Run executes both phases and returns the summary.
func (a *Analyzer) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	conns, err := a.buildConnections()
	if err != nil {
		return nil, err
	}
	a.sizeWorstQueues(conns)

	hooks := observability.Analysis()
	hooks.OnRunStart(ctx, a.res.RunID(), len(conns))

	if err := a.runPhase(ctx, phaseEnumerate, conns); err != nil {
		hooks.OnRunComplete(ctx, a.res.RunID(), 0, time.Since(start), err)
		return nil, err
	}
	a.res.ApplyDemand(a.g, a.set.DemandMultiplier)
	a.observeNodeDemands()

	if err := a.runPhase(ctx, phaseProbability, conns); err != nil {
		hooks.OnRunComplete(ctx, a.res.RunID(), 0, time.Since(start), err)
		return nil, err
	}

	sum := a.res.Summarize()
	hooks.OnRunComplete(ctx, a.res.RunID(), sum.Routability, time.Since(start), nil)
	return sum, nil
}

// buildConnections generates the run's connection set.
func (a *Analyzer) buildConnections() ([]connection, error) {
	if a.fab == nil {
		return a.buildSimpleConnection()
	}

	fab := a.fab
	// Every in-bounds tile must be a regular logic block; a heterogeneous
	// core breaks the per-length connection accounting.
	for x := 0; x < fab.Width; x++ {
		for y := 0; y < fab.Height; y++ {
			if !fab.InBounds(x, y) {
				continue
			}
			if err := fab.CheckFillTile(arch.Coord{X: x, Y: y}); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "inconsistent fabric")
			}
		}
	}

	var conns []connection
	fill := fab.FillType()
	for x := 0; x < fab.Width; x++ {
		for y := 0; y < fab.Height; y++ {
			if !fab.InBounds(x, y) || !a.inCore(x, y) {
				continue
			}
			for ci := range fill.Classes {
				class := &fill.Classes[ci]
				switch class.Type {
				case arch.Driver:
					srcProb, err := fill.ClassProbability(ci)
					if err != nil {
						return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "inconsistent fabric")
					}
					if srcProb == 0 {
						// A source whose pins are never used contributes nothing.
						continue
					}
					src, ok := fab.NodeAt(arch.NodeKey{Type: rrgraph.Source, X: x, Y: y, Pin: ci})
					if !ok {
						continue
					}
					c, err := a.connsFromSource(src, x, y)
					if err != nil {
						return nil, err
					}
					conns = append(conns, c...)

				case arch.Receiver:
					// Receiver pins account for fanout: a signal arriving at
					// an ipin also drives further sinks, so each physical
					// ipin is enumerated as a source of its own, starting at
					// the dedicated fanout node ahead of its predecessors.
					// Pins are not treated as equivalent here.
					for _, pin := range class.Pins {
						if fill.PinProb(pin) == 0 {
							continue
						}
						ipin, ok := fab.NodeAt(arch.NodeKey{Type: rrgraph.Ipin, X: x, Y: y, Pin: pin})
						if !ok {
							continue
						}
						fsrc := a.g.Node(ipin).FanoutSource
						if fsrc == rrgraph.None {
							continue
						}
						c, err := a.connsFromSource(fsrc, x, y)
						if err != nil {
							return nil, err
						}
						conns = append(conns, c...)
					}
				}
			}
		}
	}

	// Source-side demand is shared by every connection of the source.
	fanout := make(map[rrgraph.ID]int)
	for i := range conns {
		fanout[conns[i].src]++
	}
	for i := range conns {
		conns[i].fanout = float64(fanout[conns[i].src])
	}
	return conns, nil
}

// connsFromSource emits the connections of one traversal source: every
// receiver class on every ring of tiles up to the configured length.
func (a *Analyzer) connsFromSource(src rrgraph.ID, tileX, tileY int) ([]connection, error) {
	var conns []connection
	for length := 1; length <= a.set.MaxConnLength; length++ {
		desired, err := a.fab.ConnsAtLength(tileX, tileY, length)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "inconsistent fabric")
		}
		a.res.AddDesired(float64(desired))
		c, err := a.connsToRing(src, tileX, tileY, length)
		if err != nil {
			return nil, err
		}
		conns = append(conns, c...)
	}
	return conns, nil
}

// connsToRing emits connections from src to every receiver class on the
// ring of tiles at exactly the given Manhattan distance.
func (a *Analyzer) connsToRing(src rrgraph.ID, tileX, tileY, length int) ([]connection, error) {
	fab := a.fab
	fill := fab.FillType()
	maxWeight := a.coarseMaxWeight(length)

	var conns []connection
	for dx := -length; dx <= length; dx++ {
		yDist := length - abs(dx)
		for dy := -yDist; dy <= yDist; dy += max(2*yDist, 1) {
			destX, destY := tileX+dx, tileY+dy
			if !fab.InBounds(destX, destY) {
				continue
			}
			for cj := range fill.Classes {
				if fill.Classes[cj].Type != arch.Receiver {
					continue
				}
				snkProb, err := fill.ClassProbability(cj)
				if err != nil {
					return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "inconsistent fabric")
				}
				if snkProb == 0 {
					continue
				}
				snk, ok := fab.NodeAt(arch.NodeKey{Type: rrgraph.Sink, X: destX, Y: destY, Pin: cj})
				if !ok {
					continue
				}
				conns = append(conns, connection{
					src:       src,
					snk:       snk,
					length:    length,
					weight:    float64(fill.Classes[cj].NumPins()) * snkProb,
					maxWeight: maxWeight,
				})
			}
		}
	}
	return conns, nil
}

// coarseMaxWeight is the weight budget of a length-L connection's distance
// passes: enough for the wires of the longest flexible detour plus the pins
// and sink on either end, at the heaviest node weight in the graph.
func (a *Analyzer) coarseMaxWeight(length int) int {
	w := a.maxW
	if w < 1 {
		w = 1
	}
	return int(math.Ceil(a.set.PathFlexibility * float64((length+3)*w)))
}

func (a *Analyzer) buildSimpleConnection() ([]connection, error) {
	src, snk, err := a.g.FindSingleSourceSink()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "simple graph mode")
	}
	srcN, snkN := a.g.Node(src), a.g.Node(snk)
	length := abs(srcN.XLow-snkN.XLow) + abs(srcN.YLow-snkN.YLow)
	a.res.AddDesired(1)
	return []connection{{
		src:       src,
		snk:       snk,
		length:    length,
		weight:    1,
		fanout:    1,
		maxWeight: simpleGraphMaxWeight,
	}}, nil
}

// inCore reports whether a tile is far enough from the perimeter for its
// sources to count. Small grids have no core and keep every in-bounds tile.
func (a *Analyzer) inCore(x, y int) bool {
	off := a.set.CoreOffset
	if a.fab.Width <= 2*off || a.fab.Height <= 2*off {
		return true
	}
	return x >= off && x < a.fab.Width-off && y >= off && y < a.fab.Height-off
}

// sizeWorstQueues caps each per-length worst queue at the configured
// percentile of the connections at that length, and the worst-demand queue
// at the configured percentile of the routing nodes.
func (a *Analyzer) sizeWorstQueues(conns []connection) {
	perLength := make(map[int]int)
	for i := range conns {
		perLength[conns[i].length]++
	}
	for length, n := range perLength {
		a.res.SetWorstQueueCapacity(length, int(math.Ceil(a.set.WorstPercentile*float64(n))))
	}

	routing := 0
	for i := 0; i < a.g.NumNodes(); i++ {
		if a.g.Node(rrgraph.ID(i)).Type.IsWire() {
			routing++
		}
	}
	a.res.SetWorstDemandCapacity(int(math.Ceil(a.set.DemandPercentile * float64(routing))))
}

func (a *Analyzer) observeNodeDemands() {
	for i := 0; i < a.g.NumNodes(); i++ {
		n := a.g.Node(rrgraph.ID(i))
		if n.Type.IsWire() {
			a.res.ObserveNodeDemand(n.Demand)
		}
	}
}

// runPhase partitions the connections round-robin across the workers. One
// worker runs on the calling goroutine; the rest are spawned. The first
// error aborts the phase.
func (a *Analyzer) runPhase(ctx context.Context, phase string, conns []connection) error {
	start := time.Now()
	hooks := observability.Analysis()
	hooks.OnPhaseStart(ctx, a.res.RunID(), phase, len(conns))

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}
	failed := func() bool {
		errMu.Lock()
		defer errMu.Unlock()
		return firstErr != nil
	}

	work := func(worker int) {
		scratch := estimate.NewScratch(a.g.NumNodes())
		for i := worker; i < len(conns); i += a.set.Workers {
			if err := ctx.Err(); err != nil {
				fail(err)
				return
			}
			if failed() {
				return
			}
			if err := a.analyzeConnection(ctx, phase, scratch, &conns[i]); err != nil {
				fail(err)
				return
			}
		}
	}

	for w := 1; w < a.set.Workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			work(w)
		}(w)
	}
	work(0)
	wg.Wait()

	if firstErr != nil {
		err := errors.Wrap(errors.ErrCodeWorkerFailed, firstErr, "analysis phase %s failed", phase)
		hooks.OnPhaseComplete(ctx, a.res.RunID(), phase, time.Since(start), err)
		return err
	}
	hooks.OnPhaseComplete(ctx, a.res.RunID(), phase, time.Since(start), nil)
	return nil
}

// analyzeConnection runs one connection through the given phase. Scratch
// state is reset through the visited log when done.
func (a *Analyzer) analyzeConnection(ctx context.Context, phase string, s *estimate.Scratch, c *connection) error {
	defer s.Reset()

	if a.fab != nil {
		srcN, snkN := a.g.Node(c.src), a.g.Node(c.snk)
		d := abs(srcN.XLow-snkN.XLow) + abs(srcN.YLow-snkN.YLow)
		if d != c.length {
			return errors.New(errors.ErrCodeDistanceMismatch,
				"connection %d->%d spans %d tiles, generated for length %d", c.src, c.snk, d, c.length)
		}
	}

	if err := distance.Compute(a.g, s.Recs, c.src, c.snk, c.maxWeight, distance.Forward, s.Log); err != nil {
		return err
	}
	if !s.Recs[c.snk].Visited(distance.Forward) {
		// Sink unreachable within the weight budget.
		if phase == phaseProbability {
			return a.res.IncrementProbability(c.length, 0, c.weight)
		}
		return nil
	}
	if err := distance.Compute(a.g, s.Recs, c.snk, c.src, c.maxWeight, distance.Backward, s.Log); err != nil {
		return err
	}
	if err := checkDistanceAgreement(s.Recs, c); err != nil {
		return err
	}

	// The distance passes ran under a loose geometric budget; the measured
	// source-sink distance tightens it for the analysis proper.
	budget := c.maxWeight
	if t := int(math.Ceil(a.set.PathFlexibility * float64(s.Recs[c.snk].Dist(distance.Forward)))); t < budget {
		budget = t
	}

	switch phase {
	case phaseEnumerate:
		return a.enumerateConnection(s, c, budget)
	case phaseProbability:
		prob, err := estimate.Probability(a.g, s, c.src, c.snk, budget, a.set.Probability)
		if err != nil {
			return err
		}
		if err := a.res.IncrementProbability(c.length, prob, c.weight); err != nil {
			return err
		}
		observability.Analysis().OnConnectionAnalyzed(ctx, a.res.RunID(), c.length, prob)
		return nil
	default:
		return errors.New(errors.ErrCodeInternal, "unknown phase %q", phase)
	}
}

// enumerateConnection counts the connection's paths and credits each legal
// node's share of them to the demand deltas. The forward seed is scaled by
// the sink's pin count, so a node's share is its expected usage across the
// physically equivalent pins the super-sink stands for. Opin shares are
// split across the source's fanout: one physical driver serves all of its
// connections at once.
func (a *Analyzer) enumerateConnection(s *estimate.Scratch, c *connection, budget int) error {
	numPaths, routingNodes, err := estimate.Enumerate(a.g, s, c.src, c.snk, budget, topo.ByWeight, c.weight)
	if err != nil {
		return err
	}
	if numPaths == 0 {
		return nil
	}
	a.res.ObserveSubgraph(routingNodes)

	deltas := make(map[rrgraph.ID]float64)
	for _, id := range s.Log.Nodes() {
		if _, done := deltas[id]; done {
			// The log holds one entry per traversal pass.
			continue
		}
		if id == c.src || id == c.snk {
			continue
		}
		n := a.g.Node(id)
		if !s.Recs[id].Legal(n.Weight, budget) {
			continue
		}
		share := s.Buckets.PathsThrough(id, n.Weight, budget)
		if share == 0 {
			continue
		}
		if n.Type == rrgraph.Opin && c.fanout > 1 {
			share /= c.fanout
		}
		deltas[id] = share
	}
	a.res.MergeDemand(deltas)
	return nil
}

// checkDistanceAgreement verifies that the two distance passes measured the
// same source-sink distance. The forward distance at the sink and the
// backward distance at the source label the same shortest path, so a
// disagreement means the edge lists are inconsistent between directions.
func checkDistanceAgreement(recs distance.Records, c *connection) error {
	fwd := recs[c.snk].Dist(distance.Forward)
	bwd := recs[c.src].Dist(distance.Backward)
	if fwd != bwd {
		return errors.New(errors.ErrCodeDistanceMismatch,
			"connection %d->%d: forward distance %d to sink, backward distance %d to source",
			c.src, c.snk, fwd, bwd)
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
