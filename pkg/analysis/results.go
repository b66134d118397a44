package analysis

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shikc/wotan/pkg/errors"
	"github.com/shikc/wotan/pkg/rrgraph"
)

// lengthStats accumulates per-connection-length totals plus the worst
// fraction of probabilities at that length.
type lengthStats struct {
	total    float64
	possible float64
	worst    *worstQueue
}

// Results is the run's shared aggregate. It is the only mutable state
// workers touch concurrently, guarded by one coarse mutex: per-connection
// work dwarfs the merge, so finer locking buys nothing.
type Results struct {
	mu sync.Mutex

	runID         string
	totalProb     float64
	maxPossible   float64
	desiredConns  float64
	analyzedConns int
	perLength     map[int]*lengthStats
	worstDemand   *worstQueue
	demandDeltas  map[rrgraph.ID]float64
	subgraphSum   float64
	subgraphConns int
}

// NewResults creates an empty aggregate with a fresh run ID.
func NewResults() *Results {
	return &Results{
		runID:        uuid.NewString(),
		perLength:    make(map[int]*lengthStats),
		worstDemand:  newWorstQueue(1, false),
		demandDeltas: make(map[rrgraph.ID]float64),
	}
}

// RunID returns the unique identifier of this run.
func (r *Results) RunID() string { return r.runID }

// SetWorstQueueCapacity sizes the worst-probability queue for one
// connection length. Called before workers start.
func (r *Results) SetWorstQueueCapacity(length, capacity int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statsFor(length).worst = newWorstQueue(capacity, true)
}

// SetWorstDemandCapacity sizes the worst-node-demand queue.
func (r *Results) SetWorstDemandCapacity(capacity int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.worstDemand = newWorstQueue(capacity, false)
}

func (r *Results) statsFor(length int) *lengthStats {
	s, ok := r.perLength[length]
	if !ok {
		s = &lengthStats{worst: newWorstQueue(1, true)}
		r.perLength[length] = s
	}
	return s
}

// AddDesired records connections the run set out to analyze at a length,
// weighted by physical pin count.
func (r *Results) AddDesired(conns float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.desiredConns += conns
}

// IncrementProbability merges one analyzed connection: probability prob at
// the given length, weighted by the number of physical pins the sink node
// stands for. A negative probability can only come from corrupted state and
// is fatal.
func (r *Results) IncrementProbability(length int, prob, weight float64) error {
	if prob < 0 {
		return errors.New(errors.ErrCodeNegativeIncrement,
			"negative probability increment %v at length %d", prob, length)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.statsFor(length)
	s.total += prob * weight
	s.possible += weight
	s.worst.Add(prob)
	r.totalProb += prob * weight
	r.maxPossible += weight
	r.analyzedConns++
	return nil
}

// MergeDemand folds one connection's demand contributions into the shared
// deltas. Workers never write the graph directly.
func (r *Results) MergeDemand(deltas map[rrgraph.ID]float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, v := range deltas {
		r.demandDeltas[id] += v
	}
}

// ApplyDemand writes the accumulated demand deltas to the graph, scaled by
// the demand multiplier, and clears them. Called by the orchestrator
// between the enumeration and probability phases, with no workers running.
func (r *Results) ApplyDemand(g *rrgraph.Graph, multiplier float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, v := range r.demandDeltas {
		g.AddDemand(id, v*multiplier)
	}
	r.demandDeltas = make(map[rrgraph.ID]float64)
}

// ObserveSubgraph records the routing-node count of one enumerated
// connection's legal subgraph.
func (r *Results) ObserveSubgraph(routingNodes int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subgraphSum += float64(routingNodes)
	r.subgraphConns++
}

// ObserveNodeDemand offers one routing node's demand to the worst-demand
// metric.
func (r *Results) ObserveNodeDemand(d float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.worstDemand.Add(d)
}

// LengthSummary is the per-connection-length slice of a run summary.
type LengthSummary struct {
	Length           int     `json:"length" bson:"length"`
	Possible         float64 `json:"possible" bson:"possible"`
	Routability      float64 `json:"routability" bson:"routability"`
	WorstRoutability float64 `json:"worst_routability" bson:"worst_routability"`
}

// Summary is the immutable outcome of a run.
type Summary struct {
	RunID            string          `json:"run_id" bson:"run_id"`
	Routability      float64         `json:"routability" bson:"routability"`
	WorstRoutability float64         `json:"worst_routability" bson:"worst_routability"`
	WorstNodeDemand  float64         `json:"worst_node_demand" bson:"worst_node_demand"`
	TotalProb        float64         `json:"total_prob" bson:"total_prob"`
	MaxPossible      float64         `json:"max_possible" bson:"max_possible"`
	DesiredConns     float64         `json:"desired_conns" bson:"desired_conns"`
	AnalyzedConns    int             `json:"analyzed_conns" bson:"analyzed_conns"`

	// MeanSubgraphNodes is the mean number of routing nodes in the legal
	// subgraphs of the enumerated connections, a measure of how much of
	// the fabric each connection can draw on.
	MeanSubgraphNodes float64 `json:"mean_subgraph_nodes" bson:"mean_subgraph_nodes"`

	PerLength []LengthSummary `json:"per_length,omitempty" bson:"per_length,omitempty"`
}

// Summarize computes the final metrics. The overall worst routability is
// the mean over every length's retained worst fraction, weighted by how
// many entries each queue holds.
func (r *Results) Summarize() *Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	sum := &Summary{
		RunID:           r.runID,
		TotalProb:       r.totalProb,
		MaxPossible:     r.maxPossible,
		DesiredConns:    r.desiredConns,
		AnalyzedConns:   r.analyzedConns,
		WorstNodeDemand: r.worstDemand.Mean(),
	}
	if r.maxPossible > 0 {
		sum.Routability = r.totalProb / r.maxPossible
	}
	if r.subgraphConns > 0 {
		sum.MeanSubgraphNodes = r.subgraphSum / float64(r.subgraphConns)
	}

	lengths := make([]int, 0, len(r.perLength))
	for l := range r.perLength {
		lengths = append(lengths, l)
	}
	sort.Ints(lengths)

	worstSum, worstN := 0.0, 0
	for _, l := range lengths {
		s := r.perLength[l]
		ls := LengthSummary{Length: l, Possible: s.possible, WorstRoutability: s.worst.Mean()}
		if s.possible > 0 {
			ls.Routability = s.total / s.possible
		}
		sum.PerLength = append(sum.PerLength, ls)
		for _, v := range s.worst.Values() {
			worstSum += v
			worstN++
		}
	}
	if worstN > 0 {
		sum.WorstRoutability = worstSum / float64(worstN)
	}
	return sum
}
