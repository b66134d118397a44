package estimate

import (
	"github.com/shikc/wotan/pkg/errors"
	"github.com/shikc/wotan/pkg/rrgraph"
)

// Mode selects the probability estimator applied to each connection.
type Mode uint8

const (
	// Propagate estimates by propagating availability probabilities
	// through the weight buckets. The default and most accurate mode.
	Propagate Mode = iota
	// Cutline multiplies availabilities of the level cuts discovered by
	// the topological traversal.
	Cutline
	// CutlineSimple cuts by source hop distance instead of traversal
	// levels.
	CutlineSimple
	// CutlineRecursive evaluates hop-level cuts by bounded recursion.
	CutlineRecursive
	// ReliabilityPolynomial evaluates the two-terminal reliability
	// polynomial under a uniform routing-node demand.
	ReliabilityPolynomial
)

var modeNames = map[Mode]string{
	Propagate:             "propagate",
	Cutline:               "cutline",
	CutlineSimple:         "cutline-simple",
	CutlineRecursive:      "cutline-recursive",
	ReliabilityPolynomial: "reliability-polynomial",
}

// String returns the configuration name of the mode.
func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "unknown"
}

// ParseMode maps a configuration name to its Mode.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidStrategy, "unknown probability mode %q", s)
}

// Params configures the probability estimators.
type Params struct {
	Mode Mode

	// RoutingNodeDemand is the uniform demand assumed for routing nodes
	// by the reliability polynomial. Required for that mode, unused by
	// the others.
	RoutingNodeDemand    float64
	RoutingNodeDemandSet bool
}

// Probability runs the configured estimator for one connection and
// validates the result. Both weight-distance passes must have run on the
// scratch already; estimators needing hop counts run those themselves.
//
// A result outside [0,1] means the demand data or the traversal state is
// inconsistent, and is an error, not something to clamp.
func Probability(g *rrgraph.Graph, s *Scratch, src, snk rrgraph.ID, maxWeight int, p Params) (float64, error) {
	var (
		prob float64
		err  error
	)
	switch p.Mode {
	case Propagate:
		prob, err = PropagateProbability(g, s, src, snk, maxWeight)
	case Cutline:
		prob, err = CutlineProbability(g, s, src, snk, maxWeight)
	case CutlineSimple:
		prob, err = CutlineSimpleProbability(g, s, src, snk, maxWeight)
	case CutlineRecursive:
		prob, err = CutlineRecursiveProbability(g, s, src, snk, maxWeight)
	case ReliabilityPolynomial:
		if !p.RoutingNodeDemandSet {
			return 0, errors.New(errors.ErrCodeMissingParam,
				"reliability-polynomial mode requires a routing node demand")
		}
		prob, err = ReliabilityPolyProbability(g, s, src, snk, maxWeight, p.RoutingNodeDemand)
	default:
		return 0, errors.New(errors.ErrCodeInvalidStrategy, "unknown probability mode %d", p.Mode)
	}
	if err != nil {
		return 0, err
	}
	if prob < 0 || prob > 1 {
		return 0, errors.New(errors.ErrCodeProbabilityRange,
			"%s probability %v outside [0,1] for connection %d->%d", p.Mode, prob, src, snk)
	}
	return prob, nil
}
