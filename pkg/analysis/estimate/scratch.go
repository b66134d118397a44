// Package estimate computes per-connection routability: path enumeration
// over the legal subgraph and the probability estimators built on top of it
// (probability propagation, cutline analysis in three variants, and the
// reliability polynomial).
package estimate

import (
	"github.com/shikc/wotan/pkg/analysis/distance"
	"github.com/shikc/wotan/pkg/analysis/topo"
)

// Scratch bundles the per-worker traversal state reused across connections.
// Everything is sized to the whole node table once and reset per connection
// through the visited log, never by a full sweep.
type Scratch struct {
	Recs    distance.Records
	Infos   topo.Infos
	Buckets topo.Table
	Log     *distance.VisitedLog
}

// NewScratch allocates scratch state for a graph of numNodes nodes.
func NewScratch(numNodes int) *Scratch {
	return &Scratch{
		Recs:    distance.NewRecords(numNodes),
		Infos:   topo.NewInfos(numNodes),
		Buckets: topo.NewTable(numNodes),
		Log:     distance.NewVisitedLog(numNodes),
	}
}

// ResetTraversal clears traversal state (infos and buckets) for the nodes
// the current connection touched, keeping distances and the log. Called
// between traversal passes of one connection.
func (s *Scratch) ResetTraversal() {
	visited := s.Log.Nodes()
	s.Infos.Reset(visited)
	s.Buckets.Reset(visited)
}

// Reset clears all per-connection state and empties the log.
func (s *Scratch) Reset() {
	visited := s.Log.Nodes()
	s.Recs.Reset(visited)
	s.Infos.Reset(visited)
	s.Buckets.Reset(visited)
	s.Log.Clear()
}
