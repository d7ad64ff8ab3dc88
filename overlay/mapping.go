package overlay

import (
	"github.com/samber/lo"
)

// Mapping is the bijective node-to-zip association produced by an
// Overlay. It exposes forward and reverse lookups only; the association
// is fixed once the overlay is built.
type Mapping struct {
	forward map[string]string
	reverse map[string]string
}

// Mapping returns the node-to-zip bijection.
func (o *Overlay) Mapping() *Mapping {
	return &Mapping{
		forward: o.nodeToZip,
		reverse: o.zipToNode,
	}
}

// Zip returns the zip code assigned to node.
func (m *Mapping) Zip(node string) (string, bool) {
	zip, ok := m.forward[node]
	return zip, ok
}

// Node returns the node a zip code stands in for.
func (m *Mapping) Node(zip string) (string, bool) {
	node, ok := m.reverse[zip]
	return node, ok
}

// Len is the number of node-to-zip pairs.
func (m *Mapping) Len() int {
	return len(m.forward)
}

// Nodes lists the overlaid nodes, in no particular order.
func (m *Mapping) Nodes() []string {
	return lo.Keys(m.forward)
}
