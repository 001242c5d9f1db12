// Package graph holds the pruned site graph consumed by the eval loop.
// Construction and pruning happen upstream; this package only reads a
// prebuilt snapshot.
package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// Node is one page of the pruned site graph.
type Node struct {
	URL   string   `json:"url"`
	Title string   `json:"title"`
	Links []string `json:"links,omitempty"`
}

// Graph is a read-only snapshot of the site graph. Node order is the
// snapshot's order, so everything derived from it is deterministic.
type Graph struct {
	nodes []Node
	index map[string]int
}

// New builds a graph from a node list. Later duplicates of a URL are
// dropped.
func New(nodes []Node) *Graph {
	g := &Graph{index: make(map[string]int, len(nodes))}
	for _, n := range nodes {
		if _, ok := g.index[n.URL]; ok {
			continue
		}
		g.index[n.URL] = len(g.nodes)
		g.nodes = append(g.nodes, n)
	}
	return g
}

// Load reads a snapshot file of the form {"nodes": [...]}.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph snapshot %s: %w", path, err)
	}
	var snapshot struct {
		Nodes []Node `json:"nodes"`
	}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parse graph snapshot %s: %w", path, err)
	}
	if len(snapshot.Nodes) == 0 {
		return nil, fmt.Errorf("graph snapshot %s has no nodes", path)
	}
	return New(snapshot.Nodes), nil
}

// Nodes returns the nodes in snapshot order. Callers must not mutate
// the returned slice.
func (g *Graph) Nodes() []Node {
	return g.nodes
}

// Node looks a page up by URL.
func (g *Graph) Node(url string) (Node, bool) {
	i, ok := g.index[url]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Len returns the node count.
func (g *Graph) Len() int {
	return len(g.nodes)
}
