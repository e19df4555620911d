package analysis

import (
	"errors"
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/Zillatron27/x4-production-analyzer/internal/gamedata"
)

// DependencyChain is the directed ware graph: an edge runs from an input
// ware to the product it feeds. It is scoped to wares the empire actually
// produces or consumes, not the whole game economy.
type DependencyChain struct {
	g graph.Graph[string, string]
}

// BuildChain constructs the dependency graph for one report. Recipes come
// from the definitions; in estimate mode the graph only carries vertices,
// since no input relations are known.
func BuildChain(defs *gamedata.Definitions, r *Report) (*DependencyChain, error) {
	g := graph.New(graph.StringHash, graph.Directed())

	for id := range r.Wares {
		if err := g.AddVertex(string(id)); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return nil, err
		}
	}
	if defs != nil {
		for id := range r.Wares {
			def, ok := defs.Ware(id)
			if !ok {
				continue
			}
			method := def.DefaultMethod()
			if method == nil {
				continue
			}
			for _, in := range method.Inputs {
				if err := g.AddVertex(string(in.Ware)); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
					return nil, err
				}
				err := g.AddEdge(string(in.Ware), string(id))
				if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
					return nil, err
				}
			}
		}
	}
	return &DependencyChain{g: g}, nil
}

// Graph exposes the underlying graph for rendering.
func (c *DependencyChain) Graph() graph.Graph[string, string] { return c.g }

// Inputs returns the wares feeding directly into the given product.
func (c *DependencyChain) Inputs(ware gamedata.WareID) []gamedata.WareID {
	pred, err := c.g.PredecessorMap()
	if err != nil {
		return nil
	}
	return sortedKeys(pred[string(ware)])
}

// Consumers returns the products the given ware feeds directly into.
func (c *DependencyChain) Consumers(ware gamedata.WareID) []gamedata.WareID {
	adj, err := c.g.AdjacencyMap()
	if err != nil {
		return nil
	}
	return sortedKeys(adj[string(ware)])
}

// UpstreamShortages walks the input side of a ware and collects every
// transitive input the report flags as short. The walk tolerates cycles.
func (c *DependencyChain) UpstreamShortages(r *Report, ware gamedata.WareID) []gamedata.WareID {
	pred, err := c.g.PredecessorMap()
	if err != nil {
		return nil
	}
	seen := map[string]bool{string(ware): true}
	queue := []string{string(ware)}
	var out []gamedata.WareID
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for in := range pred[cur] {
			if seen[in] {
				continue
			}
			seen[in] = true
			queue = append(queue, in)
			if wb, ok := r.Wares[gamedata.WareID(in)]; ok {
				if wb.Status == StatusShortage || wb.Status == StatusNotProduced {
					out = append(out, gamedata.WareID(in))
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedKeys(m map[string]graph.Edge[string]) []gamedata.WareID {
	out := make([]gamedata.WareID, 0, len(m))
	for k := range m {
		out = append(out, gamedata.WareID(k))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
