package graph

// Aggregate collapses raw reply events into weighted edges. Rows come out in
// first-occurrence order, which callers must not rely on.
func Aggregate(pairs []Pair) []Edge {
	idx := make(map[Pair]int, len(pairs))
	out := make([]Edge, 0)
	for _, p := range pairs {
		if i, ok := idx[p]; ok {
			out[i].Weight++
			continue
		}
		idx[p] = len(out)
		out = append(out, Edge{Source: p.Source, Target: p.Target, Weight: 1})
	}
	return out
}

// Reaggregate groups already weighted edges by endpoints and sums weights.
// Applying it to the output of Aggregate is a no-op.
func Reaggregate(edges []Edge) []Edge {
	idx := make(map[Pair]int, len(edges))
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		k := Pair{Source: e.Source, Target: e.Target}
		if i, ok := idx[k]; ok {
			out[i].Weight += e.Weight
			continue
		}
		idx[k] = len(out)
		out = append(out, e)
	}
	return out
}

func TotalWeight(edges []Edge) int {
	n := 0
	for _, e := range edges {
		n += e.Weight
	}
	return n
}
