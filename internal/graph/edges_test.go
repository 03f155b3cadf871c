package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateWeights(t *testing.T) {
	pairs := []Pair{
		{"a", "b"}, {"c", "b"}, {"a", "b"}, {"b", "a"}, {"a", "b"},
	}
	edges := Aggregate(pairs)
	assert.Equal(t, []Edge{
		{Source: "a", Target: "b", Weight: 3},
		{Source: "c", Target: "b", Weight: 1},
		{Source: "b", Target: "a", Weight: 1},
	}, edges)
	assert.Equal(t, len(pairs), TotalWeight(edges))
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
}

func TestReaggregateIsIdempotent(t *testing.T) {
	edges := Aggregate([]Pair{{"x", "y"}, {"x", "y"}, {"y", "x"}})
	once := Reaggregate(edges)
	assert.Equal(t, edges, once)
	assert.Equal(t, once, Reaggregate(once))

	split := []Edge{{"x", "y", 1}, {"y", "x", 1}, {"x", "y", 1}}
	assert.Equal(t, edges, Reaggregate(split))
}
