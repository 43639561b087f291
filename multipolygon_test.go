package osm2initial

import (
	"sort"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// normalizedPoints returns sorted distinct points of the ring
func normalizedPoints(ring orb.Ring) []orb.Point {
	seen := map[orb.Point]struct{}{}
	pts := []orb.Point{}
	for _, pt := range ring {
		if _, ok := seen[pt]; ok {
			continue
		}
		seen[pt] = struct{}{}
		pts = append(pts, pt)
	}
	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] != pts[j][0] {
			return pts[i][0] < pts[j][0]
		}
		return pts[i][1] < pts[j][1]
	})
	return pts
}

func TestGlueTwoFragments(t *testing.T) {
	first := []orb.Point{{0, 0}, {1, 0}, {1, 1}}
	second := []orb.Point{{1, 1}, {0, 1}, {0, 0}}
	rings := GlueMultipolygon([][]orb.Point{first, second}, nil, RING_CLOSURE_STRAIGHT)
	require.Len(t, rings, 1)
	ring := rings[0]
	assert.Len(t, ring, 5, "shared vertices must not be duplicated")
	assert.Equal(t, ring[0], ring[len(ring)-1])
	assert.Len(t, normalizedPoints(ring), 4)
}

func TestGlueReversedFragment(t *testing.T) {
	first := []orb.Point{{0, 0}, {1, 0}, {1, 1}}
	// Digitized in the opposite direction
	second := []orb.Point{{0, 0}, {0, 1}, {1, 1}}
	rings := GlueMultipolygon([][]orb.Point{first, second}, nil, RING_CLOSURE_STRAIGHT)
	require.Len(t, rings, 1)
	assert.Len(t, rings[0], 5)
	assert.Equal(t, rings[0][0], rings[0][len(rings[0])-1])
}

func TestGlueReverseAccumulator(t *testing.T) {
	// Seed is the last fragment and nothing continues its tail, so the chain has to grow from the head
	a := []orb.Point{{0, 0}, {1, -1}, {2, 0}}
	b := []orb.Point{{2, 0}, {2, 2}}
	seed := []orb.Point{{2, 2}, {0, 2}}
	rings := GlueMultipolygon([][]orb.Point{a, b, seed}, nil, RING_CLOSURE_STRAIGHT)
	require.Len(t, rings, 1)
	assert.Equal(t, orb.Ring{{0, 2}, {2, 2}, {2, 0}, {1, -1}, {0, 0}, {0, 2}}, rings[0])
}

func TestGlueOrderIndependent(t *testing.T) {
	fragments := [][]orb.Point{
		{{0, 0}, {1, 0}},
		{{1, 0}, {2, 0}, {2, 1}},
		{{0, 1}, {1, 1}, {2, 1}},
		{{0, 1}, {0, 0}},
	}
	expected := GlueMultipolygon(fragments, nil, RING_CLOSURE_STRAIGHT)
	require.Len(t, expected, 1)
	permutations := [][]int{{3, 2, 1, 0}, {1, 3, 0, 2}, {2, 0, 3, 1}, {0, 2, 1, 3}}
	for _, perm := range permutations {
		reordered := make([][]orb.Point, len(perm))
		for i, idx := range perm {
			reordered[i] = fragments[idx]
		}
		rings := GlueMultipolygon(reordered, nil, RING_CLOSURE_STRAIGHT)
		require.Len(t, rings, 1, "permutation %v", perm)
		assert.Equal(t, normalizedPoints(expected[0]), normalizedPoints(rings[0]), "permutation %v", perm)
	}
}

func TestGlueClosedRingsUnchanged(t *testing.T) {
	closed := []orb.Point{{0, 0}, {1, 0}, {1, 1}, {0, 0}}
	another := []orb.Point{{5, 5}, {6, 5}, {6, 6}, {5, 5}}
	rings := GlueMultipolygon([][]orb.Point{closed, another}, nil, RING_CLOSURE_STRAIGHT)
	require.Len(t, rings, 2)
	assert.Equal(t, orb.Ring(closed), rings[0])
	assert.Equal(t, orb.Ring(another), rings[1])
}

func TestGlueAbandon(t *testing.T) {
	first := []orb.Point{{0, 0}, {1, 0}}
	disconnected := []orb.Point{{5, 5}, {6, 6}}
	rings := GlueMultipolygon([][]orb.Point{first, disconnected}, nil, RING_CLOSURE_STRAIGHT)
	assert.Empty(t, rings)
}

func TestGlueClippedStraight(t *testing.T) {
	// Open ring: the rest has been clipped out of the extract
	fragments := [][]orb.Point{{{0, 0}, {1, 0}}, {{1, 0}, {1, 1}}}
	rings := GlueMultipolygon(fragments, nil, RING_CLOSURE_STRAIGHT)
	require.Len(t, rings, 1)
	assert.Equal(t, orb.Ring{{1, 1}, {1, 0}, {0, 0}, {1, 1}}, rings[0])
}

func TestGlueClippedBoundary(t *testing.T) {
	boundary := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}
	// Starts and ends near the bottom-left corner of the boundary
	fragments := [][]orb.Point{{{0, 1}, {5, 5}, {1, 0}}}
	rings := GlueMultipolygon(fragments, boundary, RING_CLOSURE_BOUNDARY)
	require.Len(t, rings, 1)
	ring := rings[0]
	assert.Equal(t, ring[0], ring[len(ring)-1])
	assert.Contains(t, []orb.Point(ring), orb.Point{0, 0}, "the shorter arc goes through the corner")
	assert.NotContains(t, []orb.Point(ring), orb.Point{10, 10})
}

func TestParseRingClosure(t *testing.T) {
	closure, err := ParseRingClosure("boundary")
	require.NoError(t, err)
	assert.Equal(t, RING_CLOSURE_BOUNDARY, closure)
	closure, err = ParseRingClosure("")
	require.NoError(t, err)
	assert.Equal(t, RING_CLOSURE_STRAIGHT, closure)
	_, err = ParseRingClosure("spiral")
	assert.Error(t, err)
}
