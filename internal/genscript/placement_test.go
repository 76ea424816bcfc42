package genscript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/limn/internal/markup"
)

func TestResolveX_EmptyCanvas(t *testing.T) {
	assert.Equal(t, 0.0, ResolveX(nil))
	assert.Equal(t, 0.0, ResolveX([]Rect{}))
}

func TestResolveX_MaxRightEdgePlusClearance(t *testing.T) {
	siblings := []Rect{
		{X: 0, Y: 0, Width: 50, Height: 40},    // right edge 50
		{X: 100, Y: 20, Width: 200, Height: 80}, // right edge 300
	}
	assert.Equal(t, 400.0, ResolveX(siblings))
}

func TestResolveX_OrderIndependent(t *testing.T) {
	a := []Rect{{X: 0, Width: 50}, {X: 100, Width: 200}}
	b := []Rect{{X: 100, Width: 200}, {X: 0, Width: 50}}
	assert.Equal(t, ResolveX(a), ResolveX(b))
}

func TestPlacementFor_ExplicitXWins(t *testing.T) {
	root, err := markup.Parse(`<Frame x={20}></Frame>`)
	require.NoError(t, err)

	siblings := []Rect{{X: 100, Width: 200}} // heuristic would say 400
	p, err := PlacementFor(root, siblings)
	require.NoError(t, err)
	assert.Equal(t, 20.0, p.X)
}

func TestPlacementFor_HeuristicWithoutExplicitX(t *testing.T) {
	root, err := markup.Parse(`<Frame></Frame>`)
	require.NoError(t, err)

	p, err := PlacementFor(root, []Rect{{X: 0, Width: 50}, {X: 100, Width: 200}})
	require.NoError(t, err)
	assert.Equal(t, 400.0, p.X)
	assert.Equal(t, 0.0, p.Y)
}

func TestPlacementFor_ExplicitY(t *testing.T) {
	root, err := markup.Parse(`<Frame x={10} y={30}></Frame>`)
	require.NoError(t, err)

	p, err := PlacementFor(root, nil)
	require.NoError(t, err)
	assert.Equal(t, Placement{X: 10, Y: 30}, p)
}

func TestPlacementFor_BadCoordinate(t *testing.T) {
	root, err := markup.Parse(`<Frame x="wide"></Frame>`)
	require.NoError(t, err)

	_, err = PlacementFor(root, nil)
	var lerr *LowerError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "x", lerr.Attr)
}

func TestNeedsSiblingScan(t *testing.T) {
	explicit, err := markup.Parse(`<Frame x={20}></Frame>`)
	require.NoError(t, err)
	assert.False(t, NeedsSiblingScan(explicit))

	auto, err := markup.Parse(`<Frame></Frame>`)
	require.NoError(t, err)
	assert.True(t, NeedsSiblingScan(auto))
}
