package layout

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andywolf/loctreemap/internal/tree"
)

const eps = 1e-9

var canvas = tree.Rect{W: 800, H: 600}

func file(path string, lines, depth int) *tree.Node {
	return tree.NewFile(path, path, "Go", lines, depth)
}

// wideTree builds a root with mixed sizes and a nested folder.
func wideTree() *tree.Node {
	root := tree.NewFolder("repo", tree.RootPath, 0)
	sub := tree.NewFolder("sub", "sub", 1)
	sub.Children = []*tree.Node{
		file("sub/a.go", 7, 2),
		file("sub/b.go", 3, 2),
		file("sub/c.go", 1, 2),
	}
	root.Children = []*tree.Node{
		file("main.go", 60, 1),
		file("util.go", 25, 1),
		sub,
		file("x.go", 2, 1),
		file("y.go", 2, 1),
		file("z.go", 1, 1),
	}
	tree.Aggregate(root)
	return root
}

func TestLayout_AreaConservation(t *testing.T) {
	for _, algo := range []Algorithm{Squarified, SliceAndDice} {
		t.Run(string(algo), func(t *testing.T) {
			root := wideTree()
			Layout(root, canvas, Options{Algorithm: algo})
			require.NoError(t, Verify(root, eps))

			tree.Walk(root, func(n *tree.Node) bool {
				if len(n.Children) == 0 {
					return true
				}
				sum := 0.0
				for _, c := range n.Children {
					sum += c.Rect.Area()
				}
				assert.InDelta(t, n.Rect.Area(), sum, 1e-6, n.Path)
				return true
			})
		})
	}
}

func TestLayout_SingleFileFillsCanvas(t *testing.T) {
	root := file("only.go", 42, 0)
	Layout(root, canvas, Options{})
	require.NotNil(t, root.Rect)
	assert.Equal(t, tree.Rect{X: 0, Y: 0, W: 800, H: 600}, *root.Rect)
}

func TestLayout_RootWithSingleFileChild(t *testing.T) {
	for _, algo := range []Algorithm{Squarified, SliceAndDice} {
		root := tree.NewFolder("repo", tree.RootPath, 0)
		root.Children = []*tree.Node{file("main.go", 42, 1)}
		tree.Aggregate(root)

		Layout(root, canvas, Options{Algorithm: algo})
		assert.Equal(t, canvas, *root.Children[0].Rect, algo)
	}
}

func TestLayout_ProportionalAreas(t *testing.T) {
	root := tree.NewFolder("repo", tree.RootPath, 0)
	root.Children = []*tree.Node{file("a.go", 10, 1), file("b.go", 20, 1), file("c.go", 5, 1)}
	tree.Aggregate(root)

	Layout(root, canvas, Options{Algorithm: Squarified})
	total := canvas.Area()
	assert.InDelta(t, total*10/35, root.Children[0].Rect.Area(), 1e-6)
	assert.InDelta(t, total*20/35, root.Children[1].Rect.Area(), 1e-6)
	assert.InDelta(t, total*5/35, root.Children[2].Rect.Area(), 1e-6)
}

func TestLayout_ZeroLineChildren(t *testing.T) {
	root := tree.NewFolder("repo", tree.RootPath, 0)
	empty := tree.NewFolder("empty", "empty", 1)
	empty.Children = []*tree.Node{file("empty/blank.go", 0, 2)}
	root.Children = []*tree.Node{file("a.go", 0, 1), file("b.go", 10, 1), empty}
	tree.Aggregate(root)

	for _, algo := range []Algorithm{Squarified, SliceAndDice} {
		Layout(root, canvas, Options{Algorithm: algo})
		require.NoError(t, Verify(root, eps))

		assert.Zero(t, root.Children[0].Rect.Area())
		assert.InDelta(t, canvas.Area(), root.Children[1].Rect.Area(), 1e-6)
		require.NotNil(t, empty.Children[0].Rect, "descendants of zero-area folders still get a rect")
		assert.Zero(t, empty.Children[0].Rect.Area())
	}
}

func TestLayout_ZeroCanvas(t *testing.T) {
	root := wideTree()
	Layout(root, tree.Rect{}, Options{})
	tree.Walk(root, func(n *tree.Node) bool {
		require.NotNil(t, n.Rect, n.Path)
		assert.Zero(t, n.Rect.Area(), n.Path)
		return true
	})
}

func TestLayout_Idempotent(t *testing.T) {
	a := wideTree()
	b := wideTree()
	Layout(a, canvas, Options{})
	Layout(b, canvas, Options{})
	Layout(b, canvas, Options{})

	tree.Walk(a, func(n *tree.Node) bool {
		other := tree.Find(b, n.Path)
		require.NotNil(t, other)
		assert.Equal(t, *n.Rect, *other.Rect, n.Path)
		return true
	})
}

func TestSquarify_BetterAspectThanSliceAndDice(t *testing.T) {
	root := tree.NewFolder("repo", tree.RootPath, 0)
	for i := 0; i < 12; i++ {
		root.Children = append(root.Children, file(fmt.Sprintf("f%02d.go", i), 10, 1))
	}
	tree.Aggregate(root)

	worstAspect := func(algo Algorithm) float64 {
		Layout(root, canvas, Options{Algorithm: algo})
		w := 0.0
		for _, c := range root.Children {
			r := c.Rect
			w = math.Max(w, math.Max(r.W/r.H, r.H/r.W))
		}
		return w
	}

	assert.Less(t, worstAspect(Squarified), worstAspect(SliceAndDice))
}

func TestSliceAndDice_AlternatesByDepth(t *testing.T) {
	root := wideTree()
	Layout(root, canvas, Options{Algorithm: SliceAndDice})

	// depth 0 cuts the width
	for _, c := range root.Children {
		assert.Equal(t, canvas.H, c.Rect.H, c.Path)
	}
	// depth 1 cuts the height
	sub := tree.Find(root, "sub")
	for _, c := range sub.Children {
		assert.InDelta(t, sub.Rect.W, c.Rect.W, eps, c.Path)
	}
}

func TestVerify_DetectsViolation(t *testing.T) {
	root := wideTree()
	Layout(root, canvas, Options{})
	root.Children[0].Rect.W /= 2

	err := Verify(root, eps)
	require.Error(t, err)
	var violation *InvariantViolation
	assert.ErrorAs(t, err, &violation)
}

func TestVerify_MissingRect(t *testing.T) {
	root := wideTree()
	err := Verify(root, eps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing rectangle")
}

func TestHitTest(t *testing.T) {
	root := wideTree()
	Layout(root, canvas, Options{})

	tree.Walk(root, func(n *tree.Node) bool {
		if n.Kind != tree.KindFile || n.Rect.Area() == 0 {
			return true
		}
		cx := n.Rect.X + n.Rect.W/2
		cy := n.Rect.Y + n.Rect.H/2
		got := HitTest(root, cx, cy)
		require.NotNil(t, got, n.Path)
		assert.Equal(t, n.Path, got.Path)
		return true
	})

	assert.Nil(t, HitTest(root, -1, 10))
	assert.Nil(t, HitTest(root, 800, 10))
	assert.Nil(t, HitTest(nil, 1, 1))
}

func TestHitPath(t *testing.T) {
	root := wideTree()
	Layout(root, canvas, Options{})

	a := tree.Find(root, "sub/a.go")
	chain := HitPath(root, a.Rect.X+a.Rect.W/2, a.Rect.Y+a.Rect.H/2)
	var paths []string
	for _, n := range chain {
		paths = append(paths, n.Path)
	}
	assert.Equal(t, []string{tree.RootPath, "sub", "sub/a.go"}, paths)
	assert.Empty(t, HitPath(root, -1, -1))
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in      string
		want    Algorithm
		wantErr bool
	}{
		{"", Squarified, false},
		{"Squarified", Squarified, false},
		{"slice-and-dice", SliceAndDice, false},
		{"slice", SliceAndDice, false},
		{"spiral", "", true},
	}
	for _, tt := range tests {
		got, err := ParseAlgorithm(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
