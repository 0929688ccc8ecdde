// Package layout computes treemap rectangles for an aggregated tree and the
// depth-based color ramp used to paint them.
package layout

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andywolf/loctreemap/internal/tree"
)

// Algorithm selects the subdivision strategy.
type Algorithm string

const (
	// Squarified keeps child rectangles close to square.
	Squarified Algorithm = "squarified"
	// SliceAndDice alternates vertical and horizontal cuts by depth.
	SliceAndDice Algorithm = "slice-and-dice"
)

// ParseAlgorithm validates an algorithm name. The empty string selects
// Squarified.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case "", Squarified:
		return Squarified, nil
	case SliceAndDice, "slice", "slicedice":
		return SliceAndDice, nil
	default:
		return "", fmt.Errorf("invalid layout algorithm: %s (must be squarified or slice-and-dice)", s)
	}
}

// Options configures Layout.
type Options struct {
	Algorithm Algorithm
}

// Layout assigns a rectangle to root and every descendant. Sibling
// rectangles partition their parent's rectangle with areas proportional to
// line counts. Children with zero lines, and everything under a parent with
// no area, get a zero-size rectangle at the parent's origin.
func Layout(root *tree.Node, canvas tree.Rect, opts Options) {
	if root == nil {
		return
	}
	if opts.Algorithm == "" {
		opts.Algorithm = Squarified
	}
	place(root, canvas, opts.Algorithm)
}

func place(n *tree.Node, r tree.Rect, algo Algorithm) {
	rect := r
	n.Rect = &rect
	if len(n.Children) == 0 {
		return
	}

	if n.LineCount <= 0 || r.W <= 0 || r.H <= 0 {
		for _, c := range n.Children {
			place(c, tree.Rect{X: r.X, Y: r.Y}, algo)
		}
		return
	}

	var rects []tree.Rect
	switch algo {
	case SliceAndDice:
		rects = sliceAndDice(n.Children, r, n.Depth%2 == 0)
	default:
		rects = squarify(n.Children, r)
	}
	for i, c := range n.Children {
		place(c, rects[i], algo)
	}
}

// sliceAndDice cuts r into strips in child order. vertical cuts split the
// width, otherwise the height is split.
func sliceAndDice(children []*tree.Node, r tree.Rect, vertical bool) []tree.Rect {
	total := 0
	for _, c := range children {
		total += positive(c.LineCount)
	}

	rects := make([]tree.Rect, len(children))
	last := lastPositive(children)
	offset := 0.0
	length := r.H
	if vertical {
		length = r.W
	}

	for i, c := range children {
		if c.LineCount <= 0 {
			rects[i] = zeroAt(r, vertical, offset)
			continue
		}
		size := length * float64(c.LineCount) / float64(total)
		if i == last {
			size = length - offset
		}
		if vertical {
			rects[i] = tree.Rect{X: r.X + offset, Y: r.Y, W: size, H: r.H}
		} else {
			rects[i] = tree.Rect{X: r.X, Y: r.Y + offset, W: r.W, H: size}
		}
		offset += size
	}
	return rects
}

type item struct {
	index int
	area  float64
}

// squarify lays children out in rows along the shorter side of the
// remaining space, adding items to a row while that does not worsen the
// row's worst aspect ratio. Children are placed largest first; the result
// is indexed like children.
func squarify(children []*tree.Node, r tree.Rect) []tree.Rect {
	rects := make([]tree.Rect, len(children))

	total := 0
	for _, c := range children {
		total += positive(c.LineCount)
	}
	area := r.Area()

	var items []item
	for i, c := range children {
		if c.LineCount <= 0 {
			rects[i] = tree.Rect{X: r.X, Y: r.Y}
			continue
		}
		items = append(items, item{index: i, area: area * float64(c.LineCount) / float64(total)})
	}
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].area > items[b].area
	})

	free := r
	for len(items) > 0 {
		short := free.W
		if free.H < short {
			short = free.H
		}

		n := 1
		rowSum := items[0].area
		for n < len(items) {
			next := rowSum + items[n].area
			if worst(items[:n+1], next, short) > worst(items[:n], rowSum, short) {
				break
			}
			rowSum = next
			n++
		}

		free = layoutRow(items[:n], rowSum, free, n == len(items), rects)
		items = items[n:]
	}
	return rects
}

// worst returns the largest aspect ratio in a row of the given total area
// laid along a side of length short.
func worst(row []item, sum, short float64) float64 {
	if sum <= 0 || short <= 0 {
		return 0
	}
	minA, maxA := row[0].area, row[0].area
	for _, it := range row[1:] {
		if it.area < minA {
			minA = it.area
		}
		if it.area > maxA {
			maxA = it.area
		}
	}
	s2 := short * short
	sum2 := sum * sum
	a := s2 * maxA / sum2
	b := sum2 / (s2 * minA)
	if a > b {
		return a
	}
	return b
}

// layoutRow places one row into free and returns the space left over. The
// final row consumes all of free so floating-point drift never leaves a gap.
func layoutRow(row []item, sum float64, free tree.Rect, final bool, out []tree.Rect) tree.Rect {
	if free.W >= free.H {
		// Column on the left edge.
		width := free.W
		if !final {
			width = sum / free.H
		}
		y := free.Y
		for k, it := range row {
			h := it.area / width
			if k == len(row)-1 {
				h = free.Y + free.H - y
			}
			out[it.index] = tree.Rect{X: free.X, Y: y, W: width, H: h}
			y += h
		}
		return tree.Rect{X: free.X + width, Y: free.Y, W: free.W - width, H: free.H}
	}

	// Row along the top edge.
	height := free.H
	if !final {
		height = sum / free.W
	}
	x := free.X
	for k, it := range row {
		w := it.area / height
		if k == len(row)-1 {
			w = free.X + free.W - x
		}
		out[it.index] = tree.Rect{X: x, Y: free.Y, W: w, H: height}
		x += w
	}
	return tree.Rect{X: free.X, Y: free.Y + height, W: free.W, H: free.H - height}
}

func zeroAt(r tree.Rect, vertical bool, offset float64) tree.Rect {
	if vertical {
		return tree.Rect{X: r.X + offset, Y: r.Y, H: r.H}
	}
	return tree.Rect{X: r.X, Y: r.Y + offset, W: r.W}
}

func lastPositive(children []*tree.Node) int {
	for i := len(children) - 1; i >= 0; i-- {
		if children[i].LineCount > 0 {
			return i
		}
	}
	return -1
}

func positive(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
