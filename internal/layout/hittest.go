package layout

import (
	"fmt"
	"math"

	"github.com/andywolf/loctreemap/internal/tree"
)

// HitTest returns the deepest node whose rectangle contains (x, y), or nil
// when the point is outside the laid-out root.
func HitTest(root *tree.Node, x, y float64) *tree.Node {
	chain := HitPath(root, x, y)
	if len(chain) == 0 {
		return nil
	}
	return chain[len(chain)-1]
}

// HitPath returns the nodes containing (x, y) from root down to the deepest
// one. It is empty when the point is outside the laid-out root.
func HitPath(root *tree.Node, x, y float64) []*tree.Node {
	if root == nil || root.Rect == nil || !root.Rect.Contains(x, y) {
		return nil
	}
	chain := []*tree.Node{root}
	for n := root; ; {
		var next *tree.Node
		for _, c := range n.Children {
			if c.Rect != nil && c.Rect.Contains(x, y) {
				next = c
				break
			}
		}
		if next == nil {
			return chain
		}
		chain = append(chain, next)
		n = next
	}
}

// InvariantViolation reports a folder whose children do not partition its
// rectangle. It signals a layout bug, not a user error.
type InvariantViolation struct {
	Path   string
	Reason string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("layout invariant violated at %s: %s", e.Path, e.Reason)
}

// Verify checks that every node has a rectangle, that children stay inside
// their parent, and that child areas sum to the parent's area and follow
// their line-count share. eps is a relative tolerance.
func Verify(root *tree.Node, eps float64) error {
	var violation error
	tree.Walk(root, func(n *tree.Node) bool {
		if violation != nil {
			return false
		}
		if n.Rect == nil {
			violation = &InvariantViolation{Path: n.Path, Reason: "missing rectangle"}
			return false
		}
		if len(n.Children) == 0 {
			return true
		}

		parent := *n.Rect
		tol := eps * math.Max(1, parent.Area())
		sum := 0.0
		for _, c := range n.Children {
			if c.Rect == nil {
				violation = &InvariantViolation{Path: c.Path, Reason: "missing rectangle"}
				return false
			}
			r := *c.Rect
			if r.W < 0 || r.H < 0 {
				violation = &InvariantViolation{Path: c.Path, Reason: "negative size"}
				return false
			}
			if r.X < parent.X-tol || r.Y < parent.Y-tol ||
				r.X+r.W > parent.X+parent.W+tol || r.Y+r.H > parent.Y+parent.H+tol {
				violation = &InvariantViolation{Path: c.Path, Reason: "outside parent"}
				return false
			}
			sum += r.Area()

			if n.LineCount > 0 {
				want := parent.Area() * float64(c.LineCount) / float64(n.LineCount)
				if math.Abs(r.Area()-want) > tol {
					violation = &InvariantViolation{
						Path:   c.Path,
						Reason: fmt.Sprintf("area %.4f, want %.4f", r.Area(), want),
					}
					return false
				}
			}
		}

		if n.LineCount > 0 && math.Abs(sum-parent.Area()) > tol {
			violation = &InvariantViolation{
				Path:   n.Path,
				Reason: fmt.Sprintf("children cover %.4f of %.4f", sum, parent.Area()),
			}
			return false
		}
		return true
	})
	return violation
}
