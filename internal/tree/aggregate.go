package tree

// Aggregate recomputes folder line counts and dominant languages in a single
// post-order pass. File nodes are left untouched, so running it again on the
// same tree yields the same counts.
func Aggregate(root *Node) {
	if root == nil {
		return
	}
	aggregate(root)
}

func aggregate(n *Node) int {
	if n.Kind == KindFile {
		return n.LineCount
	}

	sum := 0
	var dominant *Node
	for _, c := range n.Children {
		sum += aggregate(c)
		// Strictly greater keeps the first child on ties.
		if dominant == nil || c.LineCount > dominant.LineCount {
			dominant = c
		}
	}
	n.LineCount = sum
	if dominant != nil {
		n.Language = dominant.Language
	} else {
		n.Language = ""
	}
	return sum
}

// Prune removes folders without any file descendants. It returns false when
// n itself is an empty folder and should be dropped by its parent.
func Prune(n *Node) bool {
	if n == nil {
		return false
	}
	if n.Kind == KindFile {
		return true
	}
	kept := n.Children[:0]
	for _, c := range n.Children {
		if Prune(c) {
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(n.Children); i++ {
		n.Children[i] = nil
	}
	n.Children = kept
	return len(kept) > 0
}
