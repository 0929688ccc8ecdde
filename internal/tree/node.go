// Package tree holds the file/folder hierarchy produced by a scan and the
// bottom-up aggregation of line counts over it.
package tree

import (
	"path"
	"strings"
)

// Kind distinguishes files from folders.
type Kind string

const (
	// KindFile is a counted source file.
	KindFile Kind = "file"
	// KindFolder is a directory with at least one counted descendant.
	KindFolder Kind = "folder"
)

// RootPath is the navigation path of the scan root.
const RootPath = "."

// Rect is a rectangle in canvas coordinates.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Area returns W*H.
func (r Rect) Area() float64 {
	return r.W * r.H
}

// Contains reports whether the point lies inside r. The left and top edges
// are inclusive, the right and bottom edges exclusive.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Node is a file or folder in the scanned hierarchy. Children are owned by
// their parent; there are no back-references.
type Node struct {
	Name string `json:"name"`
	// Path is relative to the scan root, slash-separated. The root is ".".
	Path string `json:"path"`
	Kind Kind   `json:"kind"`
	// Language is the classified language for files, and the dominant
	// child language for folders (display only).
	Language  string  `json:"language,omitempty"`
	LineCount int     `json:"line_count"`
	Depth     int     `json:"depth"`
	Children  []*Node `json:"children,omitempty"`
	// Rect is nil until layout assigns it.
	Rect *Rect `json:"rect,omitempty"`
}

// NewFolder creates an empty folder node.
func NewFolder(name, p string, depth int) *Node {
	return &Node{Name: name, Path: p, Kind: KindFolder, Depth: depth}
}

// NewFile creates a file node with a measured line count.
func NewFile(name, p, language string, lines, depth int) *Node {
	return &Node{Name: name, Path: p, Kind: KindFile, Language: language, LineCount: lines, Depth: depth}
}

// IsFolder reports whether n is a folder.
func (n *Node) IsFolder() bool {
	return n.Kind == KindFolder
}

// ChildPath joins a child name onto a parent path.
func ChildPath(parent, name string) string {
	if parent == "" || parent == RootPath {
		return name
	}
	return path.Join(parent, name)
}

// Walk visits n and every descendant in pre-order. Returning false from fn
// skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Files returns all file nodes under n in traversal order.
func Files(n *Node) []*Node {
	var files []*Node
	Walk(n, func(c *Node) bool {
		if c.Kind == KindFile {
			files = append(files, c)
		}
		return true
	})
	return files
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n *Node) int {
	total := 0
	Walk(n, func(*Node) bool {
		total++
		return true
	})
	return total
}

// Find returns the node with the given path, or nil.
func Find(n *Node, p string) *Node {
	if n == nil {
		return nil
	}
	p = strings.Trim(p, "/")
	if p == "" {
		p = RootPath
	}
	if n.Path == p {
		return n
	}
	for _, c := range n.Children {
		if c.Path == p || strings.HasPrefix(p, c.Path+"/") {
			if found := Find(c, p); found != nil {
				return found
			}
		}
	}
	return nil
}

// Languages returns the distinct file languages in the tree, in first-seen
// order.
func Languages(n *Node) []string {
	seen := make(map[string]bool)
	var langs []string
	for _, f := range Files(n) {
		if f.Language == "" || seen[f.Language] {
			continue
		}
		seen[f.Language] = true
		langs = append(langs, f.Language)
	}
	return langs
}
