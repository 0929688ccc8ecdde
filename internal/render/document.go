// Package render projects a laid-out tree into a self-contained HTML
// treemap and defines the navigation events its cells emit.
package render

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/andywolf/loctreemap/internal/layout"
	"github.com/andywolf/loctreemap/internal/tree"
)

// Minimum cell size, in canvas units, for drawing a text label.
const (
	labelMinWidth  = 48
	labelMinHeight = 16
)

// Primitive is one drawn cell.
type Primitive struct {
	Path          string          `json:"path"`
	Name          string          `json:"name"`
	Kind          tree.Kind       `json:"kind"`
	Language      string          `json:"language,omitempty"`
	LineCount     int             `json:"line_count"`
	Label         string          `json:"label"`
	Depth         int             `json:"depth"`
	Rect          tree.Rect       `json:"rect"`
	Color         string          `json:"color"`
	TextColor     string          `json:"text_color"`
	LanguageColor string          `json:"language_color,omitempty"`
	ShowLabel     bool            `json:"show_label"`
	Event         NavigationEvent `json:"event"`
	// Parent is the index of the enclosing folder primitive, -1 for the root.
	Parent int `json:"parent"`
}

// LegendItem pairs a language with its palette slot.
type LegendItem struct {
	Language   string
	ColorIndex int
}

// LegendEntry is a rendered legend row.
type LegendEntry struct {
	Language  string `json:"language"`
	Color     string `json:"color"`
	LineCount int    `json:"line_count"`
	Label     string `json:"label"`
}

// Document is the rendered treemap. HTML is self-contained; the remaining
// fields are the same data in structured form.
type Document struct {
	RunID      string        `json:"run_id,omitempty"`
	Title      string        `json:"title"`
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	TotalLines int           `json:"total_lines"`
	TotalLabel string        `json:"total_label"`
	Primitives []Primitive   `json:"primitives"`
	Legend     []LegendEntry `json:"legend,omitempty"`
	HTML       []byte        `json:"-"`
}

// JSON returns the structured document.
func (d *Document) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}

// LoadDocument reads a document previously written with JSON.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	return &doc, nil
}

// HitTest returns the deepest primitive containing (x, y). Siblings never
// overlap, so there is at most one match per depth.
func (d *Document) HitTest(x, y float64) (Primitive, bool) {
	i := d.hit(x, y)
	if i < 0 {
		return Primitive{}, false
	}
	return d.Primitives[i], true
}

// RevealAt returns the folder enclosing the deepest primitive at (x, y),
// the target of an alt-click in the document. The root reveals itself.
func (d *Document) RevealAt(x, y float64) (Primitive, bool) {
	i := d.hit(x, y)
	if i < 0 {
		return Primitive{}, false
	}
	if parent := d.Primitives[i].Parent; parent >= 0 {
		i = parent
	}
	return d.Primitives[i], true
}

func (d *Document) hit(x, y float64) int {
	best := -1
	for i, p := range d.Primitives {
		if p.Rect.Contains(x, y) && (best < 0 || p.Depth > d.Primitives[best].Depth) {
			best = i
		}
	}
	return best
}

// Find returns the primitive with the given path.
func (d *Document) Find(path string) (Primitive, bool) {
	for _, p := range d.Primitives {
		if p.Path == path {
			return p, true
		}
	}
	return Primitive{}, false
}

// project flattens a laid-out tree into primitives.
func project(root *tree.Node, palette *layout.Palette, langColors map[string]string) ([]Primitive, error) {
	var prims []Primitive
	var visit func(n *tree.Node, parent int) error
	visit = func(n *tree.Node, parent int) error {
		if n.Rect == nil {
			return fmt.Errorf("node %s has no layout", n.Path)
		}
		p := Primitive{
			Path:      n.Path,
			Name:      n.Name,
			Kind:      n.Kind,
			Language:  n.Language,
			LineCount: n.LineCount,
			Label:     humanize.Comma(int64(n.LineCount)),
			Depth:     n.Depth,
			Rect:      *n.Rect,
			Color:     palette.ColorForDepth(n.Depth),
			TextColor: palette.TextColor(n.Depth),
			ShowLabel: n.Rect.W >= labelMinWidth && n.Rect.H >= labelMinHeight,
			Event:     EventFor(n),
			Parent:    parent,
		}
		if n.Kind == tree.KindFile {
			p.LanguageColor = langColors[n.Language]
		}
		idx := len(prims)
		prims = append(prims, p)
		for _, c := range n.Children {
			if err := visit(c, idx); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(root, -1); err != nil {
		return nil, err
	}
	return prims, nil
}

// legend builds entries for the configured languages that occur in the
// tree, in configured order.
func legend(root *tree.Node, items []LegendItem, palette *layout.Palette) ([]LegendEntry, map[string]string) {
	lines := make(map[string]int)
	for _, f := range tree.Files(root) {
		lines[f.Language] += f.LineCount
	}
	var entries []LegendEntry
	colors := make(map[string]string)
	for _, it := range items {
		color := palette.ColorAt(it.ColorIndex)
		colors[it.Language] = color
		n, ok := lines[it.Language]
		if !ok {
			continue
		}
		entries = append(entries, LegendEntry{
			Language:  it.Language,
			Color:     color,
			LineCount: n,
			Label:     humanize.Comma(int64(n)),
		})
	}
	return entries, colors
}
