package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/andywolf/loctreemap/internal/layout"
	"github.com/andywolf/loctreemap/internal/tree"
)

const (
	// OutputDir is where the host expects the document, relative to the
	// workspace root.
	OutputDir = ".vscode/LOC-Treemap"
	// HTMLFile is the document file name.
	HTMLFile = "treemap.html"
	// LayoutFile holds the structured document next to the HTML.
	LayoutFile = "treemap.json"
)

// Options configures Render.
type Options struct {
	Palette *layout.Palette
	Legend  []LegendItem
	Title   string
	RunID   string
}

// Renderer turns laid-out trees into documents.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the document template.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("treemap").Parse(treemapTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

type cellView struct {
	Kind            tree.Kind
	Path            string
	Name            string
	Label           string
	ShowLabel       bool
	Style           template.CSS
	EventJSON       string
	ParentEventJSON string
}

type legendView struct {
	Language string
	Label    string
	Swatch   template.CSS
}

type pageView struct {
	Title      string
	TotalLabel string
	MapStyle   template.CSS
	Cells      []cellView
	Legend     []legendView
}

// Render projects a laid-out tree into a document. It performs no layout of
// its own: the same tree and options always produce the same bytes.
func (r *Renderer) Render(root *tree.Node, opts Options) (*Document, error) {
	if root == nil || root.Rect == nil {
		return nil, fmt.Errorf("tree has not been laid out")
	}
	palette := opts.Palette
	if palette == nil {
		p, err := layout.NewPalette(layout.DefaultColors)
		if err != nil {
			return nil, err
		}
		palette = p
	}
	title := opts.Title
	if title == "" {
		title = root.Name
	}

	entries, langColors := legend(root, opts.Legend, palette)
	prims, err := project(root, palette, langColors)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		RunID:      opts.RunID,
		Title:      title,
		Width:      root.Rect.W,
		Height:     root.Rect.H,
		TotalLines: root.LineCount,
		TotalLabel: humanize.Comma(int64(root.LineCount)),
		Primitives: prims,
		Legend:     entries,
	}

	html, err := r.html(doc)
	if err != nil {
		return nil, err
	}
	doc.HTML = html
	return doc, nil
}

func (r *Renderer) html(doc *Document) ([]byte, error) {
	page := pageView{
		Title:      doc.Title,
		TotalLabel: doc.TotalLabel,
		MapStyle:   template.CSS(fmt.Sprintf("width: %.2fpx; height: %.2fpx;", doc.Width, doc.Height)),
	}

	origin := doc.Primitives[0].Rect
	for _, p := range doc.Primitives {
		if p.Rect.W <= 0 || p.Rect.H <= 0 {
			continue
		}
		ev, err := json.Marshal(p.Event)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event: %w", err)
		}
		var parentEv []byte
		if p.Parent >= 0 {
			if parentEv, err = json.Marshal(doc.Primitives[p.Parent].Event); err != nil {
				return nil, fmt.Errorf("failed to marshal event: %w", err)
			}
		}

		style := fmt.Sprintf("left: %.2fpx; top: %.2fpx; width: %.2fpx; height: %.2fpx; color: %s;",
			p.Rect.X-origin.X, p.Rect.Y-origin.Y, p.Rect.W, p.Rect.H, p.TextColor)
		if p.Kind == tree.KindFolder {
			// Folders draw as an outline over their children.
			style += fmt.Sprintf(" border-color: %s; --fill: %s;", p.Color, p.Color)
		} else {
			style += fmt.Sprintf(" background: %s;", p.Color)
		}
		if p.LanguageColor != "" {
			style += fmt.Sprintf(" border-left-color: %s;", p.LanguageColor)
		}

		page.Cells = append(page.Cells, cellView{
			Kind:            p.Kind,
			Path:            p.Path,
			Name:            p.Name,
			Label:           p.Label,
			ShowLabel:       p.ShowLabel,
			Style:           template.CSS(style),
			EventJSON:       string(ev),
			ParentEventJSON: string(parentEv),
		})
	}

	for _, e := range doc.Legend {
		page.Legend = append(page.Legend, legendView{
			Language: e.Language,
			Label:    e.Label,
			Swatch:   template.CSS("background: " + e.Color + ";"),
		})
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFiles writes the HTML document to htmlPath and the JSON layout next
// to it with a .json extension.
func WriteFiles(htmlPath string, doc *Document) (string, error) {
	if err := os.MkdirAll(filepath.Dir(htmlPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(htmlPath, doc.HTML, 0644); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}

	data, err := doc.JSON()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(LayoutPath(htmlPath), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write layout: %w", err)
	}
	return htmlPath, nil
}

// LayoutPath returns the JSON layout path that accompanies an HTML path.
func LayoutPath(htmlPath string) string {
	ext := filepath.Ext(htmlPath)
	return htmlPath[:len(htmlPath)-len(ext)] + ".json"
}
