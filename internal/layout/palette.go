package layout

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// DefaultColors is the six-color ramp used when none is configured.
var DefaultColors = []string{"#d73a49", "#ff8c00", "#ffd700", "#32cd32", "#4169e1", "#00008b"}

// Each full trip around the palette darkens a color by darkenStep.
const (
	darkenStep = 0.12
	maxDarken  = 0.6
)

var namedColors = map[string]string{
	"black":      "#000000",
	"white":      "#ffffff",
	"red":        "#ff0000",
	"green":      "#008000",
	"blue":       "#0000ff",
	"yellow":     "#ffff00",
	"orange":     "#ffa500",
	"purple":     "#800080",
	"gray":       "#808080",
	"grey":       "#808080",
	"navy":       "#000080",
	"teal":       "#008080",
	"gold":       "#ffd700",
	"crimson":    "#dc143c",
	"darkblue":   "#00008b",
	"royalblue":  "#4169e1",
	"limegreen":  "#32cd32",
	"darkorange": "#ff8c00",
}

// Palette is an ordered list of colors assigned cyclically by depth.
type Palette struct {
	colors []colorful.Color
}

// NewPalette parses hex ("#rrggbb" or "#rgb") or basic named colors.
func NewPalette(colors []string) (*Palette, error) {
	if len(colors) == 0 {
		return nil, fmt.Errorf("at least one color is required")
	}
	p := &Palette{}
	for _, s := range colors {
		c, err := parseColor(s)
		if err != nil {
			return nil, err
		}
		p.colors = append(p.colors, c)
	}
	return p, nil
}

func parseColor(s string) (colorful.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[s]; ok {
		s = hex
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}

// Len returns the number of base colors.
func (p *Palette) Len() int {
	return len(p.colors)
}

// ColorForDepth returns the color for a tree depth: the base color at
// depth mod N, blended toward black by 12% for every full cycle through the
// palette, capped at 60%.
func (p *Palette) ColorForDepth(depth int) string {
	if depth < 0 {
		depth = 0
	}
	n := len(p.colors)
	base := p.colors[depth%n]
	cycle := depth / n
	if cycle == 0 {
		return base.Hex()
	}
	amount := darkenStep * float64(cycle)
	if amount > maxDarken {
		amount = maxDarken
	}
	black := colorful.Color{R: 0, G: 0, B: 0}
	return base.BlendLab(black, amount).Clamped().Hex()
}

// ColorAt returns the base color at index i mod N, used for legends.
func (p *Palette) ColorAt(i int) string {
	if i < 0 {
		i = -i
	}
	return p.colors[i%len(p.colors)].Hex()
}

// TextColor picks black or white text for readability on the given depth.
func (p *Palette) TextColor(depth int) string {
	c, err := colorful.Hex(p.ColorForDepth(depth))
	if err != nil {
		return "#000000"
	}
	_, _, l := c.Hsl()
	if l > 0.55 {
		return "#000000"
	}
	return "#ffffff"
}
