package layout

import (
	"testing"
)

func TestNewPalette(t *testing.T) {
	tests := []struct {
		name    string
		colors  []string
		wantErr bool
	}{
		{"defaults", DefaultColors, false},
		{"named", []string{"Gold", "royalblue"}, false},
		{"short hex", []string{"#fff"}, false},
		{"missing hash", []string{"d73a49"}, false},
		{"empty", nil, true},
		{"garbage", []string{"not-a-color"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPalette(tt.colors)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewPalette(%v) error = %v, wantErr %v", tt.colors, err, tt.wantErr)
			}
		})
	}
}

func TestPalette_ColorForDepth(t *testing.T) {
	p, err := NewPalette(DefaultColors)
	if err != nil {
		t.Fatal(err)
	}

	for depth, want := range DefaultColors {
		if got := p.ColorForDepth(depth); got != want {
			t.Errorf("ColorForDepth(%d) = %s, want %s", depth, got, want)
		}
	}

	// second trip around the ramp is darker but stable
	again := p.ColorForDepth(6)
	if again == DefaultColors[0] {
		t.Errorf("expected depth 6 to be darkened, got base color %s", again)
	}
	if again != p.ColorForDepth(6) {
		t.Error("ColorForDepth must be a pure function of depth")
	}
	if p.ColorForDepth(12) == again {
		t.Error("expected the third cycle to differ from the second")
	}
	if p.ColorForDepth(-3) != DefaultColors[0] {
		t.Error("negative depth should clamp to 0")
	}
}

func TestPalette_ColorAtAndText(t *testing.T) {
	p, err := NewPalette([]string{"#000000", "#ffffff"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}
	if got := p.ColorAt(3); got != "#ffffff" {
		t.Errorf("ColorAt(3) = %s, want #ffffff", got)
	}
	if got := p.TextColor(0); got != "#ffffff" {
		t.Errorf("TextColor on black = %s, want #ffffff", got)
	}
	if got := p.TextColor(1); got != "#000000" {
		t.Errorf("TextColor on white = %s, want #000000", got)
	}
}
