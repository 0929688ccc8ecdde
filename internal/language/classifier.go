package language

import (
	"fmt"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

const cacheSize = 256

// Classification is the result of classifying an extension.
type Classification struct {
	Language   string
	ColorIndex int
}

type cacheEntry struct {
	class Classification
	ok    bool
}

// Classifier resolves extensions against the enabled languages of a
// registry. It is safe for concurrent use.
type Classifier struct {
	byExt       map[string]Classification
	paletteSize int
	cache       *lru.Cache[string, cacheEntry]
}

// NewClassifier builds a classifier for the enabled languages of reg.
// paletteSize bounds the color index; values below 1 are treated as 1.
// When two enabled languages claim the same extension the earlier one wins.
func NewClassifier(reg *Registry, paletteSize int) (*Classifier, error) {
	if reg == nil {
		return nil, fmt.Errorf("language registry is required")
	}
	if paletteSize < 1 {
		paletteSize = 1
	}
	cache, err := lru.New[string, cacheEntry](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create classification cache: %w", err)
	}

	c := &Classifier{
		byExt:       make(map[string]Classification),
		paletteSize: paletteSize,
		cache:       cache,
	}
	for i, lang := range reg.Enabled() {
		class := Classification{Language: lang.Name, ColorIndex: i % paletteSize}
		for _, ext := range lang.Extensions {
			if _, taken := c.byExt[ext]; taken {
				continue
			}
			c.byExt[ext] = class
		}
	}
	return c, nil
}

// Classify returns the language of ext. The second result is false for
// unknown extensions and extensions of disabled languages.
func (c *Classifier) Classify(ext string) (Classification, bool) {
	ext = NormalizeExtension(ext)
	if entry, hit := c.cache.Get(ext); hit {
		return entry.class, entry.ok
	}
	class, ok := c.byExt[ext]
	c.cache.Add(ext, cacheEntry{class: class, ok: ok})
	return class, ok
}

// ClassifyPath classifies a file by the extension of its name.
func (c *Classifier) ClassifyPath(path string) (Classification, bool) {
	return c.Classify(filepath.Ext(path))
}

// Legend returns the enabled languages with their color indexes, in
// registry order.
func (c *Classifier) Legend(reg *Registry) []Classification {
	var legend []Classification
	for i, lang := range reg.Enabled() {
		legend = append(legend, Classification{Language: lang.Name, ColorIndex: i % c.paletteSize})
	}
	return legend
}
