// Package textwidth measures caption text in terminal cells.
package textwidth

import (
	"github.com/mattn/go-runewidth"

	"livecap/linegen"
)

// Cells measures strings in monospace terminal cells, counting East Asian
// wide characters as two.
type Cells struct{}

func (Cells) Width(s string) float64 {
	return float64(runewidth.StringWidth(s))
}

// Cache memoizes widths of an underlying measurer. Tokens repeat across
// updates, so most lookups hit.
type Cache struct {
	m     linegen.Metrics
	limit int
	seen  map[string]float64
}

func NewCache(m linegen.Metrics, limit int) *Cache {
	return &Cache{m: m, limit: limit, seen: make(map[string]float64)}
}

func (c *Cache) Width(s string) float64 {
	if w, ok := c.seen[s]; ok {
		return w
	}
	w := c.m.Width(s)
	if len(c.seen) >= c.limit {
		clear(c.seen)
	}
	c.seen[s] = w
	return w
}

// Reset drops cached widths, e.g. after a font or terminal change.
func (c *Cache) Reset() { clear(c.seen) }
