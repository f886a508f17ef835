// Package portfolio holds the tracked positions. Prices and day changes
// stored here are fallbacks shown when live quotes are unavailable.
package portfolio

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed holdings.yaml
var defaultHoldings []byte

// Holding is one position as displayed on the portfolio page.
type Holding struct {
	Symbol    string `yaml:"symbol" json:"symbol"`
	Name      string `yaml:"name" json:"name"`
	Shares    string `yaml:"shares" json:"shares"`
	Price     string `yaml:"price" json:"price"`
	DayChange string `yaml:"day_change" json:"dayChange"`
}

// Holdings is an ordered list of positions.
type Holdings []Holding

// Symbols returns the holding symbols in file order.
func (h Holdings) Symbols() []string {
	out := make([]string, 0, len(h))
	for _, holding := range h {
		out = append(out, holding.Symbol)
	}
	return out
}

// Load reads holdings from path, or the built-in list when path is empty.
func Load(path string) (Holdings, error) {
	if path == "" {
		return Parse(defaultHoldings)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read holdings: %w", err)
	}
	h, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse holdings %s: %w", path, err)
	}
	return h, nil
}

// Default returns the built-in holdings.
func Default() Holdings {
	h, err := Parse(defaultHoldings)
	if err != nil {
		panic(err)
	}
	return h
}

// Parse decodes a holdings YAML document. Symbols are upper-cased and
// must be unique.
func Parse(data []byte) (Holdings, error) {
	var doc struct {
		Holdings Holdings `yaml:"holdings"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Holdings) == 0 {
		return nil, errors.New("no holdings defined")
	}

	seen := make(map[string]bool, len(doc.Holdings))
	for i := range doc.Holdings {
		h := &doc.Holdings[i]
		h.Symbol = strings.ToUpper(strings.TrimSpace(h.Symbol))
		if h.Symbol == "" {
			return nil, fmt.Errorf("holding %d has no symbol", i)
		}
		if seen[h.Symbol] {
			return nil, fmt.Errorf("duplicate holding %s", h.Symbol)
		}
		seen[h.Symbol] = true
		if h.Name == "" {
			h.Name = h.Symbol
		}
	}
	return doc.Holdings, nil
}
