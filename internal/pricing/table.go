package pricing

import (
	"regexp"
	"strings"

	"bengkel-bot/internal/models"

	"go.uber.org/zap"
)

var underscoreRun = regexp.MustCompile(`_+`)

// NormalizeKey drops every space and collapses underscore runs, so
// "harga oli__castrol" and "hargaoli_castrol" address the same price.
func NormalizeKey(raw string) string {
	key := strings.ReplaceAll(raw, " ", "")
	return underscoreRun.ReplaceAllString(key, "_")
}

// Table maps normalised placeholder keys to their raw price text. A nil
// Table behaves as empty.
type Table struct {
	prices map[string]string
}

// NewTable builds a lookup table from price rows. Keys are normalised on
// load; when two rows normalise to the same key the first one wins.
func NewTable(entries []models.PriceEntry, logger *zap.Logger) *Table {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Table{prices: make(map[string]string, len(entries))}
	for _, e := range entries {
		key := NormalizeKey(e.Placeholder)
		if key == "" {
			continue
		}
		if _, dup := t.prices[key]; dup {
			logger.Warn("duplicate price placeholder ignored",
				zap.String("placeholder", e.Placeholder),
				zap.String("key", key))
			continue
		}
		t.prices[key] = e.Price
	}
	return t
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.prices)
}

// Lookup resolves key for domain. A domain-qualified row ("oli_fix:key")
// shadows the plain one. Empty prices count as misses.
func (t *Table) Lookup(domain models.Domain, key string) (string, bool) {
	if t == nil {
		return "", false
	}
	key = NormalizeKey(key)
	if domain != "" {
		if price, ok := t.prices[string(domain)+":"+key]; ok && price != "" {
			return price, true
		}
	}
	price, ok := t.prices[key]
	if !ok || price == "" {
		return "", false
	}
	return price, true
}
