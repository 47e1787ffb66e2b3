package pricing

import (
	"regexp"

	"bengkel-bot/internal/models"
)

// placeholderPattern matches {{ key }} with any number of braces on either
// side and optional inner whitespace.
var placeholderPattern = regexp.MustCompile(`\{+\s*\{+\s*([A-Za-z0-9 _\-]+?)\s*\}+\s*\}+`)

type Renderer struct {
	table *Table
}

func NewRenderer(table *Table) *Renderer {
	return &Renderer{table: table}
}

// Render substitutes every known placeholder in text with its price. Unknown
// placeholders are left verbatim. Service answers are returned untouched.
func (r *Renderer) Render(domain models.Domain, text string) string {
	if r == nil || r.table.Len() == 0 || !domain.PriceBearing() {
		return text
	}
	return placeholderPattern.ReplaceAllStringFunc(text, func(token string) string {
		sub := placeholderPattern.FindStringSubmatch(token)
		if len(sub) < 2 {
			return token
		}
		if price, ok := r.table.Lookup(domain, sub[1]); ok {
			return price
		}
		return token
	})
}

// Placeholders lists the normalised keys referenced by text, in order of
// appearance.
func Placeholders(text string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(text, -1)
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		keys = append(keys, NormalizeKey(m[1]))
	}
	return keys
}
