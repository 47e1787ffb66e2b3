package pricing

import (
	"testing"

	"bengkel-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"
)

func newTestRenderer(entries ...models.PriceEntry) *Renderer {
	return NewRenderer(NewTable(entries, zap.NewNop()))
}

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"harga_oli_castrol":    "harga_oli_castrol",
		"harga oli castrol":    "hargaolicastrol",
		"harga__oli___castrol": "harga_oli_castrol",
		" harga _ _oli ":       "harga_oli",
		"":                     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeKey(in), in)
	}
}

func TestRenderer_ReplacesKnownPlaceholder(t *testing.T) {
	r := newTestRenderer(models.PriceEntry{Placeholder: "harga_oli_castrol", Price: "Rp45.000"})

	got := r.Render(models.DomainOil, "Harga oli Castrol {{harga_oli_castrol}}")

	assert.Equal(t, "Harga oli Castrol Rp45.000", got)
}

func TestRenderer_TokenVariants(t *testing.T) {
	r := newTestRenderer(models.PriceEntry{Placeholder: "harga_ban", Price: "Rp300.000"})

	for _, in := range []string{
		"{{harga_ban}}",
		"{{ harga_ban }}",
		"{{{harga_ban}}}",
		"{ {harga_ban} }",
		"{{harga__ban}}",
		"{{harga _ban}}",
	} {
		assert.Equal(t, "Rp300.000", r.Render(models.DomainCar, in), in)
	}
}

func TestRenderer_LeavesUnknownVerbatim(t *testing.T) {
	r := newTestRenderer(models.PriceEntry{Placeholder: "harga_ban", Price: "Rp300.000"})

	in := "Ban {{harga_ban}}, velg {{ harga_velg }}"
	assert.Equal(t, "Ban Rp300.000, velg {{ harga_velg }}", r.Render(models.DomainCar, in))
}

func TestRenderer_EmptyPriceIsAMiss(t *testing.T) {
	r := newTestRenderer(models.PriceEntry{Placeholder: "harga_aki", Price: ""})

	assert.Equal(t, "{{harga_aki}}", r.Render(models.DomainCar, "{{harga_aki}}"))
}

func TestRenderer_ServiceDomainBypassed(t *testing.T) {
	r := newTestRenderer(models.PriceEntry{Placeholder: "harga_ban", Price: "Rp300.000"})

	assert.Equal(t, "{{harga_ban}}", r.Render(models.DomainService, "{{harga_ban}}"))
}

func TestRenderer_NilIsPassthrough(t *testing.T) {
	var r *Renderer
	assert.Equal(t, "{{x}}", r.Render(models.DomainOil, "{{x}}"))
	assert.Equal(t, "{{x}}", NewRenderer(nil).Render(models.DomainOil, "{{x}}"))
}

func TestTable_DomainQualifiedKeyWins(t *testing.T) {
	table := NewTable([]models.PriceEntry{
		{Placeholder: "harga_service", Price: "Rp150.000"},
		{Placeholder: "gabungan_bis_truk:harga_service", Price: "Rp400.000"},
	}, zap.NewNop())

	price, ok := table.Lookup(models.DomainTruck, "harga_service")
	require.True(t, ok)
	assert.Equal(t, "Rp400.000", price)

	price, ok = table.Lookup(models.DomainCar, "harga_service")
	require.True(t, ok)
	assert.Equal(t, "Rp150.000", price)
}

func TestTable_DuplicateKeepsFirstAndWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	table := NewTable([]models.PriceEntry{
		{Placeholder: "harga_oli", Price: "Rp40.000"},
		{Placeholder: "harga  oli", Price: "Rp99.000"},
		{Placeholder: "harga__oli", Price: "Rp50.000"},
	}, zap.New(core))

	assert.Equal(t, 2, table.Len())
	price, _ := table.Lookup(models.DomainOil, "harga_oli")
	assert.Equal(t, "Rp40.000", price)
	assert.Equal(t, 1, logs.FilterMessage("duplicate price placeholder ignored").Len())
}

func TestPlaceholders(t *testing.T) {
	keys := Placeholders("A {{harga_a}} B {{ harga  b }} C")
	assert.Equal(t, []string{"harga_a", "hargab"}, keys)
}

func TestProperty_RenderIsIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		keys := []string{"harga_oli", "harga_ban", "harga_aki", "harga_velg"}
		var entries []models.PriceEntry
		for _, k := range keys {
			if rapid.Bool().Draw(rt, "known_"+k) {
				entries = append(entries, models.PriceEntry{
					Placeholder: k,
					Price:       rapid.StringMatching(`Rp[0-9]{1,3}(\.[0-9]{3}){0,2}`).Draw(rt, "price_"+k),
				})
			}
		}
		r := newTestRenderer(entries...)

		parts := rapid.SliceOfN(rapid.OneOf(
			rapid.StringMatching(`[a-zA-Z ,.]{0,12}`),
			rapid.Custom(func(t *rapid.T) string {
				return "{{ " + rapid.SampledFrom(keys).Draw(t, "key") + " }}"
			}),
		), 0, 8).Draw(rt, "parts")

		text := ""
		for _, p := range parts {
			text += p
		}

		once := r.Render(models.DomainOil, text)
		twice := r.Render(models.DomainOil, once)
		if once != twice {
			rt.Fatalf("render not idempotent: %q -> %q -> %q", text, once, twice)
		}
	})
}
