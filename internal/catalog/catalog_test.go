package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(c Category, name string) Key { return Key{Category: c, Name: name} }

func testCards() []Card {
	return []Card{
		{Name: "Cours d'eau", Category: Source},
		{Name: "Parcellaire", Category: Source},
		{Name: "Tampon", Category: Operation},
		{Name: "Intersection", Category: Operation},
		{Name: "Resultat tampon", Category: Result},
	}
}

func TestNewValidChain(t *testing.T) {
	c, err := New(testCards(), []ChainSpec{{
		Name: "buffer",
		Steps: []Key{
			key(Source, "Cours d'eau"),
			key(Operation, "Tampon"),
			key(Result, "Resultat tampon"),
		},
	}})
	require.NoError(t, err)

	cards, chains := c.Stats()
	assert.Equal(t, 5, cards)
	assert.Equal(t, 1, chains)

	ch := c.Chain(0)
	require.Len(t, ch, 3)
	assert.Equal(t, Operation, ch[1].Category)
	assert.Equal(t, "buffer", c.Specs()[0].Name)
}

func TestNewRejects(t *testing.T) {
	tests := []struct {
		name   string
		cards  []Card
		chains []ChainSpec
		want   error
	}{
		{
			name: "no chains",
			want: ErrEmptyCatalog,
		},
		{
			name:   "empty chain",
			chains: []ChainSpec{{Name: "empty"}},
			want:   ErrMalformedChain,
		},
		{
			name:   "unknown card",
			chains: []ChainSpec{{Steps: []Key{key(Operation, "Buffer"), key(Result, "Resultat tampon")}}},
			want:   ErrUnknownCard,
		},
		{
			name:   "same name in another category is unknown",
			chains: []ChainSpec{{Steps: []Key{key(Operation, "Cours d'eau"), key(Result, "Resultat tampon")}}},
			want:   ErrUnknownCard,
		},
		{
			name:   "result before operation",
			chains: []ChainSpec{{Steps: []Key{key(Result, "Resultat tampon"), key(Operation, "Tampon")}}},
			want:   ErrMalformedChain,
		},
		{
			name:   "source after operation",
			chains: []ChainSpec{{Steps: []Key{key(Operation, "Tampon"), key(Source, "Parcellaire"), key(Result, "Resultat tampon")}}},
			want:   ErrMalformedChain,
		},
		{
			name:   "missing operation",
			chains: []ChainSpec{{Steps: []Key{key(Source, "Parcellaire"), key(Result, "Resultat tampon")}}},
			want:   ErrMalformedChain,
		},
		{
			name:   "missing result",
			chains: []ChainSpec{{Steps: []Key{key(Source, "Parcellaire"), key(Operation, "Tampon")}}},
			want:   ErrMalformedChain,
		},
		{
			name:  "duplicate card",
			cards: append(testCards(), Card{Name: "Tampon", Category: Operation}),
			want:  ErrDuplicateCard,
		},
		{
			name:  "bad category",
			cards: []Card{{Name: "Raster", Category: "layer"}},
			want:  ErrInvalidCategory,
		},
		{
			name:  "nameless card",
			cards: []Card{{Category: Result}},
			want:  ErrMalformedCard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards := tt.cards
			if cards == nil {
				cards = testCards()
			}
			_, err := New(cards, tt.chains)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestSameNameAcrossCategories(t *testing.T) {
	cards := append(testCards(), Card{Name: "Tampon", Category: Result})
	c, err := New(cards, []ChainSpec{{Steps: []Key{key(Operation, "Tampon"), key(Result, "Tampon")}}})
	require.NoError(t, err)

	op, ok := c.Lookup(key(Operation, "Tampon"))
	require.True(t, ok)
	res, ok := c.Lookup(key(Result, "Tampon"))
	require.True(t, ok)
	assert.NotEqual(t, op.Key(), res.Key())
}

func TestDrawerKeepsCatalogOrder(t *testing.T) {
	c, err := New(testCards(), []ChainSpec{{Steps: []Key{key(Operation, "Tampon"), key(Result, "Resultat tampon")}}})
	require.NoError(t, err)

	var names []string
	for _, card := range c.Drawer(Operation) {
		names = append(names, card.Name)
	}
	assert.Equal(t, []string{"Tampon", "Intersection"}, names)
	assert.Empty(t, c.Drawer(Category("other")))
}

func TestParseCategory(t *testing.T) {
	tests := map[string]Category{
		"source":     Source,
		" Operation": Operation,
		"RESULT":     Result,
		"data":       Source,
		"processing": Operation,
		"Traitement": Operation,
		"Résultat":   Result,
	}
	for in, want := range tests {
		got, err := ParseCategory(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseCategory("layer")
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	cards, chains := c.Stats()
	assert.Equal(t, 10, cards)
	assert.Equal(t, 2, chains)
	assert.Len(t, c.Drawer(Source), 2)
	assert.Len(t, c.Drawer(Operation), 6)
	assert.Len(t, c.Drawer(Result), 2)

	ch := c.Chain(1)
	require.Len(t, ch, 5)
	assert.Equal(t, "Parcellaire_déclaré", ch[1].Name)
	assert.Equal(t, "/data/cours_deau.png", ch[0].ImageRef)
}

func TestParseAliasesAndRoundTrip(t *testing.T) {
	src := []byte(`
cards:
  - {category: data, name: " River ", image: river.png}
  - {category: processing, name: Buffer}
  - {category: result, name: Zone}
chains:
  - name: legacy
    steps:
      - {category: data, name: River}
      - {category: processing, name: Buffer}
      - {category: result, name: Zone}
`)
	c, err := Parse(src)
	require.NoError(t, err)
	river, ok := c.Lookup(key(Source, "River"))
	require.True(t, ok)
	assert.Equal(t, "river.png", river.ImageRef)

	out, err := Marshal(c)
	require.NoError(t, err)
	again, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, c.Specs(), again.Specs())
	assert.Equal(t, c.Cards(), again.Cards())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cards: []\nchains: []\n"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Chains())
}
