package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pierridotite/QGISGame/internal/advisory"
	"github.com/pierridotite/QGISGame/internal/catalog"
)

// scripted returns queued values and records the bounds it was asked for.
type scripted struct {
	vals   []int
	bounds []int
}

func (s *scripted) IntN(n int) int {
	s.bounds = append(s.bounds, n)
	v := s.vals[0]
	s.vals = s.vals[1:]
	return v
}

func defaultCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return c
}

func card(t *testing.T, c *catalog.Catalog, cat catalog.Category, name string) catalog.Card {
	t.Helper()
	out, ok := c.Lookup(catalog.Key{Category: cat, Name: name})
	require.True(t, ok, "missing card %s/%s", cat, name)
	return out
}

func emptyPositions(v RoundView) []int {
	var out []int
	for i, s := range v.Board {
		if s.Empty() {
			out = append(out, i)
		}
	}
	return out
}

func TestStartRoundHidesExactlyOnePosition(t *testing.T) {
	cat := defaultCatalog(t)
	for seed := uint64(0); seed < 64; seed++ {
		e, err := New(cat, NewSource(seed))
		require.NoError(t, err)

		v := e.View()
		require.Equal(t, []int{v.HiddenPosition}, emptyPositions(v), "seed %d", seed)
		assert.Equal(t, Unresolved, v.Outcome.Kind)
		assert.True(t, v.Advisory.IsZero())
		assert.False(t, v.CanWithdraw)
		assert.Equal(t, e.r.expected.Category, v.HiddenCategory)
	}
}

func TestStartRoundDrawsChainThenPosition(t *testing.T) {
	cat := defaultCatalog(t)
	src := &scripted{vals: []int{1, 3}}

	e, err := New(cat, src)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 5}, src.bounds)
	v := e.View()
	assert.Equal(t, 3, v.HiddenPosition)
	assert.Equal(t, catalog.Operation, v.HiddenCategory)
	assert.Equal(t, "Sélection spatiale", e.r.expected.Name)

	chain := cat.Chain(1)
	for i, s := range v.Board {
		if i == v.HiddenPosition {
			continue
		}
		require.False(t, s.Empty())
		assert.Equal(t, chain[i], *s.Card)
	}
}

func TestBufferChainWalkthrough(t *testing.T) {
	cat := defaultCatalog(t)
	e, err := New(cat, &scripted{vals: []int{0, 1}})
	require.NoError(t, err)
	require.Equal(t, "Tampon", e.r.expected.Name)

	v := e.Submit()
	assert.Equal(t, NoCardPlaced, v.Outcome.Kind)
	assert.Equal(t, advisory.NoCardPlaced, v.Advisory.Kind)

	v = e.Place(card(t, cat, catalog.Operation, "Intersection"))
	assert.Equal(t, Unresolved, v.Outcome.Kind)
	assert.True(t, v.Advisory.IsZero())
	assert.True(t, v.CanWithdraw)

	v = e.Submit()
	assert.Equal(t, WrongCard, v.Outcome.Kind)
	assert.Equal(t, "Mauvaise réponse, essayez encore.", v.Advisory.String())

	v = e.Withdraw()
	assert.Equal(t, Unresolved, v.Outcome.Kind)
	assert.Equal(t, advisory.CardRemoved, v.Advisory.Kind)
	assert.False(t, v.CanWithdraw)

	e.Place(card(t, cat, catalog.Operation, "Tampon"))
	v = e.Submit()
	assert.Equal(t, Correct, v.Outcome.Kind)
	assert.Equal(t, "Correct !", v.Advisory.String())

	// Correct does not advance the round.
	assert.Equal(t, 1, v.Number)
	placed, ok := v.Placed()
	require.True(t, ok)
	assert.Equal(t, "Tampon", placed.Name)
}

func TestWrongCategory(t *testing.T) {
	cat := defaultCatalog(t)
	e, err := New(cat, &scripted{vals: []int{0, 0}})
	require.NoError(t, err)

	e.Place(card(t, cat, catalog.Result, "Tableau_stat"))
	v := e.Submit()
	assert.Equal(t, Outcome{Kind: WrongCategory, Expected: catalog.Source}, v.Outcome)
	assert.Equal(t, "Type incorrect. Attendu : Donnée.", v.Advisory.String())
}

func TestCategoryOutranksIdentity(t *testing.T) {
	cards := []catalog.Card{
		{Name: "Cours d'eau", Category: catalog.Source},
		{Name: "Tampon", Category: catalog.Operation},
		{Name: "Tampon", Category: catalog.Result},
	}
	cat, err := catalog.New(cards, []catalog.ChainSpec{{Steps: []catalog.Key{
		{Category: catalog.Source, Name: "Cours d'eau"},
		{Category: catalog.Operation, Name: "Tampon"},
		{Category: catalog.Result, Name: "Tampon"},
	}}})
	require.NoError(t, err)

	e, err := New(cat, &scripted{vals: []int{0, 1}})
	require.NoError(t, err)

	e.Place(cards[2])
	v := e.Submit()
	assert.Equal(t, WrongCategory, v.Outcome.Kind)
	assert.Equal(t, catalog.Operation, v.Outcome.Expected)

	e.Withdraw()
	e.Place(cards[1])
	assert.Equal(t, Correct, e.Submit().Outcome.Kind)
}

func TestJudge(t *testing.T) {
	expected := catalog.Card{Name: "Tampon", Category: catalog.Operation}
	tests := []struct {
		name string
		slot Slot
		want Outcome
	}{
		{"empty", Slot{}, Outcome{Kind: NoCardPlaced}},
		{"other category", filled(catalog.Card{Name: "Zone", Category: catalog.Result}), Outcome{Kind: WrongCategory, Expected: catalog.Operation}},
		{"same name other category", filled(catalog.Card{Name: "Tampon", Category: catalog.Source}), Outcome{Kind: WrongCategory, Expected: catalog.Operation}},
		{"other card", filled(catalog.Card{Name: "Intersection", Category: catalog.Operation}), Outcome{Kind: WrongCard}},
		{"match ignores image", filled(catalog.Card{Name: "Tampon", Category: catalog.Operation, ImageRef: "x.png"}), Outcome{Kind: Correct}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, notice := Judge(tt.slot, expected)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, string(tt.want.Kind), string(notice.Kind))
		})
	}
}

func TestPlaceOnOccupiedSlotIsIgnored(t *testing.T) {
	cat := defaultCatalog(t)
	e, err := New(cat, &scripted{vals: []int{0, 1}})
	require.NoError(t, err)

	e.Place(card(t, cat, catalog.Operation, "Intersection"))
	e.Submit()
	v := e.Place(card(t, cat, catalog.Operation, "Tampon"))

	placed, _ := v.Placed()
	assert.Equal(t, "Intersection", placed.Name)
	assert.Equal(t, WrongCard, v.Outcome.Kind, "ignored drop must not reset the outcome")
}

func TestPlaceAtOtherIndexIsIgnored(t *testing.T) {
	cat := defaultCatalog(t)
	e, err := New(cat, &scripted{vals: []int{0, 1}})
	require.NoError(t, err)
	before := e.View()

	for _, i := range []int{-1, 0, 2, 3, 100} {
		v := e.PlaceAt(i, card(t, cat, catalog.Operation, "Tampon"))
		assert.Equal(t, before, v, "index %d", i)
	}

	v := e.PlaceAt(1, card(t, cat, catalog.Operation, "Tampon"))
	assert.True(t, v.CanWithdraw)
}

func TestPlaceThenWithdrawRestoresEmpty(t *testing.T) {
	cat := defaultCatalog(t)
	e, err := New(cat, NewSource(7))
	require.NoError(t, err)

	for _, c := range cat.Cards() {
		e.Place(c)
		v := e.Withdraw()
		assert.True(t, v.Board[v.HiddenPosition].Empty(), c.Name)
		assert.Equal(t, []int{v.HiddenPosition}, emptyPositions(v))
	}
}

func TestWithdrawEmptySlotChangesNothing(t *testing.T) {
	cat := defaultCatalog(t)
	e, err := New(cat, NewSource(3))
	require.NoError(t, err)

	submitted := e.Submit()
	assert.Equal(t, submitted, e.Withdraw())
	assert.Equal(t, submitted, e.Withdraw())
}

func TestSubmitIsIdempotent(t *testing.T) {
	cat := defaultCatalog(t)
	for _, c := range cat.Cards() {
		e, err := New(cat, NewSource(11))
		require.NoError(t, err)

		e.Place(c)
		first := e.Submit()
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, e.Submit(), c.Name)
		}
	}
}

func TestStartRoundReplacesState(t *testing.T) {
	cat := defaultCatalog(t)
	e, err := New(cat, &scripted{vals: []int{0, 1, 0, 1, 1, 4}})
	require.NoError(t, err)

	e.Place(card(t, cat, catalog.Operation, "Tampon"))
	require.Equal(t, Correct, e.Submit().Outcome.Kind)

	v, err := e.StartRound()
	require.NoError(t, err)
	assert.Equal(t, 2, v.Number)
	assert.Equal(t, Unresolved, v.Outcome.Kind)
	assert.True(t, v.Advisory.IsZero())
	assert.Equal(t, []int{1}, emptyPositions(v))

	e.Place(card(t, cat, catalog.Operation, "Intersection"))
	require.Equal(t, advisory.CardRemoved, e.Withdraw().Advisory.Kind)
	v, err = e.StartRound()
	require.NoError(t, err)
	assert.True(t, v.Advisory.IsZero(), "advisory must not survive a new round")
	assert.Len(t, v.Board, 5)
	assert.Equal(t, catalog.Result, v.HiddenCategory)
}

func TestEmptyCatalog(t *testing.T) {
	_, err := New(nil, NewSource(1))
	assert.ErrorIs(t, err, catalog.ErrEmptyCatalog)

	var e Engine
	_, err = e.StartRound()
	assert.ErrorIs(t, err, catalog.ErrEmptyCatalog)

	// Operations before any round are no-ops.
	assert.Empty(t, e.Submit().Board)
	assert.Empty(t, e.Withdraw().Board)
	assert.Empty(t, e.Place(catalog.Card{Name: "Tampon", Category: catalog.Operation}).Board)
}

func TestViewIsASnapshot(t *testing.T) {
	cat := defaultCatalog(t)
	e, err := New(cat, &scripted{vals: []int{0, 1}})
	require.NoError(t, err)

	v := e.View()
	v.Board[0].Card.Name = "changed"
	v.Board[1] = filled(catalog.Card{Name: "Tampon", Category: catalog.Operation})

	again := e.View()
	assert.Equal(t, "Cours d'eau", again.Board[0].Card.Name)
	assert.True(t, again.Board[1].Empty())
}

func TestNewSourceIsDeterministic(t *testing.T) {
	a, b := NewSource(42), NewSource(42)
	for i := 0; i < 16; i++ {
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
	}

	src, err := NewRandomSource()
	require.NoError(t, err)
	n := src.IntN(5)
	assert.True(t, n >= 0 && n < 5)
}
