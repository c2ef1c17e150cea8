// internal/catalog/catalog.go
//
// The card registry and the fixed set of chains a round is drawn from.
//
// Responsibilities:
//   - Hold every card once, keyed by its (category, name) identity.
//   - Partition cards by category for the drawer, in catalog order.
//   - Validate chains at construction: non-empty, only known cards, and the
//     source* operation+ result+ shape.
//
// A Catalog is immutable after New and safe for concurrent reads.

package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCatalog means there is no chain to draw a round from.
	ErrEmptyCatalog    = errors.New("catalog: no chains")
	ErrMalformedChain  = errors.New("catalog: malformed chain")
	ErrUnknownCard     = errors.New("catalog: unknown card")
	ErrDuplicateCard   = errors.New("catalog: duplicate card")
	ErrMalformedCard   = errors.New("catalog: malformed card")
	ErrInvalidCategory = errors.New("catalog: invalid category")
)

// Chain is an ordered, validated sequence of cards.
type Chain []Card

// Keys returns the identities of the chain steps in order.
func (ch Chain) Keys() []Key {
	out := make([]Key, len(ch))
	for i, c := range ch {
		out[i] = c.Key()
	}
	return out
}

// ChainSpec describes a chain by the identities of its steps.
type ChainSpec struct {
	Name  string `yaml:"name"`
	Steps []Key  `yaml:"steps"`
}

// Catalog is the static registry of cards and chains.
type Catalog struct {
	cards  []Card
	index  map[Key]int
	chains []Chain
	names  []string
}

// New builds a catalog from cards and chain specs.
// Returns ErrEmptyCatalog if chains is empty, or a wrapped validation error.
func New(cards []Card, chains []ChainSpec) (*Catalog, error) {
	c := &Catalog{
		cards: make([]Card, 0, len(cards)),
		index: make(map[Key]int, len(cards)),
	}
	for _, card := range cards {
		if !card.Category.Valid() {
			return nil, fmt.Errorf("card %q: %w: %q", card.Name, ErrInvalidCategory, card.Category)
		}
		if card.Name == "" {
			return nil, fmt.Errorf("%w: card without a name in %s", ErrMalformedCard, card.Category)
		}
		if _, dup := c.index[card.Key()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCard, card.Key())
		}
		c.index[card.Key()] = len(c.cards)
		c.cards = append(c.cards, card)
	}

	if len(chains) == 0 {
		return nil, ErrEmptyCatalog
	}
	for i, spec := range chains {
		ch, err := c.resolve(spec.Steps)
		if err != nil {
			return nil, fmt.Errorf("chain %d %q: %w", i, spec.Name, err)
		}
		c.chains = append(c.chains, ch)
		c.names = append(c.names, spec.Name)
	}
	return c, nil
}

// resolve maps keys to cards and checks the chain shape.
func (c *Catalog) resolve(keys []Key) (Chain, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrMalformedChain)
	}
	ch := make(Chain, len(keys))
	for i, k := range keys {
		card, ok := c.Lookup(k)
		if !ok {
			return nil, fmt.Errorf("step %d: %w: %s", i, ErrUnknownCard, k)
		}
		ch[i] = card
	}
	if err := checkShape(ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// checkShape enforces zero or more sources, then at least one operation,
// then at least one result.
func checkShape(ch Chain) error {
	seen := [3]int{}
	prev := 0
	for i, card := range ch {
		r := card.Category.rank()
		if r < prev {
			return fmt.Errorf("%w: step %d (%s) after a %s step", ErrMalformedChain, i, card.Category, ch[i-1].Category)
		}
		prev = r
		seen[r]++
	}
	if seen[Operation.rank()] == 0 {
		return fmt.Errorf("%w: no operation step", ErrMalformedChain)
	}
	if seen[Result.rank()] == 0 {
		return fmt.Errorf("%w: no result step", ErrMalformedChain)
	}
	return nil
}

// Lookup returns the card with the given identity.
func (c *Catalog) Lookup(k Key) (Card, bool) {
	i, ok := c.index[k]
	if !ok {
		return Card{}, false
	}
	return c.cards[i], true
}

// Cards returns all cards in catalog order.
func (c *Catalog) Cards() []Card {
	return append([]Card(nil), c.cards...)
}

// Drawer returns the cards of one category, in catalog order.
func (c *Catalog) Drawer(cat Category) []Card {
	var out []Card
	for _, card := range c.cards {
		if card.Category == cat {
			out = append(out, card)
		}
	}
	return out
}

// Chains returns the number of chains.
func (c *Catalog) Chains() int { return len(c.chains) }

// Chain returns a copy of chain i. Panics if i is out of range.
func (c *Catalog) Chain(i int) Chain {
	return append(Chain(nil), c.chains[i]...)
}

// Specs returns the chains as specs, the inverse of New.
func (c *Catalog) Specs() []ChainSpec {
	out := make([]ChainSpec, len(c.chains))
	for i, ch := range c.chains {
		out[i] = ChainSpec{Name: c.names[i], Steps: ch.Keys()}
	}
	return out
}

// Stats returns counts of loaded cards and chains.
func (c *Catalog) Stats() (cards int, chains int) {
	return len(c.cards), len(c.chains)
}
