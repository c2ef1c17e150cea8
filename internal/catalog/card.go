// internal/catalog/card.go
//
// Card identity for the drawer and the chain templates.
// Defines:
//   - Category: the three step kinds of a processing chain.
//   - Key: the composite (category, name) identity of a card.
//   - Card: an immutable catalog entry with its display handle.

package catalog

import (
	"fmt"
	"strings"
)

// Category is the step kind of a card within a processing chain.
// Possible values:
//   - "source":    input data layer (a river network, a parcel register, ...).
//   - "operation": a geoprocessing tool applied to the data.
//   - "result":    the produced layer or table.
type Category string

const (
	Source    Category = "source"
	Operation Category = "operation"
	Result    Category = "result"
)

// Categories lists the drawer sections in chain order.
var Categories = []Category{Source, Operation, Result}

// aliases accepts the vocabulary of the first catalog files.
var aliases = map[string]Category{
	"data":       Source,
	"donnee":     Source,
	"donnée":     Source,
	"processing": Operation,
	"traitement": Operation,
	"resultat":   Result,
	"résultat":   Result,
}

// ParseCategory normalizes a category name, accepting legacy aliases.
func ParseCategory(s string) (Category, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch c := Category(v); c {
	case Source, Operation, Result:
		return c, nil
	}
	if c, ok := aliases[v]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// Valid reports whether c is one of the three chain categories.
func (c Category) Valid() bool {
	return c == Source || c == Operation || c == Result
}

// rank orders categories along a chain: sources, then operations, then results.
func (c Category) rank() int {
	switch c {
	case Source:
		return 0
	case Operation:
		return 1
	case Result:
		return 2
	}
	return -1
}

// UnmarshalText lets catalog files and JSON bodies use aliases.
func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Key is the identity of a card. Two cards with the same name in different
// categories are different cards.
type Key struct {
	Category Category `json:"category" yaml:"category"`
	Name     string   `json:"name" yaml:"name"`
}

func (k Key) String() string { return string(k.Category) + "/" + k.Name }

// Card is a single catalog entry.
type Card struct {
	Name     string   `json:"name" yaml:"name"`
	Category Category `json:"category" yaml:"category"`
	ImageRef string   `json:"image" yaml:"image"` // opaque handle for the renderer
}

// Key returns the composite identity of the card.
func (c Card) Key() Key { return Key{Category: c.Category, Name: c.Name} }
