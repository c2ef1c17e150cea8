// internal/puzzle/types.go
//
// Core type definitions for the chain puzzle.
// Defines:
//   - OutcomeKind / Outcome: result of validating the hidden slot.
//   - Slot: one board position, a card or empty.
//   - RoundView: the read-only projection handed to renderers.

package puzzle

import (
	"github.com/pierridotite/QGISGame/internal/advisory"
	"github.com/pierridotite/QGISGame/internal/catalog"
)

// OutcomeKind classifies the last validation of the hidden slot.
// Possible values:
//   - "unresolved":     nothing submitted since the last change.
//   - "no_card_placed": submitted with an empty slot.
//   - "wrong_category": the placed card is of another category.
//   - "wrong_card":     right category, wrong card.
//   - "correct":        the placed card is the expected one.
type OutcomeKind string

const (
	Unresolved    OutcomeKind = "unresolved"
	NoCardPlaced  OutcomeKind = "no_card_placed"
	WrongCategory OutcomeKind = "wrong_category"
	WrongCard     OutcomeKind = "wrong_card"
	Correct       OutcomeKind = "correct"
)

// Outcome is the validation state of a round. Expected is set only for
// WrongCategory and names the category the learner should look in.
type Outcome struct {
	Kind     OutcomeKind      `json:"kind"`
	Expected catalog.Category `json:"expected,omitempty"`
}

// Slot is one board position. Card is nil when the slot is empty.
type Slot struct {
	Card *catalog.Card `json:"card"`
}

// Empty reports whether no card occupies the slot.
func (s Slot) Empty() bool { return s.Card == nil }

func filled(c catalog.Card) Slot { return Slot{Card: &c} }

// RoundView is a snapshot of the round state. It shares nothing with the
// engine; mutating it has no effect on the round.
type RoundView struct {
	Number         int              `json:"round"`          // rounds started by this engine, from 1
	Board          []Slot           `json:"board"`
	HiddenPosition int              `json:"hiddenPosition"`
	HiddenCategory catalog.Category `json:"hiddenCategory"` // category of the expected card
	Outcome        Outcome          `json:"outcome"`
	Advisory       advisory.Notice  `json:"advisory"`
	CanWithdraw    bool             `json:"canWithdraw"`
}

// Placed returns the card in the hidden slot, if any.
func (v RoundView) Placed() (catalog.Card, bool) {
	if v.HiddenPosition < 0 || v.HiddenPosition >= len(v.Board) {
		return catalog.Card{}, false
	}
	s := v.Board[v.HiddenPosition]
	if s.Empty() {
		return catalog.Card{}, false
	}
	return *s.Card, true
}
