// internal/puzzle/engine.go
//
// Core engine for a single learner's round.
// Responsibilities:
//   - Start rounds: draw a chain and a hidden position from the catalog.
//   - Accept a tentative card in the hidden slot, and its withdrawal.
//   - Validate the placement: category first, then card identity.
//
// Notes:
//   - Invalid placements (wrong slot, occupied slot) are silent no-ops.
//   - Validation mismatches are outcomes, never errors.
//   - An Engine is not safe for concurrent use; callers serialize access.
package puzzle

import (
	"github.com/pierridotite/QGISGame/internal/advisory"
	"github.com/pierridotite/QGISGame/internal/catalog"
)

// round is the live state of the current question.
type round struct {
	number   int
	board    []Slot
	hidden   int
	expected catalog.Card
	outcome  Outcome
	notice   advisory.Notice
}

// Engine owns the current round.
type Engine struct {
	cat *catalog.Catalog
	rng Source
	r   round
}

// New constructs an engine and starts its first round.
// Returns catalog.ErrEmptyCatalog if cat has no chain.
func New(cat *catalog.Catalog, rng Source) (*Engine, error) {
	e := &Engine{cat: cat, rng: rng}
	if _, err := e.StartRound(); err != nil {
		return nil, err
	}
	return e, nil
}

// StartRound discards the current round and draws a new one: a chain
// uniformly from the catalog, then a hidden position uniformly within it.
func (e *Engine) StartRound() (RoundView, error) {
	if e.cat == nil || e.cat.Chains() == 0 {
		return RoundView{}, catalog.ErrEmptyCatalog
	}
	chain := e.cat.Chain(e.rng.IntN(e.cat.Chains()))
	hidden := e.rng.IntN(len(chain))

	board := make([]Slot, len(chain))
	for i, c := range chain {
		if i != hidden {
			board[i] = filled(c)
		}
	}
	e.r = round{
		number:   e.r.number + 1,
		board:    board,
		hidden:   hidden,
		expected: chain[hidden],
		outcome:  Outcome{Kind: Unresolved},
	}
	return e.View(), nil
}

// Place drops card into the hidden slot. It is a no-op while the slot is
// occupied; the learner withdraws first.
func (e *Engine) Place(card catalog.Card) RoundView {
	return e.PlaceAt(e.r.hidden, card)
}

// PlaceAt drops card on board position index. Only the empty hidden slot
// accepts a card; any other drop is ignored.
func (e *Engine) PlaceAt(index int, card catalog.Card) RoundView {
	if index != e.r.hidden || e.r.board == nil || !e.r.board[index].Empty() {
		return e.View()
	}
	e.r.board[index] = filled(card)
	e.r.outcome = Outcome{Kind: Unresolved}
	e.r.notice = advisory.Notice{}
	return e.View()
}

// Withdraw empties the hidden slot. Withdrawing from an empty slot changes
// nothing.
func (e *Engine) Withdraw() RoundView {
	if e.r.board == nil || e.r.board[e.r.hidden].Empty() {
		return e.View()
	}
	e.r.board[e.r.hidden] = Slot{}
	e.r.outcome = Outcome{Kind: Unresolved}
	e.r.notice = advisory.Notice{Kind: advisory.CardRemoved}
	return e.View()
}

// Submit validates the hidden slot against the expected card. Repeated
// submits without an intervening change yield the same outcome.
func (e *Engine) Submit() RoundView {
	if e.r.board == nil {
		return e.View()
	}
	e.r.outcome, e.r.notice = Judge(e.r.board[e.r.hidden], e.r.expected)
	return e.View()
}

// Judge classifies a slot against the expected card.
//
// Order:
//   - empty slot                → NoCardPlaced
//   - category differs          → WrongCategory(expected category)
//   - same category, other card → WrongCard
//   - same (category, name)     → Correct
//
// Category is checked first so a card sharing the expected name in another
// category is reported as a category mistake.
func Judge(slot Slot, expected catalog.Card) (Outcome, advisory.Notice) {
	switch {
	case slot.Empty():
		return Outcome{Kind: NoCardPlaced}, advisory.Notice{Kind: advisory.NoCardPlaced}
	case slot.Card.Category != expected.Category:
		return Outcome{Kind: WrongCategory, Expected: expected.Category},
			advisory.Notice{Kind: advisory.WrongCategory, Expected: expected.Category}
	case slot.Card.Key() != expected.Key():
		return Outcome{Kind: WrongCard}, advisory.Notice{Kind: advisory.WrongCard}
	default:
		return Outcome{Kind: Correct}, advisory.Notice{Kind: advisory.Correct}
	}
}

// View returns a snapshot of the current round.
func (e *Engine) View() RoundView {
	board := make([]Slot, len(e.r.board))
	for i, s := range e.r.board {
		if !s.Empty() {
			board[i] = filled(*s.Card)
		}
	}
	return RoundView{
		Number:         e.r.number,
		Board:          board,
		HiddenPosition: e.r.hidden,
		HiddenCategory: e.r.expected.Category,
		Outcome:        e.r.outcome,
		Advisory:       e.r.notice,
		CanWithdraw:    len(board) > 0 && !board[e.r.hidden].Empty(),
	}
}
