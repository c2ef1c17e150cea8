// internal/display/group.go
//
// Layout-oriented view of a round's board.
// Responsibilities:
//   - Split the board into runs of slots sharing an effective category.
//   - Keep each slot's original index so renderers can map back to the board.
//
// Nothing here mutates engine state.
package display

import (
	"errors"
	"fmt"

	"github.com/pierridotite/QGISGame/internal/catalog"
	"github.com/pierridotite/QGISGame/internal/puzzle"
)

// ErrIndexOutOfRange is returned when the hidden position does not address
// a board slot.
var ErrIndexOutOfRange = errors.New("hidden position out of range")

// Other is the effective category of an empty slot that is not the hidden one.
const Other catalog.Category = "other"

// Member is one board position inside a group.
type Member struct {
	Card  *catalog.Card `json:"card"`
	Index int           `json:"index"`
}

// Group is a run of consecutive slots sharing an effective category.
type Group struct {
	Category catalog.Category `json:"category"`
	Members  []Member         `json:"members"`
}

// GroupedView is the board split into groups, in board order.
type GroupedView struct {
	Groups []Group `json:"groups"`
}

// Indices flattens the groups back into board positions.
func (g GroupedView) Indices() []int {
	var out []int
	for _, grp := range g.Groups {
		for _, m := range grp.Members {
			out = append(out, m.Index)
		}
	}
	return out
}

// GroupForDisplay groups the board of view.
func GroupForDisplay(view puzzle.RoundView) (GroupedView, error) {
	return Partition(view.Board, view.HiddenPosition, view.HiddenCategory)
}

// Partition splits board into runs of equal effective category. A slot's
// effective category is its card's category; the empty hidden slot takes
// expected, any other empty slot takes Other.
func Partition(board []puzzle.Slot, hidden int, expected catalog.Category) (GroupedView, error) {
	if hidden < 0 || hidden >= len(board) {
		return GroupedView{}, fmt.Errorf("group %d slots at %d: %w", len(board), hidden, ErrIndexOutOfRange)
	}

	out := GroupedView{Groups: []Group{}}
	for i, s := range board {
		cat := effective(s, i, hidden, expected)
		m := Member{Index: i}
		if !s.Empty() {
			c := *s.Card
			m.Card = &c
		}

		if n := len(out.Groups); n > 0 && out.Groups[n-1].Category == cat {
			out.Groups[n-1].Members = append(out.Groups[n-1].Members, m)
			continue
		}
		out.Groups = append(out.Groups, Group{Category: cat, Members: []Member{m}})
	}
	return out, nil
}

func effective(s puzzle.Slot, i, hidden int, expected catalog.Category) catalog.Category {
	switch {
	case !s.Empty():
		return s.Card.Category
	case i == hidden:
		return expected
	default:
		return Other
	}
}
