// internal/httpserver/routes_round.go
//
// HTTP routes for a learner's round.
//   - POST /round/new      → start (or restart) the caller's round; creates a session when absent
//   - GET  /round          → current round with grouped layout
//   - POST /round/place    → drop a card on the board
//   - POST /round/withdraw → take the placed card back
//   - POST /round/submit   → validate the hidden slot
//   - GET  /round/groups   → grouped layout only
//   - GET  /drawer         → catalog cards per category
//
// Every response carries the advisory message in the caller's language.

package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"github.com/pierridotite/QGISGame/internal/advisory"
	"github.com/pierridotite/QGISGame/internal/catalog"
	"github.com/pierridotite/QGISGame/internal/display"
	"github.com/pierridotite/QGISGame/internal/puzzle"
	"github.com/pierridotite/QGISGame/internal/store"
)

// RoundResponse is the round view plus its localized rendering.
type RoundResponse struct {
	puzzle.RoundView
	HiddenLabel string          `json:"hiddenLabel"`
	Groups      []display.Group `json:"groups"`
	Message     string          `json:"message"`
	Lang        string          `json:"lang"`
	Token       string          `json:"token,omitempty"` // only on POST /round/new
}

// GroupsResponse is the grouped layout of the board.
type GroupsResponse struct {
	Groups []display.Group `json:"groups"`
}

// PlaceRequest names a card by identity. Index targets a board position;
// when absent the card goes to the hidden slot.
type PlaceRequest struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Index    *int   `json:"index,omitempty"`
}

// DrawerSection lists the cards of one category.
type DrawerSection struct {
	Category catalog.Category `json:"category"`
	Label    string           `json:"label"`
	Cards    []catalog.Card   `json:"cards"`
}

// DrawerResponse is the catalog browser.
type DrawerResponse struct {
	Lang     string          `json:"lang"`
	Sections []DrawerSection `json:"sections"`
}

// mountRound registers all /round routes.
func (s *Server) mountRound(r chi.Router) {
	r.Route("/round", func(r chi.Router) {
		r.Post("/new", s.handleNewRound)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession())
			r.Get("/", s.handleRound)
			r.Post("/place", s.handlePlace)
			r.Post("/withdraw", s.handleWithdraw)
			r.Post("/submit", s.handleSubmit)
			r.Get("/groups", s.handleGroups)
		})
	})
}

// requestLang resolves ?lang=, then Accept-Language, then the server default.
func (s *Server) requestLang(r *http.Request) language.Tag {
	return advisory.Match(s.lang, r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
}

// handleNewRound starts a round on the caller's session, creating the
// session (and its token) when the request carries none that is live.
func (s *Server) handleNewRound(w http.ResponseWriter, r *http.Request) {
	sess, _, err := s.lookupSession(r)
	if err == nil {
		var view puzzle.RoundView
		err := sess.Run(func(e *puzzle.Engine) error {
			var err error
			view, err = e.StartRound()
			return err
		})
		if err != nil {
			log.Error().Err(err).Str("session", sess.ID).Msg("start round")
			writeError(w, http.StatusInternalServerError, "start_failed")
			return
		}
		log.Debug().Str("session", sess.ID).Int("round", view.Number).Msg("round started")
		s.writeRound(w, r, view, "")
		return
	}
	if !isSessionError(err) {
		log.Debug().Err(err).Msg("replacing unusable session token")
	}

	src, err := s.source()
	if err != nil {
		log.Error().Err(err).Msg("random source")
		writeError(w, http.StatusInternalServerError, "start_failed")
		return
	}
	e, err := puzzle.New(s.cat, src)
	if err != nil {
		log.Error().Err(err).Msg("new engine")
		writeError(w, http.StatusInternalServerError, "start_failed")
		return
	}
	sess, err = s.store.Create(r.Context(), e)
	if err != nil {
		log.Error().Err(err).Msg("create session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	tok, exp, err := s.session.signSession(sess.ID, s.now())
	if err != nil {
		log.Error().Err(err).Msg("sign session")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.session.setSessionCookie(w, tok, exp)

	var view puzzle.RoundView
	_ = sess.Run(func(e *puzzle.Engine) error {
		view = e.View()
		return nil
	})
	log.Debug().Str("session", sess.ID).Int("round", view.Number).Msg("session created")
	s.writeRound(w, r, view, tok)
}

// handleRound returns the current round.
func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	s.writeRound(w, r, s.apply(r, (*puzzle.Engine).View), "")
}

// handlePlace resolves the card and drops it. Unknown cards are rejected;
// drops on an occupied or non-hidden slot leave the round unchanged.
func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req PlaceRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	cat, err := catalog.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_category")
		return
	}
	card, ok := s.cat.Lookup(catalog.Key{Category: cat, Name: req.Name})
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown_card")
		return
	}

	view := s.apply(r, func(e *puzzle.Engine) puzzle.RoundView {
		if req.Index != nil {
			return e.PlaceAt(*req.Index, card)
		}
		return e.Place(card)
	})
	s.writeRound(w, r, view, "")
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	s.writeRound(w, r, s.apply(r, (*puzzle.Engine).Withdraw), "")
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	view := s.apply(r, (*puzzle.Engine).Submit)
	log.Debug().
		Str("session", sessionFrom(r.Context()).ID).
		Int("round", view.Number).
		Str("outcome", string(view.Outcome.Kind)).
		Msg("round submitted")
	s.writeRound(w, r, view, "")
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	view := s.apply(r, (*puzzle.Engine).View)
	g, err := display.GroupForDisplay(view)
	if err != nil {
		log.Error().Err(err).Msg("group board")
		writeError(w, http.StatusInternalServerError, "group_failed")
		return
	}
	writeJSON(w, http.StatusOK, GroupsResponse{Groups: g.Groups})
}

// handleDrawer lists the catalog per category with localized section titles.
func (s *Server) handleDrawer(w http.ResponseWriter, r *http.Request) {
	lang := s.requestLang(r)
	res := DrawerResponse{Lang: lang.String(), Sections: make([]DrawerSection, 0, len(catalog.Categories))}
	for _, c := range catalog.Categories {
		cards := s.cat.Drawer(c)
		if cards == nil {
			cards = []catalog.Card{}
		}
		res.Sections = append(res.Sections, DrawerSection{
			Category: c,
			Label:    advisory.CategoryLabel(lang, c),
			Cards:    cards,
		})
	}
	w.Header().Set("Content-Language", lang.String())
	writeJSON(w, http.StatusOK, res)
}

// apply runs fn on the request session's engine under its lock.
func (s *Server) apply(r *http.Request, fn func(*puzzle.Engine) puzzle.RoundView) puzzle.RoundView {
	var view puzzle.RoundView
	_ = sessionFrom(r.Context()).Run(func(e *puzzle.Engine) error {
		view = fn(e)
		return nil
	})
	return view
}

// writeRound renders view with its grouped layout and localized message.
func (s *Server) writeRound(w http.ResponseWriter, r *http.Request, view puzzle.RoundView, token string) {
	g, err := display.GroupForDisplay(view)
	if err != nil {
		log.Error().Err(err).Msg("group board")
		writeError(w, http.StatusInternalServerError, "group_failed")
		return
	}
	lang := s.requestLang(r)
	w.Header().Set("Content-Language", lang.String())
	writeJSON(w, http.StatusOK, RoundResponse{
		RoundView:   view,
		HiddenLabel: advisory.CategoryLabel(lang, view.HiddenCategory),
		Groups:      g.Groups,
		Message:     advisory.Text(lang, view.Advisory),
		Lang:        lang.String(),
		Token:       token,
	})
}

// isSessionError reports whether err means the caller has no usable session.
func isSessionError(err error) bool {
	return errors.Is(err, errNoToken) || errors.Is(err, store.ErrNotFound)
}
