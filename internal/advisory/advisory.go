// internal/advisory/advisory.go
//
// Learner-facing notices a round can carry, rendered per language.
// Responsibilities:
//   - Notice kinds and the category a WrongCategory notice points at.
//   - French (base) and English texts, registered once into an x/text catalog.
//   - Language matching from query values and Accept-Language headers.
package advisory

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	xcatalog "golang.org/x/text/message/catalog"

	"github.com/pierridotite/QGISGame/internal/catalog"
)

// Kind identifies a notice.
type Kind string

const (
	None          Kind = ""
	CardRemoved   Kind = "card_removed"
	NoCardPlaced  Kind = "no_card_placed"
	WrongCategory Kind = "wrong_category"
	WrongCard     Kind = "wrong_card"
	Correct       Kind = "correct"
)

// Notice is the advisory state of a round. Expected is only set for
// WrongCategory.
type Notice struct {
	Kind     Kind             `json:"kind"`
	Expected catalog.Category `json:"expected,omitempty"`
}

// IsZero reports whether there is nothing to show.
func (n Notice) IsZero() bool { return n.Kind == None }

// String renders the notice in the base locale.
func (n Notice) String() string { return Text(Base, n) }

// Base is the fallback locale.
var Base = language.French

var supported = []language.Tag{language.French, language.English}

var matcher = language.NewMatcher(supported)

var messages = map[language.Tag]map[string]string{
	language.French: {
		string(CardRemoved):                     "Carte retirée, veuillez déposer une nouvelle carte.",
		string(NoCardPlaced):                    "Aucune carte déposée. Veuillez déposer une carte dans la case cachée.",
		string(WrongCategory):                   "Type incorrect. Attendu : %s.",
		string(WrongCard):                       "Mauvaise réponse, essayez encore.",
		string(Correct):                         "Correct !",
		"category." + string(catalog.Source):    "Donnée",
		"category." + string(catalog.Operation): "Traitement",
		"category." + string(catalog.Result):    "Résultat",
		"category.other":                        "Carte cachée",
	},
	language.English: {
		string(CardRemoved):                     "Card removed, please place a new card.",
		string(NoCardPlaced):                    "No card placed. Please drop a card in the hidden slot.",
		string(WrongCategory):                   "Wrong type. Expected: %s.",
		string(WrongCard):                       "Wrong answer, try again.",
		string(Correct):                         "Correct!",
		"category." + string(catalog.Source):    "Data",
		"category." + string(catalog.Operation): "Processing",
		"category." + string(catalog.Result):    "Result",
		"category.other":                        "Hidden card",
	},
}

var builder = newBuilder()

func newBuilder() *xcatalog.Builder {
	b := xcatalog.NewBuilder(xcatalog.Fallback(Base))
	for tag, msgs := range messages {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Supported returns the languages notices are available in.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supported...)
}

// Match picks the best supported language. Each preference may be a single
// tag ("en") or an Accept-Language header; the first one that parses wins.
// def is used when nothing matches.
func Match(def language.Tag, preferences ...string) language.Tag {
	for _, pref := range preferences {
		pref = strings.TrimSpace(pref)
		if pref == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(pref)
		if err != nil || len(tags) == 0 {
			continue
		}
		if _, idx, conf := matcher.Match(tags...); conf != language.No {
			return supported[idx]
		}
	}
	return Normalize(def)
}

// Normalize maps tag to the closest supported language, or Base.
func Normalize(tag language.Tag) language.Tag {
	if _, idx, conf := matcher.Match(tag); conf != language.No {
		return supported[idx]
	}
	return Base
}

func printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(Normalize(tag), message.Catalog(builder))
}

// Text renders n for tag. The zero notice renders as "".
func Text(tag language.Tag, n Notice) string {
	if n.IsZero() {
		return ""
	}
	p := printer(tag)
	if n.Kind == WrongCategory {
		return p.Sprintf(string(WrongCategory), CategoryLabel(tag, n.Expected))
	}
	return p.Sprintf(string(n.Kind))
}

// CategoryLabel returns the drawer section title for c.
func CategoryLabel(tag language.Tag, c catalog.Category) string {
	if !c.Valid() {
		return printer(tag).Sprintf("category.other")
	}
	return printer(tag).Sprintf("category." + string(c))
}
