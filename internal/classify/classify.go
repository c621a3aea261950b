// Package classify decides what a single log line means for combat tracking.
package classify

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/five82/battlewatch/internal/watchlist"
)

// Kind is the classification of a line, ordered by precedence.
type Kind int

const (
	None Kind = iota
	Activity
	Match
)

func (k Kind) String() string {
	switch k {
	case Activity:
		return "activity"
	case Match:
		return "match"
	default:
		return "none"
	}
}

// Result is the classification of one line. Move and Level are set only when
// Kind is Match.
type Result struct {
	Kind  Kind
	Move  string
	Level watchlist.Level
}

// Active reports whether the line counts as combat activity. Watchlist
// matches always do.
func (r Result) Active() bool { return r.Kind != None }

// activityWords mark lines that show a fight is in progress. Passive words
// such as "effect" and "takes" are left out because regen and weather lines
// would otherwise keep combat alive forever.
var activityWords = []string{
	"hits",
	"misses",
	"readies",
	"casts",
	"uses",
	"presents",
	"recovers",
	"gains",
	"points",
	"starts",
}

// ActivityWords returns the generic activity substrings.
func ActivityWords() []string {
	dup := make([]string, len(activityWords))
	copy(dup, activityWords)
	return dup
}

// Normalize lowercases line and removes non-printable runes.
func Normalize(line string) string {
	lowered := cases.Lower(language.Und).String(line)
	return strings.Map(func(r rune) rune {
		if !unicode.IsPrint(r) {
			return -1
		}
		return r
	}, lowered)
}

// Classify reports whether line is activity and whether it names a watched
// move. When several moves appear in one line the last one in watchlist order
// wins.
func Classify(line string, list *watchlist.Watchlist) Result {
	clean := Normalize(line)

	var res Result
	for _, word := range activityWords {
		if strings.Contains(clean, word) {
			res.Kind = Activity
			break
		}
	}

	list.Each(func(e watchlist.Entry) {
		if e.Key != "" && strings.Contains(clean, e.Key) {
			res = Result{Kind: Match, Move: e.Move, Level: e.Level}
		}
	})
	return res
}
