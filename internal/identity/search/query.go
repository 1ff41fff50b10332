package search

import (
	"strings"
	"unicode/utf8"

	"lineage/internal/identity/models"
	"lineage/internal/identity/names"
	"lineage/internal/identity/score"
)

// LastLenWindow is how far a surname's length may drift, in runes, and still
// be retrieved by the first-letter predicate.
const LastLenWindow = 2

// Query is the parsed form of a search name, shared by every retrieval
// predicate so all of them see the same keys.
type Query struct {
	Name  string
	First string
	Last  string
	models.PhoneticKeys
	FirstInitial string
	LastInitial  string
}

// NewQuery parses and keys a full name.
func NewQuery(fullName string) Query {
	name := names.Normalize(fullName)
	p := names.Parse(name)
	return Query{
		Name:         name,
		First:        p.First,
		Last:         p.Last,
		PhoneticKeys: models.KeysFor(p.First, p.Last),
		FirstInitial: initialOf(p.First),
		LastInitial:  initialOf(p.Last),
	}
}

// NameLower is the lowercased normalized name used by the exact predicate.
func (q Query) NameLower() string { return strings.ToLower(q.Name) }

// LastLower is the lowercased surname used by the exact-surname predicate.
func (q Query) LastLower() string { return strings.ToLower(q.Last) }

// HasLast reports whether the surname predicates apply.
func (q Query) HasLast() bool { return q.Last != "" }

// HasInitials reports whether the first-letter predicate applies.
func (q Query) HasInitials() bool { return q.FirstInitial != "" && q.LastInitial != "" }

// LastLen is the surname length in runes.
func (q Query) LastLen() int { return utf8.RuneCountInString(q.Last) }

// MatchesCanonical reports whether c satisfies any canonical retrieval
// predicate. In-memory stores filter with it; SQL stores mirror it.
func (q Query) MatchesCanonical(c *models.CanonicalPerson) bool {
	if strings.EqualFold(c.CanonicalName, q.Name) {
		return true
	}
	if q.HasLast() && (agree(c.LastSoundex, q.LastSoundex) ||
		agree(c.LastMetaphone, q.LastMetaphone) ||
		strings.EqualFold(c.Last, q.Last)) {
		return true
	}
	return q.withinInitialWindow(c.First, c.Last)
}

// MatchesVariant reports whether v satisfies any variant retrieval predicate.
func (q Query) MatchesVariant(v *models.NameVariant) bool {
	if strings.EqualFold(v.VariantName, q.Name) {
		return true
	}
	if q.HasLast() && agree(v.LastSoundex, q.LastSoundex) {
		return true
	}
	return q.withinInitialWindow(v.First, v.Last)
}

func (q Query) withinInitialWindow(first, last string) bool {
	if !q.HasInitials() {
		return false
	}
	if initialOf(first) != q.FirstInitial || initialOf(last) != q.LastInitial {
		return false
	}
	diff := utf8.RuneCountInString(last) - q.LastLen()
	return diff >= -LastLenWindow && diff <= LastLenWindow
}

func (q Query) scoreName() score.Name {
	return score.Name{Full: q.Name, First: q.First, Last: q.Last}
}

// agree is key equality that never matches on two empty keys.
func agree(a, b string) bool {
	return a != "" && a == b
}

func agreeFold(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}

func initialOf(s string) string {
	if c := score.Initial(s); c != 0 {
		return string(c)
	}
	return ""
}
