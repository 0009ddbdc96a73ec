package tableview

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Ranking is the quality of a fuzzy match,
// higher values are better matches.
type Ranking int

const (
	RankNoMatch Ranking = iota
	// RankMatches means all query characters
	// appear in the item in the same order.
	RankMatches
	// RankAcronym means the query is contained in the
	// first letters of the words of the item.
	RankAcronym
	RankContains
	RankWordStartsWith
	RankStartsWith
	RankEqual
	RankCaseSensitiveEqual
)

var rankingNames = [...]string{
	RankNoMatch:            "no_match",
	RankMatches:            "matches",
	RankAcronym:            "acronym",
	RankContains:           "contains",
	RankWordStartsWith:     "word_starts_with",
	RankStartsWith:         "starts_with",
	RankEqual:              "equal",
	RankCaseSensitiveEqual: "case_sensitive_equal",
}

// String returns the string representation of a Ranking.
func (r Ranking) String() string {
	if r >= 0 && int(r) < len(rankingNames) {
		return rankingNames[r]
	}
	return fmt.Sprintf("Ranking(%d)", int(r))
}

// ParseRanking parses the result of Ranking.String.
func ParseRanking(s string) (Ranking, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for r, name := range rankingNames {
		if s == name {
			return Ranking(r), nil
		}
	}
	return RankNoMatch, fmt.Errorf("unknown ranking %q", s)
}

// RankInfo is the result of RankItem.
type RankInfo struct {
	Rank Ranking
	// Score orders RankMatches results,
	// it is zero for all other rankings.
	Score  int
	Passed bool
}

// RankItem ranks how well query matches item.
// Diacritics are removed from both strings before comparing.
// The result passes if its Rank is at least threshold
// and better than RankNoMatch.
func RankItem(item, query string, threshold Ranking) RankInfo {
	rank, score := matchRanking(foldDiacritics(item), foldDiacritics(query))
	return RankInfo{
		Rank:   rank,
		Score:  score,
		Passed: rank > RankNoMatch && rank >= threshold,
	}
}

func matchRanking(item, query string) (Ranking, int) {
	queryLen := utf8.RuneCountInString(query)
	if queryLen > utf8.RuneCountInString(item) {
		return RankNoMatch, 0
	}
	if item == query {
		return RankCaseSensitiveEqual, 0
	}
	item = strings.ToLower(item)
	query = strings.ToLower(query)
	switch {
	case item == query:
		return RankEqual, 0
	case strings.HasPrefix(item, query):
		return RankStartsWith, 0
	case strings.Contains(item, " "+query):
		return RankWordStartsWith, 0
	case strings.Contains(item, query):
		return RankContains, 0
	case queryLen == 1:
		return RankNoMatch, 0
	case strings.Contains(acronym(item), query):
		return RankAcronym, 0
	}
	if matches := fuzzy.Find(query, []string{item}); len(matches) > 0 {
		return RankMatches, matches[0].Score
	}
	return RankNoMatch, 0
}

// acronym returns the first rune of every word,
// words are separated by spaces and hyphens.
func acronym(s string) string {
	var b strings.Builder
	for _, word := range strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == '-' }) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(r)
	}
	return b.String()
}

func foldDiacritics(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
			folded, _, err := transform.String(t, s)
			if err != nil {
				return s
			}
			return folded
		}
	}
	return s
}
