// Package sport classifies free-text sport labels and matches venues
// against category filters. Labels come straight from user input, so all
// matching is case- and diacritic-insensitive substring containment.
package sport

import "strings"

// Category is the canonical sport bucket a venue label falls into.
type Category string

const (
	Football   Category = "football"
	Basketball Category = "basketball"
	Tennis     Category = "tennis"
	Volleyball Category = "volleyball"
	Unknown    Category = "unknown"
)

// Icon returns the map-marker emoji for the category.
func (c Category) Icon() string {
	switch c {
	case Football:
		return "⚽"
	case Basketball:
		return "🏀"
	case Tennis:
		return "🎾"
	case Volleyball:
		return "🏐"
	default:
		return "📍"
	}
}

// Classification rules in priority order; the first rule with a matching
// term wins, so a label containing both "baby" and "tenis" is Football.
var rules = []struct {
	category Category
	terms    []string
}{
	{Football, []string{"futbol", "football", "baby"}},
	{Basketball, []string{"basquetbol", "basketball"}},
	{Tennis, []string{"tenis", "tennis"}},
	{Volleyball, []string{"voleibol", "volleyball"}},
}

// Classify maps a free-text sport label to its canonical category.
func Classify(label string) Category {
	text := normalize(label)
	for _, rule := range rules {
		for _, term := range rule.terms {
			if strings.Contains(text, term) {
				return rule.category
			}
		}
	}
	return Unknown
}

// MatchesAny reports whether a venue's sport text matches any of the
// selected category labels. Matching is substring containment over
// normalized text, OR'd across labels. Selecting "Fútbol" additionally
// matches "baby" football venues; the alias is one-way and applies to no
// other category. An empty selection matches nothing.
//
// This works on raw text rather than on Classify output so the alias
// behavior stays exactly as the venue filter has always behaved.
func MatchesAny(selected []string, venueSport string) bool {
	text := normalize(venueSport)
	for _, label := range selected {
		norm := normalize(label)
		if norm == "" {
			continue
		}
		if strings.Contains(text, norm) {
			return true
		}
		if norm == "futbol" && strings.Contains(text, "baby") {
			return true
		}
	}
	return false
}

var accentReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
)

func normalize(s string) string {
	return accentReplacer.Replace(strings.ToLower(s))
}
