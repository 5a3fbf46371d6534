package validation

import (
	"strings"

	"github.com/fiam/gounidecode/unidecode"
	"github.com/schollz/closestmatch"
	"github.com/texttheater/golang-levenshtein/levenshtein"

	"fliptrack/internal/core"
)

// minSimilarity is the lowest similarity at which a known room is offered as
// a correction for a typed name.
const minSimilarity = 0.6

func normalizeName(s string) string {
	return strings.ToLower(unidecode.Unidecode(strings.TrimSpace(s)))
}

func similarity(a, b string) float64 {
	distance := levenshtein.DistanceForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

// closestRoom returns the known room name closest to typed, or "" when no
// room is similar enough to be worth suggesting.
func closestRoom(rooms []core.Room, typed string) string {
	query := normalizeName(typed)
	if query == "" || len(rooms) == 0 {
		return ""
	}
	byKey := make(map[string]string, len(rooms))
	keys := make([]string, 0, len(rooms))
	for _, r := range rooms {
		k := normalizeName(r.Name)
		if _, dup := byKey[k]; dup {
			continue
		}
		byKey[k] = r.Name
		keys = append(keys, k)
	}
	if name, ok := byKey[query]; ok {
		return name
	}
	best := closestmatch.New(keys, []int{2, 3}).Closest(query)
	if best == "" || similarity(query, best) < minSimilarity {
		return ""
	}
	return byKey[best]
}
