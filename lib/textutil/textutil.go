package textutil

import (
	"regexp"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// Closest returns up to n candidates ordered by Jaro-Winkler similarity to target,
// comparing normalized names. Candidates with no similarity at all are left out.
func Closest(target string, candidates []string, n int) []string {
	type scored struct {
		value      string
		similarity float64
	}

	normalized := NormalizeName(target)
	var scores []scored
	for _, c := range candidates {
		similarity := matchr.JaroWinkler(normalized, NormalizeName(c), false)
		if similarity <= 0 {
			continue
		}
		scores = append(scores, scored{value: c, similarity: similarity})
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].similarity > scores[j].similarity
	})

	if len(scores) > n {
		scores = scores[:n]
	}
	out := make([]string, len(scores))
	for i, s := range scores {
		out[i] = s.value
	}
	return out
}
