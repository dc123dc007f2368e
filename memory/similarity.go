package memory

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Similarity scores two normalized fragments in [0,1]. It blends token-set
// overlap with an edit-distance ratio: the token view is robust to
// reordering and filler words, the character view catches inflection-level
// differences that token sets miss on short fragments.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	return 0.5*tokenOverlap(a, b) + 0.5*editRatio(a, b)
}

// tokenOverlap is the Jaccard index over the distinct tokens of both texts.
func tokenOverlap(a, b string) float64 {
	as := tokenSet(a)
	bs := tokenSet(b)
	if len(as) == 0 || len(bs) == 0 {
		return 0
	}

	inter := 0
	for tok := range as {
		if bs[tok] {
			inter++
		}
	}
	union := len(as) + len(bs) - inter
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

// editRatio converts Levenshtein distance into a [0,1] similarity.
func editRatio(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	max := la
	if lb > max {
		max = lb
	}
	if max == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(max)
}
