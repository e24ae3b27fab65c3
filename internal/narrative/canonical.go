package narrative

import (
	"regexp"
	"strings"
)

// nameStopWords are dropped during canonicalization: grammatical filler plus
// ecosystem boilerplate that appears in almost every narrative name.
var nameStopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "on": true,
	"in": true, "of": true, "a": true, "an": true, "to": true, "is": true,
	"solana": true, "sol": true, "protocol": true, "ecosystem": true,
	"network": true, "based": true, "powered": true,
}

// wordPattern splits canonical names on runs of non-alphanumeric characters.
var wordPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Canonicalize reduces a narrative name to its fuzzy-identity form:
// lowercased, punctuation-free, stop-word-stripped, space-joined.
// Case and punctuation variants of the same name canonicalize identically.
func Canonicalize(name string) string {
	words := wordPattern.Split(strings.ToLower(name), -1)

	kept := words[:0]
	for _, w := range words {
		if w != "" && !nameStopWords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// wordOverlap scores similarity of two canonical names as
// |words(a) ∩ words(b)| / min(|words(a)|, |words(b)|). Empty names score 0.
func wordOverlap(a, b string) float64 {
	wa := wordSet(a)
	wb := wordSet(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}

	overlap := 0
	for w := range wa {
		if wb[w] {
			overlap++
		}
	}

	minLen := len(wa)
	if len(wb) < minLen {
		minLen = len(wb)
	}
	return float64(overlap) / float64(minLen)
}

func wordSet(canonical string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(canonical) {
		set[w] = true
	}
	return set
}
