package cluster

import (
	"math"
	"regexp"
	"strings"
)

// tokenPattern splits on runs of non-alphanumeric characters.
var tokenPattern = regexp.MustCompile(`[^a-z0-9]+`)

// stopWords are uninformative in this domain: articles, prepositions,
// ecosystem boilerplate, and URL fragments. Tokens of length <= 2 are
// dropped before this list applies.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"this": true, "that": true, "are": true, "was": true, "were": true,
	"has": true, "have": true, "will": true, "not": true, "its": true,
	"into": true, "over": true, "under": true, "about": true,
	"solana": true, "sol": true, "protocol": true, "token": true,
	"tokens": true, "ecosystem": true,
	"http": true, "https": true, "www": true, "com": true,
}

// tokenize lowercases text, splits on non-alphanumeric runs, and discards
// tokens of length <= 2.
func tokenize(text string) []string {
	var tokens []string
	for _, tok := range tokenPattern.Split(strings.ToLower(text), -1) {
		if len(tok) > 2 {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// buildVectors computes a sparse TF-IDF vector per document.
// IDF = ln(N/df); terms appearing in every document carry no information
// and are dropped, as are stop words.
func buildVectors(docs [][]string) []map[string]float64 {
	n := len(docs)

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool, len(doc))
		for _, term := range doc {
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}

	vectors := make([]map[string]float64, n)
	for i, doc := range docs {
		counts := make(map[string]int)
		total := 0
		for _, term := range doc {
			if stopWords[term] {
				continue
			}
			counts[term]++
			total++
		}

		vec := make(map[string]float64, len(counts))
		for term, count := range counts {
			if df[term] == n && n > 1 {
				continue
			}
			idf := math.Log(float64(n) / float64(df[term]))
			if idf <= 0 {
				continue
			}
			vec[term] = float64(count) / float64(total) * idf
		}
		vectors[i] = vec
	}

	return vectors
}

// cosine computes cosine similarity between two sparse vectors.
func cosine(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	// Iterate the smaller vector.
	if len(b) < len(a) {
		a, b = b, a
	}

	dot := 0.0
	for term, av := range a {
		if bv, ok := b[term]; ok {
			dot += av * bv
		}
	}
	if dot == 0 {
		return 0
	}

	var normA, normB float64
	for _, v := range a {
		normA += v * v
	}
	for _, v := range b {
		normB += v * v
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
