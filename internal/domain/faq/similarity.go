package faq

import "strings"

// Score computes the Jaccard token-overlap similarity between two normalized
// strings: shared tokens over the union of tokens, in [0,1]. Two empty token
// sets score 0 so an empty query never matches anything. Exact equality is
// handled by the matcher before scoring.
func Score(normalizedA, normalizedB string) float64 {
	tokensA := tokenSet(normalizedA)
	tokensB := tokenSet(normalizedB)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}
	shared := 0
	for token := range tokensA {
		if _, ok := tokensB[token]; ok {
			shared++
		}
	}
	union := len(tokensA) + len(tokensB) - shared
	return float64(shared) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		set[field] = struct{}{}
	}
	return set
}
