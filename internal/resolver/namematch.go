package resolver

import "strings"

// IsExactMatch reports case-insensitive, whitespace-trimmed equality
// between a query and a candidate name.
func IsExactMatch(query, candidateName string) bool {
	return strings.EqualFold(strings.TrimSpace(query), strings.TrimSpace(candidateName))
}

// VerifyArtistMatch gates a candidate's name against the query. Single-word
// queries require an exact match, forbidding "Keli Holiday" from matching
// "Billie Holiday". Multi-word queries tolerate up to 40% missing tokens,
// allowing "The Beatles" to match a candidate sort-name like "Beatles, The".
func VerifyArtistMatch(query, candidateName string) bool {
	tokens := strings.Fields(query)
	if len(tokens) <= 1 {
		return IsExactMatch(query, candidateName)
	}

	lowerCandidate := strings.ToLower(candidateName)

	var missing int
	for _, tok := range tokens {
		lowerTok := strings.ToLower(tok)
		if tokenPresent(lowerCandidate, lowerTok) {
			continue
		}
		missing++
	}

	return float64(missing)/float64(len(tokens)) <= 0.4
}

// tokenPresent accepts either the full token or the token minus its last two
// characters as a substring match, tolerating plural/possessive variants
// (e.g. "Beatles" matching a token "Beatle's").
func tokenPresent(candidate, token string) bool {
	if strings.Contains(candidate, token) {
		return true
	}
	if len(token) > 2 {
		trimmed := token[:len(token)-2]
		if trimmed != "" && strings.Contains(candidate, trimmed) {
			return true
		}
	}
	return false
}
