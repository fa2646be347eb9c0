package search

import (
	"sort"
	"strings"
	"unicode"
)

// Stopwords filtered out before keyword frequency counting.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "an", "and", "are", "as", "at", "be", "been", "but", "by",
		"can", "could", "do", "does", "for", "from", "had", "has", "have",
		"he", "her", "his", "i", "if", "in", "into", "is", "it", "its",
		"may", "more", "not", "of", "on", "or", "our", "she", "should",
		"such", "than", "that", "the", "their", "these", "they", "this",
		"to", "was", "we", "were", "which", "will", "with", "would", "you",
	} {
		stopwords[w] = struct{}{}
	}
}

// ExtractKeywords returns the most frequent alphanumeric, non-stopword tokens
// of the text, most frequent first. Ties keep first-seen order so repeated
// calls on the same text produce the same query.
func ExtractKeywords(text string, numKeywords int) []string {
	counts := make(map[string]int)
	var order []string

	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.TrimFunc(token, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if token == "" || !isAlnum(token) {
			continue
		}
		if _, skip := stopwords[token]; skip {
			continue
		}
		if counts[token] == 0 {
			order = append(order, token)
		}
		counts[token]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if numKeywords > 0 && numKeywords < len(order) {
		order = order[:numKeywords]
	}

	return order
}

func isAlnum(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}
