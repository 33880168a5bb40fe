// Package textvec builds bag-of-words and TF-IDF document vectors from UI
// text and scores them by cosine similarity. Segment matching and selector
// disambiguation both rely on it.
package textvec

import (
	"strings"
	"unicode"
)

// stopWords are dropped before vectorization. The list covers the filler
// words that show up in UI labels and resource entries.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"or": true, "that": true, "the": true, "to": true, "was": true,
	"were": true, "will": true, "with": true,
}

// Tokenize lower-cases s and splits it into words on any non-alphanumeric
// boundary. CamelCase is not split; resource entries use underscores.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// DropStopWords filters stop words out of tokens, preserving order.
func DropStopWords(tokens []string) []string {
	var out []string
	for _, tok := range tokens {
		if !stopWords[tok] {
			out = append(out, tok)
		}
	}
	return out
}

// NGrams forms n-grams over the token sequence, joining the members of
// each gram with a single space. n <= 1 returns the tokens unchanged.
func NGrams(tokens []string, n int) []string {
	if n <= 1 || len(tokens) < n {
		if n > 1 {
			return nil
		}
		return tokens
	}
	out := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		out = append(out, strings.Join(tokens[i:i+n], " "))
	}
	return out
}
