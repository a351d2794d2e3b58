package search

import "strings"

// Stop words ignored when checking for verbatim matches
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "or": true, "what": true, "which": true,
}

// tokenize lowercases text, trims punctuation and drops stop words.
func tokenize(text string) []string {
	words := strings.Fields(text)
	out := make([]string, 0, len(words))
	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}<>*_`#"))
		if cleaned != "" && !stopWords[cleaned] {
			out = append(out, cleaned)
		}
	}
	return out
}

// keywordMatcher reports whether a chunk contains every query keyword.
type keywordMatcher []string

func newKeywordMatcher(query string) keywordMatcher {
	return keywordMatcher(tokenize(query))
}

func (m keywordMatcher) matches(content string) bool {
	if len(m) == 0 {
		return false
	}
	words := tokenize(content)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	for _, k := range m {
		if _, ok := set[k]; !ok {
			return false
		}
	}
	return true
}
