// Package extractor implements the types.TermExtractor contract with a
// heuristic: proper-noun phrases (capitalized runs away from sentence starts)
// and numerals, weighted by how often they appear in the span.
package extractor

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/translatekit/transchunk/types"
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}'’-]*`)

// Heuristic extracts salient terms without any model call. The zero value is
// usable.
type Heuristic struct{}

// NewHeuristic returns the regexp-backed term extractor.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// ExtractTerms returns proper-noun phrases and numerals found in text.
// Weight is the occurrence count. Output is ordered by weight descending,
// then lexicographically, so results are deterministic.
func (h *Heuristic) ExtractTerms(text string) ([]types.Term, error) {
	counts := make(map[string]int)

	locs := wordRe.FindAllStringIndex(text, -1)
	var phrase []string
	flush := func() {
		if len(phrase) > 0 {
			counts[strings.Join(phrase, " ")]++
			phrase = phrase[:0]
		}
	}
	prevEnd := -1
	for _, loc := range locs {
		word := text[loc[0]:loc[1]]
		// A gap with anything beyond a single space ends the current phrase.
		if prevEnd >= 0 && (loc[0]-prevEnd != 1 || text[prevEnd] != ' ') {
			flush()
		}
		prevEnd = loc[1]

		switch {
		case isNumeral(word):
			flush()
			counts[word]++
		case isCapitalized(word) && !sentenceInitial(text, loc[0]):
			phrase = append(phrase, word)
		default:
			flush()
		}
	}
	flush()

	terms := make([]types.Term, 0, len(counts))
	for term, n := range counts {
		terms = append(terms, types.Term{Term: term, Weight: float64(n)})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Weight != terms[j].Weight {
			return terms[i].Weight > terms[j].Weight
		}
		return terms[i].Term < terms[j].Term
	})
	return terms, nil
}

func isNumeral(word string) bool {
	for _, r := range word {
		if !unicode.IsDigit(r) && r != '-' {
			return false
		}
	}
	return word != "" && word != "-"
}

func isCapitalized(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}

// sentenceInitial reports whether the word starting at offset is the first
// word of the document, a line, or a sentence. Capitalization there says
// nothing about the word being a name.
func sentenceInitial(text string, offset int) bool {
	i := offset - 1
	for i >= 0 {
		r := rune(text[i])
		if r == ' ' || r == '\t' {
			i--
			continue
		}
		return r == '.' || r == '!' || r == '?' || r == '\n' || r == '"'
	}
	return true
}
