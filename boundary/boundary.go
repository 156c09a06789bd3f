// Package boundary provides a regexp-based implementation of the
// types.BoundaryFinder contract. It recognizes paragraph breaks, sentence
// endings, and word gaps, with fixed quality scores per granularity.
package boundary

import (
	"regexp"
	"sort"

	"github.com/translatekit/transchunk/types"
)

var (
	paragraphRe = regexp.MustCompile(`\n\n+`)
	sentenceRe  = regexp.MustCompile(`[.!?。！？]['")\]]?\s+`)
	wordRe      = regexp.MustCompile(`\s+`)
)

// Scores per boundary granularity. The engine treats them as opaque; the
// values mirror common segmenter conventions (paragraph strongest).
const (
	paragraphScore = 1.0
	sentenceScore  = 0.8
	wordScore      = 0.4
)

// Finder proposes cut positions in a span of text. The zero value is usable.
type Finder struct{}

// NewFinder returns a regexp-backed boundary finder.
func NewFinder() *Finder {
	return &Finder{}
}

// FindBoundaries returns every candidate cut in text, ordered by offset
// ascending. Offsets point just past the separator, so a cut keeps the
// separator with the preceding chunk. A paragraph break also matches the
// sentence and word patterns; the strongest kind wins per offset.
func (f *Finder) FindBoundaries(text string) ([]types.Boundary, error) {
	if text == "" {
		return nil, nil
	}
	byOffset := make(map[int]types.Boundary)

	add := func(locs [][]int, kind types.BoundaryKind, score float64) {
		for _, loc := range locs {
			off := loc[1]
			if off <= 0 || off >= len(text) {
				continue
			}
			if prev, ok := byOffset[off]; ok && prev.Kind >= kind {
				continue
			}
			byOffset[off] = types.Boundary{Offset: off, Kind: kind, Score: score}
		}
	}

	add(wordRe.FindAllStringIndex(text, -1), types.BoundaryWord, wordScore)
	add(sentenceRe.FindAllStringIndex(text, -1), types.BoundarySentence, sentenceScore)
	add(paragraphRe.FindAllStringIndex(text, -1), types.BoundaryParagraph, paragraphScore)

	boundaries := make([]types.Boundary, 0, len(byOffset))
	for _, b := range byOffset {
		boundaries = append(boundaries, b)
	}
	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i].Offset < boundaries[j].Offset })
	return boundaries, nil
}
