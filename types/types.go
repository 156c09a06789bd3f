// Package types defines the collaborator interfaces consumed by the chunking
// engine and the value types shared across packages. The engine treats every
// collaborator as an opaque, synchronous call; implementations that go over
// the network must bring their own timeouts via the context.
package types

import "context"

// BoundaryKind is the granularity of a candidate cut point. Kinds have a
// strict priority order: paragraph beats sentence beats word, regardless of
// score.
type BoundaryKind int

const (
	// BoundaryWord is the fallback of last resort.
	BoundaryWord BoundaryKind = iota

	// BoundarySentence ends at sentence punctuation.
	BoundarySentence

	// BoundaryParagraph ends at a blank-line paragraph break.
	BoundaryParagraph
)

// String returns the kind's wire name.
func (k BoundaryKind) String() string {
	switch k {
	case BoundaryParagraph:
		return "paragraph"
	case BoundarySentence:
		return "sentence"
	case BoundaryWord:
		return "word"
	default:
		return "unknown"
	}
}

// Boundary is one candidate cut position inside a text span.
type Boundary struct {
	// Offset is the byte offset immediately after the boundary, i.e. the
	// position a cut at this boundary would end at. Always on a rune start.
	Offset int

	// Kind is the boundary granularity.
	Kind BoundaryKind

	// Score is an opaque quality score in [0,1] supplied by the segmenter.
	Score float64
}

// Term is a salient term extracted from a chunk, carried forward so the
// translation of recurring names and vocabulary stays consistent.
type Term struct {
	Term   string
	Weight float64
}

// TokenCounter maps text to an exact token count for a configured model.
// Implementations must be deterministic and must return 0 for the empty
// string.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

// BoundaryFinder proposes candidate cut positions in a span of text, ordered
// by offset ascending.
type BoundaryFinder interface {
	FindBoundaries(text string) ([]Boundary, error)
}

// TermExtractor returns the salient terms of a span (proper nouns, technical
// vocabulary, numerals) with a positive weight each.
type TermExtractor interface {
	ExtractTerms(text string) ([]Term, error)
}

// Summarizer condenses text to fit a token budget. The engine verifies the
// output against the TokenCounter rather than trusting the budget was met.
type Summarizer interface {
	Summarize(ctx context.Context, text string, budgetTokens int) (string, error)
}
