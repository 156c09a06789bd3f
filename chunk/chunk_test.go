package chunk

import (
	"strings"
	"testing"

	"github.com/translatekit/transchunk/types"
)

func TestChunk_FullInputText(t *testing.T) {
	c := Chunk{
		ContextBlock:    "Glossary:\n- Aurora (weight 2)\n\n",
		LeadingOverlap:  "Previous sentence. ",
		RawText:         "The raw text of this chunk. ",
		TrailingOverlap: "Next sentence.",
	}
	got := c.FullInputText()
	want := c.ContextBlock + c.LeadingOverlap + c.RawText + c.TrailingOverlap
	if got != want {
		t.Errorf("FullInputText() = %q, want %q", got, want)
	}
}

func TestTokenBreakdown_Total(t *testing.T) {
	b := TokenBreakdown{Context: 10, LeadingOverlap: 3, RawText: 80, TrailingOverlap: 4}
	if b.Total() != 97 {
		t.Errorf("Total() = %d, want 97", b.Total())
	}
}

func TestReconstruct(t *testing.T) {
	doc := "First part. Second part. Third part."
	chunks := []Chunk{
		{ID: 0, RawText: doc[:12], TrailingOverlap: "Second part. "},
		{ID: 1, RawText: doc[12:25], LeadingOverlap: "First part. ", TrailingOverlap: "Third part."},
		{ID: 2, RawText: doc[25:], LeadingOverlap: "Second part. "},
	}
	if got := Reconstruct(chunks); got != doc {
		t.Errorf("Reconstruct() = %q, want %q", got, doc)
	}
}

func validSequence() []Chunk {
	return []Chunk{
		{ID: 0, Kind: KindFirst, RawText: "aaa ", StartOffset: 0, EndOffset: 4,
			Breakdown: TokenBreakdown{RawText: 4}},
		{ID: 1, Kind: KindSubsequent, RawText: "bbb ", StartOffset: 4, EndOffset: 8,
			ContextBlock: "ctx", LeadingOverlap: "aaa ",
			Breakdown: TokenBreakdown{Context: 2, LeadingOverlap: 1, RawText: 4}},
		{ID: 2, Kind: KindFinal, RawText: "ccc", StartOffset: 8, EndOffset: 11,
			ContextBlock: "ctx", LeadingOverlap: "bbb ",
			Breakdown: TokenBreakdown{Context: 2, LeadingOverlap: 1, RawText: 3}},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func([]Chunk) []Chunk
		wantHit string
	}{
		{
			name:   "valid sequence",
			mutate: func(cs []Chunk) []Chunk { return cs },
		},
		{
			name: "token limit breach",
			mutate: func(cs []Chunk) []Chunk {
				cs[1].Breakdown.RawText = 500
				return cs
			},
			wantHit: "exceeds limit",
		},
		{
			name: "wrong first kind",
			mutate: func(cs []Chunk) []Chunk {
				cs[0].Kind = KindSubsequent
				return cs
			},
			wantHit: `want "first"`,
		},
		{
			name: "wrong final kind",
			mutate: func(cs []Chunk) []Chunk {
				cs[2].Kind = KindSubsequent
				return cs
			},
			wantHit: `want "final"`,
		},
		{
			name: "empty raw text",
			mutate: func(cs []Chunk) []Chunk {
				cs[1].RawText = ""
				return cs
			},
			wantHit: "empty raw text",
		},
		{
			name: "offset gap",
			mutate: func(cs []Chunk) []Chunk {
				cs[2].StartOffset = 9
				return cs
			},
			wantHit: "previous ended at",
		},
		{
			name: "context on chunk zero",
			mutate: func(cs []Chunk) []Chunk {
				cs[0].ContextBlock = "ctx"
				return cs
			},
			wantHit: "must be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := Validate(tt.mutate(validSequence()), 100)
			if tt.wantHit == "" {
				if len(issues) != 0 {
					t.Fatalf("Validate() = %v, want none", issues)
				}
				return
			}
			for _, issue := range issues {
				if strings.Contains(issue, tt.wantHit) {
					return
				}
			}
			t.Errorf("Validate() = %v, want an issue containing %q", issues, tt.wantHit)
		})
	}
}

func TestValidate_SingleChunkIsFirst(t *testing.T) {
	chunks := []Chunk{{ID: 0, Kind: KindFirst, RawText: "only", EndOffset: 4,
		Breakdown: TokenBreakdown{RawText: 4}}}
	if issues := Validate(chunks, 100); len(issues) != 0 {
		t.Errorf("Validate() = %v, want none", issues)
	}
}

func TestBoundaryKindString(t *testing.T) {
	if types.BoundaryParagraph.String() != "paragraph" ||
		types.BoundarySentence.String() != "sentence" ||
		types.BoundaryWord.String() != "word" {
		t.Error("BoundaryKind names do not match wire values")
	}
}
