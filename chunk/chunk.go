// Package chunk defines the immutable chunk record emitted by the engine and
// helpers for reconstructing and validating a chunk sequence.
package chunk

import (
	"fmt"
	"strings"

	"github.com/translatekit/transchunk/types"
)

// Kind classifies a chunk's position in the sequence.
type Kind string

const (
	// KindFirst is chunk 0; it carries no context block and no leading
	// overlap. A single-chunk document is KindFirst, not KindFinal.
	KindFirst Kind = "first"

	// KindSubsequent is any middle chunk.
	KindSubsequent Kind = "subsequent"

	// KindFinal is the chunk that consumes the last remaining input.
	KindFinal Kind = "final"
)

// BoundaryInfo records how a chunk's cuts were made.
type BoundaryInfo struct {
	// StartKind is the boundary kind the chunk starts at (the previous
	// chunk's end cut; BoundaryParagraph for chunk 0).
	StartKind types.BoundaryKind `json:"start_kind"`

	// EndKind is the boundary kind chosen for this chunk's end cut.
	EndKind types.BoundaryKind `json:"end_kind"`

	// Score is the segmenter's quality score for the end cut.
	Score float64 `json:"score"`
}

// TokenBreakdown holds the per-field token counts of one chunk. The sum must
// never exceed the configured output-token limit.
type TokenBreakdown struct {
	Context         int `json:"context"`
	LeadingOverlap  int `json:"leading_overlap"`
	RawText         int `json:"raw_text"`
	TrailingOverlap int `json:"trailing_overlap"`
}

// Total returns the summed token cost of the chunk's full input text.
func (b TokenBreakdown) Total() int {
	return b.Context + b.LeadingOverlap + b.RawText + b.TrailingOverlap
}

// Chunk is one bounded unit of text plus carried context, immutable once
// emitted. RawText fields of consecutive chunks partition the source document
// exactly; overlaps are duplicated bridge text and are excluded from
// reconstruction.
type Chunk struct {
	ID   int  `json:"chunk_id"`
	Kind Kind `json:"chunk_kind"`

	// RawText is the exact source substring [StartOffset, EndOffset).
	RawText string `json:"raw_text"`

	// ContextBlock is the serialized memory state given to the translation
	// step. Empty for chunk 0.
	ContextBlock string `json:"context_block,omitempty"`

	// LeadingOverlap repeats the tail of the previous chunk's raw text.
	LeadingOverlap string `json:"leading_overlap,omitempty"`

	// TrailingOverlap repeats the head of the next chunk's raw text.
	TrailingOverlap string `json:"trailing_overlap,omitempty"`

	StartOffset int `json:"start_offset"`
	EndOffset   int `json:"end_offset"`

	Breakdown TokenBreakdown `json:"token_breakdown"`
	Boundary  BoundaryInfo   `json:"boundary_info"`
}

// FullInputText is the text submitted to the translation model: context,
// leading overlap, raw text, trailing overlap, in that fixed order.
func (c Chunk) FullInputText() string {
	var sb strings.Builder
	sb.Grow(len(c.ContextBlock) + len(c.LeadingOverlap) + len(c.RawText) + len(c.TrailingOverlap))
	sb.WriteString(c.ContextBlock)
	sb.WriteString(c.LeadingOverlap)
	sb.WriteString(c.RawText)
	sb.WriteString(c.TrailingOverlap)
	return sb.String()
}

// Reconstruct concatenates the raw text of chunks in ID order, recovering the
// original document exactly. Overlap and context fields never participate.
func Reconstruct(chunks []Chunk) string {
	var sb strings.Builder
	for _, c := range chunks {
		sb.WriteString(c.RawText)
	}
	return sb.String()
}

// Validate checks a committed chunk sequence against the structural rules:
// token totals within limit, kinds in their required positions, no empty raw
// text, offsets contiguous. Returns one message per violation.
func Validate(chunks []Chunk, maxOutputTokens int) []string {
	var issues []string
	offset := 0
	for i, c := range chunks {
		if c.ID != i {
			issues = append(issues, fmt.Sprintf("chunk %d: out-of-order id %d", i, c.ID))
		}
		if c.Breakdown.Total() > maxOutputTokens {
			issues = append(issues, fmt.Sprintf("chunk %d: %d tokens exceeds limit %d", i, c.Breakdown.Total(), maxOutputTokens))
		}
		if c.RawText == "" {
			issues = append(issues, fmt.Sprintf("chunk %d: empty raw text", i))
		}
		if c.StartOffset != offset {
			issues = append(issues, fmt.Sprintf("chunk %d: starts at %d, previous ended at %d", i, c.StartOffset, offset))
		}
		offset = c.EndOffset
		switch {
		case i == 0 && c.Kind != KindFirst:
			issues = append(issues, fmt.Sprintf("chunk 0: kind %q, want %q", c.Kind, KindFirst))
		case i > 0 && i == len(chunks)-1 && c.Kind != KindFinal:
			issues = append(issues, fmt.Sprintf("chunk %d: kind %q, want %q", i, c.Kind, KindFinal))
		case i > 0 && i < len(chunks)-1 && c.Kind != KindSubsequent:
			issues = append(issues, fmt.Sprintf("chunk %d: kind %q, want %q", i, c.Kind, KindSubsequent))
		}
		if i == 0 && (c.ContextBlock != "" || c.LeadingOverlap != "") {
			issues = append(issues, "chunk 0: context fields must be empty")
		}
	}
	return issues
}
