// Package builder selects the raw-text span for one chunk: the largest
// substring that fits the text budget, cut at the best boundary available,
// with bridge overlaps duplicated from the neighboring chunks.
package builder

import (
	"context"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/translatekit/transchunk/chunk"
	"github.com/translatekit/transchunk/types"
)

const (
	// DefaultWindowFraction is the share of the candidate span, measured back
	// from the hard token limit, searched for a quality boundary.
	DefaultWindowFraction = 0.10

	// DefaultOverlapSentences is the number of sentences duplicated across a
	// chunk boundary in each direction.
	DefaultOverlapSentences = 2

	// maxPeekBytes bounds how far past a cut the builder looks for trailing
	// overlap sentences.
	maxPeekBytes = 4096
)

// UnsplittableSpanError is returned when the smallest indivisible unit at the
// cursor costs more tokens than the available text budget. The caller must
// raise the output ceiling; the builder never exceeds the limit.
type UnsplittableSpanError struct {
	Cursor     int
	TextBudget int
	UnitTokens int
}

func (e *UnsplittableSpanError) Error() string {
	return fmt.Sprintf("unsplittable span at offset %d: smallest unit costs %d tokens, budget is %d",
		e.Cursor, e.UnitTokens, e.TextBudget)
}

// Config tunes the builder. Zero values select the defaults.
type Config struct {
	// WindowFraction is the trailing share of a candidate span searched for
	// a boundary before falling back to the hard token-limit cut.
	WindowFraction float64

	// OverlapSentences is how many sentences each overlap carries.
	OverlapSentences int
}

// Result is one built span, not yet committed.
type Result struct {
	RawText         string
	NewCursor       int
	LeadingOverlap  string
	TrailingOverlap string
	Boundary        chunk.BoundaryInfo

	RawTokens      int
	LeadingTokens  int
	TrailingTokens int
}

// Builder cuts budgeted spans out of a document. Safe for reuse across
// documents; it holds no per-run state.
type Builder struct {
	counter          types.TokenCounter
	finder           types.BoundaryFinder
	windowFraction   float64
	overlapSentences int
}

// New creates a Builder around the given collaborators.
func New(counter types.TokenCounter, finder types.BoundaryFinder, cfg Config) *Builder {
	if cfg.WindowFraction <= 0 || cfg.WindowFraction >= 1 {
		cfg.WindowFraction = DefaultWindowFraction
	}
	if cfg.OverlapSentences <= 0 {
		cfg.OverlapSentences = DefaultOverlapSentences
	}
	return &Builder{
		counter:          counter,
		finder:           finder,
		windowFraction:   cfg.WindowFraction,
		overlapSentences: cfg.OverlapSentences,
	}
}

// Build returns the span [cursor, cut) that best fits textBudget, the new
// cursor, and the overlap bridges. prevRaw is the previous committed chunk's
// raw text (empty for chunk 0). The returned token counts always satisfy
// leading + raw + trailing ≤ textBudget.
func (b *Builder) Build(ctx context.Context, doc string, cursor, textBudget int, prevRaw string) (Result, error) {
	remaining := doc[cursor:]

	leading, leadTokens, err := b.leadingOverlap(ctx, prevRaw, textBudget)
	if err != nil {
		return Result{}, err
	}

	rawBudget := textBudget - leadTokens
	if rawBudget <= 0 {
		// The overlap is continuity sugar, never worth starving the chunk.
		leading, leadTokens = "", 0
		rawBudget = textBudget
	}

	total, err := b.counter.CountTokens(ctx, remaining)
	if err != nil {
		return Result{}, fmt.Errorf("token count: %w", err)
	}

	// Everything left fits: this is the final span, no trailing overlap.
	if total <= rawBudget {
		return Result{
			RawText:        remaining,
			NewCursor:      len(doc),
			LeadingOverlap: leading,
			Boundary: chunk.BoundaryInfo{
				EndKind: types.BoundaryParagraph,
				Score:   1.0,
			},
			RawTokens:     total,
			LeadingTokens: leadTokens,
		}, nil
	}

	hardEnd, err := b.maxFit(ctx, remaining, rawBudget)
	if err != nil {
		return Result{}, err
	}
	if hardEnd == 0 {
		unit := firstUnit(remaining)
		unitTokens, cerr := b.counter.CountTokens(ctx, unit)
		if cerr != nil {
			return Result{}, fmt.Errorf("token count: %w", cerr)
		}
		return Result{}, &UnsplittableSpanError{
			Cursor:     cursor,
			TextBudget: textBudget,
			UnitTokens: unitTokens,
		}
	}

	cut, endKind, score, err := b.chooseCut(remaining, hardEnd)
	if err != nil {
		return Result{}, fmt.Errorf("find boundaries: %w", err)
	}

	raw := remaining[:cut]
	rawTokens, err := b.counter.CountTokens(ctx, raw)
	if err != nil {
		return Result{}, fmt.Errorf("token count: %w", err)
	}

	trailing, trailTokens, err := b.trailingOverlap(ctx, remaining[cut:], textBudget-leadTokens-rawTokens)
	if err != nil {
		return Result{}, err
	}

	return Result{
		RawText:         raw,
		NewCursor:       cursor + cut,
		LeadingOverlap:  leading,
		TrailingOverlap: trailing,
		Boundary: chunk.BoundaryInfo{
			EndKind: endKind,
			Score:   score,
		},
		RawTokens:      rawTokens,
		LeadingTokens:  leadTokens,
		TrailingTokens: trailTokens,
	}, nil
}

// maxFit binary-searches the largest rune-aligned byte offset e such that
// text[:e] costs at most budget tokens. Tokenizers are not linear in
// character count, so every probe measures exactly.
func (b *Builder) maxFit(ctx context.Context, text string, budget int) (int, error) {
	starts := runeStarts(text)
	lo, hi := 0, len(starts)-1 // indexes into starts; starts[last] == len(text)
	best := 0
	for lo <= hi {
		mid := (lo + hi) / 2
		n, err := b.counter.CountTokens(ctx, text[:starts[mid]])
		if err != nil {
			return 0, fmt.Errorf("token count: %w", err)
		}
		if n <= budget {
			best = starts[mid]
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return best, nil
}

// chooseCut picks the best boundary inside the trailing window before
// hardEnd. Kinds compare strictly before scores: any paragraph boundary beats
// any sentence boundary, and word boundaries are used only when nothing else
// exists in the window. Without any boundary the hard limit itself is the
// cut.
func (b *Builder) chooseCut(text string, hardEnd int) (cut int, kind types.BoundaryKind, score float64, err error) {
	boundaries, err := b.finder.FindBoundaries(text[:hardEnd])
	if err != nil {
		return 0, 0, 0, err
	}

	windowStart := hardEnd - int(b.windowFraction*float64(hardEnd))
	var best *types.Boundary
	for i := range boundaries {
		bd := boundaries[i]
		if bd.Offset < windowStart || bd.Offset > hardEnd {
			continue
		}
		if best == nil || better(bd, *best) {
			best = &bd
		}
	}
	if best == nil {
		// Pathological run-on text: cut at the hard token limit.
		return hardEnd, types.BoundaryWord, 0, nil
	}
	return best.Offset, best.Kind, best.Score, nil
}

// better orders boundaries lexicographically by (kind priority, score,
// proximity to the hard limit).
func better(a, b types.Boundary) bool {
	if a.Kind != b.Kind {
		return a.Kind > b.Kind
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Offset > b.Offset
}

// leadingOverlap returns the last overlapSentences sentences of prevRaw,
// shrinking to fewer sentences (or none) if the bridge would eat more than a
// quarter of the text budget.
func (b *Builder) leadingOverlap(ctx context.Context, prevRaw string, textBudget int) (string, int, error) {
	if prevRaw == "" {
		return "", 0, nil
	}
	starts, err := b.sentenceStartsFromEnd(prevRaw)
	if err != nil {
		return "", 0, err
	}
	for n := min(b.overlapSentences, len(starts)); n > 0; n-- {
		overlap := prevRaw[starts[n-1]:]
		tokens, cerr := b.counter.CountTokens(ctx, overlap)
		if cerr != nil {
			return "", 0, fmt.Errorf("token count: %w", cerr)
		}
		if tokens <= textBudget/4 {
			return overlap, tokens, nil
		}
	}
	return "", 0, nil
}

// trailingOverlap peeks past the cut for up to overlapSentences sentences,
// dropping sentences from the end until the bridge fits the remaining budget.
func (b *Builder) trailingOverlap(ctx context.Context, rest string, budget int) (string, int, error) {
	if rest == "" || budget <= 0 {
		return "", 0, nil
	}
	peek := rest
	if len(peek) > maxPeekBytes {
		peek = peek[:alignDown(peek, maxPeekBytes)]
	}
	boundaries, err := b.finder.FindBoundaries(peek)
	if err != nil {
		return "", 0, fmt.Errorf("find boundaries: %w", err)
	}
	var ends []int
	for _, bd := range boundaries {
		if bd.Kind >= types.BoundarySentence {
			ends = append(ends, bd.Offset)
			if len(ends) == b.overlapSentences {
				break
			}
		}
	}
	for n := len(ends); n > 0; n-- {
		overlap := peek[:ends[n-1]]
		tokens, cerr := b.counter.CountTokens(ctx, overlap)
		if cerr != nil {
			return "", 0, fmt.Errorf("token count: %w", cerr)
		}
		if tokens <= budget {
			return overlap, tokens, nil
		}
	}
	return "", 0, nil
}

// sentenceStartsFromEnd returns byte offsets in text where the trailing 1..n
// sentences begin, nearest-to-end first.
func (b *Builder) sentenceStartsFromEnd(text string) ([]int, error) {
	tail := text
	base := 0
	if len(tail) > maxPeekBytes {
		base = alignUp(tail, len(tail)-maxPeekBytes)
		tail = tail[base:]
	}
	boundaries, err := b.finder.FindBoundaries(tail)
	if err != nil {
		return nil, fmt.Errorf("find boundaries: %w", err)
	}
	var starts []int
	for i := len(boundaries) - 1; i >= 0; i-- {
		if boundaries[i].Kind >= types.BoundarySentence {
			starts = append(starts, base+boundaries[i].Offset)
			if len(starts) == b.overlapSentences {
				break
			}
		}
	}
	return starts, nil
}

// firstUnit is the smallest indivisible prefix: any leading whitespace plus
// the first word, or the whole text if it never breaks.
func firstUnit(text string) string {
	sawWord := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			if sawWord {
				return text[:i]
			}
			continue
		}
		sawWord = true
	}
	return text
}

// runeStarts returns every rune-start byte offset of text plus len(text).
func runeStarts(text string) []int {
	starts := make([]int, 0, len(text)+1)
	for i := range text {
		starts = append(starts, i)
	}
	starts = append(starts, len(text))
	return starts
}

func alignDown(s string, i int) int {
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

func alignUp(s string, i int) int {
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}
