package builder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/translatekit/transchunk/boundary"
	"github.com/translatekit/transchunk/types"
)

// runeCounter charges one token per rune. Deterministic and prefix-monotonic,
// which makes cut offsets predictable in tests.
type runeCounter struct{}

func (runeCounter) CountTokens(_ context.Context, text string) (int, error) {
	return utf8.RuneCountInString(text), nil
}

// flatCounter charges the same cost for any non-empty text, to simulate a
// single indivisible unit that busts the budget.
type flatCounter struct{ cost int }

func (c flatCounter) CountTokens(_ context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	return c.cost, nil
}

// failCounter fails after a number of calls.
type failCounter struct {
	calls *int
	after int
}

func (c failCounter) CountTokens(_ context.Context, text string) (int, error) {
	*c.calls++
	if *c.calls > c.after {
		return 0, errors.New("counter down")
	}
	return utf8.RuneCountInString(text), nil
}

func newTestBuilder(counter types.TokenCounter, cfg Config) *Builder {
	return New(counter, boundary.NewFinder(), cfg)
}

func TestBuilder_WholeRemainderFits(t *testing.T) {
	b := newTestBuilder(runeCounter{}, Config{})
	doc := "Short document. Nothing to split."

	res, err := b.Build(context.Background(), doc, 0, 100, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.RawText != doc {
		t.Errorf("RawText = %q, want whole document", res.RawText)
	}
	if res.NewCursor != len(doc) {
		t.Errorf("NewCursor = %d, want %d", res.NewCursor, len(doc))
	}
	if res.Boundary.EndKind != types.BoundaryParagraph || res.Boundary.Score != 1.0 {
		t.Errorf("end boundary = %+v, want paragraph/1.0", res.Boundary)
	}
	if res.TrailingOverlap != "" {
		t.Errorf("TrailingOverlap = %q, want empty at end of document", res.TrailingOverlap)
	}
}

func TestBuilder_CutsAtSentenceBoundary(t *testing.T) {
	// A wide search window so the sentence ends stay in range.
	b := newTestBuilder(runeCounter{}, Config{WindowFraction: 0.5})
	doc := "Alpha beta gamma. Delta epsilon zeta. Eta theta iota kappa lambda."

	res, err := b.Build(context.Background(), doc, 0, 40, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Boundary.EndKind != types.BoundarySentence {
		t.Errorf("EndKind = %v, want sentence", res.Boundary.EndKind)
	}
	if !strings.HasSuffix(res.RawText, ". ") {
		t.Errorf("RawText = %q, want a sentence-end cut", res.RawText)
	}
	if res.RawTokens > 40 {
		t.Errorf("RawTokens = %d, exceeds budget 40", res.RawTokens)
	}
	if doc[:res.NewCursor] != res.RawText {
		t.Errorf("cursor and raw text disagree: %d vs %q", res.NewCursor, res.RawText)
	}
}

func TestBuilder_ParagraphBeatsSentence(t *testing.T) {
	b := newTestBuilder(runeCounter{}, Config{WindowFraction: 0.5})
	// Both a paragraph break and a later sentence end fall in the window;
	// the paragraph must win even though the sentence end sits closer to
	// the hard limit.
	doc := "One two three.\n\nFour five. Six seven eight nine ten eleven."

	res, err := b.Build(context.Background(), doc, 0, 28, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Boundary.EndKind != types.BoundaryParagraph {
		t.Errorf("EndKind = %v, want paragraph", res.Boundary.EndKind)
	}
	if res.RawText != "One two three.\n\n" {
		t.Errorf("RawText = %q, want the first paragraph", res.RawText)
	}
}

func TestBuilder_WordFallback(t *testing.T) {
	b := newTestBuilder(runeCounter{}, Config{})
	doc := strings.Repeat("aaaa bbbb cccc dddd eeee ", 4) // no sentence ends

	res, err := b.Build(context.Background(), doc, 0, 50, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Boundary.EndKind != types.BoundaryWord {
		t.Errorf("EndKind = %v, want word", res.Boundary.EndKind)
	}
	if res.RawTokens > 50 {
		t.Errorf("RawTokens = %d, exceeds budget 50", res.RawTokens)
	}
}

func TestBuilder_HardCutOnRunOnText(t *testing.T) {
	b := newTestBuilder(runeCounter{}, Config{})
	doc := strings.Repeat("x", 200) // no boundaries at all

	res, err := b.Build(context.Background(), doc, 0, 64, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.RawText) != 64 {
		t.Errorf("RawText length = %d, want the hard limit 64", len(res.RawText))
	}
	if res.Boundary.EndKind != types.BoundaryWord || res.Boundary.Score != 0 {
		t.Errorf("boundary = %+v, want word/0 for a hard cut", res.Boundary)
	}
}

func TestBuilder_UnsplittableSpan(t *testing.T) {
	b := newTestBuilder(flatCounter{cost: 500}, Config{})
	doc := "supercalifragilisticexpialidocious and more"

	_, err := b.Build(context.Background(), doc, 0, 100, "")
	var unsplittable *UnsplittableSpanError
	if !errors.As(err, &unsplittable) {
		t.Fatalf("Build() error = %v, want *UnsplittableSpanError", err)
	}
	if unsplittable.UnitTokens != 500 || unsplittable.TextBudget != 100 {
		t.Errorf("UnsplittableSpanError = %+v, want unit 500 against budget 100", unsplittable)
	}
}

func TestBuilder_LeadingOverlap(t *testing.T) {
	b := newTestBuilder(runeCounter{}, Config{})
	prev := "One two. Three four. Five six. "
	doc := "Seven eight nine ten eleven twelve."

	res, err := b.Build(context.Background(), doc, 0, 200, prev)
	if err != nil {
		t.Fatal(err)
	}
	want := "Three four. Five six. "
	if res.LeadingOverlap != want {
		t.Errorf("LeadingOverlap = %q, want %q", res.LeadingOverlap, want)
	}
	if res.LeadingTokens != utf8.RuneCountInString(want) {
		t.Errorf("LeadingTokens = %d, want %d", res.LeadingTokens, utf8.RuneCountInString(want))
	}
}

func TestBuilder_LeadingOverlapShrinksUnderTightBudget(t *testing.T) {
	b := newTestBuilder(runeCounter{}, Config{})
	prev := "One two. Three four. Five six. "
	doc := "Seven eight nine ten eleven twelve."

	// A quarter of 48 tokens cannot hold two sentences (22 runes), only one.
	res, err := b.Build(context.Background(), doc, 0, 48, prev)
	if err != nil {
		t.Fatal(err)
	}
	if res.LeadingOverlap != "Five six. " {
		t.Errorf("LeadingOverlap = %q, want the single closest sentence", res.LeadingOverlap)
	}
}

func TestBuilder_TrailingOverlapPeeksAhead(t *testing.T) {
	b := newTestBuilder(runeCounter{}, Config{WindowFraction: 0.6})
	// The paragraph cut leaves 21 tokens of headroom, enough to bridge the
	// next sentence into the trailing overlap.
	doc := "Alpha beta gamma.\n\nDelta epsilon. Zeta eta. Theta iota kappa."

	res, err := b.Build(context.Background(), doc, 0, 40, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.TrailingOverlap != "Delta epsilon. " {
		t.Errorf("TrailingOverlap = %q, want %q", res.TrailingOverlap, "Delta epsilon. ")
	}
	rest := doc[res.NewCursor:]
	if !strings.HasPrefix(rest, res.TrailingOverlap) {
		t.Errorf("TrailingOverlap %q is not a prefix of the remaining document %q", res.TrailingOverlap, rest)
	}
	total := res.LeadingTokens + res.RawTokens + res.TrailingTokens
	if total > 40 {
		t.Errorf("total tokens %d exceed the text budget 40", total)
	}
}

func TestBuilder_BudgetInvariantHolds(t *testing.T) {
	b := newTestBuilder(runeCounter{}, Config{})
	doc := strings.Repeat("The ship sailed on. ", 40)
	prev := "It had left port at dawn. The crew was quiet. "

	for _, budget := range []int{25, 40, 80, 160} {
		res, err := b.Build(context.Background(), doc, 0, budget, prev)
		if err != nil {
			t.Fatalf("budget %d: %v", budget, err)
		}
		total := res.LeadingTokens + res.RawTokens + res.TrailingTokens
		if total > budget {
			t.Errorf("budget %d: total %d exceeds it", budget, total)
		}
	}
}

func TestBuilder_CollaboratorFailurePropagates(t *testing.T) {
	calls := 0
	b := newTestBuilder(failCounter{calls: &calls, after: 2}, Config{})
	doc := strings.Repeat("word word word. ", 50)

	_, err := b.Build(context.Background(), doc, 0, 40, "")
	if err == nil || !strings.Contains(err.Error(), "counter down") {
		t.Errorf("Build() error = %v, want the counter failure", err)
	}
}

func TestBuilder_MultiByteSafe(t *testing.T) {
	b := newTestBuilder(runeCounter{}, Config{})
	doc := strings.Repeat("日本語 テキスト。", 20)

	res, err := b.Build(context.Background(), doc, 0, 30, "")
	if err != nil {
		t.Fatal(err)
	}
	if !utf8.ValidString(res.RawText) {
		t.Error("RawText cut inside a rune")
	}
	if res.RawTokens > 30 {
		t.Errorf("RawTokens = %d, exceeds budget 30", res.RawTokens)
	}
}
