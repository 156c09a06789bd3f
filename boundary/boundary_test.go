package boundary

import (
	"testing"

	"github.com/translatekit/transchunk/types"
)

func boundaryAt(t *testing.T, boundaries []types.Boundary, offset int) types.Boundary {
	t.Helper()
	for _, b := range boundaries {
		if b.Offset == offset {
			return b
		}
	}
	t.Fatalf("no boundary at offset %d in %v", offset, boundaries)
	return types.Boundary{}
}

func TestFinder_FindBoundaries(t *testing.T) {
	f := NewFinder()
	//        0123456789012345678901234567
	text := "One two. Three four.\n\nFive six"
	boundaries, err := f.FindBoundaries(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(boundaries) == 0 {
		t.Fatal("no boundaries found")
	}

	for i := 1; i < len(boundaries); i++ {
		if boundaries[i].Offset <= boundaries[i-1].Offset {
			t.Fatalf("boundaries not ascending: %v", boundaries)
		}
	}

	// After "One " at offset 4: a plain word gap.
	if b := boundaryAt(t, boundaries, 4); b.Kind != types.BoundaryWord {
		t.Errorf("offset 4 kind = %v, want word", b.Kind)
	}
	// After "two. " at offset 9: sentence end beats the word gap.
	if b := boundaryAt(t, boundaries, 9); b.Kind != types.BoundarySentence {
		t.Errorf("offset 9 kind = %v, want sentence", b.Kind)
	}
	// After the blank line at offset 22: paragraph beats sentence and word.
	if b := boundaryAt(t, boundaries, 22); b.Kind != types.BoundaryParagraph {
		t.Errorf("offset 22 kind = %v, want paragraph", b.Kind)
	}
}

func TestFinder_Scores(t *testing.T) {
	f := NewFinder()
	boundaries, err := f.FindBoundaries("A b. C\n\nD e")
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range boundaries {
		var want float64
		switch b.Kind {
		case types.BoundaryParagraph:
			want = paragraphScore
		case types.BoundarySentence:
			want = sentenceScore
		case types.BoundaryWord:
			want = wordScore
		}
		if b.Score != want {
			t.Errorf("kind %v score = %g, want %g", b.Kind, b.Score, want)
		}
	}
}

func TestFinder_EdgesExcluded(t *testing.T) {
	f := NewFinder()
	// Trailing whitespace would put a boundary at len(text); cutting there
	// is meaningless, so it must not be reported.
	boundaries, err := f.FindBoundaries("word ")
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range boundaries {
		if b.Offset <= 0 || b.Offset >= len("word ") {
			t.Errorf("boundary at edge offset %d", b.Offset)
		}
	}
}

func TestFinder_Empty(t *testing.T) {
	f := NewFinder()
	boundaries, err := f.FindBoundaries("")
	if err != nil {
		t.Fatal(err)
	}
	if len(boundaries) != 0 {
		t.Errorf("FindBoundaries(\"\") = %v, want none", boundaries)
	}
}

func TestFinder_NoBoundaries(t *testing.T) {
	f := NewFinder()
	boundaries, err := f.FindBoundaries("unbrokenrunontext")
	if err != nil {
		t.Fatal(err)
	}
	if len(boundaries) != 0 {
		t.Errorf("FindBoundaries() = %v, want none for run-on text", boundaries)
	}
}
