package tokenizer

import (
	"context"
	"testing"
)

func TestTiktoken_CountTokens(t *testing.T) {
	counter, err := NewTiktoken("cl100k_base")
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if n, err := counter.CountTokens(ctx, ""); err != nil || n != 0 {
		t.Errorf("CountTokens(\"\") = %d, %v, want 0, nil", n, err)
	}

	n, err := counter.CountTokens(ctx, "hello world")
	if err != nil {
		t.Fatal(err)
	}
	if n <= 0 {
		t.Errorf("CountTokens(\"hello world\") = %d, want positive", n)
	}

	// Counting is pure.
	again, err := counter.CountTokens(ctx, "hello world")
	if err != nil {
		t.Fatal(err)
	}
	if again != n {
		t.Errorf("repeat count = %d, want %d", again, n)
	}
}

func TestTiktoken_MonotoneInLength(t *testing.T) {
	counter, err := NewTiktoken("")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	short, err := counter.CountTokens(ctx, "one sentence here.")
	if err != nil {
		t.Fatal(err)
	}
	long, err := counter.CountTokens(ctx, "one sentence here. and quite a few more words after it, too.")
	if err != nil {
		t.Fatal(err)
	}
	if long <= short {
		t.Errorf("longer text counted %d tokens, shorter %d", long, short)
	}
}

func TestTiktoken_UnknownEncoding(t *testing.T) {
	if _, err := NewTiktoken("p50k_nonsense"); err == nil {
		t.Error("NewTiktoken(unknown) = nil error, want failure")
	}
}
