// Package memory accumulates cross-chunk context: a weighted term glossary,
// a sliding window of recent chunk summaries, and a condensed summary of
// everything evicted from the window. The serialized state is what a
// subsequent chunk carries as its context block, and it never exceeds the
// configured token cap after a commit.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/translatekit/transchunk/chunk"
	"github.com/translatekit/transchunk/types"
)

const (
	// DefaultWindowSize is the number of chunk summaries kept verbatim.
	DefaultWindowSize = 4

	// DefaultProtectedRepeatThreshold is the appearance count at which a
	// term becomes protected from cap trimming.
	DefaultProtectedRepeatThreshold = 3
)

// ErrInvalidCapTokens indicates the context cap is invalid (<=0).
var ErrInvalidCapTokens = errors.New("context cap tokens must be positive")

// ErrInvalidWindowSize indicates the sliding window size is invalid (<=0).
var ErrInvalidWindowSize = errors.New("sliding window size must be positive")

// ContextCapError is returned when the serialized memory cannot shrink under
// the cap without dropping protected terms. The caller must widen the cap or
// accept a smaller sliding window.
type ContextCapError struct {
	CapTokens        int
	SerializedTokens int
	ProtectedTerms   int
}

func (e *ContextCapError) Error() string {
	return fmt.Sprintf("context cap unsatisfiable: %d tokens serialized against cap %d with %d protected terms remaining",
		e.SerializedTokens, e.CapTokens, e.ProtectedTerms)
}

// Summary is one sliding-window entry.
type Summary struct {
	ChunkID int    `json:"chunk_id"`
	Text    string `json:"text"`
}

// TermSnapshot is the externally visible form of one glossary term.
type TermSnapshot struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
	Count  int     `json:"count"`
	Seq    int     `json:"seq"`
}

// Snapshot is the full memory state, suitable for persistence and restore.
type Snapshot struct {
	Terms     []TermSnapshot `json:"terms"`
	Recent    []Summary      `json:"recent_summaries"`
	Condensed string         `json:"condensed_summary,omitempty"`
	NextSeq   int            `json:"next_seq"`
}

// Config tunes the store. Zero values select the defaults.
type Config struct {
	// CapTokens is the hard ceiling on the serialized state. Required.
	CapTokens int

	// WindowSize is K, the number of summaries kept verbatim.
	WindowSize int

	// ProtectedRepeatThreshold is the appearance count that protects a term
	// from trimming.
	ProtectedRepeatThreshold int
}

type termEntry struct {
	term   string
	weight float64
	count  int
	seq    int
}

// Store owns the memory state for one run. It is mutated only by Update,
// once per committed chunk, and is not safe for concurrent use.
type Store struct {
	counter    types.TokenCounter
	summarizer types.Summarizer
	cfg        Config

	terms     map[string]*termEntry
	recent    []Summary
	condensed string
	nextSeq   int
}

// NewStore creates an empty store.
func NewStore(counter types.TokenCounter, summarizer types.Summarizer, cfg Config) (*Store, error) {
	if cfg.CapTokens <= 0 {
		return nil, ErrInvalidCapTokens
	}
	if cfg.WindowSize == 0 {
		cfg.WindowSize = DefaultWindowSize
	}
	if cfg.WindowSize < 0 {
		return nil, ErrInvalidWindowSize
	}
	if cfg.ProtectedRepeatThreshold <= 0 {
		cfg.ProtectedRepeatThreshold = DefaultProtectedRepeatThreshold
	}
	return &Store{
		counter:    counter,
		summarizer: summarizer,
		cfg:        cfg,
		terms:      make(map[string]*termEntry),
	}, nil
}

// summaryBudget is the token budget for one sliding-window summary.
func (s *Store) summaryBudget() int {
	b := s.cfg.CapTokens / (2 * (s.cfg.WindowSize + 1))
	if b < 1 {
		b = 1
	}
	return b
}

// condensedBudget is the token budget for the condensed summary.
func (s *Store) condensedBudget() int {
	b := s.cfg.CapTokens / 4
	if b < 1 {
		b = 1
	}
	return b
}

// Update commits one chunk into the memory: merges its extracted terms,
// appends its summary, condenses any window eviction, and trims the glossary
// back under the cap. On error the store may hold a partially applied state
// and the run must stop.
func (s *Store) Update(ctx context.Context, c chunk.Chunk, extracted []types.Term) error {
	s.mergeTerms(extracted)

	summary, err := s.summarize(ctx, c.RawText, s.summaryBudget())
	if err != nil {
		return err
	}
	s.recent = append(s.recent, Summary{ChunkID: c.ID, Text: summary})

	if len(s.recent) > s.cfg.WindowSize {
		evicted := s.recent[0]
		s.recent = append([]Summary(nil), s.recent[1:]...)
		if err := s.condense(ctx, evicted); err != nil {
			return err
		}
	}

	return s.trimToCap(ctx)
}

// mergeTerms folds extracted terms into the glossary. A term's weight only
// grows: recurring terms matter more for translation consistency, never
// less.
func (s *Store) mergeTerms(extracted []types.Term) {
	for _, t := range extracted {
		if t.Term == "" || t.Weight <= 0 {
			continue
		}
		e, ok := s.terms[t.Term]
		if !ok {
			s.terms[t.Term] = &termEntry{term: t.Term, weight: t.Weight, count: 1, seq: s.nextSeq}
			s.nextSeq++
			continue
		}
		if t.Weight > e.weight {
			e.weight = t.Weight
		}
		e.count++
	}
}

// condense folds an evicted summary into the condensed summary by
// re-summarization, not concatenation, so it stays bounded.
func (s *Store) condense(ctx context.Context, evicted Summary) error {
	source := evicted.Text
	if s.condensed != "" {
		source = s.condensed + "\n" + evicted.Text
	}
	condensed, err := s.summarize(ctx, source, s.condensedBudget())
	if err != nil {
		return err
	}
	s.condensed = condensed
	return nil
}

// summarize calls the collaborator and enforces its budget: the output is
// measured with the token counter and hard-truncated if the summarizer
// overran.
func (s *Store) summarize(ctx context.Context, text string, budget int) (string, error) {
	out, err := s.summarizer.Summarize(ctx, text, budget)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return s.fitToBudget(ctx, out, budget)
}

// fitToBudget truncates text at a rune boundary so it costs at most budget
// tokens, by binary search over prefixes.
func (s *Store) fitToBudget(ctx context.Context, text string, budget int) (string, error) {
	n, err := s.counter.CountTokens(ctx, text)
	if err != nil {
		return "", fmt.Errorf("token count: %w", err)
	}
	if n <= budget {
		return text, nil
	}
	starts := make([]int, 0, len(text)+1)
	for i := range text {
		starts = append(starts, i)
	}
	starts = append(starts, len(text))
	lo, hi, best := 0, len(starts)-1, 0
	for lo <= hi {
		mid := (lo + hi) / 2
		n, err := s.counter.CountTokens(ctx, text[:starts[mid]])
		if err != nil {
			return "", fmt.Errorf("token count: %w", err)
		}
		if n <= budget {
			best = starts[mid]
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return text[:best], nil
}

// trimToCap drops the lowest-weight unprotected terms, earliest-inserted
// first on ties, until the serialized state fits the cap. Protected terms
// (seen at least ProtectedRepeatThreshold times) survive trimming; if they
// alone still bust the cap the configuration is unsatisfiable.
func (s *Store) trimToCap(ctx context.Context) error {
	for {
		tokens, err := s.SerializedTokens(ctx)
		if err != nil {
			return err
		}
		if tokens <= s.cfg.CapTokens {
			return nil
		}

		victim := s.trimVictim()
		if victim == nil {
			protected := 0
			for _, e := range s.terms {
				if e.count >= s.cfg.ProtectedRepeatThreshold {
					protected++
				}
			}
			return &ContextCapError{
				CapTokens:        s.cfg.CapTokens,
				SerializedTokens: tokens,
				ProtectedTerms:   protected,
			}
		}
		delete(s.terms, victim.term)
	}
}

func (s *Store) trimVictim() *termEntry {
	var victim *termEntry
	for _, e := range s.terms {
		if e.count >= s.cfg.ProtectedRepeatThreshold {
			continue
		}
		if victim == nil || e.weight < victim.weight ||
			(e.weight == victim.weight && e.seq < victim.seq) {
			victim = e
		}
	}
	return victim
}

// Serialize renders the state as the context block handed to the translation
// step. Output is deterministic: terms ordered by weight descending, then
// insertion order. Empty state serializes to the empty string.
func (s *Store) Serialize() string {
	if len(s.terms) == 0 && len(s.recent) == 0 && s.condensed == "" {
		return ""
	}
	var sb strings.Builder

	if len(s.terms) > 0 {
		sb.WriteString("Glossary:\n")
		for _, e := range s.sortedTerms() {
			fmt.Fprintf(&sb, "- %s (weight %g)\n", e.term, e.weight)
		}
		sb.WriteString("\n")
	}
	if s.condensed != "" {
		sb.WriteString("Earlier context: ")
		sb.WriteString(s.condensed)
		sb.WriteString("\n\n")
	}
	if len(s.recent) > 0 {
		sb.WriteString("Recent summaries:\n")
		for _, r := range s.recent {
			fmt.Fprintf(&sb, "[chunk %d] %s\n", r.ChunkID, r.Text)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// SerializedTokens measures the serialized state with the token counter.
func (s *Store) SerializedTokens(ctx context.Context) (int, error) {
	n, err := s.counter.CountTokens(ctx, s.Serialize())
	if err != nil {
		return 0, fmt.Errorf("token count: %w", err)
	}
	return n, nil
}

func (s *Store) sortedTerms() []*termEntry {
	entries := make([]*termEntry, 0, len(s.terms))
	for _, e := range s.terms {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].weight != entries[j].weight {
			return entries[i].weight > entries[j].weight
		}
		return entries[i].seq < entries[j].seq
	})
	return entries
}

// Snapshot exports the state for persistence. Terms come out in insertion
// order.
func (s *Store) Snapshot() Snapshot {
	entries := make([]*termEntry, 0, len(s.terms))
	for _, e := range s.terms {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	snap := Snapshot{
		Recent:    append([]Summary(nil), s.recent...),
		Condensed: s.condensed,
		NextSeq:   s.nextSeq,
	}
	for _, e := range entries {
		snap.Terms = append(snap.Terms, TermSnapshot{Term: e.term, Weight: e.weight, Count: e.count, Seq: e.seq})
	}
	return snap
}

// Restore replaces the state with a previously exported snapshot.
func (s *Store) Restore(snap Snapshot) {
	s.terms = make(map[string]*termEntry, len(snap.Terms))
	for _, t := range snap.Terms {
		s.terms[t.Term] = &termEntry{term: t.Term, weight: t.Weight, count: t.Count, seq: t.Seq}
	}
	s.recent = append([]Summary(nil), snap.Recent...)
	s.condensed = snap.Condensed
	s.nextSeq = snap.NextSeq
}
