// Package transchunk splits long documents into bounded-size chunks for
// translation models with fixed token limits, carrying forward enough
// accumulated context (terminology, recent summaries) that names and
// narrative continuity survive across chunk boundaries.
package transchunk

import (
	"context"

	"github.com/translatekit/transchunk/boundary"
	"github.com/translatekit/transchunk/budget"
	"github.com/translatekit/transchunk/builder"
	"github.com/translatekit/transchunk/chunk"
	"github.com/translatekit/transchunk/extractor"
	"github.com/translatekit/transchunk/memory"
	"github.com/translatekit/transchunk/options"
	"github.com/translatekit/transchunk/summarizer"
	"github.com/translatekit/transchunk/types"
)

// Engine drives one pass over a document: allocate budget, cut a span,
// extract terms, update memory, emit a chunk, repeat until the input is
// exhausted. An Engine holds no per-run state and may chunk independent
// documents from separate goroutines; each run owns its cursor and memory
// exclusively.
type Engine struct {
	cfg       options.Config
	allocator *budget.Allocator
	builder   *builder.Builder
}

// New creates an engine with functional options. A token counter and
// MaxOutputTokens are required; every other collaborator defaults to the
// local implementation shipped with this module.
func New(opts ...options.Option) (*Engine, error) {
	cfg := options.NewConfig()
	if err := cfg.Apply(opts...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Finder == nil {
		cfg.Finder = boundary.NewFinder()
	}
	if cfg.Extractor == nil {
		cfg.Extractor = extractor.NewHeuristic()
	}
	if cfg.Summarizer == nil {
		cfg.Summarizer = summarizer.NewLead(cfg.Counter)
	}

	alloc, err := budget.NewAllocator(cfg.MaxOutputTokens, cfg.ContextCapFraction)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:       *cfg,
		allocator: alloc,
		builder: builder.New(cfg.Counter, cfg.Finder, builder.Config{
			WindowFraction:   cfg.BoundaryWindowFraction,
			OverlapSentences: cfg.OverlapSentences,
		}),
	}, nil
}

// ContextCapTokens returns the hard ceiling on serialized memory size.
func (e *Engine) ContextCapTokens() int {
	return e.allocator.ContextCapTokens()
}

// ChunkDocument chunks doc and returns the ordered chunk sequence. On any
// fatal failure the chunks committed so far are returned together with the
// error; nothing already committed is discarded. Cancellation is observed
// between iterations, never mid-cut.
func (e *Engine) ChunkDocument(ctx context.Context, doc string) ([]chunk.Chunk, error) {
	chunks, _, err := e.run(ctx, doc, nil)
	return chunks, err
}

// ResumeDocument continues chunking doc from a restored memory snapshot, for
// staged runs over very long inputs. Chunk ids restart at 0 for the new run;
// the final snapshot is returned for the next stage.
func (e *Engine) ResumeDocument(ctx context.Context, doc string, snap memory.Snapshot) ([]chunk.Chunk, memory.Snapshot, error) {
	return e.run(ctx, doc, &snap)
}

func (e *Engine) run(ctx context.Context, doc string, snap *memory.Snapshot) ([]chunk.Chunk, memory.Snapshot, error) {
	if doc == "" {
		return nil, memory.Snapshot{}, ErrEmptyDocument
	}

	store, err := memory.NewStore(e.cfg.Counter, e.cfg.Summarizer, memory.Config{
		CapTokens:                e.allocator.ContextCapTokens(),
		WindowSize:               e.cfg.SlidingWindowSize,
		ProtectedRepeatThreshold: e.cfg.ProtectedTermThreshold,
	})
	if err != nil {
		return nil, memory.Snapshot{}, err
	}
	resumed := snap != nil
	if resumed {
		store.Restore(*snap)
	}

	var chunks []chunk.Chunk
	cursor := 0
	prevRaw := ""
	prevEndKind := types.BoundaryParagraph

	for chunkID := 0; cursor < len(doc); chunkID++ {
		if cerr := ctx.Err(); cerr != nil {
			return chunks, store.Snapshot(), &RunError{ChunkID: chunkID, Cursor: cursor, Err: cerr}
		}

		first := chunkID == 0 && !resumed
		contextBlock := ""
		contextTokens := 0
		if !first {
			contextBlock = store.Serialize()
			contextTokens, err = e.cfg.Counter.CountTokens(ctx, contextBlock)
			if err != nil {
				return chunks, store.Snapshot(), &RunError{ChunkID: chunkID, Cursor: cursor,
					Err: &CollaboratorError{Name: "token counter", Err: err}}
			}
			// The store keeps itself under the cap at commit time; only a
			// snapshot restored under a tighter configuration can get here.
			if capTokens := e.allocator.ContextCapTokens(); contextTokens > capTokens {
				return chunks, store.Snapshot(), &RunError{ChunkID: chunkID, Cursor: cursor,
					Err: &memory.ContextCapError{CapTokens: capTokens, SerializedTokens: contextTokens}}
			}
		}

		alloc, err := e.allocator.Allocate(contextTokens, first)
		if err != nil {
			return chunks, store.Snapshot(), &RunError{ChunkID: chunkID, Cursor: cursor, Err: err}
		}

		res, err := e.builder.Build(ctx, doc, cursor, alloc.TextBudget, prevRaw)
		if err != nil {
			return chunks, store.Snapshot(), &RunError{ChunkID: chunkID, Cursor: cursor, Err: err}
		}

		terms, err := e.cfg.Extractor.ExtractTerms(res.RawText)
		if err != nil {
			return chunks, store.Snapshot(), &RunError{ChunkID: chunkID, Cursor: cursor,
				Err: &CollaboratorError{Name: "term extractor", Err: err}}
		}

		c := chunk.Chunk{
			ID:              chunkID,
			Kind:            kindFor(chunkID, first, res.NewCursor == len(doc)),
			RawText:         res.RawText,
			ContextBlock:    contextBlock,
			LeadingOverlap:  res.LeadingOverlap,
			TrailingOverlap: res.TrailingOverlap,
			StartOffset:     cursor,
			EndOffset:       res.NewCursor,
			Breakdown: chunk.TokenBreakdown{
				Context:         contextTokens,
				LeadingOverlap:  res.LeadingTokens,
				RawText:         res.RawTokens,
				TrailingOverlap: res.TrailingTokens,
			},
			Boundary: chunk.BoundaryInfo{
				StartKind: prevEndKind,
				EndKind:   res.Boundary.EndKind,
				Score:     res.Boundary.Score,
			},
		}

		if err := store.Update(ctx, c, terms); err != nil {
			return chunks, store.Snapshot(), &RunError{ChunkID: chunkID, Cursor: cursor, Err: err}
		}

		chunks = append(chunks, c)
		cursor = res.NewCursor
		prevRaw = res.RawText
		prevEndKind = res.Boundary.EndKind
	}

	return chunks, store.Snapshot(), nil
}

// kindFor resolves the chunk kind. A single-chunk document is first, not
// final: the first/final collision resolves in favor of first.
func kindFor(chunkID int, first, last bool) chunk.Kind {
	switch {
	case first && chunkID == 0:
		return chunk.KindFirst
	case last:
		return chunk.KindFinal
	default:
		return chunk.KindSubsequent
	}
}
