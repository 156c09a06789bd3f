// Package budget splits the output-token limit between carried context and
// new raw text for one chunk.
package budget

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidMaxOutputTokens indicates the output limit is invalid (<=0).
var ErrInvalidMaxOutputTokens = errors.New("max output tokens must be positive")

// ErrInvalidCapFraction indicates the context cap fraction is outside (0,1).
var ErrInvalidCapFraction = errors.New("context cap fraction must be in (0,1)")

// ExhaustedError is returned when the context cap leaves no room for raw
// text. It is a configuration error and is fatal for the run.
type ExhaustedError struct {
	ContextBudget   int
	MaxOutputTokens int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("budget exhausted: context budget %d leaves no text budget within output limit %d",
		e.ContextBudget, e.MaxOutputTokens)
}

// Allocation is the token split for one chunk.
type Allocation struct {
	ContextBudget int
	TextBudget    int
}

// Allocator computes per-chunk token allocations. It is pure: the same inputs
// always produce the same allocation, and nothing is mutated.
type Allocator struct {
	maxOutputTokens  int
	contextCapTokens int
}

// NewAllocator builds an allocator for the given output limit and context cap
// fraction. The cap is ceil(fraction × limit).
func NewAllocator(maxOutputTokens int, capFraction float64) (*Allocator, error) {
	if maxOutputTokens <= 0 {
		return nil, ErrInvalidMaxOutputTokens
	}
	if capFraction <= 0 || capFraction >= 1 {
		return nil, ErrInvalidCapFraction
	}
	return &Allocator{
		maxOutputTokens:  maxOutputTokens,
		contextCapTokens: int(math.Ceil(capFraction * float64(maxOutputTokens))),
	}, nil
}

// ContextCapTokens returns the hard ceiling on serialized memory size.
func (a *Allocator) ContextCapTokens() int {
	return a.contextCapTokens
}

// MaxOutputTokens returns the per-chunk output limit.
func (a *Allocator) MaxOutputTokens() int {
	return a.maxOutputTokens
}

// Allocate computes the split for the next chunk. memoryTokens is the token
// cost of the serialized memory state; the memory store keeps itself within
// the cap at commit time, so a clamp here is belt only.
func (a *Allocator) Allocate(memoryTokens int, firstChunk bool) (Allocation, error) {
	if firstChunk {
		return Allocation{ContextBudget: 0, TextBudget: a.maxOutputTokens}, nil
	}
	contextBudget := memoryTokens
	if contextBudget > a.contextCapTokens {
		contextBudget = a.contextCapTokens
	}
	textBudget := a.maxOutputTokens - contextBudget
	if textBudget <= 0 {
		return Allocation{}, &ExhaustedError{
			ContextBudget:   contextBudget,
			MaxOutputTokens: a.maxOutputTokens,
		}
	}
	return Allocation{ContextBudget: contextBudget, TextBudget: textBudget}, nil
}
