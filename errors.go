package transchunk

import (
	"errors"
	"fmt"
)

// ErrEmptyDocument indicates the input document has no content to chunk.
var ErrEmptyDocument = errors.New("cannot chunk empty document")

// CollaboratorError wraps a failure from an external collaborator (token
// counter, boundary finder, term extractor, or summarizer).
type CollaboratorError struct {
	Name string
	Err  error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Name, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// RunError decorates any fatal chunking failure with the position the run
// halted at, so the caller can diagnose without re-running. The chunks
// committed before the failure are still returned alongside it.
type RunError struct {
	ChunkID int
	Cursor  int
	Err     error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("chunking halted at chunk %d (offset %d): %v", e.ChunkID, e.Cursor, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }
