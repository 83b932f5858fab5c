package evaluator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/sandrolain/goremap/pkg/compiler"
	"github.com/sandrolain/goremap/pkg/value"
)

// StreamResult holds the output of a single streaming evaluation step.
type StreamResult struct {
	// Event is the transformed event, nil after a fatal error.
	Event *value.Event
	// Value is the program result for the event, or nil when Err is set.
	Value value.Value
	// Err is non-nil when the event could not be decoded or evaluated.
	// Decode and I/O errors are fatal and close the channel; evaluation
	// errors are sent per event and the stream continues.
	Err error
}

// EvaluateStream reads a sequence of JSON values from r (NDJSON or
// concatenated JSON), wraps each in a value.Event and evaluates program
// against it, sending results on the returned channel in input order.
//
// The channel is closed when all input has been consumed or ctx is
// cancelled. It is the caller's responsibility to drain the channel or
// cancel ctx to avoid goroutine leaks.
func (e *Evaluator) EvaluateStream(ctx context.Context, program *compiler.Program, r io.Reader) (<-chan StreamResult, error) {
	if program == nil {
		return nil, ErrNilProgram
	}

	ch := make(chan StreamResult, 16)

	go func() {
		defer close(ch)

		send := func(res StreamResult) bool {
			select {
			case ch <- res:
				return true
			case <-ctx.Done():
				return false
			}
		}

		dec := json.NewDecoder(r)
		for n := 0; ; n++ {
			if err := ctx.Err(); err != nil {
				send(StreamResult{Err: err})
				return
			}

			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				send(StreamResult{Err: fmt.Errorf("document %d: %w", n, err)})
				return
			}

			data, err := value.ParseJSON(raw)
			if err != nil {
				send(StreamResult{Err: fmt.Errorf("document %d: %w", n, err)})
				return
			}

			event := value.NewEvent(data)
			result, err := e.Evaluate(ctx, program, event)
			if !send(StreamResult{Event: event, Value: result, Err: err}) {
				return
			}
		}
	}()

	return ch, nil
}
