package state

import (
	"fmt"

	"github.com/duskhollow/engine/internal/event"
	"github.com/duskhollow/engine/internal/platform/errors"
)

// SkippedEvent records an event whose effect could not be applied
// during a lenient replay.
type SkippedEvent struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`
	Reason  string `json:"reason"`
}

// Result is the outcome of folding an event log over a base state.
type Result struct {
	State   State
	Applied int
	Skipped []SkippedEvent
}

// Replayer folds ordered event logs into state. The zero value is a
// lenient replayer: events whose effects cannot apply are recorded in
// Result.Skipped and the fold continues, so a partially corrupt log
// still yields the best state the valid events describe.
type Replayer struct {
	// Strict aborts the replay at the first event whose effect cannot
	// apply, identifying the offending event in the returned error.
	Strict bool
}

// Replay folds events in order over base and returns the resulting
// state. Base is never mutated. Replaying the same events over the
// same base always yields the same result.
func (r Replayer) Replay(base State, events []event.Event) (Result, error) {
	current := base.Clone()
	result := Result{}
	for i, evt := range events {
		next, err := Apply(current, evt)
		if err != nil {
			if r.Strict {
				return Result{}, errors.Wrap(errors.CodeOf(err),
					fmt.Sprintf("replay aborted at event %d (%s, type %s)", i, evt.ID, evt.Type), err)
			}
			result.Skipped = append(result.Skipped, SkippedEvent{
				EventID: evt.ID,
				Type:    string(evt.Type),
				Reason:  err.Error(),
			})
			continue
		}
		current = next
		result.Applied++
	}
	result.State = current
	return result, nil
}
