package statemachine

import (
	"fmt"
)

// Simple is a table-driven evaluator for tooling and tests. It reads the
// definition's "States" object as a plain lookup of
// currentState -> eventName -> nextState and leaves context and timers
// untouched. It is a stand-in for the production evaluator, not an
// implementation of its transition language.
type Simple struct{}

var _ Evaluator = Simple{}

func (Simple) Evaluate(definition map[string]any, context map[string]any, _ map[string]any, opts Options) (Result, error) {
	out := Result{State: opts.CurrentState, Context: context, Timers: opts.Timers}

	states, ok := definition["States"].(map[string]any)
	if !ok {
		return Result{}, fmt.Errorf("definition has no States table")
	}

	transitions, ok := states[opts.CurrentState].(map[string]any)
	if !ok {
		// No transitions out of the current state; stay put.
		return out, nil
	}

	next, ok := transitions[opts.EventName].(string)
	if !ok {
		return out, nil
	}
	out.State = next
	return out, nil
}
