// Package statemachine defines the boundary to the external transition
// evaluator. The engine treats the evaluator as a pure function over
// (definition, context, event, options); the grammar of the definition
// data is not this module's concern.
package statemachine

// StateStart is the initial state label for an unfinished challenge.
const StateStart = "Start"

// StateSuccess is the terminal state label marking completion.
const StateSuccess = "Success"

// Timer is an evaluator-owned timer record. The engine stores and passes
// timers through without interpreting them.
type Timer map[string]any

// Options carries the evaluation inputs that sit outside the context.
type Options struct {
	EventName    string
	CurrentState string
	Timers       []Timer

	// Timestamp is the event time in seconds, as carried by the game
	// protocol. Passed through opaquely.
	Timestamp float64
}

// Result is the evaluator's output for one event.
type Result struct {
	State   string
	Context map[string]any
	Timers  []Timer
}

// Evaluator applies one event to one challenge's state machine.
// Implementations may fail on malformed definitions or contexts; the
// caller recovers per challenge.
type Evaluator interface {
	Evaluate(definition map[string]any, context map[string]any, payload map[string]any, opts Options) (Result, error)
}

// Func adapts a plain function to the Evaluator interface.
type Func func(definition map[string]any, context map[string]any, payload map[string]any, opts Options) (Result, error)

func (f Func) Evaluate(definition map[string]any, context map[string]any, payload map[string]any, opts Options) (Result, error) {
	return f(definition, context, payload, opts)
}
