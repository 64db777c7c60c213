package statemachine

// Call records one Evaluate invocation made against a Mock.
type Call struct {
	Definition map[string]any
	Context    map[string]any
	Payload    map[string]any
	Opts       Options
}

// Mock is a scripted evaluator for tests. Each Evaluate call pops the
// next queued response; when the script runs dry it returns the current
// state unchanged.
type Mock struct {
	Responses []Result
	Errs      []error
	Calls     []Call
}

var _ Evaluator = (*Mock)(nil)

func (m *Mock) Evaluate(definition map[string]any, context map[string]any, payload map[string]any, opts Options) (Result, error) {
	m.Calls = append(m.Calls, Call{Definition: definition, Context: context, Payload: payload, Opts: opts})

	if len(m.Errs) > 0 {
		err := m.Errs[0]
		m.Errs = m.Errs[1:]
		if err != nil {
			return Result{}, err
		}
	}

	if len(m.Responses) == 0 {
		return Result{State: opts.CurrentState, Context: context, Timers: opts.Timers}, nil
	}
	r := m.Responses[0]
	m.Responses = m.Responses[1:]
	return r, nil
}
