package cola

import "slices"

// Hooks holds lifecycle callbacks for a run.
// Every field is optional; all discovered hooks run, sorted by Order.
type Hooks struct {
	// Order determines execution order (lower = runs first).
	// Hooks with same Order run in discovery order.
	Order int

	BeforeAll func()
	AfterAll  func()

	// BeforeScenario runs before each scenario, and before each example row
	// of a Scenario Outline.
	BeforeScenario func(Scenario)

	// AfterScenario receives nil when the scenario passed.
	AfterScenario func(Scenario, error)

	// BeforeStep runs after the step arguments were bound and before the
	// step function is called.
	BeforeStep func(Step)

	// AfterStep receives nil when the step passed.
	AfterStep func(Step, error)
}

// SortHooks returns hooks sorted by Order, dropping nil entries.
// Hooks with the same Order keep their relative order.
func SortHooks(hooks []*Hooks) []*Hooks {
	sorted := make([]*Hooks, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			sorted = append(sorted, h)
		}
	}

	slices.SortStableFunc(sorted, func(a, b *Hooks) int {
		return a.Order - b.Order
	})

	return sorted
}

// HookExecutor runs the callbacks of several Hooks in order.
type HookExecutor struct {
	hooks []*Hooks
}

// NewHookExecutor creates a HookExecutor. Nil hooks are ignored.
func NewHookExecutor(hooks ...*Hooks) *HookExecutor {
	return &HookExecutor{hooks: SortHooks(hooks)}
}

func (e *HookExecutor) each(fn func(*Hooks)) {
	if e == nil {
		return
	}
	for _, h := range e.hooks {
		fn(h)
	}
}

func (e *HookExecutor) BeforeAll() {
	e.each(func(h *Hooks) {
		if h.BeforeAll != nil {
			h.BeforeAll()
		}
	})
}

func (e *HookExecutor) AfterAll() {
	e.each(func(h *Hooks) {
		if h.AfterAll != nil {
			h.AfterAll()
		}
	})
}

func (e *HookExecutor) BeforeScenario(scenario Scenario) {
	e.each(func(h *Hooks) {
		if h.BeforeScenario != nil {
			h.BeforeScenario(scenario)
		}
	})
}

func (e *HookExecutor) AfterScenario(scenario Scenario, err error) {
	e.each(func(h *Hooks) {
		if h.AfterScenario != nil {
			h.AfterScenario(scenario, err)
		}
	})
}

func (e *HookExecutor) BeforeStep(step Step) {
	e.each(func(h *Hooks) {
		if h.BeforeStep != nil {
			h.BeforeStep(step)
		}
	})
}

func (e *HookExecutor) AfterStep(step Step, err error) {
	e.each(func(h *Hooks) {
		if h.AfterStep != nil {
			h.AfterStep(step, err)
		}
	})
}
