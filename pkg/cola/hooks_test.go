package cola

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSortHooks(t *testing.T) {
	t.Run("sorts hooks by Order ascending", func(t *testing.T) {
		sorted := SortHooks([]*Hooks{{Order: 3}, {Order: 1}, {Order: 2}})
		require.Equal(t, 1, sorted[0].Order)
		require.Equal(t, 2, sorted[1].Order)
		require.Equal(t, 3, sorted[2].Order)
	})

	t.Run("keeps discovery order for equal Order values", func(t *testing.T) {
		first := &Hooks{}
		second := &Hooks{}

		sorted := SortHooks([]*Hooks{first, second})
		require.Same(t, first, sorted[0])
		require.Same(t, second, sorted[1])
	})

	t.Run("drops nil hooks and leaves the input alone", func(t *testing.T) {
		h1 := &Hooks{Order: 2}
		h2 := &Hooks{Order: 1}
		original := []*Hooks{h1, nil, h2}

		sorted := SortHooks(original)
		require.Len(t, sorted, 2)
		require.Same(t, h1, original[0])
		require.Same(t, h2, sorted[0])
	})
}

func TestHookExecutor(t *testing.T) {
	t.Run("runs BeforeAll and AfterAll in order", func(t *testing.T) {
		var order []string
		exec := NewHookExecutor(
			&Hooks{Order: 2, BeforeAll: func() { order = append(order, "before-2") }, AfterAll: func() { order = append(order, "after-2") }},
			&Hooks{Order: 1, BeforeAll: func() { order = append(order, "before-1") }},
		)

		exec.BeforeAll()
		exec.AfterAll()

		require.Equal(t, []string{"before-1", "before-2", "after-2"}, order)
	})

	t.Run("passes scenario and error to scenario hooks", func(t *testing.T) {
		var before Scenario
		var afterErr error
		exec := NewHookExecutor(&Hooks{
			BeforeScenario: func(s Scenario) { before = s },
			AfterScenario:  func(s Scenario, err error) { afterErr = err },
		})

		scenario := Scenario{
			Name:        "Login",
			Tags:        []string{"@smoke"},
			Projections: map[string]string{"user": "alice"},
		}
		exec.BeforeScenario(scenario)
		exec.AfterScenario(scenario, errors.New("boom"))

		require.Equal(t, scenario, before)
		require.EqualError(t, afterErr, "boom")
	})

	t.Run("passes bound arguments to step hooks", func(t *testing.T) {
		var before Step
		var afterErr error
		exec := NewHookExecutor(&Hooks{
			BeforeStep: func(s Step) { before = s },
			AfterStep:  func(s Step, err error) { afterErr = err },
		})

		step := Step{Keyword: "Given ", Kind: "Given", Text: "I have <n> items", Arguments: []any{3}}
		exec.BeforeStep(step)
		exec.AfterStep(step, nil)

		require.Equal(t, []any{3}, before.Arguments)
		require.NoError(t, afterErr)
	})

	t.Run("skips missing callbacks", func(t *testing.T) {
		exec := NewHookExecutor(&Hooks{}, nil)
		exec.BeforeAll()
		exec.BeforeScenario(Scenario{})
		exec.BeforeStep(Step{})
		exec.AfterStep(Step{}, nil)
		exec.AfterScenario(Scenario{}, nil)
		exec.AfterAll()
	})

	t.Run("nil executor does nothing", func(t *testing.T) {
		var exec *HookExecutor
		exec.BeforeAll()
		exec.AfterAll()
	})
}
