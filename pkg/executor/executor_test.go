package executor

import (
	"context"
	"errors"
	"strings"
	"testing"

	messages "github.com/cucumber/messages/go/v21"
	"github.com/cola-bdd/cola/pkg/binding"
	"github.com/cola-bdd/cola/pkg/cola"
	"github.com/cola-bdd/cola/pkg/gherkin_parser"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, source string) *messages.GherkinDocument {
	t.Helper()
	doc, err := gherkin_parser.ParseGherkinFile(strings.NewReader(source))
	require.NoError(t, err)
	return doc
}

const basketFeature = `@shop
Feature: Basket

  Background:
    Given an empty basket

  Scenario: single item
    When I add 1 apples
    Then the basket holds 1 items

  Scenario Outline: repeated items
    When I add <count> <item>
    And I add <count> <item>
    Then the basket holds <total> items

    @rows
    Examples:
      | count | item   | total |
      | 3     | apples | 6     |
      | 5     | pears  | 10    |
`

type basket struct {
	items map[string]int
}

func (b *basket) total() int {
	total := 0
	for _, n := range b.items {
		total += n
	}
	return total
}

func registerBasketSteps(t *testing.T, exec *StepExecutor, b *basket) {
	t.Helper()

	require.NoError(t, exec.RegisterStep(KindGiven, "an empty basket", func() {
		b.items = map[string]int{}
	}))

	add := func(count int, item string) {
		b.items[item] += count
	}
	require.NoError(t, exec.RegisterStep(KindWhen, `I add (\d+) (\w+)`, add,
		binding.Group(1), binding.Group(2)))
	require.NoError(t, exec.RegisterStep(KindWhen, "I add <count> <item>", add,
		binding.Projection("count"), binding.Projection("item")))

	holds := func(expected int) error {
		if b.total() != expected {
			return errors.New("unexpected basket total")
		}
		return nil
	}
	require.NoError(t, exec.RegisterStep(KindThen, `the basket holds (\d+) items`, holds, binding.Group(1)))
	require.NoError(t, exec.RegisterStep(KindThen, "the basket holds <total> items", holds, binding.Projection("total")))
}

func TestStepExecutor_RegisterStep(t *testing.T) {
	t.Run("should register a valid step", func(t *testing.T) {
		exec := NewStepExecutor()
		err := exec.RegisterStep(KindGiven, `I have (\d+) apples`, func(ctx context.Context, count int) (context.Context, error) {
			return ctx, nil
		}, binding.Unbound, binding.Group(1))
		require.NoError(t, err)
		require.Len(t, exec.Steps(), 1)
		require.Equal(t, KindGiven, exec.Steps()[0].Kind)
	})

	t.Run("should normalize the kind", func(t *testing.T) {
		exec := NewStepExecutor()
		require.NoError(t, exec.RegisterStep("then", "done", func() {}))
		require.Equal(t, KindThen, exec.Steps()[0].Kind)
	})

	t.Run("should return error for unknown kind", func(t *testing.T) {
		exec := NewStepExecutor()
		err := exec.RegisterStep("Whenever", "done", func() {})
		require.ErrorContains(t, err, `unknown step kind "Whenever"`)
	})

	t.Run("should return error for invalid pattern", func(t *testing.T) {
		exec := NewStepExecutor()
		err := exec.RegisterStep(KindGiven, "[invalid", func() {})
		require.ErrorIs(t, err, binding.ErrInvalidPattern)
	})

	t.Run("should return error for duplicate pattern of the same kind", func(t *testing.T) {
		exec := NewStepExecutor()
		require.NoError(t, exec.RegisterStep(KindGiven, "test", func() {}))

		err := exec.RegisterStep(KindGiven, "test", func() {})
		require.ErrorIs(t, err, ErrDuplicateStep)

		require.NoError(t, exec.RegisterStep(KindThen, "test", func() {}))
	})

	t.Run("should return error for non-function handler", func(t *testing.T) {
		exec := NewStepExecutor()
		err := exec.RegisterStep(KindGiven, "test", "not a function")
		require.ErrorIs(t, err, binding.ErrNotFunction)
	})

	t.Run("should return error for more bindings than parameters", func(t *testing.T) {
		exec := NewStepExecutor()
		err := exec.RegisterStep(KindGiven, "test", func() {}, binding.Group(1))
		require.ErrorContains(t, err, "takes 0 parameters, got 1 bindings")
	})
}

func TestStepExecutor_Match(t *testing.T) {
	t.Run("should bind regular expression groups", func(t *testing.T) {
		exec := NewStepExecutor()
		require.NoError(t, exec.RegisterStep(KindGiven, `I have (\d+) (\w+)`, func(int, string) {},
			binding.Group(1), binding.Group(2)))

		def, details, err := exec.Match(KindGiven, "I have 7 lemons", nil)
		require.NoError(t, err)
		require.Equal(t, `I have (\d+) (\w+)`, def.Pattern)
		require.Equal(t, "Given I have 7 lemons", details.Step())
		require.Equal(t, []any{7, "lemons"}, details.Arguments())
	})

	t.Run("should bind assigned placeholders", func(t *testing.T) {
		exec := NewStepExecutor()
		require.NoError(t, exec.RegisterStep(KindWhen, "I add <count> <item>", func(int, string) {},
			binding.Assigned("count"), binding.Assigned("item")))

		_, details, err := exec.Match(KindWhen, "I add 3 apples", nil)
		require.NoError(t, err)
		require.False(t, details.HasProjections())
		require.Equal(t, []any{3, "apples"}, details.Arguments())
	})

	t.Run("should bind projections of an outline row", func(t *testing.T) {
		exec := NewStepExecutor()
		require.NoError(t, exec.RegisterStep(KindWhen, "I add <count> <item>", func(int, string) {},
			binding.Projection("count"), binding.Projection("item")))

		_, details, err := exec.Match(KindWhen, "I add <count> <item>", map[string]string{"count": "4", "item": "kiwis"})
		require.NoError(t, err)
		require.True(t, details.HasProjections())
		require.Equal(t, []string{"count", "item"}, details.Projections())
		require.Equal(t, []any{4, "kiwis"}, details.Arguments())
	})

	t.Run("should use the first matching definition", func(t *testing.T) {
		exec := NewStepExecutor()
		require.NoError(t, exec.RegisterStep(KindGiven, `I have (\d+) items`, func(int) {}, binding.Group(1)))
		require.NoError(t, exec.RegisterStep(KindGiven, "I have <count> items", func(int) {}, binding.Assigned("count")))

		def, _, err := exec.Match(KindGiven, "I have 2 items", nil)
		require.NoError(t, err)
		require.Equal(t, `I have (\d+) items`, def.Pattern)
	})

	t.Run("should match definitions without a kind for any step", func(t *testing.T) {
		exec := NewStepExecutor()
		require.NoError(t, exec.RegisterStep("", "anything goes", func() {}))

		_, _, err := exec.Match(KindThen, "anything goes", nil)
		require.NoError(t, err)
	})

	t.Run("should not match definitions of another kind and suggest them", func(t *testing.T) {
		exec := NewStepExecutor()
		require.NoError(t, exec.RegisterStep(KindGiven, "I have <count> items", func(int) {}, binding.Assigned("count")))

		_, _, err := exec.Match(KindWhen, "I have 3 items", nil)
		require.ErrorIs(t, err, ErrNoMatchingStep)
		require.ErrorContains(t, err, `did you mean "I have <count> items"`)
	})

	t.Run("should not suggest unrelated patterns", func(t *testing.T) {
		exec := NewStepExecutor()
		require.NoError(t, exec.RegisterStep(KindGiven, "the moon is full", func() {}))

		_, _, err := exec.Match(KindGiven, "a cat", nil)
		require.ErrorIs(t, err, ErrNoMatchingStep)
		require.NotContains(t, err.Error(), "did you mean")
	})
}

func TestStepExecutor_Execute(t *testing.T) {
	t.Run("should run plain scenarios and each outline row", func(t *testing.T) {
		exec := NewStepExecutor()
		b := &basket{}
		registerBasketSteps(t, exec, b)

		results := exec.Execute(parse(t, basketFeature))
		require.Len(t, results, 3)

		for _, result := range results {
			require.True(t, result.Passed, result.Error)
			require.Equal(t, "Basket", result.FeatureName)
		}

		require.Equal(t, "single item", results[0].Name)
		require.Nil(t, results[0].Projections)
		require.Equal(t, []string{"@shop"}, results[0].Tags)

		require.Equal(t, "repeated items", results[1].Name)
		require.Equal(t, map[string]string{"count": "3", "item": "apples", "total": "6"}, results[1].Projections)
		require.Equal(t, []string{"@shop", "@rows"}, results[1].Tags)
		require.Equal(t, map[string]string{"count": "5", "item": "pears", "total": "10"}, results[2].Projections)

		require.Equal(t, map[string]int{"pears": 10}, b.items)
	})

	t.Run("should report bound arguments and inherited kinds", func(t *testing.T) {
		exec := NewStepExecutor()
		registerBasketSteps(t, exec, &basket{})

		results := exec.Execute(parse(t, basketFeature))
		steps := results[1].Steps
		require.Len(t, steps, 4)

		require.Equal(t, "Given an empty basket", steps[0].Label)
		require.Equal(t, cola.StepPassed, steps[0].Status)
		require.Empty(t, steps[0].Arguments)

		require.Equal(t, "And ", steps[2].Keyword)
		require.Equal(t, KindWhen, steps[2].Kind)
		require.Equal(t, "When I add <count> <item>", steps[2].Label)
		require.Equal(t, []any{3, "apples"}, steps[2].Arguments)
		require.Contains(t, steps[2].Definition, "registerBasketSteps")
	})

	t.Run("should skip remaining steps after a failure", func(t *testing.T) {
		exec := NewStepExecutor()
		b := &basket{}
		registerBasketSteps(t, exec, b)
		require.NoError(t, exec.RegisterStep(KindGiven, "a broken scale", func() error {
			return errors.New("scale is broken")
		}))

		results := exec.Execute(parse(t, `Feature: Scale
  Scenario: weighing
    Given an empty basket
    And a broken scale
    When I add 1 apples
`))
		require.Len(t, results, 1)
		require.False(t, results[0].Passed)
		require.Contains(t, results[0].Error, "scale is broken")
		require.Contains(t, results[0].Error, `step "Given a broken scale" failed`)

		statuses := make([]cola.StepStatus, 0)
		for _, step := range results[0].Steps {
			statuses = append(statuses, step.Status)
		}
		require.Equal(t, []cola.StepStatus{cola.StepPassed, cola.StepFailed, cola.StepSkipped}, statuses)
		require.Empty(t, b.items)
	})

	t.Run("should fail steps without a definition", func(t *testing.T) {
		exec := NewStepExecutor()
		results := exec.Execute(parse(t, `Feature: Missing
  Scenario: nothing registered
    Given something undefined
`))
		require.Len(t, results, 1)
		require.False(t, results[0].Passed)
		require.Equal(t, cola.StepFailed, results[0].Steps[0].Status)
		require.Contains(t, results[0].Steps[0].Error, "no matching step definition")
	})

	t.Run("should stop after the first failed scenario when failing fast", func(t *testing.T) {
		source := `Feature: Fail fast
  Scenario: first
    Given a failure

  Scenario: second
    Given a failure
`
		failing := func() error { return errors.New("boom") }

		exec := NewStepExecutor(WithFailFast(true))
		require.NoError(t, exec.RegisterStep(KindGiven, "a failure", failing))
		require.Len(t, exec.Execute(parse(t, source)), 1)

		exec = NewStepExecutor()
		require.NoError(t, exec.RegisterStep(KindGiven, "a failure", failing))
		require.Len(t, exec.Execute(parse(t, source)), 2)
	})

	t.Run("should recover panics", func(t *testing.T) {
		exec := NewStepExecutor()
		require.NoError(t, exec.RegisterStep(KindGiven, "a panic", func() { panic("oops") }))

		results := exec.Execute(parse(t, `Feature: Panic
  Scenario: panicking
    Given a panic
`))
		require.False(t, results[0].Passed)
		require.Contains(t, results[0].Error, "panicked: oops")
	})

	t.Run("should run rule backgrounds after the feature background", func(t *testing.T) {
		var calls []string
		exec := NewStepExecutor()
		require.NoError(t, exec.RegisterStep(KindGiven, `step (\d+)`, func(n string) {
			calls = append(calls, n)
		}, binding.Group(1)))

		results := exec.Execute(parse(t, `Feature: Rules
  Background:
    Given step 1

  Rule: ruled
    Background:
      Given step 2

    Scenario: inside
      Given step 3
`))
		require.Len(t, results, 1)
		require.True(t, results[0].Passed, results[0].Error)
		require.Equal(t, "ruled", results[0].RuleName)
		require.Equal(t, []string{"1", "2", "3"}, calls)
	})

	t.Run("should return no results for an empty document", func(t *testing.T) {
		require.Empty(t, NewStepExecutor().Execute(&messages.GherkinDocument{}))
		require.Empty(t, NewStepExecutor().Execute(nil))
	})
}

type ctxKey struct{}

func TestStepExecutor_Invoke(t *testing.T) {
	t.Run("should pass returned contexts to later steps of the same scenario", func(t *testing.T) {
		var seen []any
		exec := NewStepExecutor()
		require.NoError(t, exec.RegisterStep(KindGiven, "a value <value>", func(ctx context.Context, value string) context.Context {
			return context.WithValue(ctx, ctxKey{}, value)
		}, binding.Unbound, binding.Assigned("value")))
		require.NoError(t, exec.RegisterStep(KindThen, "the value is read", func(ctx context.Context) {
			seen = append(seen, ctx.Value(ctxKey{}))
		}))

		results := exec.Execute(parse(t, `Feature: Context
  Scenario: first
    Given a value one
    Then the value is read

  Scenario: second
    Then the value is read
`))
		require.Len(t, results, 2)
		require.Equal(t, []any{"one", nil}, seen)
	})

	t.Run("should pass the data table to unbound table parameters", func(t *testing.T) {
		var headers []string
		exec := NewStepExecutor()
		require.NoError(t, exec.RegisterStep(KindGiven, "the prices", func(table cola.Table) {
			headers = table.Headers()
		}))

		results := exec.Execute(parse(t, `Feature: Tables
  Scenario: prices
    Given the prices
      | item   | price |
      | apples | 2     |
`))
		require.True(t, results[0].Passed, results[0].Error)
		require.Equal(t, []string{"item", "price"}, headers)
	})

	t.Run("should pass zero values for unresolved nillable parameters", func(t *testing.T) {
		var got []string
		called := false
		exec := NewStepExecutor()
		require.NoError(t, exec.RegisterStep(KindGiven, "nothing bound", func(values []string) {
			got, called = values, true
		}))

		results := exec.Execute(parse(t, `Feature: Nil
  Scenario: nillable
    Given nothing bound
`))
		require.True(t, results[0].Passed, results[0].Error)
		require.True(t, called)
		require.Nil(t, got)
	})

	t.Run("should fail for unresolved parameters that cannot be nil", func(t *testing.T) {
		exec := NewStepExecutor()
		require.NoError(t, exec.RegisterStep(KindGiven, "I have <count> items", func(int) {},
			binding.Projection("count")))

		results := exec.Execute(parse(t, `Feature: Nil
  Scenario: projection outside an outline
    Given I have 3 items
`))
		require.False(t, results[0].Passed)
		require.Contains(t, results[0].Error, "int cannot be nil")
	})
}

func TestStepExecutor_Hooks(t *testing.T) {
	t.Run("should run scenario and step hooks around each step", func(t *testing.T) {
		var events []string
		hooks := cola.NewHookExecutor(&cola.Hooks{
			BeforeScenario: func(s cola.Scenario) { events = append(events, "before scenario "+s.Name) },
			AfterScenario: func(s cola.Scenario, err error) {
				events = append(events, "after scenario "+s.Name)
			},
			BeforeStep: func(s cola.Step) { events = append(events, "before step "+s.Text) },
			AfterStep: func(s cola.Step, err error) {
				events = append(events, "after step "+s.Text)
			},
		})

		exec := NewStepExecutor(WithHooks(hooks))
		require.NoError(t, exec.RegisterStep(KindGiven, "a step", func() {}))

		exec.Execute(parse(t, `Feature: Hooks
  Scenario: hooked
    Given a step
`))
		require.Equal(t, []string{
			"before scenario hooked",
			"before step a step",
			"after step a step",
			"after scenario hooked",
		}, events)
	})

	t.Run("should pass the scenario error to after hooks", func(t *testing.T) {
		var failure error
		hooks := cola.NewHookExecutor(&cola.Hooks{
			AfterScenario: func(s cola.Scenario, err error) { failure = err },
		})

		exec := NewStepExecutor(WithHooks(hooks))
		require.NoError(t, exec.RegisterStep(KindGiven, "a failure", func() error { return errors.New("boom") }))

		exec.Execute(parse(t, `Feature: Hooks
  Scenario: failing
    Given a failure
`))
		require.ErrorContains(t, failure, "boom")
	})
}

func Test_stepKind(t *testing.T) {
	require.Equal(t, KindGiven, stepKind("Given ", ""))
	require.Equal(t, KindWhen, stepKind("And ", KindWhen))
	require.Equal(t, KindThen, stepKind("But ", KindThen))
	require.Equal(t, KindGiven, stepKind("* ", KindGiven))
	require.Equal(t, "", stepKind("And ", ""))
}
