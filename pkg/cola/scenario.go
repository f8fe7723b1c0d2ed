package cola

import messages "github.com/cucumber/messages/go/v21"

// Scenario holds metadata about the currently executing scenario.
// Passed to BeforeScenario/AfterScenario hooks.
type Scenario struct {
	// Name is the scenario name as written in the .feature file.
	Name string

	// Tags contains the tag names of the scenario, including tags inherited
	// from the Feature, Rule and Examples block.
	Tags []string

	// Keyword is "Scenario", "Example" or "Scenario Outline".
	Keyword string

	// Line is the source file line number where the scenario is defined.
	Line int64

	// Projections holds the example row of a Scenario Outline, keyed by
	// column header. Nil for plain scenarios.
	Projections map[string]string
}

// Step holds metadata about the currently executing step.
// Passed to BeforeStep/AfterStep hooks.
type Step struct {
	// Keyword is the Gherkin keyword including trailing whitespace
	// (e.g. "Given ", "And ").
	Keyword string

	// Kind is the resolved step kind: "Given", "When" or "Then". And/But
	// steps take the kind of the step before them.
	Kind string

	// Text is the step text after the keyword. Outline placeholders such as
	// <count> are left in place.
	Text string

	// Line is the source file line number where the step is defined.
	Line int64

	// Arguments are the values bound to the step function parameters.
	Arguments []any
}

// ScenarioFromMessage converts a parsed Gherkin Scenario message.
// tags are the inherited tags to report in place of the scenario's own.
func ScenarioFromMessage(s *messages.Scenario, tags []string, projections map[string]string) Scenario {
	var line int64
	if s.Location != nil {
		line = s.Location.Line
	}
	return Scenario{
		Name:        s.Name,
		Tags:        tags,
		Keyword:     s.Keyword,
		Line:        line,
		Projections: projections,
	}
}

// StepFromMessage converts a parsed Gherkin Step message.
func StepFromMessage(s *messages.Step, kind string) Step {
	var line int64
	if s.Location != nil {
		line = s.Location.Line
	}
	return Step{
		Keyword: s.Keyword,
		Kind:    kind,
		Text:    s.Text,
		Line:    line,
	}
}

// TagNames returns the names of tags, "@" prefix included.
func TagNames(tags []*messages.Tag) []string {
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	return names
}
