package cola

import "time"

// StepStatus represents the execution outcome of a step.
type StepStatus int

const (
	// StepPassed indicates the step executed successfully.
	StepPassed StepStatus = iota
	// StepFailed indicates the step failed (returned error, panic, no
	// matching definition or an argument that could not be passed).
	StepFailed
	// StepSkipped indicates the step was skipped due to an earlier failure.
	StepSkipped
)

func (s StepStatus) String() string {
	switch s {
	case StepPassed:
		return "passed"
	case StepFailed:
		return "failed"
	case StepSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// StepResult holds the execution result of a single step.
type StepResult struct {
	Step

	// Label is the step kind followed by the step text, e.g. "Given I have <n> items".
	Label string

	// Definition is the name of the bound step function. Empty when no
	// definition matched.
	Definition string

	Status StepStatus

	// Error is the failure message. Empty for passed/skipped steps.
	Error string

	// Duration is zero for skipped steps.
	Duration time.Duration
}

// ScenarioResult holds the execution result of one scenario run. A Scenario
// Outline produces one result per example row.
type ScenarioResult struct {
	Scenario

	FeatureName string

	// RuleName is empty if the scenario is not inside a rule.
	RuleName string

	Passed bool

	// Error is the message of the first failed step.
	Error string

	Duration  time.Duration
	StartedAt time.Time

	// Steps contains background steps followed by the scenario's own steps.
	Steps []StepResult
}

// Summary holds aggregate counters of a run.
type Summary struct {
	ScenariosTotal  int
	ScenariosPassed int
	ScenariosFailed int
	StepsTotal      int
	StepsPassed     int
	StepsFailed     int
	StepsSkipped    int
}

// Add counts a scenario result and its steps.
func (s *Summary) Add(result ScenarioResult) {
	s.ScenariosTotal++
	if result.Passed {
		s.ScenariosPassed++
	} else {
		s.ScenariosFailed++
	}

	for _, step := range result.Steps {
		s.StepsTotal++
		switch step.Status {
		case StepPassed:
			s.StepsPassed++
		case StepFailed:
			s.StepsFailed++
		case StepSkipped:
			s.StepsSkipped++
		}
	}
}

// RunResult holds the complete results of a test run.
type RunResult struct {
	// ID identifies the run in logs.
	ID string

	Scenarios []ScenarioResult
	Summary   Summary
	Duration  time.Duration
	StartedAt time.Time
}

// Failed reports whether any scenario failed.
func (r *RunResult) Failed() bool {
	return r.Summary.ScenariosFailed > 0
}
