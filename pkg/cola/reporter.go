package cola

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// ANSI color codes
const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"

	colorKeyword      = "\033[38;2;207;142;109m" // #CF8E6D
	colorText         = "\033[38;2;188;190;196m" // #BCBEC4
	colorOutlineParam = "\033[38;2;199;125;187m" // #C77DBB
	colorSkipped      = "\033[38;2;111;115;122m" // #6F737A
	colorYellow       = "\033[33m"
)

const (
	symbolPass = "✓"
	symbolFail = "✗"
	symbolSkip = "-"
)

// Reporter prints the outcome of a run.
type Reporter interface {
	Report(result *RunResult) error
}

// ConsoleReporter writes features, scenarios and steps as an indented tree
// followed by a summary.
type ConsoleReporter struct {
	out       io.Writer
	useColors bool
}

func NewConsoleReporter(out io.Writer, useColors bool) *ConsoleReporter {
	return &ConsoleReporter{out: out, useColors: useColors}
}

func (r *ConsoleReporter) color(code, text string) string {
	if !r.useColors {
		return text
	}
	return code + text + colorReset
}

func (r *ConsoleReporter) Report(result *RunResult) error {
	if result == nil {
		return nil
	}

	var b strings.Builder
	feature, rule := "", ""
	for i, scenario := range result.Scenarios {
		if i == 0 || scenario.FeatureName != feature {
			feature, rule = scenario.FeatureName, ""
			fmt.Fprintf(&b, "\n%s %s\n", r.color(colorKeyword, "Feature:"), r.color(colorText, feature))
		}
		if scenario.RuleName != "" && scenario.RuleName != rule {
			rule = scenario.RuleName
			fmt.Fprintf(&b, "\n  %s %s\n", r.color(colorKeyword, "Rule:"), r.color(colorText, rule))
		}
		r.writeScenario(&b, scenario)
	}
	r.writeSummary(&b, result)

	_, err := io.WriteString(r.out, b.String())
	return err
}

func (r *ConsoleReporter) writeScenario(b *strings.Builder, scenario ScenarioResult) {
	keyword := scenario.Keyword
	if keyword == "" {
		keyword = "Scenario"
	}
	fmt.Fprintf(b, "\n  %s %s%s\n",
		r.color(colorKeyword, keyword+":"),
		r.color(colorText, scenario.Name),
		r.formatProjections(scenario.Projections))

	for _, step := range scenario.Steps {
		switch step.Status {
		case StepPassed:
			fmt.Fprintf(b, "    %s %s\n", r.color(colorGreen, symbolPass), r.formatStep(step))
		case StepFailed:
			fmt.Fprintf(b, "    %s %s\n", r.color(colorRed, symbolFail), r.formatStep(step))
			for _, line := range strings.Split(step.Error, "\n") {
				if line != "" {
					b.WriteString(r.color(colorRed, "        "+line) + "\n")
				}
			}
		case StepSkipped:
			fmt.Fprintf(b, "    %s %s\n", r.color(colorYellow, symbolSkip), r.color(colorSkipped, step.Keyword+step.Text))
		}
	}
}

func (r *ConsoleReporter) formatStep(step StepResult) string {
	return r.color(colorKeyword, step.Keyword) + r.colorizePlaceholders(step.Text)
}

// colorizePlaceholders highlights <name> regions of outline steps.
func (r *ConsoleReporter) colorizePlaceholders(text string) string {
	if !r.useColors {
		return text
	}

	var b strings.Builder
	rest := text
	for {
		start := strings.IndexByte(rest, '<')
		if start < 0 {
			break
		}
		end := strings.IndexByte(rest[start:], '>')
		if end < 2 {
			break
		}
		end += start + 1
		if start > 0 {
			b.WriteString(r.color(colorText, rest[:start]))
		}
		b.WriteString(r.color(colorOutlineParam, rest[start:end]))
		rest = rest[end:]
	}
	if rest != "" {
		b.WriteString(r.color(colorText, rest))
	}
	return b.String()
}

// formatProjections renders an example row as " (a=1, b=2)" in column name order.
func (r *ConsoleReporter) formatProjections(projections map[string]string) string {
	if len(projections) == 0 {
		return ""
	}
	names := make([]string, 0, len(projections))
	for name := range projections {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, len(names))
	for i, name := range names {
		pairs[i] = r.color(colorOutlineParam, name) + "=" + projections[name]
	}
	return " (" + strings.Join(pairs, ", ") + ")"
}

func (r *ConsoleReporter) writeSummary(b *strings.Builder, result *RunResult) {
	summary := result.Summary
	b.WriteString("\n")

	line := fmt.Sprintf("%d scenario(s)", summary.ScenariosTotal)
	var parts []string
	if summary.ScenariosPassed > 0 {
		parts = append(parts, r.color(colorGreen, fmt.Sprintf("%d passed", summary.ScenariosPassed)))
	}
	if summary.ScenariosFailed > 0 {
		parts = append(parts, r.color(colorRed, fmt.Sprintf("%d failed", summary.ScenariosFailed)))
	}
	if len(parts) > 0 {
		line += " (" + strings.Join(parts, ", ") + ")"
	}
	b.WriteString(line + "\n")

	line = fmt.Sprintf("%d step(s)", summary.StepsTotal)
	parts = parts[:0]
	if summary.StepsPassed > 0 {
		parts = append(parts, r.color(colorGreen, fmt.Sprintf("%d passed", summary.StepsPassed)))
	}
	if summary.StepsFailed > 0 {
		parts = append(parts, r.color(colorRed, fmt.Sprintf("%d failed", summary.StepsFailed)))
	}
	if summary.StepsSkipped > 0 {
		parts = append(parts, r.color(colorYellow, fmt.Sprintf("%d skipped", summary.StepsSkipped)))
	}
	if len(parts) > 0 {
		line += " (" + strings.Join(parts, ", ") + ")"
	}
	b.WriteString(line + "\n")

	fmt.Fprintf(b, "%s\n", result.Duration.Round(time.Millisecond))
}
