package cola

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// HTMLReporter writes a self-contained HTML page for a run. Failed scenarios
// are listed first; each status section is grouped by the scenarios' tags.
type HTMLReporter struct {
	path string
}

// NewHTMLReporter creates a reporter writing to path. Missing parent
// directories are created.
func NewHTMLReporter(path string) *HTMLReporter {
	return &HTMLReporter{path: path}
}

func (r *HTMLReporter) Report(result *RunResult) error {
	if result == nil {
		result = &RunResult{}
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("could not create report directory %q: %w", dir, err)
		}
	}

	f, err := os.Create(r.path)
	if err != nil {
		return fmt.Errorf("could not create report file %q: %w", r.path, err)
	}
	defer f.Close()

	if err := reportTemplate.Execute(f, newReportPage(result)); err != nil {
		return fmt.Errorf("could not render HTML report: %w", err)
	}
	return nil
}

type (
	reportPage struct {
		ID         string
		Summary    Summary
		Duration   time.Duration
		ExecutedAt time.Time
		Sections   []reportSection
	}

	reportSection struct {
		Label    string
		Class    string
		Duration time.Duration
		Groups   []reportGroup
	}

	reportGroup struct {
		Tags      string
		Duration  time.Duration
		Scenarios []ScenarioResult
	}
)

const untagged = "untagged"

func newReportPage(result *RunResult) reportPage {
	var failed, passed []ScenarioResult
	for _, scenario := range result.Scenarios {
		if scenario.Passed {
			passed = append(passed, scenario)
		} else {
			failed = append(failed, scenario)
		}
	}

	page := reportPage{
		ID:         result.ID,
		Summary:    result.Summary,
		Duration:   result.Duration,
		ExecutedAt: result.StartedAt,
	}
	if len(failed) > 0 {
		page.Sections = append(page.Sections, newReportSection("Failed scenarios", "failed", failed))
	}
	if len(passed) > 0 {
		page.Sections = append(page.Sections, newReportSection("Passed scenarios", "passed", passed))
	}
	return page
}

func newReportSection(label, class string, scenarios []ScenarioResult) reportSection {
	byTags := make(map[string][]ScenarioResult)
	for _, scenario := range scenarios {
		key := tagLabel(scenario.Tags)
		byTags[key] = append(byTags[key], scenario)
	}

	keys := make([]string, 0, len(byTags))
	for key := range byTags {
		keys = append(keys, key)
	}
	// untagged sorts last
	slices.SortFunc(keys, func(a, b string) int {
		switch {
		case a == untagged:
			return 1
		case b == untagged:
			return -1
		default:
			return strings.Compare(a, b)
		}
	})

	section := reportSection{Label: label, Class: class, Duration: totalDuration(scenarios)}
	for _, key := range keys {
		section.Groups = append(section.Groups, reportGroup{
			Tags:      key,
			Duration:  totalDuration(byTags[key]),
			Scenarios: byTags[key],
		})
	}
	return section
}

func tagLabel(tags []string) string {
	if len(tags) == 0 {
		return untagged
	}
	sorted := slices.Clone(tags)
	slices.Sort(sorted)
	return strings.Join(slices.Compact(sorted), ", ")
}

func totalDuration(scenarios []ScenarioResult) time.Duration {
	var total time.Duration
	for _, scenario := range scenarios {
		total += scenario.Duration
	}
	return total
}

// formatReportDuration prints µs below a millisecond, ms below a second.
func formatReportDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%.0fµs", float64(d)/float64(time.Microsecond))
	case d < time.Second:
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

// highlightPlaceholders wraps the <name> tokens of an outline step.
func highlightPlaceholders(text string) template.HTML {
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
		b.WriteString(template.HTMLEscapeString(rest[:start]))
		b.WriteString(`<span class="placeholder">`)
		b.WriteString(template.HTMLEscapeString(rest[start:end]))
		b.WriteString(`</span>`)
		rest = rest[end:]
	}
	b.WriteString(template.HTMLEscapeString(rest))
	return template.HTML(b.String())
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"duration":  formatReportDuration,
	"highlight": highlightPlaceholders,
	"status":    func(s StepStatus) string { return s.String() },
	"symbol": func(s StepStatus) string {
		switch s {
		case StepPassed:
			return symbolPass
		case StepFailed:
			return symbolFail
		default:
			return symbolSkip
		}
	},
	"outcome": func(passed bool) string {
		if passed {
			return "passed"
		}
		return "failed"
	},
	"summaryClass": func(failed int) string {
		if failed > 0 {
			return "has-failures"
		}
		return "all-passed"
	},
	"timestamp": func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
	"projections": func(projections map[string]string) string {
		names := make([]string, 0, len(projections))
		for name := range projections {
			names = append(names, name)
		}
		slices.Sort(names)
		pairs := make([]string, len(names))
		for i, name := range names {
			pairs[i] = name + "=" + projections[name]
		}
		return strings.Join(pairs, ", ")
	},
}).Parse(reportHTML))

const reportHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>cola run report</title>
<style>
  * { box-sizing: border-box; margin: 0; padding: 0; }
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; background: #f8f9fa; color: #212529; line-height: 1.6; padding: 2rem; }
  h1 { font-size: 1.5rem; }
  .meta { font-size: 0.8rem; color: #868e96; margin-bottom: 1.5rem; }
  .summary { display: flex; gap: 1rem; flex-wrap: wrap; margin-bottom: 2rem; padding: 1rem; background: #fff; border-radius: 10px; }
  .summary.all-passed { border: 2px solid #2b8a3e; }
  .summary.has-failures { border: 2px solid #c92a2a; }
  .summary-item { text-align: center; min-width: 90px; }
  .number { font-size: 1.8rem; font-weight: 700; }
  .label { font-size: 0.7rem; text-transform: uppercase; color: #868e96; }
  .section { margin-bottom: 2rem; }
  .section h2 { font-size: 1.1rem; border-bottom: 2px solid #dee2e6; margin-bottom: 0.75rem; }
  .section.failed h2 { color: #c92a2a; }
  .section.passed h2 { color: #2b8a3e; }
  .group h3 { font-size: 0.85rem; color: #495057; }
  .scenario { margin: 0.5rem 0; background: #fff; border-radius: 8px; border: 1px solid #e9ecef; }
  .scenario.passed { border-left: 4px solid #69db7c; }
  .scenario.failed { border-left: 4px solid #ff6b6b; }
  .scenario-header { padding: 0.6rem 1rem; cursor: pointer; }
  .scenario-name { font-weight: 600; }
  .feature, .row { color: #495057; font-size: 0.78rem; }
  .tag { background: #e9ecef; border-radius: 4px; padding: 0.1rem 0.45rem; font-size: 0.68rem; }
  .steps { display: none; padding: 0.5rem 1rem; background: #1e1f22; font-family: "JetBrains Mono", monospace; font-size: 0.82rem; }
  .scenario.open .steps { display: block; }
  .step { display: flex; gap: 0.5rem; color: #BCBEC4; }
  .step .symbol.passed { color: #32cd32; }
  .step .symbol.failed { color: #ff4444; }
  .step .symbol.skipped { color: #e6b800; }
  .step.skipped { color: #6F737A; }
  .keyword { color: #CF8E6D; white-space: pre; }
  .placeholder { color: #C77DBB; }
  .binding { margin-left: auto; color: #6F737A; font-size: 0.72rem; }
  .error { color: #ff4444; white-space: pre-wrap; margin-left: 1.7rem; }
  .empty { color: #868e96; font-style: italic; text-align: center; }
</style>
</head>
<body>
<h1>cola run report</h1>
<div class="meta">{{if .ID}}Run {{.ID}}{{end}}{{if not .ExecutedAt.IsZero}} executed at {{timestamp .ExecutedAt}}{{end}}</div>

<div class="summary {{summaryClass .Summary.ScenariosFailed}}">
  <div class="summary-item"><div class="number">{{.Summary.ScenariosTotal}}</div><div class="label">Scenarios</div></div>
  <div class="summary-item"><div class="number">{{.Summary.ScenariosPassed}}</div><div class="label">Passed</div></div>
  <div class="summary-item"><div class="number">{{.Summary.ScenariosFailed}}</div><div class="label">Failed</div></div>
  <div class="summary-item"><div class="number">{{.Summary.StepsTotal}}</div><div class="label">Steps</div></div>
  <div class="summary-item"><div class="number">{{.Summary.StepsSkipped}}</div><div class="label">Steps skipped</div></div>
  <div class="summary-item"><div class="number">{{duration .Duration}}</div><div class="label">Duration</div></div>
</div>

{{if not .Sections}}<div class="empty">No scenarios were executed.</div>{{end}}
{{range .Sections}}
<div class="section {{.Class}}">
  <h2>{{.Label}} <span class="label">{{duration .Duration}}</span></h2>
  {{range .Groups}}
  <div class="group">
    <h3 class="tags"># {{.Tags}} ({{len .Scenarios}} scenario(s), {{duration .Duration}})</h3>
    {{range .Scenarios}}
    <div class="scenario {{outcome .Passed}}">
      <div class="scenario-header" onclick="this.parentElement.classList.toggle('open')">
        <span class="feature">{{.FeatureName}}{{if .RuleName}} / {{.RuleName}}{{end}}</span><br>
        <span class="scenario-name">{{.Name}}</span>
        {{if .Projections}}<span class="row">({{projections .Projections}})</span>{{end}}
        {{range .Tags}}<span class="tag">{{.}}</span> {{end}}
        <span class="feature">{{duration .Duration}}</span>
      </div>
      <div class="steps">
        {{range .Steps}}
        <div class="step {{status .Status}}">
          <span class="symbol {{status .Status}}">{{symbol .Status}}</span>
          <span class="keyword">{{.Keyword}}</span>
          <span>{{highlight .Text}}</span>
          {{if .Definition}}<span class="binding">{{.Definition}} {{duration .Duration}}</span>{{end}}
        </div>
        {{if .Error}}<div class="error">{{.Error}}</div>{{end}}
        {{end}}
      </div>
    </div>
    {{end}}
  </div>
  {{end}}
</div>
{{end}}

<script>
document.querySelectorAll('.scenario.failed').forEach(function (el) { el.classList.add('open'); });
</script>
</body>
</html>
`
