package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	messages "github.com/cucumber/messages/go/v21"
	tagexpressions "github.com/cucumber/tag-expressions/go/v6"
	"github.com/cola-bdd/cola/pkg/binding"
	"github.com/cola-bdd/cola/pkg/cola"
	"github.com/cola-bdd/cola/pkg/executor"
	"github.com/cola-bdd/cola/pkg/gherkin_parser"
	"github.com/gofrs/uuid"
)

// TestingT is the part of *testing.T the runner reports failures to.
type TestingT interface {
	Helper()
	Logf(format string, args ...any)
	Errorf(format string, args ...any)
}

type (
	CucumberRunner struct {
		t                  TestingT
		ctx                context.Context
		config             *cola.Config
		configFile         string
		hooks              []*cola.Hooks
		featureDirectories []string
		parser             FeatureParser
		reporter           cola.Reporter
		steps              []stepRegistration
	}

	stepRegistration struct {
		kind     string
		pattern  string
		function any
		bindings []binding.Binding
	}
)

// NewCucumberRunner creates a runner. t may be nil, in which case failures
// are only returned from Run.
func NewCucumberRunner(t TestingT) *CucumberRunner {
	return &CucumberRunner{
		t:          t,
		ctx:        context.Background(),
		config:     &cola.Config{},
		configFile: cola.DefaultConfigFile,
		parser:     gherkin_parser.NewFileParser(),
	}
}

// WithConfigFile reads settings from a YAML file instead of cola.yaml in the
// working directory. Configs passed to WithConfig override the file. An
// empty path disables the file.
func (c *CucumberRunner) WithConfigFile(path string) *CucumberRunner {
	c.configFile = path

	return c
}

// WithConfig merges configs into the runner configuration. Later values win.
func (c *CucumberRunner) WithConfig(configs ...*cola.Config) *CucumberRunner {
	c.config = cola.MergeConfigs(append([]*cola.Config{c.config}, configs...)...)

	return c
}

func (c *CucumberRunner) WithHooks(hooks ...*cola.Hooks) *CucumberRunner {
	c.hooks = append(c.hooks, hooks...)

	return c
}

func (c *CucumberRunner) WithFeaturesDirectories(directories ...string) *CucumberRunner {
	c.featureDirectories = directories

	return c
}

func (c *CucumberRunner) WithFeatureParser(parser FeatureParser) *CucumberRunner {
	c.parser = parser

	return c
}

// WithReporter prints every run result with reporter. It takes precedence
// over the report setting of the config.
func (c *CucumberRunner) WithReporter(reporter cola.Reporter) *CucumberRunner {
	c.reporter = reporter

	return c
}

// WithContext sets the context every scenario starts with.
func (c *CucumberRunner) WithContext(ctx context.Context) *CucumberRunner {
	c.ctx = ctx

	return c
}

// RegisterStep adds a step definition. kind is Given, When, Then or empty
// for any kind. Registration errors are reported by Run.
func (c *CucumberRunner) RegisterStep(kind, pattern string, function any, bindings ...binding.Binding) *CucumberRunner {
	c.steps = append(c.steps, stepRegistration{
		kind:     kind,
		pattern:  pattern,
		function: function,
		bindings: bindings,
	})

	return c
}

func (c *CucumberRunner) Given(pattern string, function any, bindings ...binding.Binding) *CucumberRunner {
	return c.RegisterStep(executor.KindGiven, pattern, function, bindings...)
}

func (c *CucumberRunner) When(pattern string, function any, bindings ...binding.Binding) *CucumberRunner {
	return c.RegisterStep(executor.KindWhen, pattern, function, bindings...)
}

func (c *CucumberRunner) Then(pattern string, function any, bindings ...binding.Binding) *CucumberRunner {
	return c.RegisterStep(executor.KindThen, pattern, function, bindings...)
}

// Run executes all features. The tag expression is taken from the --tags
// command line argument, falling back to the configured tags.
func (c *CucumberRunner) Run() error {
	expression := parseTagsFromArgs()
	if expression == "" {
		config, err := c.loadConfig()
		if err != nil {
			return c.fail(err)
		}
		expression = config.Tags
	}

	return c.RunWithTags(expression)
}

// RunWithTags executes the scenarios selected by a tag expression. An empty
// expression selects every scenario. Failed scenarios are reported to the
// TestingT and result in an error.
func (c *CucumberRunner) RunWithTags(expression string) error {
	if c.t != nil {
		c.t.Helper()
	}

	config, err := c.loadConfig()
	if err != nil {
		return c.fail(err)
	}
	result, err := c.execute(expression, config)
	if err != nil {
		return c.fail(err)
	}

	for _, reporter := range c.reporters(config) {
		if err := reporter.Report(result); err != nil && c.t != nil {
			c.t.Logf("failed to write report: %v", err)
		}
	}

	for _, scenario := range result.Scenarios {
		if scenario.Passed || c.t == nil {
			continue
		}
		c.t.Errorf("%s: scenario %q failed: %s", scenario.FeatureName, scenario.Name, scenario.Error)
	}

	summary := result.Summary
	if c.t != nil {
		c.t.Logf("%d scenarios (%d passed, %d failed), %d steps (%d passed, %d failed, %d skipped)",
			summary.ScenariosTotal, summary.ScenariosPassed, summary.ScenariosFailed,
			summary.StepsTotal, summary.StepsPassed, summary.StepsFailed, summary.StepsSkipped)
	}

	if result.Failed() {
		return fmt.Errorf("%d of %d scenarios failed", summary.ScenariosFailed, summary.ScenariosTotal)
	}

	return nil
}

func (c *CucumberRunner) fail(err error) error {
	if c.t != nil {
		c.t.Errorf("%v", err)
	}
	return err
}

// reporters returns the configured reporter, or the console one when the
// config asks for a report, plus the HTML reporter when a path is set.
func (c *CucumberRunner) reporters(config *cola.Config) []cola.Reporter {
	var reporters []cola.Reporter
	switch {
	case c.reporter != nil:
		reporters = append(reporters, c.reporter)
	case config.Report:
		reporters = append(reporters, cola.NewConsoleReporter(os.Stdout, !config.NoColor))
	}
	if config.HTMLReport != "" {
		reporters = append(reporters, cola.NewHTMLReporter(config.HTMLReport))
	}
	return reporters
}

// loadConfig merges the config file with the configs given to WithConfig.
// Relative paths in the file are resolved against its directory.
func (c *CucumberRunner) loadConfig() (*cola.Config, error) {
	if c.configFile == "" {
		return c.config, nil
	}

	fileConfig, err := cola.LoadConfig(c.configFile)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(c.configFile)
	for i, features := range fileConfig.Features {
		if !filepath.IsAbs(features) {
			fileConfig.Features[i] = filepath.Join(dir, features)
		}
	}
	if fileConfig.HTMLReport != "" && !filepath.IsAbs(fileConfig.HTMLReport) {
		fileConfig.HTMLReport = filepath.Join(dir, fileConfig.HTMLReport)
	}

	return cola.MergeConfigs(fileConfig, c.config), nil
}

// Execute runs the selected scenarios and returns their results. Failing
// scenarios are not errors; setup problems such as invalid step definitions,
// tag expressions, config or feature files are.
func (c *CucumberRunner) Execute(expression string) (*cola.RunResult, error) {
	config, err := c.loadConfig()
	if err != nil {
		return nil, err
	}

	return c.execute(expression, config)
}

func (c *CucumberRunner) execute(expression string, config *cola.Config) (*cola.RunResult, error) {
	var evaluator tagexpressions.Evaluatable
	if strings.TrimSpace(expression) != "" {
		var err error
		evaluator, err = tagexpressions.Parse(expression)
		if err != nil {
			return nil, fmt.Errorf("invalid tag expression %q: %w", expression, err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	engineOptions, err := config.EngineOptions()
	if err != nil {
		return nil, err
	}

	logger := cola.ResolveLogger(config)
	hooks := cola.NewHookExecutor(c.hooks...)
	exec := executor.NewStepExecutor(
		executor.WithEngine(binding.NewEngine(engineOptions...)),
		executor.WithLogger(logger),
		executor.WithHooks(hooks),
		executor.WithFailFast(config.FailFast),
		executor.WithContext(c.ctx),
	)

	for _, step := range c.steps {
		if err := exec.RegisterStep(step.kind, step.pattern, step.function, step.bindings...); err != nil {
			return nil, err
		}
	}

	documents, err := c.parseFeatures(config)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("could not generate run id: %w", err)
	}

	result := &cola.RunResult{
		ID:        id.String(),
		Scenarios: make([]cola.ScenarioResult, 0),
		StartedAt: time.Now(),
	}
	logger.Info("run started", "id", result.ID, "features", len(documents), "tags", expression)

	hooks.BeforeAll()
	for _, document := range documents {
		if evaluator != nil {
			document = filterDocumentByTags(document, evaluator)
		}

		for _, scenario := range exec.Execute(document) {
			result.Scenarios = append(result.Scenarios, scenario)
			result.Summary.Add(scenario)
		}

		if config.FailFast && result.Failed() {
			break
		}
	}
	hooks.AfterAll()

	result.Duration = time.Since(result.StartedAt)
	logger.Info("run finished",
		"id", result.ID,
		"scenarios", result.Summary.ScenariosTotal,
		"failed", result.Summary.ScenariosFailed,
		"duration", result.Duration,
	)

	return result, nil
}

func (c *CucumberRunner) parseFeatures(config *cola.Config) ([]*messages.GherkinDocument, error) {
	directories := c.featureDirectories
	if len(directories) == 0 {
		directories = config.Features
	}
	if len(directories) == 0 {
		directories = []string{"."}
	}

	featureFiles, err := c.parser.Search(directories)
	if err != nil {
		return nil, err
	}

	return c.parser.ParseFiles(c.ctx, featureFiles)
}

// parseTagsFromArgs returns the value of a --tags argument, if any.
func parseTagsFromArgs() string {
	args := os.Args[1:]
	for i, arg := range args {
		if value, ok := strings.CutPrefix(arg, "--tags="); ok {
			return value
		}
		if arg == "--tags" && i+1 < len(args) {
			return args[i+1]
		}
	}

	return ""
}

func mergeTags(parent, child []string) []string {
	merged := make([]string, 0, len(parent)+len(child))
	merged = append(merged, parent...)

	return append(merged, child...)
}

// filterDocumentByTags returns a copy of the document holding only the
// scenarios, and outline Examples, whose inherited tags satisfy the
// evaluator. Backgrounds are kept; rules without scenarios left are dropped.
func filterDocumentByTags(doc *messages.GherkinDocument, evaluator tagexpressions.Evaluatable) *messages.GherkinDocument {
	if doc == nil || doc.Feature == nil {
		return doc
	}

	featureTags := cola.TagNames(doc.Feature.Tags)
	children := make([]*messages.FeatureChild, 0, len(doc.Feature.Children))

	for _, child := range doc.Feature.Children {
		switch {
		case child.Background != nil:
			children = append(children, child)

		case child.Scenario != nil:
			if scenario := filterScenario(child.Scenario, featureTags, evaluator); scenario != nil {
				children = append(children, &messages.FeatureChild{Scenario: scenario})
			}

		case child.Rule != nil:
			if rule := filterRule(child.Rule, featureTags, evaluator); rule != nil {
				children = append(children, &messages.FeatureChild{Rule: rule})
			}
		}
	}

	feature := *doc.Feature
	feature.Children = children

	filtered := *doc
	filtered.Feature = &feature

	return &filtered
}

func filterRule(rule *messages.Rule, parentTags []string, evaluator tagexpressions.Evaluatable) *messages.Rule {
	tags := mergeTags(parentTags, cola.TagNames(rule.Tags))
	children := make([]*messages.RuleChild, 0, len(rule.Children))
	scenarios := 0

	for _, child := range rule.Children {
		if child.Background != nil {
			children = append(children, child)
			continue
		}
		if child.Scenario == nil {
			continue
		}
		if scenario := filterScenario(child.Scenario, tags, evaluator); scenario != nil {
			children = append(children, &messages.RuleChild{Scenario: scenario})
			scenarios++
		}
	}

	if scenarios == 0 {
		return nil
	}

	filtered := *rule
	filtered.Children = children

	return &filtered
}

func filterScenario(scenario *messages.Scenario, parentTags []string, evaluator tagexpressions.Evaluatable) *messages.Scenario {
	tags := mergeTags(parentTags, cola.TagNames(scenario.Tags))

	if len(scenario.Examples) == 0 {
		if evaluator.Evaluate(tags) {
			return scenario
		}
		return nil
	}

	examples := make([]*messages.Examples, 0, len(scenario.Examples))
	for _, ex := range scenario.Examples {
		if evaluator.Evaluate(mergeTags(tags, cola.TagNames(ex.Tags))) {
			examples = append(examples, ex)
		}
	}
	if len(examples) == 0 {
		return nil
	}

	filtered := *scenario
	filtered.Examples = examples

	return &filtered
}
