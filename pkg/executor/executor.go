package executor

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"time"

	messages "github.com/cucumber/messages/go/v21"
	"github.com/cola-bdd/cola/pkg/binding"
	"github.com/cola-bdd/cola/pkg/cola"
	"github.com/sahilm/fuzzy"
)

// Step kinds a definition can be registered for.
const (
	KindGiven = "Given"
	KindWhen  = "When"
	KindThen  = "Then"
)

var (
	ErrNoMatchingStep = errors.New("no matching step definition")
	ErrDuplicateStep  = errors.New("duplicate step pattern")
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
	tableType   = reflect.TypeFor[cola.Table]()
)

// skeletonNoise strips placeholders and regex syntax from a pattern, leaving
// the literal words used to rank suggestions.
var skeletonNoise = regexp.MustCompile(`<[^>]*>|\\.|[\^$()\[\]{}*+?|]`)

const maxSuggestions = 3

// StepDefinition is a registered step function with the pattern declared
// for it.
type StepDefinition struct {
	// Kind is Given, When, Then, or empty to match steps of any kind.
	Kind    string
	Pattern string
	Method  *binding.Func
}

// Option configures a StepExecutor.
type Option func(*StepExecutor)

// WithEngine sets the binding engine. Default: binding.NewEngine().
func WithEngine(engine *binding.Engine) Option {
	return func(e *StepExecutor) {
		e.engine = engine
	}
}

// WithLogger sets the logger. Default: a no-op logger.
func WithLogger(logger cola.Logger) Option {
	return func(e *StepExecutor) {
		e.logger = logger
	}
}

// WithHooks sets the scenario and step hooks.
func WithHooks(hooks *cola.HookExecutor) Option {
	return func(e *StepExecutor) {
		e.hooks = hooks
	}
}

// WithFailFast stops execution after the first failed scenario.
func WithFailFast(failFast bool) Option {
	return func(e *StepExecutor) {
		e.failFast = failFast
	}
}

// WithContext sets the context every scenario starts with.
func WithContext(ctx context.Context) Option {
	return func(e *StepExecutor) {
		e.baseContext = ctx
	}
}

// StepExecutor handles matching and executing step definitions
type StepExecutor struct {
	engine      *binding.Engine
	steps       []StepDefinition
	patternSet  map[string]bool // kind + pattern, for duplicate detection
	baseContext context.Context
	context     context.Context
	logger      cola.Logger
	hooks       *cola.HookExecutor
	failFast    bool
	stopped     bool
}

// NewStepExecutor creates a new StepExecutor
func NewStepExecutor(opts ...Option) *StepExecutor {
	e := &StepExecutor{
		steps:       make([]StepDefinition, 0),
		patternSet:  make(map[string]bool),
		baseContext: context.Background(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.engine == nil {
		e.engine = binding.NewEngine()
	}
	if e.logger == nil {
		e.logger = cola.NoopLogger()
	}
	e.context = e.baseContext
	return e
}

// RegisterStep registers fn for steps of the given kind whose text matches
// pattern. bindings are positional, one per parameter of fn; missing
// trailing entries are unbound.
func (e *StepExecutor) RegisterStep(kind, pattern string, fn any, bindings ...binding.Binding) error {
	kind, err := normalizeKind(kind)
	if err != nil {
		return err
	}

	key := kind + "\x00" + pattern
	if e.patternSet[key] {
		return fmt.Errorf("%w: %s %s", ErrDuplicateStep, kind, pattern)
	}

	if err := e.engine.Compile(pattern); err != nil {
		return err
	}

	method, err := binding.NewFunc(fn, bindings...)
	if err != nil {
		return fmt.Errorf("step %q: %w", pattern, err)
	}

	e.steps = append(e.steps, StepDefinition{
		Kind:    kind,
		Pattern: pattern,
		Method:  method,
	})
	e.patternSet[key] = true
	return nil
}

// Steps returns the registered definitions in registration order.
func (e *StepExecutor) Steps() []StepDefinition {
	return slices.Clone(e.steps)
}

func normalizeKind(kind string) (string, error) {
	for _, k := range []string{"", KindGiven, KindWhen, KindThen} {
		if strings.EqualFold(kind, k) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown step kind %q", kind)
}

// stepKind resolves the kind of a step from its keyword. Conjunctions and
// unknown keywords take the kind of the previous step.
func stepKind(keyword, previous string) string {
	keyword = strings.TrimSpace(keyword)
	switch keyword {
	case KindGiven, KindWhen, KindThen:
		return keyword
	default:
		return previous
	}
}

// Match finds the first definition matching a step of the given kind and
// binds its arguments. projections are the example values of the running
// Scenario Outline row and may be nil.
func (e *StepExecutor) Match(kind, text string, projections map[string]string) (*StepDefinition, *binding.MethodDetails, error) {
	for i := range e.steps {
		def := &e.steps[i]
		if def.Kind != "" && kind != "" && def.Kind != kind {
			continue
		}

		ok, err := e.matches(text, def.Pattern)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			continue
		}

		details, err := e.engine.Build(kind, text, def.Method, projections, def.Pattern)
		if err != nil {
			return nil, nil, err
		}
		return def, details, nil
	}

	return nil, nil, fmt.Errorf("%w for: %s%s", ErrNoMatchingStep, text, e.suggest(text))
}

// matches reports whether pattern applies to text: literally, as a regular
// expression, or as a placeholder template.
func (e *StepExecutor) matches(text, pattern string) (bool, error) {
	if text == pattern {
		return true, nil
	}

	groups, err := e.engine.Groups(text, pattern)
	if err != nil || len(groups) > 0 {
		return len(groups) > 0, err
	}

	assigned, err := e.engine.AssignedGroups(text, pattern)
	return len(assigned) > 0, err
}

func (e *StepExecutor) suggest(text string) string {
	type candidate struct {
		pattern string
		score   int
	}

	var candidates []candidate
	for _, def := range e.steps {
		skeleton := strings.TrimSpace(skeletonNoise.ReplaceAllString(def.Pattern, ""))
		if skeleton == "" {
			continue
		}
		if found := fuzzy.Find(skeleton, []string{text}); len(found) > 0 {
			candidates = append(candidates, candidate{pattern: def.Pattern, score: found[0].Score})
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(b.score, a.score)
	})

	quoted := make([]string, 0, maxSuggestions)
	for _, c := range candidates[:min(len(candidates), maxSuggestions)] {
		quoted = append(quoted, fmt.Sprintf("%q", c.pattern))
	}
	return "; did you mean " + strings.Join(quoted, ", ")
}

// Execute runs every scenario of the document and returns their results.
// Scenario Outlines run once per example row.
func (e *StepExecutor) Execute(document *messages.GherkinDocument) []cola.ScenarioResult {
	results := make([]cola.ScenarioResult, 0)
	if document == nil || document.Feature == nil {
		return results
	}

	feature := document.Feature
	scope := featureScope{
		feature: feature.Name,
		tags:    cola.TagNames(feature.Tags),
	}

	for _, child := range feature.Children {
		if e.stopped {
			break
		}
		switch {
		case child.Background != nil:
			scope.backgrounds = []*messages.Background{child.Background}
		case child.Rule != nil:
			results = append(results, e.executeRule(scope, child.Rule)...)
		case child.Scenario != nil:
			results = append(results, e.executeScenario(scope, child.Scenario)...)
		}
	}

	return results
}

// featureScope is what a scenario inherits from its feature and rule.
type featureScope struct {
	feature     string
	rule        string
	tags        []string
	backgrounds []*messages.Background
}

func (e *StepExecutor) executeRule(parent featureScope, rule *messages.Rule) []cola.ScenarioResult {
	scope := parent
	scope.rule = rule.Name
	scope.tags = slices.Concat(parent.tags, cola.TagNames(rule.Tags))

	var results []cola.ScenarioResult
	for _, child := range rule.Children {
		if e.stopped {
			break
		}
		if child.Background != nil {
			scope.backgrounds = append(slices.Clone(parent.backgrounds), child.Background)
		} else if child.Scenario != nil {
			results = append(results, e.executeScenario(scope, child.Scenario)...)
		}
	}
	return results
}

func (e *StepExecutor) executeScenario(scope featureScope, scenario *messages.Scenario) []cola.ScenarioResult {
	tags := slices.Concat(scope.tags, cola.TagNames(scenario.Tags))

	if len(scenario.Examples) == 0 {
		return []cola.ScenarioResult{e.runScenario(scope, scenario, tags, nil)}
	}

	var results []cola.ScenarioResult
	for _, examples := range scenario.Examples {
		exampleTags := slices.Concat(tags, cola.TagNames(examples.Tags))
		for _, projections := range cola.NewTableFromExamples(examples).Projections() {
			if e.stopped {
				return results
			}
			results = append(results, e.runScenario(scope, scenario, exampleTags, projections))
		}
	}
	return results
}

func (e *StepExecutor) runScenario(scope featureScope, scenario *messages.Scenario, tags []string, projections map[string]string) cola.ScenarioResult {
	meta := cola.ScenarioFromMessage(scenario, tags, projections)
	result := cola.ScenarioResult{
		Scenario:    meta,
		FeatureName: scope.feature,
		RuleName:    scope.rule,
		StartedAt:   time.Now(),
	}

	e.context = e.baseContext
	e.hooks.BeforeScenario(meta)

	var failure error
	run := func(steps []*messages.Step) {
		kind := ""
		for _, step := range steps {
			kind = stepKind(step.Keyword, kind)
			if failure != nil {
				result.Steps = append(result.Steps, cola.StepResult{
					Step:   cola.StepFromMessage(step, kind),
					Label:  kind + " " + step.Text,
					Status: cola.StepSkipped,
				})
				continue
			}

			stepResult, err := e.runStep(step, kind, projections)
			result.Steps = append(result.Steps, stepResult)
			if err != nil {
				failure = fmt.Errorf("step %q failed: %w", stepResult.Label, err)
			}
		}
	}

	for _, background := range scope.backgrounds {
		run(background.Steps)
	}
	run(scenario.Steps)

	result.Passed = failure == nil
	if failure != nil {
		result.Error = failure.Error()
	}
	result.Duration = time.Since(result.StartedAt)

	e.hooks.AfterScenario(meta, failure)

	if failure != nil {
		e.logger.Error("scenario failed", "feature", scope.feature, "scenario", scenario.Name, "error", failure)
		if e.failFast {
			e.stopped = true
		}
	} else {
		e.logger.Info("scenario passed", "feature", scope.feature, "scenario", scenario.Name)
	}

	return result
}

func (e *StepExecutor) runStep(step *messages.Step, kind string, projections map[string]string) (cola.StepResult, error) {
	started := time.Now()
	meta := cola.StepFromMessage(step, kind)
	result := cola.StepResult{
		Step:  meta,
		Label: kind + " " + step.Text,
	}

	def, details, err := e.Match(kind, step.Text, projections)
	if err == nil {
		meta.Arguments = details.Arguments()
		result.Step = meta
		result.Label = details.Step()
		result.Definition = def.Method.Name()

		e.logger.Debug("step bound",
			"step", details.Step(),
			"definition", def.Method.Name(),
			"projections", details.Projections(),
			"arguments", meta.Arguments,
		)

		e.hooks.BeforeStep(meta)
		err = e.invoke(def.Method, meta.Arguments, step)
		e.hooks.AfterStep(meta, err)
	}

	result.Duration = time.Since(started)
	if err != nil {
		result.Status = cola.StepFailed
		result.Error = err.Error()
		return result, err
	}
	result.Status = cola.StepPassed
	return result, nil
}

// invoke calls the step function, recovering panics into errors.
func (e *StepExecutor) invoke(method *binding.Func, args []any, step *messages.Step) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step function %s panicked: %v", method.Name(), r)
		}
	}()

	callArgs, err := e.buildCallArgs(method, args, step)
	if err != nil {
		return err
	}

	results := method.Call(callArgs)

	newCtx, err := processReturnValues(method.Type(), results)
	if newCtx != nil {
		e.context = newCtx
	}
	return err
}

// buildCallArgs turns bound arguments into call values. Unbound
// context.Context and cola.Table parameters receive the scenario context and
// the step DataTable. A nil argument for a type that cannot hold nil fails
// the call.
func (e *StepExecutor) buildCallArgs(method *binding.Func, args []any, step *messages.Step) ([]reflect.Value, error) {
	params := method.Params()
	callArgs := make([]reflect.Value, len(params))

	for i, param := range params {
		var arg any
		if i < len(args) {
			arg = args[i]
		}
		unbound := param.Binding.Kind() == binding.KindNone

		switch {
		case arg != nil:
			value := reflect.ValueOf(arg)
			switch {
			case value.Type().AssignableTo(param.Type):
			case value.Kind() == param.Type.Kind() && value.Type().ConvertibleTo(param.Type):
				value = value.Convert(param.Type)
			default:
				return nil, fmt.Errorf("argument %d of %s: %s is not assignable to %s",
					i, method.Name(), value.Type(), param.Type)
			}
			callArgs[i] = value

		case unbound && param.Type == contextType:
			callArgs[i] = reflect.ValueOf(&e.context).Elem()

		case unbound && param.Type == tableType:
			callArgs[i] = reflect.ValueOf(cola.NewTableFromDataTable(step.DataTable))

		case nillable(param.Type):
			callArgs[i] = reflect.Zero(param.Type)

		default:
			return nil, fmt.Errorf("argument %d of %s is unresolved (%s) and %s cannot be nil",
				i, method.Name(), param.Binding, param.Type)
		}
	}

	return callArgs, nil
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

// processReturnValues extracts context and error from function return values
func processReturnValues(fnType reflect.Type, results []reflect.Value) (context.Context, error) {
	var newCtx context.Context
	var retErr error

	for i, result := range results {
		resultType := fnType.Out(i)

		switch {
		case resultType.Implements(contextType):
			if !nillable(resultType) || !result.IsNil() {
				newCtx = result.Interface().(context.Context)
			}
		case resultType.Implements(errorType):
			if !nillable(resultType) || !result.IsNil() {
				retErr = result.Interface().(error)
			}
		}
	}

	return newCtx, retErr
}

// Context returns the context of the running scenario.
func (e *StepExecutor) Context() context.Context {
	return e.context
}
