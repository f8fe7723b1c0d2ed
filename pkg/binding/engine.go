// Package binding resolves the arguments of a step method from the text of a
// Gherkin step, the pattern declared on the method and the projection values
// of the running example.
package binding

import (
	"reflect"
	"slices"
	"sync"
	"time"
)

// Option configures an Engine.
type Option func(*Engine)

// WithDialect selects the regular expression engine for declared patterns.
func WithDialect(dialect Dialect) Option {
	return func(e *Engine) {
		e.dialect = dialect
	}
}

// WithExactTypes coerces values by the kind of the declared parameter type
// instead of by assignability. Named numeric types are supported then.
func WithExactTypes() Option {
	return func(e *Engine) {
		e.exactTypes = true
	}
}

// WithMatchTimeout bounds a single match of the Java dialect.
func WithMatchTimeout(timeout time.Duration) Option {
	return func(e *Engine) {
		e.matchTimeout = timeout
	}
}

// Engine binds step text to step methods. It owns a cache of compiled
// patterns and is safe for concurrent use.
type Engine struct {
	dialect      Dialect
	exactTypes   bool
	matchTimeout time.Duration
	matchers     sync.Map // compiled source -> Matcher
}

// NewEngine creates an Engine with the given options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{dialect: RE2}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dialect returns the dialect patterns are compiled with.
func (e *Engine) Dialect() Dialect {
	return e.dialect
}

func (e *Engine) matcher(pattern string) (Matcher, error) {
	if m, ok := e.matchers.Load(pattern); ok {
		return m.(Matcher), nil
	}

	m, err := compile(e.dialect, pattern, e.matchTimeout)
	if err != nil {
		return nil, err
	}
	actual, _ := e.matchers.LoadOrStore(pattern, m)
	return actual.(Matcher), nil
}

// Compile checks that pattern and its assignment form compile, caching both.
func (e *Engine) Compile(pattern string) error {
	if _, err := e.matcher(pattern); err != nil {
		return err
	}
	_, err := e.matcher(AssignmentPattern(pattern))
	return err
}

// Groups matches pattern verbatim against the whole step text and returns the
// whole match followed by every capture group. It returns nil when either
// input is empty or the match is partial.
func (e *Engine) Groups(step, pattern string) ([]Raw, error) {
	if step == "" || pattern == "" {
		return nil, nil
	}
	m, err := e.matcher(pattern)
	if err != nil {
		return nil, err
	}
	return m.FullMatch(step)
}

// AssignedGroups is Groups with every <name> placeholder of pattern replaced
// by a non-greedy wildcard group.
func (e *Engine) AssignedGroups(step, pattern string) ([]Raw, error) {
	if step == "" || pattern == "" {
		return nil, nil
	}
	return e.Groups(step, AssignmentPattern(pattern))
}

// Coerce converts raw to a value of type target, or nil.
func (e *Engine) Coerce(target reflect.Type, raw Raw) any {
	if e.exactTypes {
		return coerceExact(target, raw)
	}
	return coerceAssignable(target, raw)
}

// Arguments resolves one value per parameter. Projections are the
// placeholder names of the step text, assignments those of the declared
// pattern. Unresolvable parameters receive nil and no error is reported.
func (e *Engine) Arguments(params []Param, projections []string, values map[string]string,
	assignments []string, assignedGroups, groups []Raw) []any {
	args := make([]any, len(params))

	if len(values) == 0 && len(assignedGroups) == 0 && len(groups) == 0 {
		return args
	}

	for i, param := range params {
		args[i] = e.Coerce(param.Type, resolve(param.Binding, projections, values, assignments, assignedGroups, groups))
	}

	return args
}

func resolve(b Binding, projections []string, values map[string]string,
	assignments []string, assignedGroups, groups []Raw) Raw {
	switch b.kind {
	case KindProjection:
		if !slices.Contains(projections, b.name) {
			return Raw{}
		}
		if v, ok := values[b.name]; ok {
			return Present(v)
		}

	case KindGroup:
		if b.index >= 0 && len(groups) > b.index {
			return groups[b.index]
		}

	case KindAssigned:
		// Index 0 of the assigned groups is the whole match.
		pos := slices.Index(assignments, b.name) + 1
		if pos > 0 && pos < len(assignedGroups) {
			return assignedGroups[pos]
		}
	}

	return Raw{}
}

// Build resolves the arguments of method for a step of the given kind
// (Given, When, Then). values holds the projection values of the current
// example and may be nil. pattern is the text declared on the method.
// A pattern that does not compile is returned as an error wrapping
// ErrInvalidPattern.
func (e *Engine) Build(kind, step string, method Method, values map[string]string, pattern string) (*MethodDetails, error) {
	projections := Placeholders(step)
	assignments := Placeholders(pattern)

	assignedGroups, err := e.AssignedGroups(step, pattern)
	if err != nil {
		return nil, err
	}
	groups, err := e.Groups(step, pattern)
	if err != nil {
		return nil, err
	}

	var params []Param
	if method != nil {
		params = method.Params()
	}
	args := e.Arguments(params, projections, values, assignments, assignedGroups, groups)

	return &MethodDetails{
		step:        kind + " " + step,
		method:      method,
		projections: projections,
		arguments:   args,
	}, nil
}
