package binding

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
)

// ErrNotFunction is returned by NewFunc for values that are not functions.
var ErrNotFunction = errors.New("step handler must be a function")

// Method is a step method whose parameters can be bound.
type Method interface {
	Name() string
	Params() []Param
}

// Func is a Method backed by a Go function value. Bindings are positional.
type Func struct {
	name   string
	value  reflect.Value
	params []Param
}

// NewFunc wraps fn. Parameters without a matching entry in bindings are
// Unbound. Variadic functions are rejected because their trailing slice
// cannot be bound from a single string.
func NewFunc(fn any, bindings ...Binding) (*Func, error) {
	value := reflect.ValueOf(fn)
	if fn == nil || value.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w, got %T", ErrNotFunction, fn)
	}

	fnType := value.Type()
	if fnType.IsVariadic() {
		return nil, fmt.Errorf("step handler %s must not be variadic", fnType)
	}
	if len(bindings) > fnType.NumIn() {
		return nil, fmt.Errorf("step handler %s takes %d parameters, got %d bindings",
			fnType, fnType.NumIn(), len(bindings))
	}

	params := make([]Param, fnType.NumIn())
	for i := range params {
		params[i].Type = fnType.In(i)
		if i < len(bindings) {
			params[i].Binding = bindings[i]
		}
	}

	return &Func{
		name:   funcName(value),
		value:  value,
		params: params,
	}, nil
}

// Name returns the fully qualified function name.
func (f *Func) Name() string {
	return f.name
}

// Params returns a copy of the declared parameters.
func (f *Func) Params() []Param {
	params := make([]Param, len(f.params))
	copy(params, f.params)
	return params
}

// Type returns the function type.
func (f *Func) Type() reflect.Type {
	return f.value.Type()
}

// Call invokes the function with already converted arguments.
func (f *Func) Call(args []reflect.Value) []reflect.Value {
	return f.value.Call(args)
}

func funcName(value reflect.Value) string {
	if fn := runtime.FuncForPC(value.Pointer()); fn != nil {
		return fn.Name()
	}
	return value.Type().String()
}
