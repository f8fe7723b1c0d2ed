package binding

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newMethod(t *testing.T, fn any, bindings ...Binding) *Func {
	t.Helper()
	method, err := NewFunc(fn, bindings...)
	require.NoError(t, err)
	return method
}

func TestNewFunc(t *testing.T) {
	t.Run("assigns bindings positionally", func(t *testing.T) {
		method := newMethod(t, func(ctx context.Context, n int, name string) {}, Unbound, Group(1))

		params := method.Params()
		require.Len(t, params, 3)
		require.Equal(t, reflect.TypeFor[context.Context](), params[0].Type)
		require.Equal(t, Unbound, params[0].Binding)
		require.Equal(t, Group(1), params[1].Binding)
		require.Equal(t, Unbound, params[2].Binding)
	})

	t.Run("returns error for non-function handler", func(t *testing.T) {
		_, err := NewFunc("not a function")
		require.ErrorIs(t, err, ErrNotFunction)

		_, err = NewFunc(nil)
		require.ErrorIs(t, err, ErrNotFunction)
	})

	t.Run("returns error for too many bindings", func(t *testing.T) {
		_, err := NewFunc(func(n int) {}, Group(1), Group(2))
		require.Error(t, err)
		require.Contains(t, err.Error(), "got 2 bindings")
	})

	t.Run("returns error for variadic functions", func(t *testing.T) {
		_, err := NewFunc(func(names ...string) {})
		require.Error(t, err)
		require.Contains(t, err.Error(), "variadic")
	})

	t.Run("names the function", func(t *testing.T) {
		method := newMethod(t, strings.ToUpper)
		require.Equal(t, "strings.ToUpper", method.Name())
	})

	t.Run("params are copies", func(t *testing.T) {
		method := newMethod(t, func(n int) {}, Group(1))
		params := method.Params()
		params[0].Binding = Unbound
		require.Equal(t, Group(1), method.Params()[0].Binding)
	})

	t.Run("calls the function", func(t *testing.T) {
		method := newMethod(t, strings.Repeat)
		out := method.Call([]reflect.Value{reflect.ValueOf("ab"), reflect.ValueOf(2)})
		require.Equal(t, "abab", out[0].String())
	})
}
