package binding

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBinding(t *testing.T) {
	t.Run("zero value is unbound", func(t *testing.T) {
		var b Binding
		require.Equal(t, Unbound, b)
		require.Equal(t, KindNone, b.Kind())
		require.Equal(t, "none", b.String())
	})

	t.Run("describes each kind", func(t *testing.T) {
		require.Equal(t, "projection(n)", Projection("n").String())
		require.Equal(t, "group(2)", Group(2).String())
		require.Equal(t, "assigned(count)", Assigned("count").String())
	})

	t.Run("exposes name and index", func(t *testing.T) {
		require.Equal(t, "n", Projection("n").Name())
		require.Equal(t, 3, Group(3).Index())
		require.Equal(t, KindAssigned, Assigned("x").Kind())
	})
}

func TestSelect(t *testing.T) {
	t.Run("returns unbound when nothing is bound", func(t *testing.T) {
		require.Equal(t, Unbound, Select())
		require.Equal(t, Unbound, Select(Unbound, Unbound))
	})

	t.Run("prefers projection over group and assigned", func(t *testing.T) {
		require.Equal(t, Projection("p"), Select(Assigned("a"), Group(1), Projection("p")))
	})

	t.Run("prefers group over assigned", func(t *testing.T) {
		require.Equal(t, Group(1), Select(Assigned("a"), Group(1)))
	})

	t.Run("keeps the first marker of the same kind", func(t *testing.T) {
		require.Equal(t, Group(1), Select(Group(1), Group(2)))
	})
}

func TestSingle(t *testing.T) {
	t.Run("returns the only bound marker", func(t *testing.T) {
		b, err := Single(Unbound, Assigned("a"))
		require.NoError(t, err)
		require.Equal(t, Assigned("a"), b)
	})

	t.Run("rejects more than one marker", func(t *testing.T) {
		_, err := Single(Projection("p"), Group(0))
		require.ErrorIs(t, err, ErrMultipleBindings)
		require.Contains(t, err.Error(), "projection(p) and group(0)")
	})
}

func TestParse(t *testing.T) {
	tests := []struct {
		marker   string
		expected Binding
		err      string
	}{
		{marker: "projection:count", expected: Projection("count")},
		{marker: "assigned:item", expected: Assigned("item")},
		{marker: "group:0", expected: Group(0)},
		{marker: "group:-1", err: `invalid group index "-1"`},
		{marker: "group:x", err: `invalid group index "x"`},
		{marker: "projection:", err: `invalid binding "projection:"`},
		{marker: "count", err: `invalid binding "count"`},
		{marker: "column:count", err: `unknown binding kind "column"`},
	}

	for _, tt := range tests {
		t.Run(tt.marker, func(t *testing.T) {
			b, err := Parse(tt.marker)
			if tt.err != "" {
				require.EqualError(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, b)
		})
	}
}
