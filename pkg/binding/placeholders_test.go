package binding

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlaceholders(t *testing.T) {
	t.Run("returns empty slice for text without placeholders", func(t *testing.T) {
		require.Empty(t, Placeholders("I have 3 items"))
		require.NotNil(t, Placeholders("I have 3 items"))
	})

	t.Run("returns empty slice for empty text", func(t *testing.T) {
		require.Empty(t, Placeholders(""))
	})

	t.Run("returns names in order of appearance", func(t *testing.T) {
		require.Equal(t, []string{"user", "count", "item"}, Placeholders("<user> has <count> <item>"))
	})

	t.Run("keeps repeated names", func(t *testing.T) {
		require.Equal(t, []string{"a", "a"}, Placeholders("<a> and <a>"))
	})

	t.Run("matches the nearest closing bracket", func(t *testing.T) {
		require.Equal(t, []string{"a", "b"}, Placeholders("<a>><b>"))
	})

	t.Run("keeps spaces inside names", func(t *testing.T) {
		require.Equal(t, []string{"first name"}, Placeholders("my name is <first name>"))
	})
}

func TestAssignmentPattern(t *testing.T) {
	t.Run("replaces every placeholder with a lazy wildcard group", func(t *testing.T) {
		require.Equal(t, `I move (.*?) from (.*?)`, AssignmentPattern("I move <n> from <place>"))
	})

	t.Run("leaves patterns without placeholders unchanged", func(t *testing.T) {
		require.Equal(t, `^I have (\d+) apples$`, AssignmentPattern(`^I have (\d+) apples$`))
	})
}
