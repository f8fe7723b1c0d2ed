package binding

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Dialect selects the regular expression engine declared patterns are
// compiled with.
type Dialect int

const (
	// RE2 compiles patterns with the standard library regexp package.
	RE2 Dialect = iota
	// Java compiles patterns with a backtracking engine that accepts
	// lookaround and backreferences, as step patterns written for the JVM do.
	Java
)

// ErrInvalidPattern is returned when a declared pattern does not compile.
var ErrInvalidPattern = errors.New("invalid step pattern")

// String returns the configuration name of the dialect.
func (d Dialect) String() string {
	switch d {
	case RE2:
		return "re2"
	case Java:
		return "java"
	default:
		return "unknown"
	}
}

// ParseDialect maps a configuration name to a Dialect. The empty string
// selects RE2.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "", "re2":
		return RE2, nil
	case "java":
		return Java, nil
	default:
		return RE2, fmt.Errorf("unknown regex dialect %q", name)
	}
}

// Matcher matches a compiled pattern against the whole of a text.
type Matcher interface {
	// FullMatch returns the whole match followed by every capture group, or
	// nil when the pattern does not consume the entire text.
	FullMatch(text string) ([]Raw, error)
}

// anchored wraps a pattern that already compiles on its own, so its
// parentheses are balanced and cannot close the wrapping group.
func anchored(pattern string) string {
	return `\A(?:` + pattern + `)\z`
}

func compile(dialect Dialect, pattern string, timeout time.Duration) (Matcher, error) {
	invalid := func(err error) error {
		return fmt.Errorf("%w %q: %w", ErrInvalidPattern, pattern, err)
	}

	switch dialect {
	case Java:
		if _, err := regexp2.Compile(pattern, regexp2.None); err != nil {
			return nil, invalid(err)
		}
		re, err := regexp2.Compile(anchored(pattern), regexp2.None)
		if err != nil {
			return nil, invalid(err)
		}
		if timeout > 0 {
			re.MatchTimeout = timeout
		}

		m := &backtrackingMatcher{re: re}
		// numbering falls back to the engine's own order when the scan and
		// the compiled pattern disagree
		if names := captureNames(pattern); len(names) == len(re.GetGroupNumbers())-1 {
			m.names = names
		}
		return m, nil
	default:
		if _, err := regexp.Compile(pattern); err != nil {
			return nil, invalid(err)
		}
		re, err := regexp.Compile(anchored(pattern))
		if err != nil {
			return nil, invalid(err)
		}
		return &re2Matcher{re: re}, nil
	}
}

type re2Matcher struct {
	re *regexp.Regexp
}

func (m *re2Matcher) FullMatch(text string) ([]Raw, error) {
	locs := m.re.FindStringSubmatchIndex(text)
	if locs == nil || locs[0] != 0 || locs[1] != len(text) {
		return nil, nil
	}

	groups := make([]Raw, len(locs)/2)
	for i := range groups {
		start, end := locs[2*i], locs[2*i+1]
		if start < 0 {
			continue
		}
		groups[i] = Present(text[start:end])
	}

	return groups, nil
}

type backtrackingMatcher struct {
	re *regexp2.Regexp

	// names lists the capture groups in order of their opening parenthesis,
	// "" for unnamed ones. The engine numbers named groups after all unnamed
	// ones; reading groups through names restores left-to-right numbering.
	names []string
}

func (m *backtrackingMatcher) FullMatch(text string) ([]Raw, error) {
	match, err := m.re.FindStringMatch(text)
	if err != nil {
		return nil, err
	}
	if match == nil || match.Index != 0 || match.Length != utf8.RuneCountInString(text) {
		return nil, nil
	}

	if m.names == nil {
		matched := match.Groups()
		groups := make([]Raw, len(matched))
		for i, group := range matched {
			groups[i] = captured(&group)
		}
		return groups, nil
	}

	groups := make([]Raw, 0, len(m.names)+1)
	groups = append(groups, Present(match.String()))
	unnamed := 0
	for _, name := range m.names {
		if name == "" {
			unnamed++
			groups = append(groups, captured(match.GroupByNumber(unnamed)))
			continue
		}
		groups = append(groups, captured(match.GroupByName(name)))
	}

	return groups, nil
}

func captured(group *regexp2.Group) Raw {
	if group == nil || len(group.Captures) == 0 {
		return Raw{}
	}
	return Present(group.String())
}

// captureNames scans a pattern for capturing groups and returns their names
// in order of the opening parenthesis, "" for unnamed groups. Escapes,
// quoted sections, comments and character classes are skipped.
func captureNames(pattern string) []string {
	names := []string{}
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			if strings.HasPrefix(pattern[i:], `\Q`) {
				end := strings.Index(pattern[i+2:], `\E`)
				if end < 0 {
					return names
				}
				i += end + 3
				continue
			}
			i++
		case '[':
			i = skipClass(pattern, i)
		case '(':
			rest := pattern[i+1:]
			switch {
			case !strings.HasPrefix(rest, "?"):
				names = append(names, "")
			case strings.HasPrefix(rest, "?#"):
				end := strings.IndexByte(rest, ')')
				if end < 0 {
					return names
				}
				i += end + 1
			case strings.HasPrefix(rest, "?<") && !strings.HasPrefix(rest, "?<=") && !strings.HasPrefix(rest, "?<!"):
				names = appendGroupName(names, rest[2:], '>')
			case strings.HasPrefix(rest, "?P<"):
				names = appendGroupName(names, rest[3:], '>')
			case strings.HasPrefix(rest, "?'"):
				names = appendGroupName(names, rest[2:], '\'')
			}
		}
	}
	return names
}

func appendGroupName(names []string, rest string, terminator byte) []string {
	end := strings.IndexByte(rest, terminator)
	if end < 0 {
		return names
	}
	return append(names, rest[:end])
}

// skipClass returns the index of the bracket closing the class opened at
// start. Nested classes are followed; a bracket right after the opening one
// is a literal.
func skipClass(pattern string, start int) int {
	depth := 0
	for i := start; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '[':
			depth++
			if strings.HasPrefix(pattern[i+1:], "^") {
				i++
			}
			if strings.HasPrefix(pattern[i+1:], "]") {
				i++
			}
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(pattern)
}
