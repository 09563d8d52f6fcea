package webarchiver

// Test-only evaluator for the emitted PHP wrapper, used to verify that
// the preprocessing step recovers the original bytes exactly.

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// phpUnquote reverses the single-quote escaping.
func phpUnquote(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '\\' || s[i+1] == '\'') {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// scanQuoted reads a single-quoted literal starting at s[i] == '\'' and
// returns the raw inner text and the offset past the closing quote.
func scanQuoted(t *testing.T, s string, i int) (string, int) {
	t.Helper()
	require.Equal(t, byte('\''), s[i])
	j := i + 1
	for j < len(s) {
		if s[j] == '\\' {
			j += 2
			continue
		}
		if s[j] == '\'' {
			return s[i+1 : j], j + 1
		}
		j++
	}
	t.Fatalf("unterminated string literal in %q", s)
	return "", 0
}

// scanIdent reads a $identifier starting at s[i] == '$'.
func scanIdent(t *testing.T, s string, i int) (string, int) {
	t.Helper()
	require.Equal(t, byte('$'), s[i])
	j := i + 1
	for j < len(s) && (s[j] >= 'a' && s[j] <= 'z' || s[j] >= '0' && s[j] <= '9') {
		j++
	}
	require.Greater(t, j, i+1, "empty identifier in %q", s)
	return s[i+1 : j], j
}

// parseRefFile extracts the identifier assignments from the shared
// reference file.
func parseRefFile(t *testing.T, content string) map[string]string {
	t.Helper()
	require.True(t, strings.HasPrefix(content, "<?php "), "missing runtime-open marker")
	refs := make(map[string]string)
	i := len("<?php ")
	for i < len(content) {
		id, next := scanIdent(t, content, i)
		require.Equal(t, byte('='), content[next])
		raw, next := scanQuoted(t, content, next+1)
		require.Equal(t, byte(';'), content[next])
		i = next + 1
		refs[id] = phpUnquote(raw)
	}
	return refs
}

// renderWrapped evaluates a wrapped file against the reference table
// and returns the text a PHP server would produce.
func renderWrapped(t *testing.T, content string, refs map[string]string) string {
	t.Helper()
	const prefix = "<?php include('"
	require.True(t, strings.HasPrefix(content, prefix), "missing inclusion statement")
	rest := content[len(prefix):]
	cut := strings.Index(rest, "');echo ")
	require.GreaterOrEqual(t, cut, 0, "missing output statement")
	body := rest[cut+len("');echo "):]
	require.True(t, strings.HasSuffix(body, ";?>"), "missing terminator")
	body = strings.TrimSuffix(body, ";?>")

	var out strings.Builder
	i := 0
	for i < len(body) {
		switch body[i] {
		case '\'':
			raw, next := scanQuoted(t, body, i)
			out.WriteString(phpUnquote(raw))
			i = next
		case '$':
			id, next := scanIdent(t, body, i)
			val, ok := refs[id]
			require.True(t, ok, "undefined reference $%s", id)
			out.WriteString(val)
			i = next
		case '.':
			i++
		default:
			t.Fatalf("unexpected byte %q in output statement %q", body[i], body)
		}
	}
	return out.String()
}

// includePathOf extracts the include target from a wrapped file.
func includePathOf(t *testing.T, content string) string {
	t.Helper()
	const prefix = "<?php include('"
	require.True(t, strings.HasPrefix(content, prefix))
	rest := content[len(prefix):]
	end := strings.Index(rest, "')")
	require.GreaterOrEqual(t, end, 0)
	return rest[:end]
}
