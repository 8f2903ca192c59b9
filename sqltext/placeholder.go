package sqltext

import "strings"

// RewritePlaceholders replaces every '?' marker outside string literals,
// quoted identifiers, dollar-quoted bodies and comments with placeholder(n),
// n starting at 1. "??" is an escaped literal '?', which keeps operators such
// as jsonb ?| and ?& writable as ??| and ??&. It returns the rewritten text
// and the number of markers found.
func RewritePlaceholders(sql string, placeholder func(n int) string) (string, int) {
	var (
		b strings.Builder
		n int
	)
	b.Grow(len(sql) + 8)

	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			end := skipQuoted(sql, i, c)
			b.WriteString(sql[i:end])
			i = end - 1
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			end := strings.IndexByte(sql[i:], '\n')
			if end < 0 {
				end = len(sql) - i
			}
			b.WriteString(sql[i : i+end])
			i += end - 1
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				end = len(sql)
			} else {
				end += i + 4
			}
			b.WriteString(sql[i:end])
			i = end - 1
		case c == '$':
			end, ok := skipDollarQuoted(sql, i)
			if !ok {
				b.WriteByte(c)
				continue
			}
			b.WriteString(sql[i:end])
			i = end - 1
		case c == '?' && i+1 < len(sql) && sql[i+1] == '?':
			b.WriteByte('?')
			i++
		case c == '?':
			n++
			b.WriteString(placeholder(n))
		default:
			b.WriteByte(c)
		}
	}

	return b.String(), n
}

// skipQuoted returns the index just past the literal opened at start.
// Doubled quotes are escapes.
func skipQuoted(s string, start int, quote byte) int {
	for i := start + 1; i < len(s); i++ {
		if s[i] != quote {
			continue
		}
		if i+1 < len(s) && s[i+1] == quote {
			i++
			continue
		}
		return i + 1
	}
	return len(s)
}

// skipDollarQuoted returns the index just past the $tag$...$tag$ body opened
// at start. ok is false when start does not open one, e.g. a $1 parameter.
// An unterminated body runs to the end of s.
func skipDollarQuoted(s string, start int) (end int, ok bool) {
	i := start + 1
	for i < len(s) && isTagByte(s[i], i == start+1) {
		i++
	}
	if i >= len(s) || s[i] != '$' {
		return 0, false
	}

	tag := s[start : i+1]
	idx := strings.Index(s[i+1:], tag)
	if idx < 0 {
		return len(s), true
	}
	return i + 1 + idx + len(tag), true
}

func isTagByte(c byte, first bool) bool {
	switch {
	case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', c >= 0x80:
		return true
	case '0' <= c && c <= '9':
		return !first
	}
	return false
}
