// Package sqltext post-processes rendered SQL text: trimming dangling
// keywords left by suppressed template blocks, classifying statements and
// rewriting placeholders.
package sqltext

import "strings"

// dangling keywords in match priority order
var danglingKeywords = [...]string{"WHERE", "AND", "OR"}

// TrimLastUnusedPart removes trailing whitespace and a trailing WHERE, AND or
// OR keyword (compared case-insensitively) left behind when every clause of a
// conditional block was suppressed. The removed text always comes from the
// original-case input. Trimming repeats until no keyword is left, so the
// result is a fixed point:
//
//	TrimLastUnusedPart("SELECT * FROM t WHERE   ") == "SELECT * FROM t"
//	TrimLastUnusedPart("SELECT * FROM t AND") == "SELECT * FROM t"
//
// Matching is on text, not words: "... COLOR" loses its "OR" too. Use
// TrimDanglingKeyword for word-aware trimming.
func TrimLastUnusedPart(sql string) string {
	return trim(sql, false)
}

// TrimDanglingKeyword is TrimLastUnusedPart restricted to whole words: a
// keyword is only removed when it is not preceded by an identifier character.
func TrimDanglingKeyword(sql string) string {
	return trim(sql, true)
}

func trim(sql string, wordOnly bool) string {
	s := trimRight(sql)
	for {
		kw, ok := danglingSuffix(s, wordOnly)
		if !ok {
			return s
		}
		s = trimRight(s[:len(s)-len(kw)])
	}
}

func danglingSuffix(s string, wordOnly bool) (string, bool) {
	for _, kw := range danglingKeywords {
		if !hasSuffixFold(s, kw) {
			continue
		}
		if wordOnly {
			if i := len(s) - len(kw); i > 0 && isIdentByte(s[i-1]) {
				continue
			}
		}
		return kw, true
	}
	return "", false
}

// hasSuffixFold reports whether s ends with the upper-case ASCII suffix,
// ignoring ASCII case only.
func hasSuffixFold(s, suffix string) bool {
	if len(s) < len(suffix) {
		return false
	}
	tail := s[len(s)-len(suffix):]
	for i := 0; i < len(suffix); i++ {
		c := tail[i]
		if 'a' <= c && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c != suffix[i] {
			return false
		}
	}
	return true
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func trimRight(s string) string {
	return strings.TrimRightFunc(s, isSpace)
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	// control characters count as whitespace
	return r < ' '
}
