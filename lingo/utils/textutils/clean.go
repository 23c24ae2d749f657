package textutils

import (
	"regexp"
	"strings"
)

var reFence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// CleanModelOutput reduces a generative model reply to the bare text it was
// asked for.
//
// It strips BOMs and zero-width characters, unwraps a single fenced block and
// removes one pair of wrapping quotes ("", '', “”, «»).
func CleanModelOutput(input string) string {
	input = strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == '\uFEFF' || r == '\u200B' || r == '\u200C' || r == '\u200D' {
			return -1
		}
		return r
	}, input))

	if match := reFence.FindStringSubmatch(input); len(match) > 1 {
		input = strings.TrimSpace(match[1])
	}

	return strings.TrimSpace(unquote(input))
}

func unquote(s string) string {
	pairs := [][2]string{{`"`, `"`}, {`'`, `'`}, {"“", "”"}, {"«", "»"}}
	for _, p := range pairs {
		if len(s) >= len(p[0])+len(p[1]) && strings.HasPrefix(s, p[0]) && strings.HasSuffix(s, p[1]) {
			inner := s[len(p[0]) : len(s)-len(p[1])]
			// "a" and "b" is two quoted phrases, not one wrapped sentence
			if strings.Contains(inner, p[0]) || strings.Contains(inner, p[1]) {
				return s
			}
			return inner
		}
	}
	return s
}
