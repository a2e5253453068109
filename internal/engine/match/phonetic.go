package match

import (
	"regexp"
	"strings"
)

// substitution rewrites one known child-speech or transcription sound
// pattern.
type substitution struct {
	pattern *regexp.Regexp
	replace string
}

// defaultSubstitutions returns the phonetic rewrite table. Order
// matters: the table is applied as a single deterministic pass and
// later patterns operate on text already rewritten by earlier ones
// ("ck" must run before the soft-c rule, for example).
func defaultSubstitutions() []substitution {
	return []substitution{
		{regexp.MustCompile(`tion`), "shun"},
		{regexp.MustCompile(`ough`), "o"},
		{regexp.MustCompile(`ght`), "t"},
		{regexp.MustCompile(`ph`), "f"},
		{regexp.MustCompile(`wh`), "w"},
		{regexp.MustCompile(`th`), "f"},
		{regexp.MustCompile(`ck`), "k"},
		{regexp.MustCompile(`qu`), "kw"},
		{regexp.MustCompile(`c([eiy])`), "s$1"},
		{regexp.MustCompile(`x`), "ks"},
	}
}

// normalize applies the substitution table in order, then collapses
// doubled letters ("rabbit" -> "rabit"). The collapse is a separate
// pass because RE2 has no backreferences.
func (m *Matcher) normalize(s string) string {
	for _, sub := range m.subs {
		s = sub.pattern.ReplaceAllString(s, sub.replace)
	}
	return collapseDoubles(s)
}

func collapseDoubles(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prev := rune(-1)
	for _, r := range s {
		if r == prev {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}
