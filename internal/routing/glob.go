package routing

import (
	"regexp"
	"strings"
)

// GlobToRegex translates a glob pattern into an anchored regular
// expression. Supports:
//
//	"**" matches any sequence including path separators
//	"*"  matches any sequence excluding path separators
//	"{a,b,c}" alternation, e.g. "*.{js,css}"
//
// "**/" additionally matches an empty prefix, so "**/*.map" covers a
// root-level "app.map" as well as nested ones. All other characters are
// matched literally; regex metacharacters in literal segments are escaped.
// The result is anchored at both ends so partial matches never pass.
func GlobToRegex(pattern string) (*regexp.Regexp, error) {
	runes := []rune(pattern)
	var b strings.Builder
	b.WriteByte('^')
	for i := 0; i < len(runes); {
		switch runes[i] {
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				if i+2 < len(runes) && runes[i+2] == '/' {
					b.WriteString("(?:.*/)?")
					i += 3
				} else {
					b.WriteString(".*")
					i += 2
				}
			} else {
				b.WriteString("[^/]*")
				i++
			}
		case '{':
			if group, width, ok := braceGroup(runes[i:]); ok {
				b.WriteString(group)
				i += width
			} else {
				b.WriteString(`\{`)
				i++
			}
		default:
			b.WriteString(regexp.QuoteMeta(string(runes[i])))
			i++
		}
	}
	b.WriteByte('$')
	return regexp.Compile(b.String())
}

// braceGroup translates a leading "{a,b,c}" into a non-capturing
// alternation group. Only a well-formed alternation is consumed; a brace
// without a matching close, without a comma, or nesting further
// metacharacters stays a literal.
func braceGroup(runes []rune) (group string, width int, ok bool) {
	rest := string(runes[1:])
	end := strings.IndexRune(rest, '}')
	if end < 0 {
		return "", 0, false
	}
	inner := rest[:end]
	if inner == "" || strings.ContainsAny(inner, "{*/") || !strings.Contains(inner, ",") {
		return "", 0, false
	}
	alts := strings.Split(inner, ",")
	for i, a := range alts {
		alts[i] = regexp.QuoteMeta(a)
	}
	return "(?:" + strings.Join(alts, "|") + ")", len([]rune(inner)) + 2, true
}

// NormalizeURL reduces a URL to its path component: any "?query" and
// "#fragment" suffix is stripped and a leading "/" is ensured.
func NormalizeURL(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	return url
}

// globSpecific reports whether a glob string is wildcard-free. Among
// routes with equal priority a wildcard-free pattern sorts first: an
// exact path beats a general one when priority does not disambiguate.
func globSpecific(pattern string) bool {
	return !strings.Contains(pattern, "*")
}
