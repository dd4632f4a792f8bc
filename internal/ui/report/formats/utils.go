package formats

import (
	"fmt"
	"strings"
	"unicode"
)

func sanitizeID(name string) string {
	if name == "" {
		return "m"
	}
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	out := b.String()
	first := rune(out[0])
	if unicode.IsDigit(first) {
		return "m_" + out
	}
	return out
}

// qualifiedID sanitizes each dotted segment, keeping the dots. Diagrams use
// "set separator none", so dots do not create implicit packages.
func qualifiedID(name string) string {
	segments := strings.Split(name, ".")
	for i, seg := range segments {
		segments[i] = sanitizeID(seg)
	}
	return strings.Join(segments, ".")
}

// makeIDs assigns one alias per entry, in input order. Entries that share a
// name, or sanitize to the same id, get the first "_N" suffix no earlier entry
// holds, so every alias is distinct.
func makeIDs(names []string) []string {
	ids := make([]string, len(names))
	taken := make(map[string]struct{}, len(names))
	for i, name := range names {
		base := qualifiedID(name)
		id := base
		for n := 2; ; n++ {
			if _, ok := taken[id]; !ok {
				break
			}
			id = fmt.Sprintf("%s_%d", base, n)
		}
		taken[id] = struct{}{}
		ids[i] = id
	}
	return ids
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.Join(strings.Fields(s), " ")
}

var memberReplacer = strings.NewReplacer(
	"\"", "'",
	"{", "&#123;",
	"}", "&#125;",
	"\\", "&#92;",
)

// escapeMember keeps free text inside a class body from being read as
// PlantUML syntax: braces would open modifiers or close the class.
func escapeMember(s string) string {
	return memberReplacer.Replace(strings.Join(strings.Fields(s), " "))
}

func isPlainIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case unicode.IsDigit(r) && i > 0:
		case r == '.' && i > 0 && i < len(s)-1:
		default:
			return false
		}
	}
	return !strings.Contains(s, "..")
}

// codeSpan wraps s as inline Markdown code, widening the fence when s
// contains backticks.
func codeSpan(s string) string {
	if !strings.Contains(s, "`") {
		return "`" + s + "`"
	}
	fence := "``"
	for strings.Contains(s, fence) {
		fence += "`"
	}
	return fence + " " + s + " " + fence
}
