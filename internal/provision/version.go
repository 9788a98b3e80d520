package provision

import (
	"regexp"
	"strings"
)

var verRe = regexp.MustCompile(`(?i)\bv?(\d+\.\d+(?:\.\d+)?(?:[\w\.-]+)?)\b`)

// ParseVersion pulls a dotted version out of arbitrary tool output, e.g.
// "git version 2.40.0" -> "2.40.0". Empty when nothing version-like appears.
func ParseVersion(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	line := strings.Split(s, "\n")[0]
	if m := verRe.FindStringSubmatch(line); len(m) > 1 {
		return m[1]
	}
	if m := verRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return ""
}

// NormalizeVersion trims whitespace and a leading "v".
func NormalizeVersion(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

// VersionLess compares two dotted versions best-effort; true when a < b.
// Pre-release suffixes rank below the corresponding release.
func VersionLess(a, b string) bool {
	a = NormalizeVersion(a)
	b = NormalizeVersion(b)
	if a == "" || b == "" {
		return false
	}
	ap := splitNumeric(a)
	bp := splitNumeric(b)
	for i := 0; i < 3; i++ {
		if ap[i] != bp[i] {
			return ap[i] < bp[i]
		}
	}
	return strings.Contains(a, "-") && !strings.Contains(b, "-")
}

func splitNumeric(v string) [3]int {
	var out [3]int
	core := strings.SplitN(v, "-", 2)[0]
	for i, part := range strings.Split(core, ".") {
		if i >= 3 {
			break
		}
		out[i] = atoiPrefix(part)
	}
	return out
}

// atoiPrefix parses the leading digits of s, ignoring any suffix.
func atoiPrefix(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}
