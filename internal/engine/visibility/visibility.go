// Package visibility classifies identifiers by naming convention. Python has
// no access control, so the classification is a pure function of the name
// under a configurable Policy.
package visibility

import "strings"

type Level int

const (
	Public Level = iota
	// Private is private by convention (single leading underscore).
	Private
	// StrictPrivate is the name-mangled form (double leading underscore).
	StrictPrivate
)

func (l Level) String() string {
	switch l {
	case Private:
		return "private"
	case StrictPrivate:
		return "strict_private"
	default:
		return "public"
	}
}

type Policy struct {
	PrivatePrefix       string
	StrictPrivatePrefix string
	// ExemptDunder treats names both starting and ending with the strict
	// prefix (__init__, __eq__) as public.
	ExemptDunder bool
}

func DefaultPolicy() Policy {
	return Policy{PrivatePrefix: "_", StrictPrivatePrefix: "__"}
}

// Classify is checked strict-first because the strict prefix extends the
// convention prefix.
func (p Policy) Classify(name string) Level {
	if p.StrictPrivatePrefix != "" && strings.HasPrefix(name, p.StrictPrivatePrefix) {
		if p.ExemptDunder && len(name) > 2*len(p.StrictPrivatePrefix) && strings.HasSuffix(name, p.StrictPrivatePrefix) {
			return Public
		}
		return StrictPrivate
	}
	if p.PrivatePrefix != "" && strings.HasPrefix(name, p.PrivatePrefix) {
		return Private
	}
	return Public
}

func (p Policy) IsPublic(name string) bool {
	return p.Classify(name) == Public
}
