package classify

import (
	"slices"
	"strings"
)

// Classification is the provenance category of an imported module.
type Classification int

const (
	Future Classification = iota
	Builtin
	ThirdParty
	Application
)

// Order is the fixed category order used for output grouping.
var Order = []Classification{Future, Builtin, ThirdParty, Application}

func (c Classification) String() string {
	switch c {
	case Future:
		return "FUTURE"
	case Builtin:
		return "BUILTIN"
	case ThirdParty:
		return "THIRD_PARTY"
	case Application:
		return "APPLICATION"
	default:
		return "UNKNOWN"
	}
}

// Settings configures classification. The zero value classifies against
// the current directory with no forced application modules.
type Settings struct {
	// ApplicationDirectories are the roots of the project's own code,
	// probed in order.
	ApplicationDirectories []string

	// UnclassifiableApplicationModules are base names forced to
	// Application regardless of filesystem state. Intended for native
	// modules that never appear on disk.
	UnclassifiableApplicationModules []string
}

func (s Settings) applicationDirectories() []string {
	if len(s.ApplicationDirectories) == 0 {
		return []string{"."}
	}
	return s.ApplicationDirectories
}

func (s Settings) isUnclassifiable(base string) bool {
	return slices.Contains(s.UnclassifiableApplicationModules, base)
}

// cacheKey folds the settings into a comparable string so results can
// be memoized by (base, settings) pair.
func (s Settings) cacheKey() string {
	mods := slices.Clone(s.UnclassifiableApplicationModules)
	slices.Sort(mods)
	return strings.Join(s.applicationDirectories(), "\x00") +
		"\x1f" + strings.Join(mods, "\x00")
}
