package lang

import (
	"maps"
	"slices"

	"github.com/sahilm/fuzzy"
)

func mapKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

// suggest returns a "Did you mean" hint naming the candidate closest to
// name, or "" if nothing is close. A candidate is close when name is a
// fuzzy match of it (letters left out) or it is a fuzzy match of name
// (letters added).
func suggest(name string, candidates []string) string {
	candidates = slices.DeleteFunc(slices.Clone(candidates), func(c string) bool {
		return c == name
	})

	if len(candidates) == 0 || name == "" {
		return ""
	}

	if m := fuzzy.Find(name, candidates); len(m) > 0 {
		return "Did you mean '" + m[0].Str + "'?"
	}

	best := ""

	for _, c := range candidates {
		if len(c) < 2 || len(c) <= len(best) {
			continue
		}

		if len(fuzzy.Find(c, []string{name})) > 0 {
			best = c
		}
	}

	if best == "" {
		return ""
	}

	return "Did you mean '" + best + "'?"
}
