package comparator

import (
	"cmp"
	"slices"
	"strings"
)

// unionKeys returns the sorted union of both maps' keys so that comparison
// passes emit findings in a deterministic order.
func unionKeys[K cmp.Ordered, V any](original, updated map[K]V) []K {
	seen := make(map[K]bool, len(original)+len(updated))
	keys := make([]K, 0, len(original)+len(updated))
	for k := range original {
		seen[k] = true
		keys = append(keys, k)
	}
	for k := range updated {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// transformedName substitutes the original api version segment with the
// updated one inside a fully qualified name, e.g. `.example.v1.Enum` becomes
// `.example.v1beta1.Enum`. Version promotions are tolerated by every type
// comparison; any other rename is breaking. Returns the empty string when the
// original side carries no version segment, in which case no tolerance
// applies.
func transformedName(name, originalVersion, updatedVersion string) string {
	if originalVersion == "" {
		return ""
	}
	return strings.ReplaceAll(name, "."+originalVersion+".", "."+updatedVersion+".")
}
