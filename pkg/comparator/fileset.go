package comparator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/platinummonkey/protodetect/pkg/findings"
	"github.com/platinummonkey/protodetect/pkg/schema"
)

// FileSetComparator is the top-level tree walker. It pairs up the messages,
// enums and services of two schema trees by identity, tolerating api version
// promotions in fully qualified names, and invokes the per-entity comparators
// for every pair, including synthetic pairs for pure additions and removals.
type FileSetComparator struct {
	original  *schema.FileSet
	updated   *schema.FileSet
	container *findings.Container
}

// NewFileSetComparator creates a comparator for two schema trees.
func NewFileSetComparator(original, updated *schema.FileSet, container *findings.Container) *FileSetComparator {
	return &FileSetComparator{original: original, updated: updated, container: container}
}

// Compare runs the full comparison pass and appends findings to the
// container.
func (c *FileSetComparator) Compare() error {
	originalVersion := c.original.APIVersion()
	updatedVersion := c.updated.APIVersion()

	// Only file-scope messages and enums pair here; nested declarations are
	// reached through MessageComparator's recursion, so walking them again
	// would double every finding they contain.
	for _, pair := range pairByName(c.original.TopLevelMessages(), c.updated.TopLevelMessages(), originalVersion, updatedVersion) {
		if err := NewMessageComparator(pair.original, pair.updated, c.container).Compare(); err != nil {
			return err
		}
	}
	for _, pair := range pairByName(c.original.TopLevelEnums(), c.updated.TopLevelEnums(), originalVersion, updatedVersion) {
		if err := NewEnumComparator(pair.original, pair.updated, c.container).Compare(); err != nil {
			return err
		}
	}
	for _, pair := range pairByName(c.original.ServicesMap, c.updated.ServicesMap, originalVersion, updatedVersion) {
		if err := NewServiceComparator(pair.original, pair.updated, c.container).Compare(); err != nil {
			return err
		}
	}

	c.comparePackagingOptions(originalVersion, updatedVersion)
	return nil
}

// comparePackagingOptions diffs the file-level packaging options of the two
// trees. Option values embed the api version (go_package import paths, java
// packages), so the version substitution applies to values before the diff.
func (c *FileSetComparator) comparePackagingOptions(originalVersion, updatedVersion string) {
	location := func(fs *schema.FileSet) findings.Location {
		if len(fs.DefinitionFiles) > 0 {
			return findings.Location{ProtoFileName: fs.DefinitionFiles[0].Name}
		}
		return findings.Location{}
	}

	var names []string
	seen := make(map[string]bool)
	for name := range c.original.PackagingOptions {
		seen[name] = true
		names = append(names, name)
	}
	for name := range c.updated.PackagingOptions {
		if !seen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		originalValues := c.original.PackagingOptions[name]
		updatedValues := c.updated.PackagingOptions[name]
		for _, value := range sortedKeys(originalValues) {
			tolerated := value
			if originalVersion != "" {
				tolerated = strings.ReplaceAll(value, originalVersion, updatedVersion)
			}
			if !updatedValues[value] && !updatedValues[tolerated] {
				c.container.Add(findings.PackagingOptionChange, findings.ChangeTypeMajor,
					fmt.Sprintf("An existing packaging option `%s` for `%s` is removed.", value, name),
					location(c.original))
			}
		}
		for _, value := range sortedKeys(updatedValues) {
			tolerated := value
			if updatedVersion != "" {
				tolerated = strings.ReplaceAll(value, updatedVersion, originalVersion)
			}
			if !originalValues[value] && !originalValues[tolerated] {
				c.container.Add(findings.PackagingOptionChange, findings.ChangeTypeMinor,
					fmt.Sprintf("A new packaging option `%s` for `%s` is added.", value, name),
					location(c.updated))
			}
		}
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type entityPair[V any] struct {
	original V
	updated  V
}

// pairByName matches entities across the two trees by key, falling back to
// the version-substituted key so that `.example.v1.Foo` pairs with
// `.example.v1beta1.Foo`. Unmatched entities on either side become synthetic
// addition or removal pairs. Pairs come out in sorted key order so findings
// are deterministic.
func pairByName[V any](original, updated map[string]V, originalVersion, updatedVersion string) []entityPair[V] {
	consumed := make(map[string]bool)
	originalKeys := make([]string, 0, len(original))
	for key := range original {
		originalKeys = append(originalKeys, key)
	}
	sort.Strings(originalKeys)

	pairs := make([]entityPair[V], 0, len(original)+len(updated))
	for _, key := range originalKeys {
		matchKey := key
		if _, ok := updated[matchKey]; !ok {
			if t := transformedName(key, originalVersion, updatedVersion); t != "" {
				if _, ok := updated[t]; ok {
					matchKey = t
				}
			}
		}
		if _, ok := updated[matchKey]; ok {
			consumed[matchKey] = true
		}
		pairs = append(pairs, entityPair[V]{original: original[key], updated: updated[matchKey]})
	}

	updatedKeys := make([]string, 0, len(updated))
	for key := range updated {
		if !consumed[key] {
			updatedKeys = append(updatedKeys, key)
		}
	}
	sort.Strings(updatedKeys)
	for _, key := range updatedKeys {
		var absent V
		pairs = append(pairs, entityPair[V]{original: absent, updated: updated[key]})
	}
	return pairs
}
