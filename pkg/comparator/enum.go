package comparator

import (
	"fmt"

	"github.com/platinummonkey/protodetect/pkg/findings"
	"github.com/platinummonkey/protodetect/pkg/schema"
)

// EnumValueComparator emits findings for the differences between two versions
// of one enum value. Enum values carry only an identity and a name, so the
// checklist has three cases: addition, removal, and rename.
type EnumValueComparator struct {
	original  *schema.EnumValue
	updated   *schema.EnumValue
	container *findings.Container
}

// NewEnumValueComparator creates a comparator for one enum value pair.
func NewEnumValueComparator(original, updated *schema.EnumValue, container *findings.Container) *EnumValueComparator {
	return &EnumValueComparator{original: original, updated: updated, container: container}
}

// Compare appends findings to the container.
func (c *EnumValueComparator) Compare() error {
	switch {
	case c.original == nil && c.updated == nil:
		return errBothAbsent("enum value")
	case c.original == nil:
		c.container.Add(findings.EnumValueAddition, findings.ChangeTypeMinor,
			fmt.Sprintf("A new EnumValue `%s` is added.", c.updated.Name), c.updated.Location())
	case c.updated == nil:
		c.container.Add(findings.EnumValueRemoval, findings.ChangeTypeMajor,
			fmt.Sprintf("An existing EnumValue `%s` is removed.", c.original.Name), c.original.Location())
	case c.original.Name != c.updated.Name:
		c.container.Add(findings.EnumValueNameChange, findings.ChangeTypeMajor,
			fmt.Sprintf("Name of the EnumValue is changed from `%s` to `%s`.", c.original.Name, c.updated.Name),
			c.updated.Location())
	}
	return nil
}

// EnumComparator pairs the values of two enum versions by number and runs the
// enum value comparator on every pair.
type EnumComparator struct {
	original  *schema.Enum
	updated   *schema.Enum
	container *findings.Container
}

// NewEnumComparator creates a comparator for one enum pair.
func NewEnumComparator(original, updated *schema.Enum, container *findings.Container) *EnumComparator {
	return &EnumComparator{original: original, updated: updated, container: container}
}

// Compare appends findings to the container.
func (c *EnumComparator) Compare() error {
	switch {
	case c.original == nil && c.updated == nil:
		return errBothAbsent("enum")
	case c.original == nil:
		c.container.Add(findings.EnumAddition, findings.ChangeTypeMinor,
			fmt.Sprintf("A new Enum `%s` is added.", c.updated.Name), c.updated.Location())
		return nil
	case c.updated == nil:
		c.container.Add(findings.EnumRemoval, findings.ChangeTypeMajor,
			fmt.Sprintf("An existing Enum `%s` is removed.", c.original.Name), c.original.Location())
		return nil
	}
	for _, number := range unionKeys(c.original.Values, c.updated.Values) {
		if err := NewEnumValueComparator(c.original.Values[number], c.updated.Values[number], c.container).Compare(); err != nil {
			return err
		}
	}
	return nil
}
