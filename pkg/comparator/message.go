package comparator

import (
	"fmt"
	"slices"

	"github.com/platinummonkey/protodetect/pkg/findings"
	"github.com/platinummonkey/protodetect/pkg/schema"
)

// MessageComparator emits findings for the differences between two versions
// of one message: its fields paired by number, its nested messages and enums
// paired by name, and its message-level resource definition.
type MessageComparator struct {
	original  *schema.Message
	updated   *schema.Message
	container *findings.Container
}

// NewMessageComparator creates a comparator for one message pair.
func NewMessageComparator(original, updated *schema.Message, container *findings.Container) *MessageComparator {
	return &MessageComparator{original: original, updated: updated, container: container}
}

// Compare appends findings to the container.
func (c *MessageComparator) Compare() error {
	switch {
	case c.original == nil && c.updated == nil:
		return errBothAbsent("message")
	case c.original == nil:
		c.container.Add(findings.MessageAddition, findings.ChangeTypeMinor,
			fmt.Sprintf("A new message `%s` is added.", c.updated.Name), c.updated.Location())
		return nil
	case c.updated == nil:
		c.container.Add(findings.MessageRemoval, findings.ChangeTypeMajor,
			fmt.Sprintf("An existing message `%s` is removed.", c.original.Name), c.original.Location())
		return nil
	}

	for _, number := range unionKeys(c.original.Fields, c.updated.Fields) {
		if err := NewFieldComparator(c.original.Fields[number], c.updated.Fields[number], c.container).Compare(); err != nil {
			return err
		}
	}
	for _, name := range unionKeys(c.original.NestedMessages, c.updated.NestedMessages) {
		if err := NewMessageComparator(c.original.NestedMessages[name], c.updated.NestedMessages[name], c.container).Compare(); err != nil {
			return err
		}
	}
	for _, name := range unionKeys(c.original.NestedEnums, c.updated.NestedEnums) {
		if err := NewEnumComparator(c.original.NestedEnums[name], c.updated.NestedEnums[name], c.container).Compare(); err != nil {
			return err
		}
	}
	c.compareResource()
	return nil
}

// compareResource checks the message-level google.api.resource option.
func (c *MessageComparator) compareResource() {
	original, updated := c.original.Resource, c.updated.Resource
	switch {
	case original == nil && updated == nil:
		return
	case original == nil:
		c.container.Add(findings.ResourceDefinitionAddition, findings.ChangeTypeMinor,
			fmt.Sprintf("A message-level resource definition `%s` is added.", updated.GetType()),
			c.updated.Location())
		return
	case updated == nil:
		// Removal is tolerated when the same type is still registered in the
		// updated tree, e.g. as a file-level resource definition.
		if len(c.updated.ResourceDatabase.GetResourceByType(original.GetType())) > 0 {
			c.container.Add(findings.ResourceDefinitionRemoval, findings.ChangeTypeMinor,
				fmt.Sprintf("An existing message-level resource definition `%s` is removed, but it is still defined in the file-level resource definitions.", original.GetType()),
				c.original.Location())
			return
		}
		c.container.Add(findings.ResourceDefinitionRemoval, findings.ChangeTypeMajor,
			fmt.Sprintf("An existing message-level resource definition `%s` is removed.", original.GetType()),
			c.original.Location())
		return
	}

	if original.GetType() != updated.GetType() {
		c.container.Add(findings.ResourceDefinitionChange, findings.ChangeTypeMajor,
			fmt.Sprintf("The type of an existing message-level resource definition is changed from `%s` to `%s`.",
				original.GetType(), updated.GetType()),
			c.updated.Location())
		return
	}
	// Dropping a declared pattern narrows the set of valid resource names.
	for _, pattern := range original.GetPattern() {
		if !slices.Contains(updated.GetPattern(), pattern) {
			c.container.Add(findings.ResourceDefinitionChange, findings.ChangeTypeMajor,
				fmt.Sprintf("An existing pattern `%s` of the resource definition `%s` is removed.",
					pattern, original.GetType()),
				c.updated.Location())
		}
	}
}
