package comparator

import (
	"fmt"

	"google.golang.org/genproto/googleapis/api/annotations"

	"github.com/platinummonkey/protodetect/pkg/findings"
	"github.com/platinummonkey/protodetect/pkg/schema"
)

// FieldComparator emits findings for the differences between two versions of
// one message field. Exactly one of the two sides may be nil, signaling a
// pure addition or removal.
//
// The checks form an ordered checklist: addition, removal and rename
// short-circuit, the shape and type checks run in sequence, and the resource
// reference resolution always runs last because it is independent of the
// structural checks.
type FieldComparator struct {
	original  *schema.Field
	updated   *schema.Field
	container *findings.Container
}

// NewFieldComparator creates a comparator for one field pair.
func NewFieldComparator(original, updated *schema.Field, container *findings.Container) *FieldComparator {
	return &FieldComparator{original: original, updated: updated, container: container}
}

// Compare runs the checklist and appends findings to the container. The only
// error conditions are invalid input shapes: both sides absent, or a
// malformed resource reference annotation.
func (c *FieldComparator) Compare() error {
	if c.original == nil && c.updated == nil {
		return errBothAbsent("field")
	}
	if c.original == nil {
		c.container.Add(findings.FieldAddition, findings.ChangeTypeMinor,
			fmt.Sprintf("A new field `%s` is added.", c.updated.Name), c.updated.Location())
		return nil
	}
	if c.updated == nil {
		c.container.Add(findings.FieldRemoval, findings.ChangeTypeMajor,
			fmt.Sprintf("An existing field `%s` is removed.", c.original.Name), c.original.Location())
		return nil
	}

	// The caller pairs fields by number, so a name mismatch is a rename of
	// the same wire field.
	if c.original.Name != c.updated.Name {
		c.container.Add(findings.FieldNameChange, findings.ChangeTypeMajor,
			fmt.Sprintf("Name of an existing field is changed from `%s` to `%s`.", c.original.Name, c.updated.Name),
			c.updated.Location())
		return nil
	}

	if c.original.Repeated != c.updated.Repeated {
		c.container.Add(findings.FieldRepeatedChange, findings.ChangeTypeMajor,
			fmt.Sprintf("Repeated state of an existing field `%s` is changed.", c.original.Name),
			c.updated.Location())
	}

	// Tightening optional to required is breaking; loosening is not.
	if !c.original.Required && c.updated.Required {
		c.container.Add(findings.FieldBehaviorChange, findings.ChangeTypeMajor,
			fmt.Sprintf("Field behavior of an existing field `%s` is changed.", c.original.Name),
			c.updated.Location())
	}

	c.compareType()
	c.compareOneof()
	return c.compareResourceReference()
}

func (c *FieldComparator) compareType() {
	if c.original.ProtoType != c.updated.ProtoType {
		c.container.Add(findings.FieldTypeChange, findings.ChangeTypeMajor,
			fmt.Sprintf("Type of an existing field `%s` is changed from `%s` to `%s`.",
				c.original.Name, c.original.ProtoType, c.updated.ProtoType),
			c.updated.Location())
		return
	}
	if c.original.TypeName == "" {
		return
	}

	if c.original.TypeName != c.updated.TypeName {
		// A version promotion such as `.example.v1.Enum` to
		// `.example.v1beta1.Enum` is tolerated; any other rename is breaking.
		transformed := c.transformedTypeName(c.original.TypeName)
		if transformed == "" || transformed != c.updated.TypeName {
			c.container.Add(findings.FieldTypeChange, findings.ChangeTypeMajor,
				fmt.Sprintf("Type of an existing field `%s` is changed from `%s` to `%s`.",
					c.original.Name, c.original.TypeName, c.updated.TypeName),
				c.updated.Location())
		}
		return
	}

	switch {
	case c.original.IsMapType && !c.updated.IsMapType:
		c.container.Add(findings.FieldTypeChange, findings.ChangeTypeMajor,
			fmt.Sprintf("Type of an existing field `%s` is changed from a map to `%s`.",
				c.original.Name, c.updated.TypeName),
			c.updated.Location())
	case !c.original.IsMapType && c.updated.IsMapType:
		c.container.Add(findings.FieldTypeChange, findings.ChangeTypeMajor,
			fmt.Sprintf("Type of an existing field `%s` is changed from `%s` to a map.",
				c.original.Name, c.original.TypeName),
			c.updated.Location())
	case c.original.IsMapType && c.updated.IsMapType:
		c.compareMapEntry()
	}
}

func (c *FieldComparator) compareMapEntry() {
	original, updated := c.original.MapEntry, c.updated.MapEntry
	identicalKey := original.KeyType == updated.KeyType ||
		c.transformedTypeName(original.KeyType) == updated.KeyType
	identicalValue := original.ValueType == updated.ValueType ||
		c.transformedTypeName(original.ValueType) == updated.ValueType
	if !identicalKey || !identicalValue {
		c.container.Add(findings.FieldTypeChange, findings.ChangeTypeMajor,
			fmt.Sprintf("Type of an existing field `%s` is changed from `%s` to `%s`.",
				c.original.Name, original, updated),
			c.updated.Location())
	}
}

func (c *FieldComparator) compareOneof() {
	if c.original.Oneof() != c.updated.Oneof() {
		if c.original.Oneof() {
			c.container.Add(findings.FieldOneofRemoval, findings.ChangeTypeMajor,
				fmt.Sprintf("An existing field `%s` is moved out of One-of.", c.original.Name),
				c.updated.Location())
		} else {
			c.container.Add(findings.FieldOneofAddition, findings.ChangeTypeMajor,
				fmt.Sprintf("An existing field `%s` is moved into One-of.", c.original.Name),
				c.updated.Location())
		}
		return
	}
	if !c.original.Oneof() || c.original.Proto3Optional == c.updated.Proto3Optional {
		return
	}
	if c.original.Proto3Optional {
		c.container.Add(findings.FieldProto3OptionalChange, findings.ChangeTypeMajor,
			fmt.Sprintf("Proto3 optional state of an existing field `%s` is changed to required.", c.original.Name),
			c.updated.Location())
	} else {
		c.container.Add(findings.FieldProto3OptionalChange, findings.ChangeTypeMinor,
			fmt.Sprintf("An existing field `%s` is changed to proto3 optional.", c.original.Name),
			c.updated.Location())
	}
}

// transformedTypeName applies the version-tolerant substitution to a type
// name using the api versions of the two field views.
func (c *FieldComparator) transformedTypeName(typeName string) string {
	return transformedName(typeName, c.original.APIVersion, c.updated.APIVersion)
}

// compareResourceReference resolves google.api.resource_reference changes.
// Annotations describe resource identity rather than structural shape, so an
// apparently breaking change may resolve to the identical resource through
// the resource database; conversely an addition that resolves to nothing is
// breaking even though the field shape is untouched.
func (c *FieldComparator) compareResourceReference() error {
	refOriginal := c.original.ResourceReference
	refUpdated := c.updated.ResourceReference
	if refOriginal == nil && refUpdated == nil {
		return nil
	}
	if err := c.validateReference(refOriginal); err != nil {
		return err
	}
	if err := c.validateReference(refUpdated); err != nil {
		return err
	}

	if refOriginal == nil {
		if c.updated.ResourceDatabase.HasResource(refUpdated) {
			c.container.Add(findings.ResourceReferenceAddition, findings.ChangeTypeMinor,
				fmt.Sprintf("A resource reference option is added to the field `%s`.", c.original.Name),
				c.updated.Location())
		} else {
			c.container.Add(findings.ResourceReferenceAddition, findings.ChangeTypeMajor,
				fmt.Sprintf("A resource reference option is added to the field `%s`, but it is not defined anywhere", c.original.Name),
				c.updated.Location())
		}
		return nil
	}

	if refUpdated == nil {
		// Dropping the field-level annotation in favor of an equivalent
		// message-level resource declaration is not a regression.
		if c.movedToMessageResource(refOriginal) {
			c.container.Add(findings.ResourceReferenceRemoval, findings.ChangeTypeMinor,
				fmt.Sprintf("A resource reference option of the field `%s` is removed, but added back to the message options.", c.original.Name),
				c.original.Location())
		} else {
			c.container.Add(findings.ResourceReferenceRemoval, findings.ChangeTypeMajor,
				fmt.Sprintf("A resource reference option of the field `%s` is removed.", c.original.Name),
				c.original.Location())
		}
		return nil
	}

	if c.original.ChildTypeReference() == c.updated.ChildTypeReference() {
		originalType := referencedType(refOriginal)
		updatedType := referencedType(refUpdated)
		if originalType != updatedType {
			c.container.Add(findings.ResourceReferenceChange, findings.ChangeTypeMajor,
				fmt.Sprintf("The type of resource reference option of the field `%s` is changed from `%s` to `%s`.",
					c.original.Name, originalType, updatedType),
				c.updated.Location())
		}
		return nil
	}

	// The discriminant flipped between type and child_type. The two forms can
	// still name the identical resource when the child type's declared parent
	// includes the other side's type. Parent lookups always run against the
	// database of the tree that owns the child_type reference.
	if c.original.ChildTypeReference() {
		c.checkParentResolution(refOriginal.GetChildType(), refUpdated.GetType(), c.original.ResourceDatabase)
	} else {
		c.checkParentResolution(refUpdated.GetChildType(), refOriginal.GetType(), c.updated.ResourceDatabase)
	}
	return nil
}

func (c *FieldComparator) validateReference(ref *annotations.ResourceReference) error {
	if ref != nil && ref.GetType() == "" && ref.GetChildType() == "" {
		return &MalformedResourceReferenceError{Field: c.original.Name}
	}
	return nil
}

func referencedType(ref *annotations.ResourceReference) string {
	if ref.GetType() != "" {
		return ref.GetType()
	}
	return ref.GetChildType()
}

func (c *FieldComparator) movedToMessageResource(ref *annotations.ResourceReference) bool {
	messageResource := c.updated.MessageResource
	if messageResource == nil {
		return false
	}
	if ref.GetChildType() != "" {
		for _, parent := range c.original.ResourceDatabase.GetParentResourcesByChildType(ref.GetChildType()) {
			if parent.GetType() == messageResource.GetType() {
				return true
			}
		}
		return false
	}
	return messageResource.GetType() == ref.GetType()
}

func (c *FieldComparator) checkParentResolution(childType, parentType string, db *schema.ResourceDatabase) {
	for _, parent := range db.GetParentResourcesByChildType(childType) {
		if parent.GetType() == parentType {
			return
		}
	}
	c.container.Add(findings.ResourceReferenceChange, findings.ChangeTypeMajor,
		fmt.Sprintf("The child_type `%s` and type `%s` of resource reference option in field `%s` cannot be resolved to the identical resource.",
			childType, parentType, c.original.Name),
		c.updated.Location())
}
