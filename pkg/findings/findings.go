package findings

import (
	"encoding/json"
	"fmt"
)

// ChangeType classifies the severity of a detected change following the
// semantic versioning vocabulary. Major changes are breaking; minor and
// patch changes are informational.
type ChangeType int

const (
	ChangeTypeMajor ChangeType = iota
	ChangeTypeMinor
	ChangeTypePatch
)

func (c ChangeType) String() string {
	return []string{"MAJOR", "MINOR", "PATCH"}[c]
}

// MarshalJSON serializes the change type as its stable name. The names
// MAJOR/MINOR/PATCH are part of the output contract consumed by other tooling.
func (c ChangeType) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON parses a change type from its stable name.
func (c *ChangeType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "MAJOR":
		*c = ChangeTypeMajor
	case "MINOR":
		*c = ChangeTypeMinor
	case "PATCH":
		*c = ChangeTypePatch
	default:
		return fmt.Errorf("unknown change type: %s", name)
	}
	return nil
}

// FindingCategory identifies the kind of schema difference a finding reports.
// The set is closed: each comparator emits a fixed subset of categories.
type FindingCategory int

const (
	// Enum value categories.
	EnumValueAddition FindingCategory = iota
	EnumValueRemoval
	EnumValueNameChange

	// Enum categories.
	EnumAddition
	EnumRemoval

	// Field categories.
	FieldAddition
	FieldRemoval
	FieldNameChange
	FieldRepeatedChange
	FieldBehaviorChange
	FieldTypeChange
	FieldOneofRemoval
	FieldOneofAddition
	FieldProto3OptionalChange

	// Message categories.
	MessageAddition
	MessageRemoval

	// Resource annotation categories.
	ResourceDefinitionAddition
	ResourceDefinitionRemoval
	ResourceDefinitionChange
	ResourceReferenceAddition
	ResourceReferenceRemoval
	ResourceReferenceChange

	// Service and method categories.
	ServiceAddition
	ServiceRemoval
	ServiceHostAddition
	ServiceHostRemoval
	ServiceHostChange
	OAuthScopeAddition
	OAuthScopeRemoval
	MethodAddition
	MethodRemoval
	MethodInputTypeChange
	MethodResponseTypeChange
	MethodClientStreamingChange
	MethodServerStreamingChange
	MethodPaginatedResponseChange
	MethodSignatureChange

	// Annotation categories.
	LROResponseChange
	LROMetadataChange
	LROAnnotationAddition
	LROAnnotationRemoval
	HTTPAnnotationAddition
	HTTPAnnotationRemoval
	HTTPAnnotationChange

	// File-level categories.
	PackagingOptionChange
)

var categoryNames = []string{
	"ENUM_VALUE_ADDITION",
	"ENUM_VALUE_REMOVAL",
	"ENUM_VALUE_NAME_CHANGE",
	"ENUM_ADDITION",
	"ENUM_REMOVAL",
	"FIELD_ADDITION",
	"FIELD_REMOVAL",
	"FIELD_NAME_CHANGE",
	"FIELD_REPEATED_CHANGE",
	"FIELD_BEHAVIOR_CHANGE",
	"FIELD_TYPE_CHANGE",
	"FIELD_ONEOF_REMOVAL",
	"FIELD_ONEOF_ADDITION",
	"FIELD_PROTO3_OPTIONAL_CHANGE",
	"MESSAGE_ADDITION",
	"MESSAGE_REMOVAL",
	"RESOURCE_DEFINITION_ADDITION",
	"RESOURCE_DEFINITION_REMOVAL",
	"RESOURCE_DEFINITION_CHANGE",
	"RESOURCE_REFERENCE_ADDITION",
	"RESOURCE_REFERENCE_REMOVAL",
	"RESOURCE_REFERENCE_CHANGE",
	"SERVICE_ADDITION",
	"SERVICE_REMOVAL",
	"SERVICE_HOST_ADDITION",
	"SERVICE_HOST_REMOVAL",
	"SERVICE_HOST_CHANGE",
	"OAUTH_SCOPE_ADDITION",
	"OAUTH_SCOPE_REMOVAL",
	"METHOD_ADDITION",
	"METHOD_REMOVAL",
	"METHOD_INPUT_TYPE_CHANGE",
	"METHOD_RESPONSE_TYPE_CHANGE",
	"METHOD_CLIENT_STREAMING_CHANGE",
	"METHOD_SERVER_STREAMING_CHANGE",
	"METHOD_PAGINATED_RESPONSE_CHANGE",
	"METHOD_SIGNATURE_CHANGE",
	"LRO_RESPONSE_CHANGE",
	"LRO_METADATA_CHANGE",
	"LRO_ANNOTATION_ADDITION",
	"LRO_ANNOTATION_REMOVAL",
	"HTTP_ANNOTATION_ADDITION",
	"HTTP_ANNOTATION_REMOVAL",
	"HTTP_ANNOTATION_CHANGE",
	"PACKAGING_OPTION_CHANGE",
}

func (f FindingCategory) String() string {
	if int(f) < 0 || int(f) >= len(categoryNames) {
		return "UNKNOWN"
	}
	return categoryNames[int(f)]
}

// MarshalJSON serializes the category as its stable name.
func (f FindingCategory) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON parses a category from its stable name.
func (f *FindingCategory) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for i, n := range categoryNames {
		if n == name {
			*f = FindingCategory(i)
			return nil
		}
	}
	return fmt.Errorf("unknown finding category: %s", name)
}

// Location points at the source of a finding in the proto definition files.
type Location struct {
	ProtoFileName  string `json:"proto_file_name"`
	SourceCodeLine int    `json:"source_code_line"`
}

// Finding describes one detected difference between two versions of a proto
// definition. Findings are immutable once constructed.
type Finding struct {
	Category   FindingCategory `json:"category"`
	ChangeType ChangeType      `json:"change_type"`
	Message    string          `json:"message"`
	Location   Location        `json:"location"`
}

// Breaking reports whether the finding represents a backward-incompatible
// change.
func (f Finding) Breaking() bool {
	return f.ChangeType == ChangeTypeMajor
}
