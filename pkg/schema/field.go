package schema

import (
	"fmt"

	"google.golang.org/genproto/googleapis/api/annotations"

	"github.com/platinummonkey/protodetect/pkg/findings"
)

// MapEntry holds the key and value type names of a map field. Scalar types
// use their proto spelling (`string`, `int32`); message and enum types use
// the fully qualified name with a leading dot.
type MapEntry struct {
	KeyType   string
	ValueType string
}

func (m MapEntry) String() string {
	return fmt.Sprintf("map<%s, %s>", m.KeyType, m.ValueType)
}

// Field is the normalized view of one message field at one schema revision.
// Views are read-only for the duration of a comparison run.
type Field struct {
	Name     string
	Number   int32
	Repeated bool
	// Required reflects the google.api.field_behavior REQUIRED annotation.
	Required bool
	// ProtoType is the descriptor type name, e.g. TYPE_INT32 or TYPE_MESSAGE.
	ProtoType string
	// TypeName is set for message and enum typed fields, fully qualified with
	// a leading dot.
	TypeName       string
	IsMapType      bool
	MapEntry       *MapEntry
	OneofName      string
	Proto3Optional bool
	// APIVersion is the version segment of the declaring proto file's path,
	// e.g. v1 or v1beta1. Empty when the file carries no version segment.
	APIVersion string

	// ResourceReference is the google.api.resource_reference annotation on
	// the field, nil when absent.
	ResourceReference *annotations.ResourceReference
	// MessageResource is the google.api.resource option of the enclosing
	// message, nil when absent.
	MessageResource *annotations.ResourceDescriptor
	// ResourceDatabase is the registry of the file set this field belongs to.
	// May be nil for file sets built without resource indexing.
	ResourceDatabase *ResourceDatabase

	ProtoFileName  string
	SourceCodeLine int
}

// Oneof reports whether the field is a member of a oneof group. Proto3
// optional fields live in a compiler-synthesized oneof and count as members;
// the Proto3Optional flag distinguishes them from declared oneof fields.
func (f *Field) Oneof() bool {
	return f.OneofName != ""
}

// ChildTypeReference reports whether the field's resource reference uses the
// child_type form.
func (f *Field) ChildTypeReference() bool {
	return f.ResourceReference.GetChildType() != ""
}

// Location returns the finding location for this field.
func (f *Field) Location() findings.Location {
	return findings.Location{ProtoFileName: f.ProtoFileName, SourceCodeLine: f.SourceCodeLine}
}
