package schema

import (
	"github.com/platinummonkey/protodetect/pkg/findings"
)

// EnumValue is the normalized view of one enum value. Enum values carry only
// an identity (their number, used as the pairing key) and a name.
type EnumValue struct {
	Name           string
	Number         int32
	ProtoFileName  string
	SourceCodeLine int
}

// Location returns the finding location for this enum value.
func (v *EnumValue) Location() findings.Location {
	return findings.Location{ProtoFileName: v.ProtoFileName, SourceCodeLine: v.SourceCodeLine}
}

// Enum is the normalized view of one enum definition.
type Enum struct {
	Name     string
	FullName string
	// Values maps enum value number to its view.
	Values map[int32]*EnumValue
	// Nested marks enums declared inside a message; they are compared
	// through their enclosing message, not at file scope.
	Nested         bool
	APIVersion     string
	ProtoFileName  string
	SourceCodeLine int
}

// Location returns the finding location for this enum.
func (e *Enum) Location() findings.Location {
	return findings.Location{ProtoFileName: e.ProtoFileName, SourceCodeLine: e.SourceCodeLine}
}
