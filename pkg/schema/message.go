package schema

import (
	"google.golang.org/genproto/googleapis/api/annotations"

	"github.com/platinummonkey/protodetect/pkg/findings"
)

// Message is the normalized view of one message definition, including its
// nested messages and enums. Map entry messages synthesized by the compiler
// are tracked separately and never appear among the nested messages.
type Message struct {
	Name     string
	FullName string
	// Fields maps field number to its view.
	Fields         map[int32]*Field
	NestedMessages map[string]*Message
	NestedEnums    map[string]*Enum
	Oneofs         map[string]bool
	// Resource is the google.api.resource option on the message, nil when
	// absent.
	Resource *annotations.ResourceDescriptor
	// ResourceDatabase is the registry of the file set this message belongs
	// to. May be nil for sets built without resource indexing.
	ResourceDatabase *ResourceDatabase
	// Nested marks messages declared inside another message. Nested entries
	// stay in the file set's MessagesMap for type resolution but are
	// compared through their parent.
	Nested         bool
	APIVersion     string
	ProtoFileName  string
	SourceCodeLine int
}

// Location returns the finding location for this message.
func (m *Message) Location() findings.Location {
	return findings.Location{ProtoFileName: m.ProtoFileName, SourceCodeLine: m.SourceCodeLine}
}
