package schema

import (
	"cloud.google.com/go/longrunning/autogen/longrunningpb"

	"github.com/platinummonkey/protodetect/pkg/findings"
)

// Service is the normalized view of one service definition, including the
// google.api.default_host and google.api.oauth_scopes annotations.
type Service struct {
	Name        string
	Host        string
	OAuthScopes []string
	Methods     map[string]*Method
	// MessagesMap gives the methods access to the request and response
	// message views of the owning file set, keyed by fully qualified name.
	MessagesMap    map[string]*Message
	APIVersion     string
	ProtoFileName  string
	SourceCodeLine int
}

// Location returns the finding location for this service.
func (s *Service) Location() findings.Location {
	return findings.Location{ProtoFileName: s.ProtoFileName, SourceCodeLine: s.SourceCodeLine}
}

// HTTPAnnotation is the flattened google.api.http annotation of a method.
type HTTPAnnotation struct {
	Verb string
	URI  string
	Body string
}

// Method is the normalized view of one rpc method.
type Method struct {
	Name string
	// InputType and OutputType are fully qualified with a leading dot.
	InputType       string
	OutputType      string
	ClientStreaming bool
	ServerStreaming bool
	// MethodSignatures are the google.api.method_signature annotations in
	// declaration order.
	MethodSignatures []string
	// LRO is the google.longrunning.operation_info annotation, expected on
	// methods whose output type is google.longrunning.Operation.
	LRO *longrunningpb.OperationInfo
	// HTTPAnnotation is the google.api.http annotation, nil when absent.
	HTTPAnnotation *HTTPAnnotation
	// MessagesMap resolves the input and output message views for paged
	// result detection.
	MessagesMap    map[string]*Message
	APIVersion     string
	ProtoFileName  string
	SourceCodeLine int
}

// Location returns the finding location for this method.
func (m *Method) Location() findings.Location {
	return findings.Location{ProtoFileName: m.ProtoFileName, SourceCodeLine: m.SourceCodeLine}
}

// Longrunning reports whether the method returns a long-running operation.
func (m *Method) Longrunning() bool {
	return m.OutputType == ".google.longrunning.Operation"
}

// PagedResultField returns the repeated field of the response message when
// the method follows the AIP-158 pagination shape: the response carries a
// `next_page_token` string field and a repeated payload field, and the
// request carries `page_size` and `page_token` fields. Returns nil when the
// method is not paginated.
func (m *Method) PagedResultField() *Field {
	if m.MessagesMap == nil {
		return nil
	}
	request := m.MessagesMap[m.InputType]
	response := m.MessagesMap[m.OutputType]
	if request == nil || response == nil {
		return nil
	}
	if !hasField(request, "page_size") || !hasField(request, "page_token") {
		return nil
	}
	if !hasField(response, "next_page_token") {
		return nil
	}
	for _, field := range response.Fields {
		if field.Repeated {
			return field
		}
	}
	return nil
}

func hasField(m *Message, name string) bool {
	for _, field := range m.Fields {
		if field.Name == name {
			return true
		}
	}
	return false
}
