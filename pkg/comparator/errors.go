package comparator

import (
	"fmt"
)

// MalformedResourceReferenceError reports a resource_reference annotation
// that sets neither type nor child_type. This violates the annotation's own
// contract and is a fatal input error rather than a finding.
type MalformedResourceReferenceError struct {
	Field string
}

func (e *MalformedResourceReferenceError) Error() string {
	return fmt.Sprintf("malformed resource reference on field `%s`: either type or child_type must be set", e.Field)
}

// MissingOperationInfoError reports a method that returns
// google.longrunning.Operation without declaring the operation_info
// annotation, which makes the LRO comparison impossible.
type MissingOperationInfoError struct {
	Method string
}

func (e *MissingOperationInfoError) Error() string {
	return fmt.Sprintf("method `%s` returns google.longrunning.Operation but has no operation_info annotation", e.Method)
}

// errBothAbsent is returned when a comparator is invoked with neither an
// original nor an updated element; the caller's pairing contract guarantees
// at least one side is present.
func errBothAbsent(kind string) error {
	return fmt.Errorf("%s comparison requires at least one of original and updated", kind)
}
