// Package comparator implements the per-entity comparison engine that
// classifies schema changes between two versions of a proto definition tree.
//
// One comparator exists per schema entity kind: field, enum value, enum,
// message, service (with its methods), and the file set as a whole. Every
// comparator follows the same contract: it takes a possibly-absent original
// and a possibly-absent updated view of one entity and appends categorized
// findings to a shared findings.Container. A nil side signals a pure addition
// or removal; both sides nil is an input contract violation and returns an
// error.
//
// Comparators never mutate the views they are given. Apart from the append
// effect on the container they are pure, so a driver may fan independent
// entity pairs out across goroutines; only the ordered checklist within one
// field's comparison is sequentially significant.
//
// Type comparisons are version tolerant: substituting the original tree's api
// version segment (e.g. v1) with the updated tree's (e.g. v1beta1) inside a
// fully qualified type name makes `.example.v1.Enum` and
// `.example.v1beta1.Enum` equivalent, while `.example.v1.Enum` against
// `.example.v2.EnumUpdate` remains a breaking type change.
//
// Resource reference annotations get their own resolver: whether an
// addition, removal or change of a google.api.resource_reference is breaking
// depends on what the resource database of the owning tree can resolve, not
// on the annotation text alone. See FieldComparator for the exact policy.
package comparator
