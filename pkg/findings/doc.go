// Package findings defines the finding model shared by all comparators.
//
// A Finding is one detected difference between two versions of a proto
// definition: a category (what kind of change), a change type (MAJOR for
// breaking, MINOR/PATCH for informational), a human-readable message, and the
// source location of the affected element.
//
// Comparators append findings into a Container. Each comparison run owns its
// own container; there is no process-wide accumulator. The container is safe
// for concurrent appends, so a driver may run independent comparator
// invocations in parallel and drain a single container afterwards.
//
// The category names and the MAJOR/MINOR/PATCH vocabulary are a stable
// contract: the JSON serialization of findings is consumed by report tooling
// and CI gates downstream of this module.
package findings
