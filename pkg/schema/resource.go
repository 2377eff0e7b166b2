package schema

import (
	"strings"

	"google.golang.org/genproto/googleapis/api/annotations"
)

// ResourceDatabase indexes every google.api.resource definition visible in a
// file set: file-level resource_definition options and message-level resource
// options. Comparators query it to decide whether resource reference
// annotation changes resolve to the same underlying resource, possibly
// declared in a different file than the field that references it.
//
// All query methods are nil-safe: a nil database reads as an empty registry,
// so file sets built without resource indexing degrade to negative lookups.
type ResourceDatabase struct {
	types    map[string]*annotations.ResourceDescriptor
	patterns map[string]*annotations.ResourceDescriptor
}

// NewResourceDatabase creates an empty resource database.
func NewResourceDatabase() *ResourceDatabase {
	return &ResourceDatabase{
		types:    make(map[string]*annotations.ResourceDescriptor),
		patterns: make(map[string]*annotations.ResourceDescriptor),
	}
}

// RegisterResource adds a resource definition to the database. Definitions
// without a type are ignored.
func (db *ResourceDatabase) RegisterResource(resource *annotations.ResourceDescriptor) {
	if resource == nil || resource.GetType() == "" {
		return
	}
	db.types[resource.GetType()] = resource
	for _, pattern := range resource.GetPattern() {
		db.patterns[pattern] = resource
	}
}

// GetResourceByType returns the resources registered for the given type. The
// registry keeps one definition per type, so the result holds at most one
// element; an unknown type yields an empty result.
func (db *ResourceDatabase) GetResourceByType(resourceType string) []*annotations.ResourceDescriptor {
	if db == nil || resourceType == "" {
		return nil
	}
	resource, ok := db.types[resourceType]
	if !ok {
		return nil
	}
	return []*annotations.ResourceDescriptor{resource}
}

// GetParentResourcesByChildType returns every registered resource whose
// pattern is a parent of one of the child type's patterns. A resource R is a
// parent of child C when some pattern of C extends a pattern of R by at least
// one path segment, e.g. `foo/{foo}` is a parent of `foo/{foo}/bar/{bar}`.
func (db *ResourceDatabase) GetParentResourcesByChildType(childType string) []*annotations.ResourceDescriptor {
	if db == nil {
		return nil
	}
	child := db.types[childType]
	if child == nil {
		return nil
	}
	var parents []*annotations.ResourceDescriptor
	seen := make(map[string]bool)
	for _, childPattern := range child.GetPattern() {
		for pattern, resource := range db.patterns {
			if resource.GetType() == childType || seen[resource.GetType()] {
				continue
			}
			if strings.HasPrefix(childPattern, pattern+"/") {
				parents = append(parents, resource)
				seen[resource.GetType()] = true
			}
		}
	}
	return parents
}

// HasResource reports whether the reference resolves against this database:
// a plain type reference must be registered directly, a child type reference
// must resolve to at least one parent resource.
func (db *ResourceDatabase) HasResource(ref *annotations.ResourceReference) bool {
	if db == nil || ref == nil {
		return false
	}
	if ref.GetChildType() != "" {
		return len(db.GetParentResourcesByChildType(ref.GetChildType())) > 0
	}
	return len(db.GetResourceByType(ref.GetType())) > 0
}
