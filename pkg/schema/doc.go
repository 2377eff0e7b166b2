// Package schema normalizes compiled protobuf descriptors into the typed
// views the comparators operate on.
//
// A FileSet wraps a descriptorpb.FileDescriptorSet (produced by the loader or
// any other descriptor source) into Message, Field, Enum, EnumValue, Service
// and Method views. Views carry everything a comparator needs locally: the
// declared shape of the element, the google.api annotations that affect
// compatibility (field_behavior, resource, resource_reference, default_host,
// oauth_scopes, method_signature, http, operation_info), the source file and
// line for finding locations, and the api version segment of the declaring
// file's path used for version-tolerant type comparison.
//
// The ResourceDatabase indexes every google.api.resource definition across
// the whole set, including imported dependencies, so that a field-level
// resource reference can be resolved against a resource declared in another
// file. Views are constructed once per comparison run and are read-only for
// the engine's duration.
package schema
