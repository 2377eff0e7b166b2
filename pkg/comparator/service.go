package comparator

import (
	"fmt"
	"slices"

	"github.com/platinummonkey/protodetect/pkg/findings"
	"github.com/platinummonkey/protodetect/pkg/schema"
)

// ServiceComparator emits findings for the differences between two versions
// of one service: the default host and oauth scope annotations, and every rpc
// method paired by name.
type ServiceComparator struct {
	original  *schema.Service
	updated   *schema.Service
	container *findings.Container
}

// NewServiceComparator creates a comparator for one service pair.
func NewServiceComparator(original, updated *schema.Service, container *findings.Container) *ServiceComparator {
	return &ServiceComparator{original: original, updated: updated, container: container}
}

// Compare appends findings to the container. It returns an error for invalid
// input shapes, including a long-running method without an operation_info
// annotation.
func (c *ServiceComparator) Compare() error {
	switch {
	case c.original == nil && c.updated == nil:
		return errBothAbsent("service")
	case c.original == nil:
		c.container.Add(findings.ServiceAddition, findings.ChangeTypeMinor,
			fmt.Sprintf("A new service `%s` is added.", c.updated.Name), c.updated.Location())
		return nil
	case c.updated == nil:
		c.container.Add(findings.ServiceRemoval, findings.ChangeTypeMajor,
			fmt.Sprintf("An existing service `%s` is removed.", c.original.Name), c.original.Location())
		return nil
	}

	c.compareHost()
	c.compareOAuthScopes()
	for _, name := range unionKeys(c.original.Methods, c.updated.Methods) {
		if err := c.compareMethod(c.original.Methods[name], c.updated.Methods[name]); err != nil {
			return err
		}
	}
	return nil
}

func (c *ServiceComparator) compareHost() {
	switch {
	case c.original.Host == c.updated.Host:
	case c.original.Host == "":
		c.container.Add(findings.ServiceHostAddition, findings.ChangeTypeMinor,
			fmt.Sprintf("A new default host `%s` is added.", c.updated.Host), c.updated.Location())
	case c.updated.Host == "":
		c.container.Add(findings.ServiceHostRemoval, findings.ChangeTypeMajor,
			fmt.Sprintf("An existing default host `%s` is removed.", c.original.Host), c.original.Location())
	default:
		c.container.Add(findings.ServiceHostChange, findings.ChangeTypeMajor,
			fmt.Sprintf("An existing default host is updated from `%s` to `%s`.", c.original.Host, c.updated.Host),
			c.updated.Location())
	}
}

func (c *ServiceComparator) compareOAuthScopes() {
	for _, scope := range c.original.OAuthScopes {
		if !slices.Contains(c.updated.OAuthScopes, scope) {
			c.container.Add(findings.OAuthScopeRemoval, findings.ChangeTypeMajor,
				fmt.Sprintf("An existing oauth_scope `%s` is removed.", scope), c.original.Location())
		}
	}
	for _, scope := range c.updated.OAuthScopes {
		if !slices.Contains(c.original.OAuthScopes, scope) {
			c.container.Add(findings.OAuthScopeAddition, findings.ChangeTypeMinor,
				fmt.Sprintf("A new oauth_scope `%s` is added.", scope), c.updated.Location())
		}
	}
}

func (c *ServiceComparator) compareMethod(original, updated *schema.Method) error {
	switch {
	case original == nil && updated == nil:
		return errBothAbsent("method")
	case original == nil:
		c.container.Add(findings.MethodAddition, findings.ChangeTypeMinor,
			fmt.Sprintf("A new rpc method `%s` is added.", updated.Name), updated.Location())
		return nil
	case updated == nil:
		c.container.Add(findings.MethodRemoval, findings.ChangeTypeMajor,
			fmt.Sprintf("An existing rpc method `%s` is removed.", original.Name), original.Location())
		return nil
	}

	// Input and output types tolerate version promotions like field types do.
	if original.InputType != updated.InputType &&
		transformedName(original.InputType, original.APIVersion, updated.APIVersion) != updated.InputType {
		c.container.Add(findings.MethodInputTypeChange, findings.ChangeTypeMajor,
			fmt.Sprintf("Input type of an existing method `%s` is changed from `%s` to `%s`.",
				original.Name, original.InputType, updated.InputType),
			updated.Location())
	}
	if original.OutputType != updated.OutputType &&
		transformedName(original.OutputType, original.APIVersion, updated.APIVersion) != updated.OutputType {
		c.container.Add(findings.MethodResponseTypeChange, findings.ChangeTypeMajor,
			fmt.Sprintf("Output type of an existing method `%s` is changed from `%s` to `%s`.",
				original.Name, original.OutputType, updated.OutputType),
			updated.Location())
	}

	if original.ClientStreaming != updated.ClientStreaming {
		c.container.Add(findings.MethodClientStreamingChange, findings.ChangeTypeMajor,
			fmt.Sprintf("The request streaming type of an existing method `%s` is changed.", original.Name),
			updated.Location())
	}
	if original.ServerStreaming != updated.ServerStreaming {
		c.container.Add(findings.MethodServerStreamingChange, findings.ChangeTypeMajor,
			fmt.Sprintf("The response streaming type of an existing method `%s` is changed.", original.Name),
			updated.Location())
	}

	if (original.PagedResultField() != nil) != (updated.PagedResultField() != nil) {
		c.container.Add(findings.MethodPaginatedResponseChange, findings.ChangeTypeMajor,
			fmt.Sprintf("The paginated response of an existing method `%s` is changed.", original.Name),
			updated.Location())
	}

	c.compareMethodSignatures(original, updated)
	if err := c.compareLRO(original, updated); err != nil {
		return err
	}
	c.compareHTTPAnnotation(original, updated)
	return nil
}

// compareMethodSignatures compares the google.api.method_signature
// annotations positionally: client library surfaces are generated from the
// declaration order, so a reorder is as breaking as a removal.
func (c *ServiceComparator) compareMethodSignatures(original, updated *schema.Method) {
	for i, signature := range original.MethodSignatures {
		if i >= len(updated.MethodSignatures) {
			c.container.Add(findings.MethodSignatureChange, findings.ChangeTypeMajor,
				fmt.Sprintf("An existing method_signature is removed from method `%s`.", original.Name),
				updated.Location())
			continue
		}
		if signature != updated.MethodSignatures[i] {
			c.container.Add(findings.MethodSignatureChange, findings.ChangeTypeMajor,
				fmt.Sprintf("An existing method_signature for method `%s` is changed from `%s` to `%s`.",
					original.Name, signature, updated.MethodSignatures[i]),
				updated.Location())
		}
	}
}

func (c *ServiceComparator) compareLRO(original, updated *schema.Method) error {
	if !original.Longrunning() && !updated.Longrunning() {
		return nil
	}
	// A method returning google.longrunning.Operation must declare the
	// operation_info annotation; comparing without it is impossible.
	if original.Longrunning() && original.LRO == nil {
		return &MissingOperationInfoError{Method: original.Name}
	}
	if updated.Longrunning() && updated.LRO == nil {
		return &MissingOperationInfoError{Method: updated.Name}
	}
	switch {
	case original.LRO == nil:
		c.container.Add(findings.LROAnnotationAddition, findings.ChangeTypeMinor,
			fmt.Sprintf("A LRO operation_info annotation is added to method `%s`.", updated.Name),
			updated.Location())
		return nil
	case updated.LRO == nil:
		c.container.Add(findings.LROAnnotationRemoval, findings.ChangeTypeMajor,
			fmt.Sprintf("An existing LRO operation_info annotation is removed from method `%s`.", original.Name),
			original.Location())
		return nil
	}
	if original.LRO.GetResponseType() != updated.LRO.GetResponseType() {
		c.container.Add(findings.LROResponseChange, findings.ChangeTypeMajor,
			fmt.Sprintf("The response_type of an existing LRO operation_info annotation for method `%s` is changed from `%s` to `%s`.",
				original.Name, original.LRO.GetResponseType(), updated.LRO.GetResponseType()),
			updated.Location())
	}
	if original.LRO.GetMetadataType() != updated.LRO.GetMetadataType() {
		c.container.Add(findings.LROMetadataChange, findings.ChangeTypeMajor,
			fmt.Sprintf("The metadata_type of an existing LRO operation_info annotation for method `%s` is changed from `%s` to `%s`.",
				original.Name, original.LRO.GetMetadataType(), updated.LRO.GetMetadataType()),
			updated.Location())
	}
	return nil
}

func (c *ServiceComparator) compareHTTPAnnotation(original, updated *schema.Method) {
	switch {
	case original.HTTPAnnotation == nil && updated.HTTPAnnotation == nil:
	case original.HTTPAnnotation == nil:
		c.container.Add(findings.HTTPAnnotationAddition, findings.ChangeTypeMinor,
			fmt.Sprintf("A new http annotation is added to method `%s`.", updated.Name),
			updated.Location())
	case updated.HTTPAnnotation == nil:
		c.container.Add(findings.HTTPAnnotationRemoval, findings.ChangeTypeMajor,
			fmt.Sprintf("An existing http annotation of method `%s` is removed.", original.Name),
			original.Location())
	case *original.HTTPAnnotation != *updated.HTTPAnnotation:
		c.container.Add(findings.HTTPAnnotationChange, findings.ChangeTypeMajor,
			fmt.Sprintf("An existing http annotation of method `%s` is changed.", original.Name),
			updated.Location())
	}
}
