package findings

import (
	"encoding/json"
	"sync"
)

// Container is an append-only accumulator for findings. Comparators append
// into a shared container during a comparison pass; the driver drains it at
// the end. Add is safe for concurrent use so a driver may fan out independent
// comparator invocations across goroutines.
type Container struct {
	mu       sync.Mutex
	findings []Finding
}

// NewContainer creates an empty findings container.
func NewContainer() *Container {
	return &Container{}
}

// Add appends one finding to the container.
func (c *Container) Add(category FindingCategory, changeType ChangeType, message string, loc Location) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.findings = append(c.findings, Finding{
		Category:   category,
		ChangeType: changeType,
		Message:    message,
		Location:   loc,
	})
}

// All returns a copy of every accumulated finding in insertion order.
func (c *Container) All() []Finding {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Finding, len(c.findings))
	copy(out, c.findings)
	return out
}

// Actionable returns only the breaking (major) findings.
func (c *Container) Actionable() []Finding {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Finding
	for _, f := range c.findings {
		if f.ChangeType == ChangeTypeMajor {
			out = append(out, f)
		}
	}
	return out
}

// Len returns the number of accumulated findings.
func (c *Container) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.findings)
}

// Reset discards all accumulated findings. Used to isolate independent
// comparison runs.
func (c *Container) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.findings = nil
}

// MarshalJSON serializes the accumulated findings as a JSON array.
func (c *Container) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.All())
}
