package detector

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/platinummonkey/protodetect/pkg/findings"
)

// Summary aggregates finding counts for a detection run.
type Summary struct {
	Total      int            `json:"total"`
	Major      int            `json:"major"`
	Minor      int            `json:"minor"`
	Patch      int            `json:"patch"`
	ByCategory map[string]int `json:"by_category"`
}

// Report is the result of one detection run.
type Report struct {
	RunID           string             `json:"run_id"`
	GeneratedAt     time.Time          `json:"generated_at"`
	OriginalVersion string             `json:"original_version,omitempty"`
	UpdatedVersion  string             `json:"updated_version,omitempty"`
	Findings        []findings.Finding `json:"findings"`
	Summary         Summary            `json:"summary"`
}

// Breaking reports whether the run detected any backward-incompatible change.
func (r *Report) Breaking() bool {
	return r.Summary.Major > 0
}

// Actionable returns only the breaking findings.
func (r *Report) Actionable() []findings.Finding {
	var out []findings.Finding
	for _, f := range r.Findings {
		if f.Breaking() {
			out = append(out, f)
		}
	}
	return out
}

// WriteJSON writes the findings as a JSON array to path. The file holds the
// findings only, not the full report envelope, so other tooling can consume
// it as a plain list.
func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r.Findings, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding findings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing findings to %q: %w", path, err)
	}
	return nil
}

// HumanReadable renders the report as text for terminal output.
func (r *Report) HumanReadable() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Breaking Change Detection\n")
	fmt.Fprintf(&b, "Result: ")
	if r.Breaking() {
		fmt.Fprintf(&b, "BREAKING\n\n")
	} else {
		fmt.Fprintf(&b, "COMPATIBLE\n\n")
	}

	fmt.Fprintf(&b, "Summary:\n")
	fmt.Fprintf(&b, "  Total Findings: %d\n", r.Summary.Total)
	fmt.Fprintf(&b, "  Major:          %d\n", r.Summary.Major)
	fmt.Fprintf(&b, "  Minor:          %d\n", r.Summary.Minor)
	fmt.Fprintf(&b, "  Patch:          %d\n", r.Summary.Patch)

	if len(r.Summary.ByCategory) > 0 {
		categories := make([]string, 0, len(r.Summary.ByCategory))
		for c := range r.Summary.ByCategory {
			categories = append(categories, c)
		}
		sort.Strings(categories)
		fmt.Fprintf(&b, "\nFindings by category:\n")
		for _, c := range categories {
			fmt.Fprintf(&b, "  %-32s %d\n", c, r.Summary.ByCategory[c])
		}
	}

	if len(r.Findings) > 0 {
		fmt.Fprintf(&b, "\nFindings:\n\n")
		for _, f := range r.Findings {
			fmt.Fprintf(&b, "[%s] %s\n", f.ChangeType, f.Category)
			fmt.Fprintf(&b, "  Message:  %s\n", f.Message)
			if f.Location.ProtoFileName != "" {
				fmt.Fprintf(&b, "  Location: %s L%d\n", f.Location.ProtoFileName, f.Location.SourceCodeLine)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}
