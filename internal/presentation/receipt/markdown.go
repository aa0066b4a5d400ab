// Package receipt renders benefit receipts as markdown for the CLI chat
// and the HTTP receipt endpoint.
package receipt

import (
	"fmt"
	"strings"

	"github.com/opencivic/sahayak/pkg/domain"
)

// Markdown renders a receipt as a markdown document: verdict, a rule
// trace table in declaration order, and the source citations.
func Markdown(r *domain.BenefitReceipt) string {
	var b strings.Builder

	verdict := "Not eligible"
	if r.Eligible {
		verdict = "Eligible"
	}

	fmt.Fprintf(&b, "# Benefit Receipt: %s\n\n", r.Scheme)
	fmt.Fprintf(&b, "**Verdict:** %s (confidence %.2f)\n\n", verdict, r.Confidence)

	if len(r.Trace) > 0 {
		b.WriteString("| Check | Rule | Result | Your answer | Required |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, entry := range r.Trace {
			result := "FAIL"
			if entry.Pass {
				result = "PASS"
			}
			label := entry.Label
			if label == "" {
				label = entry.Rule
			}
			fmt.Fprintf(&b, "| %s | `%s` | %s | %v | %v |\n",
				cell(label), cell(entry.Rule), result, entry.UserValue, entry.RequiredValue)
		}
		b.WriteString("\n")
	}

	if len(r.Sources) > 0 {
		b.WriteString("## Sources\n\n")
		for _, src := range r.Sources {
			fmt.Fprintf(&b, "- %s\n", src)
		}
	}

	return b.String()
}

// cell escapes pipes so rule expressions cannot break the table.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
