package output

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// TargetSummary is one row of the build summary table.
type TargetSummary struct {
	Target    string
	Artifacts int
	Pruned    int
	Sources   int
	Aliases   int
}

// WriteSummary prints a per-target table of what a build produced.
func WriteSummary(w io.Writer, rows []TargetSummary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Target", "Artifacts", "Pruned", "Sources", "Aliases"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})

	var artifacts, pruned int

	for _, r := range rows {
		table.Append([]string{
			r.Target,
			fmt.Sprintf("%d", r.Artifacts),
			fmt.Sprintf("%d", r.Pruned),
			fmt.Sprintf("%d", r.Sources),
			fmt.Sprintf("%d", r.Aliases),
		})

		artifacts += r.Artifacts
		pruned += r.Pruned
	}

	table.SetFooter([]string{
		fmt.Sprintf("%d targets", len(rows)),
		fmt.Sprintf("%d", artifacts),
		fmt.Sprintf("%d", pruned),
		"",
		"",
	})

	table.Render()
}
