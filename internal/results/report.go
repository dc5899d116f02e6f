// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package results

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/bbwen/molexplain/pkg/types"
)

// formatValue renders a metric score; undefined scores print as n/a.
func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}

// formatThreshold renders the decision threshold; the sentinel prints as a
// dash.
func formatThreshold(t float64) string {
	if t == types.NoThreshold {
		return "-"
	}
	return fmt.Sprintf("%.2f", t)
}

// WriteRun prints one run in detail.
func WriteRun(w io.Writer, run Run) {
	fmt.Fprintf(w, "Run %d: %s (%s, %d molecules, %s)\n",
		run.ID, run.Dataset, run.Normalizer, run.Molecules,
		run.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "  threshold: %s\n", formatThreshold(run.Report.Threshold))
	for _, m := range run.Report.Metrics {
		fmt.Fprintf(w, "  %-10s %s\n", m.Name, formatValue(m.Value))
	}
}

// WriteTable prints runs as an aligned listing, one line per run.
func WriteTable(w io.Writer, runs []Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "no runs recorded")
		return
	}
	fmt.Fprintf(w, "%-5s %-16s %-10s %-6s %-5s %s\n",
		"ID", "DATASET", "NORMALIZER", "MOLS", "T", "METRICS")
	for _, run := range runs {
		parts := make([]string, 0, len(run.Report.Metrics))
		for _, m := range run.Report.Metrics {
			parts = append(parts, fmt.Sprintf("%s=%s", m.Name, formatValue(m.Value)))
		}
		fmt.Fprintf(w, "%-5d %-16s %-10s %-6d %-5s %s\n",
			run.ID, run.Dataset, run.Normalizer, run.Molecules,
			formatThreshold(run.Report.Threshold), strings.Join(parts, "  "))
	}
}

// WriteMarkdownReport renders runs as a Markdown document with one summary
// table per dataset, the shape shared with collaborators.
func WriteMarkdownReport(w io.Writer, runs []Run) {
	fmt.Fprintf(w, "# Attribution Evaluation Report\n\n")
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	byDataset := make(map[string][]Run)
	var datasets []string
	for _, run := range runs {
		if _, ok := byDataset[run.Dataset]; !ok {
			datasets = append(datasets, run.Dataset)
		}
		byDataset[run.Dataset] = append(byDataset[run.Dataset], run)
	}
	sort.Strings(datasets)

	for _, ds := range datasets {
		group := byDataset[ds]

		// Metric columns follow the insertion order of the first run.
		var names []string
		for _, m := range group[0].Report.Metrics {
			names = append(names, m.Name)
		}

		fmt.Fprintf(w, "## %s\n\n", ds)
		fmt.Fprintf(w, "| Run | Normalizer | Threshold | %s |\n", strings.Join(names, " | "))
		fmt.Fprintf(w, "|---|---|---|%s|\n", strings.Repeat("---|", len(names)))
		for _, run := range group {
			cells := make([]string, 0, len(names))
			for _, name := range names {
				if v, ok := run.Report.Get(name); ok {
					cells = append(cells, formatValue(v))
				} else {
					cells = append(cells, "-")
				}
			}
			fmt.Fprintf(w, "| %d | %s | %s | %s |\n",
				run.ID, run.Normalizer, formatThreshold(run.Report.Threshold),
				strings.Join(cells, " | "))
		}
		fmt.Fprintln(w)
	}
}
