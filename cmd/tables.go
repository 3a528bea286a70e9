package cmd

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/achilleasa/radiance/cache/sizing"
	"github.com/achilleasa/radiance/scenario"
	"github.com/achilleasa/radiance/telemetry"
)

func newTable(buf *bytes.Buffer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader(header)
	return table
}

// Render the epoch boundaries of a run.
func epochTable(summary *scenario.Summary) string {
	var buf bytes.Buffer
	table := newTable(&buf, "Frame", "Training", "Bound", "Coverage", "Smoothed samples", "Scale", "Iterations", "Resized")
	for _, stats := range summary.EpochRows() {
		table.Append([]string{
			fmt.Sprintf("%d", stats.Frame),
			stats.Training.String(),
			stats.Bound.String(),
			fmt.Sprintf("%.2f x %.2f", stats.BoundCoverage[0], stats.BoundCoverage[1]),
			humanize.Comma(int64(stats.SmoothedSamples)),
			fmt.Sprintf("%.3f", stats.Scale),
			fmt.Sprintf("%d", stats.Iterations),
			fmt.Sprintf("%t", stats.Resized),
		})
	}
	table.Render()
	return buf.String()
}

// Render the outcome of one or more runs.
func summaryTable(summaries ...*scenario.Summary) string {
	var buf bytes.Buffer
	table := newTable(&buf, "Scenario", "Frames", "Final workload", "Samples", "Iterations", "Resizes", "Resets", "Frames to converge")
	for _, summary := range summaries {
		converge := "never"
		if summary.Converged {
			converge = fmt.Sprintf("%d", summary.FramesToConverge())
		}
		table.Append([]string{
			summary.Name,
			humanize.Comma(int64(summary.Frames)),
			summary.Final.Training.String(),
			humanize.Comma(int64(summary.Final.RawSamples)),
			fmt.Sprintf("%d", summary.Final.Iterations),
			fmt.Sprintf("%d", summary.Resizes),
			formatResets(summary.Resets),
			converge,
		})
	}
	table.Render()
	return buf.String()
}

func formatResets(resets map[sizing.ResetReason]int) string {
	reasons := make([]sizing.ResetReason, 0, len(resets))
	for reason := range resets {
		reasons = append(reasons, reason)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })

	var buf bytes.Buffer
	for i, reason := range reasons {
		if i != 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s=%d", reason, resets[reason])
	}
	return buf.String()
}

// Render the list of stored runs.
func runTable(runs []telemetry.Run) string {
	var buf bytes.Buffer
	table := newTable(&buf, "Run", "Scenario", "Started", "Frames")
	for _, run := range runs {
		table.Append([]string{
			run.ID,
			run.Name,
			humanize.Time(run.StartedAt),
			humanize.Comma(int64(run.Frames)),
		})
	}
	table.Render()
	return buf.String()
}

// Render stored frame records. Unless all is set only frames that reset
// the controller or committed new dimensions are listed.
func frameTable(records []telemetry.Record, all bool) string {
	var buf bytes.Buffer
	table := newTable(&buf, "Frame", "Phase", "Reset reason", "Training", "Bound", "Raw samples", "Smoothed samples", "Iterations")
	for _, rec := range records {
		if !all && rec.ResetReason == "" && !rec.Resized {
			continue
		}
		table.Append([]string{
			fmt.Sprintf("%d", rec.Frame),
			rec.Phase,
			rec.ResetReason,
			fmt.Sprintf("%dx%d", rec.Width, rec.Height),
			fmt.Sprintf("%dx%d", rec.BoundWidth, rec.BoundHeight),
			humanize.Comma(int64(rec.RawSamples)),
			humanize.Comma(int64(rec.SmoothedSamples)),
			fmt.Sprintf("%d", rec.Iterations),
		})
	}
	table.Render()
	return buf.String()
}
