package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/nathantilsley/chart-pin/internal/pin/domain"
)

var statusColor = map[domain.Status]*color.Color{
	domain.StatusUpdated: color.New(color.FgGreen, color.Bold),
	domain.StatusPlanned: color.New(color.FgCyan, color.Bold),
	domain.StatusCurrent: color.New(color.Faint),
	domain.StatusSkipped: color.New(color.FgYellow),
	domain.StatusFailed:  color.New(color.FgRed, color.Bold),
}

// printReport writes one line per manifest, the diff of every change and
// a closing summary.
func printReport(w io.Writer, report domain.Report, dirs []string) {
	if len(report.Results) == 0 {
		fmt.Fprintf(w, "No Application manifests found in %s\n", strings.Join(dirs, ", "))
		return
	}

	for _, res := range report.Results {
		label := fmt.Sprintf("%-8s", strings.ToUpper(res.Status.String()))
		fmt.Fprintf(w, "%s %s  %s\n", statusColor[res.Status].Sprint(label), res.Path, describe(res))
		if res.Diff != "" {
			for _, line := range strings.Split(res.Diff, "\n") {
				fmt.Fprintf(w, "    %s\n", colorDiffLine(line))
			}
		}
	}

	counts := report.Counts()
	fmt.Fprintf(w, "\n%d manifest(s): %d updated, %d planned, %d current, %d skipped, %d failed\n",
		len(report.Results),
		counts[domain.StatusUpdated],
		counts[domain.StatusPlanned],
		counts[domain.StatusCurrent],
		counts[domain.StatusSkipped],
		counts[domain.StatusFailed],
	)
	if report.DryRun {
		color.New(color.FgCyan).Fprintln(w, "Dry run: no files were written.")
	}
}

func describe(res domain.Result) string {
	switch res.Status {
	case domain.StatusUpdated, domain.StatusPlanned:
		return fmt.Sprintf("%s %s -> %s", res.Chart, res.OldVersion, res.NewVersion)
	case domain.StatusCurrent:
		return fmt.Sprintf("%s %s", res.Chart, res.OldVersion)
	case domain.StatusFailed:
		return res.Reason
	default:
		return fmt.Sprintf("%s (%s)", res.Chart, res.Reason)
	}
}

func colorDiffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		return color.New(color.Bold).Sprint(line)
	case strings.HasPrefix(line, "+"):
		return color.GreenString(line)
	case strings.HasPrefix(line, "-"):
		return color.RedString(line)
	case strings.HasPrefix(line, "@@"):
		return color.CyanString(line)
	}
	return line
}
