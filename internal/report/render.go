// Package report renders ingestion results for terminals and scripts.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/seqstack-labs/flowsync/internal/ingest"
)

var printer = message.NewPrinter(language.English)

// Render writes result to w in the given format. FormatAuto resolves
// against w before rendering.
func Render(w io.Writer, result *ingest.Result, format Format) error {
	switch format.Resolve(w) {
	case FormatJSON:
		return renderJSON(w, result)
	case FormatYAML:
		return renderYAML(w, result)
	default:
		return renderTable(w, result)
	}
}

// passReport is the serialized shape of an ingestion pass.
type passReport struct {
	Paths     []pathReport `json:"paths" yaml:"paths"`
	Succeeded int          `json:"succeeded" yaml:"succeeded"`
	Warnings  int          `json:"warnings" yaml:"warnings"`
	Failed    int          `json:"failed" yaml:"failed"`
	Duration  string       `json:"duration" yaml:"duration"`
}

// pathReport is the serialized shape of one run directory outcome.
type pathReport struct {
	Path           string   `json:"path" yaml:"path"`
	RunID          string   `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	FlowCell       string   `json:"flowcell,omitempty" yaml:"flowcell,omitempty"`
	Layout         string   `json:"layout,omitempty" yaml:"layout,omitempty"`
	Status         string   `json:"status" yaml:"status"`
	Decision       string   `json:"decision,omitempty" yaml:"decision,omitempty"`
	Sequencing     string   `json:"sequencing,omitempty" yaml:"sequencing,omitempty"`
	Histograms     int      `json:"histograms" yaml:"histograms"`
	TilesSampled   int      `json:"tiles_sampled,omitempty" yaml:"tiles_sampled,omitempty"`
	SkippedSamples int      `json:"skipped_samples,omitempty" yaml:"skipped_samples,omitempty"`
	Warnings       []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Error          string   `json:"error,omitempty" yaml:"error,omitempty"`
	Duration       string   `json:"duration" yaml:"duration"`
}

func buildReport(result *ingest.Result) passReport {
	succeeded, warned, failed := result.Counts()
	out := passReport{
		Paths:     make([]pathReport, 0, len(result.Outcomes)),
		Succeeded: succeeded,
		Warnings:  warned,
		Failed:    failed,
		Duration:  result.Duration.Round(time.Millisecond).String(),
	}
	for _, o := range result.Outcomes {
		out.Paths = append(out.Paths, pathReport{
			Path:           o.Path,
			RunID:          o.RunID,
			FlowCell:       o.FlowCell,
			Layout:         string(o.Layout),
			Status:         string(o.Status),
			Decision:       string(o.Decision),
			Sequencing:     string(o.Sequencing),
			Histograms:     o.Histograms,
			TilesSampled:   o.TilesSampled,
			SkippedSamples: o.SkippedSamples,
			Warnings:       o.Warnings,
			Error:          o.ErrorMessage(),
			Duration:       o.Duration.Round(time.Millisecond).String(),
		})
	}
	return out
}

func renderTable(w io.Writer, result *ingest.Result) error {
	titleCaser := cases.Title(language.English)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run", "Layout", "Status", "Decision", "Histograms", "Problem"})
	for _, o := range result.Outcomes {
		label := o.RunID
		if label == "" {
			label = o.Path
		}
		t.AppendRow(table.Row{
			label,
			string(o.Layout),
			titleCaser.String(string(o.Status)),
			string(o.Decision),
			o.Histograms,
			problemCell(&o),
		})
	}
	t.Render()

	succeeded, warned, failed := result.Counts()
	_, err := printer.Fprintf(w, "%d paths, %d succeeded, %d with warnings, %d failed (%s)\n",
		len(result.Outcomes), succeeded, warned, failed, result.Duration.Round(time.Millisecond))
	return err
}

func problemCell(o *ingest.PathOutcome) string {
	switch {
	case o.Err != nil:
		return o.Err.Error()
	case len(o.Warnings) == 1:
		return "1 warning"
	case len(o.Warnings) > 1:
		return fmt.Sprintf("%d warnings", len(o.Warnings))
	}
	return ""
}

func renderJSON(w io.Writer, result *ingest.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(buildReport(result))
}

func renderYAML(w io.Writer, result *ingest.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(buildReport(result)); err != nil {
		return err
	}
	return enc.Close()
}
