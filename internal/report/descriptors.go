package report

// descriptors.go - Rendering of run directory metadata for inspect.

import (
	"encoding/json"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/seqstack-labs/flowsync/pkg/illumina"
)

// descriptorView is the serialized shape of one run directory's
// metadata.
type descriptorView struct {
	Path         string `json:"path" yaml:"path"`
	RunID        string `json:"run_id" yaml:"run_id"`
	FlowCell     string `json:"flowcell" yaml:"flowcell"`
	Instrument   string `json:"instrument" yaml:"instrument"`
	RunNumber    int    `json:"run_number" yaml:"run_number"`
	RunDate      string `json:"run_date" yaml:"run_date"`
	Slot         string `json:"slot" yaml:"slot"`
	Label        string `json:"label,omitempty" yaml:"label,omitempty"`
	RTAVersion   string `json:"rta_version" yaml:"rta_version"`
	Layout       string `json:"layout" yaml:"layout"`
	Reads        string `json:"reads" yaml:"reads"`
	PlannedReads string `json:"planned_reads,omitempty" yaml:"planned_reads,omitempty"`
	Lanes        int    `json:"lanes" yaml:"lanes"`
	TilesPerLane int    `json:"tiles_per_lane" yaml:"tiles_per_lane"`
	Completed    bool   `json:"completed" yaml:"completed"`
}

func describeDescriptor(d *illumina.Descriptor) descriptorView {
	return descriptorView{
		Path:         d.Path,
		RunID:        d.RunID,
		FlowCell:     d.FlowCell,
		Instrument:   d.Instrument,
		RunNumber:    d.RunNumber,
		RunDate:      d.RunDate,
		Slot:         d.Slot,
		Label:        d.Label,
		RTAVersion:   d.RTAVersion,
		Layout:       string(d.Layout),
		Reads:        illumina.DescribeReads(d.Reads),
		PlannedReads: illumina.DescribeReads(d.PlannedReads),
		Lanes:        d.Topology.Lanes,
		TilesPerLane: len(d.Topology.TileNames()),
		Completed:    d.Completed,
	}
}

// RenderDescriptors writes run directory metadata to w. It serves the
// inspect path, which never contacts the tracking service.
func RenderDescriptors(w io.Writer, descs []*illumina.Descriptor, format Format) error {
	views := make([]descriptorView, 0, len(descs))
	for _, d := range descs {
		views = append(views, describeDescriptor(d))
	}

	switch format.Resolve(w) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return err
		}
		return enc.Close()
	default:
		return descriptorTable(w, views)
	}
}

func descriptorTable(w io.Writer, views []descriptorView) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run", "Layout", "Reads", "Lanes", "Tiles/Lane", "RTA", "Complete"})
	for _, v := range views {
		complete := "no"
		if v.Completed {
			complete = "yes"
		}
		t.AppendRow(table.Row{v.RunID, v.Layout, v.Reads, v.Lanes, v.TilesPerLane, v.RTAVersion, complete})
	}
	t.Render()
	return nil
}
