package tracker

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"github.com/google/uuid"

	"github.com/seqstack-labs/flowsync/pkg/illumina"
)

// FlowCell is a flow-cell record as stored by the tracking service.
type FlowCell struct {
	UUID              uuid.UUID                 `json:"sodar_uuid"`
	RunDate           string                    `json:"run_date"`
	RunNumber         int                       `json:"run_number"`
	Slot              string                    `json:"slot"`
	VendorID          string                    `json:"vendor_id"`
	Label             string                    `json:"label"`
	SequencingMachine string                    `json:"sequencing_machine"`
	NumLanes          int                       `json:"num_lanes"`
	Operator          string                    `json:"operator"`
	RTAVersion        int                       `json:"rta_version"`
	StatusSequencing  illumina.SequencingStatus `json:"status_sequencing"`
	StatusConversion  string                    `json:"status_conversion"`
	StatusDelivery    string                    `json:"status_delivery"`
	DeliveryType      string                    `json:"delivery_type"`
	PlannedReads      string                    `json:"planned_reads"`
	CurrentReads      string                    `json:"current_reads"`
	// IndexHistogramReads lists the index read positions the service
	// already stores histograms for.
	IndexHistogramReads []int `json:"index_histogram_reads"`
}

// HasHistogram reports whether the service already stores a histogram
// for the given index read position.
func (fc *FlowCell) HasHistogram(indexReadNo int) bool {
	return slices.Contains(fc.IndexHistogramReads, indexReadNo)
}

// Payload returns the write representation of the stored record. Updates
// start from it so fields this tool does not manage survive the PUT.
func (fc *FlowCell) Payload() *FlowCellPayload {
	return &FlowCellPayload{
		RunDate:           fc.RunDate,
		RunNumber:         fc.RunNumber,
		Slot:              fc.Slot,
		VendorID:          fc.VendorID,
		Label:             fc.Label,
		SequencingMachine: fc.SequencingMachine,
		NumLanes:          fc.NumLanes,
		Operator:          fc.Operator,
		RTAVersion:        fc.RTAVersion,
		StatusSequencing:  fc.StatusSequencing,
		StatusConversion:  fc.StatusConversion,
		StatusDelivery:    fc.StatusDelivery,
		DeliveryType:      fc.DeliveryType,
		PlannedReads:      fc.PlannedReads,
		CurrentReads:      fc.CurrentReads,
	}
}

// FlowCellPayload is the write representation of a flow cell.
type FlowCellPayload struct {
	RunDate           string                    `json:"run_date"`
	RunNumber         int                       `json:"run_number"`
	Slot              string                    `json:"slot"`
	VendorID          string                    `json:"vendor_id"`
	Label             string                    `json:"label"`
	SequencingMachine string                    `json:"sequencing_machine"`
	NumLanes          int                       `json:"num_lanes"`
	Operator          string                    `json:"operator"`
	RTAVersion        int                       `json:"rta_version"`
	StatusSequencing  illumina.SequencingStatus `json:"status_sequencing"`
	StatusConversion  string                    `json:"status_conversion"`
	StatusDelivery    string                    `json:"status_delivery"`
	DeliveryType      string                    `json:"delivery_type"`
	PlannedReads      string                    `json:"planned_reads"`
	CurrentReads      string                    `json:"current_reads"`
}

// NewPayload builds the write representation of a run directory's
// metadata. The sequencing status depends on what the service currently
// stores, so the caller derives and supplies it. Downstream lifecycle
// fields start at their initial states.
func NewPayload(d *illumina.Descriptor, operator string, status illumina.SequencingStatus) *FlowCellPayload {
	return &FlowCellPayload{
		RunDate:           d.RunDate,
		RunNumber:         d.RunNumber,
		Slot:              d.Slot,
		VendorID:          d.FlowCell,
		Label:             d.Label,
		SequencingMachine: d.Instrument,
		NumLanes:          d.Topology.Lanes,
		Operator:          operator,
		RTAVersion:        d.RTAMajorVersion(),
		StatusSequencing:  status,
		StatusConversion:  "initial",
		StatusDelivery:    "initial",
		DeliveryType:      "seq",
		PlannedReads:      illumina.DescribeReads(d.PlannedReads),
		CurrentReads:      illumina.DescribeReads(d.Reads),
	}
}

// HistogramPayload is one index histogram submission.
type HistogramPayload struct {
	FlowCell    uuid.UUID      `json:"flowcell"`
	IndexReadNo int            `json:"index_read_no"`
	SampleSize  int            `json:"sample_size"`
	Histogram   map[string]int `json:"histogram"`
}

// ResolveFlowCell looks up the flow cell identified by instrument, run
// number, and flow-cell vendor ID within a project. A missing record is
// an error satisfying IsNotFound.
func (c *Client) ResolveFlowCell(ctx context.Context, project uuid.UUID, instrument string, runNumber int, flowcell string) (*FlowCell, error) {
	query := url.Values{}
	query.Set("instrument", instrument)
	query.Set("run_number", strconv.Itoa(runNumber))
	query.Set("flowcell", flowcell)

	var fc FlowCell
	path := fmt.Sprintf("/api/flowcells/%s/resolve/?%s", project, query.Encode())
	if err := c.get(ctx, path, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

// CreateFlowCell registers a new flow cell in the project and returns
// the stored record.
func (c *Client) CreateFlowCell(ctx context.Context, project uuid.UUID, payload *FlowCellPayload) (*FlowCell, error) {
	var fc FlowCell
	path := fmt.Sprintf("/api/flowcells/%s/", project)
	if err := c.post(ctx, path, payload, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

// UpdateFlowCell rewrites an existing flow cell and returns the stored
// record.
func (c *Client) UpdateFlowCell(ctx context.Context, project, flowcell uuid.UUID, payload *FlowCellPayload) (*FlowCell, error) {
	var fc FlowCell
	path := fmt.Sprintf("/api/flowcells/%s/%s/", project, flowcell)
	if err := c.put(ctx, path, payload, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

// SubmitHistogram stores one index histogram for a flow cell.
func (c *Client) SubmitHistogram(ctx context.Context, project uuid.UUID, payload *HistogramPayload) error {
	path := fmt.Sprintf("/api/indexhistos/%s/%s/", project, payload.FlowCell)
	return c.post(ctx, path, payload, nil)
}
