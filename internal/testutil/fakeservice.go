package testutil

// fakeservice.go - In-memory tracking service for pipeline tests.

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/seqstack-labs/flowsync/internal/tracker"
)

// FakeTracker is an in-memory stand-in for the tracking service. It
// stores at most one flow-cell record and counts every write.
type FakeTracker struct {
	mu         sync.Mutex
	record     *tracker.FlowCell
	registered int
	updated    int
	histograms []*tracker.HistogramPayload
	server     *httptest.Server
}

// NewFakeTracker starts the fake service, seeded with record (nil for
// an unknown flow cell). The server shuts down with the test.
func NewFakeTracker(t testing.TB, record *tracker.FlowCell) *FakeTracker {
	t.Helper()
	fake := &FakeTracker{record: record}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/flowcells/{project}/resolve/", func(w http.ResponseWriter, r *http.Request) {
		fake.mu.Lock()
		defer fake.mu.Unlock()
		if fake.record == nil || r.URL.Query().Get("flowcell") != fake.record.VendorID {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"detail": "Not found."}`)
			return
		}
		json.NewEncoder(w).Encode(fake.record)
	})
	mux.HandleFunc("POST /api/flowcells/{project}/", func(w http.ResponseWriter, r *http.Request) {
		fake.mu.Lock()
		defer fake.mu.Unlock()
		var payload tracker.FlowCellPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fake.registered++
		fake.record = flowCellFromPayload(uuid.New(), &payload)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(fake.record)
	})
	mux.HandleFunc("PUT /api/flowcells/{project}/{uuid}/", func(w http.ResponseWriter, r *http.Request) {
		fake.mu.Lock()
		defer fake.mu.Unlock()
		if fake.record == nil || r.PathValue("uuid") != fake.record.UUID.String() {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"detail": "Not found."}`)
			return
		}
		var payload tracker.FlowCellPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fake.updated++
		fake.record = flowCellFromPayload(fake.record.UUID, &payload)
		json.NewEncoder(w).Encode(fake.record)
	})
	mux.HandleFunc("POST /api/indexhistos/{project}/{uuid}/", func(w http.ResponseWriter, r *http.Request) {
		fake.mu.Lock()
		defer fake.mu.Unlock()
		var payload tracker.HistogramPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fake.histograms = append(fake.histograms, &payload)
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{}`)
	})

	fake.server = httptest.NewServer(mux)
	t.Cleanup(fake.server.Close)
	return fake
}

// URL returns the fake service's base URL.
func (f *FakeTracker) URL() string {
	return f.server.URL
}

// Client returns a tracker client pointed at the fake service.
func (f *FakeTracker) Client(t testing.TB) *tracker.Client {
	t.Helper()
	client, err := tracker.NewClient(tracker.Config{
		BaseURL: f.server.URL,
		Token:   "secret",
		Logger:  NewTestLogger(t),
	})
	if err != nil {
		t.Fatal(err)
	}
	return client
}

// Counts returns how many register, update, and histogram writes the
// service received.
func (f *FakeTracker) Counts() (registered, updated, histograms int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registered, f.updated, len(f.histograms)
}

// StoredRecord returns the current flow-cell record, nil when none is
// stored.
func (f *FakeTracker) StoredRecord() *tracker.FlowCell {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record
}

// SubmittedHistograms returns the histogram payloads in arrival order.
func (f *FakeTracker) SubmittedHistograms() []*tracker.HistogramPayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.histograms
}

func flowCellFromPayload(id uuid.UUID, p *tracker.FlowCellPayload) *tracker.FlowCell {
	return &tracker.FlowCell{
		UUID:              id,
		RunDate:           p.RunDate,
		RunNumber:         p.RunNumber,
		Slot:              p.Slot,
		VendorID:          p.VendorID,
		Label:             p.Label,
		SequencingMachine: p.SequencingMachine,
		NumLanes:          p.NumLanes,
		Operator:          p.Operator,
		RTAVersion:        p.RTAVersion,
		StatusSequencing:  p.StatusSequencing,
		StatusConversion:  p.StatusConversion,
		StatusDelivery:    p.StatusDelivery,
		DeliveryType:      p.DeliveryType,
		PlannedReads:      p.PlannedReads,
		CurrentReads:      p.CurrentReads,
	}
}
