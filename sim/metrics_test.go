package sim

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// metricsFixture builds a fake network with a two-lane northbound edge "nb"
// and a single-lane southbound edge "sb".
func metricsFixture(t *testing.T) (*fakeAPI, *MetricsCollector) {
	t.Helper()
	api := newFakeAPI()
	api.edges = []string{"nb", "sb"}
	api.edgeLanes["nb"] = 2
	api.edgeLanes["sb"] = 1
	api.addLane("nb_0", "nb", 500)
	api.addLane("nb_1", "nb", 500)
	api.addLane("sb_0", "sb", 500)

	mc, err := NewMetricsCollector(api, []string{"nb"}, []string{"sb"})
	if err != nil {
		t.Fatalf("NewMetricsCollector: %v", err)
	}
	return api, mc
}

func TestMetricsCollector_Collect_EmptyNetwork(t *testing.T) {
	api, mc := metricsFixture(t)
	api.edgeCount["nb"] = 0
	api.edgeSpeed["nb"] = 0
	api.edgeCount["sb"] = 0
	api.edgeSpeed["sb"] = 0

	row, err := mc.Collect(7)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if row.Step != 7 {
		t.Errorf("Step: got %d, want 7", row.Step)
	}
	if row.VehicleCount != 0 || row.MeanSpeed != 0 || row.MeanGap != 0 {
		t.Errorf("empty network produced non-zero aggregates: %+v", row)
	}
}

func TestMetricsCollector_Collect_MeanSpeedOverAllVehicles(t *testing.T) {
	// GIVEN three vehicles at 10, 20 and 30 m/s
	api, mc := metricsFixture(t)
	api.addVehicle("a", "nb_0", "passenger", 100, 10)
	api.addVehicle("b", "nb_0", "passenger", 200, 20)
	api.addVehicle("c", "sb_0", "passenger", 300, 30)
	api.edgeCount["nb"] = 2
	api.edgeSpeed["nb"] = 15
	api.edgeCount["sb"] = 1
	api.edgeSpeed["sb"] = 30

	row, err := mc.Collect(1)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if row.VehicleCount != 3 {
		t.Errorf("VehicleCount: got %d, want 3", row.VehicleCount)
	}
	if !almostEqual(row.MeanSpeed, 20) {
		t.Errorf("MeanSpeed: got %v, want 20", row.MeanSpeed)
	}
}

func TestMetricsCollector_MeanGap_PoolsLanesSortedDownstream(t *testing.T) {
	// GIVEN northbound vehicles at pooled positions 400, 250 and 100
	// (spread across both lanes)
	api, mc := metricsFixture(t)
	api.addVehicle("a", "nb_0", "passenger", 400, 10)
	api.addVehicle("b", "nb_1", "passenger", 250, 10)
	api.addVehicle("c", "nb_0", "passenger", 100, 10)

	gap, err := mc.meanGap([]string{"nb"})
	if err != nil {
		t.Fatalf("meanGap: %v", err)
	}

	// THEN gaps are 150 and 150, mean 150
	if !almostEqual(gap, 150) {
		t.Errorf("meanGap: got %v, want 150", gap)
	}
}

func TestMetricsCollector_MeanGap_FewerThanTwoVehicles_IsZero(t *testing.T) {
	api, mc := metricsFixture(t)
	api.addVehicle("a", "nb_0", "passenger", 400, 10)

	gap, err := mc.meanGap([]string{"nb"})
	if err != nil {
		t.Fatalf("meanGap: %v", err)
	}
	if gap != 0 {
		t.Errorf("meanGap with one vehicle: got %v, want 0", gap)
	}
}

func TestMetricsCollector_DirectionStats_CountWeightedSpeed(t *testing.T) {
	// GIVEN two edges in one direction: 3 vehicles at 10 m/s, 1 at 30 m/s
	api := newFakeAPI()
	api.edges = []string{"e1", "e2"}
	api.edgeCount["e1"] = 3
	api.edgeSpeed["e1"] = 10
	api.edgeCount["e2"] = 1
	api.edgeSpeed["e2"] = 30
	mc, err := NewMetricsCollector(api, []string{"e1", "e2"}, nil)
	if err != nil {
		t.Fatalf("NewMetricsCollector: %v", err)
	}

	flow, speed, err := mc.directionStats([]string{"e1", "e2"})
	if err != nil {
		t.Fatalf("directionStats: %v", err)
	}

	if flow != 4 {
		t.Errorf("flow: got %d, want 4", flow)
	}
	if !almostEqual(speed, 15) { // (3*10 + 1*30) / 4
		t.Errorf("weighted speed: got %v, want 15", speed)
	}
}

func TestMetricsCollector_UnknownEdge_SkippedNotFatal(t *testing.T) {
	// GIVEN a configured edge the loaded network does not contain
	api := newFakeAPI()
	api.edges = []string{"e1"}
	api.edgeCount["e1"] = 2
	api.edgeSpeed["e1"] = 10
	mc, err := NewMetricsCollector(api, []string{"e1", "missing"}, nil)
	if err != nil {
		t.Fatalf("NewMetricsCollector: %v", err)
	}

	flow, _, err := mc.directionStats(mc.Northbound)
	if err != nil {
		t.Fatalf("directionStats: %v", err)
	}
	if flow != 2 {
		t.Errorf("flow: got %d, want 2 (missing edge skipped)", flow)
	}
}

func TestCSVSink_WritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")
	sink, err := NewCSVSink(path)
	if err != nil {
		t.Fatalf("NewCSVSink: %v", err)
	}

	row := MetricsRow{Step: 1, VehicleCount: 4, MeanGap: 37.5, NorthboundFlow: 3, SouthboundFlow: 1, NorthboundSpeed: 12.0, SouthboundSpeed: 8.0, MeanSpeed: 11.0}
	if err := sink.Append(row); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("line count: got %d, want 2\n%s", len(lines), data)
	}
	wantHeader := "step,num_vehicles,avg_intervehicular_distance_northbound,northbound_flow,southbound_flow,northbound_speed,southbound_speed,average_speed_all_vehicles"
	if lines[0] != wantHeader {
		t.Errorf("header: got %q, want %q", lines[0], wantHeader)
	}
	wantRow := "1,4,37.5000,3,1,12.0000,8.0000,11.0000"
	if lines[1] != wantRow {
		t.Errorf("row: got %q, want %q", lines[1], wantRow)
	}
}

// recordingSink captures rows in memory for assertions.
type recordingSink struct {
	rows   []MetricsRow
	closed bool
}

func (r *recordingSink) Append(row MetricsRow) error { r.rows = append(r.rows, row); return nil }
func (r *recordingSink) Close() error                { r.closed = true; return nil }

func TestMultiSink_FansOut(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	multi := MultiSink{a, b}

	if err := multi.Append(MetricsRow{Step: 1}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := multi.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if len(a.rows) != 1 || len(b.rows) != 1 {
		t.Errorf("row counts: got %d/%d, want 1/1", len(a.rows), len(b.rows))
	}
	if !a.closed || !b.closed {
		t.Error("Close did not reach every sink")
	}
}
