package sim

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// MetricsRow is one per-tick record of aggregate network state. Rows are
// append-only: once emitted to a sink they are never mutated.
type MetricsRow struct {
	Step            int
	VehicleCount    int
	MeanGap         float64 // mean inter-vehicle gap on the northbound lanes, meters
	NorthboundFlow  int
	SouthboundFlow  int
	NorthboundSpeed float64 // m/s
	SouthboundSpeed float64 // m/s
	MeanSpeed       float64 // all vehicles, m/s
}

// metricsColumns is the CSV header, kept compatible with the analysis
// notebooks that consume these files.
var metricsColumns = []string{
	"step",
	"num_vehicles",
	"avg_intervehicular_distance_northbound",
	"northbound_flow",
	"southbound_flow",
	"northbound_speed",
	"southbound_speed",
	"average_speed_all_vehicles",
}

// Sink receives metrics rows during a run.
type Sink interface {
	Append(row MetricsRow) error
	Close() error
}

// MultiSink fans each row out to several sinks.
type MultiSink []Sink

func (m MultiSink) Append(row MetricsRow) error {
	for _, s := range m {
		if err := s.Append(row); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) Close() error {
	var firstErr error
	for _, s := range m {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// CSVSink writes rows to a CSV file: header once, one row per tick,
// append-only for the lifetime of the run.
type CSVSink struct {
	file   *os.File
	writer *csv.Writer
}

func NewCSVSink(path string) (*CSVSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating metrics file: %w", err)
	}
	writer := csv.NewWriter(file)
	if err := writer.Write(metricsColumns); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}
	return &CSVSink{file: file, writer: writer}, nil
}

func (c *CSVSink) Append(row MetricsRow) error {
	record := []string{
		strconv.Itoa(row.Step),
		strconv.Itoa(row.VehicleCount),
		strconv.FormatFloat(row.MeanGap, 'f', 4, 64),
		strconv.Itoa(row.NorthboundFlow),
		strconv.Itoa(row.SouthboundFlow),
		strconv.FormatFloat(row.NorthboundSpeed, 'f', 4, 64),
		strconv.FormatFloat(row.SouthboundSpeed, 'f', 4, 64),
		strconv.FormatFloat(row.MeanSpeed, 'f', 4, 64),
	}
	if err := c.writer.Write(record); err != nil {
		return err
	}
	// Flush per row so a crashed run still leaves usable data.
	c.writer.Flush()
	return c.writer.Error()
}

func (c *CSVSink) Close() error {
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		_ = c.file.Close()
		return err
	}
	return c.file.Close()
}

// MetricsCollector polls aggregate state from the simulator once per tick.
// The set of known edges is captured at construction so per-tick queries
// never touch edges absent from the loaded network.
type MetricsCollector struct {
	API        SimAPI
	Northbound []string // main-road edges in driving order
	Southbound []string

	knownEdges map[string]bool
}

func NewMetricsCollector(api SimAPI, northbound, southbound []string) (*MetricsCollector, error) {
	edges, err := api.EdgeIDs()
	if err != nil {
		return nil, fmt.Errorf("listing edges: %w", err)
	}
	known := make(map[string]bool, len(edges))
	for _, e := range edges {
		known[e] = true
	}
	return &MetricsCollector{
		API:        api,
		Northbound: northbound,
		Southbound: southbound,
		knownEdges: known,
	}, nil
}

// Collect builds one row for the given step.
func (mc *MetricsCollector) Collect(step int) (MetricsRow, error) {
	row := MetricsRow{Step: step}

	vehicles, err := mc.API.VehicleIDs()
	if err != nil {
		return row, err
	}
	row.VehicleCount = len(vehicles)
	if len(vehicles) > 0 {
		sum := 0.0
		for _, id := range vehicles {
			speed, err := mc.API.VehicleSpeed(id)
			if err != nil {
				return row, err
			}
			sum += speed
		}
		row.MeanSpeed = sum / float64(len(vehicles))
	}

	if row.MeanGap, err = mc.meanGap(mc.Northbound); err != nil {
		return row, err
	}
	if row.NorthboundFlow, row.NorthboundSpeed, err = mc.directionStats(mc.Northbound); err != nil {
		return row, err
	}
	if row.SouthboundFlow, row.SouthboundSpeed, err = mc.directionStats(mc.Southbound); err != nil {
		return row, err
	}
	return row, nil
}

// meanGap computes the mean distance between consecutive vehicles along the
// given edges, from lane positions sorted downstream to upstream. Positions
// from different edges are pooled, which is the definition the historical
// metrics files used.
func (mc *MetricsCollector) meanGap(edges []string) (float64, error) {
	positions := make([]float64, 0, 64)
	for _, edge := range edges {
		if !mc.knownEdges[edge] {
			continue
		}
		laneCount, err := mc.API.EdgeLaneCount(edge)
		if err != nil {
			return 0, err
		}
		for i := 0; i < laneCount; i++ {
			lane := fmt.Sprintf("%s_%d", edge, i)
			onLane, err := mc.API.LaneVehicleIDs(lane)
			if err != nil {
				// Lane naming is conventional; tolerate holes in the sequence.
				continue
			}
			for _, id := range onLane {
				pos, err := mc.API.VehicleLanePosition(id)
				if err != nil {
					continue
				}
				positions = append(positions, pos)
			}
		}
	}
	if len(positions) < 2 {
		return 0, nil
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(positions)))
	total := 0.0
	for i := 0; i < len(positions)-1; i++ {
		total += positions[i] - positions[i+1]
	}
	return total / float64(len(positions)-1), nil
}

// directionStats returns the vehicle count over the direction's edges and
// the count-weighted mean of the edges' mean speeds.
func (mc *MetricsCollector) directionStats(edges []string) (int, float64, error) {
	flow := 0
	weightedSpeed := 0.0
	for _, edge := range edges {
		if !mc.knownEdges[edge] {
			continue
		}
		n, err := mc.API.EdgeVehicleCount(edge)
		if err != nil {
			return 0, 0, err
		}
		speed, err := mc.API.EdgeMeanSpeed(edge)
		if err != nil {
			return 0, 0, err
		}
		flow += n
		weightedSpeed += speed * float64(n)
	}
	return flow, weightedSpeed / float64(max(1, flow)), nil
}
