// Package report turns recorded metrics into summary statistics and HTML
// charts.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/Jones-Shaun/platoon-sumo/sim"
)

// Summary describes one metric column over a whole run.
type Summary struct {
	Name   string
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	P50    float64
	P95    float64
}

func summarize(name string, values []float64) Summary {
	s := Summary{Name: name}
	if len(values) == 0 {
		return s
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	s.Mean = stat.Mean(sorted, nil)
	s.StdDev = stat.StdDev(sorted, nil)
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.P50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.P95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	return s
}

// Summarize computes per-column summaries over a run's rows.
func Summarize(rows []sim.MetricsRow) []Summary {
	columns := map[string]func(sim.MetricsRow) float64{
		"num_vehicles":     func(r sim.MetricsRow) float64 { return float64(r.VehicleCount) },
		"mean_gap":         func(r sim.MetricsRow) float64 { return r.MeanGap },
		"northbound_flow":  func(r sim.MetricsRow) float64 { return float64(r.NorthboundFlow) },
		"southbound_flow":  func(r sim.MetricsRow) float64 { return float64(r.SouthboundFlow) },
		"northbound_speed": func(r sim.MetricsRow) float64 { return r.NorthboundSpeed },
		"southbound_speed": func(r sim.MetricsRow) float64 { return r.SouthboundSpeed },
		"mean_speed":       func(r sim.MetricsRow) float64 { return r.MeanSpeed },
	}
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Summary, 0, len(names))
	for _, name := range names {
		extract := columns[name]
		values := make([]float64, len(rows))
		for i, r := range rows {
			values[i] = extract(r)
		}
		out = append(out, summarize(name, values))
	}
	return out
}

// WriteSummaries prints a fixed-width summary table.
func WriteSummaries(w io.Writer, summaries []Summary) error {
	if _, err := fmt.Fprintf(w, "%-18s %10s %10s %10s %10s %10s %10s\n",
		"metric", "mean", "stddev", "min", "max", "p50", "p95"); err != nil {
		return err
	}
	for _, s := range summaries {
		if _, err := fmt.Fprintf(w, "%-18s %10.3f %10.3f %10.3f %10.3f %10.3f %10.3f\n",
			s.Name, s.Mean, s.StdDev, s.Min, s.Max, s.P50, s.P95); err != nil {
			return err
		}
	}
	return nil
}

// ReadCSV loads a metrics file written by sim.CSVSink.
func ReadCSV(path string) ([]sim.MetricsRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%s: empty metrics file", path)
	}
	rows := make([]sim.MetricsRow, 0, len(records)-1)
	for i, record := range records[1:] { // skip header
		if len(record) != 8 {
			return nil, fmt.Errorf("%s row %d: %d columns, want 8", path, i+2, len(record))
		}
		row, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(record []string) (sim.MetricsRow, error) {
	var row sim.MetricsRow
	var err error
	if row.Step, err = strconv.Atoi(record[0]); err != nil {
		return row, err
	}
	if row.VehicleCount, err = strconv.Atoi(record[1]); err != nil {
		return row, err
	}
	if row.MeanGap, err = strconv.ParseFloat(record[2], 64); err != nil {
		return row, err
	}
	if row.NorthboundFlow, err = strconv.Atoi(record[3]); err != nil {
		return row, err
	}
	if row.SouthboundFlow, err = strconv.Atoi(record[4]); err != nil {
		return row, err
	}
	if row.NorthboundSpeed, err = strconv.ParseFloat(record[5], 64); err != nil {
		return row, err
	}
	if row.SouthboundSpeed, err = strconv.ParseFloat(record[6], 64); err != nil {
		return row, err
	}
	if row.MeanSpeed, err = strconv.ParseFloat(record[7], 64); err != nil {
		return row, err
	}
	return row, nil
}
