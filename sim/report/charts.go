package report

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Jones-Shaun/platoon-sumo/sim"
)

// RenderHTML writes one HTML page of line charts over the run: mean speed,
// per-direction flow, vehicle count and inter-vehicle gap against the
// simulation step.
func RenderHTML(path, title string, rows []sim.MetricsRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("no rows to chart")
	}

	steps := make([]string, len(rows))
	for i, r := range rows {
		steps[i] = strconv.Itoa(r.Step)
	}

	speed := newLine(title+": speed (m/s)", steps)
	speed.AddSeries("all vehicles", lineData(rows, func(r sim.MetricsRow) float64 { return r.MeanSpeed }))
	speed.AddSeries("northbound", lineData(rows, func(r sim.MetricsRow) float64 { return r.NorthboundSpeed }))
	speed.AddSeries("southbound", lineData(rows, func(r sim.MetricsRow) float64 { return r.SouthboundSpeed }))

	flow := newLine(title+": flow (vehicles on main road)", steps)
	flow.AddSeries("northbound", lineData(rows, func(r sim.MetricsRow) float64 { return float64(r.NorthboundFlow) }))
	flow.AddSeries("southbound", lineData(rows, func(r sim.MetricsRow) float64 { return float64(r.SouthboundFlow) }))

	count := newLine(title+": vehicles in network", steps)
	count.AddSeries("vehicles", lineData(rows, func(r sim.MetricsRow) float64 { return float64(r.VehicleCount) }))

	gap := newLine(title+": mean inter-vehicle gap (m)", steps)
	gap.AddSeries("northbound gap", lineData(rows, func(r sim.MetricsRow) float64 { return r.MeanGap }))

	page := components.NewPage()
	page.SetPageTitle(title)
	page.AddCharts(speed, flow, count, gap)

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()
	return page.Render(file)
}

func newLine(title string, steps []string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "step"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	line.SetXAxis(steps)
	return line
}

func lineData(rows []sim.MetricsRow, extract func(sim.MetricsRow) float64) []opts.LineData {
	data := make([]opts.LineData, len(rows))
	for i, r := range rows {
		data[i] = opts.LineData{Value: extract(r)}
	}
	return data
}
