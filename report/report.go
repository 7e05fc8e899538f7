// Package report renders run results as standalone HTML charts.
package report

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteEquityChart renders the portfolio-value trajectory as a line chart
// and writes it to path as a self-contained HTML page.
func WriteEquityChart(path, title string, values []float64) error {
	if len(values) == 0 {
		return fmt.Errorf("report: no portfolio values to chart")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("final value %.2f", values[len(values)-1]),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "step"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "value"}),
	)

	xs := make([]string, len(values))
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		xs[i] = strconv.Itoa(i)
		data[i] = opts.LineData{Value: v}
	}

	line.SetXAxis(xs).AddSeries("portfolio", data,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
	)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	defer f.Close()

	if err := line.Render(f); err != nil {
		return fmt.Errorf("report: render chart: %w", err)
	}
	return nil
}
