package report

import (
	"bytes"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"

	"analytics-assistant-be/pkg/artifact"
)

// maxChartRows caps how many rows of an artifact feed a single chart;
// beyond this a report chart would be unreadable anyway.
const maxChartRows = 20

// chartKind picks a rendering shape from a product's row shape, per
// spec.md section 4.9's "bar/line/scatter chosen by product shape": two
// or more numeric columns plot as a scatter, a first column whose header
// names a time unit (month, date, year, period, week) renders as a line,
// and everything else falls back to chartBar. chartBar draws the first
// numeric column against the first label column as one thick-stroked
// line series; it does not draw separate bars.
type chartKind int

const (
	chartBar chartKind = iota
	chartLine
	chartScatter
)

func pickChartKind(a *artifact.Artifact) chartKind {
	numericCols := 0
	for col := 0; col < len(a.Columns); col++ {
		if columnIsNumeric(a, col) {
			numericCols++
		}
	}
	if numericCols >= 2 {
		return chartScatter
	}
	if len(a.Columns) > 0 && looksLikeTimeAxis(a.Columns[0]) {
		return chartLine
	}
	return chartBar
}

func columnIsNumeric(a *artifact.Artifact, col int) bool {
	if col >= len(a.Columns) {
		return false
	}
	for _, row := range a.Rows {
		if col >= len(row) {
			continue
		}
		if _, err := strconv.ParseFloat(row[col], 64); err != nil {
			return false
		}
	}
	return len(a.Rows) > 0
}

func looksLikeTimeAxis(header string) bool {
	switch header {
	case "month", "date", "year", "period", "week":
		return true
	default:
		return false
	}
}

// renderChart draws a single PNG chart image from an artifact's rows.
// It uses the first column as labels/x-axis and the first numeric
// column found among the remaining columns as the plotted series.
func renderChart(a *artifact.Artifact, title string) ([]byte, error) {
	labelCol, valueCol := 0, findFirstNumericColumn(a)
	if valueCol == -1 {
		valueCol = len(a.Columns) - 1
	}

	rows := a.Rows
	if len(rows) > maxChartRows {
		rows = rows[:maxChartRows]
	}

	xValues := make([]float64, 0, len(rows))
	labels := make([]string, 0, len(rows))
	yValues := make([]float64, 0, len(rows))
	for i, row := range rows {
		if labelCol < len(row) {
			labels = append(labels, row[labelCol])
		}
		xValues = append(xValues, float64(i))
		var y float64
		if valueCol >= 0 && valueCol < len(row) {
			y, _ = strconv.ParseFloat(row[valueCol], 64)
		}
		yValues = append(yValues, y)
	}

	series := chart.ContinuousSeries{
		Name:    title,
		XValues: xValues,
		YValues: yValues,
	}

	graph := chart.Chart{
		Title: title,
		XAxis: chart.XAxis{
			Name:           columnName(a, labelCol),
			ValueFormatter: tickLabelFormatter(labels),
		},
		YAxis: chart.YAxis{
			Name: columnName(a, valueCol),
		},
		Series: []chart.Series{seriesForKind(pickChartKind(a), series)},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func seriesForKind(kind chartKind, base chart.ContinuousSeries) chart.Series {
	switch kind {
	case chartScatter:
		base.Style = chart.Style{StrokeWidth: chart.Disabled, DotWidth: 3}
		return base
	case chartBar:
		return chart.ContinuousSeries{
			Name:    base.Name,
			XValues: base.XValues,
			YValues: base.YValues,
			Style:   chart.Style{StrokeWidth: 8, StrokeColor: chart.ColorBlue},
		}
	default:
		return base
	}
}

func findFirstNumericColumn(a *artifact.Artifact) int {
	for col := 1; col < len(a.Columns); col++ {
		if columnIsNumeric(a, col) {
			return col
		}
	}
	return -1
}

func columnName(a *artifact.Artifact, col int) string {
	if col < 0 || col >= len(a.Columns) {
		return ""
	}
	return a.Columns[col]
}

func tickLabelFormatter(labels []string) chart.ValueFormatter {
	return func(v interface{}) string {
		f, ok := v.(float64)
		if !ok {
			return ""
		}
		i := int(f)
		if i < 0 || i >= len(labels) {
			return ""
		}
		return labels[i]
	}
}
