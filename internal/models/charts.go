package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/carpenike/fitcoach/internal/stats"
)

// ChartPoint represents a single data point for SVG line/area charts.
type ChartPoint struct {
	X     float64 // SVG x coordinate
	Y     float64 // SVG y coordinate
	Value float64 // Original data value
	Label string  // Date or label for tooltip
}

// ChartData holds pre-computed SVG chart data for rendering in templates.
type ChartData struct {
	Points    []ChartPoint
	PolyLine  string // Pre-computed SVG polyline points string
	AreaPath  string // Pre-computed SVG area path (for filled charts)
	MinValue  float64
	MaxValue  float64
	MinLabel  string
	MaxLabel  string
	YLabels   []ChartYLabel // Y-axis grid labels
	HasData   bool
	ValueUnit string // e.g. "회", "단위"
}

// ChartYLabel is a horizontal grid line label.
type ChartYLabel struct {
	Y     float64
	Label string
}

// chartDimensions defines the SVG viewBox dimensions and padding.
const (
	chartWidth    = 600.0
	chartHeight   = 200.0
	chartPadLeft  = 50.0
	chartPadRight = 10.0
	chartPadTop   = 15.0
	chartPadBot   = 25.0
)

// computeChartPoints normalizes a series of (date, value) pairs into SVG
// coordinates within the chart dimensions. Points are ordered chronologically.
func computeChartPoints(dates []string, values []float64, unit string) *ChartData {
	if len(dates) == 0 || len(dates) != len(values) {
		return &ChartData{HasData: false}
	}

	// Find min/max values with 5% padding.
	minVal, maxVal := values[0], values[0]
	for _, v := range values {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	// Add padding so points don't sit on the edge.
	valRange := maxVal - minVal
	if valRange == 0 {
		valRange = maxVal * 0.1
		if valRange == 0 {
			valRange = 10
		}
		minVal -= valRange / 2
		maxVal += valRange / 2
	} else {
		minVal -= valRange * 0.05
		maxVal += valRange * 0.05
	}

	plotW := chartWidth - chartPadLeft - chartPadRight
	plotH := chartHeight - chartPadTop - chartPadBot

	points := make([]ChartPoint, len(dates))
	for i := range dates {
		var xFrac float64
		if len(dates) == 1 {
			xFrac = 0.5
		} else {
			xFrac = float64(i) / float64(len(dates)-1)
		}
		yFrac := 1.0 - (values[i]-minVal)/(maxVal-minVal)

		points[i] = ChartPoint{
			X:     chartPadLeft + xFrac*plotW,
			Y:     chartPadTop + yFrac*plotH,
			Value: values[i],
			Label: dates[i],
		}
	}

	// Build polyline string.
	var polyParts []string
	for _, p := range points {
		polyParts = append(polyParts, fmt.Sprintf("%.1f,%.1f", p.X, p.Y))
	}
	polyLine := strings.Join(polyParts, " ")

	// Build area path (same line, with bottom closed).
	bottomY := chartPadTop + plotH
	areaPath := fmt.Sprintf("M%.1f,%.1f ", points[0].X, bottomY)
	for _, p := range points {
		areaPath += fmt.Sprintf("L%.1f,%.1f ", p.X, p.Y)
	}
	areaPath += fmt.Sprintf("L%.1f,%.1f Z", points[len(points)-1].X, bottomY)

	// Generate Y-axis labels (4-5 nice round numbers).
	yLabels := niceYLabels(minVal, maxVal, 4)

	return &ChartData{
		Points:    points,
		PolyLine:  polyLine,
		AreaPath:  areaPath,
		MinValue:  minVal,
		MaxValue:  maxVal,
		MinLabel:  dates[0],
		MaxLabel:  dates[len(dates)-1],
		YLabels:   yLabels,
		HasData:   true,
		ValueUnit: unit,
	}
}

// niceYLabels generates evenly-spaced y-axis labels with nice round numbers.
func niceYLabels(minVal, maxVal float64, count int) []ChartYLabel {
	if count <= 0 {
		count = 4
	}
	valRange := maxVal - minVal
	rawStep := valRange / float64(count)

	// Round step to a nice number.
	magnitude := math.Pow(10, math.Floor(math.Log10(rawStep)))
	normalized := rawStep / magnitude
	var niceStep float64
	switch {
	case normalized <= 1.5:
		niceStep = magnitude
	case normalized <= 3.5:
		niceStep = 2.5 * magnitude
	case normalized <= 7.5:
		niceStep = 5 * magnitude
	default:
		niceStep = 10 * magnitude
	}

	plotH := chartHeight - chartPadTop - chartPadBot
	var labels []ChartYLabel

	// Start from the first nice number above minVal.
	start := math.Ceil(minVal/niceStep) * niceStep
	for v := start; v <= maxVal; v += niceStep {
		yFrac := 1.0 - (v-minVal)/(maxVal-minVal)
		y := chartPadTop + yFrac*plotH
		labels = append(labels, ChartYLabel{
			Y:     y,
			Label: formatChartValue(v),
		})
	}

	return labels
}

// formatChartValue formats a number for y-axis display.
func formatChartValue(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

// DailyBar is one bar of the daily totals chart.
type DailyBar struct {
	X      float64 // SVG x position
	Y      float64 // SVG y position (top of bar)
	Width  float64 // Bar width
	Height float64 // Bar height
	Amount int
	Date   string // Log date for tooltip
}

// DailyBarChartData holds bar chart data for per-day workout totals.
type DailyBarChartData struct {
	Bars      []DailyBar
	HasData   bool
	MaxAmount int
	MinLabel  string
	MaxLabel  string
}

// DailyTotalsBarChart lays out one bar per logged date, oldest first. Only the
// last limit dates are charted when limit is positive.
func DailyTotalsBarChart(totals []stats.DailyTotal, limit int) *DailyBarChartData {
	if limit > 0 && len(totals) > limit {
		totals = totals[len(totals)-limit:]
	}
	if len(totals) == 0 {
		return &DailyBarChartData{HasData: false}
	}

	maxAmount := 0
	for _, d := range totals {
		if d.Amount > maxAmount {
			maxAmount = d.Amount
		}
	}
	if maxAmount == 0 {
		maxAmount = 1
	}

	plotW := chartWidth - chartPadLeft - chartPadRight
	plotH := chartHeight - chartPadTop - chartPadBot
	barGap := 2.0
	barW := (plotW - barGap*float64(len(totals)-1)) / float64(len(totals))
	if barW > 40 {
		barW = 40
	}

	bars := make([]DailyBar, len(totals))
	for i, d := range totals {
		barH := float64(d.Amount) / float64(maxAmount) * plotH
		bars[i] = DailyBar{
			X:      chartPadLeft + float64(i)*(barW+barGap),
			Y:      chartPadTop + plotH - barH,
			Width:  barW,
			Height: barH,
			Amount: d.Amount,
			Date:   d.Date,
		}
	}

	return &DailyBarChartData{
		Bars:      bars,
		HasData:   true,
		MaxAmount: maxAmount,
		MinLabel:  totals[0].Date,
		MaxLabel:  totals[len(totals)-1].Date,
	}
}

// CumulativeChart plots the running total of daily amounts over time.
func CumulativeChart(totals []stats.DailyTotal, unit string) *ChartData {
	dates := make([]string, len(totals))
	values := make([]float64, len(totals))
	running := 0
	for i, d := range totals {
		running += d.Amount
		dates[i] = d.Date
		values[i] = float64(running)
	}
	return computeChartPoints(dates, values, unit)
}
