package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"hotspot-monitor/internal/models"
)

var gridStyle = chart.Style{
	StrokeColor: drawing.Color{R: 200, G: 200, B: 200, A: 255},
	StrokeWidth: 1.0,
}

var padding = chart.Style{
	Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
}

// generateDowntimeChart draws total downtime per day in minutes
func (g *Generator) generateDowntimeChart(outputDir string, summaries []models.DailySummary) error {
	if len(summaries) == 0 {
		return nil
	}

	bars := make([]chart.Value, 0, len(summaries))
	for _, s := range summaries {
		bars = append(bars, chart.Value{
			Label: s.Date[5:], // MM-DD
			Value: s.TotalDowntime.Minutes(),
		})
	}

	graph := chart.BarChart{
		Title: "Daily Downtime (minutes)",
		TitleStyle: chart.Style{
			FontSize: 16,
		},
		Background: padding,
		Width:      1200,
		Height:     400,
		BarWidth:   barWidth(len(bars)),
		YAxis: chart.YAxis{
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			GridMajorStyle: gridStyle,
		},
		Bars: bars,
	}

	// go-chart refuses a bar chart whose values are all zero
	if allZero(bars) {
		graph.YAxis.Range = &chart.ContinuousRange{Min: 0, Max: 1}
	}

	return renderPNG(filepath.Join(outputDir, "daily_downtime.png"), func(f *os.File) error {
		return graph.Render(chart.PNG, f)
	})
}

// generateSuccessRateChart draws check and login success rates per day
func (g *Generator) generateSuccessRateChart(outputDir string, summaries []models.DailySummary) error {
	if len(summaries) < 2 {
		// a time series needs two points
		return nil
	}

	var days []time.Time
	var checkRates, loginRates []float64
	for _, s := range summaries {
		days = append(days, dayTime(s.Date))
		checkRates = append(checkRates, s.SuccessRate)
		loginRates = append(loginRates, s.LoginSuccessRate)
	}

	graph := chart.Chart{
		Title: "Daily Success Rate",
		TitleStyle: chart.Style{
			FontSize: 16,
		},
		Background: padding,
		Width:      1200,
		Height:     400,
		XAxis: chart.XAxis{
			Name: "Day",
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Success %",
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: 100,
			},
			GridMajorStyle: gridStyle,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: "Connectivity checks",
				Style: chart.Style{
					StrokeColor: chart.GetDefaultColor(0),
					StrokeWidth: 2,
				},
				XValues: days,
				YValues: checkRates,
			},
			chart.TimeSeries{
				Name: "Portal logins",
				Style: chart.Style{
					StrokeColor:     chart.GetDefaultColor(1),
					StrokeWidth:     2,
					StrokeDashArray: []float64{5, 5},
				},
				XValues: days,
				YValues: loginRates,
			},
		},
	}
	graph.Elements = []chart.Renderable{
		chart.Legend(&graph),
	}

	return renderPNG(filepath.Join(outputDir, "daily_success_rate.png"), func(f *os.File) error {
		return graph.Render(chart.PNG, f)
	})
}

func renderPNG(path string, render func(*os.File) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(file); err != nil {
		file.Close()
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	return file.Close()
}

func allZero(values []chart.Value) bool {
	for _, v := range values {
		if v.Value != 0 {
			return false
		}
	}
	return true
}

// barWidth keeps long ranges inside the canvas
func barWidth(n int) int {
	return max(8, min(40, 900/max(n, 1)))
}
