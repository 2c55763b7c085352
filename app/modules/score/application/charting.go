package scoreservice

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette colours the results chart.
type ChartPalette struct {
	Background drawing.Color
	Bar        drawing.Color
	Leader     drawing.Color
	Text       drawing.Color
}

// DefaultPalette is used by ResultsChart.
var DefaultPalette = ChartPalette{
	Background: drawing.ColorFromHex("ffffff"),
	Bar:        drawing.ColorFromHex("6d28d9"),
	Leader:     drawing.ColorFromHex("2563eb"),
	Text:       drawing.ColorFromHex("1f2937"),
}

func (s *ScoreService) ResultsChart(ctx context.Context, matchID uuid.UUID) ([]byte, error) {
	res, err := s.Results(ctx, matchID)
	if err != nil {
		return nil, err
	}
	png, err := GenerateResultsChart(res.Players, DefaultPalette)
	if err != nil {
		return nil, fmt.Errorf("failed to render results chart: %w", err)
	}
	return png, nil
}

const noPlayersLabel = "No players yet"

// GenerateResultsChart renders one bar per player in ranking order. An empty
// board renders a single empty bar.
func GenerateResultsChart(board []PlayerScore, palette ChartPalette) ([]byte, error) {
	highest := 1
	bars := make([]chart.Value, 0, len(board)+1)
	for _, p := range board {
		if p.Score > highest {
			highest = p.Score
		}
		fill := palette.Bar
		if p.Position == 1 && p.Score > 0 {
			fill = palette.Leader
		}
		bars = append(bars, chart.Value{
			Label: p.Name,
			Value: float64(p.Score),
			Style: chart.Style{
				FillColor:   fill,
				StrokeColor: fill,
				StrokeWidth: 1,
			},
		})
	}
	if len(bars) == 0 {
		bars = append(bars, chart.Value{Label: noPlayersLabel, Value: 0})
	}

	graph := chart.BarChart{
		Title:      "Match results",
		TitleStyle: chart.Style{FontColor: palette.Text},
		Width:      160*len(bars) + 200,
		Height:     420,
		BarWidth:   80,
		BarSpacing: 40,
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: chart.Style{FillColor: palette.Background},
		XAxis:  chart.Style{FontColor: palette.Text},
		YAxis: chart.YAxis{
			Name:           "Score",
			Style:          chart.Style{FontColor: palette.Text},
			Range:          &chart.ContinuousRange{Min: 0, Max: float64(highest)},
			ValueFormatter: func(v interface{}) string { return fmt.Sprintf("%.0f", v) },
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
