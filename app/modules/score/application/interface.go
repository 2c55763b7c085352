package scoreservice

import (
	"context"

	"github.com/google/uuid"
)

// Service derives scores from recorded attempts.
type Service interface {
	// Scoreboard is the live ranking of a match.
	Scoreboard(ctx context.Context, matchID uuid.UUID) ([]PlayerScore, error)
	// Results is the ranking plus match statistics.
	Results(ctx context.Context, matchID uuid.UUID) (*Results, error)
	// ResultsChart renders the scores as a PNG bar chart.
	ResultsChart(ctx context.Context, matchID uuid.UUID) ([]byte, error)
	// ExportResults writes the results as an XLSX workbook.
	ExportResults(ctx context.Context, matchID uuid.UUID) ([]byte, error)
}
