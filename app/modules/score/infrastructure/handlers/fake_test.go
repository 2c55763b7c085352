package scorehandlers

import (
	"context"

	scoreservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/score/application"
	"github.com/google/uuid"
)

// FakeService is a programmable scoreservice.Service.
type FakeService struct {
	trace []string

	ScoreboardFunc    func(ctx context.Context, matchID uuid.UUID) ([]scoreservice.PlayerScore, error)
	ResultsFunc       func(ctx context.Context, matchID uuid.UUID) (*scoreservice.Results, error)
	ResultsChartFunc  func(ctx context.Context, matchID uuid.UUID) ([]byte, error)
	ExportResultsFunc func(ctx context.Context, matchID uuid.UUID) ([]byte, error)
}

func (f *FakeService) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeService) Trace() []string { return f.trace }

func (f *FakeService) Scoreboard(ctx context.Context, matchID uuid.UUID) ([]scoreservice.PlayerScore, error) {
	f.record("Scoreboard")
	if f.ScoreboardFunc != nil {
		return f.ScoreboardFunc(ctx, matchID)
	}
	return []scoreservice.PlayerScore{}, nil
}

func (f *FakeService) Results(ctx context.Context, matchID uuid.UUID) (*scoreservice.Results, error) {
	f.record("Results")
	if f.ResultsFunc != nil {
		return f.ResultsFunc(ctx, matchID)
	}
	return &scoreservice.Results{MatchID: matchID}, nil
}

func (f *FakeService) ResultsChart(ctx context.Context, matchID uuid.UUID) ([]byte, error) {
	f.record("ResultsChart")
	if f.ResultsChartFunc != nil {
		return f.ResultsChartFunc(ctx, matchID)
	}
	return []byte("\x89PNG"), nil
}

func (f *FakeService) ExportResults(ctx context.Context, matchID uuid.UUID) ([]byte, error) {
	f.record("ExportResults")
	if f.ExportResultsFunc != nil {
		return f.ExportResultsFunc(ctx, matchID)
	}
	return []byte("PK"), nil
}

var _ scoreservice.Service = (*FakeService)(nil)
