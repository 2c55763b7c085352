package scoreservice

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	resultsSheet = "Results"
	statsSheet   = "Stats"
)

func (s *ScoreService) ExportResults(ctx context.Context, matchID uuid.UUID) ([]byte, error) {
	res, err := s.Results(ctx, matchID)
	if err != nil {
		return nil, err
	}
	data, err := WriteResultsWorkbook(res)
	if err != nil {
		return nil, fmt.Errorf("failed to export results: %w", err)
	}
	return data, nil
}

// WriteResultsWorkbook renders the results table and the match statistics as
// two sheets of an XLSX workbook.
func WriteResultsWorkbook(res *Results) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return nil, err
	}
	header := []any{"Position", "Player", "Score", "Attempts", "Accuracy %"}
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, p := range res.Players {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{p.Position, p.Name, p.Score, p.Attempts, p.Accuracy}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(statsSheet); err != nil {
		return nil, err
	}
	stats := [][]any{
		{"Match", res.MatchID.String()},
		{"Total questions", res.Stats.TotalQuestions},
		{"Total players", res.Stats.TotalPlayers},
		{"Duration (minutes)", res.Stats.DurationMinutes},
		{"Highest score", res.Stats.HighestScore},
		{"Average score", res.Stats.AverageScore},
	}
	for i, row := range stats {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(statsSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
