package parsers

import (
	"fmt"
	"strings"
)

var (
	questionHeaders = []string{"question", "prompt", "front"}
	answerHeaders   = []string{"correct_answer", "correctanswer", "answer", "correct"}
)

// parseTable turns header + data rows into deck rows. Option columns are any
// header starting with "option" (option_1, option 2, options_a ...), read left to right.
func parseTable(rows [][]string) (*ParsedDeck, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("file must contain a header and at least one flashcard row")
	}

	header := rows[0]
	questionIdx := findColumn(header, questionHeaders)
	if questionIdx < 0 {
		return nil, fmt.Errorf("missing required 'question' column")
	}
	answerIdx := findColumn(header, answerHeaders)
	if answerIdx < 0 {
		return nil, fmt.Errorf("missing required 'correct_answer' column")
	}
	optionIdx := findOptionColumns(header)
	if len(optionIdx) == 0 {
		return nil, fmt.Errorf("missing option columns (option_1, option_2, ...)")
	}

	deck := &ParsedDeck{}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}

		var options []string
		for _, idx := range optionIdx {
			if v := cell(row, idx); v != "" {
				options = append(options, v)
			}
		}

		deck.Rows = append(deck.Rows, DeckRow{
			Line:          i + 1,
			Question:      cell(row, questionIdx),
			Options:       options,
			CorrectAnswer: cell(row, answerIdx),
		})
	}

	if len(deck.Rows) == 0 {
		return nil, fmt.Errorf("no flashcard rows found")
	}
	return deck, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.ReplaceAll(h, " ", "_")
}

func findColumn(header []string, candidates []string) int {
	for i, h := range header {
		n := normalizeHeader(h)
		for _, c := range candidates {
			if n == c {
				return i
			}
		}
	}
	return -1
}

func findOptionColumns(header []string) []int {
	var idx []int
	for i, h := range header {
		if strings.HasPrefix(normalizeHeader(h), "option") {
			idx = append(idx, i)
		}
	}
	return idx
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
