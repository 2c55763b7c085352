package parsers

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// ================ CSV Parser ================

type CSVParser struct{}

func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

func (p *CSVParser) Parse(fileData []byte, fileName string) (*ParsedDeck, error) {
	reader := csv.NewReader(bytes.NewReader(fileData))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV %s: %w", fileName, err)
	}
	return parseTable(rows)
}
