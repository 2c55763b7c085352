package parsers

// Parser reads a deck file into rows. fileData holds the raw file bytes.
type Parser interface {
	Parse(fileData []byte, fileName string) (*ParsedDeck, error)
}

// DeckRow is one flashcard as written in the file. Line is 1-based and
// counts the header.
type DeckRow struct {
	Line          int
	Question      string
	Options       []string
	CorrectAnswer string
}

// ParsedDeck is the result of parsing a deck file.
type ParsedDeck struct {
	Rows []DeckRow
}
