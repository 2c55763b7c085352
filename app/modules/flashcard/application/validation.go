package flashcardservice

import "strings"

const (
	MinOptions = 2
	MaxOptions = 6
)

// Draft is an unvalidated flashcard as submitted by a user or read from a file.
type Draft struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// Normalize trims whitespace from every field.
func (d Draft) Normalize() Draft {
	out := Draft{
		Question:      strings.TrimSpace(d.Question),
		CorrectAnswer: strings.TrimSpace(d.CorrectAnswer),
		Options:       make([]string, 0, len(d.Options)),
	}
	for _, o := range d.Options {
		out.Options = append(out.Options, strings.TrimSpace(o))
	}
	return out
}

// Validate checks a normalized draft. It runs before any write.
func (d Draft) Validate() error {
	if d.Question == "" {
		return &ValidationError{Field: "question", Message: "question is required"}
	}
	if len(d.Options) < MinOptions || len(d.Options) > MaxOptions {
		return &ValidationError{Field: "options", Message: "between 2 and 6 options are required"}
	}
	seen := make(map[string]bool, len(d.Options))
	for _, o := range d.Options {
		if o == "" {
			return &ValidationError{Field: "options", Message: "options must not be empty"}
		}
		if seen[o] {
			return &ValidationError{Field: "options", Message: "options must be unique"}
		}
		seen[o] = true
	}
	if d.CorrectAnswer == "" {
		return &ValidationError{Field: "correct_answer", Message: "correct answer is required"}
	}
	if !seen[d.CorrectAnswer] {
		return &ValidationError{Field: "correct_answer", Message: "correct answer must be one of the options"}
	}
	return nil
}
