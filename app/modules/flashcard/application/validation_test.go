package flashcardservice

import (
	"errors"
	"testing"
)

func TestDraftValidate(t *testing.T) {
	tests := []struct {
		name      string
		draft     Draft
		wantField string
	}{
		{
			name:  "valid four options",
			draft: Draft{Question: "2+2?", Options: []string{"3", "4", "5", "22"}, CorrectAnswer: "4"},
		},
		{
			name:  "whitespace is trimmed before checks",
			draft: Draft{Question: "  2+2?  ", Options: []string{" 3", "4 "}, CorrectAnswer: " 4"},
		},
		{
			name:      "empty question",
			draft:     Draft{Question: "   ", Options: []string{"a", "b"}, CorrectAnswer: "a"},
			wantField: "question",
		},
		{
			name:      "too few options",
			draft:     Draft{Question: "q", Options: []string{"a"}, CorrectAnswer: "a"},
			wantField: "options",
		},
		{
			name:      "too many options",
			draft:     Draft{Question: "q", Options: []string{"a", "b", "c", "d", "e", "f", "g"}, CorrectAnswer: "a"},
			wantField: "options",
		},
		{
			name:      "blank option",
			draft:     Draft{Question: "q", Options: []string{"a", " "}, CorrectAnswer: "a"},
			wantField: "options",
		},
		{
			name:      "duplicate option",
			draft:     Draft{Question: "q", Options: []string{"a", "a"}, CorrectAnswer: "a"},
			wantField: "options",
		},
		{
			name:      "missing correct answer",
			draft:     Draft{Question: "q", Options: []string{"a", "b"}},
			wantField: "correct_answer",
		},
		{
			name:      "correct answer not among options",
			draft:     Draft{Question: "q", Options: []string{"a", "b"}, CorrectAnswer: "c"},
			wantField: "correct_answer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Normalize().Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, verr.Field)
			}
			if !errors.Is(err, ErrInvalidFlashcard) {
				t.Errorf("expected error to wrap ErrInvalidFlashcard")
			}
		})
	}
}
