package scoreservice

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// UnknownPlayerName labels attempts whose player row is gone.
const UnknownPlayerName = "Unknown Player"

// Member is a match member in join order.
type Member struct {
	PlayerID uuid.UUID
	Name     string
}

// Attempt is a submitted answer.
type Attempt struct {
	PlayerID  uuid.UUID
	Name      string
	IsCorrect bool
	CreatedAt time.Time
}

// PlayerScore is one scoreboard row. Score counts correct attempts.
type PlayerScore struct {
	PlayerID uuid.UUID `json:"player_id"`
	Name     string    `json:"name"`
	Score    int       `json:"score"`
	Attempts int       `json:"attempts"`
	Accuracy float64   `json:"accuracy"`
	Position int       `json:"position"`
}

// Aggregate derives the scoreboard. Members start at zero in join order,
// players only seen in attempts follow in first-attempt order, and the result
// is sorted by score descending with ties kept in that encounter order.
func Aggregate(members []Member, attempts []Attempt) []PlayerScore {
	index := make(map[uuid.UUID]int, len(members))
	board := make([]PlayerScore, 0, len(members))

	add := func(id uuid.UUID, name string) int {
		if i, ok := index[id]; ok {
			return i
		}
		if name == "" {
			name = UnknownPlayerName
		}
		board = append(board, PlayerScore{PlayerID: id, Name: name})
		index[id] = len(board) - 1
		return len(board) - 1
	}

	for _, m := range members {
		add(m.PlayerID, m.Name)
	}

	ordered := append([]Attempt(nil), attempts...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})
	for _, a := range ordered {
		row := &board[add(a.PlayerID, a.Name)]
		row.Attempts++
		if a.IsCorrect {
			row.Score++
		}
	}

	sort.SliceStable(board, func(i, j int) bool {
		return board[i].Score > board[j].Score
	})

	for i := range board {
		board[i].Position = i + 1
		if board[i].Attempts > 0 {
			board[i].Accuracy = round1(float64(board[i].Score) / float64(board[i].Attempts) * 100)
		}
	}
	return board
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
