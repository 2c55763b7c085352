//go:build integration

package testutils

import (
	"fmt"
	"strconv"
	"time"

	flashcardservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/flashcard/application"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/session"
	"github.com/brianvoe/gofakeit/v7"
)

// TestDataGenerator provides methods to create test data for integration tests
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}
	return &TestDataGenerator{faker: gofakeit.New(uint64(s)), seed: s}
}

// Identity returns a signed-in user with a display name in its metadata.
func (g *TestDataGenerator) Identity() session.Identity {
	return session.Identity{
		UserID: g.faker.Numerify("user-#########"),
		Email:  g.faker.Email(),
		Metadata: map[string]string{
			"name": g.faker.FirstName() + " " + g.faker.LastName(),
		},
	}
}

// Identities returns n distinct identities.
func (g *TestDataGenerator) Identities(n int) []session.Identity {
	out := make([]session.Identity, n)
	seen := make(map[string]bool, n)
	for i := range out {
		id := g.Identity()
		for seen[id.UserID] {
			id = g.Identity()
		}
		seen[id.UserID] = true
		out[i] = id
	}
	return out
}

// Draft returns a valid arithmetic flashcard. The question embeds a counter
// so a deck of drafts never repeats.
func (g *TestDataGenerator) Draft(i int) flashcardservice.Draft {
	a, b := g.faker.Number(1, 50), g.faker.Number(1, 50)
	sum := a + b
	options := []string{strconv.Itoa(sum), strconv.Itoa(sum + 1), strconv.Itoa(sum - 1)}
	g.faker.ShuffleAnySlice(options)
	return flashcardservice.Draft{
		Question:      fmt.Sprintf("#%d: what is %d + %d?", i+1, a, b),
		Options:       options,
		CorrectAnswer: strconv.Itoa(sum),
	}
}

// Drafts returns n valid drafts.
func (g *TestDataGenerator) Drafts(n int) []flashcardservice.Draft {
	out := make([]flashcardservice.Draft, n)
	for i := range out {
		out[i] = g.Draft(i)
	}
	return out
}

// WrongAnswer picks an option other than the correct answer.
func WrongAnswer(options []string, correct string) string {
	for _, o := range options {
		if o != correct {
			return o
		}
	}
	return correct + "?"
}
