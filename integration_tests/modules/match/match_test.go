//go:build integration

package matchintegrationtests

import (
	"sync"
	"testing"
	"time"

	matchservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/match/application"
	matchdomain "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/match/domain"
	"github.com/Black-And-White-Club/flashcard-frenzy/config"
	"github.com/Black-And-White-Club/flashcard-frenzy/integration_tests/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manualAdvance(cfg *config.Config) { cfg.Match.AutoAdvanceDelay = time.Hour }

func TestMatch_PlaysThroughDeck(t *testing.T) {
	deps := SetupTestApp(t, manualAdvance)
	svc := deps.App.MatchModule.MatchService
	host, guest := deps.Data.Identity(), deps.Data.Identity()
	cards := byID(deps.SeedDeck(t, host, 3))

	info, err := svc.CreateMatch(deps.Ctx, host)
	require.NoError(t, err)
	_, err = svc.JoinMatch(deps.Ctx, guest, info.ID)
	require.NoError(t, err)

	seen := map[uuid.UUID]bool{}
	for i := 1; i <= 3; i++ {
		state, err := svc.NextRound(deps.Ctx, host, info.ID)
		require.NoError(t, err)
		require.Equal(t, matchdomain.StateRoundInProgress, state.State)
		require.Equal(t, i, state.QuestionNumber)
		require.NotNil(t, state.Current)
		assert.False(t, seen[state.Current.FlashcardID], "flashcard repeated")
		seen[state.Current.FlashcardID] = true

		card := cards[state.Current.FlashcardID]
		res, err := svc.AnswerFlashcard(deps.Ctx, guest, info.ID, state.Current.RoundID, card.CorrectAnswer)
		require.NoError(t, err)
		assert.True(t, res.IsCorrect)
	}

	state, err := svc.GetMatchState(deps.Ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, matchdomain.StateMatchCompleted, state.State)
	assert.Len(t, state.UsedFlashcardIDs, 3)

	// Starting again on a finished match reports it instead of failing.
	again, err := svc.StartRound(deps.Ctx, host, info.ID)
	require.NoError(t, err)
	assert.Equal(t, matchdomain.StateMatchCompleted, again.State)

	board, err := deps.App.ScoreModule.ScoreService.Scoreboard(deps.Ctx, info.ID)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, 3, board[0].Score)
	assert.Equal(t, guest.UserID, profileUserID(t, deps, board[0].PlayerID))
	assert.Equal(t, 0, board[1].Score)
}

func TestMatch_StateSurvivesRestart(t *testing.T) {
	deps := SetupTestApp(t, manualAdvance)
	host := deps.Data.Identity()
	cards := byID(deps.SeedDeck(t, host, 4))

	svc := deps.App.MatchModule.MatchService
	info, err := svc.CreateMatch(deps.Ctx, host)
	require.NoError(t, err)

	first, err := svc.StartRound(deps.Ctx, host, info.ID)
	require.NoError(t, err)
	_, err = svc.AnswerFlashcard(deps.Ctx, host, info.ID, first.Current.RoundID, cards[first.Current.FlashcardID].CorrectAnswer)
	require.NoError(t, err)
	second, err := svc.NextRound(deps.Ctx, host, info.ID)
	require.NoError(t, err)

	// A second app instance on the same database derives the same state.
	restarted := startApp(t, deps.Env.Config())
	state, err := restarted.MatchModule.MatchService.GetMatchState(deps.Ctx, info.ID)
	require.NoError(t, err)

	assert.Equal(t, matchdomain.StateRoundInProgress, state.State)
	assert.Equal(t, 2, state.QuestionNumber)
	assert.Equal(t, 4, state.TotalFlashcards)
	require.NotNil(t, state.Current)
	assert.Equal(t, second.Current.RoundID, state.Current.RoundID)
	assert.Empty(t, state.Current.CorrectAnswer)
	require.NotNil(t, state.LastOutcome)
	assert.Equal(t, first.Current.RoundID, state.LastOutcome.RoundID)
}

func TestMatch_ConcurrentAnswersAcceptOne(t *testing.T) {
	deps := SetupTestApp(t, manualAdvance)
	host := deps.Data.Identity()
	cards := byID(deps.SeedDeck(t, host, 2))
	players := deps.Data.Identities(8)

	svc := deps.App.MatchModule.MatchService
	info, err := svc.CreateMatch(deps.Ctx, host)
	require.NoError(t, err)
	for _, p := range players {
		_, err := svc.JoinMatch(deps.Ctx, p, info.ID)
		require.NoError(t, err)
	}

	state, err := svc.StartRound(deps.Ctx, host, info.ID)
	require.NoError(t, err)
	answer := cards[state.Current.FlashcardID].CorrectAnswer

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for _, p := range players {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AnswerFlashcard(deps.Ctx, p, info.ID, state.Current.RoundID, answer)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				accepted++
				return
			}
			assert.ErrorIs(t, err, matchservice.ErrRoundAlreadyAnswered)
			rejected++
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Equal(t, len(players)-1, rejected)

	attempts, err := deps.Env.DB.NewSelect().Table("round_attempts").Where("round_id = ?", state.Current.RoundID).Count(deps.Ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestMatch_ConcurrentStartOpensOneRound(t *testing.T) {
	deps := SetupTestApp(t, manualAdvance)
	host := deps.Data.Identity()
	deps.SeedDeck(t, host, 5)

	svc := deps.App.MatchModule.MatchService
	info, err := svc.CreateMatch(deps.Ctx, host)
	require.NoError(t, err)

	const callers = 6
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.StartRound(deps.Ctx, host, info.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var started int
	for err := range errs {
		if err == nil {
			started++
			continue
		}
		assert.ErrorIs(t, err, matchservice.ErrRoundInProgress)
	}
	assert.Equal(t, 1, started)

	rounds, err := deps.Env.DB.NewSelect().Table("match_rounds").Where("match_id = ?", info.ID).Count(deps.Ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rounds)
}

func TestMatch_WrongAnswerStillClaimsRound(t *testing.T) {
	deps := SetupTestApp(t, manualAdvance)
	host, guest := deps.Data.Identity(), deps.Data.Identity()
	cards := byID(deps.SeedDeck(t, host, 2))

	svc := deps.App.MatchModule.MatchService
	info, err := svc.CreateMatch(deps.Ctx, host)
	require.NoError(t, err)
	state, err := svc.StartRound(deps.Ctx, host, info.ID)
	require.NoError(t, err)

	card := cards[state.Current.FlashcardID]
	res, err := svc.AnswerFlashcard(deps.Ctx, guest, info.ID, state.Current.RoundID, testutils.WrongAnswer(card.Options, card.CorrectAnswer))
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, card.CorrectAnswer, res.CorrectAnswer)
	assert.Equal(t, matchdomain.StateRoundAnswered, res.State)

	_, err = svc.AnswerFlashcard(deps.Ctx, host, info.ID, state.Current.RoundID, card.CorrectAnswer)
	assert.ErrorIs(t, err, matchservice.ErrRoundAlreadyAnswered)

	// the late-joining guest became a member by answering
	members, err := svc.ListPlayers(deps.Ctx, info.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func profileUserID(t *testing.T, deps TestDeps, playerID uuid.UUID) string {
	t.Helper()
	profiles, err := deps.App.PlayerModule.PlayerService.GetProfiles(deps.Ctx, []uuid.UUID{playerID})
	require.NoError(t, err)
	require.Contains(t, profiles, playerID)
	return profiles[playerID].UserID
}
