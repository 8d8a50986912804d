package quiz_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/kubetour/internal/quiz"
	"github.com/kode4food/kubetour/pkg/api"
)

func TestNewAttempt(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.FixedZone("X", 3600))

	a, err := quiz.NewAttempt(api.DifficultyMedium, 2, 3, now)
	require.NoError(t, err)
	assert.Equal(t, api.DifficultyMedium, a.Difficulty)
	assert.Equal(t, 2, a.Score)
	assert.Equal(t, 3, a.Total)
	assert.Equal(t, 67, a.Percentage)
	assert.Equal(t, "2026-03-14T08:26:53Z", a.Timestamp)
}

func TestNewAttemptInvalid(t *testing.T) {
	now := time.Now()

	_, err := quiz.NewAttempt("expert", 1, 2, now)
	assert.ErrorIs(t, err, api.ErrDifficultyInvalid)

	_, err = quiz.NewAttempt(api.DifficultyEasy, 0, 0, now)
	assert.ErrorIs(t, err, quiz.ErrTotalInvalid)

	_, err = quiz.NewAttempt(api.DifficultyEasy, 3, 2, now)
	assert.ErrorIs(t, err, quiz.ErrScoreInvalid)

	_, err = quiz.NewAttempt(api.DifficultyEasy, -1, 2, now)
	assert.ErrorIs(t, err, quiz.ErrScoreInvalid)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0, quiz.Percentage(0, 5))
	assert.Equal(t, 100, quiz.Percentage(5, 5))
	assert.Equal(t, 33, quiz.Percentage(1, 3))
	assert.Equal(t, 50, quiz.Percentage(1, 2))
	assert.Equal(t, 0, quiz.Percentage(1, 0))
}

func TestPrependBounded(t *testing.T) {
	var history []api.QuizAttempt
	for i := range 11 {
		history = quiz.Prepend(history, api.QuizAttempt{
			Difficulty: api.DifficultyEasy,
			Score:      i,
			Total:      11,
		})
	}

	require.Len(t, history, quiz.MaxHistory)
	assert.Equal(t, 10, history[0].Score)
	assert.Equal(t, 1, history[9].Score)
}

func TestPrependDoesNotMutate(t *testing.T) {
	orig := []api.QuizAttempt{{Score: 1}, {Score: 2}}
	res := quiz.Prepend(orig, api.QuizAttempt{Score: 3})

	assert.Equal(t, []api.QuizAttempt{{Score: 1}, {Score: 2}}, orig)
	assert.Equal(t, 3, res[0].Score)
	assert.Len(t, res, 3)
}

func TestGrade(t *testing.T) {
	questions := []*api.Question{
		{ID: "q1", Answer: 0},
		{ID: "q2", Answer: 2},
		{ID: "q3", Answer: 1},
	}

	assert.Equal(t, 3, quiz.Grade(questions, []int{0, 2, 1}))
	assert.Equal(t, 1, quiz.Grade(questions, []int{0, 1, 0}))
	assert.Equal(t, 2, quiz.Grade(questions, []int{0, 2}))
	assert.Equal(t, 0, quiz.Grade(questions, nil))
}
