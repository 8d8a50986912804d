package quiz

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/kode4food/kubetour/pkg/api"
)

const (
	// MaxHistory is the number of attempts kept in the history
	MaxHistory = 10

	// HistoryKey names the stored history in every Store
	HistoryKey = "k8s-quiz-history"
)

var (
	ErrTotalInvalid = errors.New("quiz total must be positive")
	ErrScoreInvalid = errors.New("quiz score out of range")
)

// NewAttempt validates a finished quiz and stamps it with now
func NewAttempt(
	d api.Difficulty, score, total int, now time.Time,
) (api.QuizAttempt, error) {
	if err := d.Validate(); err != nil {
		return api.QuizAttempt{}, err
	}
	if total <= 0 {
		return api.QuizAttempt{}, fmt.Errorf("%w: %d", ErrTotalInvalid, total)
	}
	if score < 0 || score > total {
		return api.QuizAttempt{}, fmt.Errorf("%w: %d of %d",
			ErrScoreInvalid, score, total)
	}
	return api.QuizAttempt{
		Difficulty: d,
		Score:      score,
		Total:      total,
		Percentage: Percentage(score, total),
		Timestamp:  now.UTC().Format(time.RFC3339),
	}, nil
}

// Percentage returns score/total as a rounded whole percent
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) * 100 / float64(total)))
}

// Prepend returns a new history with a first, truncated to MaxHistory
func Prepend(history []api.QuizAttempt, a api.QuizAttempt) []api.QuizAttempt {
	keep := min(len(history), MaxHistory-1)
	res := make([]api.QuizAttempt, 0, keep+1)
	res = append(res, a)
	return append(res, history[:keep]...)
}

// Grade counts the answers matching each question's answer index.
// Missing answers count as wrong
func Grade(questions []*api.Question, answers []int) int {
	score := 0
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.Answer {
			score++
		}
	}
	return score
}

func clip(history []api.QuizAttempt) []api.QuizAttempt {
	if len(history) > MaxHistory {
		return history[:MaxHistory]
	}
	return history
}
