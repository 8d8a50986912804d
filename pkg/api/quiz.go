package api

import (
	"errors"
	"fmt"
)

type (
	// Difficulty selects a quiz question bank
	Difficulty string

	// QuizAttempt records one completed quiz
	QuizAttempt struct {
		Difficulty Difficulty `json:"difficulty"`
		Score      int        `json:"score"`
		Total      int        `json:"total"`
		Percentage int        `json:"percentage"`
		Timestamp  string     `json:"timestamp"`
	}

	// Question is one multiple-choice quiz question
	Question struct {
		ID          string     `json:"id" yaml:"id"`
		Difficulty  Difficulty `json:"difficulty" yaml:"difficulty"`
		Prompt      string     `json:"prompt" yaml:"prompt"`
		Choices     []string   `json:"choices" yaml:"choices"`
		Answer      int        `json:"answer" yaml:"answer"`
		Explanation string     `json:"explanation" yaml:"explanation"`
	}

	// PublicQuestion is a question with its answer withheld
	PublicQuestion struct {
		ID      string   `json:"id"`
		Prompt  string   `json:"prompt"`
		Choices []string `json:"choices"`
	}
)

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var (
	ErrDifficultyInvalid  = errors.New("difficulty invalid")
	ErrQuestionIDEmpty    = errors.New("question ID empty")
	ErrQuestionPrompt     = errors.New("question prompt empty")
	ErrQuestionChoices    = errors.New("question needs at least two choices")
	ErrQuestionAnswer     = errors.New("question answer out of range")
	ErrQuestionDifficulty = errors.New("question difficulty invalid")
)

// Difficulties lists every valid difficulty in ascending order
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// Validate checks that the difficulty is known
func (d Difficulty) Validate() error {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrDifficultyInvalid, d)
	}
}

// Validate checks the question record
func (q *Question) Validate() error {
	if q.ID == "" {
		return ErrQuestionIDEmpty
	}
	if err := q.Difficulty.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrQuestionDifficulty, q.ID)
	}
	if q.Prompt == "" {
		return fmt.Errorf("%w: %s", ErrQuestionPrompt, q.ID)
	}
	if len(q.Choices) < 2 {
		return fmt.Errorf("%w: %s", ErrQuestionChoices, q.ID)
	}
	if q.Answer < 0 || q.Answer >= len(q.Choices) {
		return fmt.Errorf("%w: %s", ErrQuestionAnswer, q.ID)
	}
	return nil
}

// Public strips the answer and explanation from the question
func (q *Question) Public() *PublicQuestion {
	return &PublicQuestion{
		ID:      q.ID,
		Prompt:  q.Prompt,
		Choices: append([]string(nil), q.Choices...),
	}
}
