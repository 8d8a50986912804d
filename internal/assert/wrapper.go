package assert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/kubetour/internal/config"
	"github.com/kode4food/kubetour/pkg/api"
)

// Wrapper wraps testify assertions with tour-specific helpers
type Wrapper struct {
	*testing.T
	*assert.Assertions
	Require *assert.Assertions
}

// DefaultRetryInterval is the default polling interval for Eventually checks
const DefaultRetryInterval = 10 * time.Millisecond

// New creates a new test assertion wrapper with both assert and require from
// testify plus tour-specific helpers
func New(t *testing.T) *Wrapper {
	return &Wrapper{
		T:          t,
		Assertions: assert.New(t),
		Require:    assert.New(t),
	}
}

// TourValid asserts that a tour is valid and indexed
func (w *Wrapper) TourValid(t *api.Tour) {
	w.Helper()
	w.NoError(t.Validate())
	w.NotEmpty(t.Title)
	w.Positive(t.DelayMs)
	for i, st := range t.Steps {
		w.Equal(i, st.Index, "step %d index", i)
	}
}

// TourInvalid asserts that a tour is invalid and returns the validation error
func (w *Wrapper) TourInvalid(t *api.Tour, expected error) error {
	w.Helper()
	err := t.Validate()
	w.Error(err)
	if expected != nil {
		w.ErrorIs(err, expected)
	}
	return err
}

// SessionAt asserts the cursor of a session view
func (w *Wrapper) SessionAt(st *api.SessionState, index int, playing bool) {
	w.Helper()
	if !w.NotNil(st) {
		return
	}
	w.Equal(index, st.State.Index, "session index")
	w.Equal(playing, st.State.Playing, "session playing")
	if index == api.Unstarted {
		w.Nil(st.Step)
		return
	}
	if w.NotNil(st.Step) {
		w.Equal(index, st.Step.Index)
	}
}

// ConfigValid asserts that a configuration is valid
func (w *Wrapper) ConfigValid(cfg *config.Config) {
	w.Helper()
	w.NoError(cfg.Validate())
	w.True(cfg.APIPort > 0 && cfg.APIPort <= config.MaxTCPPort)
	w.True(cfg.GenAI.TimeoutMs > 0)
}

// ConfigInvalid asserts that a configuration is invalid
func (w *Wrapper) ConfigInvalid(cfg *config.Config, contains string) {
	w.Helper()
	err := cfg.Validate()
	w.Error(err)
	if err != nil && contains != "" {
		w.Contains(err.Error(), contains)
	}
}

// Eventually runs a condition repeatedly until it passes or times out
func (w *Wrapper) Eventually(
	condition func() bool, timeout time.Duration, msg string, args ...any,
) {
	w.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(DefaultRetryInterval)
	}
	w.Fail(msg, args...)
}
