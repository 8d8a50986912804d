package helpers

import (
	"fmt"

	"github.com/kode4food/kubetour/pkg/api"
)

// NewTestSteps creates n indexed steps, each tagging one fake component
func NewTestSteps(n int) []api.Step {
	steps := make([]api.Step, n)
	for i := range steps {
		steps[i] = api.Step{
			Label:       fmt.Sprintf("Step %d", i+1),
			Description: fmt.Sprintf("description %d", i+1),
			ActiveTags: []api.ComponentID{
				api.ComponentID(fmt.Sprintf("component-%d", i+1)),
			},
		}
	}
	return api.Indexed(steps)
}

// NewTestTour creates a valid tour with n steps and the given delay
func NewTestTour(id api.TourID, n int, delayMs int64) *api.Tour {
	return &api.Tour{
		ID:      id,
		Title:   fmt.Sprintf("Tour %s", id),
		Steps:   NewTestSteps(n),
		DelayMs: delayMs,
	}
}
