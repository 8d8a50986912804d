package helpers

import (
	"context"
	"sync"

	"github.com/kode4food/kubetour/internal/genai"
)

// MockGenerator is a scripted implementation of genai.Generator
type MockGenerator struct {
	responses map[string]string
	errors    map[string]error
	fallback  string
	prompts   []string
	mu        sync.Mutex
}

var _ genai.Generator = (*MockGenerator)(nil)

// NewMockGenerator creates a generator that answers every prompt with
// fallback unless a response or error is configured for it
func NewMockGenerator(fallback string) *MockGenerator {
	return &MockGenerator{
		responses: map[string]string{},
		errors:    map[string]error{},
		fallback:  fallback,
	}
}

// Generate records the prompt and returns the configured text or error
func (g *MockGenerator) Generate(
	ctx context.Context, prompt string,
) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.prompts = append(g.prompts, prompt)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err, ok := g.errors[prompt]; ok {
		return "", err
	}
	if text, ok := g.responses[prompt]; ok {
		return text, nil
	}
	if err, ok := g.errors[""]; ok {
		return "", err
	}
	return g.fallback, nil
}

// SetResponse configures the text returned for a prompt
func (g *MockGenerator) SetResponse(prompt, text string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.responses[prompt] = text
}

// SetError configures the error returned for a prompt. An empty prompt
// applies to every prompt without its own response
func (g *MockGenerator) SetError(prompt string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errors[prompt] = err
}

// ClearError removes a configured error
func (g *MockGenerator) ClearError(prompt string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.errors, prompt)
}

// Prompts returns every prompt received, in order
func (g *MockGenerator) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.prompts...)
}

// Calls returns the number of Generate calls
func (g *MockGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}
