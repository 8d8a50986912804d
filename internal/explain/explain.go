// Package explain composes prompts about tour content and sends them to a
// text generator, caching successful answers
package explain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/kode4food/kubetour/internal/catalog"
	"github.com/kode4food/kubetour/internal/genai"
	"github.com/kode4food/kubetour/internal/util"
	"github.com/kode4food/kubetour/pkg/api"
	"github.com/kode4food/kubetour/pkg/log"
)

// Service answers explanation requests
type Service struct {
	gen     genai.Generator
	catalog *catalog.Catalog
	cache   *util.LRUCache[string, string]
}

const (
	DefaultCacheSize = 128
	MaxPromptLength  = 4000

	componentPrompt = "You are teaching Kubernetes internals. Explain the " +
		"%s (%s plane) in a few short paragraphs for someone learning " +
		"how a cluster works. Summary: %s Responsibilities: %s."

	fieldPrompt = "You are teaching Kubernetes internals. Explain what " +
		"the manifest field %q does and how the %s acts on it. " +
		"Context: %s Keep it under 150 words."
)

var (
	ErrPromptEmpty    = errors.New("prompt empty")
	ErrPromptTooLong  = errors.New("prompt too long")
	ErrFieldNotMapped = errors.New("field has no component mapping")
)

// NewService creates a Service. cacheSize bounds the number of answers kept
func NewService(
	gen genai.Generator, c *catalog.Catalog, cacheSize int,
) *Service {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	return &Service{
		gen:     gen,
		catalog: c,
		cache:   util.NewLRUCache[string, string](cacheSize),
	}
}

// ExplainComponent describes a catalog component
func (s *Service) ExplainComponent(
	ctx context.Context, id api.ComponentID,
) (*api.ExplainResponse, error) {
	comp, err := s.catalog.Component(id)
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(componentPrompt,
		comp.Name, comp.Plane, comp.Summary,
		strings.Join(comp.Responsibilities, "; "),
	)
	text, err := s.generate(ctx, prompt, slog.Group("subject",
		log.ComponentID(id),
	))
	if err != nil {
		return nil, err
	}
	return &api.ExplainResponse{Subject: comp.Name, Text: text}, nil
}

// ExplainField describes a manifest field. Numeric path segments are
// treated as list indexes
func (s *Service) ExplainField(
	ctx context.Context, path string,
) (*api.ExplainResponse, error) {
	m, ok := s.catalog.MatchField(FieldPattern(path))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFieldNotMapped, path)
	}
	comp, err := s.catalog.Component(m.Component)
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(fieldPrompt, m.Path, comp.Name, m.Note)
	text, err := s.generate(ctx, prompt, slog.String("field", m.Path))
	if err != nil {
		return nil, err
	}
	return &api.ExplainResponse{Subject: m.Path, Text: text}, nil
}

// Ask sends a caller-composed prompt as is
func (s *Service) Ask(
	ctx context.Context, prompt string,
) (*api.ExplainResponse, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrPromptEmpty
	}
	if len(prompt) > MaxPromptLength {
		return nil, fmt.Errorf("%w: %d > %d",
			ErrPromptTooLong, len(prompt), MaxPromptLength)
	}
	text, err := s.generate(ctx, prompt, slog.Int("prompt_len", len(prompt)))
	if err != nil {
		return nil, err
	}
	return &api.ExplainResponse{Text: text}, nil
}

// Cached returns the number of answers held in the cache
func (s *Service) Cached() int {
	return s.cache.Len()
}

// FieldPattern converts a concrete dotted path into mapping segments
func FieldPattern(path string) []string {
	segs := api.SplitPath(path)
	for i, seg := range segs {
		if _, err := strconv.Atoi(seg); err == nil {
			segs[i] = api.ListMarker
		}
	}
	return segs
}

func (s *Service) generate(
	ctx context.Context, prompt string, subject slog.Attr,
) (string, error) {
	return s.cache.Get(prompt, func() (string, error) {
		text, err := s.gen.Generate(ctx, prompt)
		if err != nil {
			slog.Warn("Explanation failed",
				subject,
				log.Kind(genai.KindOf(err)),
				log.Error(err))
			return "", err
		}
		slog.Debug("Explanation generated",
			subject,
			slog.Int("text_len", len(text)))
		return text, nil
	})
}
