package explain_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/kubetour/internal/assert/helpers"
	"github.com/kode4food/kubetour/internal/catalog"
	"github.com/kode4food/kubetour/internal/explain"
	"github.com/kode4food/kubetour/internal/genai"
	"github.com/kode4food/kubetour/pkg/api"
)

func newService(gen *helpers.MockGenerator) *explain.Service {
	return explain.NewService(gen, catalog.Default(), 8)
}

func TestExplainComponent(t *testing.T) {
	gen := helpers.NewMockGenerator("etcd stores state")
	svc := newService(gen)

	res, err := svc.ExplainComponent(context.Background(), "etcd")
	require.NoError(t, err)
	assert.Equal(t, "etcd", res.Subject)
	assert.Equal(t, "etcd stores state", res.Text)

	prompts := gen.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "etcd")
	assert.Contains(t, prompts[0], "control plane")
	assert.Contains(t, prompts[0], "Replicates state with Raft")
}

func TestExplainComponentUnknown(t *testing.T) {
	gen := helpers.NewMockGenerator("x")
	_, err := newService(gen).ExplainComponent(context.Background(), "nope")
	assert.ErrorIs(t, err, catalog.ErrComponentNotFound)
	assert.Equal(t, 0, gen.Calls())
}

func TestSuccessCached(t *testing.T) {
	gen := helpers.NewMockGenerator("cached answer")
	svc := newService(gen)
	ctx := context.Background()

	for range 3 {
		res, err := svc.ExplainComponent(ctx, "kubelet")
		require.NoError(t, err)
		assert.Equal(t, "cached answer", res.Text)
	}
	assert.Equal(t, 1, gen.Calls())
	assert.Equal(t, 1, svc.Cached())
}

func TestErrorsNotCached(t *testing.T) {
	gen := helpers.NewMockGenerator("recovered")
	gen.SetError("", genai.ErrRateLimited)
	svc := newService(gen)
	ctx := context.Background()

	_, err := svc.Ask(ctx, "what is a pod?")
	assert.ErrorIs(t, err, genai.ErrRateLimited)
	assert.Equal(t, 0, svc.Cached())

	gen.ClearError("")
	res, err := svc.Ask(ctx, "what is a pod?")
	require.NoError(t, err)
	assert.Equal(t, "recovered", res.Text)
	assert.Equal(t, 2, gen.Calls())
}

func TestExplainField(t *testing.T) {
	gen := helpers.NewMockGenerator("pulled by the runtime")
	svc := newService(gen)

	res, err := svc.ExplainField(
		context.Background(), "spec.template.spec.containers.2.image",
	)
	require.NoError(t, err)
	assert.Equal(t, "spec.template.spec.containers.[].image", res.Subject)
	assert.Equal(t, "pulled by the runtime", res.Text)
	assert.Contains(t, gen.Prompts()[0], "Container Runtime")

	_, err = svc.ExplainField(context.Background(), "status.phase")
	assert.ErrorIs(t, err, explain.ErrFieldNotMapped)
}

func TestAskValidation(t *testing.T) {
	gen := helpers.NewMockGenerator("x")
	svc := newService(gen)
	ctx := context.Background()

	_, err := svc.Ask(ctx, "   ")
	assert.ErrorIs(t, err, explain.ErrPromptEmpty)

	_, err = svc.Ask(ctx, strings.Repeat("a", explain.MaxPromptLength+1))
	assert.ErrorIs(t, err, explain.ErrPromptTooLong)
	assert.Equal(t, 0, gen.Calls())

	res, err := svc.Ask(ctx, "  trimmed  ")
	require.NoError(t, err)
	assert.Empty(t, res.Subject)
	assert.Equal(t, []string{"trimmed"}, gen.Prompts())
}

func TestFieldPattern(t *testing.T) {
	assert.Equal(t,
		[]string{"spec", "containers", api.ListMarker, "ports", api.ListMarker},
		explain.FieldPattern("spec.containers.0.ports.12"),
	)
}
