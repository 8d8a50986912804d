package genai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/kubetour/internal/genai"
	"github.com/kode4food/kubetour/pkg/api"
)

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

const okBody = `{"candidates":[{"content":{"parts":[{"text":"hello"}]}}]}`

func (r *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func (r *sleepRecorder) Delays() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

func newServer(
	t *testing.T, calls *atomic.Int32, respond func(n int32, w http.ResponseWriter),
) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			n := calls.Add(1)
			respond(n, w)
		},
	))
	t.Cleanup(server.Close)
	return server
}

func newClient(url string, rec *sleepRecorder) *genai.Client {
	return genai.NewClient(genai.Config{
		APIKey:   "test-key",
		Endpoint: url,
		Timeout:  5 * time.Second,
		Retry:    genai.DefaultRetryConfig(),
	}, genai.WithSleep(rec.Sleep))
}

func TestGenerateSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "test-key", r.Header.Get(genai.APIKeyHeader))
			assert.Equal(t, "Kubetour/1.0", r.Header.Get("User-Agent"))

			var req api.GenerateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req.Contents, 1)
			require.Len(t, req.Contents[0].Parts, 1)
			assert.Equal(t, "explain etcd", req.Contents[0].Parts[0].Text)

			_, _ = w.Write([]byte(okBody))
		},
	))
	defer server.Close()

	rec := &sleepRecorder{}
	text, err := newClient(server.URL, rec).Generate(
		context.Background(), "explain etcd",
	)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Empty(t, rec.Delays())
}

func TestMissingCredential(t *testing.T) {
	var calls atomic.Int32
	server := newServer(t, &calls, func(_ int32, w http.ResponseWriter) {
		_, _ = w.Write([]byte(okBody))
	})

	cl := genai.NewClient(genai.Config{Endpoint: server.URL})
	_, err := cl.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, genai.ErrMissingCredential)
	assert.Equal(t, api.ErrorKindMissingCredential, genai.KindOf(err))
	assert.Equal(t, int32(0), calls.Load())
}

func TestRateLimitedNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := newServer(t, &calls, func(_ int32, w http.ResponseWriter) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	})

	rec := &sleepRecorder{}
	_, err := newClient(server.URL, rec).Generate(
		context.Background(), "prompt",
	)
	assert.ErrorIs(t, err, genai.ErrRateLimited)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, api.ErrorKindRateLimited, genai.KindOf(err))
	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, rec.Delays())
}

func TestRejectedNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := newServer(t, &calls, func(_ int32, w http.ResponseWriter) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	})

	rec := &sleepRecorder{}
	_, err := newClient(server.URL, rec).Generate(
		context.Background(), "prompt",
	)
	assert.ErrorIs(t, err, genai.ErrRequestRejected)
	assert.Contains(t, err.Error(), "API key not valid")
	assert.Equal(t, api.ErrorKindRequestRejected, genai.KindOf(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestRejectedWithoutMessage(t *testing.T) {
	var calls atomic.Int32
	server := newServer(t, &calls, func(_ int32, w http.ResponseWriter) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := newClient(server.URL, &sleepRecorder{}).Generate(
		context.Background(), "prompt",
	)
	assert.ErrorIs(t, err, genai.ErrRequestRejected)
	assert.Contains(t, err.Error(), "HTTP 403")
}

func TestServerErrorsRetriedThenSucceed(t *testing.T) {
	var calls atomic.Int32
	server := newServer(t, &calls, func(n int32, w http.ResponseWriter) {
		if n <= 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(okBody))
	})

	rec := &sleepRecorder{}
	text, err := newClient(server.URL, rec).Generate(
		context.Background(), "prompt",
	)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Equal(t, int32(4), calls.Load())
	assert.Equal(t, []time.Duration{
		2 * time.Second, 4 * time.Second, 8 * time.Second,
	}, rec.Delays())
}

func TestRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	server := newServer(t, &calls, func(_ int32, w http.ResponseWriter) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	})

	rec := &sleepRecorder{}
	_, err := newClient(server.URL, rec).Generate(
		context.Background(), "prompt",
	)
	assert.ErrorIs(t, err, genai.ErrExhausted)
	assert.Contains(t, err.Error(), "overloaded")
	assert.Equal(t, api.ErrorKindExhausted, genai.KindOf(err))
	assert.Equal(t, int32(4), calls.Load())
	assert.Len(t, rec.Delays(), 3)
}

func TestEmptyResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no candidates", `{"candidates":[]}`},
		{"empty text", `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`},
		{"not json", `<html></html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := newServer(t, &calls,
				func(_ int32, w http.ResponseWriter) {
					_, _ = w.Write([]byte(tt.body))
				},
			)

			_, err := newClient(server.URL, &sleepRecorder{}).Generate(
				context.Background(), "prompt",
			)
			assert.ErrorIs(t, err, genai.ErrEmptyResponse)
			assert.Equal(t, api.ErrorKindEmptyResponse, genai.KindOf(err))
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestTransportErrorRetried(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	rec := &sleepRecorder{}
	_, err := newClient(url, rec).Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, genai.ErrExhausted)
	assert.Len(t, rec.Delays(), 3)
}

func TestCancelDuringBackoff(t *testing.T) {
	var calls atomic.Int32
	server := newServer(t, &calls, func(_ int32, w http.ResponseWriter) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cl := genai.NewClient(genai.Config{
		APIKey:   "test-key",
		Endpoint: server.URL,
	}, genai.WithSleep(func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}))

	_, err := cl.Generate(ctx, "prompt")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAttempts(t *testing.T) {
	cl := genai.NewClient(genai.Config{APIKey: "k"})
	assert.Equal(t, 4, cl.Attempts())

	cl = genai.NewClient(genai.Config{
		APIKey: "k",
		Retry: genai.RetryConfig{
			BackoffType: genai.BackoffTypeFixed,
		},
	})
	assert.Equal(t, 1, cl.Attempts())
}

func TestExplicitZeroRetries(t *testing.T) {
	var calls atomic.Int32
	server := newServer(t, &calls, func(_ int32, w http.ResponseWriter) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	rec := &sleepRecorder{}
	cl := genai.NewClient(genai.Config{
		APIKey:   "k",
		Endpoint: server.URL,
		Retry: genai.RetryConfig{
			MaxRetries:  0,
			InitBackoff: time.Millisecond,
		},
	}, genai.WithSleep(rec.Sleep))
	assert.Equal(t, 1, cl.Attempts())

	_, err := cl.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, genai.ErrExhausted)
	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, rec.Delays())
}

func TestPartialRetryConfig(t *testing.T) {
	var calls atomic.Int32
	server := newServer(t, &calls, func(_ int32, w http.ResponseWriter) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	rec := &sleepRecorder{}
	cl := genai.NewClient(genai.Config{
		APIKey:   "k",
		Endpoint: server.URL,
		Retry:    genai.RetryConfig{MaxRetries: 2},
	}, genai.WithSleep(rec.Sleep))
	assert.Equal(t, 3, cl.Attempts())

	_, err := cl.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, genai.ErrExhausted)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, rec.Delays())
}

func TestKindOfUnknown(t *testing.T) {
	assert.Equal(t, api.ErrorKindUnknown, genai.KindOf(context.Canceled))
}
