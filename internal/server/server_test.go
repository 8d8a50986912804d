package server_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/kubetour/internal/assert/helpers"
	"github.com/kode4food/kubetour/internal/catalog"
	"github.com/kode4food/kubetour/internal/genai"
	"github.com/kode4food/kubetour/internal/sequencer"
	"github.com/kode4food/kubetour/internal/server"
	"github.com/kode4food/kubetour/internal/session"
	"github.com/kode4food/kubetour/pkg/api"
)

func TestCORSPreflight(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	w := serve(env, http.MethodOptions, "/tours", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestListTours(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	w := serve(env, http.MethodGet, "/tours", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var res api.ToursListResponse
	decode(t, w, &res)
	assert.Equal(t, len(env.Catalog.Tours()), res.Count)

	var found *api.TourDigest
	for _, d := range res.Tours {
		if d.ID == "deployment-flow" {
			found = d
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, 8, found.StepCount)
	assert.Equal(t, int64(1800), found.DelayMs)
}

func TestGetTour(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	w := serve(env, http.MethodGet, "/tours/traffic-sim", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tour api.Tour
	decode(t, w, &tour)
	assert.True(t, tour.Unstarted)
	assert.NotEmpty(t, tour.Steps)
}

func TestGetTourNotFound(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	w := serve(env, http.MethodGet, "/tours/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionLifecycle(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	w := serve(env, http.MethodPost, "/tours/deployment-flow/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var created api.SessionCreatedResponse
	decode(t, w, &created)
	st := created.Session
	require.NotNil(t, st)
	assert.Equal(t, 0, st.State.Index)
	assert.False(t, st.State.Playing)
	assert.Equal(t, 8, st.Count)
	assert.Equal(t, 1, env.Sessions.Len())

	base := "/sessions/" + string(st.ID)

	st = sessionCall(t, env, base+"/next")
	assert.Equal(t, 1, st.State.Index)

	st = sessionCall(t, env, base+"/jump/5")
	assert.Equal(t, 5, st.State.Index)
	assert.Equal(t, 5, st.Step.Index)

	st = sessionCall(t, env, base+"/prev")
	assert.Equal(t, 4, st.State.Index)

	st = sessionCall(t, env, base+"/start")
	assert.True(t, st.State.Playing)

	st = sessionCall(t, env, base+"/pause")
	assert.False(t, st.State.Playing)

	st = sessionCall(t, env, base+"/reset")
	assert.Equal(t, 0, st.State.Index)

	w = serve(env, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(env, http.MethodDelete, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Sessions.Len())

	w = serve(env, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionAutoAdvance(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	sess, err := env.Sessions.Create("deployment-flow")
	require.NoError(t, err)

	base := "/sessions/" + string(sess.ID())
	sessionCall(t, env, base+"/start")

	fired := env.Timers.FireAll(20)
	assert.Equal(t, 7, fired)

	w := serve(env, http.MethodGet, base, nil)
	var st api.SessionState
	decode(t, w, &st)
	assert.Equal(t, 7, st.State.Index)
	assert.False(t, st.State.Playing)
}

func TestSessionErrors(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	sess, err := env.Sessions.Create("scheduler-funnel")
	require.NoError(t, err)
	base := "/sessions/" + string(sess.ID())

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"out_of_range", base + "/jump/5", http.StatusBadRequest},
		{"negative", base + "/jump/-1", http.StatusBadRequest},
		{"not_a_number", base + "/jump/two", http.StatusBadRequest},
		{"unknown_action", base + "/rewind", http.StatusBadRequest},
		{"tick_rejected", base + "/tick", http.StatusBadRequest},
		{"missing_session", "/sessions/nope/next", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(env, http.MethodPost, tt.path, nil)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	assert.Equal(t, 0, sess.State().State.Index)
}

func TestCreateSessionUnknownTour(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	w := serve(env, http.MethodPost, "/tours/unknown/sessions", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, env.Sessions.Len())
}

func TestComponents(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	w := serve(env, http.MethodGet, "/components", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list api.ComponentsListResponse
	decode(t, w, &list)
	assert.Equal(t, len(env.Catalog.Components()), list.Count)

	w = serve(env, http.MethodGet, "/components/etcd", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var comp api.Component
	decode(t, w, &comp)
	assert.Equal(t, api.ComponentID("etcd"), comp.ID)

	w = serve(env, http.MethodGet, "/components/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExplainComponent(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	w := serve(env, http.MethodPost, "/components/kube-scheduler/explain", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var res api.ExplainResponse
	decode(t, w, &res)
	assert.Equal(t, helpers.DefaultAnswer, res.Text)
	assert.NotEmpty(t, res.Subject)
	assert.Equal(t, 1, env.Generator.Calls())
}

func TestExplainPromptAndField(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	env.Generator.SetResponse("What is a pod?", "the smallest unit")

	w := serve(env, http.MethodPost, "/explain",
		api.ExplainRequest{Prompt: "What is a pod?"},
	)
	require.Equal(t, http.StatusOK, w.Code)
	var res api.ExplainResponse
	decode(t, w, &res)
	assert.Equal(t, "the smallest unit", res.Text)

	w = serve(env, http.MethodPost, "/explain",
		api.ExplainRequest{Field: "spec.replicas"},
	)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &res)
	assert.Equal(t, "spec.replicas", res.Subject)

	w = serve(env, http.MethodPost, "/explain",
		api.ExplainRequest{Field: "spec.nothing"},
	)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(env, http.MethodPost, "/explain", api.ExplainRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(env, http.MethodPost, "/explain",
		api.ExplainRequest{Prompt: strings.Repeat("x", 5000)},
	)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExplainInvalidJSON(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	req := httptest.NewRequest(
		http.MethodPost, "/explain", bytes.NewReader([]byte("not-json")),
	)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.Server.SetupRoutes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExplainGenerationErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   api.ErrorKind
	}{
		{
			err:    genai.ErrMissingCredential,
			status: http.StatusServiceUnavailable,
			kind:   api.ErrorKindMissingCredential,
		},
		{
			err:    fmt.Errorf("%w: slow down", genai.ErrRateLimited),
			status: http.StatusTooManyRequests,
			kind:   api.ErrorKindRateLimited,
		},
		{
			err:    fmt.Errorf("%w: bad key", genai.ErrRequestRejected),
			status: http.StatusBadGateway,
			kind:   api.ErrorKindRequestRejected,
		},
		{
			err:    genai.ErrEmptyResponse,
			status: http.StatusBadGateway,
			kind:   api.ErrorKindEmptyResponse,
		},
		{
			err:    fmt.Errorf("%w after 4 attempts", genai.ErrExhausted),
			status: http.StatusGatewayTimeout,
			kind:   api.ErrorKindExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			env := helpers.NewTestServer(t)
			defer env.Cleanup()

			env.Generator.SetError("", tt.err)

			w := serve(env, http.MethodPost, "/components/etcd/explain", nil)
			require.Equal(t, tt.status, w.Code)

			var res api.ErrorResponse
			decode(t, w, &res)
			assert.Equal(t, tt.kind, res.Kind)
			assert.Equal(t, tt.status, res.Status)
		})
	}
}

func TestExplainErrorNotCached(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	env.Generator.SetError("", genai.ErrEmptyResponse)
	w := serve(env, http.MethodPost, "/components/etcd/explain", nil)
	require.Equal(t, http.StatusBadGateway, w.Code)

	env.Generator.ClearError("")
	w = serve(env, http.MethodPost, "/components/etcd/explain", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(env, http.MethodPost, "/components/etcd/explain", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, env.Generator.Calls())
}

func TestAnnotateManifest(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	manifest := `apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
spec:
  replicas: 3
  selector:
    matchLabels:
      app: web
  template:
    metadata:
      labels:
        app: web
    spec:
      containers:
        - name: web
          image: nginx:1.27
`
	req := httptest.NewRequest(
		http.MethodPost, "/manifests/annotate", strings.NewReader(manifest),
	)
	w := httptest.NewRecorder()
	env.Server.SetupRoutes().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var res api.AnnotateResponse
	decode(t, w, &res)
	assert.Equal(t, len(res.Annotations), res.Count)
	assert.NotZero(t, res.Count)
	require.Len(t, res.Workloads, 1)
	assert.Equal(t, int32(3), res.Workloads[0].Replicas)
	assert.Equal(t, []string{"nginx:1.27"}, res.Workloads[0].Images)
}

func TestAnnotateManifestErrors(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"empty", "", http.StatusBadRequest},
		{"invalid", "kind: [unclosed", http.StatusBadRequest},
		{
			name:   "too_large",
			body:   strings.Repeat("#", server.MaxManifestSize+1),
			status: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(
				http.MethodPost, "/manifests/annotate",
				strings.NewReader(tt.body),
			)
			w := httptest.NewRecorder()
			env.Server.SetupRoutes().ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestGetQuiz(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	w := serve(env, http.MethodGet, "/quiz/easy", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var res api.QuizResponse
	decode(t, w, &res)
	assert.Equal(t, api.DifficultyEasy, res.Difficulty)
	assert.NotZero(t, res.Count)
	assert.NotContains(t, w.Body.String(), `"answer"`)

	w = serve(env, http.MethodGet, "/quiz/impossible", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitQuizAndHistory(t *testing.T) {
	env := helpers.NewTestServer(t, helpers.WithRedisHistory())
	defer env.Cleanup()

	questions, err := env.Catalog.Questions(api.DifficultyMedium)
	require.NoError(t, err)
	answers := make([]int, len(questions))
	for i, q := range questions {
		answers[i] = q.Answer
	}
	answers[0] = -1

	w := serve(env, http.MethodPost, "/quiz/medium",
		api.QuizSubmission{Answers: answers},
	)
	require.Equal(t, http.StatusCreated, w.Code)

	var res api.QuizResultResponse
	decode(t, w, &res)
	assert.Equal(t, len(questions)-1, res.Attempt.Score)
	assert.Equal(t, len(questions), res.Attempt.Total)
	require.Len(t, res.History, 1)
	assert.True(t, env.Redis.Exists("k8s-quiz-history"))

	w = serve(env, http.MethodGet, "/quiz-history", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var hist api.QuizHistoryResponse
	decode(t, w, &hist)
	assert.Equal(t, 1, hist.Count)
	assert.Equal(t, res.Attempt, hist.History[0])

	w = serve(env, http.MethodDelete, "/quiz-history", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(env, http.MethodGet, "/quiz-history", nil)
	decode(t, w, &hist)
	assert.Equal(t, 0, hist.Count)
	assert.NotNil(t, hist.History)
}

func TestQuizHistoryBounded(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	for range 11 {
		w := serve(env, http.MethodPost, "/quiz/easy",
			api.QuizSubmission{Answers: []int{}},
		)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := serve(env, http.MethodGet, "/quiz-history", nil)
	var hist api.QuizHistoryResponse
	decode(t, w, &hist)
	assert.Equal(t, 10, hist.Count)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{catalog.ErrTourNotFound, http.StatusNotFound},
		{session.ErrSessionNotFound, http.StatusNotFound},
		{sequencer.ErrIndexOutOfRange, http.StatusBadRequest},
		{sequencer.ErrSequencerClosed, http.StatusGone},
		{genai.ErrRateLimited, http.StatusTooManyRequests},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("context: %w", tt.err)
			assert.Equal(t, tt.status, server.ErrorStatus(wrapped))
		})
	}
}

func serve(
	env *helpers.TestServerEnv, method, path string, body any,
) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		data, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	env.Server.SetupRoutes().ServeHTTP(w, req)
	return w
}

func sessionCall(
	t *testing.T, env *helpers.TestServerEnv, path string,
) *api.SessionState {
	t.Helper()
	w := serve(env, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var st api.SessionState
	decode(t, w, &st)
	return &st
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}
