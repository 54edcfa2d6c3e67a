package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/lk2023060901/ai-notebook-backend/internal/pkg/errors"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okBody = `{"id":"c1","object":"chat.completion","created":1,"model":"deepseek-chat",
"choices":[{"index":0,"message":{"role":"assistant","content":"光合作用发生在叶绿体中[1]。"},"finish_reason":"stop"}],
"usage":{"prompt_tokens":12,"completion_tokens":8,"total_tokens":20}}`

type recordingObserver struct {
	calls []ErrorKind
}

func (o *recordingObserver) ObserveModelCall(_ string, _ time.Duration, err *ModelError) {
	if err == nil {
		o.calls = append(o.calls, "")
		return
	}
	o.calls = append(o.calls, err.Kind)
}

func newTestClient(t *testing.T, url string, timeout time.Duration, obs Observer) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = url
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	c, err := NewClient(cfg, obs, logger.NewNop())
	require.NoError(t, err)
	return c
}

func TestCompleteSuccess(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okBody))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	c := newTestClient(t, srv.URL+"/v1", 0, obs)

	resp, err := c.Complete(context.Background(), &CompletionRequest{
		System: "system",
		User:   "用户问题：什么是光合作用",
		Model:  "gpt-4o",
		JSON:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, "光合作用发生在叶绿体中[1]。", resp.Text)
	assert.Equal(t, "deepseek-chat", resp.Model)
	assert.Equal(t, 12, resp.PromptTokens)

	assert.Equal(t, "deepseek-chat", got["model"])
	assert.InDelta(t, 0.7, got["temperature"], 0.0001)
	assert.Equal(t, map[string]interface{}{"type": "json_object"}, got["response_format"])
	assert.Len(t, got["messages"], 2)
	assert.Equal(t, []ErrorKind{""}, obs.calls)
}

func TestResolveModel(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1", 0, nil)

	assert.Equal(t, "deepseek-coder", c.ResolveModel("deepseek-coder"))
	assert.Equal(t, "deepseek-chat", c.ResolveModel(""))
	assert.Equal(t, "deepseek-chat", c.ResolveModel("claude"))
}

func TestCompleteErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   ErrorKind
		wantStatus int
		wantCode   int
	}{
		{
			name:       "rate limited",
			status:     http.StatusTooManyRequests,
			body:       `{"error":{"message":"slow down","type":"rate_limit"}}`,
			wantKind:   KindRateLimit,
			wantStatus: http.StatusTooManyRequests,
			wantCode:   apperrors.ErrModelRateLimited,
		},
		{
			name:       "unauthorized",
			status:     http.StatusUnauthorized,
			body:       `{"error":{"message":"bad key","type":"auth"}}`,
			wantKind:   KindUnauthorized,
			wantStatus: http.StatusUnauthorized,
			wantCode:   apperrors.ErrModelUnauthorized,
		},
		{
			name:       "upstream status passes through",
			status:     http.StatusBadGateway,
			body:       `{"error":{"message":"upstream down","type":"server"}}`,
			wantKind:   KindStatus,
			wantStatus: http.StatusBadGateway,
			wantCode:   apperrors.ErrModelStatus,
		},
		{
			name:       "non json error body",
			status:     http.StatusInternalServerError,
			body:       `oops`,
			wantKind:   KindStatus,
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperrors.ErrModelStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL, 0, nil)
			_, err := c.Complete(context.Background(), &CompletionRequest{User: "hi"})
			require.Error(t, err)

			var me *ModelError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, tt.wantKind, me.Kind)
			assert.Equal(t, tt.wantStatus, me.HTTPStatus())
			assert.NotEmpty(t, me.Notice())

			appErr := me.AppError()
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, tt.wantStatus, appErr.HTTPStatus())
		})
	}
}

func TestCompleteConnectionFailures(t *testing.T) {
	t.Run("refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		obs := &recordingObserver{}
		c := newTestClient(t, url, 0, obs)
		_, err := c.Complete(context.Background(), &CompletionRequest{User: "hi"})

		me := Classify(err)
		assert.Equal(t, KindConnection, me.Kind)
		assert.Equal(t, http.StatusServiceUnavailable, me.HTTPStatus())
		assert.Equal(t, []ErrorKind{KindConnection}, obs.calls)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		c := newTestClient(t, srv.URL, 50*time.Millisecond, nil)
		_, err := c.Complete(context.Background(), &CompletionRequest{User: "hi"})
		assert.Equal(t, KindConnection, Classify(err).Kind)
	})
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))

	generic := Classify(errors.New("boom"))
	assert.Equal(t, KindUnknown, generic.Kind)
	assert.Equal(t, http.StatusInternalServerError, generic.HTTPStatus())
	assert.Contains(t, generic.Notice(), "boom")

	existing := &ModelError{Kind: KindRateLimit, Err: errors.New("x")}
	assert.Same(t, existing, Classify(existing))
}

func TestTokenCounterFallback(t *testing.T) {
	tc := NewTokenCounter("no-such-encoding", logger.NewNop())
	assert.Equal(t, 4, tc.Count("光合作用"))
}
