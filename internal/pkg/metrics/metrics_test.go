package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lk2023060901/ai-notebook-backend/internal/assistant/llm"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserve(t *testing.T) {
	m := New()

	m.ObserveChat("grounded", 3)
	m.ObserveChat("grounded", 1)
	m.ObserveChat("no_match", 0)
	m.ObserveModelCall("deepseek-chat", time.Second, nil)
	m.ObserveModelCall("deepseek-chat", time.Second, &llm.ModelError{Kind: llm.KindRateLimit})
	m.ObserveExtractionFailure("pdf")
	m.ObservePersistFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.chatRequests.WithLabelValues("grounded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.chatRequests.WithLabelValues("no_match")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.modelCalls.WithLabelValues("deepseek-chat", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.modelCalls.WithLabelValues("deepseek-chat", "rate_limit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.extractFailures.WithLabelValues("pdf")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persistFailures))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveChat("unselected", 0)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `notebook_chat_requests_total{mode="unselected"} 1`)
}
