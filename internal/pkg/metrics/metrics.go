package metrics

import (
	"net/http"
	"time"

	"github.com/lk2023060901/ai-notebook-backend/internal/assistant/llm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "notebook"

// Metrics 业务指标，使用独立 Registry
type Metrics struct {
	registry *prometheus.Registry

	chatRequests    *prometheus.CounterVec
	modelCalls      *prometheus.CounterVec
	modelLatency    *prometheus.HistogramVec
	retrievedChunks prometheus.Histogram
	extractFailures *prometheus.CounterVec
	persistFailures prometheus.Counter
}

// New 创建并注册全部指标
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		chatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Chat requests by prompt mode.",
		}, []string{"mode"}),
		modelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Model calls by outcome (ok or failure kind).",
		}, []string{"model", "outcome"}),
		modelLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_call_duration_seconds",
			Help:      "Model call latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
		}, []string{"model"}),
		retrievedChunks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieved_chunks",
			Help:      "Fragments placed into the prompt per request.",
			Buckets:   prometheus.LinearBuckets(0, 1, 9),
		}),
		extractFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_failures_total",
			Help:      "Documents whose text could not be extracted.",
		}, []string{"type"}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Failed snapshot saves.",
		}),
	}

	reg.MustRegister(
		m.chatRequests,
		m.modelCalls,
		m.modelLatency,
		m.retrievedChunks,
		m.extractFailures,
		m.persistFailures,
	)
	return m
}

// Registry 返回指标注册表
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveChat 记录一次对话请求
func (m *Metrics) ObserveChat(mode string, retrieved int) {
	m.chatRequests.WithLabelValues(mode).Inc()
	m.retrievedChunks.Observe(float64(retrieved))
}

// ObserveModelCall 实现 llm.Observer
func (m *Metrics) ObserveModelCall(model string, latency time.Duration, err *llm.ModelError) {
	outcome := "ok"
	if err != nil {
		outcome = string(err.Kind)
	}
	m.modelCalls.WithLabelValues(model, outcome).Inc()
	m.modelLatency.WithLabelValues(model).Observe(latency.Seconds())
}

// ObserveExtractionFailure 记录提取失败
func (m *Metrics) ObserveExtractionFailure(fileType string) {
	m.extractFailures.WithLabelValues(fileType).Inc()
}

// ObservePersistFailure 记录保存失败
func (m *Metrics) ObservePersistFailure() {
	m.persistFailures.Inc()
}
