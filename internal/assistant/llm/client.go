package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Completer produces a single chat completion.
type Completer interface {
	Complete(ctx context.Context, req *CompletionRequest) (*Completion, error)
}

// CompletionRequest is one system + user exchange.
type CompletionRequest struct {
	System      string
	User        string
	Model       string   // empty or unknown names fall back to the default model
	Temperature *float32 // nil uses the configured default
	MaxTokens   int
	JSON        bool // ask for a JSON object reply
}

// Completion is a successful model reply.
type Completion struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Latency          time.Duration
}

// Config configures the OpenAI-compatible client.
type Config struct {
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	DefaultModel  string        `mapstructure:"default_model"`
	AllowedModels []string      `mapstructure:"allowed_models"`
	Temperature   float32       `mapstructure:"temperature"`
	Timeout       time.Duration `mapstructure:"timeout"`
	CountTokens   bool          `mapstructure:"count_tokens"`
}

// DefaultConfig targets the DeepSeek endpoint.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       "https://api.deepseek.com/v1",
		DefaultModel:  "deepseek-chat",
		AllowedModels: []string{"deepseek-chat", "deepseek-coder"},
		Temperature:   0.7,
		Timeout:       30 * time.Second,
	}
}

// Observer receives call outcomes, e.g. for metrics.
type Observer interface {
	ObserveModelCall(model string, latency time.Duration, err *ModelError)
}

// Client calls an OpenAI-compatible chat completion API.
type Client struct {
	client   *openai.Client
	cfg      *Config
	allowed  map[string]struct{}
	tokens   *TokenCounter
	observer Observer
	logger   *logger.Logger
}

// NewClient creates the model client. A missing API key is only a warning so
// the server can start; calls will then fail as unauthorized.
func NewClient(cfg *Config, observer Observer, lgr *logger.Logger) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.DefaultModel == "" {
		return nil, fmt.Errorf("default model is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if lgr == nil {
		lgr = logger.L()
	}
	if cfg.APIKey == "" {
		lgr.Warn("llm api key is empty, model calls will be rejected upstream")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	allowed := make(map[string]struct{}, len(cfg.AllowedModels)+1)
	allowed[cfg.DefaultModel] = struct{}{}
	for _, m := range cfg.AllowedModels {
		allowed[m] = struct{}{}
	}

	c := &Client{
		client:   openai.NewClientWithConfig(clientCfg),
		cfg:      cfg,
		allowed:  allowed,
		observer: observer,
		logger:   lgr.Named("llm"),
	}
	if cfg.CountTokens {
		c.tokens = NewTokenCounter("cl100k_base", c.logger)
	}

	c.logger.Info("llm client created",
		zap.String("base_url", clientCfg.BaseURL),
		zap.String("default_model", cfg.DefaultModel),
		zap.Duration("timeout", cfg.Timeout))

	return c, nil
}

// ResolveModel returns name when it is allowed, otherwise the default model.
func (c *Client) ResolveModel(name string) string {
	if _, ok := c.allowed[name]; ok {
		return name
	}
	if name != "" {
		c.logger.Warn("unknown model requested, using default",
			zap.String("requested", name),
			zap.String("default", c.cfg.DefaultModel))
	}
	return c.cfg.DefaultModel
}

// Complete sends the request under the configured timeout. Errors are *ModelError.
func (c *Client) Complete(ctx context.Context, req *CompletionRequest) (*Completion, error) {
	model := c.ResolveModel(req.Model)
	temperature := c.cfg.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	log := c.logger.WithContext(ctx)
	fields := []zap.Field{zap.String("model", model), zap.Float32("temperature", temperature)}
	if c.tokens != nil {
		fields = append(fields, zap.Int("prompt_tokens_estimate", c.tokens.Count(req.System+req.User)))
	}
	log.Debug("calling model", fields...)

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(callCtx, chatReq)
	latency := time.Since(start)

	if err == nil && len(resp.Choices) == 0 {
		err = errors.New("model returned no choices")
	}
	if err != nil {
		me := Classify(err)
		c.observe(model, latency, me)
		log.Error("model call failed",
			zap.String("model", model),
			zap.String("kind", string(me.Kind)),
			zap.Int("status", me.StatusCode),
			zap.Duration("latency", latency),
			zap.Error(err))
		return nil, me
	}

	c.observe(model, latency, nil)
	log.Info("model call completed",
		zap.String("model", model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("latency", latency))

	return &Completion{
		Text:             resp.Choices[0].Message.Content,
		Model:            model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		Latency:          latency,
	}, nil
}

func (c *Client) observe(model string, latency time.Duration, err *ModelError) {
	if c.observer != nil {
		c.observer.ObserveModelCall(model, latency, err)
	}
}
