// Package ollama implements the answer generator over the Ollama HTTP
// API (or any server speaking the same chat protocol).
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/auditcloud/ragdex/internal/domain"
	"github.com/auditcloud/ragdex/internal/metrics"
)

// DefaultTimeout bounds one generation round trip. Local models can be
// slow on first load, so this is deliberately generous.
const DefaultTimeout = 120 * time.Second

// Generator produces answer text via the Ollama chat endpoint.
type Generator struct {
	client  *http.Client
	baseURL string
	model   string
	logger  *zap.Logger
}

// Config holds the generation provider settings.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewGenerator creates an Ollama-backed generator.
func NewGenerator(cfg *Config) *Generator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		logger:  logger,
	}
}

// chatRequest is the non-streaming /api/chat payload.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float32 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

// chatResponse covers both the chat shape (message.content) and the
// legacy generate shape (response) some compatible servers return.
type chatResponse struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate sends the prompt and returns the model's text.
func (g *Generator) Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	payload := chatRequest{
		Model:    g.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Stream:   false,
		Options:  chatOptions{Temperature: temperature, NumPredict: maxTokens},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", domain.ErrGenerationUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", domain.ErrGenerationUnavailable)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()

	resp, err := g.client.Do(req)

	duration := time.Since(start)

	if err != nil {
		cerr := classifyTransportError(err, duration)
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, "error").Inc()
		if errors.Is(cerr, domain.ErrGenerationTimeout) {
			metrics.GenerationErrorsTotal.WithLabelValues(g.model, "timeout").Inc()
		} else {
			metrics.GenerationErrorsTotal.WithLabelValues(g.model, "transport").Inc()
		}
		return "", cerr
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, "error").Inc()
		metrics.GenerationErrorsTotal.WithLabelValues(g.model, "read_body").Inc()
		return "", fmt.Errorf("read chat response: %w", domain.ErrGenerationUnavailable)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, "error").Inc()
		metrics.GenerationErrorsTotal.WithLabelValues(g.model, "http_status").Inc()
		return "", fmt.Errorf("chat endpoint returned %s: %s: %w",
			resp.Status, strings.TrimSpace(string(respBody)), domain.ErrGenerationUnavailable)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, "error").Inc()
		metrics.GenerationErrorsTotal.WithLabelValues(g.model, "parse").Inc()
		return "", fmt.Errorf("parse chat response: %w", domain.ErrGenerationUnavailable)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(g.model).Observe(duration.Seconds())

	text := parsed.Message.Content
	if text == "" {
		text = parsed.Response
	}
	g.logger.Debug("generation completed",
		zap.String("model", g.model),
		zap.Duration("duration", duration),
		zap.Int("answer_chars", len(text)))
	return text, nil
}

// HealthCheck verifies server availability via the model listing endpoint.
func (g *Generator) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("build tags request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tags endpoint returned %s", resp.Status)
	}
	return nil
}

// classifyTransportError maps client failures onto the pipeline sentinels:
// deadline expiry is a timeout, everything else an availability failure.
func classifyTransportError(err error, duration time.Duration) error {
	var urlErr *url.Error
	timedOut := errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &urlErr) && urlErr.Timeout())
	if timedOut {
		return fmt.Errorf("generation exceeded %s: %w", duration.Round(time.Second), domain.ErrGenerationTimeout)
	}
	return fmt.Errorf("chat request failed: %v: %w", err, domain.ErrGenerationUnavailable)
}
