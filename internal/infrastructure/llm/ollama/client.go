// Package ollama is the Ollama-backed classification oracle transport.
package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kirillkom/ebook-organizer/internal/core/domain"
	"github.com/kirillkom/ebook-organizer/internal/infrastructure/llm"
	"github.com/kirillkom/ebook-organizer/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
}

// New builds a client. requestsPerMinute <= 0 disables rate limiting;
// executor may be nil to call the API without retry.
func New(baseURL, model string, requestsPerMinute int, executor *resilience.Executor) *Client {
	var limiter *rate.Limiter
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerMinute)/60, 1)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		limiter:    limiter,
		executor:   executor,
	}
}

// Classify submits one batch. Transient failures are retried by the
// executor; the caller owns degrading items when the batch fails for good.
func (c *Client) Classify(ctx context.Context, requests []domain.ClassificationRequest) ([]domain.ClassificationResult, error) {
	raw, err := c.generate(ctx, "classify", llm.BuildClassificationPrompt(requests))
	if err != nil {
		return nil, domain.WrapError(domain.ErrOracle, "classify batch", err)
	}
	results, err := llm.ParseClassificationResponse(raw)
	if err != nil {
		return nil, domain.WrapError(domain.ErrOracle, "parse classification response", err)
	}
	return results, nil
}

func (c *Client) ParseInstructions(ctx context.Context, text string) (domain.InstructionDirectives, error) {
	raw, err := c.generate(ctx, "parse_instructions", llm.BuildInstructionPrompt(text))
	if err != nil {
		return domain.InstructionDirectives{}, domain.WrapError(domain.ErrOracle, "parse instructions", err)
	}
	directives, err := llm.ParseInstructionResponse(raw)
	if err != nil {
		return domain.InstructionDirectives{}, domain.WrapError(domain.ErrOracle, "parse instructions", err)
	}
	return directives, nil
}

func (c *Client) generate(ctx context.Context, operation, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}

	var response struct {
		Response string `json:"response"`
	}
	call := func(ctx context.Context) error {
		return c.postJSON(ctx, "/api/generate", reqBody, &response, operation)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, operation, call, classifyOracleError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded(operation, err)
	}
	return strings.TrimSpace(response.Response), nil
}
