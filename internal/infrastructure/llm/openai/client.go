// Package openai is the oracle transport for OpenAI-compatible APIs.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	gopenai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/kirillkom/ebook-organizer/internal/core/domain"
	"github.com/kirillkom/ebook-organizer/internal/infrastructure/llm"
	"github.com/kirillkom/ebook-organizer/internal/infrastructure/resilience"
)

type Client struct {
	api      *gopenai.Client
	model    string
	limiter  *rate.Limiter
	executor *resilience.Executor
}

// New builds a client for an OpenAI-compatible endpoint. baseURL may be
// empty for the default API host.
func New(baseURL, apiKey, model string, requestsPerMinute int, executor *resilience.Executor) *Client {
	cfg := gopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	var limiter *rate.Limiter
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerMinute)/60, 1)
	}
	return &Client{
		api:      gopenai.NewClientWithConfig(cfg),
		model:    model,
		limiter:  limiter,
		executor: executor,
	}
}

func (c *Client) Classify(ctx context.Context, requests []domain.ClassificationRequest) ([]domain.ClassificationResult, error) {
	raw, err := c.complete(ctx, "classify", llm.BuildClassificationPrompt(requests))
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
	raw, err := c.complete(ctx, "parse_instructions", llm.BuildInstructionPrompt(text))
	if err != nil {
		return domain.InstructionDirectives{}, domain.WrapError(domain.ErrOracle, "parse instructions", err)
	}
	directives, err := llm.ParseInstructionResponse(raw)
	if err != nil {
		return domain.InstructionDirectives{}, domain.WrapError(domain.ErrOracle, "parse instructions", err)
	}
	return directives, nil
}

func (c *Client) complete(ctx context.Context, operation, prompt string) (string, error) {
	var content string
	call := func(ctx context.Context) error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		resp, err := c.api.CreateChatCompletion(ctx, gopenai.ChatCompletionRequest{
			Model: c.model,
			Messages: []gopenai.ChatCompletionMessage{
				{Role: gopenai.ChatMessageRoleUser, Content: prompt},
			},
			ResponseFormat: &gopenai.ChatCompletionResponseFormat{
				Type: gopenai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if err != nil {
			return fmt.Errorf("chat completion %s: %w", operation, err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("chat completion %s: empty choices", operation)
		}
		content = resp.Choices[0].Message.Content
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, operation, call, classifyAPIError)
	} else {
		err = call(ctx)
	}
	return content, err
}

func classifyAPIError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	var apiErr *gopenai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusRequestTimeout, http.StatusTooManyRequests,
			http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		default:
			return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
