package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/ebook-organizer/internal/core/domain"
	"github.com/kirillkom/ebook-organizer/internal/infrastructure/resilience"
)

func TestClassifySendsPromptAndParsesEnvelope(t *testing.T) {
	var capturedPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		capturedPrompt, _ = payload["prompt"].(string)
		if format, _ := payload["format"].(string); format != "json" {
			t.Fatalf("expected json format, got %q", format)
		}
		_, _ = w.Write([]byte(`{"response":"{\"books\":[{\"topic\":\"Programming\",\"confidence\":0.9}]}"}`))
	}))
	defer server.Close()

	client := New(server.URL, "classifier-model", 0, nil)
	results, err := client.Classify(context.Background(), []domain.ClassificationRequest{
		{TitleGuess: "Fluent Python"},
	})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if len(results) != 1 || results[0].Topic != "Programming" {
		t.Fatalf("unexpected results %+v", results)
	}
	if !strings.Contains(capturedPrompt, "Fluent Python") {
		t.Fatalf("title guess missing from prompt: %s", capturedPrompt)
	}
}

func TestClassifyRetriesTransientStatus(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"response":"{\"books\":[{\"topic\":\"Science\",\"confidence\":0.5}]}"}`))
	}))
	defer server.Close()

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 1,
		BreakerEnabled:      false,
	})
	client := New(server.URL, "classifier-model", 0, executor)

	results, err := client.Classify(context.Background(), []domain.ClassificationRequest{{TitleGuess: "x"}})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected one retry, got %d attempts", attempts)
	}
	if len(results) != 1 || results[0].Topic != "Science" {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestClassifyExhaustedRetriesSurfaceOracleError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    2,
		RetryInitialBackoff: 1,
		BreakerEnabled:      false,
	})
	client := New(server.URL, "classifier-model", 0, executor)

	_, err := client.Classify(context.Background(), []domain.ClassificationRequest{{TitleGuess: "x"}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrOracle) {
		t.Fatalf("expected oracle error kind, got %v", err)
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestParseInstructionsReturnsDirectives(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":"{\"allowed_topics\":[\"programming\"],\"language_first\":true}"}`))
	}))
	defer server.Close()

	client := New(server.URL, "classifier-model", 0, nil)
	directives, err := client.ParseInstructions(context.Background(), "only programming")
	if err != nil {
		t.Fatalf("ParseInstructions() error = %v", err)
	}
	if len(directives.AllowedTopics) != 1 || !directives.LanguageFirst {
		t.Fatalf("unexpected directives %+v", directives)
	}
}
