package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/ebook-organizer/internal/config"
	"github.com/kirillkom/ebook-organizer/internal/core/domain"
	"github.com/kirillkom/ebook-organizer/internal/core/ports"
	"github.com/kirillkom/ebook-organizer/internal/core/usecase"
	"github.com/kirillkom/ebook-organizer/internal/infrastructure/extractor"
	"github.com/kirillkom/ebook-organizer/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/ebook-organizer/internal/infrastructure/llm/openai"
	"github.com/kirillkom/ebook-organizer/internal/infrastructure/resilience"
	"github.com/kirillkom/ebook-organizer/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/ebook-organizer/internal/observability/metrics"
)

type App struct {
	Config      config.Config
	Interpreter *usecase.Interpreter
	Planner     *usecase.Planner
	Metrics     *metrics.RunMetrics
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	resilienceCfg := resilience.DefaultConfig()
	resilienceCfg.RetryMaxAttempts = cfg.RetryAttempts
	executor := resilience.NewExecutor(resilienceCfg)

	var oracle interface {
		ports.ClassificationOracle
		ports.InstructionOracle
	}
	switch cfg.Provider {
	case "", "ollama":
		oracle = ollama.New(cfg.OllamaURL, cfg.OllamaModel, cfg.OracleRPM, executor)
	case "openai":
		oracle = openai.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OracleRPM, executor)
	default:
		return nil, domain.WrapError(domain.ErrConfig, "select oracle provider",
			fmt.Errorf("unknown provider %q", cfg.Provider))
	}

	runMetrics := metrics.NewRunMetrics("organizer")
	store := localfs.New()

	basePolicy, err := cfg.BasePolicy()
	if err != nil {
		return nil, err
	}

	planner := usecase.NewPlanner(
		extractor.New(cfg.MaxTextSample),
		&instrumentedOracle{inner: oracle, metrics: runMetrics},
		&instrumentedStore{inner: store, metrics: runMetrics},
		logger,
		cfg.BatchSize,
		cfg.MaxTextSample,
	)

	return &App{
		Config:      cfg,
		Interpreter: usecase.NewInterpreter(oracle, basePolicy, logger),
		Planner:     planner,
		Metrics:     runMetrics,
	}, nil
}

type instrumentedOracle struct {
	inner   ports.ClassificationOracle
	metrics *metrics.RunMetrics
}

func (o *instrumentedOracle) Classify(ctx context.Context, requests []domain.ClassificationRequest) ([]domain.ClassificationResult, error) {
	results, err := o.inner.Classify(ctx, requests)
	o.metrics.ObserveOracleCall(err)
	return results, err
}

type instrumentedStore struct {
	inner   ports.FileStore
	metrics *metrics.RunMetrics
}

func (s *instrumentedStore) EnsureDir(path string) error {
	return s.inner.EnsureDir(path)
}

func (s *instrumentedStore) ListNames(dir string) (map[string]struct{}, error) {
	return s.inner.ListNames(dir)
}

func (s *instrumentedStore) Copy(ctx context.Context, src, dst string) error {
	start := time.Now()
	err := s.inner.Copy(ctx, src, dst)
	if err == nil {
		s.metrics.ObserveCopy(time.Since(start))
	}
	return err
}
