package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kirillkom/ebook-organizer/internal/core/domain"
	"github.com/kirillkom/ebook-organizer/internal/core/ports"
)

// Planner orchestrates one organization run: batch classification, a
// single-threaded planning pass that assigns every destination name before
// any I/O, then copy execution. Source files are never modified.
type Planner struct {
	extractor ports.DocumentExtractor
	oracle    ports.ClassificationOracle
	store     ports.FileStore
	logger    *slog.Logger
	batchSize int
	maxSample int
}

func NewPlanner(
	extractor ports.DocumentExtractor,
	oracle ports.ClassificationOracle,
	store ports.FileStore,
	logger *slog.Logger,
	batchSize int,
	maxSample int,
) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Planner{
		extractor: extractor,
		oracle:    oracle,
		store:     store,
		logger:    logger,
		batchSize: batchSize,
		maxSample: maxSample,
	}
}

// OrganizeDir extracts every regular file directly under srcDir and
// organizes the results into destRoot. Per-file extraction failures become
// Failed outcomes; only an unreadable source directory or an uncreatable
// destination root is fatal.
func (p *Planner) OrganizeDir(ctx context.Context, srcDir string, policy domain.PolicyConfig, destRoot string) (*domain.RunReport, error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, fmt.Errorf("read source directory: %w", err)
	}

	var docs []domain.ExtractedDocument
	var preFailed []domain.PlannedOperation
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(srcDir, entry.Name())
		doc, err := p.extractor.Extract(ctx, path)
		if err != nil {
			p.logger.Warn("extract_failed", "source", path, "error", err)
			preFailed = append(preFailed, domain.PlannedOperation{
				SourcePath: path,
				Outcome:    domain.OutcomeFailed,
				Err:        err,
			})
			continue
		}
		docs = append(docs, doc)
	}

	return p.run(ctx, docs, preFailed, policy, destRoot)
}

// Run organizes already-extracted documents into destRoot.
func (p *Planner) Run(ctx context.Context, docs []domain.ExtractedDocument, policy domain.PolicyConfig, destRoot string) (*domain.RunReport, error) {
	return p.run(ctx, docs, nil, policy, destRoot)
}

func (p *Planner) run(
	ctx context.Context,
	docs []domain.ExtractedDocument,
	preFailed []domain.PlannedOperation,
	policy domain.PolicyConfig,
	destRoot string,
) (*domain.RunReport, error) {
	// Inability to create the destination root is the one unrecoverable
	// precondition of a run.
	if err := p.store.EnsureDir(destRoot); err != nil {
		return nil, fmt.Errorf("create destination root: %w", err)
	}

	// Deterministic ordering keeps collision suffixes stable for a fixed
	// input set.
	docs = append([]domain.ExtractedDocument(nil), docs...)
	sort.Slice(docs, func(i, j int) bool { return docs[i].SourcePath < docs[j].SourcePath })

	results, degraded := p.classifyAll(ctx, docs, policy)

	plan := p.buildPlan(docs, results, degraded, policy, destRoot)
	p.execute(ctx, plan)

	for _, op := range preFailed {
		plan.Add(op)
	}

	report := domain.NewRunReport(plan)
	p.logger.Info("run_complete",
		"run_id", report.RunID,
		"copied", report.Copied,
		"excluded", report.Excluded,
		"failed", report.Failed,
	)
	return report, nil
}

// classifyAll submits documents in batches. A batch that fails or returns
// the wrong result count degrades each of its items to the fallback
// classification; degraded items are flagged so they bypass the scope
// filter and still land in the fallback category.
func (p *Planner) classifyAll(ctx context.Context, docs []domain.ExtractedDocument, policy domain.PolicyConfig) ([]domain.ClassificationResult, []bool) {
	results := make([]domain.ClassificationResult, 0, len(docs))
	degraded := make([]bool, len(docs))

	for start := 0; start < len(docs); start += p.batchSize {
		end := start + p.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]
		requests := BuildRequests(batch, policy, p.maxSample)

		batchResults, err := p.oracle.Classify(ctx, requests)
		if err == nil && len(batchResults) != len(batch) {
			err = domain.WrapError(domain.ErrOracle, "classify batch",
				fmt.Errorf("expected %d results, got %d", len(batch), len(batchResults)))
		}
		if err != nil {
			p.logger.Warn("classification_degraded",
				"batch_start", start,
				"batch_size", len(batch),
				"error", err,
			)
			for i := range batch {
				degraded[start+i] = true
				results = append(results, fallbackResult(policy))
			}
			continue
		}
		for _, r := range batchResults {
			results = append(results, normalizeResult(r, policy))
		}
	}
	return results, degraded
}

// buildPlan is the single-threaded planning pass: every destination name is
// assigned here, before any copy, so same-directory collisions cannot race.
func (p *Planner) buildPlan(
	docs []domain.ExtractedDocument,
	results []domain.ClassificationResult,
	degraded []bool,
	policy domain.PolicyConfig,
	destRoot string,
) *domain.Plan {
	plan := &domain.Plan{}
	taken := make(map[string]map[string]struct{})

	for i, doc := range docs {
		result := results[i]

		var category domain.CategoryPath
		if degraded[i] {
			category = domain.CategoryPath{domain.SanitizeSegment(policy.FallbackCategory)}
		} else {
			category = ResolveCategory(result, policy)
		}
		if category.Excluded() {
			p.logger.Info("document_excluded", "source", doc.SourcePath, "topic", result.Topic)
			plan.Add(domain.PlannedOperation{
				SourcePath: doc.SourcePath,
				Category:   category,
				Outcome:    domain.OutcomeExcluded,
			})
			continue
		}

		destDir := filepath.Join(append([]string{destRoot}, category...)...)
		names, ok := taken[destDir]
		if !ok {
			existing, err := p.store.ListNames(destDir)
			if err != nil {
				existing = make(map[string]struct{})
			}
			names = existing
			taken[destDir] = names
		}

		filename := ComposeFilename(doc, result, policy, names)
		names[filename] = struct{}{}

		plan.Add(domain.PlannedOperation{
			SourcePath:      doc.SourcePath,
			DestinationPath: filepath.Join(destDir, filename),
			Category:        category,
			FinalFilename:   filename,
			Outcome:         domain.OutcomePlanned,
		})
	}
	return plan
}

// execute copies every planned operation. Destination names are already
// unique, so one document's failure never affects another.
func (p *Planner) execute(ctx context.Context, plan *domain.Plan) {
	for i := range plan.Operations {
		op := &plan.Operations[i]
		if op.Outcome != domain.OutcomePlanned {
			continue
		}

		if err := p.store.EnsureDir(filepath.Dir(op.DestinationPath)); err != nil {
			op.Outcome = domain.OutcomeFailed
			op.Err = domain.WrapError(domain.ErrCopy, "create category directory", err)
			continue
		}
		if err := p.store.Copy(ctx, op.SourcePath, op.DestinationPath); err != nil {
			p.logger.Warn("copy_failed", "source", op.SourcePath, "error", err)
			op.Outcome = domain.OutcomeFailed
			op.Err = domain.WrapError(domain.ErrCopy, "copy file", err)
			continue
		}

		op.Outcome = domain.OutcomeCopied
		p.logger.Info("document_copied",
			"source", op.SourcePath,
			"category", op.Category.String(),
			"filename", op.FinalFilename,
		)
	}
}
