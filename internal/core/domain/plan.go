package domain

import (
	"strings"

	"github.com/google/uuid"
)

// ExcludedCategoryName is the sentinel category for documents rejected by
// the scope filter. It never appears on disk.
const ExcludedCategoryName = "__EXCLUDED__"

// CategoryPath is an ordered sequence of sanitized, filesystem-safe path
// segments. Depth is 1 or 2: category, optional subcategory.
type CategoryPath []string

// ExcludedPath is the sentinel path for out-of-scope documents.
func ExcludedPath() CategoryPath {
	return CategoryPath{ExcludedCategoryName}
}

// Excluded reports whether the path is the scope-filter sentinel.
func (p CategoryPath) Excluded() bool {
	return len(p) == 1 && p[0] == ExcludedCategoryName
}

func (p CategoryPath) String() string {
	return strings.Join(p, "/")
}

// Outcome is the terminal state of one document within a run.
type Outcome string

const (
	OutcomePlanned  Outcome = "planned"
	OutcomeCopied   Outcome = "copied"
	OutcomeExcluded Outcome = "excluded"
	OutcomeFailed   Outcome = "failed"
)

// PlannedOperation is one copy decision. At most one operation in a plan
// claims a given DestinationPath; collisions are resolved during planning,
// before any I/O.
type PlannedOperation struct {
	SourcePath      string       `json:"source_path"`
	DestinationPath string       `json:"destination_path,omitempty"`
	Category        CategoryPath `json:"category,omitempty"`
	FinalFilename   string       `json:"final_filename,omitempty"`
	Outcome         Outcome      `json:"outcome"`
	Err             error        `json:"-"`
}

// Plan is the ordered list of operations for one run. It is populated
// during the planning pass and read-only once copying starts.
type Plan struct {
	Operations []PlannedOperation
}

func (p *Plan) Add(op PlannedOperation) {
	p.Operations = append(p.Operations, op)
}

// Failure itemizes one failed document for the run report.
type Failure struct {
	SourcePath string `json:"source_path"`
	Kind       string `json:"kind"`
	Message    string `json:"message"`
}

// RunReport summarizes one completed run. Failures are itemized, never
// silently dropped.
type RunReport struct {
	RunID      string             `json:"run_id"`
	Copied     int                `json:"copied"`
	Excluded   int                `json:"excluded"`
	Failed     int                `json:"failed"`
	Failures   []Failure          `json:"failures,omitempty"`
	Operations []PlannedOperation `json:"operations,omitempty"`
}

// NewRunReport builds a report from a finalized plan.
func NewRunReport(plan *Plan) *RunReport {
	report := &RunReport{RunID: uuid.NewString()}
	for _, op := range plan.Operations {
		switch op.Outcome {
		case OutcomeCopied:
			report.Copied++
		case OutcomeExcluded:
			report.Excluded++
		case OutcomeFailed:
			report.Failed++
			msg := ""
			if op.Err != nil {
				msg = op.Err.Error()
			}
			report.Failures = append(report.Failures, Failure{
				SourcePath: op.SourcePath,
				Kind:       ErrorKind(op.Err),
				Message:    msg,
			})
		}
	}
	report.Operations = plan.Operations
	return report
}
