package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/kirillkom/ebook-organizer/internal/core/domain"
	"github.com/kirillkom/ebook-organizer/internal/core/ports"
)

var templateTokenRe = regexp.MustCompile(`\{(title|author|year)\}`)

// Interpreter turns a free-form instruction document into a validated
// PolicyConfig. A deterministic local pass always runs; when an instruction
// oracle is wired, its directives refine the result. Parsing never aborts a
// run: bad instructions degrade to defaults with warnings.
type Interpreter struct {
	oracle ports.InstructionOracle
	base   domain.PolicyConfig
	logger *slog.Logger
}

// NewInterpreter builds an interpreter starting from the given base policy.
// oracle may be nil; the local pass then runs alone.
func NewInterpreter(oracle ports.InstructionOracle, base domain.PolicyConfig, logger *slog.Logger) *Interpreter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interpreter{oracle: oracle, base: base, logger: logger}
}

// Parse produces the run policy plus any non-fatal warnings.
func (i *Interpreter) Parse(ctx context.Context, text string) (domain.PolicyConfig, []string) {
	policy := i.base
	text = strings.TrimSpace(text)
	if text == "" {
		return policy, nil
	}

	var warnings []string
	directives := localDirectives(text)

	if i.oracle != nil {
		refined, err := i.oracle.ParseInstructions(ctx, text)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("instruction oracle unavailable, using local parse: %v", err))
			i.logger.Warn("instruction_oracle_failed", "error", err)
		} else {
			directives = mergeDirectives(directives, refined)
		}
	}

	if len(directives.AllowedTopics) > 0 {
		policy.Scope.AllowedTopics = directives.AllowedTopics
	}
	if directives.MinConfidence > 0 {
		policy.Scope.MinConfidence = directives.MinConfidence
	}
	policy.LanguageFirst = policy.LanguageFirst || directives.LanguageFirst
	if len(directives.ExtraCategories) > 0 {
		policy.Taxonomy = policy.Taxonomy.WithCategories(directives.ExtraCategories)
	}

	template, err := templateFromInstructions(directives.FilenameTemplate, text)
	if err != nil {
		warnings = append(warnings, err.Error())
		i.logger.Warn("instruction_template_invalid", "error", err)
	} else if template != nil {
		policy.Template = template
	}

	return policy, warnings
}

// localDirectives is the deterministic parsing pass: keyword scan for scope
// restrictions and taxonomy mode. It errs on the side of doing nothing.
func localDirectives(text string) domain.InstructionDirectives {
	var d domain.InstructionDirectives
	folded := strings.ToLower(text)

	if strings.Contains(folded, "only") {
		for _, kw := range []string{"programming", "software", "coding"} {
			if strings.Contains(folded, kw) {
				d.AllowedTopics = domain.ProgrammingTopics()
				break
			}
		}
	}
	if strings.Contains(folded, "named after the language") ||
		strings.Contains(folded, "language as the directory") {
		d.LanguageFirst = true
	}
	return d
}

func mergeDirectives(local, refined domain.InstructionDirectives) domain.InstructionDirectives {
	out := local
	if len(refined.AllowedTopics) > 0 {
		out.AllowedTopics = refined.AllowedTopics
	}
	if refined.MinConfidence > 0 {
		out.MinConfidence = refined.MinConfidence
	}
	out.LanguageFirst = out.LanguageFirst || refined.LanguageFirst
	if len(refined.ExtraCategories) > 0 {
		out.ExtraCategories = refined.ExtraCategories
	}
	if strings.TrimSpace(refined.FilenameTemplate) != "" {
		out.FilenameTemplate = refined.FilenameTemplate
	}
	return out
}

// templateFromInstructions extracts a filename template either from an
// explicit directive or from the first instruction line carrying template
// tokens. Returns (nil, nil) when no template was requested, and a
// recoverable config error when one was requested but holds no recognized
// token.
func templateFromInstructions(directive, text string) (domain.FilenameTemplate, error) {
	source := strings.TrimSpace(directive)
	if source == "" {
		source = templateRegion(text)
	}
	if source == "" {
		return nil, nil
	}

	template := ParseTemplate(source)
	if template.FieldCount() == 0 {
		return nil, domain.WrapError(domain.ErrConfig, "parse filename template",
			fmt.Errorf("no recognized tokens in %q, using default template", source))
	}
	return template, nil
}

// templateRegion finds the span of the first instruction line that contains
// template tokens, from the first token to the end of the last one, so
// surrounding prose is not captured as literal text.
func templateRegion(text string) string {
	for _, line := range strings.Split(text, "\n") {
		matches := templateTokenRe.FindAllStringIndex(line, -1)
		if len(matches) > 0 {
			return line[matches[0][0]:matches[len(matches)-1][1]]
		}
		// A braced region with no recognized token is still a template
		// request and must surface a warning.
		if start := strings.Index(line, "{"); start >= 0 && strings.Contains(line[start:], "}") {
			return line[start : strings.LastIndex(line, "}")+1]
		}
	}
	return ""
}

// ParseTemplate splits a template string into field and literal tokens.
// Literal text between tokens is preserved verbatim.
func ParseTemplate(s string) domain.FilenameTemplate {
	var template domain.FilenameTemplate
	last := 0
	for _, m := range templateTokenRe.FindAllStringSubmatchIndex(s, -1) {
		if m[0] > last {
			template = append(template, domain.TemplateToken{
				Kind:    domain.TokenLiteral,
				Literal: s[last:m[0]],
			})
		}
		template = append(template, domain.TemplateToken{
			Kind: domain.TokenKind(s[m[2]:m[3]]),
		})
		last = m[1]
	}
	if last < len(s) {
		template = append(template, domain.TemplateToken{
			Kind:    domain.TokenLiteral,
			Literal: s[last:],
		})
	}
	return template
}
