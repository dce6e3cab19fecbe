// =============================================================================
// Tag Command Parser - Validation Engine
// =============================================================================
//
// The grammar only guarantees that a document is well formed. This module
// checks parsed documents and projected commands against the configurable
// rules in config.ValidationConfig:
//   - Forbidden element names
//   - Element name length and pattern
//   - Number of children per container
//   - Allowed program names
//   - Warnings for empty documents and nesting lost in projection
//
// ERROR HANDLING:
//   - Errors are collected, never returned early unless StopOnFirstError is set
//   - Each error carries the element path and the command index it affects
//   - "warning" findings do not fail validation unless TreatWarningsAsErrors
//
// =============================================================================

package validation

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/ginjaninja78/tagcmd/internal/config"
	"github.com/ginjaninja78/tagcmd/internal/types"
)

// Severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rule names.
const (
	RuleForbiddenName  = "forbidden_name"
	RuleMaxNameLength  = "max_name_length"
	RuleNamePattern    = "name_pattern"
	RuleMaxChildren    = "max_children"
	RuleAllowedProgram = "allowed_program"
	RuleEmptyDocument  = "empty_document"
	RuleDroppedNesting = "dropped_nesting"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation finding.
type ValidationError struct {
	// Severity is SeverityError (validation fails) or SeverityWarning.
	Severity string `json:"severity"`

	// Rule is the rule that was violated.
	Rule string `json:"rule"`

	// Index is the 1-based position of the top-level element or command the
	// finding belongs to. 0 means the document as a whole.
	Index int `json:"index"`

	// Path is the slash-separated chain of element names, e.g. "git/commit".
	Path string `json:"path,omitempty"`

	// Value is the offending value.
	Value string `json:"value,omitempty"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	location := "document"
	if e.Index > 0 {
		location = fmt.Sprintf("element %d", e.Index)
	}
	if e.Path != "" {
		location += fmt.Sprintf(" (%s)", e.Path)
	}
	return fmt.Sprintf("[%s] %s, rule '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		location,
		e.Rule,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool `json:"is_valid"`

	// Errors contains all findings, warnings included.
	Errors []*ValidationError `json:"errors"`

	ErrorCount   int `json:"error_count"`
	WarningCount int `json:"warning_count"`

	// ElementsValidated counts every element visited, nested ones included.
	ElementsValidated int `json:"elements_validated"`

	// CommandsValidated counts the commands checked.
	CommandsValidated int `json:"commands_validated"`

	stopped bool
}

func newResult() *ValidationResult {
	return &ValidationResult{IsValid: true, Errors: make([]*ValidationError, 0)}
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks documents and commands against a rule set. It is
// immutable after construction and safe for concurrent use.
type Validator struct {
	rules     config.ValidationConfig
	pattern   *regexp.Regexp
	allowed   map[string]bool
	forbidden map[string]bool
}

// NewValidator compiles the rule set.
func NewValidator(rules config.ValidationConfig) (*Validator, error) {
	v := &Validator{
		rules:     rules,
		allowed:   toSet(rules.AllowedPrograms),
		forbidden: toSet(rules.ForbiddenNames),
	}
	if rules.NamePattern != "" {
		pattern, err := regexp.Compile(rules.NamePattern)
		if err != nil {
			return nil, fmt.Errorf("invalid name pattern: %w", err)
		}
		v.pattern = pattern
	}
	return v, nil
}

// Validate checks a document and the commands projected from it.
func (v *Validator) Validate(doc types.Document, commands []types.Command) *ValidationResult {
	result := v.ValidateDocument(doc)
	if result.stopped {
		return result
	}
	v.validateCommands(commands, result)
	return result
}

// ValidateDocument checks the element rules.
func (v *Validator) ValidateDocument(doc types.Document) *ValidationResult {
	result := newResult()

	if len(doc) == 0 && v.rules.WarnOnEmptyDocument {
		v.record(result, &ValidationError{
			Severity: SeverityWarning,
			Rule:     RuleEmptyDocument,
			Message:  "Document contains no elements",
		})
	}

	doc.Walk(func(visit types.Visit) bool {
		return v.validateElement(visit, result)
	})
	return result
}

// ValidateCommands checks the command rules.
func (v *Validator) ValidateCommands(commands []types.Command) *ValidationResult {
	result := newResult()
	v.validateCommands(commands, result)
	return result
}

func (v *Validator) validateCommands(commands []types.Command, result *ValidationResult) {
	for i, cmd := range commands {
		result.CommandsValidated++
		if len(v.allowed) > 0 && !v.allowed[cmd.Program] {
			if !v.record(result, &ValidationError{
				Severity: SeverityError,
				Rule:     RuleAllowedProgram,
				Index:    i + 1,
				Path:     cmd.Program,
				Value:    cmd.Program,
				Message:  fmt.Sprintf("Program '%s' is not in the allowed list", cmd.Program),
			}) {
				return
			}
		}
	}
}

// validateElement checks one element. It returns false once validation has
// to stop.
func (v *Validator) validateElement(visit types.Visit, result *ValidationResult) bool {
	result.ElementsValidated++

	for _, finding := range v.checkElement(visit.Element, visit.Depth) {
		finding.Index = visit.Index
		finding.Path = visit.Path
		if !v.record(result, finding) {
			return false
		}
	}
	return true
}

// checkElement applies the per-element rules to a single element.
func (v *Validator) checkElement(el types.Element, depth int) []*ValidationError {
	var findings []*ValidationError

	if v.forbidden[el.Name] {
		findings = append(findings, &ValidationError{
			Severity: SeverityError,
			Rule:     RuleForbiddenName,
			Value:    el.Name,
			Message:  fmt.Sprintf("Element name '%s' is forbidden", el.Name),
		})
	}

	if v.rules.MaxNameLength > 0 && len(el.Name) > v.rules.MaxNameLength {
		findings = append(findings, &ValidationError{
			Severity: SeverityError,
			Rule:     RuleMaxNameLength,
			Value:    el.Name,
			Message:  fmt.Sprintf("Name exceeds maximum length of %d characters (actual: %d)", v.rules.MaxNameLength, len(el.Name)),
		})
	}

	if v.pattern != nil && !v.pattern.MatchString(el.Name) {
		findings = append(findings, &ValidationError{
			Severity: SeverityError,
			Rule:     RuleNamePattern,
			Value:    el.Name,
			Message:  fmt.Sprintf("Name does not match pattern '%s'", v.rules.NamePattern),
		})
	}

	if v.rules.MaxChildren > 0 && len(el.Children) > v.rules.MaxChildren {
		findings = append(findings, &ValidationError{
			Severity: SeverityError,
			Rule:     RuleMaxChildren,
			Value:    fmt.Sprintf("%d", len(el.Children)),
			Message:  fmt.Sprintf("Container has more than %d children", v.rules.MaxChildren),
		})
	}

	// Projection keeps only the names of a top-level element's children.
	if v.rules.WarnOnDroppedNesting && depth == 2 && len(el.Children) > 0 {
		findings = append(findings, &ValidationError{
			Severity: SeverityWarning,
			Rule:     RuleDroppedNesting,
			Value:    el.Name,
			Message:  fmt.Sprintf("Children of argument '%s' are not part of any command", el.Name),
		})
	}

	return findings
}

// record adds a finding to result. It returns false when validation must stop.
func (v *Validator) record(result *ValidationResult, err *ValidationError) bool {
	result.Errors = append(result.Errors, err)

	if err.Severity == SeverityError {
		result.ErrorCount++
		result.IsValid = false
		if v.rules.StopOnFirstError {
			result.stopped = true
			return false
		}
		return true
	}

	result.WarningCount++
	if v.rules.TreatWarningsAsErrors {
		result.IsValid = false
	}
	return true
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, value := range values {
		set[value] = true
	}
	return set
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation findings for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}

// WriteErrorLog writes validation findings for source to filePath.
func WriteErrorLog(errors []*ValidationError, source, filePath string) error {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation log for %s\n", source))
	builder.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format(time.RFC3339)))
	builder.WriteString(FormatErrors(errors))

	if err := os.WriteFile(filePath, []byte(builder.String()), 0644); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}
