package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/tagcmd/internal/config"
	"github.com/ginjaninja78/tagcmd/internal/grammar"
	"github.com/ginjaninja78/tagcmd/internal/projector"
	"github.com/ginjaninja78/tagcmd/internal/types"
)

func mustValidator(t *testing.T, rules config.ValidationConfig) *Validator {
	t.Helper()
	v, err := NewValidator(rules)
	require.NoError(t, err)
	return v
}

func rulesOf(result *ValidationResult) []string {
	var rules []string
	for _, err := range result.Errors {
		rules = append(rules, err.Rule)
	}
	return rules
}

func TestValidator_NoRules(t *testing.T) {
	doc, err := grammar.ParseDocument("<git> <commit/> </git> <ls/>")
	require.NoError(t, err)

	result := mustValidator(t, config.ValidationConfig{}).Validate(doc, projector.Project(doc))
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 3, result.ElementsValidated)
	assert.Equal(t, 2, result.CommandsValidated)
}

func TestValidator_ElementRules(t *testing.T) {
	v := mustValidator(t, config.ValidationConfig{
		ForbiddenNames: []string{"rm"},
		MaxNameLength:  6,
		MaxChildren:    1,
		NamePattern:    `^[a-z.]+$`,
	})

	doc := types.Document{
		types.SelfClosing("rm"),
		types.Container("git", types.SelfClosing("commit"), types.SelfClosing("Amend")),
		types.SelfClosing("toolong"),
	}

	result := v.ValidateDocument(doc)
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{RuleForbiddenName, RuleMaxChildren, RuleNamePattern, RuleMaxNameLength}, rulesOf(result))
	assert.Equal(t, 4, result.ErrorCount)

	mismatch := result.Errors[2]
	assert.Equal(t, 2, mismatch.Index)
	assert.Equal(t, "git/Amend", mismatch.Path)
	assert.Equal(t, "Amend", mismatch.Value)
}

func TestValidator_AllowedPrograms(t *testing.T) {
	v := mustValidator(t, config.ValidationConfig{AllowedPrograms: []string{"vim"}})

	result := v.ValidateCommands([]types.Command{{Program: "vim"}, {Program: "text.txt"}})
	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, RuleAllowedProgram, result.Errors[0].Rule)
	assert.Equal(t, 2, result.Errors[0].Index)
	assert.Equal(t, "text.txt", result.Errors[0].Value)
}

func TestValidator_Warnings(t *testing.T) {
	rules := config.ValidationConfig{WarnOnEmptyDocument: true, WarnOnDroppedNesting: true}

	empty := mustValidator(t, rules).ValidateDocument(nil)
	assert.True(t, empty.IsValid)
	assert.Equal(t, 1, empty.WarningCount)
	assert.Equal(t, []string{RuleEmptyDocument}, rulesOf(empty))

	doc := types.Document{types.Container("a", types.Container("b", types.SelfClosing("c")))}
	nested := mustValidator(t, rules).ValidateDocument(doc)
	assert.True(t, nested.IsValid)
	assert.Equal(t, []string{RuleDroppedNesting}, rulesOf(nested))
	assert.Equal(t, "a/b", nested.Errors[0].Path)

	rules.TreatWarningsAsErrors = true
	strict := mustValidator(t, rules).ValidateDocument(nil)
	assert.False(t, strict.IsValid)
	assert.Equal(t, 0, strict.ErrorCount)
}

func TestValidator_StopOnFirstError(t *testing.T) {
	v := mustValidator(t, config.ValidationConfig{
		ForbiddenNames:   []string{"a", "b"},
		AllowedPrograms:  []string{"x"},
		StopOnFirstError: true,
	})
	doc := types.Document{types.SelfClosing("a"), types.SelfClosing("b")}

	result := v.Validate(doc, projector.Project(doc))
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "a", result.Errors[0].Value)
	assert.Equal(t, 0, result.CommandsValidated)
}

func TestNewValidator_BadPattern(t *testing.T) {
	_, err := NewValidator(config.ValidationConfig{NamePattern: "("})
	require.Error(t, err)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Severity: SeverityError,
		Rule:     RuleForbiddenName,
		Index:    1,
		Path:     "rm",
		Value:    "rm",
		Message:  "Element name 'rm' is forbidden",
	}
	assert.Equal(t, "[ERROR] element 1 (rm), rule 'forbidden_name': Element name 'rm' is forbidden (value: 'rm')", err.Error())

	doc := &ValidationError{Severity: SeverityWarning, Rule: RuleEmptyDocument, Message: "empty"}
	assert.Equal(t, "[WARNING] document, rule 'empty_document': empty (value: '')", doc.Error())
}

func TestFormatErrorsAndWriteErrorLog(t *testing.T) {
	assert.Equal(t, "No validation errors.", FormatErrors(nil))

	errs := []*ValidationError{{Severity: SeverityError, Rule: RuleMaxChildren, Index: 1, Message: "too many"}}
	formatted := FormatErrors(errs)
	assert.Contains(t, formatted, "1 finding(s)")
	assert.Contains(t, formatted, "1. [ERROR] element 1")

	path := filepath.Join(t.TempDir(), "errors.log")
	require.NoError(t, WriteErrorLog(errs, "input.tag", path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Validation log for input.tag")
	assert.Contains(t, string(data), "too many")
}
