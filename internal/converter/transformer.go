// =============================================================================
// Tag Command Parser - Transformation Engine
// =============================================================================
//
// This module rewrites projected commands according to the configured
// transformation rules before they are validated, exported or executed.
//
// TRANSFORMATION TYPES:
//   - String manipulations (prepend, append, trim, case conversion)
//   - Substring and regular expression replacements
//   - Lookup table replacements (program aliases such as ll -> ls)
//
// RULE MATCHING:
//   A rule with a Program applies only to commands whose program had that
//   value before any rule ran. Its Target selects the program, the arguments
//   or both. Rules run in configuration order and each Transform call
//   returns a new Command; the input is never modified.
//
// =============================================================================

package converter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ginjaninja78/tagcmd/internal/config"
	"github.com/ginjaninja78/tagcmd/internal/types"
)

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer applies transformation rules to commands.
type Transformer struct {
	rules    []config.TransformationRule
	patterns map[string]*regexp.Regexp
}

// NewTransformer checks the rules and compiles their regular expressions.
func NewTransformer(rules []config.TransformationRule) (*Transformer, error) {
	t := &Transformer{
		rules:    rules,
		patterns: make(map[string]*regexp.Regexp),
	}

	for i, rule := range rules {
		for _, action := range rule.Actions {
			if !knownActions[action.Type] {
				return nil, fmt.Errorf("rule %d: unknown transformation type: %s", i+1, action.Type)
			}
			if action.Type != "regex_replace" || action.Find == "" {
				continue
			}
			if _, seen := t.patterns[action.Find]; seen {
				continue
			}
			re, err := regexp.Compile(action.Find)
			if err != nil {
				return nil, fmt.Errorf("rule %d: invalid regex pattern: %w", i+1, err)
			}
			t.patterns[action.Find] = re
		}
	}

	return t, nil
}

var knownActions = map[string]bool{
	"prepend_string":       true,
	"append_string":        true,
	"trim":                 true,
	"trim_left":            true,
	"trim_right":           true,
	"uppercase":            true,
	"lowercase":            true,
	"replace":              true,
	"regex_replace":        true,
	"lookup":               true,
	"lookup_with_default":  true,
	"if_empty_use_default": true,
}

// =============================================================================
// TRANSFORMATION FUNCTIONS
// =============================================================================

// Transform applies every matching rule to cmd and returns the result.
func (t *Transformer) Transform(cmd types.Command) (types.Command, error) {
	original := cmd.Program
	out := types.Command{Program: cmd.Program}
	if cmd.Args != nil {
		out.Args = append([]string(nil), cmd.Args...)
	}

	for i, rule := range t.rules {
		if rule.Program != "" && rule.Program != original {
			continue
		}

		if rule.Target == config.TargetProgram || rule.Target == config.TargetAll || rule.Target == "" {
			value, err := t.applyAll(out.Program, rule.Actions)
			if err != nil {
				return types.Command{}, fmt.Errorf("rule %d, program '%s': %w", i+1, original, err)
			}
			out.Program = value
		}

		if rule.Target == config.TargetArgs || rule.Target == config.TargetAll || rule.Target == "" {
			for j, arg := range out.Args {
				value, err := t.applyAll(arg, rule.Actions)
				if err != nil {
					return types.Command{}, fmt.Errorf("rule %d, argument %d of '%s': %w", i+1, j+1, original, err)
				}
				out.Args[j] = value
			}
		}
	}

	if out.Program == "" {
		return types.Command{}, fmt.Errorf("transformation left command '%s' without a program", original)
	}

	return out, nil
}

// TransformAll transforms every command in order.
func (t *Transformer) TransformAll(commands []types.Command) ([]types.Command, error) {
	if len(commands) == 0 {
		return commands, nil
	}
	out := make([]types.Command, len(commands))
	for i, cmd := range commands {
		transformed, err := t.Transform(cmd)
		if err != nil {
			return nil, fmt.Errorf("error transforming command %d: %w", i+1, err)
		}
		out[i] = transformed
	}
	return out, nil
}

// applyAll runs actions in sequence.
func (t *Transformer) applyAll(value string, actions []config.TransformationAction) (string, error) {
	result := value
	for _, action := range actions {
		var err error
		if action.Type == "regex_replace" && action.Find != "" {
			result = t.patterns[action.Find].ReplaceAllString(result, action.Value)
			continue
		}
		result, err = ApplyTransformation(result, action)
		if err != nil {
			return "", fmt.Errorf("transformation '%s' failed: %w", action.Type, err)
		}
	}
	return result, nil
}

// ApplyTransformation applies a single transformation action.
func ApplyTransformation(value string, action config.TransformationAction) (string, error) {
	switch action.Type {

	// =========================================================================
	// STRING MANIPULATIONS
	// =========================================================================

	case "prepend_string":
		// "status" with value "--" gives "--status".
		return action.Value + value, nil

	case "append_string":
		return value + action.Value, nil

	case "trim":
		return strings.TrimSpace(value), nil

	case "trim_left":
		// Remove leading whitespace or the characters in Value.
		if action.Value != "" {
			return strings.TrimLeft(value, action.Value), nil
		}
		return strings.TrimLeft(value, " \t\n\r"), nil

	case "trim_right":
		if action.Value != "" {
			return strings.TrimRight(value, action.Value), nil
		}
		return strings.TrimRight(value, " \t\n\r"), nil

	case "uppercase":
		return strings.ToUpper(value), nil

	case "lowercase":
		return strings.ToLower(value), nil

	case "replace":
		// "log_file" with find "_" and value "-" gives "log-file".
		if action.Find == "" {
			return value, nil
		}
		return strings.ReplaceAll(value, action.Find, action.Value), nil

	case "regex_replace":
		if action.Find == "" {
			return value, nil
		}
		re, err := regexp.Compile(action.Find)
		if err != nil {
			return "", fmt.Errorf("invalid regex pattern: %w", err)
		}
		return re.ReplaceAllString(value, action.Value), nil

	// =========================================================================
	// LOOKUP TABLE REPLACEMENTS
	// =========================================================================

	case "lookup":
		// Values missing from the table are kept.
		if replacement, exists := action.LookupTable[value]; exists {
			return replacement, nil
		}
		return value, nil

	case "lookup_with_default":
		if replacement, exists := action.LookupTable[value]; exists {
			return replacement, nil
		}
		return action.Value, nil

	case "if_empty_use_default":
		if strings.TrimSpace(value) == "" {
			return action.Value, nil
		}
		return value, nil

	default:
		return "", fmt.Errorf("unknown transformation type: %s", action.Type)
	}
}
