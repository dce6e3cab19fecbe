package converter

import (
	"fmt"
	"log/slog"

	"github.com/ginjaninja78/tagcmd/internal/config"
	"github.com/ginjaninja78/tagcmd/internal/grammar"
	"github.com/ginjaninja78/tagcmd/internal/logging"
	"github.com/ginjaninja78/tagcmd/internal/projector"
	"github.com/ginjaninja78/tagcmd/internal/types"
	"github.com/ginjaninja78/tagcmd/internal/validation"
)

// Pipeline runs the in-memory stages shared by every command: parse,
// project, transform and validate. It is safe for concurrent use.
type Pipeline struct {
	parser      *grammar.Parser
	mode        projector.Mode
	transformer *Transformer
	validator   *validation.Validator
	logger      *slog.Logger
}

// Output is what the pipeline produced for one document.
type Output struct {
	Document   types.Document
	Commands   []types.Command
	Validation *validation.ValidationResult
}

// NewPipeline builds a pipeline from a loaded configuration.
func NewPipeline(cfg *config.MainConfig, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	mode, err := projector.ParseMode(cfg.Projection.Mode)
	if err != nil {
		return nil, err
	}
	transformer, err := NewTransformer(cfg.TransformationRules)
	if err != nil {
		return nil, fmt.Errorf("failed to load transformation rules: %w", err)
	}
	validator, err := validation.NewValidator(cfg.Validation)
	if err != nil {
		return nil, fmt.Errorf("failed to load validation rules: %w", err)
	}

	return &Pipeline{
		parser: grammar.New(grammar.Options{
			MaxInputBytes: cfg.Parser.MaxInputBytes,
			MaxDepth:      cfg.Parser.MaxDepth,
			Logger:        logger,
		}),
		mode:        mode,
		transformer: transformer,
		validator:   validator,
		logger:      logger,
	}, nil
}

// Mode returns the projection mode in use.
func (p *Pipeline) Mode() projector.Mode {
	return p.mode
}

// Parse runs the parser only.
func (p *Pipeline) Parse(text string) (types.Document, error) {
	return p.parser.Parse(text)
}

// Process parses text and carries the document through the remaining
// stages. Parse and transformation failures are returned as errors; rule
// violations are reported in Output.Validation.
func (p *Pipeline) Process(text string) (*Output, error) {
	doc, err := p.parser.Parse(text)
	if err != nil {
		return nil, err
	}

	commands := projector.ProjectMode(doc, p.mode)
	commands, err = p.transformer.TransformAll(commands)
	if err != nil {
		return nil, fmt.Errorf("failed to apply transformations: %w", err)
	}

	result := p.validator.Validate(doc, commands)
	p.logger.Debug("processed document",
		"elements", len(doc),
		"commands", len(commands),
		"validation_errors", result.ErrorCount,
		"validation_warnings", result.WarningCount)

	return &Output{Document: doc, Commands: commands, Validation: result}, nil
}
