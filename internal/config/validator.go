package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/bluesnow/cli/internal/entrypoint"
	oerrors "github.com/bluesnow/cli/internal/errors"
)

// schemaDef is the definition every configuration file is unified with.
const schemaDef = "#Config"

//go:embed schema/config.cue
var configSchemaCUE []byte

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// Unwrap lets errors.Is match ErrValidation.
func (e ValidationErrors) Unwrap() error {
	return oerrors.ErrValidation
}

// Validator validates configuration against the embedded CUE schema.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator creates a new configuration validator.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(configSchemaCUE, cue.Filename("config.cue"))
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	def := schema.LookupPath(cue.ParsePath(schemaDef))
	if !def.Exists() {
		return nil, fmt.Errorf("schema has no #Config definition")
	}

	return &Validator{
		ctx:    ctx,
		schema: def,
	}, nil
}

// Validate validates the given configuration.
func (v *Validator) Validate(cfg *Config) error {
	var errs ValidationErrors

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	value := v.schema.Unify(v.ctx.CompileBytes(data, cue.Filename("config.yaml")))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		for _, e := range cueerrors.Errors(err) {
			format, args := e.Msg()
			errs = append(errs, ValidationError{
				Field:   fieldPath(e.Path()),
				Message: fmt.Sprintf(format, args...),
			})
		}
	}

	// The schema checks shape; the parser checks identifiers.
	for i, spec := range cfg.EntryPoints {
		if _, err := entrypoint.Parse(spec); err != nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("entryPoints.%d", i),
				Message: firstLine(err.Error()),
			})
		}
	}

	if len(errs) > 0 {
		return collapse(errs)
	}

	return nil
}

// ValidateFile validates a configuration file at the given path.
func (v *Validator) ValidateFile(path string) error {
	cfg, err := NewLoader().Load(path)
	if err != nil {
		return err
	}

	return v.Validate(cfg)
}

// fieldPath renders a CUE error path relative to the #Config definition.
func fieldPath(path []string) string {
	if len(path) > 0 && path[0] == schemaDef {
		path = path[1:]
	}
	if len(path) == 0 {
		return "(root)"
	}
	return strings.Join(path, ".")
}

// collapse merges errors reported for the same field into one entry, in
// first-seen order. A disjunction summary is dropped when its branch
// conflicts are present.
func collapse(errs ValidationErrors) ValidationErrors {
	var order []string
	messages := make(map[string][]string)
	for _, e := range errs {
		if _, seen := messages[e.Field]; !seen {
			order = append(order, e.Field)
		}
		if !slices.Contains(messages[e.Field], e.Message) {
			messages[e.Field] = append(messages[e.Field], e.Message)
		}
	}

	out := make(ValidationErrors, 0, len(order))
	for _, field := range order {
		msgs := messages[field]
		if len(msgs) > 1 {
			msgs = slices.DeleteFunc(slices.Clone(msgs), func(m string) bool {
				return strings.Contains(m, "empty disjunction")
			})
			if len(msgs) == 0 {
				msgs = messages[field][:1]
			}
		}
		out = append(out, ValidationError{Field: field, Message: strings.Join(msgs, "; ")})
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
