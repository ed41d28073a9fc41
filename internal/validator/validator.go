package validator

// The CUE schemas are the contract between the Go side and the policy
// engine. If a fact row gains, loses or renames a field, validation fails
// loudly here instead of rego rules silently seeing undefined values. Fix
// the producer or the schema; never suppress the error.

import (
	"embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed facts_schema.cue
var factsSchemaFS embed.FS

//go:embed config_schema.cue
var configSchemaFS embed.FS

//go:embed output_schema.cue
var outputSchemaFS embed.FS

// Validator checks data against one definition of an embedded CUE schema.
type Validator struct {
	ctx  *cue.Context
	def  cue.Value
	name string
}

func newValidator(fs embed.FS, file, definition string) (*Validator, error) {
	ctx := cuecontext.New()

	schemaBytes, err := fs.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("loading embedded schema %s: %w", file, err)
	}

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", file, schema.Err())
	}

	def := schema.LookupPath(cue.ParsePath(definition))
	if def.Err() != nil {
		return nil, fmt.Errorf("looking up %s definition: %w", definition, def.Err())
	}

	return &Validator{ctx: ctx, def: def, name: definition}, nil
}

// NewFactsValidator creates a validator for relational fact tables.
func NewFactsValidator() (*Validator, error) {
	return newValidator(factsSchemaFS, "facts_schema.cue", "#FactTables")
}

// NewConfigValidator creates a validator for notifygen configuration.
func NewConfigValidator() (*Validator, error) {
	return newValidator(configSchemaFS, "config_schema.cue", "#Config")
}

// NewOutputValidator creates a validator for lint output.
func NewOutputValidator() (*Validator, error) {
	return newValidator(outputSchemaFS, "output_schema.cue", "#LintOutput")
}

// Validate marshals data to JSON and checks it against the definition.
func (v *Validator) Validate(data interface{}) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling data to JSON: %w", err)
	}
	return v.ValidateJSON(jsonBytes)
}

// ValidateJSON validates JSON bytes directly against the definition.
func (v *Validator) ValidateJSON(jsonBytes []byte) error {
	unified, err := v.unify(jsonBytes)
	if err != nil {
		return err
	}
	if err := unified.Validate(); err != nil {
		return fmt.Errorf("%s validation failed: %w", v.name, err)
	}
	return nil
}

// ValidationErrors returns every validation error as a separate message.
func (v *Validator) ValidationErrors(data interface{}) []string {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return []string{fmt.Sprintf("marshal error: %v", err)}
	}

	unified, err := v.unify(jsonBytes)
	if err != nil {
		return []string{err.Error()}
	}

	err = unified.Validate()
	if err == nil {
		return nil
	}

	var errs []string
	for _, e := range errors.Errors(err) {
		errs = append(errs, e.Error())
	}
	return errs
}

func (v *Validator) unify(jsonBytes []byte) (cue.Value, error) {
	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("compiling data as CUE: %w", dataValue.Err())
	}
	return v.def.Unify(dataValue), nil
}
