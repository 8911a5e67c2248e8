// Package validator enforces the device-model JSON contract with an
// embedded CUE schema. Input files come from an external analysis tool;
// validating them up front turns a drifted field name or a new node tag
// into an immediate, located error instead of a silently empty section
// further down the pipeline.
package validator

import (
	"embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed model_schema.cue
var schemaFS embed.FS

// Validator validates device-model JSON against the embedded CUE schema.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// New creates a Validator with the embedded schema compiled.
func New() (*Validator, error) {
	ctx := cuecontext.New()

	schemaBytes, err := schemaFS.ReadFile("model_schema.cue")
	if err != nil {
		return nil, fmt.Errorf("loading embedded schema: %w", err)
	}

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	return &Validator{
		ctx:    ctx,
		schema: schema,
	}, nil
}

// ValidateJSON checks that raw JSON bytes conform to the #Model contract.
func (v *Validator) ValidateJSON(jsonBytes []byte) error {
	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return fmt.Errorf("compiling JSON as CUE: %w", dataValue.Err())
	}
	return v.unifyModel(dataValue)
}

// Validate checks that a Go value conforms to the #Model contract.
func (v *Validator) Validate(data interface{}) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling data to JSON: %w", err)
	}

	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return fmt.Errorf("compiling data as CUE: %w", dataValue.Err())
	}
	return v.unifyModel(dataValue)
}

func (v *Validator) unifyModel(dataValue cue.Value) error {
	modelDef := v.schema.LookupPath(cue.ParsePath("#Model"))
	if modelDef.Err() != nil {
		return fmt.Errorf("looking up #Model definition: %w", modelDef.Err())
	}

	unified := modelDef.Unify(dataValue)
	if err := unified.Validate(); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// ValidationErrors returns every validation error for a value, one message
// per failing field, or nil when the value is valid.
func (v *Validator) ValidationErrors(data interface{}) []string {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return []string{fmt.Sprintf("marshal error: %v", err)}
	}

	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return []string{fmt.Sprintf("compile error: %v", dataValue.Err())}
	}

	modelDef := v.schema.LookupPath(cue.ParsePath("#Model"))
	if modelDef.Err() != nil {
		return []string{fmt.Sprintf("schema lookup error: %v", modelDef.Err())}
	}

	unified := modelDef.Unify(dataValue)
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
