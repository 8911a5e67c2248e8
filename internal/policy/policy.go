// Package policy lints device-model fact tables with embedded OPA rules.
// The rules flag facts the converter cannot reject outright but that
// usually indicate an upstream analysis problem: writes with no value
// expression, unresolved register addresses, pathological regnode trees.
package policy

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"

	"github.com/virtfuzz/devilang/internal/facts"
)

//go:embed rules.rego
var rulesFS embed.FS

// Violation is one policy finding.
type Violation struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
}

// Summary provides aggregate counts over a lint run.
type Summary struct {
	TotalViolations int `json:"total_violations"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
}

// Result contains the evaluation results for one fact-table snapshot.
type Result struct {
	Violations []Violation `json:"violations"`
	Summary    Summary     `json:"summary"`
}

// Engine evaluates the embedded lint rules against fact tables.
type Engine struct {
	violations rego.PreparedEvalQuery
	summary    rego.PreparedEvalQuery
}

// New compiles the embedded rules and prepares the queries.
func New(ctx context.Context) (*Engine, error) {
	content, err := rulesFS.ReadFile("rules.rego")
	if err != nil {
		return nil, fmt.Errorf("loading embedded rules: %w", err)
	}
	module := rego.Module("rules.rego", string(content))

	violations, err := rego.New(module,
		rego.Query("data.devilang.lint.all_violations"),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("preparing violations query: %w", err)
	}

	summary, err := rego.New(module,
		rego.Query("data.devilang.lint.summary"),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("preparing summary query: %w", err)
	}

	return &Engine{
		violations: violations,
		summary:    summary,
	}, nil
}

// Eval runs the lint rules against one fact-table snapshot.
func (e *Engine) Eval(ctx context.Context, tables facts.Tables) (*Result, error) {
	input, err := structToMap(tables)
	if err != nil {
		return nil, fmt.Errorf("converting tables to policy input: %w", err)
	}

	result := &Result{Violations: []Violation{}}

	rs, err := e.violations.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, fmt.Errorf("evaluating violations: %w", err)
	}
	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		raw, ok := rs[0].Expressions[0].Value.([]interface{})
		if ok {
			for _, v := range raw {
				vmap, ok := v.(map[string]interface{})
				if !ok {
					continue
				}
				result.Violations = append(result.Violations, Violation{
					Rule:     getString(vmap, "rule"),
					Severity: getString(vmap, "severity"),
					Subject:  getString(vmap, "subject"),
					Message:  getString(vmap, "message"),
				})
			}
		}
	}

	rs, err = e.summary.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, fmt.Errorf("evaluating summary: %w", err)
	}
	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		smap, ok := rs[0].Expressions[0].Value.(map[string]interface{})
		if ok {
			result.Summary = Summary{
				TotalViolations: getInt(smap, "total_violations"),
				Errors:          getInt(smap, "errors"),
				Warnings:        getInt(smap, "warnings"),
			}
		}
	}

	return result, nil
}

func structToMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	err = json.Unmarshal(data, &result)
	return result, err
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getInt(m map[string]interface{}, key string) int {
	if v, ok := m[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case json.Number:
			i, _ := n.Int64()
			return int(i)
		}
	}
	return 0
}
