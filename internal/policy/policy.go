package policy

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/open-policy-agent/opa/rego"

	"github.com/robert-at-pretension-io/notifygen/internal/facts"
)

//go:embed rules/*.rego
var rulesFS embed.FS

// Query is the rule set every policy module contributes to.
const Query = "data.notifygen.lint.violations"

// Engine evaluates OPA policies against fact tables
type Engine struct {
	query rego.PreparedEvalQuery
}

// Violation represents a policy violation
type Violation struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Message  string `json:"message"`
}

// Result contains the evaluation results
type Result struct {
	Violations []Violation `json:"violations"`
	Summary    Summary     `json:"summary"`
}

// Summary provides aggregate counts
type Summary struct {
	TotalViolations int `json:"total_violations"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Info            int `json:"info"`
}

// New prepares the built-in rules plus every .rego file in extraDirs.
// Extra modules add rules by declaring more "violations contains" bodies in
// package notifygen.lint.
func New(ctx context.Context, extraDirs ...string) (*Engine, error) {
	var modules []func(*rego.Rego)

	builtin, err := rulesFS.ReadDir("rules")
	if err != nil {
		return nil, fmt.Errorf("reading built-in rules: %w", err)
	}
	for _, entry := range builtin {
		name := "rules/" + entry.Name()
		content, err := rulesFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		modules = append(modules, rego.Module(name, string(content)))
	}

	for _, dir := range extraDirs {
		files, err := filepath.Glob(filepath.Join(dir, "*.rego"))
		if err != nil {
			return nil, fmt.Errorf("finding policy files: %w", err)
		}
		for _, f := range files {
			content, err := os.ReadFile(f)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", f, err)
			}
			modules = append(modules, rego.Module(f, string(content)))
		}
	}

	opts := append(modules, rego.Query(Query))
	query, err := rego.New(opts...).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("preparing violations query: %w", err)
	}
	return &Engine{query: query}, nil
}

// Evaluate runs the policies against the fact tables. Violations come back
// sorted by file, line and rule with their default severities.
func (e *Engine) Evaluate(ctx context.Context, tables facts.Tables) ([]Violation, error) {
	inputMap, err := structToMap(tables)
	if err != nil {
		return nil, fmt.Errorf("converting input: %w", err)
	}

	rs, err := e.query.Eval(ctx, rego.EvalInput(inputMap))
	if err != nil {
		return nil, fmt.Errorf("evaluating violations: %w", err)
	}

	var violations []Violation
	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		values, ok := rs[0].Expressions[0].Value.([]interface{})
		if ok {
			for _, v := range values {
				vmap, ok := v.(map[string]interface{})
				if !ok {
					continue
				}
				violations = append(violations, Violation{
					Rule:     getString(vmap, "rule"),
					Severity: getString(vmap, "severity"),
					File:     getString(vmap, "file"),
					Line:     getInt(vmap, "line"),
					Message:  getString(vmap, "message"),
				})
			}
		}
	}

	sortViolations(violations)
	return violations, nil
}

// ApplySeverities replaces default severities through lookup and drops
// violations whose rule is turned "off".
func ApplySeverities(violations []Violation, lookup func(rule, defaultSeverity string) string) []Violation {
	out := make([]Violation, 0, len(violations))
	for _, v := range violations {
		v.Severity = lookup(v.Rule, v.Severity)
		if v.Severity == "off" {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Summarize counts violations by severity.
func Summarize(violations []Violation) Summary {
	s := Summary{TotalViolations: len(violations)}
	for _, v := range violations {
		switch v.Severity {
		case "error":
			s.Errors++
		case "warning":
			s.Warnings++
		default:
			s.Info++
		}
	}
	return s
}

func sortViolations(vs []Violation) {
	sort.Slice(vs, func(i, j int) bool {
		if vs[i].File != vs[j].File {
			return vs[i].File < vs[j].File
		}
		if vs[i].Line != vs[j].Line {
			return vs[i].Line < vs[j].Line
		}
		if vs[i].Rule != vs[j].Rule {
			return vs[i].Rule < vs[j].Rule
		}
		return vs[i].Message < vs[j].Message
	})
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
