package indexer

import (
	"context"
	"fmt"

	"github.com/robert-at-pretension-io/notifygen/internal/facts"
	"github.com/robert-at-pretension-io/notifygen/internal/policy"
	"github.com/robert-at-pretension-io/notifygen/internal/validator"
)

// Facts analyses rootPath and returns schema-checked fact tables.
func (idx *Indexer) Facts(ctx context.Context, rootPath string) (*Result, facts.Tables, error) {
	res, err := idx.Analyze(ctx, rootPath)
	if err != nil {
		return nil, facts.Tables{}, err
	}
	tables := res.Tables()

	v, err := validator.NewFactsValidator()
	if err != nil {
		return nil, facts.Tables{}, fmt.Errorf("loading facts schema: %w", err)
	}
	if err := v.Validate(tables); err != nil {
		return nil, facts.Tables{}, fmt.Errorf("fact tables failed schema check: %w", err)
	}
	return res, tables, nil
}

// Lint evaluates the policy rules over the facts of rootPath.
func (idx *Indexer) Lint(ctx context.Context, rootPath string) (*policy.Result, error) {
	_, tables, err := idx.Facts(ctx, rootPath)
	if err != nil {
		return nil, err
	}

	engine, err := policy.New(ctx, idx.PolicyDirs...)
	if err != nil {
		return nil, fmt.Errorf("loading policies: %w", err)
	}
	violations, err := engine.Evaluate(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("evaluating policies: %w", err)
	}

	filtered := violations[:0]
	for _, v := range violations {
		if v.File != "" && idx.Config.ShouldIgnoreFile(v.File) {
			continue
		}
		filtered = append(filtered, v)
	}
	filtered = policy.ApplySeverities(filtered, idx.Config.GetRuleSeverity)

	result := &policy.Result{
		Violations: filtered,
		Summary:    policy.Summarize(filtered),
	}
	if result.Violations == nil {
		result.Violations = []policy.Violation{}
	}

	out, err := validator.NewOutputValidator()
	if err != nil {
		return nil, fmt.Errorf("loading output schema: %w", err)
	}
	if err := out.Validate(result); err != nil {
		return nil, fmt.Errorf("lint output failed schema check: %w", err)
	}

	idx.Log.Debug("lint complete", "violations", result.Summary.TotalViolations)
	return result, nil
}
