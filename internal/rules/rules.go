// Package rules evaluates the cross-field business rules of a payment record
// as compiled CEL programs.
package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Rule is a named CEL expression that must evaluate to true for a record to
// be valid.
type Rule struct {
	Name       string
	Expression string
}

// CrossFieldRules tie the amount and settlement date to the transaction code.
// The date window, working-day and secondary identifier checks belong to the
// fields themselves, so a non-working date is left to the date field here.
var CrossFieldRules = []Rule{
	{
		Name:       "zero-amount",
		Expression: `!(code in zero_codes) || amount == "0"`,
	},
	{
		Name:       "zero-code-date",
		Expression: `!(code in zero_codes) || !has_date || !date_is_working || date_offset == zero_offset`,
	},
}

// Facts are the inputs the cross-field rules are evaluated against.
type Facts struct {
	Code          string
	Amount        string
	HasDate       bool
	DateOffset    int
	DateIsWorking bool
	ZeroCodes     []string
	ZeroOffset    int
}

func (f Facts) activation() map[string]any {
	zeroCodes := f.ZeroCodes
	if zeroCodes == nil {
		zeroCodes = []string{}
	}
	return map[string]any{
		"code":            f.Code,
		"amount":          f.Amount,
		"has_date":        f.HasDate,
		"date_offset":     int64(f.DateOffset),
		"date_is_working": f.DateIsWorking,
		"zero_codes":      zeroCodes,
		"zero_offset":     int64(f.ZeroOffset),
	}
}

type compiledRule struct {
	name    string
	program cel.Program
}

// Validator holds the compiled programs. It is immutable after construction
// and safe for concurrent use.
type Validator struct {
	rules []compiledRule
}

// NewValidator compiles CrossFieldRules.
func NewValidator() (*Validator, error) {
	return NewValidatorWithRules(CrossFieldRules)
}

// NewValidatorWithRules compiles a custom rule set against the Facts schema.
func NewValidatorWithRules(rules []Rule) (*Validator, error) {
	env, err := cel.NewEnv(
		cel.Variable("code", cel.StringType),
		cel.Variable("amount", cel.StringType),
		cel.Variable("has_date", cel.BoolType),
		cel.Variable("date_offset", cel.IntType),
		cel.Variable("date_is_working", cel.BoolType),
		cel.Variable("zero_codes", cel.ListType(cel.StringType)),
		cel.Variable("zero_offset", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	v := &Validator{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		ast, issues := env.Compile(r.Expression)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("compile error in rule %s: %w", r.Name, issues.Err())
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return nil, fmt.Errorf("rule %s must evaluate to bool, got %v", r.Name, ast.OutputType())
		}
		prg, err := env.Program(ast, cel.CostLimit(100000))
		if err != nil {
			return nil, fmt.Errorf("program creation error in rule %s: %w", r.Name, err)
		}
		v.rules = append(v.rules, compiledRule{name: r.Name, program: prg})
	}
	return v, nil
}

// Evaluate returns the names of the rules facts break, in rule order.
func (v *Validator) Evaluate(facts Facts) ([]string, error) {
	activation := facts.activation()
	var failed []string
	for _, r := range v.rules {
		out, _, err := r.program.Eval(activation)
		if err != nil {
			return nil, fmt.Errorf("evaluation error in rule %s: %w", r.name, err)
		}
		ok, isBool := out.Value().(bool)
		if !isBool {
			return nil, fmt.Errorf("rule %s returned non-bool result %v", r.name, out.Value())
		}
		if !ok {
			failed = append(failed, r.name)
		}
	}
	return failed, nil
}
