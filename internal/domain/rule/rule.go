package rule

import (
	"fmt"

	"github.com/Knetic/govaluate"
)

// Rule triggers an actuation for events of Method when its expression
// evaluates to true against the event parameters.
type Rule struct {
	Method string
	Target string
	when   string
	expr   *govaluate.EvaluableExpression
}

// New compiles when. An empty expression always matches.
func New(method, when, target string) (*Rule, error) {
	if method == "" {
		return nil, fmt.Errorf("rule method is required")
	}
	if when == "" {
		when = "true"
	}
	expr, err := govaluate.NewEvaluableExpression(when)
	if err != nil {
		return nil, fmt.Errorf("rule %s: compile %q: %w", method, when, err)
	}
	return &Rule{Method: method, Target: target, when: when, expr: expr}, nil
}

func (r *Rule) String() string {
	return r.Method + " when " + r.when
}

func (r *Rule) Matches(params map[string]interface{}) (bool, error) {
	result, err := r.expr.Evaluate(params)
	if err != nil {
		return false, fmt.Errorf("evaluate %q: %w", r.when, err)
	}
	ok, isBool := result.(bool)
	if !isBool {
		return false, fmt.Errorf("evaluate %q: result %v is not a boolean", r.when, result)
	}
	return ok, nil
}
