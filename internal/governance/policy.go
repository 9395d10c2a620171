package governance

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/Knetic/govaluate"
	"github.com/meshplus/govhub/internal/governance/voting"
)

var ErrPolicyResult = errors.New("creation policy must evaluate to a boolean")

// CreationPolicy decides who may open a proposal. The expression sees
// `power` (the proposer's voting power), `total` (total voting power) and
// `height`, all as numbers.
type CreationPolicy struct {
	raw  string
	expr *govaluate.EvaluableExpression
}

func NewCreationPolicy(expression string) (*CreationPolicy, error) {
	if expression == "" {
		expression = DefaultCreationPolicy
	}
	expr, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return nil, fmt.Errorf("parse creation policy %q: %w", expression, err)
	}
	return &CreationPolicy{raw: expression, expr: expr}, nil
}

func (p *CreationPolicy) String() string {
	return p.raw
}

func (p *CreationPolicy) Allow(power, total voting.Amount, height uint64) (bool, error) {
	res, err := p.expr.Evaluate(map[string]interface{}{
		"power":  amountFloat(power),
		"total":  amountFloat(total),
		"height": float64(height),
	})
	if err != nil {
		return false, fmt.Errorf("evaluate creation policy %q: %w", p.raw, err)
	}
	allowed, ok := res.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q returned %v", ErrPolicyResult, p.raw, res)
	}
	return allowed, nil
}

func amountFloat(a voting.Amount) float64 {
	f, _ := new(big.Float).SetInt(a.Big()).Float64()
	return f
}
