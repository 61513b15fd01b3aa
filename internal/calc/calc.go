package calc

import (
	"fmt"

	"github.com/yungbote/calctree-backend/internal/apperrors"
)

// Operation is the closed set of arithmetic operations a node can apply to
// its parent's result.
type Operation string

const (
	OperationAdd      Operation = "add"
	OperationSubtract Operation = "subtract"
	OperationMultiply Operation = "multiply"
	OperationDivide   Operation = "divide"
)

// ParseOperation validates a raw string against the closed operation set.
func ParseOperation(raw string) (Operation, error) {
	op := Operation(raw)
	switch op {
	case OperationAdd, OperationSubtract, OperationMultiply, OperationDivide:
		return op, nil
	}
	return "", fmt.Errorf("%q: %w", raw, apperrors.ErrInvalidOperation)
}

// Validate rejects exactly what Apply would reject, without performing the
// arithmetic, so callers can fail fast before touching storage.
func Validate(op Operation, right float64) error {
	if _, err := ParseOperation(string(op)); err != nil {
		return err
	}
	if op == OperationDivide && right == 0 {
		return apperrors.ErrDivisionByZero
	}
	return nil
}

// Apply computes left <op> right with float64 semantics. It is pure and
// deterministic. Division by zero is checked before dividing so the failure
// surfaces as a domain error instead of an IEEE infinity.
func Apply(left float64, op Operation, right float64) (float64, error) {
	if op == OperationDivide && right == 0 {
		return 0, apperrors.ErrDivisionByZero
	}
	switch op {
	case OperationAdd:
		return left + right, nil
	case OperationSubtract:
		return left - right, nil
	case OperationMultiply:
		return left * right, nil
	case OperationDivide:
		return left / right, nil
	}
	return 0, fmt.Errorf("%q: %w", op, apperrors.ErrInvalidOperation)
}
