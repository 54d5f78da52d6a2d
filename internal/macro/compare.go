// internal/macro/compare.go
package macro

import (
	"fmt"
	"strconv"
	"strings"
)

// Comparison operators understood by IfVariable.
const (
	OpEqual        = "=="
	OpNotEqual     = "!="
	OpGreater      = ">"
	OpLess         = "<"
	OpGreaterEqual = ">="
	OpLessEqual    = "<="
	OpContains     = "Contains"
	OpStartsWith   = "StartsWith"
	OpEndsWith     = "EndsWith"
	OpIsEmpty      = "IsEmpty"
	OpIsNotEmpty   = "IsNotEmpty"
)

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

// Evaluate compares left and right with one of the six relational operators.
// Both sides are compared as numbers when they both parse; otherwise only ==
// and != apply, as ordinal string comparisons, and every other operator
// (including an unknown one) evaluates to false.
func Evaluate(left, op, right string) bool {
	l, lok := parseNumber(left)
	r, rok := parseNumber(right)
	if lok && rok {
		switch op {
		case OpEqual:
			return l == r
		case OpNotEqual:
			return l != r
		case OpGreater:
			return l > r
		case OpLess:
			return l < r
		case OpGreaterEqual:
			return l >= r
		case OpLessEqual:
			return l <= r
		}
		return false
	}

	switch op {
	case OpEqual:
		return left == right
	case OpNotEqual:
		return left != right
	}
	return false
}

// CompareStrings extends Evaluate with the string operators. An operator it
// does not know is a configuration error.
func CompareStrings(left, op, right string) (bool, error) {
	switch op {
	case OpEqual, OpNotEqual, OpGreater, OpLess, OpGreaterEqual, OpLessEqual:
		return Evaluate(left, op, right), nil
	case OpContains:
		return strings.Contains(left, right), nil
	case OpStartsWith:
		return strings.HasPrefix(left, right), nil
	case OpEndsWith:
		return strings.HasSuffix(left, right), nil
	case OpIsEmpty:
		return left == "", nil
	case OpIsNotEmpty:
		return left != "", nil
	}
	return false, fmt.Errorf("%w: %q", ErrUnknownOperator, op)
}
