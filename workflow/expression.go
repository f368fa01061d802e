package workflow

import (
	"strconv"
	"strings"

	"github.com/agentkit/hookflow/corerr"
)

// Op is a simple-expression comparison operator.
type Op string

const (
	OpEq  Op = "=="
	OpNe  Op = "!="
	OpGt  Op = ">"
	OpLt  Op = "<"
	OpGe  Op = ">="
	OpLe  Op = "<="
)

var opTokens = []Op{OpGe, OpLe, OpEq, OpNe, OpGt, OpLt}

// ConditionExpression is a parsed `LHS OP RHS` simple expression, per
// §4.12. JSONPath and JS dialects are explicitly out of scope and must be
// rejected with ExpressionNotImplemented rather than silently evaluated.
type ConditionExpression struct {
	LHSPath string
	Op      Op
	RHS     interface{}
}

// ParseExpression tokenizes `LHS OP RHS`. RHS is parsed greedily as
// true/false/null/integer/float/quoted-or-bare string; a leading quote is
// read through to its matching close, supporting embedded spaces.
func ParseExpression(expr string) (*ConditionExpression, error) {
	expr = strings.TrimSpace(expr)
	if looksLikeOtherDialect(expr) {
		return nil, corerr.New("ParseExpression", corerr.ErrExpressionNotImplemented, "", "only simple LHS OP RHS expressions are supported")
	}

	var op Op
	var opIdx int
	found := false
	for _, candidate := range opTokens {
		if idx := strings.Index(expr, string(candidate)); idx >= 0 {
			op, opIdx, found = candidate, idx, true
			break
		}
	}
	if !found {
		return nil, corerr.New("ParseExpression", corerr.ErrInvalidExpression, "", "no comparison operator found in: "+expr)
	}

	lhs := strings.TrimSpace(expr[:opIdx])
	rhsRaw := strings.TrimSpace(expr[opIdx+len(op):])
	if lhs == "" || rhsRaw == "" {
		return nil, corerr.New("ParseExpression", corerr.ErrInvalidExpression, "", "missing operand in: "+expr)
	}

	return &ConditionExpression{LHSPath: lhs, Op: op, RHS: parseRHS(rhsRaw)}, nil
}

func looksLikeOtherDialect(expr string) bool {
	return strings.HasPrefix(expr, "$.") || strings.Contains(expr, "=>") || strings.Contains(expr, "function(")
}

func parseRHS(raw string) interface{} {
	if len(raw) >= 2 {
		if (raw[0] == '"' && raw[len(raw)-1] == '"') || (raw[0] == '\'' && raw[len(raw)-1] == '\'') {
			return raw[1 : len(raw)-1]
		}
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// Evaluate resolves LHSPath against snapshot and compares against RHS per
// c.Op. Equality is structural for primitive kinds; ordering coerces both
// sides to float64.
func (c *ConditionExpression) Evaluate(snapshot map[string]interface{}) (bool, error) {
	lhs, err := resolvePath(snapshot, c.LHSPath)
	if err != nil {
		return false, err
	}

	switch c.Op {
	case OpEq:
		return structuralEqual(lhs, c.RHS), nil
	case OpNe:
		return !structuralEqual(lhs, c.RHS), nil
	default:
		lf, err := numericOf(lhs)
		if err != nil {
			return false, err
		}
		rf, err := numericOf(c.RHS)
		if err != nil {
			return false, err
		}
		switch c.Op {
		case OpGt:
			return lf > rf, nil
		case OpLt:
			return lf < rf, nil
		case OpGe:
			return lf >= rf, nil
		case OpLe:
			return lf <= rf, nil
		}
	}
	return false, corerr.New("Evaluate", corerr.ErrInvalidExpression, "", "unsupported operator")
}

// resolvePath walks a dot-path (e.g. "variables.count") over nested
// map[string]interface{} values.
func resolvePath(root map[string]interface{}, path string) (interface{}, error) {
	parts := strings.Split(path, ".")
	var cur interface{} = root
	for _, part := range parts {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, corerr.New("resolvePath", corerr.ErrPathNotFound, path, "path does not resolve through a non-object value")
		}
		v, ok := m[part]
		if !ok {
			return nil, corerr.New("resolvePath", corerr.ErrPathNotFound, path, "no such field: "+part)
		}
		cur = v
	}
	return cur, nil
}

func structuralEqual(a, b interface{}) bool {
	af, aerr := numericOf(a)
	bf, berr := numericOf(b)
	if aerr == nil && berr == nil {
		return af == bf
	}
	return a == b
}

func numericOf(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	default:
		return 0, corerr.New("numericOf", corerr.ErrNotANumber, "", "value is not numeric")
	}
}
