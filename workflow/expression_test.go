package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentkit/hookflow/corerr"
	"github.com/agentkit/hookflow/workflow"
)

func snapshotWith(vars map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"variables":       vars,
		"step_results":    map[string]interface{}{},
		"execution_state": "running",
		"current_step":    "",
	}
}

func TestParseExpression_RHSLiterals(t *testing.T) {
	tests := []struct {
		expr string
		rhs  interface{}
	}{
		{"variables.x == true", true},
		{"variables.x == false", false},
		{"variables.x == null", nil},
		{"variables.x == 42", int64(42)},
		{"variables.x == 3.5", 3.5},
		{"variables.x == \"hello\"", "hello"},
		{"variables.x == bare", "bare"},
		{"variables.x == \"two words\"", "two words"},
		{"variables.x == 'single quoted'", "single quoted"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			expr, err := workflow.ParseExpression(tt.expr)
			require.NoError(t, err)
			require.Equal(t, "variables.x", expr.LHSPath)
			require.Equal(t, tt.rhs, expr.RHS)
		})
	}
}

func TestEvaluate_Comparisons(t *testing.T) {
	snap := snapshotWith(map[string]interface{}{"count": 5, "name": "abc"})

	tests := []struct {
		expr string
		want bool
	}{
		{"variables.count == 5", true},
		{"variables.count != 5", false},
		{"variables.count > 4", true},
		{"variables.count < 4", false},
		{"variables.count >= 5", true},
		{"variables.count <= 4", false},
		{"variables.name == \"abc\"", true},
		{"execution_state == \"running\"", true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			expr, err := workflow.ParseExpression(tt.expr)
			require.NoError(t, err)
			got, err := expr.Evaluate(snap)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_MissingPathFails(t *testing.T) {
	expr, err := workflow.ParseExpression("variables.missing == 1")
	require.NoError(t, err)
	_, err = expr.Evaluate(snapshotWith(map[string]interface{}{}))
	require.ErrorIs(t, err, corerr.ErrPathNotFound)
}

func TestEvaluate_OrderingRequiresNumbers(t *testing.T) {
	expr, err := workflow.ParseExpression("variables.name > 3")
	require.NoError(t, err)
	_, err = expr.Evaluate(snapshotWith(map[string]interface{}{"name": "abc"}))
	require.ErrorIs(t, err, corerr.ErrNotANumber)
}

func TestParseExpression_RejectsOtherDialects(t *testing.T) {
	for _, expr := range []string{
		"$.variables.count > 3",
		"ctx => ctx.count > 3",
		"function(ctx) { return true }",
	} {
		_, err := workflow.ParseExpression(expr)
		require.ErrorIs(t, err, corerr.ErrExpressionNotImplemented, expr)
	}
}

func TestParseExpression_NoOperator(t *testing.T) {
	_, err := workflow.ParseExpression("variables.count")
	require.ErrorIs(t, err, corerr.ErrInvalidExpression)
}
