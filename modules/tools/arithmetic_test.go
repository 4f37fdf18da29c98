package tools_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/guarzo/splitwise-mcp/modules/tools"
)

func TestArithmetic(t *testing.T) {
	reg := newRegistry(&mockService{})

	cases := []struct {
		name string
		tool string
		args map[string]any
		want tools.ArithmeticResult
	}{
		{
			name: "add avoids float drift",
			tool: "add",
			args: map[string]any{"numbers": []any{0.1, 0.2}},
			want: tools.ArithmeticResult{Result: 0.3, ResultFormatted: "0.30", Operands: []float64{0.1, 0.2}, Operation: "add"},
		},
		{
			name: "add single number",
			tool: "add",
			args: map[string]any{"numbers": []any{5}},
			want: tools.ArithmeticResult{Result: 5, ResultFormatted: "5.00", Operands: []float64{5}, Operation: "add"},
		},
		{
			name: "subtract left to right",
			tool: "subtract",
			args: map[string]any{"numbers": []any{100, 25.5, 4.5}},
			want: tools.ArithmeticResult{Result: 70, ResultFormatted: "70.00", Operands: []float64{100, 25.5, 4.5}, Operation: "subtract"},
		},
		{
			name: "multiply",
			tool: "multiply",
			args: map[string]any{"numbers": []any{19.99, 3}},
			want: tools.ArithmeticResult{Result: 59.97, ResultFormatted: "59.97", Operands: []float64{19.99, 3}, Operation: "multiply"},
		},
		{
			name: "divide rounds",
			tool: "divide",
			args: map[string]any{"numbers": []any{100, 3}},
			want: tools.ArithmeticResult{Result: 33.33, ResultFormatted: "33.33", Operands: []float64{100, 3}, Operation: "divide"},
		},
		{
			name: "divide with zero places rounds half away from zero",
			tool: "divide",
			args: map[string]any{"numbers": []any{5, 2}, "decimal_places": 0},
			want: tools.ArithmeticResult{Result: 3, ResultFormatted: "3", Operands: []float64{5, 2}, Operation: "divide"},
		},
		{
			name: "modulo",
			tool: "modulo",
			args: map[string]any{"a": 10, "b": 3},
			want: tools.ArithmeticResult{Result: 1, ResultFormatted: "1.00", Operands: []float64{10, 3}, Operation: "modulo"},
		},
		{
			name: "modulo takes divisor sign",
			tool: "modulo",
			args: map[string]any{"a": -7, "b": 3},
			want: tools.ArithmeticResult{Result: 2, ResultFormatted: "2.00", Operands: []float64{-7, 3}, Operation: "modulo"},
		},
		{
			name: "modulo negative divisor",
			tool: "modulo",
			args: map[string]any{"a": 7, "b": -3},
			want: tools.ArithmeticResult{Result: -2, ResultFormatted: "-2.00", Operands: []float64{7, -3}, Operation: "modulo"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := reg.Invoke(context.Background(), tc.tool, tc.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestArithmetic_Validation(t *testing.T) {
	reg := newRegistry(&mockService{})
	ctx := context.Background()

	cases := []struct {
		tool  string
		args  map[string]any
		field string
	}{
		{"add", map[string]any{"numbers": []any{}}, "numbers"},
		{"subtract", map[string]any{"numbers": []any{1}}, "numbers"},
		{"multiply", map[string]any{"numbers": []any{1}}, "numbers"},
		{"divide", map[string]any{"numbers": []any{1, 2, 0}}, "numbers"},
		{"modulo", map[string]any{"a": 1, "b": 0}, "b"},
		{"add", map[string]any{"numbers": []any{1}, "decimal_places": -1}, "decimal_places"},
		{"modulo", map[string]any{"a": 1}, "b"},
	}
	for _, tc := range cases {
		_, err := reg.Invoke(ctx, tc.tool, tc.args)
		requireValidation(t, err, tc.field)
	}
}
