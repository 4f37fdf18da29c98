package tools

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/guarzo/splitwise-mcp/common"
)

const defaultDecimalPlaces = 2

// ArithmeticResult is returned by every arithmetic tool.
type ArithmeticResult struct {
	Result          float64   `json:"result"`
	ResultFormatted string    `json:"result_formatted"`
	Operands        []float64 `json:"operands"`
	Operation       string    `json:"operation"`
}

var numberItems = map[string]any{"type": "number"}

const placesDescription = "Decimal precision (default 2)"

func arithmeticTools() []Definition {
	numbers := func(description string) []Param {
		return []Param{
			{Name: "numbers", Type: TypeArray, Description: description, Required: true, Items: numberItems},
			{Name: "decimal_places", Type: TypeInteger, Description: placesDescription},
		}
	}
	return []Definition{
		{
			Name:        "add",
			Description: "Add numbers together with precise decimal rounding (for expense calculations)",
			Params:      numbers("Numbers to add (minimum 1)"),
			New:         func() Request { return &Fold{op: opAdd} },
		},
		{
			Name:        "subtract",
			Description: "Subtract numbers sequentially: first - second - third... (for expense calculations)",
			Params:      numbers("Numbers to subtract (minimum 2)"),
			New:         func() Request { return &Fold{op: opSubtract} },
		},
		{
			Name:        "multiply",
			Description: "Multiply numbers together (for expense calculations)",
			Params:      numbers("Numbers to multiply (minimum 2)"),
			New:         func() Request { return &Fold{op: opMultiply} },
		},
		{
			Name:        "divide",
			Description: "Divide numbers sequentially: first / second / third... (for expense calculations)",
			Params:      numbers("Numbers to divide (minimum 2)"),
			New:         func() Request { return &Fold{op: opDivide} },
		},
		{
			Name:        "modulo",
			Description: "Get remainder of division (for expense splitting calculations)",
			Params: []Param{
				{Name: "a", Type: TypeNumber, Description: "Dividend", Required: true},
				{Name: "b", Type: TypeNumber, Description: "Divisor", Required: true},
				{Name: "decimal_places", Type: TypeInteger, Description: placesDescription},
			},
			New: func() Request { return &Modulo{} },
		},
	}
}

type operation string

const (
	opAdd      operation = "add"
	opSubtract operation = "subtract"
	opMultiply operation = "multiply"
	opDivide   operation = "divide"
)

// minOperands is how many numbers each fold needs.
var minOperands = map[operation]int{
	opAdd:      1,
	opSubtract: 2,
	opMultiply: 2,
	opDivide:   2,
}

// Fold applies one operation left to right over a list of numbers.
type Fold struct {
	op            operation
	Numbers       []float64 `mapstructure:"numbers"`
	DecimalPlaces *int64    `mapstructure:"decimal_places"`
}

func (r *Fold) Validate() error {
	if err := validatePlaces(r.DecimalPlaces); err != nil {
		return err
	}
	if n := minOperands[r.op]; len(r.Numbers) < n {
		if n == 1 {
			return common.NewValidationError("numbers", "At least 1 number is required")
		}
		return common.NewValidationError("numbers", "At least %d numbers are required", n)
	}
	if r.op == opDivide {
		for _, n := range r.Numbers[1:] {
			if n == 0 {
				return common.NewValidationError("numbers", "Cannot divide by zero")
			}
		}
	}
	return nil
}

func (r *Fold) Execute(ctx context.Context, env *Env) (any, error) {
	acc := decimal.NewFromFloat(r.Numbers[0])
	for _, n := range r.Numbers[1:] {
		d := decimal.NewFromFloat(n)
		switch r.op {
		case opAdd:
			acc = acc.Add(d)
		case opSubtract:
			acc = acc.Sub(d)
		case opMultiply:
			acc = acc.Mul(d)
		case opDivide:
			acc = acc.Div(d)
		}
	}
	return newArithmeticResult(acc, places(r.DecimalPlaces), r.Numbers, string(r.op)), nil
}

// Modulo takes the sign of the divisor, so -7 mod 3 is 2.
type Modulo struct {
	A             float64 `mapstructure:"a"`
	B             float64 `mapstructure:"b"`
	DecimalPlaces *int64  `mapstructure:"decimal_places"`
}

func (r *Modulo) Validate() error {
	if err := validatePlaces(r.DecimalPlaces); err != nil {
		return err
	}
	if r.B == 0 {
		return common.NewValidationError("b", "Cannot divide by zero")
	}
	return nil
}

func (r *Modulo) Execute(ctx context.Context, env *Env) (any, error) {
	a, b := decimal.NewFromFloat(r.A), decimal.NewFromFloat(r.B)
	rem := a.Mod(b)
	if !rem.IsZero() && rem.Sign() != b.Sign() {
		rem = rem.Add(b)
	}
	return newArithmeticResult(rem, places(r.DecimalPlaces), []float64{r.A, r.B}, "modulo"), nil
}

func validatePlaces(p *int64) error {
	if p == nil {
		return nil
	}
	return validateMin(*p, "decimal_places", 0)
}

func places(p *int64) int32 {
	if p == nil {
		return defaultDecimalPlaces
	}
	return int32(*p)
}

func newArithmeticResult(v decimal.Decimal, digits int32, operands []float64, op string) ArithmeticResult {
	rounded := v.Round(digits)
	return ArithmeticResult{
		Result:          rounded.InexactFloat64(),
		ResultFormatted: rounded.StringFixed(digits),
		Operands:        operands,
		Operation:       op,
	}
}
