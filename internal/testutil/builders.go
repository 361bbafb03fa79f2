package testutil

import (
	"fmt"

	"github.com/roach88/secdsl/internal/dsl"
)

// Doc builds a document.
func Doc(security string, expr *dsl.Expression) *dsl.Document {
	return &dsl.Document{Security: security, Expression: expr}
}

// Expr builds an expression node. Operands may be dsl.Operand values,
// strings (references), ints or float64s (literals).
func Expr(fn dsl.Op, a, b any) *dsl.Expression {
	return dsl.NewExpression(fn, operand(a), operand(b))
}

func operand(v any) dsl.Operand {
	switch o := v.(type) {
	case dsl.Operand:
		return o
	case string:
		return dsl.Reference(o)
	case int:
		return dsl.Literal(o)
	case float64:
		return dsl.Literal(o)
	case nil:
		return nil
	default:
		panic(fmt.Sprintf("testutil: unsupported operand %T", v))
	}
}

// DocJSON renders a document as compact JSON text, panicking on error.
func DocJSON(security string, expr *dsl.Expression) []byte {
	data, err := Doc(security, expr).MarshalJSON()
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal document: %v", err))
	}
	return data
}
