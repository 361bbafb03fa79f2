package dsl

import (
	"encoding/json"
	"fmt"
)

// Op is one of the four supported arithmetic operators.
type Op string

const (
	OpAdd Op = "+"
	OpSub Op = "-"
	OpMul Op = "*"
	OpDiv Op = "/"
)

// ParseOp maps an operator symbol to its Op.
func ParseOp(s string) (Op, bool) {
	switch Op(s) {
	case OpAdd, OpSub, OpMul, OpDiv:
		return Op(s), true
	}
	return "", false
}

// Valid reports whether op is in the closed operator set.
func (op Op) Valid() bool {
	_, ok := ParseOp(string(op))
	return ok
}

// Apply evaluates a op b. Division is plain IEEE division: a zero divisor
// yields ±Inf or NaN.
func (op Op) Apply(a, b float64) (float64, error) {
	switch op {
	case OpAdd:
		return a + b, nil
	case OpSub:
		return a - b, nil
	case OpMul:
		return a * b, nil
	case OpDiv:
		return a / b, nil
	default:
		return 0, fmt.Errorf("unsupported operator %q", string(op))
	}
}

// Document is a validated DSL document.
type Document struct {
	Security   string      `json:"security"`
	Expression *Expression `json:"expression"`
}

// Expression is a binary arithmetic node.
type Expression struct {
	Fn Op
	A  Operand
	B  Operand
}

// Operand is a sealed interface: Literal, Reference or *Expression.
type Operand interface {
	operand()
}

// Literal is a numeric operand used as-is.
type Literal float64

func (Literal) operand() {}

// Reference names an attribute resolved against the document's security.
type Reference string

func (Reference) operand() {}

func (*Expression) operand() {}

// NewExpression is a convenience constructor for building trees in code.
func NewExpression(fn Op, a, b Operand) *Expression {
	return &Expression{Fn: fn, A: a, B: b}
}

// MarshalJSON encodes the node as {"fn","a","b"}.
func (e *Expression) MarshalJSON() ([]byte, error) {
	v, err := toValue(e)
	if err != nil {
		return nil, err
	}
	return MarshalValue(v)
}

// Depth returns the number of nested expression levels, counting e itself.
func (e *Expression) Depth() int {
	if e == nil {
		return 0
	}
	depth := 0
	for _, side := range []Operand{e.A, e.B} {
		if nested, ok := side.(*Expression); ok {
			if d := nested.Depth(); d > depth {
				depth = d
			}
		}
	}
	return depth + 1
}

// References returns every attribute name referenced by the tree, in
// evaluation order (left before right), duplicates included.
func (e *Expression) References() []string {
	var refs []string
	var walk func(op Operand)
	walk = func(op Operand) {
		switch v := op.(type) {
		case Reference:
			refs = append(refs, string(v))
		case *Expression:
			if v != nil {
				walk(v.A)
				walk(v.B)
			}
		}
	}
	walk(e)
	return refs
}

// toValue converts a typed tree back into the JSON value model.
func toValue(op Operand) (Value, error) {
	switch v := op.(type) {
	case Literal:
		return Number(v), nil
	case Reference:
		return String(v), nil
	case *Expression:
		if v == nil {
			return nil, fmt.Errorf("nil expression")
		}
		a, err := toValue(v.A)
		if err != nil {
			return nil, fmt.Errorf("a: %w", err)
		}
		b, err := toValue(v.B)
		if err != nil {
			return nil, fmt.Errorf("b: %w", err)
		}
		obj := NewObject()
		obj.Set("fn", String(v.Fn))
		obj.Set("a", a)
		obj.Set("b", b)
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported operand type: %T", op)
	}
}

// documentValue converts a document into the JSON value model.
func documentValue(doc *Document) (*Object, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	expr, err := toValue(doc.Expression)
	if err != nil {
		return nil, fmt.Errorf("expression: %w", err)
	}
	obj := NewObject()
	obj.Set("security", String(doc.Security))
	obj.Set("expression", expr)
	return obj, nil
}

var _ json.Marshaler = (*Expression)(nil)
