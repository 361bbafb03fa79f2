package dsl

import (
	"encoding/json"
	"fmt"
)

// Parse validates raw document text and decodes it into a typed Document.
// Validation failures are returned unchanged as *Error.
func Parse(raw []byte) (*Document, error) {
	v, err := DecodeValue(raw)
	if err != nil {
		return nil, NewInvalidJSONError(err)
	}
	if err := ValidateValue(v); err != nil {
		return nil, err
	}
	return FromValue(v)
}

// FromValue converts a schema-valid value into a Document. The operand
// variant is chosen once per node from the decoded JSON type.
func FromValue(v Value) (*Document, error) {
	root, ok := v.(*Object)
	if !ok {
		return nil, fmt.Errorf("document root must be an object, got %T", v)
	}

	security, _ := root.Get(FieldSecurity)
	symbol, ok := security.(String)
	if !ok {
		return nil, fmt.Errorf("security must be a string, got %T", security)
	}

	exprVal, _ := root.Get(FieldExpression)
	node, ok := exprVal.(*Object)
	if !ok {
		return nil, fmt.Errorf("expression must be an object, got %T", exprVal)
	}

	expr, err := expressionFromObject(node)
	if err != nil {
		return nil, fmt.Errorf("expression: %w", err)
	}

	return &Document{Security: string(symbol), Expression: expr}, nil
}

func expressionFromObject(node *Object) (*Expression, error) {
	fnVal, _ := node.Get(FieldFn)
	fn, ok := fnVal.(String)
	if !ok {
		return nil, fmt.Errorf("fn must be a string, got %T", fnVal)
	}
	op, ok := ParseOp(string(fn))
	if !ok {
		return nil, fmt.Errorf("unsupported operator %q", string(fn))
	}

	aVal, _ := node.Get(FieldA)
	a, err := operandFromValue(aVal)
	if err != nil {
		return nil, fmt.Errorf("a: %w", err)
	}

	bVal, _ := node.Get(FieldB)
	b, err := operandFromValue(bVal)
	if err != nil {
		return nil, fmt.Errorf("b: %w", err)
	}

	return &Expression{Fn: op, A: a, B: b}, nil
}

func operandFromValue(v Value) (Operand, error) {
	switch val := v.(type) {
	case Number:
		return Literal(val), nil
	case String:
		return Reference(val), nil
	case *Object:
		return expressionFromObject(val)
	default:
		return nil, fmt.Errorf("unsupported operand type %T", v)
	}
}

// UnmarshalJSON decodes and validates a document.
func (d *Document) UnmarshalJSON(data []byte) error {
	doc, err := Parse(data)
	if err != nil {
		return err
	}
	*d = *doc
	return nil
}

// MarshalJSON encodes the document compactly, keys in the order security,
// expression.
func (d *Document) MarshalJSON() ([]byte, error) {
	obj, err := documentValue(d)
	if err != nil {
		return nil, err
	}
	return MarshalValue(obj)
}

var (
	_ json.Marshaler   = (*Document)(nil)
	_ json.Unmarshaler = (*Document)(nil)
)
