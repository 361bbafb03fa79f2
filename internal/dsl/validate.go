package dsl

import "math"

// Root and expression field names.
const (
	FieldSecurity   = "security"
	FieldExpression = "expression"
	FieldFn         = "fn"
	FieldA          = "a"
	FieldB          = "b"
)

// Check validates raw document text and reports the outcome as a
// (valid, message) pair. The message is empty when valid.
func Check(raw []byte) (bool, string) {
	if err := Validate(raw); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// Validate parses raw as JSON and checks it against the document schema.
// It returns nil when the document is valid and a *Error otherwise.
//
// Checks stop at the first failure. Nested expressions are visited
// depth-first, the "a" side before the "b" side.
//
// Validate is a pure function with no side effects.
func Validate(raw []byte) error {
	v, err := DecodeValue(raw)
	if err != nil {
		return NewInvalidJSONError(err)
	}
	return ValidateValue(v)
}

// ValidateValue checks an already decoded value against the document schema.
func ValidateValue(v Value) error {
	// A null root cannot be inspected at all; it is reported like a parse
	// failure.
	if _, isNull := v.(Null); isNull || v == nil {
		return NewInvalidJSONError(nil)
	}

	root, _ := v.(*Object)

	security, ok := root.Get(FieldSecurity)
	if _, isString := security.(String); !truthy(security, ok) || !isString {
		return NewSchemaError(FieldSecurity, `"security" field is missing or not a valid type in root.`)
	}

	expression, ok := root.Get(FieldExpression)
	node, isObject := expression.(*Object)
	if !ok || !isObject {
		return NewSchemaError(FieldExpression, `"expression" field is missing or not a valid type in root.`)
	}

	if root.Len() != 2 {
		return NewSchemaError("root", "Too many fields in root.")
	}

	return validateExpression(node)
}

// validateExpression recursively validates an expression node.
func validateExpression(node *Object) error {
	fn, hasFn := node.Get(FieldFn)
	a, hasA := node.Get(FieldA)
	b, hasB := node.Get(FieldB)

	// Presence is a truthiness test: 0, "" and false count as missing.
	if !truthy(fn, hasFn) || !truthy(a, hasA) || !truthy(b, hasB) {
		return NewSchemaError(FieldExpression, `Missing field in "expression": `+Indent(node))
	}

	if node.Len() != 3 {
		return NewSchemaError(FieldExpression, `Too many fields in "expression": `+Indent(node))
	}

	if s, isString := fn.(String); !isString || !Op(s).Valid() {
		return NewSchemaError(FieldFn, `"fn" field is not a valid type: `+Describe(fn))
	}

	if err := validateSide(a, FieldA); err != nil {
		return err
	}
	return validateSide(b, FieldB)
}

// validateSide checks one operand and recurses into nested expressions.
func validateSide(v Value, side string) error {
	switch val := v.(type) {
	case String, Number:
		return nil
	case *Object:
		return validateExpression(val)
	default:
		return NewSchemaError(side, side+" field is not a valid type: "+Describe(v))
	}
}

// truthy reports whether a present value is truthy: everything except null,
// false, 0, -0, NaN and the empty string.
func truthy(v Value, present bool) bool {
	if !present {
		return false
	}
	switch val := v.(type) {
	case nil, Null:
		return false
	case Bool:
		return bool(val)
	case Number:
		f := float64(val)
		return f != 0 && !math.IsNaN(f)
	case String:
		return val != ""
	default:
		return true
	}
}
