package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Valid documents
// =============================================================================

func TestValidateValidDocuments(t *testing.T) {
	docs := map[string]string{
		"multiply":       `{"expression": {"fn": "*", "a": "sales", "b": 2}, "security": "ABC"}`,
		"divide":         `{"expression": {"fn": "/", "a": "price", "b": "eps"}, "security": "BCD"}`,
		"add literals":   `{"security": "ABC", "expression": {"fn": "+", "a": 1, "b": 2}}`,
		"negative":       `{"security": "ABC", "expression": {"fn": "-", "a": -1.5, "b": 2e3}}`,
		"nested left":    `{"security": "ABC", "expression": {"fn": "-", "a": {"fn": "*", "a": "price", "b": 2}, "b": 1}}`,
		"nested both":    `{"security": "ABC", "expression": {"fn": "+", "a": {"fn": "*", "a": "price", "b": 2}, "b": {"fn": "/", "a": "eps", "b": {"fn": "-", "a": 3, "b": "dps"}}}}`,
		"key order free": `{"expression": {"b": 2, "a": "sales", "fn": "*"}, "security": "ABC"}`,
		"whitespace":     "\n\t{ \"security\" : \"ABC\" ,\n \"expression\" : { \"fn\" : \"+\", \"a\" : 1, \"b\" : 1 } }\n",
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, Validate([]byte(doc)))

			valid, msg := Check([]byte(doc))
			assert.True(t, valid)
			assert.Empty(t, msg)
		})
	}
}

// =============================================================================
// JSON parse failures
// =============================================================================

func TestValidateInvalidJSON(t *testing.T) {
	inputs := []string{
		``,
		`{`,
		`{"security": "ABC",}`,
		`{'security': 'ABC'}`,
		`{"security": "ABC"} {}`,
		`not json`,
		`null`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			err := Validate([]byte(input))
			require.Error(t, err)
			assert.Equal(t, "Invalid JSON.", err.Error())
			assert.True(t, IsKind(err, KindInvalidJSON))
		})
	}
}

// =============================================================================
// Root checks
// =============================================================================

func TestValidateRoot(t *testing.T) {
	const (
		securityMsg   = `"security" field is missing or not a valid type in root.`
		expressionMsg = `"expression" field is missing or not a valid type in root.`
		tooManyMsg    = "Too many fields in root."
	)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"missing security", `{"expression": {"fn": "+", "a": 1, "b": 2}}`, securityMsg},
		{"empty security", `{"security": "", "expression": {"fn": "+", "a": 1, "b": 2}}`, securityMsg},
		{"numeric security", `{"security": 7, "expression": {"fn": "+", "a": 1, "b": 2}}`, securityMsg},
		{"null security", `{"security": null, "expression": {"fn": "+", "a": 1, "b": 2}}`, securityMsg},
		{"root is number", `42`, securityMsg},
		{"root is string", `"ABC"`, securityMsg},
		{"root is array", `[{"security": "ABC"}]`, securityMsg},
		{"missing expression", `{"security": "ABC"}`, expressionMsg},
		{"expression is string", `{"security": "ABC", "expression": "price"}`, expressionMsg},
		{"expression is array", `{"security": "ABC", "expression": [1, 2]}`, expressionMsg},
		{"expression is null", `{"security": "ABC", "expression": null}`, expressionMsg},
		{"extra root key", `{"security": "ABC", "expression": {"fn": "+", "a": 1, "b": 2}, "extra": true}`, tooManyMsg},
		// security is checked before the key count
		{"extra key and bad security", `{"security": 1, "expression": {}, "x": 1}`, securityMsg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.input))
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
			assert.Equal(t, KindSchema, KindOf(err))
		})
	}
}

func TestValidateExtraRootKeyMentionsRoot(t *testing.T) {
	extras := []string{`"x": 1`, `"security2": "ABC"`, `"expression2": {}`, `"": null`}
	for _, extra := range extras {
		input := `{"security": "ABC", "expression": {"fn": "+", "a": 1, "b": 2}, ` + extra + `}`
		valid, msg := Check([]byte(input))
		assert.False(t, valid, extra)
		assert.Contains(t, msg, "root", extra)
	}
}

// =============================================================================
// Expression checks
// =============================================================================

func TestValidateMissingExpressionField(t *testing.T) {
	err := Validate([]byte(`{"security": "ABC", "expression": {"fn": "+", "a": 1}}`))
	require.Error(t, err)
	assert.Equal(t, "Missing field in \"expression\": {\n \"fn\": \"+\",\n \"a\": 1\n}", err.Error())
}

func TestValidateEmptyExpressionObject(t *testing.T) {
	err := Validate([]byte(`{"security": "ABC", "expression": {}}`))
	require.Error(t, err)
	assert.Equal(t, `Missing field in "expression": {}`, err.Error())
}

// A zero or empty operand is treated as missing. This mirrors the truthiness
// test the checks have always used and is kept deliberately.
func TestValidateFalsyOperandsAreMissing(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "zero a",
			input: `{"security": "ABC", "expression": {"fn": "+", "a": 0, "b": 1}}`,
			want:  "Missing field in \"expression\": {\n \"fn\": \"+\",\n \"a\": 0,\n \"b\": 1\n}",
		},
		{
			name:  "negative zero b",
			input: `{"security": "ABC", "expression": {"fn": "+", "a": 1, "b": -0}}`,
			want:  "Missing field in \"expression\": {\n \"fn\": \"+\",\n \"a\": 1,\n \"b\": 0\n}",
		},
		{
			name:  "empty string a",
			input: `{"security": "ABC", "expression": {"fn": "+", "a": "", "b": 1}}`,
			want:  "Missing field in \"expression\": {\n \"fn\": \"+\",\n \"a\": \"\",\n \"b\": 1\n}",
		},
		{
			name:  "false b",
			input: `{"security": "ABC", "expression": {"fn": "+", "a": 1, "b": false}}`,
			want:  "Missing field in \"expression\": {\n \"fn\": \"+\",\n \"a\": 1,\n \"b\": false\n}",
		},
		{
			name:  "null a",
			input: `{"security": "ABC", "expression": {"fn": "+", "a": null, "b": 1}}`,
			want:  "Missing field in \"expression\": {\n \"fn\": \"+\",\n \"a\": null,\n \"b\": 1\n}",
		},
		{
			name:  "empty fn",
			input: `{"security": "ABC", "expression": {"fn": "", "a": 1, "b": 1}}`,
			want:  "Missing field in \"expression\": {\n \"fn\": \"\",\n \"a\": 1,\n \"b\": 1\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.input))
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestValidateTooManyExpressionFields(t *testing.T) {
	err := Validate([]byte(`{"security": "ABC", "expression": {"fn": "+", "a": 1, "b": 2, "c": 3}}`))
	require.Error(t, err)
	assert.Equal(t, "Too many fields in \"expression\": {\n \"fn\": \"+\",\n \"a\": 1,\n \"b\": 2,\n \"c\": 3\n}", err.Error())
}

func TestValidateTooManyFieldsIndexKeyFirst(t *testing.T) {
	err := Validate([]byte(`{"security": "ABC", "expression": {"fn": "+", "a": 1, "b": 2, "2": 1}}`))
	require.Error(t, err)
	assert.Equal(t, "Too many fields in \"expression\": {\n \"2\": 1,\n \"fn\": \"+\",\n \"a\": 1,\n \"b\": 2\n}", err.Error())
}

func TestValidateDuplicateKeysCollapse(t *testing.T) {
	// The last value wins and the key keeps its first position, so this node
	// has exactly three keys.
	err := Validate([]byte(`{"security": "ABC", "expression": {"fn": "?", "a": 1, "b": 2, "fn": "+"}}`))
	assert.NoError(t, err)
}

func TestValidateInvalidOperator(t *testing.T) {
	tests := []struct {
		fn   string
		want string
	}{
		{`"%"`, `"fn" field is not a valid type: %`},
		{`"plus"`, `"fn" field is not a valid type: plus`},
		{`"**"`, `"fn" field is not a valid type: **`},
		{`" +"`, `"fn" field is not a valid type:  +`},
		{`5`, `"fn" field is not a valid type: 5`},
		{`true`, `"fn" field is not a valid type: true`},
		{`["+"]`, `"fn" field is not a valid type: +`},
		{`{"op": "+"}`, `"fn" field is not a valid type: [object Object]`},
	}

	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			input := `{"security": "ABC", "expression": {"fn": ` + tt.fn + `, "a": 1, "b": 2}}`
			err := Validate([]byte(input))
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())

			var de *Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, FieldFn, de.Key)
		})
	}
}

func TestValidateInvalidOperandTypes(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"true a", `true`, `1`, "a field is not a valid type: true"},
		{"true b", `1`, `true`, "b field is not a valid type: true"},
		{"array a", `[1, 2]`, `1`, "a field is not a valid type: 1,2"},
		{"array b", `1`, `["x", null, [3, 4]]`, "b field is not a valid type: x,,3,4"},
		{"empty array a", `[]`, `1`, "a field is not a valid type: "},
		{"a checked before b", `[1]`, `true`, "a field is not a valid type: 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := `{"security": "ABC", "expression": {"fn": "+", "a": ` + tt.a + `, "b": ` + tt.b + `}}`
			err := Validate([]byte(input))
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
			assert.Equal(t, KindSchema, KindOf(err))
		})
	}
}

func TestValidateNestedFailurePropagates(t *testing.T) {
	input := `{"security": "ABC", "expression": {"fn": "+", "a": {"fn": "-", "a": "price", "b": {"fn": "^", "a": 1, "b": 2}}, "b": 3}}`

	err := Validate([]byte(input))
	require.Error(t, err)
	assert.Equal(t, `"fn" field is not a valid type: ^`, err.Error())
}

func TestValidateNestedLeftBeforeRight(t *testing.T) {
	// Both branches are broken; the left one is reported.
	input := `{"security": "ABC", "expression": {"fn": "+", "a": {"fn": "+", "a": 1}, "b": {"fn": "%", "a": 1, "b": 2}}}`

	err := Validate([]byte(input))
	require.Error(t, err)
	assert.Equal(t, "Missing field in \"expression\": {\n \"fn\": \"+\",\n \"a\": 1\n}", err.Error())
}

func TestValidateNestedMissingFieldShowsSubtree(t *testing.T) {
	input := `{"security": "ABC", "expression": {"fn": "+", "a": 1, "b": {"fn": "*", "a": {"fn": "-", "a": 2, "b": 1}, "c": 2}}}`

	err := Validate([]byte(input))
	require.Error(t, err)
	want := "Missing field in \"expression\": {\n" +
		" \"fn\": \"*\",\n" +
		" \"a\": {\n" +
		"  \"fn\": \"-\",\n" +
		"  \"a\": 2,\n" +
		"  \"b\": 1\n" +
		" },\n" +
		" \"c\": 2\n" +
		"}"
	assert.Equal(t, want, err.Error())
}

func TestValidateIsIdempotent(t *testing.T) {
	inputs := []string{
		`{"security": "ABC", "expression": {"fn": "*", "a": "sales", "b": 2}}`,
		`{"security": "ABC", "expression": {"fn": "%", "a": "sales", "b": 2}}`,
		`{`,
	}

	for _, input := range inputs {
		v1, m1 := Check([]byte(input))
		for i := 0; i < 5; i++ {
			v2, m2 := Check([]byte(input))
			assert.Equal(t, v1, v2)
			assert.Equal(t, m1, m2)
		}
	}
}
