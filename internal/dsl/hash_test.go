package dsl

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintStableAcrossSpelling(t *testing.T) {
	a, err := Parse([]byte(`{"security": "ABC", "expression": {"fn": "*", "a": "sales", "b": 2}}`))
	require.NoError(t, err)
	b, err := Parse([]byte(`{ "expression" : { "b": 2.0, "a": "sales", "fn": "*" }, "security": "ABC" }`))
	require.NoError(t, err)

	fa := fingerprint(t, a)
	fb := fingerprint(t, b)

	assert.Equal(t, fa, fb)
	assert.Len(t, fa, 64)
}

func TestFingerprintDistinguishesDocuments(t *testing.T) {
	a := &Document{Security: "ABC", Expression: NewExpression(OpMul, Reference("sales"), Literal(2))}
	b := &Document{Security: "BCD", Expression: NewExpression(OpMul, Reference("sales"), Literal(2))}
	c := &Document{Security: "ABC", Expression: NewExpression(OpMul, Literal(2), Reference("sales"))}

	assert.NotEqual(t, fingerprint(t, a), fingerprint(t, b))
	assert.NotEqual(t, fingerprint(t, a), fingerprint(t, c))
}

func fingerprint(t *testing.T, doc *Document) string {
	t.Helper()
	fp, err := Fingerprint(doc)
	require.NoError(t, err)
	return fp
}

func TestFingerprintErrors(t *testing.T) {
	_, err := Fingerprint(nil)
	assert.Error(t, err)

	_, err = Fingerprint(&Document{Security: "ABC"})
	assert.Error(t, err)

	_, err = Fingerprint(&Document{Security: "ABC", Expression: NewExpression(OpAdd, Literal(math.Inf(1)), Literal(1))})
	assert.Error(t, err)
}

func TestMarshalCanonicalSortsKeys(t *testing.T) {
	v, err := DecodeValue([]byte(`{"b": 1, "a": {"z": true, "A": null}, "aa": [2, 1]}`))
	require.NoError(t, err)

	out, err := MarshalCanonical(v)
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"A":null,"z":true},"aa":[2,1],"b":1}`, string(out))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to the precomposed form.
	out, err := MarshalCanonical(String("e\u0301"))
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(out))
}

func TestCompareKeysRFC8785(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"a", "b", -1},
		{"b", "a", 1},
		{"a", "a", 0},
		{"aa", "a", 1},
		{"", "a", -1},
		{"A", "a", -1},
		// U+FF61 sorts after a surrogate pair in UTF-16 but before it in UTF-8.
		{"\uff61", "\U0001F600", 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, compareKeysRFC8785(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}
