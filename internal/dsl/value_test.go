package dsl

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = Null{}
	var _ Value = Bool(true)
	var _ Value = Number(1)
	var _ Value = String("s")
	var _ Value = Array{}
	var _ Value = NewObject()
}

func TestDecodeValueScalars(t *testing.T) {
	tests := []struct {
		in   string
		want Value
	}{
		{`null`, Null{}},
		{`true`, Bool(true)},
		{`false`, Bool(false)},
		{`"abc"`, String("abc")},
		{`42`, Number(42)},
		{`-0.5`, Number(-0.5)},
		{` 1e2 `, Number(100)},
	}

	for _, tt := range tests {
		got, err := DecodeValue([]byte(tt.in))
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestDecodeValueOverflowIsInfinite(t *testing.T) {
	got, err := DecodeValue([]byte(`1e400`))
	require.NoError(t, err)
	assert.True(t, math.IsInf(float64(got.(Number)), 1))
}

func TestDecodeValueObjectOrder(t *testing.T) {
	got, err := DecodeValue([]byte(`{"zeta": 1, "alpha": {"b": 2, "a": 3}, "mid": [1, "x"]}`))
	require.NoError(t, err)

	obj, ok := got.(*Object)
	require.True(t, ok)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, obj.Keys())

	inner, ok := obj.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, inner.(*Object).Keys())

	arr, _ := obj.Get("mid")
	assert.Equal(t, Array{Number(1), String("x")}, arr)
}

func TestDecodeValueDuplicateKeys(t *testing.T) {
	got, err := DecodeValue([]byte(`{"a": 1, "b": 2, "a": 3}`))
	require.NoError(t, err)

	obj := got.(*Object)
	assert.Equal(t, 2, obj.Len())
	assert.Equal(t, []string{"a", "b"}, obj.Keys())

	a, _ := obj.Get("a")
	assert.Equal(t, Number(3), a)
}

func TestDecodeValueErrors(t *testing.T) {
	inputs := []string{``, ` `, `{`, `[1,]`, `{"a" 1}`, `{1: 2}`, `tru`, `1 2`, `"unterminated`}
	for _, in := range inputs {
		_, err := DecodeValue([]byte(in))
		assert.Error(t, err, in)
	}
}

func TestObjectNilSafe(t *testing.T) {
	var obj *Object
	_, ok := obj.Get("x")
	assert.False(t, ok)
	assert.Equal(t, 0, obj.Len())
	assert.Nil(t, obj.Keys())
}

func TestTruthy(t *testing.T) {
	assert.False(t, truthy(Number(1), false))
	assert.False(t, truthy(Null{}, true))
	assert.False(t, truthy(Bool(false), true))
	assert.False(t, truthy(Number(0), true))
	assert.False(t, truthy(Number(math.NaN()), true))
	assert.False(t, truthy(String(""), true))

	assert.True(t, truthy(Bool(true), true))
	assert.True(t, truthy(Number(-1), true))
	assert.True(t, truthy(String("0"), true))
	assert.True(t, truthy(Array{}, true))
	assert.True(t, truthy(NewObject(), true))
}
