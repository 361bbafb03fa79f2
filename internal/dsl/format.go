package dsl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// FormatNumber renders a float the way ECMAScript Number#toString does:
// shortest round-trip digits, plain decimal for 1e-6 <= |f| < 1e21 and
// exponent form ("1e+21", "1.5e-7") outside that range.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + sign + digits
}

// Describe renders a value the way template-string interpolation renders
// it in diagnostics: strings verbatim, arrays joined with commas, objects
// as "[object Object]".
func Describe(v Value) string {
	switch val := v.(type) {
	case nil:
		return "undefined"
	case Null:
		return "null"
	case Bool:
		return strconv.FormatBool(bool(val))
	case Number:
		return FormatNumber(float64(val))
	case String:
		return string(val)
	case Array:
		parts := make([]string, len(val))
		for i, elem := range val {
			if _, isNull := elem.(Null); isNull {
				continue
			}
			parts[i] = Describe(elem)
		}
		return strings.Join(parts, ",")
	case *Object:
		return "[object Object]"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Indent serializes a value as JSON with one space of indentation per
// level. Object keys follow ECMAScript property order: array-index keys
// ascending, then the rest in insertion order. Non-finite numbers
// serialize as null.
func Indent(v Value) string {
	var buf bytes.Buffer
	writeIndented(&buf, v, "")
	return buf.String()
}

func writeIndented(buf *bytes.Buffer, v Value, prefix string) {
	inner := prefix + " "

	switch val := v.(type) {
	case *Object:
		if val.Len() == 0 {
			buf.WriteString("{}")
			return
		}
		buf.WriteString("{\n")
		for i, k := range propertyOrder(val.keys) {
			if i > 0 {
				buf.WriteString(",\n")
			}
			buf.WriteString(inner)
			buf.Write(marshalString(k))
			buf.WriteString(": ")
			writeIndented(buf, val.fields[k], inner)
		}
		buf.WriteString("\n" + prefix + "}")
	case Array:
		if len(val) == 0 {
			buf.WriteString("[]")
			return
		}
		buf.WriteString("[\n")
		for i, elem := range val {
			if i > 0 {
				buf.WriteString(",\n")
			}
			buf.WriteString(inner)
			writeIndented(buf, elem, inner)
		}
		buf.WriteString("\n" + prefix + "]")
	default:
		buf.Write(marshalScalar(v))
	}
}

// propertyOrder returns keys with array-index keys first in ascending
// numeric order, followed by the remaining keys in their original order.
func propertyOrder(keys []string) []string {
	var indices, names []string
	for _, k := range keys {
		if isArrayIndex(k) {
			indices = append(indices, k)
		} else {
			names = append(names, k)
		}
	}
	if len(indices) == 0 {
		return keys
	}
	slices.SortFunc(indices, func(a, b string) int {
		if len(a) != len(b) {
			return len(a) - len(b)
		}
		return strings.Compare(a, b)
	})
	return append(indices, names...)
}

// isArrayIndex reports whether k is the canonical decimal form of an
// integer in [0, 2^32-2].
func isArrayIndex(k string) bool {
	if k == "" || (len(k) > 1 && k[0] == '0') {
		return false
	}
	n, err := strconv.ParseUint(k, 10, 64)
	return err == nil && n < math.MaxUint32
}

// MarshalValue serializes a value as compact JSON in insertion order.
func MarshalValue(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCompact(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCompact(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case *Object:
		buf.WriteByte('{')
		for i, k := range val.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.Write(marshalString(k))
			buf.WriteByte(':')
			if err := writeCompact(buf, val.fields[k]); err != nil {
				return fmt.Errorf("object[%q]: %w", k, err)
			}
		}
		buf.WriteByte('}')
	case Array:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCompact(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case Number:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("non-finite number %s", FormatNumber(f))
		}
		buf.WriteString(FormatNumber(f))
	case nil:
		return fmt.Errorf("nil value")
	default:
		buf.Write(marshalScalar(v))
	}
	return nil
}

func marshalScalar(v Value) []byte {
	switch val := v.(type) {
	case Null:
		return []byte("null")
	case Bool:
		return []byte(strconv.FormatBool(bool(val)))
	case Number:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return []byte("null")
		}
		return []byte(FormatNumber(f))
	case String:
		return marshalString(string(val))
	default:
		return []byte("null")
	}
}

// marshalString quotes s without HTML escaping and without escaping
// U+2028/U+2029.
func marshalString(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)

	out := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return unescapeLineSeparators(out)
}

// unescapeLineSeparators turns \u2028 and \u2029 escapes back into the
// literal characters, leaving \\u2028 (an escaped backslash) alone.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == '\\' && i+5 < len(data) && data[i+1] == 'u' &&
			data[i+2] == '2' && data[i+3] == '0' && data[i+4] == '2' &&
			(data[i+5] == '8' || data[i+5] == '9') {
			// Count the backslashes already emitted; an odd run means this
			// one is itself escaped.
			run := 0
			for j := len(out) - 1; j >= 0 && out[j] == '\\'; j-- {
				run++
			}
			if run%2 == 0 {
				if data[i+5] == '8' {
					out = append(out, "\u2028"...)
				} else {
					out = append(out, "\u2029"...)
				}
				i += 5
				continue
			}
		}
		out = append(out, data[i])
	}
	return out
}
