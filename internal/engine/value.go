package engine

import (
	"math"
	"strconv"
	"strings"
)

// ValueType is a declared variable type.
type ValueType int

const (
	TypeNumber ValueType = iota + 1
	TypeString
	TypeBoolean
)

func parseValueType(name string) (ValueType, bool) {
	switch name {
	case "number":
		return TypeNumber, true
	case "string":
		return TypeString, true
	case "boolean":
		return TypeBoolean, true
	}
	return 0, false
}

func (t ValueType) String() string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeBoolean:
		return "boolean"
	}
	return "unknown"
}

// input is text read from the context that has not yet been given a type.
// It takes the type of whatever binding or operator consumes it.
type input string

// typeOf reports the type of a runtime value. Untyped input reports as a
// string.
func typeOf(v any) ValueType {
	switch v.(type) {
	case float64:
		return TypeNumber
	case bool:
		return TypeBoolean
	default:
		return TypeString
	}
}

// coerce converts v to want, accepting untyped input that parses as want.
func coerce(v any, want ValueType) (any, bool) {
	raw, isInput := v.(input)
	if !isInput {
		return v, typeOf(v) == want
	}
	switch want {
	case TypeNumber:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
		if err != nil {
			return nil, false
		}
		return f, true
	case TypeBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(string(raw)))
		if err != nil {
			return nil, false
		}
		return b, true
	default:
		return string(raw), true
	}
}

// format renders a value the way print emits it. Integral numbers print
// without a fractional part.
func format(v any) string {
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case input:
		return string(x)
	case string:
		return x
	}
	return ""
}
