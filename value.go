package downdrag

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the type of a Value.
type Kind int

// Value kinds. KindEmpty marks a slot whose conversion failed structurally.
const (
	KindEmpty Kind = iota
	KindString
	KindInt
	KindFloat
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "empty"
	}
}

// Value is a typed field value as handed to a Sink.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
}

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// IntValue returns an int Value.
func IntValue(i int64) Value { return Value{Kind: KindInt, Int: i} }

// FloatValue returns a float Value.
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// IsEmpty reports whether the value carries nothing.
func (v Value) IsEmpty() bool { return v.Kind == KindEmpty }

// String returns the textual form of the value. Floats use the shortest
// representation that round-trips; empty values are "".
func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	default:
		return ""
	}
}

// Fixed returns the textual form written by the file sinks: floats with six
// decimals, everything else as String.
func (v Value) Fixed() string {
	if v.Kind == KindFloat {
		return strconv.FormatFloat(v.Float, 'f', 6, 64)
	}
	return v.String()
}

// Number returns the value as a float64. Strings are parsed after trimming;
// false is returned when the value has no numeric reading.
func (v Value) Number() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// DetailType is the declared type of a detail.
type DetailType string

// Detail types.
const (
	TypeString DetailType = "string"
	TypeInt    DetailType = "int"
	TypeFloat  DetailType = "float"
)

// Kind returns the value kind produced by the type.
func (t DetailType) Kind() Kind {
	switch t {
	case TypeInt:
		return KindInt
	case TypeFloat:
		return KindFloat
	default:
		return KindString
	}
}

// Validate returns EINVALID for unknown types. The empty type means string.
func (t DetailType) Validate() error {
	switch t {
	case "", TypeString, TypeInt, TypeFloat:
		return nil
	}
	return Errorf(EINVALID, "unknown detail type %q", string(t))
}

// Zero returns the type default: "" for string, 0 for int, 0.0 for float.
func (t DetailType) Zero() Value {
	switch t {
	case TypeInt:
		return IntValue(0)
	case TypeFloat:
		return FloatValue(0)
	default:
		return StringValue("")
	}
}

// Convert coerces text into the type. Surrounding whitespace is ignored for
// numeric types.
func (t DetailType) Convert(s string) (Value, error) {
	switch t {
	case TypeInt:
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return Value{}, err
		}
		return IntValue(i), nil
	case TypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return Value{}, err
		}
		return FloatValue(f), nil
	default:
		return StringValue(s), nil
	}
}

// FromNumber converts an evaluated formula result into the type. Ints
// truncate toward zero; strings get the shortest decimal form.
func (t DetailType) FromNumber(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, fmt.Errorf("non-finite result %v", f)
	}
	switch t {
	case TypeInt:
		if f >= 0x1p63 || f < -0x1p63 {
			return Value{}, fmt.Errorf("result %v overflows int", f)
		}
		return IntValue(int64(f)), nil
	case TypeFloat:
		return FloatValue(f), nil
	default:
		return StringValue(strconv.FormatFloat(f, 'f', -1, 64)), nil
	}
}
