package frame

import (
	"strconv"
	"strings"
	"time"
)

// DType enumerates the supported column types. A DType carries only
// width/precision metadata, never a value; CellValue is the corresponding
// tagged variant that does carry one.
type DType int

const (
	DTypeNull DType = iota
	DTypeBool
	DTypeI8
	DTypeI16
	DTypeI32
	DTypeI64
	DTypeU8
	DTypeU16
	DTypeU32
	DTypeU64
	DTypeF32
	DTypeF64
	DTypeDecimal
	DTypeUtf8
	DTypeDate
	DTypeTime
	DTypeDatetime
	DTypeCategorical
)

func (d DType) String() string {
	switch d {
	case DTypeNull:
		return "null"
	case DTypeBool:
		return "bool"
	case DTypeI8:
		return "i8"
	case DTypeI16:
		return "i16"
	case DTypeI32:
		return "i32"
	case DTypeI64:
		return "i64"
	case DTypeU8:
		return "u8"
	case DTypeU16:
		return "u16"
	case DTypeU32:
		return "u32"
	case DTypeU64:
		return "u64"
	case DTypeF32:
		return "f32"
	case DTypeF64:
		return "f64"
	case DTypeDecimal:
		return "decimal"
	case DTypeUtf8:
		return "utf8"
	case DTypeDate:
		return "date"
	case DTypeTime:
		return "time"
	case DTypeDatetime:
		return "datetime"
	case DTypeCategorical:
		return "categorical"
	default:
		return "unknown"
	}
}

func isInteger(d DType) bool {
	switch d {
	case DTypeI8, DTypeI16, DTypeI32, DTypeI64, DTypeU8, DTypeU16, DTypeU32, DTypeU64:
		return true
	}
	return false
}

func isUnsigned(d DType) bool {
	switch d {
	case DTypeU8, DTypeU16, DTypeU32, DTypeU64:
		return true
	}
	return false
}

func isFloat(d DType) bool {
	return d == DTypeF32 || d == DTypeF64
}

// CellValue is the tagged-variant cell payload. Exactly one payload field
// is meaningful, selected by Kind; IsNull overrides all of them.
type CellValue struct {
	Kind   DType
	IsNull bool

	Bool bool
	Int  int64 // signed integer kinds
	Uint uint64 // unsigned integer kinds

	Float float64 // f32/f64

	DecUnscaled int64 // Decimal: value * 10^-Scale
	DecScale    int32

	Str string    // Utf8 and Categorical label
	Cat int32     // Categorical code; not set by this package (stays 0)
	T   time.Time // Date / Time / Datetime
}

// Null returns the null CellValue for the given kind.
func Null(kind DType) CellValue {
	return CellValue{Kind: kind, IsNull: true}
}

func BoolValue(v bool) CellValue    { return CellValue{Kind: DTypeBool, Bool: v} }
func IntValue(kind DType, v int64) CellValue {
	return CellValue{Kind: kind, Int: v}
}
func UintValue(kind DType, v uint64) CellValue {
	return CellValue{Kind: kind, Uint: v}
}
func FloatValue(kind DType, v float64) CellValue {
	return CellValue{Kind: kind, Float: v}
}
func Utf8Value(v string) CellValue { return CellValue{Kind: DTypeUtf8, Str: v} }
func CategoricalValue(label string) CellValue {
	return CellValue{Kind: DTypeCategorical, Str: label}
}
func TimeValue(kind DType, v time.Time) CellValue {
	return CellValue{Kind: kind, T: v}
}
func DecimalValue(unscaled int64, scale int32) CellValue {
	return CellValue{Kind: DTypeDecimal, DecUnscaled: unscaled, DecScale: scale}
}

// Equal reports value equality with null-equal semantics: two nulls of the
// same kind are equal.
func (c CellValue) Equal(other CellValue) bool {
	if c.IsNull || other.IsNull {
		return c.IsNull == other.IsNull
	}
	switch c.Kind {
	case DTypeBool:
		return c.Bool == other.Bool
	case DTypeUtf8, DTypeCategorical:
		return c.Str == other.Str
	case DTypeF32, DTypeF64:
		return c.Float == other.Float
	case DTypeDecimal:
		return c.DecUnscaled == other.DecUnscaled && c.DecScale == other.DecScale
	case DTypeDate, DTypeTime, DTypeDatetime:
		return c.T.Equal(other.T)
	default:
		if isUnsigned(c.Kind) {
			return c.Uint == other.Uint
		}
		return c.Int == other.Int
	}
}

// Less provides a total order for sort: nulls sort last
// regardless of direction, handled by the caller, not here.
func (c CellValue) Less(other CellValue) bool {
	switch c.Kind {
	case DTypeBool:
		return !c.Bool && other.Bool
	case DTypeUtf8, DTypeCategorical:
		return c.Str < other.Str
	case DTypeF32, DTypeF64:
		return c.Float < other.Float
	case DTypeDecimal:
		// compare as float64 approximation of the scaled decimal; exact
		// enough for ordering given both operands share a column scale.
		return decimalToFloat(c) < decimalToFloat(other)
	case DTypeDate, DTypeTime, DTypeDatetime:
		return c.T.Before(other.T)
	default:
		if isUnsigned(c.Kind) {
			return c.Uint < other.Uint
		}
		return c.Int < other.Int
	}
}

func decimalToFloat(c CellValue) float64 {
	scale := c.DecScale
	v := float64(c.DecUnscaled)
	for i := int32(0); i < scale; i++ {
		v /= 10
	}
	return v
}

// String renders the cell's string form, used for SelectionChanged and
// for best-effort string casts into Utf8 columns.
func (c CellValue) String() string {
	if c.IsNull {
		return ""
	}
	switch c.Kind {
	case DTypeBool:
		return strconv.FormatBool(c.Bool)
	case DTypeUtf8, DTypeCategorical:
		return c.Str
	case DTypeF32:
		return strconv.FormatFloat(c.Float, 'g', -1, 32)
	case DTypeF64:
		return strconv.FormatFloat(c.Float, 'g', -1, 64)
	case DTypeDecimal:
		return formatDecimal(c.DecUnscaled, c.DecScale)
	case DTypeDate:
		return c.T.Format("2006-01-02")
	case DTypeTime:
		return c.T.Format("15:04:05")
	case DTypeDatetime:
		return c.T.Format("2006-01-02 15:04:05")
	default:
		if isUnsigned(c.Kind) {
			return strconv.FormatUint(c.Uint, 10)
		}
		return strconv.FormatInt(c.Int, 10)
	}
}

func formatDecimal(unscaled int64, scale int32) string {
	if scale <= 0 {
		return strconv.FormatInt(unscaled, 10)
	}
	neg := unscaled < 0
	if neg {
		unscaled = -unscaled
	}
	s := strconv.FormatInt(unscaled, 10)
	for int32(len(s)) <= scale {
		s = "0" + s
	}
	whole := s[:int32(len(s))-scale]
	frac := s[int32(len(s))-scale:]
	out := whole + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

// Cast attempts to convert c to dst. ok=false means the cast failed and the
// caller must decide between string fallback and rejection.
func (c CellValue) Cast(dst DType) (CellValue, bool) {
	if c.IsNull {
		return Null(dst), true
	}
	if c.Kind == dst {
		return c, true
	}
	switch dst {
	case DTypeBool:
		switch {
		case isInteger(c.Kind):
			return BoolValue(c.asInt() != 0), true
		case isFloat(c.Kind):
			return BoolValue(c.Float != 0), true
		case c.Kind == DTypeUtf8:
			b, err := strconv.ParseBool(strings.TrimSpace(c.Str))
			if err != nil {
				return CellValue{}, false
			}
			return BoolValue(b), true
		}
		return CellValue{}, false
	case DTypeI8, DTypeI16, DTypeI32, DTypeI64:
		switch {
		case isInteger(c.Kind):
			return IntValue(dst, c.asInt()), true
		case isFloat(c.Kind):
			return IntValue(dst, int64(c.Float)), true
		case c.Kind == DTypeBool:
			return IntValue(dst, boolToInt(c.Bool)), true
		case c.Kind == DTypeUtf8:
			n, err := strconv.ParseInt(strings.TrimSpace(c.Str), 10, 64)
			if err != nil {
				return CellValue{}, false
			}
			return IntValue(dst, n), true
		}
		return CellValue{}, false
	case DTypeU8, DTypeU16, DTypeU32, DTypeU64:
		switch {
		case isInteger(c.Kind):
			v := c.asInt()
			if v < 0 {
				return CellValue{}, false
			}
			return UintValue(dst, uint64(v)), true
		case isFloat(c.Kind):
			if c.Float < 0 {
				return CellValue{}, false
			}
			return UintValue(dst, uint64(c.Float)), true
		case c.Kind == DTypeUtf8:
			n, err := strconv.ParseUint(strings.TrimSpace(c.Str), 10, 64)
			if err != nil {
				return CellValue{}, false
			}
			return UintValue(dst, n), true
		}
		return CellValue{}, false
	case DTypeF32, DTypeF64:
		switch {
		case isInteger(c.Kind):
			return FloatValue(dst, float64(c.asInt())), true
		case isFloat(c.Kind):
			return FloatValue(dst, c.Float), true
		case c.Kind == DTypeUtf8:
			f, err := strconv.ParseFloat(strings.TrimSpace(c.Str), 64)
			if err != nil {
				return CellValue{}, false
			}
			return FloatValue(dst, f), true
		}
		return CellValue{}, false
	case DTypeUtf8:
		return Utf8Value(c.String()), true
	case DTypeCategorical:
		return CategoricalValue(c.String()), true
	case DTypeDecimal:
		switch {
		case isInteger(c.Kind):
			return DecimalValue(c.asInt(), 0), true
		case isFloat(c.Kind):
			return DecimalValue(int64(c.Float), 0), true
		case c.Kind == DTypeUtf8:
			return parseDecimalString(c.Str)
		}
		return CellValue{}, false
	case DTypeDate, DTypeTime, DTypeDatetime:
		if c.Kind == DTypeUtf8 {
			return parseTemporalString(dst, c.Str)
		}
		return CellValue{}, false
	}
	return CellValue{}, false
}

func (c CellValue) asInt() int64 {
	if isUnsigned(c.Kind) {
		return int64(c.Uint)
	}
	return c.Int
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func parseDecimalString(s string) (CellValue, bool) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	parts := strings.SplitN(s, ".", 2)
	whole := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}
	scale := int32(len(frac))
	digits := whole + frac
	if digits == "" {
		return CellValue{}, false
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return CellValue{}, false
	}
	if neg {
		v = -v
	}
	return DecimalValue(v, scale), true
}

func parseTemporalString(kind DType, s string) (CellValue, bool) {
	s = strings.TrimSpace(s)
	layouts := map[DType][]string{
		DTypeDate:     {"2006-01-02"},
		DTypeTime:     {"15:04:05", "15:04"},
		DTypeDatetime: {"2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"},
	}
	for _, layout := range layouts[kind] {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeValue(kind, t), true
		}
	}
	return CellValue{}, false
}
