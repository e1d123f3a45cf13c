// Package numeric holds the scalar type and the coercions the evaluator
// applies around bitwise and shift operators.
package numeric

import "math"

// Scalar is the value type every expression evaluates to. Single precision
// matches what an embedding C host would carry as its numeric type.
type Scalar = float32

// MaxInt is the integer value +Inf truncates to; -MaxInt is its mirror for
// -Inf, keeping the conversion symmetric around zero.
const MaxInt = math.MaxInt32

// ToInt truncates a Scalar toward zero into a signed machine integer.
//
// NaN becomes 0, +Inf becomes MaxInt, -Inf becomes -MaxInt. Every other
// value truncates toward zero the way a C (int) cast would.
func ToInt(x Scalar) int32 {
	switch {
	case math.IsNaN(float64(x)):
		return 0
	case math.IsInf(float64(x), 1):
		return MaxInt
	case math.IsInf(float64(x), -1):
		return -MaxInt
	default:
		return int32(x)
	}
}

// FromInt re-widens a truncated integer back into a Scalar.
func FromInt(n int32) Scalar {
	return Scalar(n)
}
