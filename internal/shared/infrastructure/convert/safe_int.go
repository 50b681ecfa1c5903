// Package convert narrows configuration integers into the widths drivers and
// libraries expect without wrapping around.
package convert

import "math"

// Int32Clamped narrows v to int32, saturating at the bounds.
func Int32Clamped(v int) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}

// Uint32Clamped narrows v to uint32. Negative values become 0.
func Uint32Clamped(v int) uint32 {
	if v < 0 {
		return 0
	}
	if uint64(v) > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}

// ShiftCount turns v into a shift count in [0, limit].
func ShiftCount(v int, limit uint) uint {
	if v < 0 {
		return 0
	}
	if uint(v) > limit {
		return limit
	}
	return uint(v)
}
