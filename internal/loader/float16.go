package loader

import "math"

// Float16ToFloat32 converts an IEEE 754 half-precision value to float32.
func Float16ToFloat32(h uint16) float32 {
	sign := (h >> 15) & 0x1
	exp := (h >> 10) & 0x1F
	mant := h & 0x3FF

	var result uint32

	switch exp {
	case 0:
		if mant == 0 {
			result = uint32(sign) << 31
		} else {
			// Subnormal: normalize.
			e := int32(1)
			for (mant & 0x400) == 0 {
				mant <<= 1
				e--
			}
			mant &= 0x3FF
			//nolint:gosec // G115: exponent stays within float32 range after rebias.
			result = (uint32(sign) << 31) | (uint32(e+127-15) << 23) | (uint32(mant) << 13)
		}
	case 0x1F:
		// Inf or NaN.
		result = (uint32(sign) << 31) | 0x7F800000 | (uint32(mant) << 13)
	default:
		result = (uint32(sign) << 31) | (uint32(exp+127-15) << 23) | (uint32(mant) << 13)
	}

	return math.Float32frombits(result)
}

// BFloat16ToFloat32 converts a bfloat16 value to float32.
// bfloat16 is the upper half of a float32.
func BFloat16ToFloat32(b uint16) float32 {
	return math.Float32frombits(uint32(b) << 16)
}
