// Package signal provides conversions of PCM samples between bit depths
// and formats.
package signal

import "math"

// BitDepth of integer samples.
type BitDepth int

const (
	// BitDepth8 is 8 bit depth. Samples are unsigned.
	BitDepth8 = BitDepth(8)
	// BitDepth16 is 16 bit depth.
	BitDepth16 = BitDepth(16)
	// BitDepth24 is 24 bit depth.
	BitDepth24 = BitDepth(24)
	// BitDepth32 is 32 bit depth.
	BitDepth32 = BitDepth(32)
)

// Valid reports whether bit depth is supported.
func (b BitDepth) Valid() bool {
	switch b {
	case BitDepth8, BitDepth16, BitDepth24, BitDepth32:
		return true
	}
	return false
}

// devider is used when int to float conversion is done.
func (b BitDepth) devider() float64 {
	return float64(int64(1) << (b - 1))
}

// Float converts integer sample into [-1, 1].
func (b BitDepth) Float(v int) float64 {
	if b == BitDepth8 {
		v -= 128
	}
	return float64(v) / b.devider()
}

// Clamp limits v to [-1, 1].
func Clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

// Int16 converts float sample into 16 bits. Values out of [-1, 1] are
// clipped.
func Int16(v float64) int16 {
	return int16(Clamp(v) * math.MaxInt16)
}

// Float32 converts 16-bit sample into float.
func Float32(v int16) float32 {
	return float32(BitDepth16.Float(int(v)))
}

// FloatBits returns float sample stored as 32-bit integer.
func FloatBits(v float32) int {
	return int(int32(math.Float32bits(v)))
}

// FromFloatBits returns float sample stored as 32-bit integer.
func FromFloatBits(v int) float32 {
	return math.Float32frombits(uint32(int32(v)))
}
