package distance

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
//
// The sum is accumulated sequentially in float32, so results match a plain
// left-to-right loop bit for bit.
func Dot(a, b []float32) float32 {
	var ret float32
	b = b[:len(a)]
	for i := range a {
		ret += a[i] * b[i]
	}
	return ret
}
