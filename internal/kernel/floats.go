// Package kernel provides the scalar float32 loops used by vector arithmetic
// and the reference solver.
//
// All functions assume equal slice lengths. Callers validate shapes first.
package kernel

// Dot returns the inner product of a and b accumulated in float64.
func Dot(a, b []float32) float64 {
	var ret float64
	for i := range a {
		ret += float64(a[i]) * float64(b[i])
	}
	return ret
}

// SquaredNorm returns sum(a[i]^2) accumulated in float64.
func SquaredNorm(a []float32) float64 {
	return Dot(a, a)
}

// Axpy computes y += alpha*x in place.
func Axpy(alpha float32, x, y []float32) {
	for i := range x {
		y[i] += alpha * x[i]
	}
}

// ScaleInPlace multiplies all elements of a by scalar.
func ScaleInPlace(a []float32, scalar float32) {
	for i := range a {
		a[i] *= scalar
	}
}

// Add writes a+b into dst. dst may alias a or b.
func Add(dst, a, b []float32) {
	for i := range dst {
		dst[i] = a[i] + b[i]
	}
}

// Sub writes a-b into dst. dst may alias a or b.
func Sub(dst, a, b []float32) {
	for i := range dst {
		dst[i] = a[i] - b[i]
	}
}
