// Package vecmath collects the small vector-math primitives shared by the
// organ prehension layer, the V0 concrescence loop and the family learner:
// normalization, cosine similarity and dispersion statistics.
package vecmath

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// L2Normalize scales v in place to unit L2 norm. A zero vector is left
// untouched (normalizing it would divide by zero).
func L2Normalize(v []float64) {
	norm := floats.Norm(v, 2)
	if norm == 0 {
		return
	}
	floats.Scale(1/norm, v)
}

// IsUnit reports whether v has L2 norm 1 within tol.
func IsUnit(v []float64, tol float64) bool {
	if len(v) == 0 {
		return true
	}
	return math.Abs(floats.Norm(v, 2)-1.0) <= tol
}

// CosineSimilarity returns the cosine similarity of a and b. Returns 0 if
// either vector has zero norm.
func CosineSimilarity(a, b []float64) float64 {
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

// EuclideanDistance returns the L2 distance between a and b.
func EuclideanDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// StdDev returns the population standard deviation of xs, matching the
// "DAE 3.0 std formula" used for field coherence K = 1 - std(coherences).
func StdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	if len(xs) == 1 {
		return 0
	}
	mean := stat.Mean(xs, nil)
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// Clip clamps x to [lo, hi].
func Clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Softmax returns the softmax distribution over xs.
func Softmax(xs []float64) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}
	max := xs[0]
	for _, x := range xs {
		if x > max {
			max = x
		}
	}
	sum := 0.0
	for i, x := range xs {
		out[i] = math.Exp(x - max)
		sum += out[i]
	}
	if sum == 0 {
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
