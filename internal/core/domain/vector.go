package domain

import "math"

// ResizeVector forces v to exactly dim components. Longer vectors are
// truncated, shorter ones right-padded with zeros. Every embedding stored or
// compared in the archive goes through this, whichever provider produced it:
// vectors from different native spaces are only comparable after resizing.
func ResizeVector(v []float32, dim int) []float32 {
	if dim <= 0 {
		return nil
	}
	out := make([]float32, dim)
	copy(out, v)
	return out
}

// NormalizeVector scales v to unit L2 norm. A zero vector is returned
// unchanged rather than dividing by zero.
func NormalizeVector(v []float32) []float32 {
	norm := L2Norm(v)
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// L2Norm returns the Euclidean magnitude of v.
func L2Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// CosineSimilarity returns the cosine of the angle between a and b,
// or 0 when either vector is zero or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	na := L2Norm(a)
	nb := L2Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (na * nb)
}
