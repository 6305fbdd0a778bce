package domain

import (
	"math"
	"testing"
)

func TestResizeVector_Truncates(t *testing.T) {
	v := []float32{1, 2, 3, 4, 5}
	out := ResizeVector(v, 3)

	if len(out) != 3 {
		t.Fatalf("expected length 3, got %d", len(out))
	}
	for i, want := range []float32{1, 2, 3} {
		if out[i] != want {
			t.Errorf("component %d: expected %v, got %v", i, want, out[i])
		}
	}
}

func TestResizeVector_Pads(t *testing.T) {
	v := []float32{1, 2}
	out := ResizeVector(v, 5)

	if len(out) != 5 {
		t.Fatalf("expected length 5, got %d", len(out))
	}
	if out[0] != 1 || out[1] != 2 {
		t.Errorf("leading components changed: %v", out)
	}
	for i := 2; i < 5; i++ {
		if out[i] != 0 {
			t.Errorf("component %d: expected zero padding, got %v", i, out[i])
		}
	}
}

func TestResizeVector_ExactLength(t *testing.T) {
	v := []float32{1, 2, 3}
	out := ResizeVector(v, 3)

	if len(out) != 3 {
		t.Fatalf("expected length 3, got %d", len(out))
	}
	// Must be a copy, not an alias
	out[0] = 99
	if v[0] != 1 {
		t.Error("ResizeVector aliased the input slice")
	}
}

func TestResizeVector_InvalidDim(t *testing.T) {
	if out := ResizeVector([]float32{1}, 0); out != nil {
		t.Errorf("expected nil for dim 0, got %v", out)
	}
}

func TestNormalizeVector(t *testing.T) {
	v := []float32{3, 4}
	out := NormalizeVector(v)

	norm := L2Norm(out)
	if math.Abs(norm-1.0) > 1e-6 {
		t.Errorf("expected unit norm, got %v", norm)
	}
	if math.Abs(float64(out[0])-0.6) > 1e-6 || math.Abs(float64(out[1])-0.8) > 1e-6 {
		t.Errorf("unexpected direction: %v", out)
	}
}

func TestNormalizeVector_Zero(t *testing.T) {
	v := []float32{0, 0, 0}
	out := NormalizeVector(v)

	for i, x := range out {
		if x != 0 {
			t.Errorf("component %d: expected 0, got %v", i, x)
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{1, 0}
	c := []float32{0, 1}
	d := []float32{-1, 0}

	if got := CosineSimilarity(a, b); math.Abs(got-1) > 1e-9 {
		t.Errorf("identical vectors: expected 1, got %v", got)
	}
	if got := CosineSimilarity(a, c); math.Abs(got) > 1e-9 {
		t.Errorf("orthogonal vectors: expected 0, got %v", got)
	}
	if got := CosineSimilarity(a, d); math.Abs(got+1) > 1e-9 {
		t.Errorf("opposite vectors: expected -1, got %v", got)
	}
	if got := CosineSimilarity(a, []float32{1, 2, 3}); got != 0 {
		t.Errorf("length mismatch: expected 0, got %v", got)
	}
	if got := CosineSimilarity(a, []float32{0, 0}); got != 0 {
		t.Errorf("zero vector: expected 0, got %v", got)
	}
}
