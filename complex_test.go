package mandel

import (
	"math"
	"testing"
)

func TestComplexSquare(t *testing.T) {
	tests := []struct {
		in, want Complex
	}{
		{Complex{0, 0}, Complex{0, 0}},
		{Complex{1, 0}, Complex{1, 0}},
		{Complex{0, 1}, Complex{-1, 0}},
		{Complex{1, 1}, Complex{0, 2}},
		{Complex{-2, -2}, Complex{0, 8}},
		{Complex{3, -1}, Complex{8, -6}},
	}
	for _, tt := range tests {
		if got := tt.in.Square(); got != tt.want {
			t.Errorf("%v.Square() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComplexMagnitude(t *testing.T) {
	tests := []struct {
		in   Complex
		want float64
	}{
		{Complex{0, 0}, 0},
		{Complex{3, 4}, 5},
		{Complex{-3, -4}, 5},
		{Complex{-2, -2}, math.Sqrt(8)},
	}
	for _, tt := range tests {
		if got := tt.in.Magnitude(); got != tt.want {
			t.Errorf("%v.Magnitude() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComplexAddAndIterate(t *testing.T) {
	a := Complex{1.5, -2}
	b := Complex{-0.5, 3}
	if got, want := a.Add(b), (Complex{1, 1}); got != want {
		t.Errorf("Add() = %v, want %v", got, want)
	}

	// z² + c with z = 1+i, c = -2-2i: (0+2i) + (-2-2i) = -2+0i
	if got, want := (Complex{1, 1}).Iterate(Complex{-2, -2}), (Complex{-2, 0}); got != want {
		t.Errorf("Iterate() = %v, want %v", got, want)
	}
}

func TestComplexImmutable(t *testing.T) {
	a := Complex{1, 2}
	_ = a.Square()
	_ = a.Add(Complex{5, 5})
	_ = a.Iterate(Complex{1, 1})
	if a != (Complex{1, 2}) {
		t.Errorf("receiver modified: %v", a)
	}
}

func TestComplexString(t *testing.T) {
	if got, want := (Complex{0.5, -1}).String(), "(0.5 - 1i)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := (Complex{-2, 0.25}).String(), "(-2 + 0.25i)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
