// Aria - Personal Music Library Browser and Recommendation Engine
// Copyright 2026 Luc V. (lucvr)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lucvr/aria

package library

import "math"

// Vector is an embedding with its Euclidean norm precomputed at index
// build time. Magnitude == sqrt(sum(c*c)) always holds; it is recomputed
// only when the source embedding tag changes (i.e. on rebuild).
type Vector struct {
	Components []float64
	Magnitude  float64
}

// NewVector computes the magnitude for the given components.
func NewVector(components []float64) Vector {
	var sum float64
	for _, c := range components {
		sum += c * c
	}
	return Vector{Components: components, Magnitude: math.Sqrt(sum)}
}

// Dot returns the dot product of two vectors, truncating to the shorter
// one if the dimensionalities differ. Well-formed embeddings share a
// fixed dimensionality.
func Dot(a, b Vector) float64 {
	n := len(a.Components)
	if len(b.Components) < n {
		n = len(b.Components)
	}
	var d float64
	for i := 0; i < n; i++ {
		d += a.Components[i] * b.Components[i]
	}
	return d
}
