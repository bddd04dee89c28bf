// Package distance provides the dot-product primitive used by nearest-neighbor search.
//
// # Usage
//
//	score := distance.Dot(a, b)
//
// Dot does not check dimensions. Callers that accept user input should
// compare lengths first; [tinyvec.DotProduct] does that and returns
// ErrDimensionMismatch.
package distance
