// Package llr implements the log-likelihood ratio (G²) test for contingency
// tables, the statistic used to score item cooccurrence.
package llr

import "math"

// term is the contribution of a single count k out of a total n. A zero count
// contributes exactly 0 rather than 0·log(0).
func term(k, n float64) float64 {
	if k <= 0 {
		return 0
	}
	return -k * math.Log(k/n)
}

// Entropy computes the denormalized entropy Σ -k·log(k/N) of counts, where N
// is the sum of counts. An all-zero (or empty) input has entropy 0.
func Entropy(counts []float64) float64 {
	var n float64
	for _, k := range counts {
		n += k
	}
	if n == 0 {
		return 0
	}
	var h float64
	for _, k := range counts {
		h += term(k, n)
	}
	return h
}

// Entropy2 is Entropy for exactly two counts without allocating.
func Entropy2(a, b float64) float64 {
	n := a + b
	if n == 0 {
		return 0
	}
	return term(a, n) + term(b, n)
}

// Entropy4 is Entropy for exactly four counts without allocating.
func Entropy4(a, b, c, d float64) float64 {
	n := a + b + c + d
	if n == 0 {
		return 0
	}
	return term(a, n) + term(b, n) + term(c, n) + term(d, n)
}
