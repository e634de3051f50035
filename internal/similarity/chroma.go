package similarity

import (
	"math"

	"github.com/pdtgct/music-fingerprint/internal/bitops"
)

// MatchChroma implements match_chroma (§4.3): the reference bit-offset
// correlator used only for optional offline offset analysis, not by the
// index. Sides are swapped so the longer stream plays the role of cp1.
func MatchChroma(cp1, cp2 []uint32, start, end int) float64 {
	if len(cp1) < len(cp2) {
		cp1, cp2 = cp2, cp1
	}
	if end > len(cp1) {
		end = len(cp1)
	}
	if start >= end || start >= len(cp2) {
		return 0
	}

	counts := make([]int, len(cp1)+len(cp2))
	for i := start; i < len(cp1); i++ {
		jLo := i - chromaBMaxOffset
		if jLo < start {
			jLo = start
		}
		jHi := i + chromaBMaxOffset
		if jHi > len(cp2) {
			jHi = len(cp2)
		}
		for j := jLo; j < jHi; j++ {
			if bitops.Popcount32(cp1[i]^cp2[j]) <= chromaBBitTolerance {
				delta := i - j + len(cp2)
				counts[delta]++
			}
		}
	}

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	denom := len(cp2) - start
	if denom <= 0 {
		return 0
	}
	return clamp01(float64(maxCount) / float64(denom))
}

// MatchChromaB implements match_chromab (§4.3): the production,
// bit-position correlator. Over the first min(len(cp1),len(cp2))
// codewords, sums cmp_low_bit(cp1[i], cp2[i]) and divides by
// max(len(cp1),len(cp2)). Returns 0 if either side is empty.
func MatchChromaB(cp1, cp2 []uint32) float64 {
	if len(cp1) == 0 || len(cp2) == 0 {
		return 0
	}
	n := len(cp1)
	if len(cp2) < n {
		n = len(cp2)
	}
	sum := 0
	for i := 0; i < n; i++ {
		sum += bitops.CmpLowBit(cp1[i], cp2[i])
	}
	denom := len(cp1)
	if len(cp2) > denom {
		denom = len(cp2)
	}
	return clamp01(float64(sum) / float64(denom))
}

// MatchChromaT implements match_chromat (§4.3), the Tanimoto kernel.
// tdiff sums popcount(cp1[i] & cp2[i]); tcomm sums popcount(cp1[i] |
// cp2[i]). Degenerate cases (tcomm == 0, tdiff == 0) map to defined
// outputs rather than propagating a 0/0 NaN.
func MatchChromaT(cp1, cp2 []uint32) float64 {
	n := len(cp1)
	if len(cp2) < n {
		n = len(cp2)
	}
	var tdiff, tcomm int
	for i := 0; i < n; i++ {
		tdiff += bitops.Popcount32(cp1[i] & cp2[i])
		tcomm += bitops.Popcount32(cp1[i] | cp2[i])
	}
	if tcomm == 0 {
		return 0
	}
	if tdiff == 0 {
		return 1
	}
	return clamp01(float64(tdiff) / float64(tcomm))
}

// MatchChromaC implements match_chromac (§4.3): the Pearson linear
// correlation coefficient over paired codewords read as signed 32-bit
// integers, returned as its absolute value. A zero denominator (constant
// input) maps to 0, never NaN.
func MatchChromaC(cp1, cp2 []uint32) float64 {
	n := len(cp1)
	if len(cp2) < n {
		n = len(cp2)
	}
	if n == 0 {
		return 0
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += float64(int32(cp1[i]))
		sumY += float64(int32(cp2[i]))
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := float64(int32(cp1[i])) - meanX
		dy := float64(int32(cp2[i])) - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	denom := varX * varY
	if denom <= 0 {
		return 0
	}
	r := cov / math.Sqrt(denom)
	if r < 0 {
		r = -r
	}
	return clamp01(r)
}
