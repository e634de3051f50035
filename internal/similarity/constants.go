// Package similarity implements the fingerprint similarity kernels of
// §4.3/§4.4: match_fooid, the match_chroma family, the composite
// match_cpfm, and the union-aware match_fprint_merge/match_merges/
// try_match_merges probes the R-tree's picksplit uses.
//
// The empirical constants below (the max-diff denominators, the cubic
// combiner's coefficients, the equality/match cut-offs) are calibration
// outputs, not derivations; they are preserved exactly, per §9.
package similarity

import "github.com/pdtgct/music-fingerprint/internal/fingerprint"

const (
	// MaxRDiff is match_fooid's fixed denominator for the weighted
	// distance over r: 9 (the bucket-3 weight) * 348 bytes * 8 bits. The
	// largest reachable diff_r is half of it (1392 lanes * 9).
	MaxRDiff = 9 * fingerprint.RLen * 8
	// MaxDomDiff is the maximum possible Hamming distance over dom.
	MaxDomDiff = fingerprint.DomLen * 8
	// MaxTotDiff is the combined denominator used by match_fooid.
	MaxTotDiff = MaxRDiff + MaxDomDiff

	// cubic combiner coefficients (match_cpfm / match_fprint_merge /
	// match_merges all share this combiner).
	combinerIntercept = 0.012985
	combinerFooidCoef = 0.263439
	combinerChromaCoef = -0.683234
	combinerChroma3Coef = 1.592623
	combinerOffset = 0.06348
	combinerDenom  = 1.2489

	// EqCutoff and MatchCutoff are the public predicate thresholds over
	// match_cpfm's [0,1] score. EqCutoff serves both EQ (strategy 3,
	// val > cutoff) and NEQ (strategy 12, val <= cutoff); MatchCutoff
	// serves MATCH (strategy 6), per §6.
	EqCutoff    = 0.98
	MatchCutoff = 0.6

	// songlenRatioGate is the fractional songlen-mismatch gate in
	// match_cpfm's step 1.
	songlenRatioGate = 0.1

	// chromaBMaxOffset bounds match_chroma's admissible alignment window.
	chromaBMaxOffset = 120
	// chromaBBitTolerance is the max admissible popcount for a chroma
	// match_chroma histogram increment.
	chromaBBitTolerance = 2
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// cubicCombine applies the shared empirical combiner used by match_cpfm,
// match_fprint_merge and match_merges to a (fooid, chroma) pair.
func cubicCombine(fooid, chroma float64) float64 {
	chroma3 := chroma * chroma * chroma
	v := combinerIntercept + combinerFooidCoef*fooid + combinerChromaCoef*chroma + combinerChroma3Coef*chroma3
	return clamp01((v + combinerOffset) / combinerDenom)
}
