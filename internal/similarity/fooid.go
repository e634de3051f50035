package similarity

import (
	"github.com/pdtgct/music-fingerprint/internal/bitops"
	"github.com/pdtgct/music-fingerprint/internal/fingerprint"
)

// MatchFooid implements match_fooid (§4.3): a confidence in [0,1] from the
// weighted quaternary-popcount distance over r and the Hamming distance
// over dom.
func MatchFooid(rA *[fingerprint.RLen]byte, domA *[fingerprint.DomLen]byte, rB *[fingerprint.RLen]byte, domB *[fingerprint.DomLen]byte) float64 {
	diffR := rDiffWeighted(rA, rB)
	diffDom := domDiffHamming(domA, domB)
	return fooidConfidence(diffR, diffDom)
}

// rDiffWeighted computes diff_r: quaternary popcount of rA XOR rB over
// every 32-bit lane, combined as rdiff[1] + 4*rdiff[2] + 9*rdiff[3].
func rDiffWeighted(rA, rB *[fingerprint.RLen]byte) int {
	wordsA := fingerprint.RWords32(rA)
	wordsB := fingerprint.RWords32(rB)
	var rdiff [4]int
	for i := range wordsA {
		bitops.RDiffFooid(wordsA[i]^wordsB[i], &rdiff)
	}
	return rdiff[1] + 4*rdiff[2] + 9*rdiff[3]
}

// rWeightedWeight is rDiffWeighted's single-operand form: the weighted
// quaternary popcount of r itself, used where a diff vector has already
// been computed by the caller (e.g. match_fprint_merge's uncovered-bit
// vector).
func rWeightedWeight(r *[fingerprint.RLen]byte) int {
	words := fingerprint.RWords32(r)
	var rdiff [4]int
	for i := range words {
		bitops.RDiffFooid(words[i], &rdiff)
	}
	return rdiff[1] + 4*rdiff[2] + 9*rdiff[3]
}

// domDiffHamming computes diff_dom: 16 popcount32's over dom's first 512
// bits plus one popcount16 over its 16-bit tail.
func domDiffHamming(domA, domB *[fingerprint.DomLen]byte) int {
	wordsA := fingerprint.DomBodyWords32(domA)
	wordsB := fingerprint.DomBodyWords32(domB)
	diff := 0
	for i := range wordsA {
		diff += bitops.Popcount32(wordsA[i] ^ wordsB[i])
	}
	tailA := fingerprint.DomTail(domA)
	tailB := fingerprint.DomTail(domB)
	diff += bitops.Popcount16(tailA ^ tailB)
	return diff
}

// domHammingWeight is domDiffHamming's single-operand form, over a
// precomputed diff vector.
func domHammingWeight(dom *[fingerprint.DomLen]byte) int {
	words := fingerprint.DomBodyWords32(dom)
	diff := 0
	for _, w := range words {
		diff += bitops.Popcount32(w)
	}
	diff += bitops.Popcount16(fingerprint.DomTail(dom))
	return diff
}

// fooidConfidence maps a combined diff_r/diff_dom distance to the [0,1]
// confidence curve shared by match_fooid and match_fprint_merge.
func fooidConfidence(diffR, diffDom int) float64 {
	perc := float64(diffR+diffDom) / float64(MaxTotDiff)
	return clamp01(((1 - perc) - 0.5) * 2)
}
