package similarity

import "github.com/pdtgct/music-fingerprint/internal/fingerprint"

// MatchFprintMerge implements match_fprint_merge (§4.4): "does record a
// look consistent with the set summarised by union key u?"
//
// The fooid half is computed over the bits of a NOT covered by u
// (a.R XOR (a.R & u.R), i.e. a.R &^ u.R) fed through the same confidence
// curve match_fooid uses for a plain XOR distance; a fully-covered record
// therefore scores a perfect (zero-diff) fooid. The chroma half counts,
// per codeword position, whether a's codeword is either fully covered by
// u's or shares its lowest set bit, normalised by len(a.Cprint).
func MatchFprintMerge(a, u *fingerprint.Record) float64 {
	fooid := fprintMergeFooid(a, u)
	chroma := fprintMergeChroma(a, u)
	return cubicCombine(fooid, chroma)
}

func fprintMergeFooid(a, u *fingerprint.Record) float64 {
	var diffR [fingerprint.RLen]byte
	for i := range diffR {
		diffR[i] = a.R[i] ^ (a.R[i] & u.R[i])
	}
	var diffDom [fingerprint.DomLen]byte
	for i := range diffDom {
		diffDom[i] = a.Dom[i] ^ (a.Dom[i] & u.Dom[i])
	}
	// diffR/diffDom already represent the uncovered-bit vector, so they
	// are weighted directly, the same way match_fooid weighs a plain XOR.
	diffRScore := rWeightedWeight(&diffR)
	diffDomScore := domHammingWeight(&diffDom)
	return fooidConfidence(diffRScore, diffDomScore)
}

func fprintMergeChroma(a, u *fingerprint.Record) float64 {
	if len(a.Cprint) == 0 {
		return 0
	}
	n := len(a.Cprint)
	if len(u.Cprint) < n {
		n = len(u.Cprint)
	}
	covered := 0
	for k := 0; k < n; k++ {
		av, uv := a.Cprint[k], u.Cprint[k]
		fullyCovered := av&uv == av
		alignedLowBit := (av&(-av)) == (uv&(-uv))
		if fullyCovered || alignedLowBit {
			covered++
		}
	}
	return clamp01(float64(covered) / float64(len(a.Cprint)))
}

// MatchMerges implements match_merges (§4.4): the analogous kernel
// between two union keys, symmetric by construction (it reduces directly
// to MatchFooid/MatchChromaB, both of which are symmetric). Short-
// circuits to 0 when the songlen envelopes are disjoint.
func MatchMerges(u1, u2 *fingerprint.Record) float64 {
	if u1.MaxSonglen < u2.MinSonglen || u2.MaxSonglen < u1.MinSonglen {
		return 0
	}
	fooid := MatchFooid(&u1.R, &u1.Dom, &u2.R, &u2.Dom)
	chroma := MatchChromaB(u1.Cprint, u2.Cprint)
	return cubicCombine(fooid, chroma)
}

// TryMatchMerges implements try_match_merges (§4.4): the score
// match_merges(u1, u2) would return if record a were first OR-merged
// into u2, without mutating u1, u2 or a. Used by picksplit as a
// would-adding-hurt probe.
func TryMatchMerges(u1, u2 *fingerprint.Record, a *fingerprint.Record) float64 {
	hypothetical := *u2
	fingerprint.MergeOne(&hypothetical, a)
	return MatchMerges(u1, &hypothetical)
}
