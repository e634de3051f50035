package similarity

import "github.com/pdtgct/music-fingerprint/internal/fingerprint"

// MatchCPFM implements match_cpfm (§4.3): the composite score that drives
// the index's EQ/NEQ/MATCH predicates. Symmetric in a and b (§8 invariant
// 3): swapping the arguments swaps nothing in the songlen gate, and
// MatchFooid/MatchChromaB are both symmetric in their operands.
func MatchCPFM(a, b *fingerprint.Record) float64 {
	sa, sb := songlen(a), songlen(b)
	minSonglen := sa
	if sb < minSonglen {
		minSonglen = sb
	}
	if float64(absInt(sa-sb)) > songlenRatioGate*float64(minSonglen) {
		return 0
	}

	fm := MatchFooid(&a.R, &a.Dom, &b.R, &b.Dom)
	cp := MatchChromaB(a.Cprint, b.Cprint)
	return cubicCombine(fm, cp)
}

// IsEq implements the FP_ISEQ predicate (strategy 3): val > 0.98.
func IsEq(a, b *fingerprint.Record) bool {
	return MatchCPFM(a, b) > EqCutoff
}

// IsNeq implements the FP_ISNEQ predicate (strategy 12): val <= 0.98.
func IsNeq(a, b *fingerprint.Record) bool {
	return MatchCPFM(a, b) <= EqCutoff
}

// IsMatch implements the FP_ISMATCH predicate (strategy 6): val > 0.6.
func IsMatch(a, b *fingerprint.Record) bool {
	return MatchCPFM(a, b) > MatchCutoff
}

func songlen(r *fingerprint.Record) int {
	if r.Kind == fingerprint.KindUnion {
		// Unions are only ever compared via MatchMerges/MatchFprintMerge;
		// songlen() on a union is only meaningful as a degenerate single-
		// point envelope (min == max, e.g. a union built from one record).
		return r.MinSonglen
	}
	return r.Songlen
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
