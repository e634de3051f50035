package gist

import (
	"github.com/pdtgct/music-fingerprint/internal/fingerprint"
	"github.com/pdtgct/music-fingerprint/internal/similarity"
)

// Strategy is the search predicate consistent() evaluates. Numbers are
// fixed by the host index's opclass (§6): 3 = EQ, 6 = MATCH, 12 = NEQ.
type Strategy int

const (
	StrategyEQ    Strategy = 3
	StrategyMatch Strategy = 6
	StrategyNeq   Strategy = 12
)

// leafThresholds mirror match_cpfm's public predicate cut-offs.
const (
	leafEqCutoff    = similarity.EqCutoff
	leafMatchCutoff = similarity.MatchCutoff
)

// Consistent implements the consistent() search predicate of §4.5.
// entry is the tree entry being visited (a leaf FP or an internal UFP);
// q is the query record; recheck is set true whenever the caller should
// still verify the result exactly (e.g. descend further, or re-check the
// leaf at the table level).
func Consistent(entry *fingerprint.Record, q *fingerprint.Record, strategy Strategy) (accept bool, recheck bool) {
	if entry.Kind != fingerprint.KindUnion {
		return consistentLeaf(entry, q, strategy)
	}
	return consistentNode(entry, q, strategy)
}

func consistentLeaf(leaf, q *fingerprint.Record, strategy Strategy) (bool, bool) {
	v := similarity.MatchCPFM(q, leaf)
	var accept bool
	switch strategy {
	case StrategyEQ:
		accept = v > leafEqCutoff
	case StrategyNeq:
		accept = v <= leafEqCutoff
	case StrategyMatch:
		accept = v > leafMatchCutoff
	}
	return accept, false
}

func consistentNode(u, q *fingerprint.Record, strategy Strategy) (bool, bool) {
	recheck := true
	qSonglen := songlenOf(q)

	if qSonglen >= u.MinSonglen && qSonglen <= u.MaxSonglen {
		t := 0.08
		switch {
		case qSonglen > 150:
			t = 0.1
		case qSonglen > 40 && qSonglen < 46:
			t = 0.03
		}
		accept := similarity.MatchFprintMerge(q, u) > t
		if !accept {
			recheck = false
		}
		return accept, recheck
	}

	if qSonglen >= 155 {
		// §9 Open Question: this cut-off is preserved exactly as the
		// source has it; a long query simply never descends an
		// envelope it falls entirely outside of.
		return false, false
	}

	var songlenDiff float64
	if float64(u.MinSonglen-qSonglen) > float64(qSonglen-u.MaxSonglen) {
		songlenDiff = float64(u.MinSonglen-qSonglen) / float64(u.MinSonglen)
	} else {
		songlenDiff = float64(qSonglen-u.MaxSonglen) / float64(qSonglen)
	}

	t := 0.08
	if qSonglen > 150 {
		t = 0.15
	}

	boundsOK := (qSonglen < 30 && songlenDiff < 0.8) ||
		(qSonglen < 61 && songlenDiff < 0.6) ||
		(qSonglen < 110 && songlenDiff < 0.07) ||
		(qSonglen < 155 && songlenDiff < 0.05)

	accept := boundsOK && similarity.MatchFprintMerge(q, u) > t
	if !accept {
		recheck = false
	}
	return accept, recheck
}
