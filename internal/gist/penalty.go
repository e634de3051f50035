package gist

import "github.com/pdtgct/music-fingerprint/internal/fingerprint"

// missingPenalty is the very-large constant returned when either side is
// missing, steering the planner away from that branch (§4.5 step 1).
const missingPenalty = 1e9

// songlenWeight and matchWeight are the 2000/100 weighting from §4.5
// step 6 that deliberately makes songlen envelope growth the dominant
// cost.
const songlenWeight = 2000
const matchWeight = 100

// Penalty scores inserting newRec into the subtree currently summarised
// by orig, per §4.5. Lower is better; never negative (§8 invariant 7).
func Penalty(orig, newRec *fingerprint.Record) float64 {
	if orig == nil || newRec == nil {
		return missingPenalty
	}

	origSize := orig.MaxSonglen - orig.MinSonglen

	newMax := orig.MaxSonglen
	if songlenOf(newRec) > newMax {
		newMax = songlenOf(newRec)
	}
	newMin := orig.MinSonglen
	if songlenOf(newRec) < newMin {
		newMin = songlenOf(newRec)
	}
	newSize := newMax - newMin

	var songlenDiff float64
	if newSize != 0 {
		songlenDiff = float64(newSize-origSize) / float64(newSize) * songlenWeight
	}

	match := fpMatchAgainstUnion(newRec, orig)
	var matchCost float64
	if match > 0 {
		matchCost = (1 - match) * matchWeight
	} else {
		matchCost = matchWeight
	}

	return matchCost + songlenDiff
}

func songlenOf(rec *fingerprint.Record) int {
	if rec.Kind == fingerprint.KindUnion {
		return rec.MinSonglen
	}
	return rec.Songlen
}
