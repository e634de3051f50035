package gist

import (
	"github.com/pdtgct/music-fingerprint/internal/fingerprint"
	"github.com/pdtgct/music-fingerprint/internal/similarity"
)

// fpMatchAgainstUnion is match_fprint_merge(new, orig): does newRec look
// consistent with the set orig already summarises?
func fpMatchAgainstUnion(newRec, orig *fingerprint.Record) float64 {
	return similarity.MatchFprintMerge(newRec, orig)
}
