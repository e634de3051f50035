// Package gist implements the generalised-search-tree operators of
// §4.5: compress, decompress, union, penalty, picksplit, consistent, and
// same. These are the routines a host index (Postgres GiST, or the
// internal/rtree package in this module) calls to build and search an
// R-tree whose keys are fingerprint union records.
package gist

import (
	"github.com/pdtgct/music-fingerprint/internal/fingerprint"
)

// Slicing windows for Compress, per §4.5's deterministic rule.
const (
	windowHighStart = 704
	windowHighEnd   = 944
	windowLowStart  = 464
	windowLowEnd    = 704
)

// Compress is called only for leaf entries being installed: it reads
// the full record and slices its cprint down to at most
// fingerprint.MaxKeyCPLen codewords, per the deterministic windowing
// rule in §4.5. The slice choice depends only on cprint_len, so the same
// record always compresses to the same window (§8 invariant 9).
func Compress(rec *fingerprint.Record) *fingerprint.Record {
	out := *rec
	out.Cprint = sliceCprint(rec.Cprint)
	return &out
}

// sliceCprint applies the §4.5 windowing rule.
func sliceCprint(cprint []uint32) []uint32 {
	n := len(cprint)
	switch {
	case n >= windowHighEnd:
		return append([]uint32(nil), cprint[windowHighStart:windowHighEnd]...)
	case n >= windowLowEnd:
		return append([]uint32(nil), cprint[windowLowStart:windowLowEnd]...)
	default:
		prefixLen := n
		if prefixLen > fingerprint.MaxKeyCPLen {
			prefixLen = fingerprint.MaxKeyCPLen
		}
		return append([]uint32(nil), cprint[:prefixLen]...)
	}
}

// Decompress returns entry unchanged; the backing buffer remains owned
// by the caller. Every reader re-slices defensively: a record whose
// cprint_len reaches fingerprint.CorruptCeiling is rejected as a
// corrupted page, per §4.5/§9.
func Decompress(entry *fingerprint.Record) (*fingerprint.Record, error) {
	if entry.CprintLen() >= fingerprint.CorruptCeiling {
		return nil, fingerprint.ErrCorrupt
	}
	return entry, nil
}
