// Package fingerprint implements the binary fingerprint record (FP) and
// its union-key counterpart (UFP): construction, invariants, the OR-merge
// builders, and the text/binary codecs. FP and UFP share one on-page
// layout (§3 of the spec) and are represented here by a single Record
// type distinguished by Kind.
package fingerprint

import (
	"errors"
	"fmt"
)

const (
	// RLen is the fixed width of the "rough" feature vector, in bytes.
	RLen = 348
	// DomLen is the fixed width of the "dominant" feature vector, in bytes.
	DomLen = 66
	// DomTailBits is the width of dom's separate trailing word.
	DomTailBits = 16
	// DomBodyBits is the bit width of dom's main (non-tail) region.
	DomBodyBits = DomLen*8 - DomTailBits

	// MaxKeyCPLen is the hard ceiling on a union key's cprint length, per
	// §3 (UFP invariant) and §4.5 (index key truncation).
	MaxKeyCPLen = 240

	// CorruptCeiling is the defensive ceiling applied when deserialising:
	// a record claiming a cprint_len at or above this is treated as a
	// corrupted page, never trusted (§4.5, §9).
	CorruptCeiling = 100_000
)

// Kind distinguishes an FP (single record) from a UFP (union/node key).
// Both share the same byte layout; Kind only changes which pair of header
// fields (BitRate/NumErrors vs MinSonglen/MaxSonglen) is meaningful.
type Kind int

const (
	KindRecord Kind = iota
	KindUnion
)

func (k Kind) String() string {
	if k == KindUnion {
		return "UFP"
	}
	return "FP"
}

// Record is the shared binary shape of an FP and a UFP.
//
// For Kind == KindRecord: Songlen, BitRate and NumErrors are meaningful;
// MinSonglen/MaxSonglen are unused (always 0).
//
// For Kind == KindUnion: MinSonglen and MaxSonglen are meaningful (the
// inclusive songlen envelope of every record the key covers); Songlen,
// BitRate and NumErrors are unused (always 0).
type Record struct {
	Kind Kind

	Songlen   int // FP only: integer seconds of source audio.
	BitRate   int // FP only: informational source bit-rate, kbps.
	NumErrors int // FP only: decode errors tolerated while building the record.

	MinSonglen int // UFP only: inclusive lower songlen envelope bound.
	MaxSonglen int // UFP only: inclusive upper songlen envelope bound.

	R    [RLen]byte
	Dom  [DomLen]byte
	Cprint []uint32 // time-ordered chroma codewords; invariant len(Cprint) >= 1.
}

var (
	// ErrEmptyCprint is returned when a caller tries to build a record
	// with zero chroma codewords. Callers representing "no chroma data"
	// must use the sentinel length-1 slice containing a single zero word.
	ErrEmptyCprint = errors.New("fingerprint: cprint_len must be >= 1 (use sentinel {0} for empty chroma)")
	// ErrCorrupt is returned when a record's cprint_len is at or beyond
	// CorruptCeiling; such records are rejected as corrupted pages.
	ErrCorrupt = errors.New("fingerprint: cprint_len exceeds corruption ceiling")
)

// CprintLen returns the header's cprint_len: the number of 32-bit
// codewords in Cprint.
func (r *Record) CprintLen() int {
	return len(r.Cprint)
}

// Validate checks the width and cprint_len invariants from §3/§8-1.
func (r *Record) Validate() error {
	if len(r.R) != RLen {
		return fmt.Errorf("fingerprint: r has width %d, want %d", len(r.R), RLen)
	}
	if len(r.Dom) != DomLen {
		return fmt.Errorf("fingerprint: dom has width %d, want %d", len(r.Dom), DomLen)
	}
	if len(r.Cprint) == 0 {
		return ErrEmptyCprint
	}
	if len(r.Cprint) >= CorruptCeiling {
		return ErrCorrupt
	}
	if r.Kind == KindUnion && r.MinSonglen > r.MaxSonglen {
		return fmt.Errorf("fingerprint: union min_songlen %d > max_songlen %d", r.MinSonglen, r.MaxSonglen)
	}
	return nil
}

// NewRecord builds a single FP. cprint must have length >= 1 (sentinel
// []uint32{0} for "no chroma data").
func NewRecord(songlen, bitRate, numErrors int, r [RLen]byte, dom [DomLen]byte, cprint []uint32) (*Record, error) {
	rec := &Record{
		Kind:      KindRecord,
		Songlen:   songlen,
		BitRate:   bitRate,
		NumErrors: numErrors,
		R:         r,
		Dom:       dom,
		Cprint:    cprint,
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}
