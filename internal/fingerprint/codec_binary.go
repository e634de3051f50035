package fingerprint

import (
	"encoding/binary"
	"fmt"
)

// Binary on-page form (§4.2/§4.5): a length-prefixed variable-size blob
// containing, in order, four little-endian uint32 header words, R, Dom,
// then cprint_len little-endian uint32 codewords.
//
// The four header words are laid out identically for FP and UFP ("same
// body; the header differs ... in the meaning of" its fields, §3):
//
//	word[0] = cprint_len
//	word[1] = songlen (FP)       | min_songlen (UFP)
//	word[2] = bit_rate (FP)      | max_songlen (UFP)
//	word[3] = num_errors (FP)    | unused, always 0 (UFP)
const headerWords = 4
const headerBytes = headerWords * 4

// MarshaledLen returns the total blob size Marshal would produce for rec,
// including the 4-byte length prefix — "header + 348 + 66 + 4*cprint_len
// plus the length prefix" per §4.2.
func MarshaledLen(rec *Record) int {
	return 4 + headerBytes + RLen + DomLen + 4*len(rec.Cprint)
}

// Marshal encodes rec into its on-page blob form.
func Marshal(rec *Record) ([]byte, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	total := MarshaledLen(rec)
	buf := make([]byte, total)

	binary.LittleEndian.PutUint32(buf[0:4], uint32(total-4))

	body := buf[4:]
	binary.LittleEndian.PutUint32(body[0:4], uint32(len(rec.Cprint)))
	if rec.Kind == KindUnion {
		binary.LittleEndian.PutUint32(body[4:8], uint32(rec.MinSonglen))
		binary.LittleEndian.PutUint32(body[8:12], uint32(rec.MaxSonglen))
		binary.LittleEndian.PutUint32(body[12:16], 0)
	} else {
		binary.LittleEndian.PutUint32(body[4:8], uint32(rec.Songlen))
		binary.LittleEndian.PutUint32(body[8:12], uint32(rec.BitRate))
		binary.LittleEndian.PutUint32(body[12:16], uint32(rec.NumErrors))
	}

	off := headerBytes
	copy(body[off:off+RLen], rec.R[:])
	off += RLen
	copy(body[off:off+DomLen], rec.Dom[:])
	off += DomLen

	for i, c := range rec.Cprint {
		binary.LittleEndian.PutUint32(body[off+i*4:off+i*4+4], c)
	}

	return buf, nil
}

// Unmarshal decodes a blob produced by Marshal. kind tells the decoder
// which pair of header fields to populate, since the tree level (leaf vs
// internal), not the blob itself, carries that information (§4.5).
//
// Every reader re-slices defensively: a cprint_len at or beyond
// CorruptCeiling is rejected as corrupt, never trusted (§4.5, §9).
func Unmarshal(blob []byte, kind Kind) (*Record, error) {
	if len(blob) < 4 {
		return nil, fmt.Errorf("fingerprint: blob shorter than length prefix")
	}
	declared := binary.LittleEndian.Uint32(blob[0:4])
	body := blob[4:]
	if uint32(len(body)) < declared {
		return nil, fmt.Errorf("fingerprint: blob truncated: declared %d bytes, have %d", declared, len(body))
	}
	body = body[:declared]

	if len(body) < headerBytes {
		return nil, fmt.Errorf("fingerprint: blob header truncated")
	}
	cprintLen := binary.LittleEndian.Uint32(body[0:4])
	if cprintLen >= CorruptCeiling {
		return nil, ErrCorrupt
	}
	f2 := binary.LittleEndian.Uint32(body[4:8])
	f3 := binary.LittleEndian.Uint32(body[8:12])
	f4 := binary.LittleEndian.Uint32(body[12:16])

	off := headerBytes
	need := off + RLen + DomLen + int(cprintLen)*4
	if len(body) < need {
		return nil, fmt.Errorf("fingerprint: blob truncated: need %d bytes, have %d", need, len(body))
	}

	rec := &Record{Kind: kind}
	copy(rec.R[:], body[off:off+RLen])
	off += RLen
	copy(rec.Dom[:], body[off:off+DomLen])
	off += DomLen

	rec.Cprint = make([]uint32, cprintLen)
	for i := range rec.Cprint {
		rec.Cprint[i] = binary.LittleEndian.Uint32(body[off+i*4 : off+i*4+4])
	}

	if kind == KindUnion {
		rec.MinSonglen = int(f2)
		rec.MaxSonglen = int(f3)
	} else {
		rec.Songlen = int(f2)
		rec.BitRate = int(f3)
		rec.NumErrors = int(f4)
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}
