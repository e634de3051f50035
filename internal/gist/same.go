package gist

import (
	"bytes"

	"github.com/pdtgct/music-fingerprint/internal/fingerprint"
)

// Same reports whether two node keys are "the same": their cprint_len
// agree and their full binary images compare equal. The host may then
// skip rewriting the page.
//
// §9's Open Question on this operator is resolved here per the spec's
// own "preferably, fix it" guidance: the historical C implementation
// returned memcmp != 0 (true when the bytes *differ*), inverted from
// what its name promises. This is a deliberate, documented deviation
// from that historical behaviour — Same returns true on byte equality.
func Same(a, b *fingerprint.Record) (bool, error) {
	if a.CprintLen() != b.CprintLen() {
		return false, nil
	}
	blobA, err := fingerprint.Marshal(a)
	if err != nil {
		return false, err
	}
	blobB, err := fingerprint.Marshal(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(blobA, blobB), nil
}
