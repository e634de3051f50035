package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdtgct/music-fingerprint/internal/fingerprint"
)

func invertedR(r [fingerprint.RLen]byte) [fingerprint.RLen]byte {
	var out [fingerprint.RLen]byte
	for i, b := range r {
		out[i] = ^b
	}
	return out
}

func invertedDom(dom [fingerprint.DomLen]byte) [fingerprint.DomLen]byte {
	var out [fingerprint.DomLen]byte
	for i, b := range dom {
		out[i] = ^b
	}
	return out
}

// TestMatchFooidS3IdenticalVectorsScoreOne covers S3: r_a = r_b, dom_a =
// dom_b must score match_fooid = 1.0.
func TestMatchFooidS3IdenticalVectorsScoreOne(t *testing.T) {
	var r [fingerprint.RLen]byte
	var dom [fingerprint.DomLen]byte
	for i := range r {
		r[i] = byte(i * 7)
	}
	for i := range dom {
		dom[i] = byte(i * 13)
	}

	score := MatchFooid(&r, &dom, &r, &dom)
	assert.Equal(t, 1.0, score)
}

// TestMatchFooidS4InvertedVectorsScoreZero covers S4: r_a = not r_b,
// dom_a = not dom_b must score match_fooid = 0.0.
func TestMatchFooidS4InvertedVectorsScoreZero(t *testing.T) {
	var r [fingerprint.RLen]byte
	var dom [fingerprint.DomLen]byte
	for i := range r {
		r[i] = byte(i * 7)
	}
	for i := range dom {
		dom[i] = byte(i * 13)
	}
	rInv := invertedR(r)
	domInv := invertedDom(dom)

	score := MatchFooid(&r, &dom, &rInv, &domInv)
	assert.Equal(t, 0.0, score)
}
