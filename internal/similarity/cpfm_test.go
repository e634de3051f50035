package similarity

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdtgct/music-fingerprint/internal/fingerprint"
)

func makeLeaf(t *testing.T, seed int64, songlen, cpLen int) *fingerprint.Record {
	t.Helper()
	rnd := rand.New(rand.NewSource(seed))
	var r [fingerprint.RLen]byte
	var dom [fingerprint.DomLen]byte
	rnd.Read(r[:])
	rnd.Read(dom[:])
	cprint := make([]uint32, cpLen)
	for i := range cprint {
		cprint[i] = rnd.Uint32()
	}
	rec, err := fingerprint.NewRecord(songlen, 192, 0, r, dom, cprint)
	require.NoError(t, err)
	return rec
}

// TestMatchCPFMS1SelfMatchScoresAtLeastEqCutoff covers S1: a record
// compared with an identical copy of itself scores >= 0.98 on
// match_cpfm, and the EQ predicate accepts it.
func TestMatchCPFMS1SelfMatchScoresAtLeastEqCutoff(t *testing.T) {
	a := makeLeaf(t, 1, 200, 50)
	b := makeLeaf(t, 1, 200, 50) // same seed => byte-identical record

	score := MatchCPFM(a, b)
	assert.GreaterOrEqual(t, score, EqCutoff)
	assert.True(t, IsEq(a, b))
}

// TestMatchCPFMS2SonglenMismatchForcesZero covers S2: songlen 180 vs 220
// (a ratio gap exceeding the 0.1 gate of the smaller side) scores exactly
// 0 on match_cpfm regardless of r/dom/cprint.
func TestMatchCPFMS2SonglenMismatchForcesZero(t *testing.T) {
	a := makeLeaf(t, 2, 180, 50)
	b := makeLeaf(t, 2, 220, 50) // identical r/dom/cprint, only songlen differs

	score := MatchCPFM(a, b)
	assert.Equal(t, 0.0, score)
	assert.False(t, IsEq(a, b))
}
