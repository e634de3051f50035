package fingerprint

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gofakeitRecord builds a record whose informational scalar fields
// (songlen, bit_rate, num_errors) are gofakeit-seeded, while r/dom/cprint
// stay hand-built from a deterministic PRNG — gofakeit is for plausible
// scalars, never for the bit-pattern-sensitive payload a kernel test
// needs a known expected output for.
func gofakeitRecord(t *testing.T, seed uint64, cpLen int) *Record {
	t.Helper()
	f := gofakeit.New(seed)
	songlen := f.Number(1, 7200)
	bitRate := f.RandomInt([]int{96, 128, 160, 192, 256, 320})
	numErrors := f.Number(0, 10)

	rnd := rand.New(rand.NewSource(int64(seed)))
	var r [RLen]byte
	var dom [DomLen]byte
	rnd.Read(r[:])
	rnd.Read(dom[:])
	cprint := make([]uint32, cpLen)
	for i := range cprint {
		cprint[i] = rnd.Uint32()
	}

	rec, err := NewRecord(songlen, bitRate, numErrors, r, dom, cprint)
	require.NoError(t, err)
	return rec
}

func TestBinaryCodecRoundTripGofakeitScalars(t *testing.T) {
	for _, cpLen := range []int{1, 5, 50, 500} {
		rec := gofakeitRecord(t, uint64(cpLen*97+1), cpLen)

		blob, err := Marshal(rec)
		require.NoError(t, err)
		assert.Equal(t, MarshaledLen(rec), len(blob))

		got, err := Unmarshal(blob, KindRecord)
		require.NoError(t, err)
		assert.True(t, recordsEqual(rec, got))
	}
}

func TestBinaryCodecRejectsCorruptCprintLen(t *testing.T) {
	rec := gofakeitRecord(t, 4242, 3)
	blob, err := Marshal(rec)
	require.NoError(t, err)

	// Corrupt the cprint_len header field (blob[4:8], the first word of
	// body) to sit at the corruption ceiling, simulating a torn or
	// bit-flipped page.
	corrupted := make([]byte, len(blob))
	copy(corrupted, blob)
	binary.LittleEndian.PutUint32(corrupted[4:8], uint32(CorruptCeiling))

	_, err = Unmarshal(corrupted, KindRecord)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestBinaryCodecRejectsTruncatedBlob(t *testing.T) {
	rec := gofakeitRecord(t, 99, 10)
	blob, err := Marshal(rec)
	require.NoError(t, err)

	_, err = Unmarshal(blob[:len(blob)-8], KindRecord)
	assert.Error(t, err)
}

func TestBinaryCodecUnionRoundTripGofakeitScalars(t *testing.T) {
	a := gofakeitRecord(t, 1, 20)
	b := gofakeitRecord(t, 2, 20)
	u := MergeTwo(a, b)

	blob, err := Marshal(u)
	require.NoError(t, err)
	got, err := Unmarshal(blob, KindUnion)
	require.NoError(t, err)
	assert.True(t, recordsEqual(u, got))
}
