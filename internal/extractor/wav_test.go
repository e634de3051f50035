package extractor

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSineWav writes a synthetic mono 16-bit PCM WAV containing a pure
// sine tone, returning its path.
func writeSineWav(t *testing.T, dir, name string, seconds int, sampleRate, freqHz int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	n := seconds * sampleRate
	data := make([]int, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		data[i] = int(math.Sin(2*math.Pi*float64(freqHz)*t) * (math.MaxInt16 / 2))
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		Data:           data,
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	return path
}

func TestWavExtractorProducesValidRecord(t *testing.T) {
	dir := t.TempDir()
	path := writeSineWav(t, dir, "tone.wav", 3, 44100, 440)

	ex := NewWavExtractor()
	rec, err := ex.Extract(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.NoError(t, rec.Validate())
	assert.Equal(t, 3, rec.Songlen)
	assert.GreaterOrEqual(t, rec.CprintLen(), 1)
}

func TestWavExtractorIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := writeSineWav(t, dir, "tone.wav", 2, 44100, 880)

	ex := NewWavExtractor()
	a, err := ex.Extract(context.Background(), path)
	require.NoError(t, err)
	b, err := ex.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, a.R, b.R)
	assert.Equal(t, a.Dom, b.Dom)
	assert.Equal(t, a.Cprint, b.Cprint)
}

func TestWavExtractorRejectsMissingFile(t *testing.T) {
	ex := NewWavExtractor()
	_, err := ex.Extract(context.Background(), "/nonexistent/path.wav")
	assert.Error(t, err)
}

func TestWavExtractorRejectsNonWavFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-a-wav.txt")
	require.NoError(t, os.WriteFile(path, []byte("not a wav file at all"), 0644))

	ex := NewWavExtractor()
	_, err := ex.Extract(context.Background(), path)
	assert.Error(t, err)
}

func TestWavExtractorHonoursCancelledContext(t *testing.T) {
	dir := t.TempDir()
	path := writeSineWav(t, dir, "tone.wav", 1, 44100, 440)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ex := NewWavExtractor()
	_, err := ex.Extract(ctx, path)
	assert.Error(t, err)
}
