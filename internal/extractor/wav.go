package extractor

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/pdtgct/music-fingerprint/internal/fingerprint"
)

// rBits/domBodyBits are the number of frames each stream is bucketed
// into before thresholding to a bit; they exist so r and dom pack
// exactly into fingerprint.RLen/fingerprint.DomLen bytes.
const (
	rBits       = fingerprint.RLen * 8
	domBodyBits = fingerprint.DomBodyBits
)

// cprintWindowSeconds is the width of one chroma-codeword window. A
// one-second window keeps cprint_len close to songlen, matching the
// spec's informal expectation that cprint scales with track length.
const cprintWindowSeconds = 1

// WavExtractor is the reference Extractor over PCM WAV files.
type WavExtractor struct{}

// NewWavExtractor returns a ready-to-use WavExtractor. It holds no state.
func NewWavExtractor() *WavExtractor {
	return &WavExtractor{}
}

var _ Extractor = (*WavExtractor)(nil)

// Extract decodes the WAV file at path and derives an FP from its PCM
// samples. The three streams are deterministic functions of the decoded
// samples: identical input always yields an identical Record.
func (w *WavExtractor) Extract(ctx context.Context, path string) (*fingerprint.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("extractor: open %s: %w", path, err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("extractor: %s is not a valid WAV file", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("extractor: decode %s: %w", path, err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("extractor: %s has no PCM samples", path)
	}

	samples := monoSamples(buf)
	sampleRate := buf.Format.SampleRate
	if sampleRate <= 0 {
		sampleRate = int(decoder.SampleRate)
	}
	songlen := 0
	if sampleRate > 0 {
		songlen = len(samples) / sampleRate
	}
	bitDepth := int(decoder.BitDepth)
	bitRate := bitDepth * sampleRate * buf.Format.NumChannels / 1000

	r := deriveR(samples)
	dom := deriveDom(samples)
	cprint := deriveCprint(samples, sampleRate)

	return fingerprint.NewRecord(songlen, bitRate, 0, r, dom, cprint)
}

// monoSamples averages all channels down to one, normalized to [-1, 1].
func monoSamples(buf *audio.IntBuffer) []float64 {
	chans := buf.Format.NumChannels
	if chans < 1 {
		chans = 1
	}
	fullScale := float64(int(1) << uint(buf.SourceBitDepth-1))
	if fullScale <= 0 {
		fullScale = math.MaxInt16
	}
	n := len(buf.Data) / chans
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for c := 0; c < chans; c++ {
			sum += float64(buf.Data[i*chans+c])
		}
		out[i] = (sum / float64(chans)) / fullScale
	}
	return out
}

// frameStat buckets samples into n equal frames and applies stat to
// each, returning one float64 per frame. Frames beyond the sample data
// (when there are fewer samples than frames) are zero.
func frameStat(samples []float64, n int, stat func([]float64) float64) []float64 {
	out := make([]float64, n)
	if n == 0 || len(samples) == 0 {
		return out
	}
	frameLen := len(samples) / n
	if frameLen == 0 {
		for i, s := range samples {
			if i >= n {
				break
			}
			out[i] = stat(samples[i : i+1])
		}
		return out
	}
	for i := 0; i < n; i++ {
		start := i * frameLen
		end := start + frameLen
		if i == n-1 {
			end = len(samples)
		}
		out[i] = stat(samples[start:end])
	}
	return out
}

func rms(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(frame)))
}

func zeroCrossingRate(frame []float64) float64 {
	if len(frame) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0) != (frame[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(frame)-1)
}

// thresholdBits compares each value against the slice mean, bit 1 when
// at or above it.
func thresholdBits(values []float64) []bool {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	bits := make([]bool, len(values))
	for i, v := range values {
		bits[i] = v >= mean
	}
	return bits
}

// packBits packs bits MSB-first into a byte slice of exactly width
// bytes, padding unused trailing bits with 0.
func packBits(bits []bool, width int) []byte {
	out := make([]byte, width)
	for i, b := range bits {
		if !b {
			continue
		}
		byteIdx := i / 8
		if byteIdx >= width {
			break
		}
		out[byteIdx] |= 1 << uint(7-i%8)
	}
	return out
}

// deriveR buckets the whole track into RLen*8 energy frames, a coarse
// loudness-contour fingerprint.
func deriveR(samples []float64) [fingerprint.RLen]byte {
	var out [fingerprint.RLen]byte
	energies := frameStat(samples, rBits, rms)
	copy(out[:], packBits(thresholdBits(energies), fingerprint.RLen))
	return out
}

// deriveDom packs DomBodyBits of zero-crossing-rate frames (a coarse
// stand-in for spectral brightness) followed by a DomTailBits tail
// holding the low 16 bits of the track's sample count, so two tracks
// whose sample counts differ by less than 65536 never collide on dom
// alone.
func deriveDom(samples []float64) [fingerprint.DomLen]byte {
	var out [fingerprint.DomLen]byte
	zcrs := frameStat(samples, domBodyBits, zeroCrossingRate)
	bodyBytes := (domBodyBits + 7) / 8
	copy(out[:bodyBytes], packBits(thresholdBits(zcrs), bodyBytes))
	binary.BigEndian.PutUint16(out[fingerprint.DomLen-2:], uint16(len(samples)))
	return out
}

// deriveCprint splits the track into cprintWindowSeconds windows and
// reduces each to one codeword (a quantized energy value). A
// sub-one-second track yields the single-word {0} sentinel per §3's
// "no chroma data" convention; a silent track of one second or more
// yields one zero codeword per window.
func deriveCprint(samples []float64, sampleRate int) []uint32 {
	if sampleRate <= 0 {
		return []uint32{0}
	}
	windowLen := sampleRate * cprintWindowSeconds
	numWindows := len(samples) / windowLen
	if numWindows == 0 {
		return []uint32{0}
	}
	if numWindows >= fingerprint.CorruptCeiling {
		numWindows = fingerprint.CorruptCeiling - 1
	}
	cprint := make([]uint32, numWindows)
	for i := 0; i < numWindows; i++ {
		start := i * windowLen
		end := start + windowLen
		if i == numWindows-1 {
			end = len(samples)
		}
		energy := rms(samples[start:end])
		cprint[i] = uint32(energy * float64(math.MaxUint32/4))
	}
	return cprint
}
