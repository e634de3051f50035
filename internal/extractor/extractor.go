// Package extractor gives §6's "extractor" collaborator a concrete body:
// something that turns an audio file on disk into a fingerprint.Record.
// The reference implementation, WavExtractor, decodes PCM WAV via
// go-audio/wav/go-audio/audio and derives the three required streams (r,
// dom, cprint) by simple, deterministic means — energy and zero-crossing
// thresholds, not a perceptually tuned spectral analysis. That tuning is
// explicitly out of scope (§1 Non-goals); this package exists to prove
// the extractor contract is satisfiable end-to-end.
package extractor

import (
	"context"

	"github.com/pdtgct/music-fingerprint/internal/fingerprint"
)

// Extractor turns an audio file into a fingerprint.Record.
type Extractor interface {
	Extract(ctx context.Context, path string) (*fingerprint.Record, error)
}
