package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdtgct/music-fingerprint/internal/fingerprint"
	"github.com/pdtgct/music-fingerprint/internal/gist"
)

func TestParseKindFlag(t *testing.T) {
	kind, err := parseKindFlag("record")
	require.NoError(t, err)
	assert.Equal(t, fingerprint.KindRecord, kind)

	kind, err = parseKindFlag("union")
	require.NoError(t, err)
	assert.Equal(t, fingerprint.KindUnion, kind)

	_, err = parseKindFlag("bogus")
	assert.Error(t, err)
}

func TestParseStrategyFlag(t *testing.T) {
	s, err := parseStrategyFlag("eq")
	require.NoError(t, err)
	assert.Equal(t, gist.StrategyEQ, s)

	s, err = parseStrategyFlag("neq")
	require.NoError(t, err)
	assert.Equal(t, gist.StrategyNeq, s)

	s, err = parseStrategyFlag("match")
	require.NoError(t, err)
	assert.Equal(t, gist.StrategyMatch, s)

	_, err = parseStrategyFlag("bogus")
	assert.Error(t, err)
}

func TestReadTextArgPrefersFileContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "record.txt")
	require.NoError(t, os.WriteFile(path, []byte("(1,2,3)\n"), 0644))

	text, err := readTextArg(path)
	require.NoError(t, err)
	assert.Equal(t, "(1,2,3)", text)
}

func TestReadTextArgFallsBackToLiteralArg(t *testing.T) {
	text, err := readTextArg("(1,2,3)")
	require.NoError(t, err)
	assert.Equal(t, "(1,2,3)", text)
}

func TestSummarizeRecord(t *testing.T) {
	var r [fingerprint.RLen]byte
	var dom [fingerprint.DomLen]byte
	rec, err := fingerprint.NewRecord(200, 192, 0, r, dom, []uint32{1, 2})
	require.NoError(t, err)

	s := summarize(rec)
	assert.Equal(t, "FP", s.Kind)
	assert.Equal(t, 200, s.Songlen)
	assert.Equal(t, 2, s.CprintLen)
}
