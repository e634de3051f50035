package fingerprint

import (
	"math/rand"
	"testing"
)

func makeRecord(t *testing.T, songlen, bitRate, numErrors int, cprint []uint32) *Record {
	t.Helper()
	var r [RLen]byte
	var dom [DomLen]byte
	rnd := rand.New(rand.NewSource(int64(songlen)*7919 + int64(len(cprint))))
	rnd.Read(r[:])
	rnd.Read(dom[:])
	rec, err := NewRecord(songlen, bitRate, numErrors, r, dom, cprint)
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	return rec
}

func recordsEqual(a, b *Record) bool {
	if a.Kind != b.Kind || a.Songlen != b.Songlen || a.BitRate != b.BitRate ||
		a.NumErrors != b.NumErrors || a.MinSonglen != b.MinSonglen || a.MaxSonglen != b.MaxSonglen {
		return false
	}
	if a.R != b.R || a.Dom != b.Dom {
		return false
	}
	if len(a.Cprint) != len(b.Cprint) {
		return false
	}
	for i := range a.Cprint {
		if a.Cprint[i] != b.Cprint[i] {
			return false
		}
	}
	return true
}

func TestTextRoundTrip(t *testing.T) {
	rec := makeRecord(t, 185, 192, 0, []uint32{1, 2, 3, uint32(int32(-4)), 5})
	text, err := Format(rec)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	got, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !recordsEqual(rec, got) {
		t.Fatalf("round trip mismatch: %+v != %+v", rec, got)
	}

	// format ∘ parse produces a canonical encoding.
	text2, err := Format(got)
	if err != nil {
		t.Fatalf("Format(got): %v", err)
	}
	if text != text2 {
		t.Fatalf("non-canonical re-encoding: %q != %q", text, text2)
	}
}

// S7: a record with cprint_len = 948 and at least one negative codeword
// round-trips byte-identically through the text codec.
func TestTextRoundTripS7(t *testing.T) {
	cprint := make([]uint32, 948)
	for i := range cprint {
		v := int32(i*31 - 500)
		cprint[i] = uint32(v)
	}
	rec := makeRecord(t, 240, 256, 2, cprint)
	text, err := Format(rec)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	got, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !recordsEqual(rec, got) {
		t.Fatal("S7 round trip mismatch")
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	rec := makeRecord(t, 222, 320, 1, []uint32{10, 20, 30})
	blob, err := Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(blob, KindRecord)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !recordsEqual(rec, got) {
		t.Fatal("binary round trip mismatch")
	}
}

func TestBinaryRoundTripUnion(t *testing.T) {
	a := makeRecord(t, 100, 128, 0, []uint32{1, 2})
	b := makeRecord(t, 140, 128, 0, []uint32{3, 4, 5})
	u := MergeTwo(a, b)
	blob, err := Marshal(u)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(blob, KindUnion)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !recordsEqual(u, got) {
		t.Fatal("union binary round trip mismatch")
	}
}

func TestParseRejectsTooShort(t *testing.T) {
	if _, err := Parse("(1,2,3,AB)"); err == nil {
		t.Fatal("expected error for too-short text form")
	}
}

func TestParseRejectsMissingComma(t *testing.T) {
	rec := makeRecord(t, 10, 10, 0, []uint32{1})
	text, _ := Format(rec)
	// Corrupt the comma right after songlen.
	bad := "(10." + text[4:]
	if _, err := Parse(bad); err == nil {
		t.Fatal("expected error for missing comma after songlen")
	}
}

func TestParseRejectsNonHex(t *testing.T) {
	rec := makeRecord(t, 10, 10, 0, []uint32{1})
	text, _ := Format(rec)
	bad := []byte(text)
	// corrupt a character inside the R hex block with a non-hex letter.
	bad[9] = 'Z'
	if _, err := Parse(string(bad)); err == nil {
		t.Fatal("expected error for non-hex character in r block")
	}
}

func TestParseRejectsWideCodeword(t *testing.T) {
	rec := makeRecord(t, 10, 10, 0, []uint32{1})
	text, _ := Format(rec)
	bad := text[:len(text)-1] + " 1234567890123)"
	if _, err := Parse(bad); err == nil {
		t.Fatal("expected error for codeword wider than 12 characters")
	}
}

func TestValidateRejectsEmptyCprint(t *testing.T) {
	var r [RLen]byte
	var dom [DomLen]byte
	if _, err := NewRecord(1, 1, 0, r, dom, nil); err == nil {
		t.Fatal("expected error for empty cprint")
	}
}

func TestValidateRejectsCorruptCprintLen(t *testing.T) {
	rec := &Record{Kind: KindRecord, Cprint: make([]uint32, CorruptCeiling)}
	if err := rec.Validate(); err == nil {
		t.Fatal("expected error for cprint_len at corruption ceiling")
	}
}

func TestMergeOneCoverage(t *testing.T) {
	a := makeRecord(t, 200, 128, 0, []uint32{0xAAAA0000, 0x0000FFFF, 7})
	b := makeRecord(t, 210, 128, 0, []uint32{0x00FF00FF})
	u := MergeTwo(a, b)
	MergeOne(u, a) // idempotent: a is already covered.

	for i := range a.R {
		if a.R[i]&u.R[i] != a.R[i] {
			t.Fatalf("r not covered at byte %d", i)
		}
	}
	for i := range a.Dom {
		if a.Dom[i]&u.Dom[i] != a.Dom[i] {
			t.Fatalf("dom not covered at byte %d", i)
		}
	}
	for i, c := range a.Cprint {
		if c&u.Cprint[i] != c {
			t.Fatalf("cprint[%d] not covered", i)
		}
	}
	if u.MinSonglen > a.Songlen || u.MaxSonglen < a.Songlen {
		t.Fatal("songlen envelope does not cover a.Songlen")
	}
	if u.MinSonglen > b.Songlen || u.MaxSonglen < b.Songlen {
		t.Fatal("songlen envelope does not cover b.Songlen")
	}
}

func TestMergeUnionEnvelope(t *testing.T) {
	a := makeRecord(t, 50, 128, 0, []uint32{1})
	b := makeRecord(t, 90, 128, 0, []uint32{2})
	c := makeRecord(t, 30, 128, 0, []uint32{3})
	d := makeRecord(t, 120, 128, 0, []uint32{4})

	u1 := MergeTwo(a, b)
	u2 := MergeTwo(c, d)
	MergeUnion(u1, u2)

	if u1.MinSonglen != 30 || u1.MaxSonglen != 120 {
		t.Fatalf("expected envelope [30,120], got [%d,%d]", u1.MinSonglen, u1.MaxSonglen)
	}
}
