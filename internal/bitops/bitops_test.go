package bitops

import "testing"

func TestPopcount32(t *testing.T) {
	cases := []struct {
		in   uint32
		want int
	}{
		{0, 0},
		{1, 1},
		{0xFFFFFFFF, 32},
		{0x0F0F0F0F, 16},
	}
	for _, c := range cases {
		if got := Popcount32(c.in); got != c.want {
			t.Errorf("Popcount32(%#x) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestPopcount16(t *testing.T) {
	if got := Popcount16(0xFFFF); got != 16 {
		t.Errorf("Popcount16(0xFFFF) = %d, want 16", got)
	}
	if got := Popcount16(0); got != 0 {
		t.Errorf("Popcount16(0) = %d, want 0", got)
	}
}

func TestRDiffFooidZero(t *testing.T) {
	var rdiff [4]int
	RDiffFooid(0, &rdiff)
	if rdiff != ([4]int{16, 0, 0, 0}) {
		t.Errorf("RDiffFooid(0) = %v, want all lanes in bucket 0", rdiff)
	}
}

func TestRDiffFooidAllThrees(t *testing.T) {
	var rdiff [4]int
	RDiffFooid(0xFFFFFFFF, &rdiff)
	if rdiff != ([4]int{0, 0, 0, 16}) {
		t.Errorf("RDiffFooid(all ones) = %v, want all lanes in bucket 3", rdiff)
	}
}

func TestRDiffFooidMixedLanes(t *testing.T) {
	// lane 0 = 0b01 (bucket 1), lane 1 = 0b10 (bucket 2), rest zero.
	x := uint32(0b10_01)
	var rdiff [4]int
	RDiffFooid(x, &rdiff)
	if rdiff[1] != 1 || rdiff[2] != 1 || rdiff[0] != 14 || rdiff[3] != 0 {
		t.Errorf("RDiffFooid(%#b) = %v, want one lane in bucket 1, one in bucket 2", x, rdiff)
	}
}

func TestCmpLowBit(t *testing.T) {
	if CmpLowBit(0b100, 0b1100) != 1 {
		t.Error("expected lowest set bit to match (both bit 2)")
	}
	if CmpLowBit(0b100, 0b1000) != 0 {
		t.Error("expected lowest set bit to differ")
	}
	if CmpLowBit(0, 0) != 1 {
		t.Error("expected two all-zero words to compare as aligned")
	}
}
