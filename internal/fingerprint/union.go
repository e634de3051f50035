package fingerprint

// The three union builders maintain the "OR-of-covered-sets" invariant
// (§4.4): every record ever folded into a union key remains bitwise
// covered by it (a.R & u.R == a.R, etc.), and bitwise-OR is idempotent, so
// merging an already-covered record changes nothing.

func orBytes(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] | b[i]
	}
}

func orCprint(a, b []uint32) []uint32 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		var av, bv uint32
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		out[i] = av | bv
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// MergeTwo implements fprint_merge: builds a fresh UFP covering exactly
// the two given FPs.
func MergeTwo(a, b *Record) *Record {
	u := &Record{Kind: KindUnion}
	orBytes(u.R[:], a.R[:], b.R[:])
	orBytes(u.Dom[:], a.Dom[:], b.Dom[:])
	u.Cprint = orCprint(a.Cprint, b.Cprint)
	u.MinSonglen = minInt(a.Songlen, b.Songlen)
	u.MaxSonglen = maxInt(a.Songlen, b.Songlen)
	return u
}

// MergeOne implements fprint_merge_one: OR-merges FP a into the existing
// union key u in place, extending u's songlen envelope to cover a.
func MergeOne(u *Record, a *Record) {
	wasEmpty := len(u.Cprint) == 0 && u.MinSonglen == 0 && u.MaxSonglen == 0
	orBytes(u.R[:], u.R[:], a.R[:])
	orBytes(u.Dom[:], u.Dom[:], a.Dom[:])
	u.Cprint = orCprint(u.Cprint, a.Cprint)
	if wasEmpty {
		u.MinSonglen, u.MaxSonglen = a.Songlen, a.Songlen
		return
	}
	u.MinSonglen = minInt(u.MinSonglen, a.Songlen)
	u.MaxSonglen = maxInt(u.MaxSonglen, a.Songlen)
}

// MergeUnion implements fprint_merge_one_union: OR-merges union key v into
// union key u in place, taking the meet (min/max) of the two envelopes.
func MergeUnion(u *Record, v *Record) {
	orBytes(u.R[:], u.R[:], v.R[:])
	orBytes(u.Dom[:], u.Dom[:], v.Dom[:])
	u.Cprint = orCprint(u.Cprint, v.Cprint)
	u.MinSonglen = minInt(u.MinSonglen, v.MinSonglen)
	u.MaxSonglen = maxInt(u.MaxSonglen, v.MaxSonglen)
}
