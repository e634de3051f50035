package gist

import "github.com/pdtgct/music-fingerprint/internal/fingerprint"

// asUnion converts a single FP into the trivial UFP that covers exactly
// that one record: min_songlen == max_songlen == rec.Songlen.
func asUnion(rec *fingerprint.Record) *fingerprint.Record {
	if rec.Kind == fingerprint.KindUnion {
		u := *rec
		u.Cprint = append([]uint32(nil), rec.Cprint...)
		return &u
	}
	u := &fingerprint.Record{
		Kind:       fingerprint.KindUnion,
		R:          rec.R,
		Dom:        rec.Dom,
		Cprint:     append([]uint32(nil), rec.Cprint...),
		MinSonglen: rec.Songlen,
		MaxSonglen: rec.Songlen,
	}
	return u
}

func capCprint(rec *fingerprint.Record) {
	if len(rec.Cprint) > fingerprint.MaxKeyCPLen {
		rec.Cprint = rec.Cprint[:fingerprint.MaxKeyCPLen]
	}
}

// Union builds a single UFP covering a vector of child entries (each
// either an FP leaf key or a UFP node key), per §4.5: fold each
// remaining key into the accumulator via the union-with-one or
// union-with-union merge as appropriate, truncating cprint to
// fingerprint.MaxKeyCPLen whenever it grows. Requires at least one
// entry.
func Union(entries []*fingerprint.Record) *fingerprint.Record {
	if len(entries) == 0 {
		return nil
	}
	acc := asUnion(entries[0])
	capCprint(acc)
	for _, e := range entries[1:] {
		if e.Kind == fingerprint.KindUnion {
			fingerprint.MergeUnion(acc, e)
		} else {
			fingerprint.MergeOne(acc, e)
		}
		capCprint(acc)
	}
	return acc
}
