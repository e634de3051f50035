package gist

import (
	"errors"
	"sort"

	"github.com/pdtgct/music-fingerprint/internal/fingerprint"
	"github.com/pdtgct/music-fingerprint/internal/similarity"
)

// ErrSingleEntry is returned by PickSplit when asked to redistribute a
// single entry: an R-tree page of one causes the host's descent routine
// to loop forever (§4.5).
var ErrSingleEntry = errors.New("gist: picksplit requires at least 2 entries")

// allEqualMatchCutoff is the §4.5 all-equal-path threshold: if the
// largest pairwise match among an all-equal vector exceeds this, the
// vector isn't really interchangeable and picksplit falls through to
// the general path instead.
const allEqualMatchCutoff = 0.4

// wishCoef is the §4.5 WISH term's scaling constant.
const wishCoef = 0.1

// SplitResult is PickSplit's output: the two new pages' entries and
// their accumulated union keys (picksplit merges each assigned entry
// into its side's UFP as it goes, so the caller never needs to
// recompute Union over either side).
type SplitResult struct {
	Left       []*fingerprint.Record
	Right      []*fingerprint.Record
	LeftUnion  *fingerprint.Record
	RightUnion *fingerprint.Record
}

func lowerBound(e *fingerprint.Record) int {
	if e.Kind == fingerprint.KindUnion {
		return e.MinSonglen
	}
	return e.Songlen
}

func upperBound(e *fingerprint.Record) int {
	if e.Kind == fingerprint.KindUnion {
		return e.MaxSonglen
	}
	return e.Songlen
}

// pairwiseMatch is §4.5's "via match_cpfm for leaves, match_fprint_merge
// for internals" rule for the all-equal path's n·(n-1)/2 comparison.
func pairwiseMatch(a, b *fingerprint.Record) float64 {
	if a.Kind == fingerprint.KindRecord && b.Kind == fingerprint.KindRecord {
		return similarity.MatchCPFM(a, b)
	}
	return similarity.MatchFprintMerge(a, b)
}

func mergeInto(union, e *fingerprint.Record) {
	if e.Kind == fingerprint.KindUnion {
		fingerprint.MergeUnion(union, e)
	} else {
		fingerprint.MergeOne(union, e)
	}
}

// PickSplit redistributes >= 2 child entries onto two new pages,
// following the Guttman-style algorithm of §4.5.
func PickSplit(entries []*fingerprint.Record) (*SplitResult, error) {
	n := len(entries)
	if n < 2 {
		return nil, ErrSingleEntry
	}

	minSonglen, maxSonglen := lowerBound(entries[0]), upperBound(entries[0])
	seedLeftIdx, seedRightIdx := 0, 0
	for i, e := range entries {
		lo, hi := lowerBound(e), upperBound(e)
		if lo < minSonglen {
			minSonglen = lo
		}
		if hi > maxSonglen {
			maxSonglen = hi
		}
		if lo < lowerBound(entries[seedLeftIdx]) {
			seedLeftIdx = i
		}
		if hi >= upperBound(entries[seedRightIdx]) {
			seedRightIdx = i
		}
	}
	if seedLeftIdx == seedRightIdx {
		seedRightIdx = (seedLeftIdx + 1) % n
	}

	allEqual := true
	for _, e := range entries {
		if lowerBound(e) != minSonglen || upperBound(e) != maxSonglen {
			allEqual = false
			break
		}
	}

	if n == 2 {
		return &SplitResult{
			Left:       []*fingerprint.Record{entries[seedLeftIdx]},
			Right:      []*fingerprint.Record{entries[seedRightIdx]},
			LeftUnion:  asUnion(entries[seedLeftIdx]),
			RightUnion: asUnion(entries[seedRightIdx]),
		}, nil
	}

	if allEqual {
		if result, ok := allEqualPath(entries); ok {
			return result, nil
		}
		// Largest pairwise match exceeded allEqualMatchCutoff: fall
		// through to the general path, re-seeding with the single most
		// different pair.
		seedLeftIdx, seedRightIdx = mostDifferentPair(entries)
	}

	return generalPath(entries, minSonglen, maxSonglen, seedLeftIdx, seedRightIdx)
}

// mostDifferentPair returns the indices of the pair with the smallest
// pairwise match (the least alike, hence "most different").
func mostDifferentPair(entries []*fingerprint.Record) (int, int) {
	n := len(entries)
	bestI, bestJ := 0, 1
	bestMatch := pairwiseMatch(entries[0], entries[1])
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			m := pairwiseMatch(entries[i], entries[j])
			if m < bestMatch {
				bestMatch, bestI, bestJ = m, i, j
			}
		}
	}
	return bestI, bestJ
}

// allEqualPath implements §4.5's all-equal branch. ok is false when the
// largest pairwise match exceeds allEqualMatchCutoff, signalling the
// caller to fall through to the general path instead.
func allEqualPath(entries []*fingerprint.Record) (*SplitResult, bool) {
	n := len(entries)
	type pairScore struct {
		i, j  int
		match float64
	}
	pairs := make([]pairScore, 0, n*(n-1)/2)
	maxMatch := 0.0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			m := pairwiseMatch(entries[i], entries[j])
			pairs = append(pairs, pairScore{i, j, m})
			if m > maxMatch {
				maxMatch = m
			}
		}
	}
	if maxMatch > allEqualMatchCutoff {
		return nil, false
	}

	// songlen_diff == 0 everywhere in this path, so the sort key
	// degenerates to match ascending: the pair at the front of the
	// sorted list is the least-alike pair and anchors the two sides,
	// then every other entry joins whichever anchor it matches best.
	// This is what keeps the split driven by content instead of by
	// whatever order the entries happened to arrive in.
	sort.Slice(pairs, func(a, b int) bool { return pairs[a].match < pairs[b].match })
	leftSeed, rightSeed := pairs[0].i, pairs[0].j

	type sideScore struct {
		idx       int
		leftMatch float64
	}
	scored := make([]sideScore, 0, n-2)
	for i := 0; i < n; i++ {
		if i == leftSeed || i == rightSeed {
			continue
		}
		scored = append(scored, sideScore{idx: i, leftMatch: pairwiseMatch(entries[i], entries[leftSeed])})
	}
	sort.Slice(scored, func(a, b int) bool { return scored[a].leftMatch < scored[b].leftMatch })

	left := []*fingerprint.Record{entries[leftSeed]}
	right := []*fingerprint.Record{entries[rightSeed]}
	for _, s := range scored {
		e := entries[s.idx]
		rightMatch := pairwiseMatch(e, entries[rightSeed])
		if s.leftMatch >= rightMatch {
			left = append(left, e)
		} else {
			right = append(right, e)
		}
	}

	leftUnion := Union(left)
	rightUnion := Union(right)
	rebalance(&left, &right, leftUnion, rightUnion)
	return &SplitResult{Left: left, Right: right, LeftUnion: leftUnion, RightUnion: rightUnion}, true
}

type scoredEntry struct {
	entry       *fingerprint.Record
	songlenDiff int
	val         float64
}

// generalPath implements §4.5's general branch: order non-seed entries
// by how neutrally they fit either side, then assign each to whichever
// side it's closer to, falling back to a would-adding-hurt probe when
// songlen alone doesn't decide it.
func generalPath(entries []*fingerprint.Record, minSonglen, maxSonglen, seedLeftIdx, seedRightIdx int) (*SplitResult, error) {
	leftUnion := asUnion(entries[seedLeftIdx])
	rightUnion := asUnion(entries[seedRightIdx])
	left := []*fingerprint.Record{entries[seedLeftIdx]}
	right := []*fingerprint.Record{entries[seedRightIdx]}

	var rest []scoredEntry
	for i, e := range entries {
		if i == seedLeftIdx || i == seedRightIdx {
			continue
		}
		lo, hi := lowerBound(e), upperBound(e)
		leftDist := lo - minSonglen
		rightDist := maxSonglen - hi
		diff := leftDist
		if rightDist < diff {
			diff = rightDist
		}
		tl := similarity.TryMatchMerges(rightUnion, leftUnion, e)
		tr := similarity.TryMatchMerges(leftUnion, rightUnion, e)
		val := tl
		if tr < val {
			val = tr
		}
		rest = append(rest, scoredEntry{entry: e, songlenDiff: diff, val: val})
	}

	sort.Slice(rest, func(a, b int) bool {
		if rest[a].songlenDiff != rest[b].songlenDiff {
			return rest[a].songlenDiff < rest[b].songlenDiff
		}
		return rest[a].val < rest[b].val
	})

	for _, se := range rest {
		e := se.entry
		lo, hi := lowerBound(e), upperBound(e)
		leftDist := lo - minSonglen
		rightDist := maxSonglen - hi

		var toLeft bool
		switch {
		case leftDist < rightDist:
			toLeft = true
		case rightDist < leftDist:
			toLeft = false
		default:
			tl := similarity.TryMatchMerges(rightUnion, leftUnion, e)
			tr := similarity.TryMatchMerges(leftUnion, rightUnion, e)
			wish := -cube(float64(len(left)-len(right))) * wishCoef
			switch {
			case tl < tr+wish:
				toLeft = true
			case tl > tr:
				toLeft = false
			default:
				toLeft = len(left) <= len(right)
			}
		}

		if toLeft {
			left = append(left, e)
			mergeInto(leftUnion, e)
		} else {
			right = append(right, e)
			mergeInto(rightUnion, e)
		}
	}

	rebalance(&left, &right, leftUnion, rightUnion)

	return &SplitResult{Left: left, Right: right, LeftUnion: leftUnion, RightUnion: rightUnion}, nil
}

func cube(v float64) float64 { return v * v * v }

// rebalance enforces §8 invariant 8: when n >= 4, both sides should
// carry at least two entries whenever that's achievable without
// emptying the larger side down to zero.
func rebalance(left, right *[]*fingerprint.Record, leftUnion, rightUnion *fingerprint.Record) {
	total := len(*left) + len(*right)
	if total < 4 {
		return
	}
	for len(*left) < 2 && len(*right) > 2 {
		moved := (*right)[len(*right)-1]
		*right = (*right)[:len(*right)-1]
		*left = append(*left, moved)
	}
	for len(*right) < 2 && len(*left) > 2 {
		moved := (*left)[len(*left)-1]
		*left = (*left)[:len(*left)-1]
		*right = append(*right, moved)
	}
	*leftUnion = *Union(*left)
	*rightUnion = *Union(*right)
}
