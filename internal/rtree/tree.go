package rtree

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdtgct/music-fingerprint/internal/fingerprint"
	"github.com/pdtgct/music-fingerprint/internal/gist"
	"github.com/pdtgct/music-fingerprint/internal/metrics"
	"github.com/pdtgct/music-fingerprint/internal/nodecache"
	"github.com/pdtgct/music-fingerprint/internal/similarity"
	"github.com/pdtgct/music-fingerprint/internal/store"
	"github.com/pdtgct/music-fingerprint/internal/telemetry"
)

// rootPageID is the well-known ID of the tree's root page. New creates it
// empty on first use, mirroring the teacher's container.New bootstrapping
// a fresh dependency graph on first call.
const rootPageID = "root"

// defaultMaxEntries bounds how many entries (leaf FPs or internal child
// pointers) a page may hold before PickSplit divides it, per §4.5. Each
// compressed entry blob is at most about 1.4 KB; a full page of 128 of
// them is far larger than a single 4 KiB/8 KiB host page.
const defaultMaxEntries = 128

// PageID identifies a store.Page. An alias, not a distinct type: it
// exists so Tree's public surface reads in the vocabulary of the index
// (pages) rather than the storage layer (opaque row IDs).
type PageID = string

// Tree is a Guttman-style R-tree over a store.PageStore, with the gist
// package supplying Compress/Union/Penalty/PickSplit/Consistent/Same.
// Locking is coarse, one sync.RWMutex over the whole tree, the same
// trade-off the teacher's websocket.Hub makes for its client registry:
// simple to reason about, fine for this module's expected concurrency.
type Tree struct {
	mu         sync.RWMutex
	store      store.PageStore
	cache      *nodecache.NodeCache
	maxEntries int
	rootID     string

	cleanupMu sync.Mutex
	cleanups  []func(context.Context) error
}

// Option configures a Tree at construction time, following the teacher's
// fluent With* configuration style.
type Option func(*Tree)

// WithMaxEntries overrides defaultMaxEntries.
func WithMaxEntries(n int) Option {
	return func(t *Tree) {
		if n >= 2 {
			t.maxEntries = n
		}
	}
}

// WithNodeCache attaches a hot-page cache. A nil cache (the zero
// value returned by nodecache.New when unconfigured) is accepted and
// simply disables caching.
func WithNodeCache(c *nodecache.NodeCache) Option {
	return func(t *Tree) { t.cache = c }
}

// New opens a Tree over an already-migrated PageStore, creating an empty
// root page on first use.
func New(ctx context.Context, st store.PageStore, opts ...Option) (*Tree, error) {
	t := &Tree{store: st, maxEntries: defaultMaxEntries, rootID: rootPageID}
	for _, opt := range opts {
		opt(t)
	}

	_, err := st.Get(ctx, t.rootID)
	switch {
	case errors.Is(err, store.ErrPageNotFound):
		root := &store.Page{ID: t.rootID, IsLeaf: true}
		if err := encodePage(root, nil, nil); err != nil {
			return nil, err
		}
		if err := st.Put(ctx, root); err != nil {
			return nil, fmt.Errorf("rtree: bootstrap root: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("rtree: load root: %w", err)
	}

	return t, nil
}

// OnCleanup registers a shutdown hook run in LIFO order by Close, the
// same lifecycle shape as the teacher's container.OnCleanup/Cleanup.
func (t *Tree) OnCleanup(fn func(context.Context) error) {
	t.cleanupMu.Lock()
	defer t.cleanupMu.Unlock()
	t.cleanups = append(t.cleanups, fn)
}

// Close runs every registered cleanup hook in LIFO order, collecting and
// returning the first error encountered after running them all.
func (t *Tree) Close(ctx context.Context) error {
	t.cleanupMu.Lock()
	defer t.cleanupMu.Unlock()
	var firstErr error
	for i := len(t.cleanups) - 1; i >= 0; i-- {
		if err := t.cleanups[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	t.cleanups = nil
	return firstErr
}

func newPageID() string { return uuid.NewString() }

// loadEntries reads a page and decodes its entries, preferring the node
// cache over the backing store when available. A cache error is treated
// as a miss: the read falls back to the store rather than failing the
// whole operation.
func (t *Tree) loadEntries(ctx context.Context, pageID string) (*store.Page, []*fingerprint.Record, []string, error) {
	if t.cache != nil {
		if page, ok, err := t.cache.Get(ctx, pageID); err == nil && ok {
			recs, childIDs, err := decodePage(page)
			if err != nil {
				return nil, nil, nil, err
			}
			return page, recs, childIDs, nil
		}
	}

	start := time.Now()
	page, err := t.store.Get(ctx, pageID)
	metrics.Get().PageOpDuration.WithLabelValues("get").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Get().PageReadsTotal.WithLabelValues("error").Inc()
		return nil, nil, nil, err
	}
	metrics.Get().PageReadsTotal.WithLabelValues("ok").Inc()

	recs, childIDs, err := decodePage(page)
	if err != nil {
		return nil, nil, nil, err
	}
	if t.cache != nil {
		_ = t.cache.Put(ctx, page)
	}
	return page, recs, childIDs, nil
}

func (t *Tree) savePage(ctx context.Context, page *store.Page, recs []*fingerprint.Record, childIDs []string) error {
	if err := encodePage(page, recs, childIDs); err != nil {
		return err
	}
	start := time.Now()
	err := t.store.Put(ctx, page)
	metrics.Get().PageOpDuration.WithLabelValues("put").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Get().PageWritesTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.Get().PageWritesTotal.WithLabelValues("ok").Inc()
	if t.cache != nil {
		_ = t.cache.Put(ctx, page)
	}
	return nil
}

// unionOf returns a page's own summarizing key: for a leaf page, the
// union over its compressed FP entries; for an internal page, the union
// over its children's UFP summaries. Empty pages return nil.
func unionOf(recs []*fingerprint.Record) *fingerprint.Record {
	if len(recs) == 0 {
		return nil
	}
	return gist.Union(recs)
}

// Insert adds rec to the tree, descending via Penalty to pick a subtree
// at each internal level and splitting any page that overflows
// maxEntries, propagating new union keys (and, when the root itself
// splits, a new root) back up to the caller. It returns the ID of the
// leaf page the record was ultimately stored on.
func (t *Tree) Insert(ctx context.Context, rec *fingerprint.Record) (landedOn PageID, err error) {
	if rec == nil {
		return "", errors.New("rtree: nil record")
	}
	if err := rec.Validate(); err != nil {
		return "", fmt.Errorf("rtree: invalid record: %w", err)
	}

	ctx, end := telemetry.StartSpan(ctx, "rtree.Insert", t.rootID)
	start := time.Now()
	defer func() {
		end(&err)
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.Get().InsertsTotal.WithLabelValues(status).Inc()
		metrics.Get().InsertDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	}()

	t.mu.Lock()
	defer t.mu.Unlock()

	leaf := gist.Compress(rec)
	res, err := t.insertInto(ctx, t.rootID, leaf)
	if err != nil {
		return "", err
	}
	if res.splitRightID == "" {
		return res.leafPageID, nil
	}
	if err := t.promoteNewRoot(ctx, t.rootID, res.splitRightID, res.union, res.splitRightUnion); err != nil {
		return "", err
	}
	return res.leafPageID, nil
}

// insertResult is what insertInto reports to its caller one level up:
// either the page kept its own ID and now summarises to union, or the
// page overflowed and was split in place — union is then the left
// half's summary (still under the same page ID) and splitRightID/
// splitRightUnion describe the new sibling page the caller must link in
// as one more entry of its own.
type insertResult struct {
	union           *fingerprint.Record
	splitRightID    string
	splitRightUnion *fingerprint.Record
	// leafPageID is the ID of the page the just-inserted record actually
	// landed on, propagated unchanged up through every ancestor frame so
	// Insert can report it to the caller.
	leafPageID PageID
}

// insertInto recursively descends page pageID, inserting leaf (already
// compressed). Splits propagate purely via the call stack: a split at
// depth d returns a new sibling page ID to depth d-1, which links it in
// as one more entry of its own page and may itself split in turn, all
// the way up to Insert, which promotes a new root if the split reaches
// the old one.
func (t *Tree) insertInto(ctx context.Context, pageID string, leaf *fingerprint.Record) (insertResult, error) {
	page, recs, childIDs, err := t.loadEntries(ctx, pageID)
	if err != nil {
		return insertResult{}, err
	}

	if page.IsLeaf {
		recs = append(recs, leaf)
		return t.saveOrSplitLeaf(ctx, page, recs, leaf)
	}

	if len(childIDs) == 0 {
		// Degenerate internal page with no children yet: treat it as a
		// leaf-in-waiting so the very first insert always has somewhere
		// to go.
		page.IsLeaf = true
		return t.saveOrSplitLeaf(ctx, page, []*fingerprint.Record{leaf}, leaf)
	}

	best := bestChild(recs, leaf)
	childRes, err := t.insertInto(ctx, childIDs[best], leaf)
	if err != nil {
		return insertResult{}, err
	}

	if childRes.splitRightID == "" {
		same, err := gist.Same(recs[best], childRes.union)
		if err != nil {
			return insertResult{}, err
		}
		if !same {
			recs[best] = childRes.union
			if err := t.savePage(ctx, page, recs, childIDs); err != nil {
				return insertResult{}, err
			}
		}
		return insertResult{union: unionOf(recs), leafPageID: childRes.leafPageID}, nil
	}

	recs[best] = childRes.union
	recs = append(recs, childRes.splitRightUnion)
	childIDs = append(childIDs, childRes.splitRightID)
	if err := t.reparentOne(ctx, childRes.splitRightID, pageID); err != nil {
		return insertResult{}, err
	}
	return t.saveOrSplitInternal(ctx, page, recs, childIDs, childRes.leafPageID)
}

// bestChild picks the child entry with the lowest Penalty of absorbing
// leaf, the §4.5 subtree-choice rule.
func bestChild(recs []*fingerprint.Record, leaf *fingerprint.Record) int {
	best := 0
	bestPenalty := gist.Penalty(recs[0], leaf)
	for i := 1; i < len(recs); i++ {
		p := gist.Penalty(recs[i], leaf)
		if p < bestPenalty {
			bestPenalty, best = p, i
		}
	}
	return best
}

// saveOrSplitLeaf writes recs back to page if they still fit, otherwise
// splits the page via PickSplit: page keeps its own ID as the left half,
// a brand-new page holds the right half.
func (t *Tree) saveOrSplitLeaf(ctx context.Context, page *store.Page, recs []*fingerprint.Record, leaf *fingerprint.Record) (insertResult, error) {
	if len(recs) <= t.maxEntries {
		if err := t.savePage(ctx, page, recs, nil); err != nil {
			return insertResult{}, err
		}
		return insertResult{union: unionOf(recs), leafPageID: page.ID}, nil
	}

	result, err := gist.PickSplit(recs)
	if err != nil {
		return insertResult{}, fmt.Errorf("rtree: split leaf %s: %w", page.ID, err)
	}
	metrics.Get().SplitsTotal.Inc()

	page.Blob = nil
	if err := t.savePage(ctx, page, result.Left, nil); err != nil {
		return insertResult{}, err
	}

	rightPage := &store.Page{ID: newPageID(), ParentID: page.ParentID, IsLeaf: true}
	if err := t.savePage(ctx, rightPage, result.Right, nil); err != nil {
		return insertResult{}, err
	}

	landedID := page.ID
	for _, rec := range result.Right {
		if rec == leaf {
			landedID = rightPage.ID
			break
		}
	}

	return insertResult{union: result.LeftUnion, splitRightID: rightPage.ID, splitRightUnion: result.RightUnion, leafPageID: landedID}, nil
}

// saveOrSplitInternal is saveOrSplitLeaf's counterpart for internal
// pages: on split, each child's ParentID is rewritten to whichever half
// it ended up on.
func (t *Tree) saveOrSplitInternal(ctx context.Context, page *store.Page, recs []*fingerprint.Record, childIDs []string, leafPageID PageID) (insertResult, error) {
	if len(recs) <= t.maxEntries {
		if err := t.savePage(ctx, page, recs, childIDs); err != nil {
			return insertResult{}, err
		}
		return insertResult{union: unionOf(recs), leafPageID: leafPageID}, nil
	}

	result, err := gist.PickSplit(recs)
	if err != nil {
		return insertResult{}, fmt.Errorf("rtree: split internal %s: %w", page.ID, err)
	}
	metrics.Get().SplitsTotal.Inc()

	leftChildIDs := childIDsFor(result.Left, recs, childIDs)
	rightChildIDs := childIDsFor(result.Right, recs, childIDs)

	page.Blob = nil
	if err := t.savePage(ctx, page, result.Left, leftChildIDs); err != nil {
		return insertResult{}, err
	}
	if err := t.reparentAll(ctx, leftChildIDs, page.ID); err != nil {
		return insertResult{}, err
	}

	rightPage := &store.Page{ID: newPageID(), ParentID: page.ParentID, IsLeaf: false}
	if err := t.savePage(ctx, rightPage, result.Right, rightChildIDs); err != nil {
		return insertResult{}, err
	}
	if err := t.reparentAll(ctx, rightChildIDs, rightPage.ID); err != nil {
		return insertResult{}, err
	}

	return insertResult{union: result.LeftUnion, splitRightID: rightPage.ID, splitRightUnion: result.RightUnion, leafPageID: leafPageID}, nil
}

// childIDsFor maps a PickSplit side's chosen records back to their
// original child IDs by identity (PickSplit reorders but never copies
// the *fingerprint.Record values it was given).
func childIDsFor(side []*fingerprint.Record, all []*fingerprint.Record, childIDs []string) []string {
	out := make([]string, 0, len(side))
	for _, rec := range side {
		for i, orig := range all {
			if orig == rec {
				out = append(out, childIDs[i])
				break
			}
		}
	}
	return out
}

func (t *Tree) reparentOne(ctx context.Context, childID, newParentID string) error {
	return t.reparentAll(ctx, []string{childID}, newParentID)
}

func (t *Tree) reparentAll(ctx context.Context, childIDs []string, newParentID string) error {
	for _, id := range childIDs {
		page, err := t.store.Get(ctx, id)
		if err != nil {
			return err
		}
		if page.ParentID == newParentID {
			continue
		}
		page.ParentID = newParentID
		if err := t.store.Put(ctx, page); err != nil {
			return err
		}
	}
	return nil
}

// promoteNewRoot replaces the root with a fresh internal page pointing
// at leftID (the old root, now one level down) and rightID, growing the
// tree by one level. Called only from Insert, when the root page itself
// had to split.
func (t *Tree) promoteNewRoot(ctx context.Context, leftID, rightID string, leftUnion, rightUnion *fingerprint.Record) error {
	newRootID := newPageID()

	if err := t.reparentOne(ctx, leftID, newRootID); err != nil {
		return err
	}
	if err := t.reparentOne(ctx, rightID, newRootID); err != nil {
		return err
	}

	newRoot := &store.Page{ID: newRootID, IsLeaf: false}
	if err := t.savePage(ctx, newRoot, []*fingerprint.Record{leftUnion, rightUnion}, []string{leftID, rightID}); err != nil {
		return err
	}

	t.rootID = newRootID
	metrics.Get().TreeDepth.Inc()
	return nil
}

// SearchHit is one leaf match returned by Search: the matched record
// plus the page it lives on (a page holds several leaf entries, so the
// page ID alone cannot identify one match among its siblings).
type SearchHit struct {
	PageID PageID
	Record *fingerprint.Record
	Score  float64
}

// Same delegates to gist.Same, exposed so callers deciding whether to
// rewrite a page can skip it when the candidate key hasn't changed.
func (t *Tree) Same(a, b *fingerprint.Record) (bool, error) {
	return gist.Same(a, b)
}

// Search walks the tree from the root, applying gist.Consistent at every
// page to decide which entries to descend into or accept as leaf hits,
// under the given search strategy (EQ/MATCH/NEQ).
func (t *Tree) Search(ctx context.Context, q *fingerprint.Record, strategy gist.Strategy) (hits []SearchHit, err error) {
	if q == nil {
		return nil, errors.New("rtree: nil query")
	}

	ctx, end := telemetry.StartSpan(ctx, "rtree.Search", t.rootID)
	start := time.Now()
	defer func() {
		end(&err)
		metrics.Get().SearchesTotal.WithLabelValues(strategyLabel(strategy)).Inc()
		metrics.Get().SearchDuration.WithLabelValues(strategyLabel(strategy)).Observe(time.Since(start).Seconds())
	}()

	t.mu.RLock()
	defer t.mu.RUnlock()

	query := gist.Compress(q)
	err = t.searchPage(ctx, t.rootID, query, strategy, &hits)
	return hits, err
}

func (t *Tree) searchPage(ctx context.Context, pageID string, q *fingerprint.Record, strategy gist.Strategy, hits *[]SearchHit) error {
	page, recs, childIDs, err := t.loadEntries(ctx, pageID)
	if err != nil {
		return err
	}

	if page.IsLeaf {
		for _, rec := range recs {
			accept, _ := gist.Consistent(rec, q, strategy)
			if accept {
				*hits = append(*hits, SearchHit{PageID: pageID, Record: rec, Score: similarityScore(rec, q)})
			}
		}
		return nil
	}

	for i, rec := range recs {
		accept, _ := gist.Consistent(rec, q, strategy)
		if !accept {
			continue
		}
		if err := t.searchPage(ctx, childIDs[i], q, strategy, hits); err != nil {
			return err
		}
	}
	return nil
}

func similarityScore(rec, q *fingerprint.Record) float64 {
	return similarity.MatchCPFM(q, rec)
}

func strategyLabel(s gist.Strategy) string {
	switch s {
	case gist.StrategyEQ:
		return "eq"
	case gist.StrategyMatch:
		return "match"
	case gist.StrategyNeq:
		return "neq"
	default:
		return "unknown"
	}
}
