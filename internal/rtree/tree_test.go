package rtree

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pdtgct/music-fingerprint/internal/fingerprint"
	"github.com/pdtgct/music-fingerprint/internal/gist"
	"github.com/pdtgct/music-fingerprint/internal/store"
)

func newTestTree(t *testing.T, maxEntries int) *Tree {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&store.Page{}))

	pageStore := store.NewGormPageStore(db)
	tree, err := New(context.Background(), pageStore, WithMaxEntries(maxEntries))
	require.NoError(t, err)
	return tree
}

func makeRecord(t *testing.T, seed int64, songlen, cpLen int) *fingerprint.Record {
	t.Helper()
	rnd := rand.New(rand.NewSource(seed))
	var r [fingerprint.RLen]byte
	var dom [fingerprint.DomLen]byte
	rnd.Read(r[:])
	rnd.Read(dom[:])
	cprint := make([]uint32, cpLen)
	for i := range cprint {
		cprint[i] = rnd.Uint32()
	}
	rec, err := fingerprint.NewRecord(songlen, 192, 0, r, dom, cprint)
	require.NoError(t, err)
	return rec
}

func mustInsert(t *testing.T, tree *Tree, ctx context.Context, rec *fingerprint.Record) PageID {
	t.Helper()
	pageID, err := tree.Insert(ctx, rec)
	require.NoError(t, err)
	return pageID
}

func TestTreeInsertReturnsLandingPage(t *testing.T) {
	tree := newTestTree(t, 64)
	ctx := context.Background()

	pageID := mustInsert(t, tree, ctx, makeRecord(t, 1, 200, 500))
	assert.NotEmpty(t, pageID)
}

func TestTreeInsertAndSearchSelfMatch(t *testing.T) {
	tree := newTestTree(t, 64)
	ctx := context.Background()

	rec := makeRecord(t, 1, 200, 500)
	mustInsert(t, tree, ctx, rec)

	hits, err := tree.Search(ctx, rec, gist.StrategyEQ)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, 1, len(hits))
}

func TestTreeInsertManyForcesPageSplits(t *testing.T) {
	tree := newTestTree(t, 4)
	ctx := context.Background()

	var inserted []*fingerprint.Record
	for i := 0; i < 40; i++ {
		rec := makeRecord(t, int64(i), 60+i, 80)
		mustInsert(t, tree, ctx, rec)
		inserted = append(inserted, rec)
	}

	for _, rec := range inserted {
		hits, err := tree.Search(ctx, rec, gist.StrategyEQ)
		require.NoError(t, err)
		assert.NotEmpty(t, hits, "every inserted record must be found again by exact self-search")
	}
}

func TestTreeSearchNeqExcludesSelf(t *testing.T) {
	tree := newTestTree(t, 4)
	ctx := context.Background()

	rec := makeRecord(t, 2, 150, 80)
	mustInsert(t, tree, ctx, rec)

	hits, err := tree.Search(ctx, rec, gist.StrategyNeq)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestTreeSearchMatchFindsSimilarRecordsAcrossSplits(t *testing.T) {
	tree := newTestTree(t, 4)
	ctx := context.Background()

	// Insert four byte-identical records built from the same seed, plus
	// a batch of unrelated noise, so the
	// index is forced to split pages while a MATCH query still has to
	// find the whole cluster regardless of which pages it landed on.
	base := makeRecord(t, 99, 180, 100)
	mustInsert(t, tree, ctx, base)
	for i := 0; i < 3; i++ {
		dup := makeRecord(t, 99, 180, 100)
		mustInsert(t, tree, ctx, dup)
	}
	for i := 0; i < 20; i++ {
		mustInsert(t, tree, ctx, makeRecord(t, int64(1000+i), 40+i, 80))
	}

	hits, err := tree.Search(ctx, base, gist.StrategyMatch)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(hits), 4, "all four identical-seed records must still be found as matches")
}

func TestTreeSameDelegatesToGistSame(t *testing.T) {
	tree := newTestTree(t, 64)
	a := makeRecord(t, 5, 120, 50)
	b := makeRecord(t, 5, 120, 50)
	c := makeRecord(t, 6, 120, 50)

	same, err := tree.Same(a, b)
	require.NoError(t, err)
	assert.True(t, same)

	same, err = tree.Same(a, c)
	require.NoError(t, err)
	assert.False(t, same)
}

func TestTreeCloseRunsCleanupHooksInLIFOOrder(t *testing.T) {
	tree := newTestTree(t, 64)
	var order []int
	tree.OnCleanup(func(context.Context) error { order = append(order, 1); return nil })
	tree.OnCleanup(func(context.Context) error { order = append(order, 2); return nil })
	require.NoError(t, tree.Close(context.Background()))
	assert.Equal(t, []int{2, 1}, order)
}
