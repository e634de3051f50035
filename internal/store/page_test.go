package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) PageStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Page{}))
	return NewGormPageStore(db)
}

func TestPagePutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	page := &Page{ID: "leaf-1", ParentID: "node-1", IsLeaf: true, Blob: []byte("blob-bytes")}
	require.NoError(t, s.Put(ctx, page))

	got, err := s.Get(ctx, "leaf-1")
	require.NoError(t, err)
	assert.Equal(t, page.ParentID, got.ParentID)
	assert.True(t, got.IsLeaf)
	assert.Equal(t, page.Blob, got.Blob)
}

func TestPageGetMissingReturnsErrPageNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestPagePutOverwritesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, &Page{ID: "p1", Blob: []byte("v1")}))
	require.NoError(t, s.Put(ctx, &Page{ID: "p1", Blob: []byte("v2")}))

	got, err := s.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got.Blob)
}

func TestListChildren(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, &Page{ID: "c1", ParentID: "root", IsLeaf: true}))
	require.NoError(t, s.Put(ctx, &Page{ID: "c2", ParentID: "root", IsLeaf: true}))
	require.NoError(t, s.Put(ctx, &Page{ID: "other", ParentID: "elsewhere", IsLeaf: true}))

	children, err := s.ListChildren(ctx, "root")
	require.NoError(t, err)
	assert.Len(t, children, 2)
}

func TestPageDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, &Page{ID: "to-delete"}))
	require.NoError(t, s.Delete(ctx, "to-delete"))

	_, err := s.Get(ctx, "to-delete")
	assert.ErrorIs(t, err, ErrPageNotFound)
}
