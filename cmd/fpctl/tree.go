package main

import (
	"context"
	"fmt"

	"github.com/pdtgct/music-fingerprint/internal/rtree"
	"github.com/pdtgct/music-fingerprint/internal/store"
)

// openTree opens the configured PageStore and wraps it in a Tree, the
// way fpserver's startup does — fpctl has no long-lived cache, so it
// omits rtree.WithNodeCache and pays the deserialization cost on every
// invocation.
func openTree(ctx context.Context) (*rtree.Tree, error) {
	db, err := store.Open(storeConfig())
	if err != nil {
		return nil, fmt.Errorf("fpctl: open store: %w", err)
	}
	pageStore := store.NewGormPageStore(db)
	tree, err := rtree.New(ctx, pageStore)
	if err != nil {
		return nil, fmt.Errorf("fpctl: open tree: %w", err)
	}
	return tree, nil
}
