// Package rtree assembles the gist operators and a store.PageStore into
// a working Guttman-style R-tree: Insert descends via Penalty, splits
// overflowing pages via PickSplit, and propagates the resulting union
// keys back up to the root; Search descends via Consistent.
package rtree

import (
	"encoding/json"
	"fmt"

	"github.com/pdtgct/music-fingerprint/internal/fingerprint"
	"github.com/pdtgct/music-fingerprint/internal/store"
)

// pageBody is the page-local container format this module uses to hold
// several entries in one store.Page row: a leaf page's Records are
// compressed FP blobs; an internal page's Records are its children's UFP
// summaries, index-aligned with ChildIDs. Neither §4 nor §4.5 specifies
// a multi-entry page container (the spec's binary layout is per-record,
// §4.2/§4.5); JSON is this module's own infrastructure choice for it.
type pageBody struct {
	Records  [][]byte `json:"records"`
	ChildIDs []string `json:"child_ids,omitempty"`
}

func decodePage(page *store.Page) ([]*fingerprint.Record, []string, error) {
	if len(page.Blob) == 0 {
		return nil, nil, nil
	}
	var body pageBody
	if err := json.Unmarshal(page.Blob, &body); err != nil {
		return nil, nil, fmt.Errorf("rtree: decode page %s: %w", page.ID, err)
	}
	kind := fingerprint.KindUnion
	if page.IsLeaf {
		kind = fingerprint.KindRecord
	}
	recs := make([]*fingerprint.Record, len(body.Records))
	for i, blob := range body.Records {
		rec, err := fingerprint.Unmarshal(blob, kind)
		if err != nil {
			return nil, nil, fmt.Errorf("rtree: decode page %s entry %d: %w", page.ID, i, err)
		}
		recs[i] = rec
	}
	return recs, body.ChildIDs, nil
}

func encodePage(page *store.Page, recs []*fingerprint.Record, childIDs []string) error {
	body := pageBody{ChildIDs: childIDs}
	for i, rec := range recs {
		blob, err := fingerprint.Marshal(rec)
		if err != nil {
			return fmt.Errorf("rtree: encode page %s entry %d: %w", page.ID, i, err)
		}
		body.Records = append(body.Records, blob)
	}
	blob, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("rtree: encode page %s: %w", page.ID, err)
	}
	page.Blob = blob
	return nil
}
