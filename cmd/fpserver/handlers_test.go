package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pdtgct/music-fingerprint/internal/fingerprint"
	"github.com/pdtgct/music-fingerprint/internal/rtree"
	"github.com/pdtgct/music-fingerprint/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&store.Page{}))

	tree, err := rtree.New(context.Background(), store.NewGormPageStore(db))
	require.NoError(t, err)

	return newRouter(&handlers{tree: tree})
}

func sampleRecordText(t *testing.T) string {
	t.Helper()
	var r [fingerprint.RLen]byte
	var dom [fingerprint.DomLen]byte
	for i := range r {
		r[i] = byte(i)
	}
	for i := range dom {
		dom[i] = byte(i * 3)
	}
	rec, err := fingerprint.NewRecord(180, 192, 0, r, dom, []uint32{1, 2, 3})
	require.NoError(t, err)
	text, err := fingerprint.Format(rec)
	require.NoError(t, err)
	return text
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInsertFingerprintAndSearchRoundTrip(t *testing.T) {
	router := newTestRouter(t)
	text := sampleRecordText(t)

	insertRec := doJSON(t, router, http.MethodPost, "/v1/fingerprints", insertRequest{Text: text})
	require.Equal(t, http.StatusCreated, insertRec.Code)

	var insertResp insertResponse
	require.NoError(t, json.Unmarshal(insertRec.Body.Bytes(), &insertResp))
	assert.NotEmpty(t, insertResp.PageID)

	searchRec := doJSON(t, router, http.MethodPost, "/v1/search", searchRequest{Text: text, Strategy: "eq"})
	require.Equal(t, http.StatusOK, searchRec.Code)

	var searchResp searchResponse
	require.NoError(t, json.Unmarshal(searchRec.Body.Bytes(), &searchResp))
	require.Len(t, searchResp.Hits, 1)
	assert.Equal(t, insertResp.PageID, searchResp.Hits[0].PageID)
}

func TestInsertFingerprintRejectsMalformedText(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/v1/fingerprints", insertRequest{Text: "not-a-record"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSearchRejectsUnknownStrategy(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/v1/search", searchRequest{Text: sampleRecordText(t), Strategy: "bogus"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
