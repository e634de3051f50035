package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pdtgct/music-fingerprint/internal/apierr"
	"github.com/pdtgct/music-fingerprint/internal/fingerprint"
	"github.com/pdtgct/music-fingerprint/internal/gist"
	"github.com/pdtgct/music-fingerprint/internal/metrics"
	"github.com/pdtgct/music-fingerprint/internal/rtree"
)

type handlers struct {
	tree *rtree.Tree
}

func recordServerError(operation string) {
	metrics.Get().ErrorsTotal.WithLabelValues("internal", operation).Inc()
}

func (h *handlers) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type insertRequest struct {
	Text string `json:"text" binding:"required"`
}

type insertResponse struct {
	PageID string `json:"page_id"`
}

// insertFingerprint parses the text-form record in the body and inserts
// it, returning the ID of the leaf page it landed on.
func (h *handlers) insertFingerprint(c *gin.Context) {
	var req insertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAPIError(c, apierr.BadRequest(err.Error()))
		return
	}

	rec, err := fingerprint.Parse(req.Text)
	if err != nil {
		writeAPIError(c, apierr.ValidationError("text", err.Error()))
		return
	}

	pageID, err := h.tree.Insert(c.Request.Context(), rec)
	if err != nil {
		writeAPIError(c, apierr.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, insertResponse{PageID: pageID})
}

type searchRequest struct {
	Text     string `json:"text" binding:"required"`
	Strategy string `json:"strategy" binding:"required"`
}

type searchHitResponse struct {
	PageID string  `json:"page_id"`
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
}

type searchResponse struct {
	Hits []searchHitResponse `json:"hits"`
}

// search parses the text-form query and strategy (eq/neq/match) in the
// body and returns every consistent match.
func (h *handlers) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAPIError(c, apierr.BadRequest(err.Error()))
		return
	}

	rec, err := fingerprint.Parse(req.Text)
	if err != nil {
		writeAPIError(c, apierr.ValidationError("text", err.Error()))
		return
	}

	strategy, err := parseStrategy(req.Strategy)
	if err != nil {
		writeAPIError(c, apierr.ValidationError("strategy", err.Error()))
		return
	}

	hits, err := h.tree.Search(c.Request.Context(), rec, strategy)
	if err != nil {
		writeAPIError(c, apierr.InternalError(err.Error()))
		return
	}

	resp := searchResponse{Hits: make([]searchHitResponse, 0, len(hits))}
	for _, hit := range hits {
		text, err := fingerprint.Format(hit.Record)
		if err != nil {
			writeAPIError(c, apierr.InternalError(err.Error()))
			return
		}
		resp.Hits = append(resp.Hits, searchHitResponse{PageID: hit.PageID, Text: text, Score: hit.Score})
	}
	c.JSON(http.StatusOK, resp)
}

func parseStrategy(s string) (gist.Strategy, error) {
	switch s {
	case "eq":
		return gist.StrategyEQ, nil
	case "neq":
		return gist.StrategyNeq, nil
	case "match":
		return gist.StrategyMatch, nil
	default:
		return 0, apierr.BadRequest("strategy must be eq, neq or match")
	}
}

func writeAPIError(c *gin.Context, apiErr *apierr.APIError) {
	c.JSON(apiErr.Status, apiErr)
}
