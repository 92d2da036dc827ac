package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sgmusicchat/newsite/internal/app"
	"github.com/sgmusicchat/newsite/internal/domain"
)

// MockScrapeRunner is the minimal interface needed to run a mock scrape cycle.
type MockScrapeRunner interface {
	RunMockScrape(ctx context.Context, count int, includeBad bool) (app.ScrapeRunResult, error)
}

// HandleMockScrapeRun returns an HTTP handler that generates mock events,
// lands them in bronze and promotes the batch.
func HandleMockScrapeRun(runner MockScrapeRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		req := mockRunRequest{Count: 10}
		if r.ContentLength != 0 {
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
		}

		res, err := runner.RunMockScrape(r.Context(), req.Count, req.IncludeBad)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCount) {
				writeError(w, http.StatusBadRequest, codeInvalidCount, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, mockRunResponse{
			BronzeID:  res.BronzeID,
			Generated: res.Generated,
			Processed: res.Processed,
			Created:   res.Created,
			Malformed: res.Malformed,
		})
	}
}

type mockRunRequest struct {
	Count      int  `json:"count"`
	IncludeBad bool `json:"include_bad"`
}

type mockRunResponse struct {
	BronzeID  int64 `json:"bronze_id"`
	Generated int   `json:"generated"`
	Processed int   `json:"processed"`
	Created   int   `json:"created"`
	Malformed int   `json:"malformed"`
}

// BronzePromoter is the minimal interface needed to re-stage a bronze batch.
type BronzePromoter interface {
	RunPromote(ctx context.Context, bronzeID int64, sourceType string) (app.PromoteResult, error)
}

// HandleProcessBronze returns an HTTP handler that promotes an existing
// bronze batch into the staging tier.
func HandleProcessBronze(promoter BronzePromoter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req processBronzeRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.SourceType == "" {
			req.SourceType = "scraper"
		}

		res, err := promoter.RunPromote(r.Context(), req.BronzeID, req.SourceType)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrBatchNotFound):
				writeError(w, http.StatusNotFound, codeBatchNotFound, err.Error())
			case errors.Is(err, domain.ErrSourceRequired):
				writeError(w, http.StatusBadRequest, codeSourceRequired, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusOK, processBronzeResponse{
			BronzeID:  req.BronzeID,
			Processed: res.Processed,
			Created:   res.Created,
			Malformed: res.Malformed,
		})
	}
}

type processBronzeRequest struct {
	BronzeID   int64  `json:"bronze_id"`
	SourceType string `json:"source_type"`
}

type processBronzeResponse struct {
	BronzeID  int64 `json:"bronze_id"`
	Processed int   `json:"processed"`
	Created   int   `json:"created"`
	Malformed int   `json:"malformed"`
}
