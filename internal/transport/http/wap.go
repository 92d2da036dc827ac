package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sgmusicchat/newsite/internal/app"
	"github.com/sgmusicchat/newsite/internal/domain"
)

// AuditRunner is the minimal interface needed to run a standalone audit pass.
type AuditRunner interface {
	Audit(ctx context.Context) (domain.AuditFinding, error)
}

// HandleAudit returns an HTTP handler that audits the staging tier without
// publishing.
func HandleAudit(auditor AuditRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		finding, err := auditor.Audit(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		summary := make(map[string]int, len(finding.Summary))
		for kind, n := range finding.Summary {
			summary[string(kind)] = n
		}

		writeJSON(w, http.StatusOK, auditResponse{
			ErrorCount:       finding.ErrorCount,
			QuarantinedCount: finding.QuarantinedCount,
			RestoredCount:    finding.RestoredCount,
			Summary:          summary,
		})
	}
}

type auditResponse struct {
	ErrorCount       int            `json:"error_count"`
	QuarantinedCount int            `json:"quarantined_count"`
	RestoredCount    int            `json:"restored_count"`
	Summary          map[string]int `json:"summary"`
}

// PublishRunner is the minimal interface needed to run an audit-then-publish
// cycle.
type PublishRunner interface {
	RunPublish(ctx context.Context, batchSize int) (app.PublishResult, error)
}

// HandlePublish returns an HTTP handler for the gated publish cycle. A failed
// audit yields 200 with status "failed"; the request itself succeeded.
func HandlePublish(runner PublishRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req publishRequest
		if r.ContentLength != 0 {
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
		}

		res, err := runner.RunPublish(r.Context(), req.BatchSize)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidBatchSize) {
				writeError(w, http.StatusBadRequest, codeInvalidBatchSize, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, publishResponse{
			Status:           string(res.Status),
			ErrorCount:       res.ErrorCount,
			QuarantinedCount: res.QuarantinedCount,
			PublishedCount:   res.PublishedCount,
			Message:          res.Message,
		})
	}
}

type publishRequest struct {
	BatchSize int `json:"batch_size"`
}

type publishResponse struct {
	Status           string `json:"status"`
	ErrorCount       int    `json:"error_count"`
	QuarantinedCount int    `json:"quarantined_count"`
	PublishedCount   int    `json:"published_count"`
	Message          string `json:"message"`
}

// TierCounter is the minimal interface needed to report tier counts.
type TierCounter interface {
	Metrics(ctx context.Context) (domain.TierCounts, error)
}

// HandlePipelineMetrics returns an HTTP handler reporting record counts per
// pipeline tier.
func HandlePipelineMetrics(counter TierCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		counts, err := counter.Metrics(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, tierCountsResponse{
			Staged:      counts.Staged,
			Clean:       counts.Clean,
			Quarantined: counts.Quarantined,
			Published:   counts.Published,
		})
	}
}

type tierCountsResponse struct {
	Staged      int64 `json:"staged"`
	Clean       int64 `json:"clean"`
	Quarantined int64 `json:"quarantined"`
	Published   int64 `json:"published"`
}
