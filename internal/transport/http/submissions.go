package http

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/sgmusicchat/newsite/internal/domain"
)

// SubmissionRecorder is the minimal interface needed to log intake to bronze.
type SubmissionRecorder interface {
	AppendUserSubmission(ctx context.Context, form map[string]any, ip string) (int64, error)
	AppendAdminEdit(ctx context.Context, admin, editType string, edit map[string]any) (int64, error)
}

// HandleUserSubmission returns an HTTP handler accepting visitor event
// submissions. The form is stored verbatim; promotion happens later.
func HandleUserSubmission(svc SubmissionRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var form map[string]any
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil || len(form) == 0 {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if ua := r.Header.Get("User-Agent"); ua != "" {
			form["user_agent"] = ua
		}

		id, err := svc.AppendUserSubmission(r.Context(), form, clientIP(r))
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]int64{"bronze_id": id})
	}
}

// HandleAdminEdit returns an HTTP handler recording manual admin changes.
func HandleAdminEdit(svc SubmissionRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req adminEditRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		id, err := svc.AppendAdminEdit(r.Context(), req.AdminUser, req.EditType, req.Edit)
		if err != nil {
			if errors.Is(err, domain.ErrSourceRequired) {
				writeError(w, http.StatusBadRequest, codeSourceRequired, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]int64{"bronze_id": id})
	}
}

type adminEditRequest struct {
	AdminUser string         `json:"admin_user"`
	EditType  string         `json:"edit_type"`
	Edit      map[string]any `json:"edit"`
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
