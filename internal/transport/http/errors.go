package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidCount       = "invalid_count"
	codeInvalidBatchSize   = "invalid_batch_size"
	codeBatchNotFound      = "batch_not_found"
	codeSourceRequired     = "source_required"
	codeInvalidColorCount  = "invalid_color_count"
	codeInvalidHexColor    = "invalid_hex_color"
	codePersonaSchema      = "persona_schema_invalid"
	codeSessionNotFound    = "session_not_found"
	codeSessionConflict    = "session_conflict"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
