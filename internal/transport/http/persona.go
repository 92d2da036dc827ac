package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sgmusicchat/newsite/internal/app"
	"github.com/sgmusicchat/newsite/internal/domain"
)

// PersonaCreator is the minimal interface needed to generate a persona.
type PersonaCreator interface {
	GeneratePersona(ctx context.Context, in app.GeneratePersonaInput) (app.GeneratePersonaResult, error)
}

// HandleGeneratePersona returns an HTTP handler for persona generation.
func HandleGeneratePersona(svc PersonaCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req generatePersonaRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		res, err := svc.GeneratePersona(r.Context(), app.GeneratePersonaInput{
			HexColors: req.HexColors,
			Intent:    req.Intent,
			ImageData: req.ImageData,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrColorCount):
				writeError(w, http.StatusBadRequest, codeInvalidColorCount, err.Error())
			case errors.Is(err, domain.ErrInvalidHexColor):
				writeError(w, http.StatusBadRequest, codeInvalidHexColor, err.Error())
			case errors.Is(err, domain.ErrPersonaSchema):
				writeError(w, http.StatusBadGateway, codePersonaSchema, "persona generation returned an invalid document")
			case errors.Is(err, domain.ErrSessionConflict):
				writeError(w, http.StatusConflict, codeSessionConflict, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusOK, generatePersonaResponse{
			SessionID: res.SessionID,
			Persona:   res.Document,
		})
	}
}

type generatePersonaRequest struct {
	HexColors []string `json:"hex_colors"`
	Intent    string   `json:"intent"`
	ImageData string   `json:"image_data"`
}

type generatePersonaResponse struct {
	SessionID string          `json:"session_id"`
	Persona   json.RawMessage `json:"persona"`
}

// PersonaFetcher is the minimal interface needed to look up a stored persona.
type PersonaFetcher interface {
	RetrievePersona(ctx context.Context, sessionID string) (domain.Persona, error)
}

// HandleRetrievePersona returns an HTTP handler serving stored personas by
// session id. The id is the final path segment.
func HandleRetrievePersona(svc PersonaFetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		sessionID := strings.TrimPrefix(r.URL.Path, "/api/v1/persona/retrieve/")
		if sessionID == "" || strings.Contains(sessionID, "/") {
			writeError(w, http.StatusNotFound, codeSessionNotFound, "session not found")
			return
		}

		p, err := svc.RetrievePersona(r.Context(), sessionID)
		if err != nil {
			if errors.Is(err, domain.ErrPersonaNotFound) {
				writeError(w, http.StatusNotFound, codeSessionNotFound, "session not found")
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, retrievePersonaResponse{
			SessionID: p.SessionID,
			HexColors: p.HexColors,
			Persona:   p.Document,
			CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
}

type retrievePersonaResponse struct {
	SessionID string          `json:"session_id"`
	HexColors []string        `json:"hex_colors"`
	Persona   json.RawMessage `json:"persona"`
	CreatedAt string          `json:"created_at"`
}
