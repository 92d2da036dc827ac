package app

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/sgmusicchat/newsite/internal/clock"
	"github.com/sgmusicchat/newsite/internal/domain"
)

type PersonaGenerator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

type PersonaRepository interface {
	SavePersona(ctx context.Context, p domain.Persona) (int64, error)
	GetPersonaBySession(ctx context.Context, sessionID string) (domain.Persona, error)
}

// PersonaService turns webcam-extracted colors into a retro persona document
// via an LLM. It is independent of the event pipeline.
type PersonaService struct {
	gen   PersonaGenerator
	repo  PersonaRepository
	clock clock.Clock
}

func NewPersonaService(gen PersonaGenerator, repo PersonaRepository, clk clock.Clock) *PersonaService {
	return &PersonaService{gen: gen, repo: repo, clock: clk}
}

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

var personaSections = []string{"module", "metadata", "visuals", "audio"}

const personaSystemPrompt = `You are a MySpace-era digital persona synthesizer from 2006.
Given 3 hex color codes extracted from a pixelated webcam capture, generate a retro internet identity.
Bright/warm colors map to the "neo_y2k" module, dark/cool colors to "glitch_grunge".
Return ONLY a JSON object with exactly these top-level keys:
"module" (string), "metadata" (object with alias, aura, alignment, bio),
"visuals" (object with bg_color, accent_color, font_type, border_style),
"audio" (object with prompt, tempo, vibe_weight).
No markdown, no explanations, no code blocks.`

type GeneratePersonaInput struct {
	HexColors []string
	Intent    string
	ImageData string
}

type GeneratePersonaResult struct {
	SessionID string
	Document  json.RawMessage
}

// GeneratePersona validates the colors, asks the LLM for a persona document,
// verifies its shape and stores it under a fresh session id.
func (s *PersonaService) GeneratePersona(ctx context.Context, in GeneratePersonaInput) (GeneratePersonaResult, error) {
	if len(in.HexColors) != 3 {
		return GeneratePersonaResult{}, domain.ErrColorCount
	}
	for _, c := range in.HexColors {
		if !hexColorPattern.MatchString(c) {
			return GeneratePersonaResult{}, domain.ErrInvalidHexColor
		}
	}
	intent := in.Intent
	if intent == "" {
		intent = "default"
	}

	var prompt strings.Builder
	prompt.WriteString("Generate a MySpace persona from these colors:\n\n")
	for i, c := range in.HexColors {
		fmt.Fprintf(&prompt, "Color %d: %s\n", i+1, c)
	}
	fmt.Fprintf(&prompt, "\nUser vibe preference: %s\n\nReturn valid JSON matching the schema.", intent)

	raw, err := s.gen.Generate(ctx, personaSystemPrompt, prompt.String())
	if err != nil {
		return GeneratePersonaResult{}, fmt.Errorf("generate persona: %w", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return GeneratePersonaResult{}, fmt.Errorf("%w: %v", domain.ErrPersonaSchema, err)
	}
	for _, key := range personaSections {
		if _, ok := doc[key]; !ok {
			return GeneratePersonaResult{}, domain.ErrPersonaSchema
		}
	}

	sessionID := uuid.NewString()
	if _, err := s.repo.SavePersona(ctx, domain.Persona{
		SessionID: sessionID,
		HexColors: in.HexColors,
		Document:  json.RawMessage(raw),
		ImageData: in.ImageData,
		CreatedAt: s.clock.Now(),
	}); err != nil {
		return GeneratePersonaResult{}, fmt.Errorf("save persona: %w", err)
	}

	return GeneratePersonaResult{SessionID: sessionID, Document: json.RawMessage(raw)}, nil
}

// RetrievePersona returns the stored persona or domain.ErrPersonaNotFound.
func (s *PersonaService) RetrievePersona(ctx context.Context, sessionID string) (domain.Persona, error) {
	return s.repo.GetPersonaBySession(ctx, sessionID)
}
