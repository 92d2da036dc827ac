package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sgmusicchat/newsite/internal/clock"
	"github.com/sgmusicchat/newsite/internal/domain"
)

type fakeGenerator struct {
	response string
	err      error
	lastUser string
}

func (f *fakeGenerator) Generate(_ context.Context, _, user string) (string, error) {
	f.lastUser = user
	return f.response, f.err
}

type fakePersonaRepo struct {
	saved map[string]domain.Persona
}

func newFakePersonaRepo() *fakePersonaRepo {
	return &fakePersonaRepo{saved: make(map[string]domain.Persona)}
}

func (f *fakePersonaRepo) SavePersona(_ context.Context, p domain.Persona) (int64, error) {
	if _, ok := f.saved[p.SessionID]; ok {
		return 0, domain.ErrSessionConflict
	}
	f.saved[p.SessionID] = p
	return int64(len(f.saved)), nil
}

func (f *fakePersonaRepo) GetPersonaBySession(_ context.Context, sessionID string) (domain.Persona, error) {
	p, ok := f.saved[sessionID]
	if !ok {
		return domain.Persona{}, domain.ErrPersonaNotFound
	}
	return p, nil
}

const validPersonaDoc = `{
	"module": "neo_y2k",
	"metadata": {"alias": "xX_stardust_Xx", "aura": "electric", "alignment": "chaotic neon", "bio": "3am forum lurker"},
	"visuals": {"bg_color": "#FF00FF", "accent_color": "#00FFFF", "font_type": "comic", "border_style": "dashed"},
	"audio": {"prompt": "glitchy synthpop", "tempo": 140, "vibe_weight": 0.8}
}`

func validColors() []string { return []string{"#FF00FF", "#00FFFF", "#1A2B3C"} }

func TestGeneratePersona_HappyPath(t *testing.T) {
	gen := &fakeGenerator{response: validPersonaDoc}
	repo := newFakePersonaRepo()
	svc := NewPersonaService(gen, repo, clock.NewFixed(time.Now()))

	res, err := svc.GeneratePersona(context.Background(), GeneratePersonaInput{HexColors: validColors(), Intent: "dreamy"})
	if err != nil {
		t.Fatalf("generate persona: %v", err)
	}
	if res.SessionID == "" {
		t.Fatal("expected a session id")
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected persona saved, got %d", len(repo.saved))
	}
	if !strings.Contains(gen.lastUser, "#FF00FF") {
		t.Fatalf("expected colors in prompt, got %q", gen.lastUser)
	}
	if !strings.Contains(gen.lastUser, "dreamy") {
		t.Fatalf("expected intent in prompt, got %q", gen.lastUser)
	}
}

func TestGeneratePersona_ColorValidation(t *testing.T) {
	svc := NewPersonaService(&fakeGenerator{}, newFakePersonaRepo(), clock.NewFixed(time.Now()))

	if _, err := svc.GeneratePersona(context.Background(), GeneratePersonaInput{HexColors: []string{"#FF00FF"}}); !errors.Is(err, domain.ErrColorCount) {
		t.Fatalf("expected ErrColorCount, got %v", err)
	}

	colors := []string{"#FF00FF", "#00FFFF", "red"}
	if _, err := svc.GeneratePersona(context.Background(), GeneratePersonaInput{HexColors: colors}); !errors.Is(err, domain.ErrInvalidHexColor) {
		t.Fatalf("expected ErrInvalidHexColor, got %v", err)
	}
}

func TestGeneratePersona_RejectsBadDocuments(t *testing.T) {
	t.Run("not json", func(t *testing.T) {
		gen := &fakeGenerator{response: "sorry, here is your persona:"}
		svc := NewPersonaService(gen, newFakePersonaRepo(), clock.NewFixed(time.Now()))

		if _, err := svc.GeneratePersona(context.Background(), GeneratePersonaInput{HexColors: validColors()}); !errors.Is(err, domain.ErrPersonaSchema) {
			t.Fatalf("expected ErrPersonaSchema, got %v", err)
		}
	})

	t.Run("missing section", func(t *testing.T) {
		gen := &fakeGenerator{response: `{"module": "neo_y2k", "metadata": {}, "visuals": {}}`}
		svc := NewPersonaService(gen, newFakePersonaRepo(), clock.NewFixed(time.Now()))

		if _, err := svc.GeneratePersona(context.Background(), GeneratePersonaInput{HexColors: validColors()}); !errors.Is(err, domain.ErrPersonaSchema) {
			t.Fatalf("expected ErrPersonaSchema, got %v", err)
		}
	})
}

func TestGeneratePersona_GeneratorFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("rate limited")}
	svc := NewPersonaService(gen, newFakePersonaRepo(), clock.NewFixed(time.Now()))

	if _, err := svc.GeneratePersona(context.Background(), GeneratePersonaInput{HexColors: validColors()}); err == nil {
		t.Fatal("expected generator failure to surface")
	}
}

func TestRetrievePersona(t *testing.T) {
	gen := &fakeGenerator{response: validPersonaDoc}
	repo := newFakePersonaRepo()
	svc := NewPersonaService(gen, repo, clock.NewFixed(time.Now()))

	res, err := svc.GeneratePersona(context.Background(), GeneratePersonaInput{HexColors: validColors()})
	if err != nil {
		t.Fatalf("generate persona: %v", err)
	}

	p, err := svc.RetrievePersona(context.Background(), res.SessionID)
	if err != nil {
		t.Fatalf("retrieve persona: %v", err)
	}
	if p.SessionID != res.SessionID {
		t.Fatalf("expected session %s, got %s", res.SessionID, p.SessionID)
	}

	if _, err := svc.RetrievePersona(context.Background(), "missing"); !errors.Is(err, domain.ErrPersonaNotFound) {
		t.Fatalf("expected ErrPersonaNotFound, got %v", err)
	}
}
