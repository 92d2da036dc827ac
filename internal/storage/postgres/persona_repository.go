package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sgmusicchat/newsite/internal/domain"
)

type PersonaRepository struct {
	pool *pgxpool.Pool
}

func NewPersonaRepository(pool *pgxpool.Pool) *PersonaRepository {
	return &PersonaRepository{pool: pool}
}

func (r *PersonaRepository) SavePersona(ctx context.Context, p domain.Persona) (int64, error) {
	const stmt = `
INSERT INTO personas (session_id, hex_colors, document, image_data, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, stmt,
		p.SessionID,
		p.HexColors,
		p.Document,
		p.ImageData,
		p.CreatedAt,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrSessionConflict
		}
		return 0, fmt.Errorf("save persona: %w", err)
	}
	return id, nil
}

func (r *PersonaRepository) GetPersonaBySession(ctx context.Context, sessionID string) (domain.Persona, error) {
	const query = `
SELECT id, session_id, hex_colors, document, image_data, created_at
FROM personas
WHERE session_id = $1`

	var p domain.Persona
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&p.ID,
		&p.SessionID,
		&p.HexColors,
		&p.Document,
		&p.ImageData,
		&p.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Persona{}, domain.ErrPersonaNotFound
		}
		return domain.Persona{}, fmt.Errorf("get persona: %w", err)
	}
	return p, nil
}
