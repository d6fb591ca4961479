package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dungeonmaister/gameserver/internal/game/state"
)

// ErrSaveNotFound is returned when a session has no saved game.
var ErrSaveNotFound = errors.New("save not found")

// SaveRepository persists full game-state snapshots as JSONB, one row per
// session. Saving again overwrites the previous snapshot.
type SaveRepository struct {
	db *pgxpool.Pool
}

// NewSaveRepository creates a SaveRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSaveRepository(db *pgxpool.Pool) *SaveRepository {
	return &SaveRepository{db: db}
}

// Save upserts the snapshot for a session.
//
// Precondition: sessionID must be non-empty; snapshot must be non-nil.
// Postcondition: A later Load for the same session returns this snapshot.
func (r *SaveRepository) Save(ctx context.Context, sessionID string, snapshot *state.GameState) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO saves (session_id, snapshot, saved_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (session_id)
		DO UPDATE SET snapshot = EXCLUDED.snapshot, saved_at = NOW()`,
		sessionID, payload,
	)
	if err != nil {
		return fmt.Errorf("upserting save: %w", err)
	}
	return nil
}

// Load returns the saved snapshot for a session.
//
// Postcondition: Returns the snapshot or ErrSaveNotFound.
func (r *SaveRepository) Load(ctx context.Context, sessionID string) (*state.GameState, error) {
	var payload []byte
	err := r.db.QueryRow(ctx,
		`SELECT snapshot FROM saves WHERE session_id = $1`,
		sessionID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSaveNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading save: %w", err)
	}

	var snapshot state.GameState
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &snapshot, nil
}

// Delete removes a session's save. Deleting a missing save is a no-op.
func (r *SaveRepository) Delete(ctx context.Context, sessionID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM saves WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("deleting save: %w", err)
	}
	return nil
}
