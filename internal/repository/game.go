package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sports-week-api/internal/model"
	"sports-week-api/internal/pkg/db"
)

const gameColumns = `id, name, type, point_weight, manager_id, created_at, updated_at`

// GameRepository handles game data persistence.
type GameRepository struct {
	pool *pgxpool.Pool
}

// NewGameRepository creates a new GameRepository instance.
func NewGameRepository(pool *pgxpool.Pool) *GameRepository {
	return &GameRepository{pool: pool}
}

func scanGame(row pgx.Row) (*model.Game, error) {
	var g model.Game
	err := row.Scan(
		&g.ID,
		&g.Name,
		&g.Type,
		&g.PointWeight,
		&g.ManagerID,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Create creates a new game.
func (r *GameRepository) Create(ctx context.Context, name string, gameType model.GameType, pointWeight int, managerID *uuid.UUID) (*model.Game, error) {
	const query = `
		INSERT INTO games (name, type, point_weight, manager_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING ` + gameColumns

	g, err := scanGame(db.Conn(ctx, r.pool).QueryRow(ctx, query, name, gameType, pointWeight, managerID))
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return g, nil
}

// GetByID retrieves a game by id.
func (r *GameRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Game, error) {
	const query = `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	g, err := scanGame(db.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return g, nil
}
