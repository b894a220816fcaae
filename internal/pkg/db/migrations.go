package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{
		name: "faculties table",
		sql: `
		CREATE TABLE IF NOT EXISTS faculties (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL UNIQUE,
			total_points INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_faculties_points ON faculties(total_points DESC, name ASC);
		`,
	},
	{
		name: "games table",
		sql: `
		CREATE TABLE IF NOT EXISTS games (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL UNIQUE,
			type TEXT NOT NULL CHECK (type IN ('TEAM', 'INDIVIDUAL')),
			point_weight INTEGER NOT NULL DEFAULT 1 CHECK (point_weight >= 1),
			manager_id UUID,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		`,
	},
	{
		name: "players and teams tables",
		sql: `
		CREATE TABLE IF NOT EXISTS players (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			faculty_id UUID NOT NULL REFERENCES faculties(id) ON DELETE CASCADE,
			semester TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_players_faculty ON players(faculty_id);

		CREATE TABLE IF NOT EXISTS teams (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			faculty_id UUID NOT NULL REFERENCES faculties(id) ON DELETE CASCADE,
			game_id UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_teams_faculty ON teams(faculty_id);
		`,
	},
	{
		name: "matches table",
		sql: `
		CREATE TABLE IF NOT EXISTS matches (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			game_id UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
			start_time TIMESTAMPTZ NOT NULL,
			venue TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'UPCOMING' CHECK (status IN ('UPCOMING', 'LIVE', 'FINISHED')),
			winner_id UUID,
			points_applied_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_matches_status ON matches(status);
		`,
	},
	{
		name: "match_participants table",
		sql: `
		CREATE TABLE IF NOT EXISTS match_participants (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			match_id UUID NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
			team_id UUID REFERENCES teams(id) ON DELETE CASCADE,
			player_id UUID REFERENCES players(id) ON DELETE CASCADE,
			score INTEGER NOT NULL DEFAULT 0 CHECK (score >= 0),
			points_earned INTEGER NOT NULL DEFAULT 0,
			result TEXT CHECK (result IN ('WIN', 'LOSS', 'DRAW')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT participant_single_entrant CHECK ((team_id IS NULL) <> (player_id IS NULL))
		);
		CREATE INDEX IF NOT EXISTS idx_participants_match ON match_participants(match_id);
		CREATE INDEX IF NOT EXISTS idx_participants_team ON match_participants(team_id);
		CREATE INDEX IF NOT EXISTS idx_participants_player ON match_participants(player_id);
		`,
	},
	{
		name: "participant_owners view",
		sql: `
		CREATE OR REPLACE VIEW participant_owners AS
		SELECT
			mp.id AS participant_id,
			COALESCE(t.faculty_id, p.faculty_id) AS faculty_id,
			COALESCE(t.name, p.name) AS display_name,
			CASE WHEN mp.team_id IS NOT NULL THEN 'team' ELSE 'player' END AS kind
		FROM match_participants mp
		LEFT JOIN teams t ON t.id = mp.team_id
		LEFT JOIN players p ON p.id = mp.player_id;
		`,
	},
}

// Migrate applies the schema. Every statement is idempotent so it runs on
// each start.
func Migrate(ctx context.Context, q Querier) error {
	log.Info().Msg("Running database migrations...")

	for i, m := range migrations {
		if _, err := q.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("migration %d (%s): %w", i+1, m.name, err)
		}
		log.Info().Int("step", i+1).Str("migration", m.name).Msg("Migration applied")
	}

	log.Info().Msg("All migrations completed successfully")
	return nil
}
