package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS team_members (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) UNIQUE NOT NULL,
		full_name VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		privileges TEXT[] NOT NULL DEFAULT '{}',
		dashboard_role VARCHAR(100),
		verified BOOLEAN NOT NULL DEFAULT FALSE,
		added_by VARCHAR(255) NOT NULL DEFAULT '',
		is_owner BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	// At most one row may carry is_owner = TRUE.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_team_members_single_owner ON team_members(is_owner) WHERE is_owner`,

	`CREATE TABLE IF NOT EXISTS member_tokens (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		member_id UUID NOT NULL REFERENCES team_members(id) ON DELETE CASCADE,
		purpose VARCHAR(20) NOT NULL,
		token_hash VARCHAR(255) NOT NULL UNIQUE,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_member_tokens_member_id ON member_tokens(member_id)`,

	// Migration: dashboard labels for members invited before roles existed
	`UPDATE team_members SET dashboard_role = 'owner' WHERE is_owner AND dashboard_role IS NULL`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
