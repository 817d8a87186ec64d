package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// RunMigrations exécute les migrations de base de données
func RunMigrations(db *DB) error {
	logrus.Info("Running simulation database migrations...")

	migrations := []string{
		createMatchResultsTable,
		createMatchMapsTable,
		createIndexes,
	}

	for i, migration := range migrations {
		logrus.WithField("migration", i+1).Debug("Executing migration")

		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration %d: %w", i+1, err)
		}
	}

	logrus.Info("Simulation database migrations completed successfully")
	return nil
}

// Migration 1: Table des résultats de match
const createMatchResultsTable = `
CREATE TABLE IF NOT EXISTS match_results (
    id UUID PRIMARY KEY,
    team_a_id UUID NOT NULL,
    team_b_id UUID NOT NULL,
    team_a_name VARCHAR(100) NOT NULL,
    team_b_name VARCHAR(100) NOT NULL,
    winner_team_id UUID NOT NULL,
    map_wins_a INTEGER NOT NULL DEFAULT 0,
    map_wins_b INTEGER NOT NULL DEFAULT 0,
    seed BIGINT NOT NULL,
    total_rounds INTEGER NOT NULL DEFAULT 0,

    -- Document complet du résultat (timelines incluses)
    result JSONB NOT NULL DEFAULT '{}',

    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);`

// Migration 2: Table des cartes jouées par match
const createMatchMapsTable = `
CREATE TABLE IF NOT EXISTS match_maps (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    match_id UUID NOT NULL REFERENCES match_results(id) ON DELETE CASCADE,
    map_number INTEGER NOT NULL,
    map_id VARCHAR(50) NOT NULL,
    winner_team_id UUID NOT NULL,
    score_a INTEGER NOT NULL DEFAULT 0,
    score_b INTEGER NOT NULL DEFAULT 0,
    overtime BOOLEAN NOT NULL DEFAULT false,

    -- Résumés de rounds de la carte
    rounds JSONB NOT NULL DEFAULT '[]',

    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,

    UNIQUE(match_id, map_number)
);`

// Migration 3: Index pour les performances
const createIndexes = `
-- Index pour match_results
CREATE INDEX IF NOT EXISTS idx_match_results_team_a_id ON match_results(team_a_id);
CREATE INDEX IF NOT EXISTS idx_match_results_team_b_id ON match_results(team_b_id);
CREATE INDEX IF NOT EXISTS idx_match_results_winner ON match_results(winner_team_id);
CREATE INDEX IF NOT EXISTS idx_match_results_created_at ON match_results(created_at);

-- Index pour match_maps
CREATE INDEX IF NOT EXISTS idx_match_maps_match_id ON match_maps(match_id);
CREATE INDEX IF NOT EXISTS idx_match_maps_map_id ON match_maps(map_id);`
