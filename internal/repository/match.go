package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"simulation/internal/database"
	"simulation/internal/models"
)

// MatchRepositoryInterface définit les méthodes du repository des matchs
type MatchRepositoryInterface interface {
	Create(result *models.MatchResult) error
	GetByID(id uuid.UUID) (*models.MatchResult, error)
	List(teamID *uuid.UUID, limit, offset int) ([]*models.MatchRecord, error)
	Delete(id uuid.UUID) error
	CleanupOlderThan(days int) (int, error)
}

// MatchRepository implémente l'interface MatchRepositoryInterface
type MatchRepository struct {
	db *database.DB
}

// NewMatchRepository crée une nouvelle instance du repository des matchs
func NewMatchRepository(db *database.DB) MatchRepositoryInterface {
	return &MatchRepository{db: db}
}

// Create persiste un résultat de match avec ses cartes
func (r *MatchRepository) Create(result *models.MatchResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal match result: %w", err)
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO match_results (
			id, team_a_id, team_b_id, team_a_name, team_b_name,
			winner_team_id, map_wins_a, map_wins_b, seed, total_rounds, result
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = tx.Exec(query,
		result.MatchID, result.TeamAID, result.TeamBID,
		result.TeamAName, result.TeamBName, result.WinnerTeamID,
		result.TeamAMapWins, result.TeamBMapWins, result.Seed,
		result.TotalRounds, resultJSON)
	if err != nil {
		return fmt.Errorf("failed to insert match result: %w", err)
	}

	mapQuery := `
		INSERT INTO match_maps (
			match_id, map_number, map_id, winner_team_id,
			score_a, score_b, overtime, rounds
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for i, mapResult := range result.Maps {
		roundsJSON, err := json.Marshal(mapResult.Rounds)
		if err != nil {
			return fmt.Errorf("failed to marshal rounds for map %d: %w", i+1, err)
		}

		_, err = tx.Exec(mapQuery,
			result.MatchID, i+1, mapResult.MapID, mapResult.WinnerTeamID,
			mapResult.TeamAScore, mapResult.TeamBScore, mapResult.Overtime, roundsJSON)
		if err != nil {
			return fmt.Errorf("failed to insert map %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit match result: %w", err)
	}

	return nil
}

// GetByID récupère le document complet d'un match par son ID
func (r *MatchRepository) GetByID(id uuid.UUID) (*models.MatchResult, error) {
	var resultJSON []byte

	query := `SELECT result FROM match_results WHERE id = $1`

	if err := r.db.QueryRow(query, id).Scan(&resultJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("match result not found")
		}
		return nil, fmt.Errorf("failed to get match result: %w", err)
	}

	var result models.MatchResult
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match result: %w", err)
	}

	return &result, nil
}

// List récupère les en-têtes de matchs, filtrés par équipe si demandé
func (r *MatchRepository) List(teamID *uuid.UUID, limit, offset int) ([]*models.MatchRecord, error) {
	var records []*models.MatchRecord
	var rows *sql.Rows
	var err error

	if teamID != nil {
		query := `
			SELECT id, team_a_id, team_a_name, team_b_id, team_b_name,
			       winner_team_id, map_wins_a, map_wins_b, seed, total_rounds, created_at
			FROM match_results
			WHERE team_a_id = $1 OR team_b_id = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3`
		rows, err = r.db.Query(query, *teamID, limit, offset)
	} else {
		query := `
			SELECT id, team_a_id, team_a_name, team_b_id, team_b_name,
			       winner_team_id, map_wins_a, map_wins_b, seed, total_rounds, created_at
			FROM match_results
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2`
		rows, err = r.db.Query(query, limit, offset)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list match results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var record models.MatchRecord

		err := rows.Scan(
			&record.MatchID, &record.TeamAID, &record.TeamAName,
			&record.TeamBID, &record.TeamBName, &record.WinnerTeamID,
			&record.MapWinsA, &record.MapWinsB, &record.Seed,
			&record.TotalRounds, &record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match record: %w", err)
		}

		records = append(records, &record)
	}

	return records, nil
}

// Delete supprime un match et ses cartes (cascade)
func (r *MatchRepository) Delete(id uuid.UUID) error {
	query := `DELETE FROM match_results WHERE id = $1`

	res, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete match result: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("match result not found")
	}

	return nil
}

// CleanupOlderThan supprime les matchs plus anciens que la rétention configurée
func (r *MatchRepository) CleanupOlderThan(days int) (int, error) {
	query := `
		DELETE FROM match_results
		WHERE created_at < NOW() - ($1 || ' days')::INTERVAL`

	res, err := r.db.Exec(query, days)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old match results: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleaned up matches: %w", err)
	}

	return int(affected), nil
}
