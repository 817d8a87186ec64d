package models

import (
	"time"

	"github.com/google/uuid"
)

// FirstBlood représente la première élimination d'un round
type FirstBlood struct {
	KillerID   uuid.UUID `json:"killer_id"`
	KillerName string    `json:"killer_name"`
	VictimID   uuid.UUID `json:"victim_id"`
	VictimName string    `json:"victim_name"`
	Timestamp  int64     `json:"timestamp_ms"`
	WeaponID   string    `json:"weapon_id"`
}

// ClutchAttempt représente une situation de clutch détectée dans un round.
// Situation est un libellé de la forme "1v2"; StartTimestamp est l'instant
// de l'élimination qui a créé la situation.
type ClutchAttempt struct {
	PlayerID       uuid.UUID `json:"player_id"`
	PlayerName     string    `json:"player_name"`
	Situation      string    `json:"situation"`
	StartTimestamp int64     `json:"start_timestamp_ms"`
	Won            bool      `json:"won"`
	KillsDuring    int       `json:"kills_during"`
}

// RoundSummary représente les statistiques d'un round, intégralement
// dérivées de sa timeline. Aucun champ n'est accumulé pendant la
// simulation elle-même.
type RoundSummary struct {
	RoundNumber        int            `json:"round_number"`
	FirstBlood         *FirstBlood    `json:"first_blood,omitempty"`
	TotalKills         int            `json:"total_kills"`
	TotalHeadshots     int            `json:"total_headshots"`
	HeadshotPercentage float64        `json:"headshot_percentage"`
	TotalDamage        int            `json:"total_damage"`
	SpikePlanted       bool           `json:"spike_planted"`
	SpikeDefused       bool           `json:"spike_defused"`
	SpikeDetonated     bool           `json:"spike_detonated"`
	PlantSite          string         `json:"plant_site,omitempty"`
	PlantsAttempted    int            `json:"plants_attempted"`
	DefusesAttempted   int            `json:"defuses_attempted"`
	AbilitiesUsed      int            `json:"abilities_used"`
	UltimatesUsed      int            `json:"ultimates_used"`
	HealsApplied       int            `json:"heals_applied"`
	TotalHealing       int            `json:"total_healing"`
	RoundDuration      int64          `json:"round_duration_ms"`
	WinnerSide         Side           `json:"winner_side"`
	WinnerTeamID       uuid.UUID      `json:"winner_team_id"`
	WinCondition       WinCondition   `json:"win_condition"`
	ClutchAttempt      *ClutchAttempt `json:"clutch_attempt,omitempty"`
}

// MapResult représente le résultat d'une carte jouée
type MapResult struct {
	MapID          string         `json:"map_id"`
	MapName        string         `json:"map_name"`
	Rounds         []RoundSummary `json:"rounds"`
	TeamAScore     int            `json:"team_a_score"`
	TeamBScore     int            `json:"team_b_score"`
	Overtime       bool           `json:"overtime"`
	OvertimeRounds int            `json:"overtime_rounds"`
	WinnerTeamID   uuid.UUID      `json:"winner_team_id"`
	DurationMs     int64          `json:"duration_ms"`
}

// TotalRounds retourne le nombre de rounds joués sur la carte
func (m *MapResult) TotalRounds() int {
	return len(m.Rounds)
}

// MapScore représente le score d'une carte dans le décompte de série
type MapScore struct {
	MapID      string `json:"map_id"`
	TeamAScore int    `json:"team_a_score"`
	TeamBScore int    `json:"team_b_score"`
}

// MatchResult représente le résultat complet d'une série best-of-N.
// SimulatedAt est une date ISO-8601; toutes les références sont des
// identifiants afin que le résultat soit sérialisable tel quel.
type MatchResult struct {
	MatchID      uuid.UUID   `json:"match_id"`
	TeamAID      uuid.UUID   `json:"team_a_id"`
	TeamAName    string      `json:"team_a_name"`
	TeamBID      uuid.UUID   `json:"team_b_id"`
	TeamBName    string      `json:"team_b_name"`
	Maps         []MapResult `json:"maps"`
	MapScores    []MapScore  `json:"map_scores"`
	TeamAMapWins int         `json:"team_a_map_wins"`
	TeamBMapWins int         `json:"team_b_map_wins"`
	WinnerTeamID uuid.UUID   `json:"winner_team_id"`
	Seed         int64       `json:"seed"`
	TotalRounds  int         `json:"total_rounds"`
	SimulatedAt  string      `json:"simulated_at"`
}

// MatchRecord représente l'en-tête persisté d'un match, sans les timelines
type MatchRecord struct {
	MatchID      uuid.UUID `json:"match_id" db:"id"`
	TeamAID      uuid.UUID `json:"team_a_id" db:"team_a_id"`
	TeamAName    string    `json:"team_a_name" db:"team_a_name"`
	TeamBID      uuid.UUID `json:"team_b_id" db:"team_b_id"`
	TeamBName    string    `json:"team_b_name" db:"team_b_name"`
	WinnerTeamID uuid.UUID `json:"winner_team_id" db:"winner_team_id"`
	MapWinsA     int       `json:"map_wins_a" db:"map_wins_a"`
	MapWinsB     int       `json:"map_wins_b" db:"map_wins_b"`
	Seed         int64     `json:"seed" db:"seed"`
	TotalRounds  int       `json:"total_rounds" db:"total_rounds"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
