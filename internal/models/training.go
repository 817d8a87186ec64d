package models

import (
	"fmt"

	"github.com/google/uuid"
)

// TrainingFocus définit l'aptitude travaillée pendant une session
type TrainingFocus string

const (
	FocusAim       TrainingFocus = "aim"
	FocusReflexes  TrainingFocus = "reflexes"
	FocusGameSense TrainingFocus = "game_sense"
	FocusComposure TrainingFocus = "composure"
	FocusUtility   TrainingFocus = "utility"
)

// TrainingIntensity définit la charge d'une session d'entraînement
type TrainingIntensity string

const (
	IntensityLight    TrainingIntensity = "light"
	IntensityModerate TrainingIntensity = "moderate"
	IntensityIntense  TrainingIntensity = "intense"
)

// TrainingRequest représente une session d'entraînement individuelle
type TrainingRequest struct {
	Player      PlayerProfile     `json:"player" binding:"required"`
	Focus       TrainingFocus     `json:"focus" binding:"required"`
	Intensity   TrainingIntensity `json:"intensity" binding:"required"`
	CoachRating int               `json:"coach_rating"`
	Fatigue     int               `json:"fatigue"`
	Seed        int64             `json:"seed,omitempty"`
}

// Validate vérifie les bornes d'une session d'entraînement
func (r *TrainingRequest) Validate() error {
	if r.Player.ID == uuid.Nil {
		return fmt.Errorf("player has no id")
	}
	switch r.Focus {
	case FocusAim, FocusReflexes, FocusGameSense, FocusComposure, FocusUtility:
	default:
		return fmt.Errorf("invalid training focus %q", r.Focus)
	}
	switch r.Intensity {
	case IntensityLight, IntensityModerate, IntensityIntense:
	default:
		return fmt.Errorf("invalid training intensity %q", r.Intensity)
	}
	if r.CoachRating < 0 || r.CoachRating > 100 {
		return fmt.Errorf("coach rating %d out of range [0,100]", r.CoachRating)
	}
	if r.Fatigue < 0 || r.Fatigue > 100 {
		return fmt.Errorf("fatigue %d out of range [0,100]", r.Fatigue)
	}
	return nil
}

// TrainingBatchRequest représente une session collective
type TrainingBatchRequest struct {
	Players     []PlayerProfile   `json:"players" binding:"required"`
	Focus       TrainingFocus     `json:"focus" binding:"required"`
	Intensity   TrainingIntensity `json:"intensity" binding:"required"`
	CoachRating int               `json:"coach_rating"`
	Fatigue     int               `json:"fatigue"`
	Seed        int64             `json:"seed,omitempty"`
}

// Validate vérifie la session collective
func (r *TrainingBatchRequest) Validate() error {
	if len(r.Players) == 0 {
		return fmt.Errorf("no players to train")
	}
	for i := range r.Players {
		single := TrainingRequest{
			Player:      r.Players[i],
			Focus:       r.Focus,
			Intensity:   r.Intensity,
			CoachRating: r.CoachRating,
			Fatigue:     r.Fatigue,
		}
		if err := single.Validate(); err != nil {
			return fmt.Errorf("player %d: %w", i, err)
		}
	}
	return nil
}

// TrainingResult représente les gains d'une session d'entraînement
type TrainingResult struct {
	PlayerID     uuid.UUID      `json:"player_id"`
	PlayerName   string         `json:"player_name"`
	Focus        TrainingFocus  `json:"focus"`
	Gains        map[string]int `json:"gains"`
	Breakthrough bool           `json:"breakthrough"`
	FatigueAfter int            `json:"fatigue_after"`
	TrainedAt    string         `json:"trained_at"`
}

// TrainingBatchResult représente les gains d'une session collective
type TrainingBatchResult struct {
	Results   []TrainingResult `json:"results"`
	TrainedAt string           `json:"trained_at"`
}

// ScrimRequest représente un match d'entraînement sur une seule carte
type ScrimRequest struct {
	TeamA      Team           `json:"team_a" binding:"required"`
	TeamB      Team           `json:"team_b" binding:"required"`
	SelectionA AgentSelection `json:"selection_a" binding:"required"`
	SelectionB AgentSelection `json:"selection_b" binding:"required"`
	MapID      string         `json:"map_id" binding:"required"`
	Seed       int64          `json:"seed,omitempty"`
}

// Validate vérifie la demande de scrim
func (r *ScrimRequest) Validate() error {
	req := MatchRequest{
		TeamA:      r.TeamA,
		TeamB:      r.TeamB,
		SelectionA: r.SelectionA,
		SelectionB: r.SelectionB,
		MapIDs:     []string{r.MapID},
	}
	return req.Validate()
}

// ScrimResult représente l'issue d'un scrim: un résultat de carte allégé
// plus les enseignements tirés par le staff
type ScrimResult struct {
	MapID        string    `json:"map_id"`
	TeamAID      uuid.UUID `json:"team_a_id"`
	TeamBID      uuid.UUID `json:"team_b_id"`
	TeamAScore   int       `json:"team_a_score"`
	TeamBScore   int       `json:"team_b_score"`
	WinnerTeamID uuid.UUID `json:"winner_team_id"`
	RoundsPlayed int       `json:"rounds_played"`
	Observations []string  `json:"observations"`
	PlayedAt     string    `json:"played_at"`
}

// DramaSeverity définit la gravité d'un incident de vestiaire
type DramaSeverity string

const (
	DramaNone  DramaSeverity = "none"
	DramaMinor DramaSeverity = "minor"
	DramaMajor DramaSeverity = "major"
)

// DramaRequest représente une évaluation d'ambiance d'équipe.
// RecentResults encode les derniers matchs, true pour une victoire.
type DramaRequest struct {
	TeamID        uuid.UUID       `json:"team_id" binding:"required"`
	Players       []PlayerProfile `json:"players" binding:"required"`
	RecentResults []bool          `json:"recent_results"`
	Morale        int             `json:"morale"`
	Seed          int64           `json:"seed,omitempty"`
}

// Validate vérifie la demande d'évaluation
func (r *DramaRequest) Validate() error {
	if r.TeamID == uuid.Nil {
		return fmt.Errorf("team has no id")
	}
	if len(r.Players) == 0 {
		return fmt.Errorf("no players to evaluate")
	}
	if r.Morale < 0 || r.Morale > 100 {
		return fmt.Errorf("morale %d out of range [0,100]", r.Morale)
	}
	return nil
}

// DramaEvaluationResult représente l'issue d'une évaluation d'ambiance
type DramaEvaluationResult struct {
	TeamID          uuid.UUID     `json:"team_id"`
	Severity        DramaSeverity `json:"severity"`
	Headline        string        `json:"headline,omitempty"`
	AffectedPlayers []uuid.UUID   `json:"affected_players,omitempty"`
	MoraleDelta     int           `json:"morale_delta"`
	ChemistryDelta  int           `json:"chemistry_delta"`
	EvaluatedAt     string        `json:"evaluated_at"`
}
