package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"simulation/internal/models"
)

// ScrimEngineInterface définit la résolution des matchs d'entraînement
type ScrimEngineInterface interface {
	ResolveScrim(req *models.ScrimRequest) (*models.ScrimResult, error)
}

// ScrimEngine implémente l'interface ScrimEngineInterface.
// Un scrim est un match sur une seule carte, jamais persisté, dont le
// résultat est réduit aux enseignements utiles au staff.
type ScrimEngine struct {
	matches MatchSimulatorInterface
	logger  *logrus.Logger
}

// NewScrimEngine crée un nouveau moteur de scrim
func NewScrimEngine(matches MatchSimulatorInterface, logger *logrus.Logger) ScrimEngineInterface {
	return &ScrimEngine{matches: matches, logger: logger}
}

// ResolveScrim joue la carte demandée et en extrait les observations
func (e *ScrimEngine) ResolveScrim(req *models.ScrimRequest) (*models.ScrimResult, error) {
	if req == nil {
		return nil, fmt.Errorf("scrim request is nil")
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("scrim request rejected: %w", err)
	}

	matchReq := &models.MatchRequest{
		TeamA:      req.TeamA,
		TeamB:      req.TeamB,
		SelectionA: req.SelectionA,
		SelectionB: req.SelectionB,
		MapIDs:     []string{req.MapID},
		Seed:       req.Seed,
	}
	matchResult, err := e.matches.SimulateMatch(matchReq)
	if err != nil {
		return nil, fmt.Errorf("scrim simulation: %w", err)
	}
	mapResult := &matchResult.Maps[0]

	result := &models.ScrimResult{
		MapID:        mapResult.MapID,
		TeamAID:      req.TeamA.ID,
		TeamBID:      req.TeamB.ID,
		TeamAScore:   mapResult.TeamAScore,
		TeamBScore:   mapResult.TeamBScore,
		WinnerTeamID: mapResult.WinnerTeamID,
		RoundsPlayed: len(mapResult.Rounds),
		Observations: e.buildObservations(req, mapResult),
		PlayedAt:     time.Now().UTC().Format(time.RFC3339),
	}

	e.logger.WithFields(logrus.Fields{
		"map":     result.MapID,
		"score_a": result.TeamAScore,
		"score_b": result.TeamBScore,
	}).Info("Scrim resolved")
	return result, nil
}

// buildObservations dérive les enseignements du staff depuis les résumés
// de rounds: pistols, conversion du first blood, taux de pose, clutchs
func (e *ScrimEngine) buildObservations(req *models.ScrimRequest, mapResult *models.MapResult) []string {
	observations := make([]string, 0, 6)
	rounds := mapResult.Rounds

	pistolWins := map[uuid.UUID]int{}
	for _, idx := range []int{0, models.HalftimeRound} {
		if idx < len(rounds) {
			pistolWins[rounds[idx].WinnerTeamID]++
		}
	}
	if pistolWins[req.TeamA.ID] == 2 {
		observations = append(observations, fmt.Sprintf("%s took both pistol rounds", req.TeamA.Name))
	} else if pistolWins[req.TeamB.ID] == 2 {
		observations = append(observations, fmt.Sprintf("%s took both pistol rounds", req.TeamB.Name))
	}

	teamOf := make(map[uuid.UUID]uuid.UUID, models.TeamSize*2)
	for _, id := range req.TeamA.PlayerIDs() {
		teamOf[id] = req.TeamA.ID
	}
	for _, id := range req.TeamB.PlayerIDs() {
		teamOf[id] = req.TeamB.ID
	}

	firstBloods, converted := 0, 0
	plants := 0
	for i := range rounds {
		r := &rounds[i]
		if r.FirstBlood != nil {
			firstBloods++
			if teamOf[r.FirstBlood.KillerID] == r.WinnerTeamID {
				converted++
			}
		}
		if r.SpikePlanted {
			plants++
		}
		if r.ClutchAttempt != nil && r.ClutchAttempt.Won {
			observations = append(observations, fmt.Sprintf(
				"%s closed out a %s clutch in round %d",
				r.ClutchAttempt.PlayerName, r.ClutchAttempt.Situation, r.RoundNumber))
		}
	}
	if firstBloods > 0 {
		observations = append(observations, fmt.Sprintf(
			"first blood converted into the round win %d of %d times", converted, firstBloods))
	}
	observations = append(observations, fmt.Sprintf(
		"spike planted in %d of %d rounds", plants, len(rounds)))

	return observations
}
