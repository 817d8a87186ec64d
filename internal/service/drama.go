package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"simulation/internal/models"
	"simulation/internal/utils"
)

// Réglages de l'évaluation d'ambiance
const (
	tensionPerLoss     = 0.12
	relaxationPerWin   = 0.05
	maxTension         = 0.90
	majorIncidentShare = 0.30
)

// DramaEngineInterface définit l'évaluation d'ambiance d'équipe
type DramaEngineInterface interface {
	EvaluateDrama(req *models.DramaRequest) (*models.DramaEvaluationResult, error)
}

// DramaEngine implémente l'interface DramaEngineInterface
type DramaEngine struct {
	logger *logrus.Logger
}

// NewDramaEngine crée un nouveau moteur d'ambiance
func NewDramaEngine(logger *logrus.Logger) DramaEngineInterface {
	return &DramaEngine{logger: logger}
}

// EvaluateDrama évalue la tension du vestiaire à partir des résultats
// récents, du moral et du sang-froid moyen de l'effectif, puis tire
// l'éventuel incident et ses conséquences
func (e *DramaEngine) EvaluateDrama(req *models.DramaRequest) (*models.DramaEvaluationResult, error) {
	if req == nil {
		return nil, fmt.Errorf("drama request is nil")
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("drama request rejected: %w", err)
	}
	roller := utils.NewRoller(req.Seed)

	tension := 0.0
	recentWins := 0
	for _, won := range req.RecentResults {
		if won {
			tension -= relaxationPerWin
			recentWins++
		} else {
			tension += tensionPerLoss
		}
	}
	tension += (50.0 - float64(req.Morale)) / 100.0 * 0.5
	tension -= (averageComposure(req.Players) - 50.0) / 100.0 * 0.3
	if tension < 0 {
		tension = 0
	}
	if tension > maxTension {
		tension = maxTension
	}

	result := &models.DramaEvaluationResult{
		TeamID:      req.TeamID,
		Severity:    models.DramaNone,
		EvaluatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if !roller.Chance(tension) {
		// Vestiaire calme; une série de victoires améliore encore l'ambiance
		result.MoraleDelta = recentWins
		if result.MoraleDelta > 6 {
			result.MoraleDelta = 6
		}
		if recentWins > 0 {
			result.ChemistryDelta = 1
		}
		return result, nil
	}

	first, second := pickClashPair(req.Players, roller)
	result.AffectedPlayers = []uuid.UUID{first.ID, second.ID}
	if roller.Chance(majorIncidentShare) {
		result.Severity = models.DramaMajor
		result.MoraleDelta = -12
		result.ChemistryDelta = -8
	} else {
		result.Severity = models.DramaMinor
		result.MoraleDelta = -5
		result.ChemistryDelta = -3
	}
	result.Headline = pickHeadline(first.Name, second.Name, result.Severity, roller)

	e.logger.WithFields(logrus.Fields{
		"team_id":  req.TeamID,
		"severity": result.Severity,
	}).Debug("Drama incident rolled")
	return result, nil
}

func averageComposure(players []models.PlayerProfile) float64 {
	if len(players) == 0 {
		return 50
	}
	total := 0
	for i := range players {
		total += players[i].Attributes.Composure
	}
	return float64(total) / float64(len(players))
}

// pickClashPair tire deux joueurs distincts impliqués dans l'incident.
// Une équipe d'un seul joueur se dispute avec elle-même, cas dégénéré
// accepté par la couche de validation.
func pickClashPair(players []models.PlayerProfile, roller *utils.Roller) (*models.PlayerProfile, *models.PlayerProfile) {
	first := &players[roller.Intn(len(players))]
	if len(players) == 1 {
		return first, first
	}
	for {
		second := &players[roller.Intn(len(players))]
		if second.ID != first.ID {
			return first, second
		}
	}
}

func pickHeadline(first, second string, severity models.DramaSeverity, roller *utils.Roller) string {
	if severity == models.DramaMajor {
		major := []string{
			"%s and %s had a blowout argument after the loss",
			"%s publicly questioned %s's commitment to the team",
			"%s demanded a role change after clashing with %s",
		}
		return fmt.Sprintf(major[roller.Intn(len(major))], first, second)
	}
	minor := []string{
		"%s and %s disagreed over practice priorities",
		"%s was frustrated with %s's comms during review",
		"%s and %s needed a mediated talk after scrims",
	}
	return fmt.Sprintf(minor[roller.Intn(len(minor))], first, second)
}
