package service

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"simulation/internal/models"
	"simulation/internal/utils"
)

// Étiquette d'avancement des sessions collectives
const StageTraining = "training"

// Réglages des sessions d'entraînement
const (
	breakthroughChance = 0.08
	spilloverChance    = 0.25
	trainingVariance   = 0.25

	maxAttributeValue = 100
)

// TrainingEngineInterface définit la résolution des sessions d'entraînement
type TrainingEngineInterface interface {
	TrainPlayer(req *models.TrainingRequest) (*models.TrainingResult, error)
	TrainBatch(req *models.TrainingBatchRequest, progress ProgressFunc) (*models.TrainingBatchResult, error)
}

// TrainingEngine implémente l'interface TrainingEngineInterface
type TrainingEngine struct {
	logger *logrus.Logger
}

// NewTrainingEngine crée un nouveau moteur d'entraînement
func NewTrainingEngine(logger *logrus.Logger) TrainingEngineInterface {
	return &TrainingEngine{logger: logger}
}

// TrainPlayer résout une session individuelle: gain sur l'aptitude ciblée
// modulé par l'intensité, la qualité du coach, la fatigue et la marge de
// progression restante, avec une variance tirée du seed de la demande
func (e *TrainingEngine) TrainPlayer(req *models.TrainingRequest) (*models.TrainingResult, error) {
	if req == nil {
		return nil, fmt.Errorf("training request is nil")
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("training request rejected: %w", err)
	}
	roller := utils.NewRoller(req.Seed)
	result := e.trainOne(req, roller)

	e.logger.WithFields(logrus.Fields{
		"player_id": result.PlayerID,
		"focus":     result.Focus,
		"gains":     result.Gains,
	}).Debug("Training session resolved")
	return result, nil
}

// TrainBatch résout une session collective joueur par joueur, en
// rapportant l'avancement entre chaque résolution
func (e *TrainingEngine) TrainBatch(req *models.TrainingBatchRequest, progress ProgressFunc) (*models.TrainingBatchResult, error) {
	if req == nil {
		return nil, fmt.Errorf("training batch request is nil")
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("training batch rejected: %w", err)
	}
	roller := utils.NewRoller(req.Seed)

	batch := &models.TrainingBatchResult{
		Results: make([]models.TrainingResult, 0, len(req.Players)),
	}
	for i := range req.Players {
		single := &models.TrainingRequest{
			Player:      req.Players[i],
			Focus:       req.Focus,
			Intensity:   req.Intensity,
			CoachRating: req.CoachRating,
			Fatigue:     req.Fatigue,
		}
		result := e.trainOne(single, roller)
		batch.Results = append(batch.Results, *result)
		if progress != nil {
			progress(StageTraining, (i+1)*100/len(req.Players), req.Players[i].Name)
		}
	}
	batch.TrainedAt = time.Now().UTC().Format(time.RFC3339)

	e.logger.WithFields(logrus.Fields{
		"players": len(batch.Results),
		"focus":   req.Focus,
	}).Info("Training batch resolved")
	return batch, nil
}

func (e *TrainingEngine) trainOne(req *models.TrainingRequest, roller *utils.Roller) *models.TrainingResult {
	current := attributeFor(req.Player.Attributes, req.Focus)
	headroom := float64(maxAttributeValue-current) / float64(maxAttributeValue)

	coachFactor := 0.5 + float64(req.CoachRating)/100.0
	fatigueFactor := 1.0 - float64(req.Fatigue)/200.0

	raw := float64(intensityBaseGain(req.Intensity)) * coachFactor * fatigueFactor
	raw *= 0.6 + 0.8*headroom
	raw *= roller.Variance(trainingVariance)

	gain := int(math.Round(raw))
	if gain < 0 {
		gain = 0
	}
	if gain > maxAttributeValue-current {
		gain = maxAttributeValue - current
	}

	breakthrough := roller.Chance(breakthroughChance)
	if breakthrough {
		gain = gain*2 + 1
		if gain > maxAttributeValue-current {
			gain = maxAttributeValue - current
		}
	}

	gains := map[string]int{string(req.Focus): gain}
	if roller.Chance(spilloverChance) {
		gains[string(spilloverFocus(req.Focus, roller))] = 1
	}

	fatigueAfter := req.Fatigue + intensityFatigueCost(req.Intensity)
	if fatigueAfter > 100 {
		fatigueAfter = 100
	}

	return &models.TrainingResult{
		PlayerID:     req.Player.ID,
		PlayerName:   req.Player.Name,
		Focus:        req.Focus,
		Gains:        gains,
		Breakthrough: breakthrough,
		FatigueAfter: fatigueAfter,
		TrainedAt:    time.Now().UTC().Format(time.RFC3339),
	}
}

func intensityBaseGain(intensity models.TrainingIntensity) int {
	switch intensity {
	case models.IntensityLight:
		return 1
	case models.IntensityIntense:
		return 3
	default:
		return 2
	}
}

func intensityFatigueCost(intensity models.TrainingIntensity) int {
	switch intensity {
	case models.IntensityLight:
		return 5
	case models.IntensityIntense:
		return 22
	default:
		return 12
	}
}

func attributeFor(attrs models.PlayerAttributes, focus models.TrainingFocus) int {
	switch focus {
	case models.FocusAim:
		return attrs.Aim
	case models.FocusReflexes:
		return attrs.Reflexes
	case models.FocusGameSense:
		return attrs.GameSense
	case models.FocusComposure:
		return attrs.Composure
	case models.FocusUtility:
		return attrs.Utility
	default:
		return 0
	}
}

// spilloverFocus tire une aptitude secondaire bénéficiant de la session
func spilloverFocus(primary models.TrainingFocus, roller *utils.Roller) models.TrainingFocus {
	all := []models.TrainingFocus{
		models.FocusAim,
		models.FocusReflexes,
		models.FocusGameSense,
		models.FocusComposure,
		models.FocusUtility,
	}
	others := make([]models.TrainingFocus, 0, len(all)-1)
	for _, f := range all {
		if f != primary {
			others = append(others, f)
		}
	}
	return others[roller.Intn(len(others))]
}
