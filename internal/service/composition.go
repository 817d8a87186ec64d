package service

import (
	"fmt"

	"simulation/internal/models"
)

// Bornes et incréments du bonus de composition
const (
	compositionBonusMin = -0.15
	compositionBonusMax = 0.15

	bonusHasController   = 0.04
	bonusHasInitiator    = 0.03
	bonusHasSentinel     = 0.03
	bonusDuelistSpread   = 0.04
	malusNoController    = -0.06
	malusDuelistExtremes = -0.05
	malusRoleStacking    = -0.04
)

// CompositionAnalyzerInterface définit l'analyse des sélections d'agents
type CompositionAnalyzerInterface interface {
	CompositionBonus(selection *models.AgentSelection) (float64, error)
}

// CompositionAnalyzer implémente l'interface CompositionAnalyzerInterface
type CompositionAnalyzer struct{}

// NewCompositionAnalyzer crée un nouvel analyseur de composition
func NewCompositionAnalyzer() CompositionAnalyzerInterface {
	return &CompositionAnalyzer{}
}

// CompositionBonus calcule le modificateur de duel dérivé de la répartition
// des rôles d'une sélection. Le résultat est borné à [-0.15, +0.15] et
// s'applique à toute la carte, pas round par round. Une répartition dont
// les rôles ne totalisent pas cinq agents est une erreur de configuration.
func (a *CompositionAnalyzer) CompositionBonus(selection *models.AgentSelection) (float64, error) {
	counts := selection.RoleCounts()
	total := 0
	for _, c := range counts {
		total += c
	}
	if total != models.TeamSize {
		return 0, fmt.Errorf("composition role counts sum to %d, expected exactly %d", total, models.TeamSize)
	}

	bonus := 0.0

	if counts[models.RoleController] > 0 {
		bonus += bonusHasController
	} else {
		bonus += malusNoController
	}
	if counts[models.RoleInitiator] > 0 {
		bonus += bonusHasInitiator
	}
	if counts[models.RoleSentinel] > 0 {
		bonus += bonusHasSentinel
	}

	duelists := counts[models.RoleDuelist]
	if duelists >= 1 && duelists <= 3 {
		bonus += bonusDuelistSpread
	} else {
		bonus += malusDuelistExtremes
	}

	for role, c := range counts {
		if role != models.RoleDuelist && c >= 3 {
			bonus += malusRoleStacking
		}
	}

	if bonus < compositionBonusMin {
		bonus = compositionBonusMin
	}
	if bonus > compositionBonusMax {
		bonus = compositionBonusMax
	}
	return bonus, nil
}
