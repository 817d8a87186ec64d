package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Playstyle définit l'approche tactique d'une équipe
type Playstyle string

const (
	PlaystyleAggressive Playstyle = "aggressive"
	PlaystyleBalanced   Playstyle = "balanced"
	PlaystylePassive    Playstyle = "passive"
)

// EconomyDiscipline définit la gestion des crédits d'une équipe
type EconomyDiscipline string

const (
	EconomyConservative EconomyDiscipline = "conservative"
	EconomyBalanced     EconomyDiscipline = "balanced"
	EconomyRisky        EconomyDiscipline = "risky"
)

// UltUsageStyle définit la propension à dépenser les ultimes
type UltUsageStyle string

const (
	UltUsageEager    UltUsageStyle = "eager"
	UltUsageBalanced UltUsageStyle = "balanced"
	UltUsagePatient  UltUsageStyle = "patient"
)

// TeamStrategy représente la configuration stratégique d'une équipe.
// ForceThreshold est la moyenne de crédits par joueur à partir de laquelle
// l'équipe force un achat quand le full buy est hors de portée.
type TeamStrategy struct {
	Playstyle         Playstyle         `json:"playstyle"`
	EconomyDiscipline EconomyDiscipline `json:"economy_discipline"`
	ForceThreshold    int               `json:"force_threshold"`
	UltUsage          UltUsageStyle     `json:"ult_usage"`
}

// DefaultTeamStrategy retourne la stratégie par défaut d'une équipe
func DefaultTeamStrategy() TeamStrategy {
	return TeamStrategy{
		Playstyle:         PlaystyleBalanced,
		EconomyDiscipline: EconomyBalanced,
		ForceThreshold:    2500,
		UltUsage:          UltUsageBalanced,
	}
}

// Validate vérifie les bornes de la stratégie. Les valeurs hors bornes
// sont rejetées, jamais ramenées silencieusement dans l'intervalle.
func (s *TeamStrategy) Validate() error {
	switch s.Playstyle {
	case PlaystyleAggressive, PlaystyleBalanced, PlaystylePassive:
	default:
		return fmt.Errorf("invalid playstyle %q", s.Playstyle)
	}
	switch s.EconomyDiscipline {
	case EconomyConservative, EconomyBalanced, EconomyRisky:
	default:
		return fmt.Errorf("invalid economy discipline %q", s.EconomyDiscipline)
	}
	switch s.UltUsage {
	case UltUsageEager, UltUsageBalanced, UltUsagePatient:
	default:
		return fmt.Errorf("invalid ult usage style %q", s.UltUsage)
	}
	if s.ForceThreshold < ForceThresholdMin || s.ForceThreshold > ForceThresholdMax {
		return fmt.Errorf("force threshold %d out of range [%d,%d]", s.ForceThreshold, ForceThresholdMin, ForceThresholdMax)
	}
	return nil
}

// ThresholdScale retourne le facteur appliqué aux seuils d'achat:
// une discipline prudente relève les seuils, une discipline
// joueuse les abaisse.
func (s *TeamStrategy) ThresholdScale() float64 {
	switch s.EconomyDiscipline {
	case EconomyConservative:
		return 1.15
	case EconomyRisky:
		return 0.85
	default:
		return 1.0
	}
}

// AggressionModifier retourne le modificateur de duel lié au style de jeu
func (s *TeamStrategy) AggressionModifier() float64 {
	switch s.Playstyle {
	case PlaystyleAggressive:
		return 0.05
	case PlaystylePassive:
		return -0.05
	default:
		return 0.0
	}
}

// UltSpendChance retourne la probabilité d'engager un ultime chargé
// lors d'un temps fort du round
func (s *TeamStrategy) UltSpendChance() float64 {
	switch s.UltUsage {
	case UltUsageEager:
		return 0.85
	case UltUsagePatient:
		return 0.35
	default:
		return 0.60
	}
}

// AgentSelection représente l'affectation agent par joueur d'une équipe
type AgentSelection struct {
	TeamID uuid.UUID            `json:"team_id"`
	Agents map[uuid.UUID]string `json:"agents"`
}

// Validate vérifie que chaque joueur est affecté à un agent connu,
// sans doublon d'agent dans l'équipe
func (a *AgentSelection) Validate(roster []PlayerProfile) error {
	if len(a.Agents) != len(roster) {
		return fmt.Errorf("agent selection covers %d players, roster has %d", len(a.Agents), len(roster))
	}
	used := make(map[string]bool, len(a.Agents))
	for i := range roster {
		agentID, ok := a.Agents[roster[i].ID]
		if !ok {
			return fmt.Errorf("player %s has no agent assigned", roster[i].Name)
		}
		if _, known := GetAgent(agentID); !known {
			return fmt.Errorf("player %s assigned unknown agent %q", roster[i].Name, agentID)
		}
		if used[agentID] {
			return fmt.Errorf("agent %q assigned twice", agentID)
		}
		used[agentID] = true
	}
	return nil
}

// RoleCounts retourne le nombre d'agents sélectionnés par rôle
func (a *AgentSelection) RoleCounts() map[AgentRole]int {
	counts := make(map[AgentRole]int, 4)
	for _, agentID := range a.Agents {
		if agent, ok := GetAgent(agentID); ok {
			counts[agent.Role]++
		}
	}
	return counts
}
