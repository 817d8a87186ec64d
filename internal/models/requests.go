package models

import (
	"fmt"
)

// MatchRequest représente une demande de simulation de match best-of-N.
// Les overrides de stratégie, s'ils sont fournis, priment sur la stratégie
// par défaut des équipes pour ce match uniquement. Seed à zéro signifie
// un tirage d'entropie; toute autre valeur rend la simulation reproductible.
type MatchRequest struct {
	TeamA             Team           `json:"team_a" binding:"required"`
	TeamB             Team           `json:"team_b" binding:"required"`
	SelectionA        AgentSelection `json:"selection_a" binding:"required"`
	SelectionB        AgentSelection `json:"selection_b" binding:"required"`
	MapIDs            []string       `json:"map_ids" binding:"required"`
	StrategyOverrideA *TeamStrategy  `json:"strategy_override_a,omitempty"`
	StrategyOverrideB *TeamStrategy  `json:"strategy_override_b,omitempty"`
	TradeWindowMs     int64          `json:"trade_window_ms,omitempty"`
	Seed              int64          `json:"seed,omitempty"`
}

// EffectiveStrategyA retourne la stratégie applicable à l'équipe A
func (r *MatchRequest) EffectiveStrategyA() TeamStrategy {
	if r.StrategyOverrideA != nil {
		return *r.StrategyOverrideA
	}
	return r.TeamA.Strategy
}

// EffectiveStrategyB retourne la stratégie applicable à l'équipe B
func (r *MatchRequest) EffectiveStrategyB() TeamStrategy {
	if r.StrategyOverrideB != nil {
		return *r.StrategyOverrideB
	}
	return r.TeamB.Strategy
}

// Validate rejette toute demande non simulable avant qu'un seul round
// ne soit résolu: effectifs, sélections d'agents, stratégies et cartes.
func (r *MatchRequest) Validate() error {
	if err := r.TeamA.Validate(); err != nil {
		return fmt.Errorf("team A: %w", err)
	}
	if err := r.TeamB.Validate(); err != nil {
		return fmt.Errorf("team B: %w", err)
	}
	if r.TeamA.ID == r.TeamB.ID {
		return fmt.Errorf("a team cannot play against itself")
	}
	if err := r.SelectionA.Validate(r.TeamA.Players); err != nil {
		return fmt.Errorf("team A agent selection: %w", err)
	}
	if err := r.SelectionB.Validate(r.TeamB.Players); err != nil {
		return fmt.Errorf("team B agent selection: %w", err)
	}
	if r.StrategyOverrideA != nil {
		if err := r.StrategyOverrideA.Validate(); err != nil {
			return fmt.Errorf("team A strategy override: %w", err)
		}
	}
	if r.StrategyOverrideB != nil {
		if err := r.StrategyOverrideB.Validate(); err != nil {
			return fmt.Errorf("team B strategy override: %w", err)
		}
	}
	if len(r.MapIDs) == 0 {
		return fmt.Errorf("no maps requested")
	}
	if len(r.MapIDs)%2 == 0 {
		return fmt.Errorf("map count %d must be odd for a best-of series", len(r.MapIDs))
	}
	for _, id := range r.MapIDs {
		if _, ok := GetMap(id); !ok {
			return fmt.Errorf("unknown map %q", id)
		}
	}
	if r.TradeWindowMs < 0 {
		return fmt.Errorf("trade window %d must not be negative", r.TradeWindowMs)
	}
	return nil
}
