package models

import (
	"fmt"

	"github.com/google/uuid"
)

// ShieldType définit les types de bouclier achetables
type ShieldType string

const (
	ShieldNone  ShieldType = "none"
	ShieldLight ShieldType = "light"
	ShieldHeavy ShieldType = "heavy"
)

// PlayerAttributes représente les aptitudes d'un joueur, notées 0-100.
// Elles alimentent la résolution des duels et l'usage des compétences.
type PlayerAttributes struct {
	Aim       int `json:"aim"`
	Reflexes  int `json:"reflexes"`
	GameSense int `json:"game_sense"`
	Composure int `json:"composure"`
	Utility   int `json:"utility"`
}

// PlayerProfile représente un joueur tel que fourni par la couche de gestion
type PlayerProfile struct {
	ID           uuid.UUID        `json:"id"`
	Name         string           `json:"name"`
	Attributes   PlayerAttributes `json:"attributes"`
	AgentMastery map[string]int   `json:"agent_mastery,omitempty"`
}

// MasteryFor retourne la maîtrise 0-100 du joueur sur un agent (50 par défaut)
func (p *PlayerProfile) MasteryFor(agentID string) int {
	if p.AgentMastery == nil {
		return 50
	}
	if m, ok := p.AgentMastery[agentID]; ok {
		return m
	}
	return 50
}

// Team représente une équipe engagée dans un match
type Team struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Players  []PlayerProfile `json:"players"`
	Strategy TeamStrategy    `json:"strategy"`
}

// Validate vérifie qu'une équipe est simulable
func (t *Team) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("team %s has no name", t.ID)
	}
	if len(t.Players) != TeamSize {
		return fmt.Errorf("team %s has %d players, expected exactly %d", t.Name, len(t.Players), TeamSize)
	}
	seen := make(map[uuid.UUID]bool, len(t.Players))
	for i := range t.Players {
		p := &t.Players[i]
		if p.ID == uuid.Nil {
			return fmt.Errorf("team %s: player %d has no id", t.Name, i)
		}
		if seen[p.ID] {
			return fmt.Errorf("team %s: duplicate player id %s", t.Name, p.ID)
		}
		seen[p.ID] = true
	}
	return t.Strategy.Validate()
}

// PlayerIDs retourne les identifiants des joueurs de l'équipe
func (t *Team) PlayerIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(t.Players))
	for i := range t.Players {
		ids = append(ids, t.Players[i].ID)
	}
	return ids
}

// AbilityCharges représente les charges de compétence restantes d'un joueur
type AbilityCharges struct {
	Basic1      int `json:"basic1"`
	Basic2      int `json:"basic2"`
	Signature   int `json:"signature"`
	UltPoints   int `json:"ult_points"`
	UltRequired int `json:"ult_required"`
}

// PlayerRoundState représente l'état d'un joueur pendant un round.
// Les compteurs Kills/DamageDealt sont un état de travail de la simulation;
// les statistiques publiées sont toujours re-dérivées de la timeline.
type PlayerRoundState struct {
	PlayerID     uuid.UUID      `json:"player_id"`
	Name         string         `json:"name"`
	TeamID       uuid.UUID      `json:"team_id"`
	AgentID      string         `json:"agent_id"`
	Role         AgentRole      `json:"role"`
	Side         Side           `json:"side"`
	HP           int            `json:"hp"`
	MaxHP        int            `json:"max_hp"`
	ShieldHP     int            `json:"shield_hp"`
	ShieldType   ShieldType     `json:"shield_type"`
	Credits      int            `json:"credits"`
	SpentCredits int            `json:"spent_credits"`
	WeaponID     string         `json:"weapon_id"`
	SidearmID    string         `json:"sidearm_id"`
	Abilities    AbilityCharges `json:"abilities"`
	Alive        bool           `json:"alive"`

	// État de travail, jamais lu par le calcul des résumés
	Kills       int `json:"kills"`
	DamageDealt int `json:"damage_dealt"`
}

// TakeDamage applique des dégâts bruts en absorbant d'abord le bouclier.
// Retourne les points absorbés, les dégâts effectifs et les PV restants.
func (s *PlayerRoundState) TakeDamage(raw int) (absorbed, dealt, hpAfter int) {
	if raw <= 0 || !s.Alive {
		return 0, 0, s.HP
	}
	remaining := raw
	if s.ShieldHP > 0 {
		absorbed = remaining / 2
		if absorbed > s.ShieldHP {
			absorbed = s.ShieldHP
		}
		s.ShieldHP -= absorbed
		remaining -= absorbed
	}
	if remaining > s.HP {
		remaining = s.HP
	}
	s.HP -= remaining
	dealt = remaining
	if s.HP <= 0 {
		s.HP = 0
		s.Alive = false
	}
	return absorbed, dealt, s.HP
}

// ApplyHeal applique un soin plafonné aux PV maximum.
// Retourne la quantité effectivement soignée et les PV résultants.
func (s *PlayerRoundState) ApplyHeal(amount int) (healed, hpAfter int) {
	if amount <= 0 || !s.Alive {
		return 0, s.HP
	}
	healed = amount
	if s.HP+healed > s.MaxHP {
		healed = s.MaxHP - s.HP
	}
	s.HP += healed
	return healed, s.HP
}

// CanAfford indique si le joueur peut payer un montant
func (s *PlayerRoundState) CanAfford(cost int) bool {
	return s.Credits >= cost
}

// Spend débite les crédits du joueur
func (s *PlayerRoundState) Spend(cost int) error {
	if cost < 0 {
		return fmt.Errorf("negative cost %d", cost)
	}
	if s.Credits < cost {
		return fmt.Errorf("player %s cannot afford %d credits (%d available)", s.Name, cost, s.Credits)
	}
	s.Credits -= cost
	s.SpentCredits += cost
	return nil
}

// HasUltimate indique si l'ultime est chargé
func (s *PlayerRoundState) HasUltimate() bool {
	return s.Abilities.UltRequired > 0 && s.Abilities.UltPoints >= s.Abilities.UltRequired
}

// AliveCount compte les joueurs vivants d'un groupe
func AliveCount(states []*PlayerRoundState) int {
	count := 0
	for _, s := range states {
		if s.Alive {
			count++
		}
	}
	return count
}

// AlivePlayers retourne les joueurs vivants d'un groupe
func AlivePlayers(states []*PlayerRoundState) []*PlayerRoundState {
	alive := make([]*PlayerRoundState, 0, len(states))
	for _, s := range states {
		if s.Alive {
			alive = append(alive, s)
		}
	}
	return alive
}
