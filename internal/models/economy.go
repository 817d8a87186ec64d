package models

import (
	"github.com/google/uuid"
)

// BuyType définit la décision d'achat d'une équipe pour un round
type BuyType string

const (
	BuyEco   BuyType = "eco"
	BuyHalf  BuyType = "half_buy"
	BuyForce BuyType = "force_buy"
	BuyFull  BuyType = "full_buy"
)

// PurchaseEntry représente les achats d'un joueur pour un round
type PurchaseEntry struct {
	PlayerID       uuid.UUID  `json:"player_id"`
	WeaponID       string     `json:"weapon_id"`
	SidearmID      string     `json:"sidearm_id"`
	Shield         ShieldType `json:"shield"`
	AbilityRefills int        `json:"ability_refills"`
	CreditsSpent   int        `json:"credits_spent"`
}

// TeamBuyDecision représente la décision d'achat d'un côté
type TeamBuyDecision struct {
	TeamID     uuid.UUID       `json:"team_id"`
	BuyType    BuyType         `json:"buy_type"`
	Purchases  []PurchaseEntry `json:"purchases"`
	TotalSpend int             `json:"total_spend"`
}

// BuyPhaseResult représente l'issue de la phase d'achat des deux côtés
type BuyPhaseResult struct {
	RoundNumber int             `json:"round_number"`
	Attacker    TeamBuyDecision `json:"attacker"`
	Defender    TeamBuyDecision `json:"defender"`
}

// TeamEconomy représente l'état économique d'une équipe entre les rounds
type TeamEconomy struct {
	TeamID     uuid.UUID         `json:"team_id"`
	Credits    map[uuid.UUID]int `json:"credits"`
	LossStreak int               `json:"loss_streak"`
}

// NewTeamEconomy initialise l'économie d'un début de mi-temps:
// crédits de pistol round pour chaque joueur, série de défaites remise à zéro
func NewTeamEconomy(teamID uuid.UUID, playerIDs []uuid.UUID) *TeamEconomy {
	credits := make(map[uuid.UUID]int, len(playerIDs))
	for _, id := range playerIDs {
		credits[id] = PistolRoundCredits
	}
	return &TeamEconomy{TeamID: teamID, Credits: credits, LossStreak: 0}
}

// ResetForOvertime remet chaque joueur aux crédits d'overtime
func (e *TeamEconomy) ResetForOvertime() {
	for id := range e.Credits {
		e.Credits[id] = OvertimeCredits
	}
	e.LossStreak = 0
}

// AverageCredits retourne la moyenne de crédits par joueur
func (e *TeamEconomy) AverageCredits() int {
	if len(e.Credits) == 0 {
		return 0
	}
	total := 0
	for _, c := range e.Credits {
		total += c
	}
	return total / len(e.Credits)
}

// LossBonus retourne la prime de défaite du prochain round,
// plafonnée par la série de défaites en cours
func (e *TeamEconomy) LossBonus() int {
	streak := e.LossStreak
	if streak < 1 {
		streak = 1
	}
	if streak > LossBonusMaxStreak {
		streak = LossBonusMaxStreak
	}
	return LossBonusBase + (streak-1)*LossBonusStep
}

// Award crédite un joueur en respectant le plafond
func (e *TeamEconomy) Award(playerID uuid.UUID, amount int) {
	c := e.Credits[playerID] + amount
	if c > MaxCredits {
		c = MaxCredits
	}
	e.Credits[playerID] = c
}

// AwardAll crédite chaque joueur du même montant
func (e *TeamEconomy) AwardAll(amount int) {
	for id := range e.Credits {
		e.Award(id, amount)
	}
}
