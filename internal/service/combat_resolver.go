package service

import (
	"simulation/internal/models"
	"simulation/internal/utils"
)

// Pondérations de la résolution de duel
const (
	chanceFloor   = 0.05
	chanceCeiling = 0.95

	skillWeight      = 0.25
	weaponWeight     = 0.20
	aggressionWeight = 0.05
	masteryWeight    = 0.05
	shieldWeight     = 0.05
	duelVariance     = 0.10

	baseHeadshotChance = 0.15
	aimHeadshotFactor  = 0.20
	legShotChance      = 0.12

	damageSpread = 0.10
	healSpread   = 0.15
)

// DuelistContext représente un joueur tel que vu par la résolution d'un
// duel: son état de round, ses aptitudes, son agent et le contexte d'équipe
type DuelistContext struct {
	State            *models.PlayerRoundState
	Attributes       models.PlayerAttributes
	Agent            models.AgentInfo
	Strategy         models.TeamStrategy
	CompositionBonus float64
	Mastery          int
}

// CombatResolverInterface définit les calculs de résolution des duels
type CombatResolverInterface interface {
	CalculateDuelWinChance(a, b *DuelistContext, band models.RangeBand, roller *utils.Roller) float64
	RollHitLocation(shooter *DuelistContext, weapon models.WeaponInfo, roller *utils.Roller) models.HitLocation
	CalculateShotDamage(weapon models.WeaponInfo, location models.HitLocation, roller *utils.Roller) int
	CalculateHealAmount(agent models.AgentInfo, roller *utils.Roller) int
	ClampChance(chance float64) float64
}

// CombatResolver implémente l'interface CombatResolverInterface
type CombatResolver struct{}

// NewCombatResolver crée un nouveau résolveur de combat
func NewCombatResolver() CombatResolverInterface {
	return &CombatResolver{}
}

// CalculateDuelWinChance calcule la probabilité que a remporte un duel
// contre b à une distance donnée. Chaque composante est une différence
// bornée entre les deux duellistes; le résultat reste dans [0.05, 0.95]
// pour qu'aucun duel ne soit joué d'avance.
func (c *CombatResolver) CalculateDuelWinChance(a, b *DuelistContext, band models.RangeBand, roller *utils.Roller) float64 {
	chance := 0.5

	aSkill := combatSkill(a.Attributes)
	bSkill := combatSkill(b.Attributes)
	chance += (aSkill - bSkill) / 100.0 * skillWeight

	aWeapon, _ := models.GetWeapon(a.State.WeaponID)
	bWeapon, _ := models.GetWeapon(b.State.WeaponID)
	chance += (aWeapon.EffectivenessAt(band) - bWeapon.EffectivenessAt(band)) * weaponWeight

	chance += (a.Agent.Aggression - b.Agent.Aggression) * aggressionWeight
	chance += float64(a.Mastery-b.Mastery) / 100.0 * masteryWeight
	chance += float64(a.State.ShieldHP-b.State.ShieldHP) / float64(models.HeavyShieldHP) * shieldWeight

	chance += a.CompositionBonus - b.CompositionBonus
	chance += a.Strategy.AggressionModifier() - b.Strategy.AggressionModifier()

	// HP restants: un duelliste affaibli perd plus souvent l'échange
	chance += (float64(a.State.HP)/float64(a.State.MaxHP) - float64(b.State.HP)/float64(b.State.MaxHP)) * 0.10

	chance *= roller.Variance(duelVariance)
	return c.ClampChance(chance)
}

// RollHitLocation tire la zone touchée par un échange gagné.
// La précision du tireur et la cadence de l'arme font pencher
// le tirage vers la tête.
func (c *CombatResolver) RollHitLocation(shooter *DuelistContext, weapon models.WeaponInfo, roller *utils.Roller) models.HitLocation {
	headChance := baseHeadshotChance + float64(shooter.Attributes.Aim)/100.0*aimHeadshotFactor
	headChance *= 0.7 + weapon.FireRateFactor*0.4
	if roller.Chance(c.ClampChance(headChance)) {
		return models.HitHead
	}
	if roller.Chance(legShotChance) {
		return models.HitLegs
	}
	return models.HitBody
}

// CalculateShotDamage calcule les dégâts bruts d'une rafale décisive
// selon la zone touchée, avec une variance multiplicative
func (c *CombatResolver) CalculateShotDamage(weapon models.WeaponInfo, location models.HitLocation, roller *utils.Roller) int {
	base := float64(weapon.BodyDamage)
	switch location {
	case models.HitHead:
		base *= weapon.HeadshotMultiplier
	case models.HitLegs:
		base *= weapon.LegMultiplier
	}
	damage := int(base * roller.Variance(damageSpread))
	if damage < 1 {
		damage = 1
	}
	return damage
}

// CalculateHealAmount calcule la quantité soignée par une compétence
func (c *CombatResolver) CalculateHealAmount(agent models.AgentInfo, roller *utils.Roller) int {
	if agent.HealAmount <= 0 {
		return 0
	}
	healed := int(float64(agent.HealAmount) * roller.Variance(healSpread))
	if healed < 1 {
		healed = 1
	}
	return healed
}

// ClampChance ramène une probabilité dans [0.05, 0.95]
func (c *CombatResolver) ClampChance(chance float64) float64 {
	if chance < chanceFloor {
		return chanceFloor
	}
	if chance > chanceCeiling {
		return chanceCeiling
	}
	return chance
}

// combatSkill agrège les aptitudes pesant dans un duel
func combatSkill(attrs models.PlayerAttributes) float64 {
	return float64(attrs.Aim)*0.45 + float64(attrs.Reflexes)*0.35 + float64(attrs.GameSense)*0.20
}
