package service

import (
	"fmt"

	"github.com/google/uuid"

	"simulation/internal/models"
)

// Règles d'achat
const (
	abilityRefillCost = 200

	maxRefillsFull   = 3
	maxRefillsForce  = 1
	maxRefillsHalf   = 1
	maxRefillsPistol = 2

	// Crédits requis pour qu'un joueur prenne l'Operator en full buy
	operatorBuyFloor = 5700
)

// TeamBuyContext représente ce que la phase d'achat connaît d'un côté:
// le roster dans son ordre de passage, l'économie courante et la stratégie
type TeamBuyContext struct {
	TeamID    uuid.UUID
	PlayerIDs []uuid.UUID
	Economy   *models.TeamEconomy
	Strategy  models.TeamStrategy
}

// BuyPhaseResolverInterface définit la résolution de la phase d'achat
type BuyPhaseResolverInterface interface {
	ResolveBuyPhase(roundNumber int, attacker, defender *TeamBuyContext) (*models.BuyPhaseResult, error)
}

// BuyPhaseResolver implémente l'interface BuyPhaseResolverInterface
type BuyPhaseResolver struct{}

// NewBuyPhaseResolver crée un nouveau résolveur de phase d'achat
func NewBuyPhaseResolver() BuyPhaseResolverInterface {
	return &BuyPhaseResolver{}
}

// ResolveBuyPhase calcule la décision d'achat des deux côtés pour un round.
// La résolution est pure: l'économie n'est pas débitée ici, les montants
// dépensés sont portés par les entrées d'achat retournées.
func (r *BuyPhaseResolver) ResolveBuyPhase(roundNumber int, attacker, defender *TeamBuyContext) (*models.BuyPhaseResult, error) {
	if roundNumber < 1 {
		return nil, fmt.Errorf("invalid round number %d", roundNumber)
	}
	attackerDecision, err := r.resolveTeam(roundNumber, attacker)
	if err != nil {
		return nil, fmt.Errorf("attacker buy phase: %w", err)
	}
	defenderDecision, err := r.resolveTeam(roundNumber, defender)
	if err != nil {
		return nil, fmt.Errorf("defender buy phase: %w", err)
	}
	return &models.BuyPhaseResult{
		RoundNumber: roundNumber,
		Attacker:    attackerDecision,
		Defender:    defenderDecision,
	}, nil
}

func (r *BuyPhaseResolver) resolveTeam(roundNumber int, ctx *TeamBuyContext) (models.TeamBuyDecision, error) {
	if ctx == nil || ctx.Economy == nil {
		return models.TeamBuyDecision{}, fmt.Errorf("missing team buy context")
	}
	if len(ctx.PlayerIDs) != models.TeamSize {
		return models.TeamBuyDecision{}, fmt.Errorf("buy context has %d players, expected %d", len(ctx.PlayerIDs), models.TeamSize)
	}
	if err := ctx.Strategy.Validate(); err != nil {
		return models.TeamBuyDecision{}, fmt.Errorf("strategy rejected: %w", err)
	}

	decision := models.TeamBuyDecision{
		TeamID:    ctx.TeamID,
		BuyType:   r.classify(roundNumber, ctx),
		Purchases: make([]models.PurchaseEntry, 0, len(ctx.PlayerIDs)),
	}

	richest := r.richestPlayer(ctx)
	pistol := isPistolRound(roundNumber)
	for _, playerID := range ctx.PlayerIDs {
		credits := ctx.Economy.Credits[playerID]
		entry := r.buildPurchase(decision.BuyType, playerID, credits, playerID == richest, pistol)
		decision.TotalSpend += entry.CreditsSpent
		decision.Purchases = append(decision.Purchases, entry)
	}
	return decision, nil
}

// classify compare la moyenne de crédits aux seuils ajustés par la
// discipline économique. Le force buy n'intervient que lorsque le full buy
// est hors de portée mais que la moyenne atteint le seuil de force choisi
// par l'équipe. Les rounds de pistolet échappent à la classification.
func (r *BuyPhaseResolver) classify(roundNumber int, ctx *TeamBuyContext) models.BuyType {
	if isPistolRound(roundNumber) {
		return models.BuyEco
	}
	scale := ctx.Strategy.ThresholdScale()
	avg := float64(ctx.Economy.AverageCredits())
	if avg >= models.FullBuyAverageCredits*scale {
		return models.BuyFull
	}
	if avg >= float64(ctx.Strategy.ForceThreshold) {
		return models.BuyForce
	}
	if avg >= models.HalfBuyAverageCredits*scale {
		return models.BuyHalf
	}
	return models.BuyEco
}

func isPistolRound(roundNumber int) bool {
	return roundNumber == 1 || roundNumber == models.HalftimeRound+1
}

func (r *BuyPhaseResolver) richestPlayer(ctx *TeamBuyContext) uuid.UUID {
	var richest uuid.UUID
	best := -1
	for _, id := range ctx.PlayerIDs {
		if c := ctx.Economy.Credits[id]; c > best {
			best = c
			richest = id
		}
	}
	return richest
}

// buildPurchase assemble le panier d'un joueur sans jamais dépasser
// ses crédits. Le Classic reste l'arme de repli universelle.
func (r *BuyPhaseResolver) buildPurchase(buyType models.BuyType, playerID uuid.UUID, credits int, isRichest, pistol bool) models.PurchaseEntry {
	entry := models.PurchaseEntry{
		PlayerID:  playerID,
		WeaponID:  "classic",
		SidearmID: "classic",
		Shield:    models.ShieldNone,
	}
	remaining := credits

	spend := func(cost int) bool {
		if cost > remaining {
			return false
		}
		remaining -= cost
		entry.CreditsSpent += cost
		return true
	}

	buyRefills := func(max int) {
		for i := 0; i < max; i++ {
			if !spend(abilityRefillCost) {
				return
			}
			entry.AbilityRefills++
		}
	}

	switch buyType {
	case models.BuyFull:
		if isRichest && remaining >= operatorBuyFloor {
			weapon, _ := models.GetWeapon("operator")
			spend(weapon.Cost)
			entry.WeaponID = weapon.ID
		} else {
			weapon := models.BestAffordableWeapon([]models.WeaponCategory{models.CategoryRifle, models.CategoryHeavy, models.CategorySMG}, remaining)
			spend(weapon.Cost)
			entry.WeaponID = weapon.ID
		}
		if remaining >= models.HeavyShieldCost {
			spend(models.HeavyShieldCost)
			entry.Shield = models.ShieldHeavy
		} else if remaining >= models.LightShieldCost {
			spend(models.LightShieldCost)
			entry.Shield = models.ShieldLight
		}
		if remaining >= 800 {
			spend(800)
			entry.SidearmID = "sheriff"
		} else if remaining >= 500 {
			spend(500)
			entry.SidearmID = "ghost"
		}
		buyRefills(maxRefillsFull)

	case models.BuyForce:
		budget := remaining
		if budget > models.LightShieldCost {
			budget -= models.LightShieldCost
		}
		weapon := models.BestAffordableWeapon([]models.WeaponCategory{models.CategoryRifle, models.CategorySMG, models.CategoryShotgun, models.CategorySidearm}, budget)
		spend(weapon.Cost)
		if weapon.Category == models.CategorySidearm {
			entry.SidearmID = weapon.ID
		} else {
			entry.WeaponID = weapon.ID
		}
		if remaining >= models.LightShieldCost {
			spend(models.LightShieldCost)
			entry.Shield = models.ShieldLight
		}
		buyRefills(maxRefillsForce)

	case models.BuyHalf:
		budget := remaining - models.LightShieldCost
		if budget < 0 {
			budget = 0
		}
		weapon := models.BestAffordableWeapon([]models.WeaponCategory{models.CategorySMG, models.CategoryShotgun}, budget)
		if weapon.Cost > 0 {
			spend(weapon.Cost)
			entry.WeaponID = weapon.ID
		}
		if remaining >= models.LightShieldCost {
			spend(models.LightShieldCost)
			entry.Shield = models.ShieldLight
		}
		buyRefills(maxRefillsHalf)

	case models.BuyEco:
		// Round de pistolet: bouclier léger puis recharges avec le reste.
		// Eco classique: on économise tout.
		if pistol {
			if remaining >= models.LightShieldCost {
				spend(models.LightShieldCost)
				entry.Shield = models.ShieldLight
			}
			buyRefills(maxRefillsPistol)
		}
	}

	return entry
}
