package service

import (
	"testing"

	"github.com/google/uuid"

	"simulation/internal/models"
	"simulation/internal/utils"
)

// duelist construit un contexte de duel neutre: aptitudes uniformes,
// stratégie par défaut, aucun bonus de composition
func duelist(weaponID string, skill int) *DuelistContext {
	agent, _ := models.GetAgent("jett")
	return &DuelistContext{
		State: &models.PlayerRoundState{
			PlayerID: uuid.New(),
			HP:       models.DefaultMaxHP,
			MaxHP:    models.DefaultMaxHP,
			WeaponID: weaponID,
			Alive:    true,
		},
		Attributes: models.PlayerAttributes{Aim: skill, Reflexes: skill, GameSense: skill, Composure: skill, Utility: skill},
		Agent:      agent,
		Strategy:   models.DefaultTeamStrategy(),
		Mastery:    50,
	}
}

func TestCombatResolver_ClampChance(t *testing.T) {
	resolver := NewCombatResolver()

	tests := []struct {
		in, want float64
	}{
		{-0.3, 0.05},
		{0.0, 0.05},
		{0.04, 0.05},
		{0.05, 0.05},
		{0.50, 0.50},
		{0.95, 0.95},
		{1.38, 0.95},
	}
	for _, tt := range tests {
		if got := resolver.ClampChance(tt.in); got != tt.want {
			t.Fatalf("ClampChance(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCombatResolver_SkillAdvantageHolds(t *testing.T) {
	// À armes égales, un écart d'aptitudes de 50 points garde l'avantage
	// quel que soit le tirage de variance
	resolver := NewCombatResolver()

	for seed := int64(1); seed <= 50; seed++ {
		roller := utils.NewRoller(seed)
		strong := duelist("vandal", 90)
		weak := duelist("vandal", 40)

		chance := resolver.CalculateDuelWinChance(strong, weak, models.RangeMedium, roller)
		if chance <= 0.5 {
			t.Fatalf("seed %d: strong duelist chance = %v, want > 0.5", seed, chance)
		}

		reversed := resolver.CalculateDuelWinChance(weak, strong, models.RangeMedium, utils.NewRoller(seed))
		if reversed >= 0.5 {
			t.Fatalf("seed %d: weak duelist chance = %v, want < 0.5", seed, reversed)
		}
	}
}

func TestCombatResolver_WeaponRangeAdvantage(t *testing.T) {
	// L'Operator domine le Classic à longue distance; le Judge reprend
	// l'avantage sur l'Operator au corps à corps
	resolver := NewCombatResolver()

	for seed := int64(1); seed <= 50; seed++ {
		sniper := duelist("operator", 70)
		pistol := duelist("classic", 70)
		if chance := resolver.CalculateDuelWinChance(sniper, pistol, models.RangeLong, utils.NewRoller(seed)); chance <= 0.5 {
			t.Fatalf("seed %d: operator vs classic at long range = %v, want > 0.5", seed, chance)
		}

		shotgun := duelist("judge", 70)
		sniper = duelist("operator", 70)
		if chance := resolver.CalculateDuelWinChance(shotgun, sniper, models.RangeClose, utils.NewRoller(seed)); chance <= 0.5 {
			t.Fatalf("seed %d: judge vs operator at close range = %v, want > 0.5", seed, chance)
		}
	}
}

func TestCombatResolver_WoundedDuelistLosesEdge(t *testing.T) {
	resolver := NewCombatResolver()

	for seed := int64(1); seed <= 50; seed++ {
		wounded := duelist("vandal", 70)
		wounded.State.HP = 20
		healthy := duelist("vandal", 70)

		chance := resolver.CalculateDuelWinChance(wounded, healthy, models.RangeMedium, utils.NewRoller(seed))
		if chance >= 0.5 {
			t.Fatalf("seed %d: duelist at 20 HP chance = %v, want < 0.5", seed, chance)
		}
	}
}

func TestCombatResolver_ExtremeMismatchStaysClamped(t *testing.T) {
	// Un duel totalement déséquilibré bute sur les bornes: jamais une
	// certitude, jamais un zéro
	resolver := NewCombatResolver()

	best := duelist("vandal", 100)
	best.State.ShieldHP = models.HeavyShieldHP
	best.State.ShieldType = models.ShieldHeavy
	best.Strategy.Playstyle = models.PlaystyleAggressive
	best.CompositionBonus = 0.15
	best.Mastery = 100

	worst := duelist("classic", 0)
	worstAgent, _ := models.GetAgent("sage")
	worst.Agent = worstAgent
	worst.Strategy.Playstyle = models.PlaystylePassive
	worst.CompositionBonus = -0.15
	worst.Mastery = 0

	for seed := int64(1); seed <= 30; seed++ {
		if chance := resolver.CalculateDuelWinChance(best, worst, models.RangeMedium, utils.NewRoller(seed)); chance != 0.95 {
			t.Fatalf("seed %d: lopsided duel chance = %v, want ceiling 0.95", seed, chance)
		}
		if chance := resolver.CalculateDuelWinChance(worst, best, models.RangeMedium, utils.NewRoller(seed)); chance != 0.05 {
			t.Fatalf("seed %d: hopeless duel chance = %v, want floor 0.05", seed, chance)
		}
	}
}

func TestCombatResolver_ShotDamageByLocation(t *testing.T) {
	// Vandal: 40 de base, x4.0 à la tête, x0.85 aux jambes, variance ±10%
	resolver := NewCombatResolver()
	vandal, ok := models.GetWeapon("vandal")
	if !ok {
		t.Fatal("vandal missing from the weapon catalog")
	}

	bounds := []struct {
		location models.HitLocation
		min, max int
	}{
		{models.HitHead, 144, 175},
		{models.HitBody, 36, 43},
		{models.HitLegs, 30, 37},
	}
	for _, b := range bounds {
		for seed := int64(1); seed <= 40; seed++ {
			damage := resolver.CalculateShotDamage(vandal, b.location, utils.NewRoller(seed))
			if damage < b.min || damage > b.max {
				t.Fatalf("seed %d: %s damage = %d, want within [%d,%d]", seed, b.location, damage, b.min, b.max)
			}
		}
	}
}

func TestCombatResolver_ShotDamageFloorsAtOne(t *testing.T) {
	resolver := NewCombatResolver()

	if damage := resolver.CalculateShotDamage(models.WeaponInfo{}, models.HitBody, utils.NewRoller(7)); damage != 1 {
		t.Fatalf("CalculateShotDamage(zero weapon) = %d, want floor of 1", damage)
	}
}

func TestCombatResolver_HealAmounts(t *testing.T) {
	resolver := NewCombatResolver()

	sage, _ := models.GetAgent("sage")
	for seed := int64(1); seed <= 40; seed++ {
		healed := resolver.CalculateHealAmount(sage, utils.NewRoller(seed))
		// 60 de base avec variance ±15%
		if healed < 51 || healed > 68 {
			t.Fatalf("seed %d: sage heal = %d, want within [51,68]", seed, healed)
		}
	}

	jett, _ := models.GetAgent("jett")
	if healed := resolver.CalculateHealAmount(jett, utils.NewRoller(7)); healed != 0 {
		t.Fatalf("CalculateHealAmount(non-healer) = %d, want 0", healed)
	}
}

func TestCombatResolver_HitLocationCoverage(t *testing.T) {
	resolver := NewCombatResolver()
	vandal, _ := models.GetWeapon("vandal")
	shooter := duelist("vandal", 70)

	roller := utils.NewRoller(99)
	seen := make(map[models.HitLocation]int, 3)
	for i := 0; i < 300; i++ {
		location := resolver.RollHitLocation(shooter, vandal, roller)
		switch location {
		case models.HitHead, models.HitBody, models.HitLegs:
			seen[location]++
		default:
			t.Fatalf("RollHitLocation() = %q, not a known location", location)
		}
	}

	for _, location := range []models.HitLocation{models.HitHead, models.HitBody, models.HitLegs} {
		if seen[location] == 0 {
			t.Fatalf("300 rolls never hit %s (distribution: %v)", location, seen)
		}
	}
	if seen[models.HitBody] <= seen[models.HitLegs] {
		t.Fatalf("body hits (%d) should outnumber leg hits (%d)", seen[models.HitBody], seen[models.HitLegs])
	}
}
