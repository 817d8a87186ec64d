package models

// WeaponCategory définit les catégories d'armes de la boutique
type WeaponCategory string

const (
	CategorySidearm WeaponCategory = "sidearm"
	CategorySMG     WeaponCategory = "smg"
	CategoryShotgun WeaponCategory = "shotgun"
	CategoryRifle   WeaponCategory = "rifle"
	CategorySniper  WeaponCategory = "sniper"
	CategoryHeavy   WeaponCategory = "heavy"
)

// RangeBand définit la distance d'un engagement
type RangeBand string

const (
	RangeClose  RangeBand = "close"
	RangeMedium RangeBand = "medium"
	RangeLong   RangeBand = "long"
)

// WeaponInfo représente une arme et ses caractéristiques de simulation.
// Les facteurs d'efficacité par distance sont des poids 0-1 alimentant
// la résolution des duels.
type WeaponInfo struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Category           WeaponCategory `json:"category"`
	Cost               int            `json:"cost"`
	BodyDamage         int            `json:"body_damage"`
	HeadshotMultiplier float64        `json:"headshot_multiplier"`
	LegMultiplier      float64        `json:"leg_multiplier"`
	FireRateFactor     float64        `json:"fire_rate_factor"`
	CloseEffectiveness float64        `json:"close_effectiveness"`
	MidEffectiveness   float64        `json:"mid_effectiveness"`
	LongEffectiveness  float64        `json:"long_effectiveness"`
}

// EffectivenessAt retourne l'efficacité de l'arme à une distance donnée
func (w WeaponInfo) EffectivenessAt(band RangeBand) float64 {
	switch band {
	case RangeClose:
		return w.CloseEffectiveness
	case RangeLong:
		return w.LongEffectiveness
	default:
		return w.MidEffectiveness
	}
}

// Coûts et points de bouclier
const (
	LightShieldCost = 400
	LightShieldHP   = 25
	HeavyShieldCost = 1000
	HeavyShieldHP   = 50
)

// ShieldCost retourne le coût d'un type de bouclier
func ShieldCost(t ShieldType) int {
	switch t {
	case ShieldLight:
		return LightShieldCost
	case ShieldHeavy:
		return HeavyShieldCost
	default:
		return 0
	}
}

// ShieldPoints retourne les points d'absorption d'un type de bouclier
func ShieldPoints(t ShieldType) int {
	switch t {
	case ShieldLight:
		return LightShieldHP
	case ShieldHeavy:
		return HeavyShieldHP
	default:
		return 0
	}
}

var weaponCatalog = map[string]WeaponInfo{
	"classic": {
		ID: "classic", Name: "Classic", Category: CategorySidearm, Cost: 0,
		BodyDamage: 26, HeadshotMultiplier: 3.0, LegMultiplier: 0.85, FireRateFactor: 0.50,
		CloseEffectiveness: 0.60, MidEffectiveness: 0.40, LongEffectiveness: 0.20,
	},
	"frenzy": {
		ID: "frenzy", Name: "Frenzy", Category: CategorySidearm, Cost: 450,
		BodyDamage: 26, HeadshotMultiplier: 3.0, LegMultiplier: 0.85, FireRateFactor: 0.90,
		CloseEffectiveness: 0.70, MidEffectiveness: 0.40, LongEffectiveness: 0.15,
	},
	"ghost": {
		ID: "ghost", Name: "Ghost", Category: CategorySidearm, Cost: 500,
		BodyDamage: 30, HeadshotMultiplier: 3.5, LegMultiplier: 0.85, FireRateFactor: 0.55,
		CloseEffectiveness: 0.65, MidEffectiveness: 0.55, LongEffectiveness: 0.35,
	},
	"sheriff": {
		ID: "sheriff", Name: "Sheriff", Category: CategorySidearm, Cost: 800,
		BodyDamage: 55, HeadshotMultiplier: 2.9, LegMultiplier: 0.85, FireRateFactor: 0.35,
		CloseEffectiveness: 0.60, MidEffectiveness: 0.60, LongEffectiveness: 0.45,
	},
	"stinger": {
		ID: "stinger", Name: "Stinger", Category: CategorySMG, Cost: 1100,
		BodyDamage: 27, HeadshotMultiplier: 2.5, LegMultiplier: 0.85, FireRateFactor: 0.95,
		CloseEffectiveness: 0.80, MidEffectiveness: 0.50, LongEffectiveness: 0.20,
	},
	"spectre": {
		ID: "spectre", Name: "Spectre", Category: CategorySMG, Cost: 1600,
		BodyDamage: 26, HeadshotMultiplier: 2.5, LegMultiplier: 0.85, FireRateFactor: 0.88,
		CloseEffectiveness: 0.80, MidEffectiveness: 0.60, LongEffectiveness: 0.30,
	},
	"bucky": {
		ID: "bucky", Name: "Bucky", Category: CategoryShotgun, Cost: 850,
		BodyDamage: 40, HeadshotMultiplier: 2.0, LegMultiplier: 0.85, FireRateFactor: 0.30,
		CloseEffectiveness: 0.90, MidEffectiveness: 0.35, LongEffectiveness: 0.10,
	},
	"judge": {
		ID: "judge", Name: "Judge", Category: CategoryShotgun, Cost: 1850,
		BodyDamage: 34, HeadshotMultiplier: 2.0, LegMultiplier: 0.85, FireRateFactor: 0.55,
		CloseEffectiveness: 0.95, MidEffectiveness: 0.40, LongEffectiveness: 0.10,
	},
	"bulldog": {
		ID: "bulldog", Name: "Bulldog", Category: CategoryRifle, Cost: 2050,
		BodyDamage: 35, HeadshotMultiplier: 3.3, LegMultiplier: 0.85, FireRateFactor: 0.68,
		CloseEffectiveness: 0.70, MidEffectiveness: 0.75, LongEffectiveness: 0.60,
	},
	"guardian": {
		ID: "guardian", Name: "Guardian", Category: CategoryRifle, Cost: 2250,
		BodyDamage: 65, HeadshotMultiplier: 3.0, LegMultiplier: 0.85, FireRateFactor: 0.40,
		CloseEffectiveness: 0.60, MidEffectiveness: 0.80, LongEffectiveness: 0.80,
	},
	"phantom": {
		ID: "phantom", Name: "Phantom", Category: CategoryRifle, Cost: 2900,
		BodyDamage: 39, HeadshotMultiplier: 4.0, LegMultiplier: 0.85, FireRateFactor: 0.78,
		CloseEffectiveness: 0.90, MidEffectiveness: 0.90, LongEffectiveness: 0.70,
	},
	"vandal": {
		ID: "vandal", Name: "Vandal", Category: CategoryRifle, Cost: 2900,
		BodyDamage: 40, HeadshotMultiplier: 4.0, LegMultiplier: 0.85, FireRateFactor: 0.72,
		CloseEffectiveness: 0.85, MidEffectiveness: 0.90, LongEffectiveness: 0.85,
	},
	"marshal": {
		ID: "marshal", Name: "Marshal", Category: CategorySniper, Cost: 950,
		BodyDamage: 101, HeadshotMultiplier: 2.0, LegMultiplier: 0.85, FireRateFactor: 0.25,
		CloseEffectiveness: 0.40, MidEffectiveness: 0.70, LongEffectiveness: 0.85,
	},
	"operator": {
		ID: "operator", Name: "Operator", Category: CategorySniper, Cost: 4700,
		BodyDamage: 150, HeadshotMultiplier: 1.7, LegMultiplier: 0.85, FireRateFactor: 0.18,
		CloseEffectiveness: 0.45, MidEffectiveness: 0.85, LongEffectiveness: 0.98,
	},
	"ares": {
		ID: "ares", Name: "Ares", Category: CategoryHeavy, Cost: 1600,
		BodyDamage: 30, HeadshotMultiplier: 2.4, LegMultiplier: 0.85, FireRateFactor: 0.90,
		CloseEffectiveness: 0.65, MidEffectiveness: 0.70, LongEffectiveness: 0.60,
	},
	"odin": {
		ID: "odin", Name: "Odin", Category: CategoryHeavy, Cost: 3200,
		BodyDamage: 38, HeadshotMultiplier: 2.5, LegMultiplier: 0.85, FireRateFactor: 0.95,
		CloseEffectiveness: 0.70, MidEffectiveness: 0.80, LongEffectiveness: 0.70,
	},
}

// GetWeapon retourne une arme du catalogue par identifiant
func GetWeapon(id string) (WeaponInfo, bool) {
	w, ok := weaponCatalog[id]
	return w, ok
}

// WeaponsByCategory retourne les armes d'une catégorie, triées par coût
// décroissant puis par identifiant. L'ordre ne dépend jamais de l'ordre
// d'itération de la map du catalogue.
func WeaponsByCategory(cat WeaponCategory) []WeaponInfo {
	weapons := make([]WeaponInfo, 0, 4)
	for _, w := range weaponCatalog {
		if w.Category == cat {
			weapons = append(weapons, w)
		}
	}
	for i := 1; i < len(weapons); i++ {
		for j := i; j > 0 && weaponBefore(weapons[j], weapons[j-1]); j-- {
			weapons[j], weapons[j-1] = weapons[j-1], weapons[j]
		}
	}
	return weapons
}

func weaponBefore(a, b WeaponInfo) bool {
	if a.Cost != b.Cost {
		return a.Cost > b.Cost
	}
	return a.ID < b.ID
}

// BestAffordableWeapon retourne l'arme la plus chère payable parmi des
// catégories classées par préférence. Le repli est toujours le Classic.
func BestAffordableWeapon(categories []WeaponCategory, credits int) WeaponInfo {
	for _, cat := range categories {
		for _, w := range WeaponsByCategory(cat) {
			if w.Cost <= credits {
				return w
			}
		}
	}
	classic := weaponCatalog["classic"]
	return classic
}
