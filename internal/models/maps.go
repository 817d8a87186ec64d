package models

// MapInfo représente une carte jouable. Les poids de distance déterminent
// la répartition des engagements; AttackerBias est un léger avantage
// structurel du côté attaquant (peut être négatif).
type MapInfo struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Sites        []string `json:"sites"`
	CloseWeight  float64  `json:"close_weight"`
	MediumWeight float64  `json:"medium_weight"`
	LongWeight   float64  `json:"long_weight"`
	AttackerBias float64  `json:"attacker_bias"`
}

var mapCatalog = map[string]MapInfo{
	"ascent": {
		ID: "ascent", Name: "Ascent", Sites: []string{"A", "B"},
		CloseWeight: 0.30, MediumWeight: 0.45, LongWeight: 0.25, AttackerBias: -0.02,
	},
	"bind": {
		ID: "bind", Name: "Bind", Sites: []string{"A", "B"},
		CloseWeight: 0.40, MediumWeight: 0.40, LongWeight: 0.20, AttackerBias: 0.01,
	},
	"haven": {
		ID: "haven", Name: "Haven", Sites: []string{"A", "B", "C"},
		CloseWeight: 0.35, MediumWeight: 0.40, LongWeight: 0.25, AttackerBias: 0.02,
	},
	"split": {
		ID: "split", Name: "Split", Sites: []string{"A", "B"},
		CloseWeight: 0.45, MediumWeight: 0.35, LongWeight: 0.20, AttackerBias: -0.03,
	},
	"icebox": {
		ID: "icebox", Name: "Icebox", Sites: []string{"A", "B"},
		CloseWeight: 0.30, MediumWeight: 0.35, LongWeight: 0.35, AttackerBias: 0.01,
	},
	"breeze": {
		ID: "breeze", Name: "Breeze", Sites: []string{"A", "B"},
		CloseWeight: 0.20, MediumWeight: 0.35, LongWeight: 0.45, AttackerBias: 0.0,
	},
	"lotus": {
		ID: "lotus", Name: "Lotus", Sites: []string{"A", "B", "C"},
		CloseWeight: 0.40, MediumWeight: 0.35, LongWeight: 0.25, AttackerBias: 0.02,
	},
}

// GetMap retourne une carte du catalogue par identifiant
func GetMap(id string) (MapInfo, bool) {
	m, ok := mapCatalog[id]
	return m, ok
}

// AllMaps retourne le catalogue complet des cartes
func AllMaps() []MapInfo {
	maps := make([]MapInfo, 0, len(mapCatalog))
	for _, m := range mapCatalog {
		maps = append(maps, m)
	}
	return maps
}
