package models

// AgentRole définit les rôles d'agent composant une équipe
type AgentRole string

const (
	RoleDuelist    AgentRole = "duelist"
	RoleInitiator  AgentRole = "initiator"
	RoleController AgentRole = "controller"
	RoleSentinel   AgentRole = "sentinel"
)

// AgentKit représente les quatre compétences nommées d'un agent
type AgentKit struct {
	Basic1    string `json:"basic1"`
	Basic2    string `json:"basic2"`
	Signature string `json:"signature"`
	Ultimate  string `json:"ultimate"`
}

// NameFor retourne le nom de la compétence occupant un emplacement
func (k AgentKit) NameFor(slot AbilitySlot) string {
	switch slot {
	case SlotBasic1:
		return k.Basic1
	case SlotBasic2:
		return k.Basic2
	case SlotSignature:
		return k.Signature
	case SlotUltimate:
		return k.Ultimate
	default:
		return ""
	}
}

// AgentInfo représente un agent jouable et ses caractéristiques de simulation.
// Aggression et UtilityRating sont des facteurs 0-1 alimentant la résolution
// des duels; HealAmount est non nul pour les agents soigneurs.
type AgentInfo struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Role          AgentRole   `json:"role"`
	Kit           AgentKit    `json:"kit"`
	UltRequired   int         `json:"ult_required"`
	Aggression    float64     `json:"aggression"`
	UtilityRating float64     `json:"utility_rating"`
	HealSlot      AbilitySlot `json:"heal_slot,omitempty"`
	HealAmount    int         `json:"heal_amount,omitempty"`
}

// CanHeal indique si l'agent dispose d'une compétence de soin
func (a AgentInfo) CanHeal() bool {
	return a.HealAmount > 0
}

var agentCatalog = map[string]AgentInfo{
	"jett": {
		ID: "jett", Name: "Jett", Role: RoleDuelist,
		Kit:         AgentKit{Basic1: "Cloudburst", Basic2: "Updraft", Signature: "Tailwind", Ultimate: "Blade Storm"},
		UltRequired: 8, Aggression: 0.95, UtilityRating: 0.30,
	},
	"raze": {
		ID: "raze", Name: "Raze", Role: RoleDuelist,
		Kit:         AgentKit{Basic1: "Boom Bot", Basic2: "Blast Pack", Signature: "Paint Shells", Ultimate: "Showstopper"},
		UltRequired: 8, Aggression: 0.90, UtilityRating: 0.45,
	},
	"phoenix": {
		ID: "phoenix", Name: "Phoenix", Role: RoleDuelist,
		Kit:         AgentKit{Basic1: "Blaze", Basic2: "Curveball", Signature: "Hot Hands", Ultimate: "Run It Back"},
		UltRequired: 6, Aggression: 0.85, UtilityRating: 0.50,
	},
	"reyna": {
		ID: "reyna", Name: "Reyna", Role: RoleDuelist,
		Kit:         AgentKit{Basic1: "Leer", Basic2: "Devour", Signature: "Dismiss", Ultimate: "Empress"},
		UltRequired: 6, Aggression: 0.92, UtilityRating: 0.25,
		HealSlot: SlotBasic2, HealAmount: 50,
	},
	"sova": {
		ID: "sova", Name: "Sova", Role: RoleInitiator,
		Kit:         AgentKit{Basic1: "Owl Drone", Basic2: "Shock Bolt", Signature: "Recon Bolt", Ultimate: "Hunter's Fury"},
		UltRequired: 8, Aggression: 0.55, UtilityRating: 0.85,
	},
	"breach": {
		ID: "breach", Name: "Breach", Role: RoleInitiator,
		Kit:         AgentKit{Basic1: "Aftershock", Basic2: "Flashpoint", Signature: "Fault Line", Ultimate: "Rolling Thunder"},
		UltRequired: 9, Aggression: 0.60, UtilityRating: 0.80,
	},
	"skye": {
		ID: "skye", Name: "Skye", Role: RoleInitiator,
		Kit:         AgentKit{Basic1: "Regrowth", Basic2: "Trailblazer", Signature: "Guiding Light", Ultimate: "Seekers"},
		UltRequired: 7, Aggression: 0.58, UtilityRating: 0.82,
		HealSlot: SlotBasic1, HealAmount: 40,
	},
	"omen": {
		ID: "omen", Name: "Omen", Role: RoleController,
		Kit:         AgentKit{Basic1: "Shrouded Step", Basic2: "Paranoia", Signature: "Dark Cover", Ultimate: "From the Shadows"},
		UltRequired: 7, Aggression: 0.50, UtilityRating: 0.75,
	},
	"brimstone": {
		ID: "brimstone", Name: "Brimstone", Role: RoleController,
		Kit:         AgentKit{Basic1: "Stim Beacon", Basic2: "Incendiary", Signature: "Sky Smoke", Ultimate: "Orbital Strike"},
		UltRequired: 7, Aggression: 0.45, UtilityRating: 0.80,
	},
	"astra": {
		ID: "astra", Name: "Astra", Role: RoleController,
		Kit:         AgentKit{Basic1: "Gravity Well", Basic2: "Nova Pulse", Signature: "Nebula", Ultimate: "Cosmic Divide"},
		UltRequired: 7, Aggression: 0.40, UtilityRating: 0.85,
	},
	"sage": {
		ID: "sage", Name: "Sage", Role: RoleSentinel,
		Kit:         AgentKit{Basic1: "Barrier Orb", Basic2: "Slow Orb", Signature: "Healing Orb", Ultimate: "Resurrection"},
		UltRequired: 8, Aggression: 0.35, UtilityRating: 0.80,
		HealSlot: SlotSignature, HealAmount: 60,
	},
	"killjoy": {
		ID: "killjoy", Name: "Killjoy", Role: RoleSentinel,
		Kit:         AgentKit{Basic1: "Nanoswarm", Basic2: "Alarmbot", Signature: "Turret", Ultimate: "Lockdown"},
		UltRequired: 8, Aggression: 0.40, UtilityRating: 0.88,
	},
	"cypher": {
		ID: "cypher", Name: "Cypher", Role: RoleSentinel,
		Kit:         AgentKit{Basic1: "Trapwire", Basic2: "Cyber Cage", Signature: "Spycam", Ultimate: "Neural Theft"},
		UltRequired: 6, Aggression: 0.38, UtilityRating: 0.85,
	},
}

// GetAgent retourne un agent du catalogue par identifiant
func GetAgent(id string) (AgentInfo, bool) {
	a, ok := agentCatalog[id]
	return a, ok
}

// AllAgents retourne le catalogue complet des agents
func AllAgents() []AgentInfo {
	agents := make([]AgentInfo, 0, len(agentCatalog))
	for _, a := range agentCatalog {
		agents = append(agents, a)
	}
	return agents
}
