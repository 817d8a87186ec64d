package models

import (
	"fmt"

	"github.com/google/uuid"
)

// EventType définit les types d'événements d'une timeline de round.
// L'ensemble est fermé: tout consommateur peut faire un switch exhaustif.
type EventType string

const (
	EventDamage          EventType = "damage"
	EventKill            EventType = "kill"
	EventTradeKill       EventType = "trade_kill"
	EventPlantStart      EventType = "plant_start"
	EventPlantInterrupt  EventType = "plant_interrupt"
	EventPlantComplete   EventType = "plant_complete"
	EventDefuseStart     EventType = "defuse_start"
	EventDefuseInterrupt EventType = "defuse_interrupt"
	EventDefuseComplete  EventType = "defuse_complete"
	EventSpikeDrop       EventType = "spike_drop"
	EventSpikePickup     EventType = "spike_pickup"
	EventSpikeDetonation EventType = "spike_detonation"
	EventAbilityUse      EventType = "ability_use"
	EventHeal            EventType = "heal"
	EventRoundEnd        EventType = "round_end"
)

// Side définit le côté joué par une équipe pendant un round
type Side string

const (
	SideAttacker Side = "attacker"
	SideDefender Side = "defender"
)

// Opposite retourne le côté adverse
func (s Side) Opposite() Side {
	if s == SideAttacker {
		return SideDefender
	}
	return SideAttacker
}

// WinCondition définit les conditions de victoire d'un round
type WinCondition string

const (
	WinByElimination    WinCondition = "elimination"
	WinBySpikeDetonated WinCondition = "spike_detonated"
	WinBySpikeDefused   WinCondition = "spike_defused"
	WinByTimeExpired    WinCondition = "time_expired"
)

// HitLocation définit la zone touchée par un tir
type HitLocation string

const (
	HitHead HitLocation = "head"
	HitBody HitLocation = "body"
	HitLegs HitLocation = "legs"
)

// AbilitySlot définit les emplacements de compétence d'un agent
type AbilitySlot string

const (
	SlotBasic1    AbilitySlot = "basic1"
	SlotBasic2    AbilitySlot = "basic2"
	SlotSignature AbilitySlot = "signature"
	SlotUltimate  AbilitySlot = "ultimate"
)

// DamageEvent représente les dégâts infligés lors d'un échange
type DamageEvent struct {
	AttackerID     uuid.UUID   `json:"attacker_id"`
	AttackerName   string      `json:"attacker_name"`
	VictimID       uuid.UUID   `json:"victim_id"`
	VictimName     string      `json:"victim_name"`
	WeaponID       string      `json:"weapon_id"`
	HitLocation    HitLocation `json:"hit_location"`
	RawDamage      int         `json:"raw_damage"`
	ShieldAbsorbed int         `json:"shield_absorbed"`
	TotalDamage    int         `json:"total_damage"`
	VictimHPAfter  int         `json:"victim_hp_after"`
}

// KillEvent représente une élimination. Les champs Avenged* ne sont
// renseignés que pour un trade kill (vengeance d'un coéquipier tombé
// dans la fenêtre de trade).
type KillEvent struct {
	KillerID       uuid.UUID  `json:"killer_id"`
	KillerName     string     `json:"killer_name"`
	VictimID       uuid.UUID  `json:"victim_id"`
	VictimName     string     `json:"victim_name"`
	WeaponID       string     `json:"weapon_id"`
	Headshot       bool       `json:"headshot"`
	AvengedID      *uuid.UUID `json:"avenged_id,omitempty"`
	AvengedName    string     `json:"avenged_name,omitempty"`
	TradeLatencyMs int64      `json:"trade_latency_ms,omitempty"`
}

// PlantEvent représente une étape de pose du spike.
// Progress est un pourcentage 0-100; Reason n'est renseigné
// que pour une interruption.
type PlantEvent struct {
	PlanterID   uuid.UUID `json:"planter_id"`
	PlanterName string    `json:"planter_name"`
	Site        string    `json:"site"`
	Progress    float64   `json:"progress"`
	Reason      string    `json:"reason,omitempty"`
}

// DefuseEvent représente une étape de désamorçage du spike
type DefuseEvent struct {
	DefuserID   uuid.UUID `json:"defuser_id"`
	DefuserName string    `json:"defuser_name"`
	Site        string    `json:"site"`
	Progress    float64   `json:"progress"`
	Reason      string    `json:"reason,omitempty"`
}

// SpikeEvent représente un changement de possession du spike
type SpikeEvent struct {
	CarrierID   uuid.UUID `json:"carrier_id"`
	CarrierName string    `json:"carrier_name"`
	Reason      string    `json:"reason,omitempty"`
}

// DetonationEvent représente l'explosion du spike
type DetonationEvent struct {
	Site       string      `json:"site"`
	Casualties []uuid.UUID `json:"casualties,omitempty"`
}

// AbilityEvent représente l'utilisation d'une compétence d'agent
type AbilityEvent struct {
	CasterID    uuid.UUID   `json:"caster_id"`
	CasterName  string      `json:"caster_name"`
	AgentID     string      `json:"agent_id"`
	Slot        AbilitySlot `json:"slot"`
	AbilityName string      `json:"ability_name"`
}

// HealEvent représente un soin appliqué à un joueur
type HealEvent struct {
	HealerID      uuid.UUID `json:"healer_id"`
	HealerName    string    `json:"healer_name"`
	TargetID      uuid.UUID `json:"target_id"`
	TargetName    string    `json:"target_name"`
	Amount        int       `json:"amount"`
	TargetHPAfter int       `json:"target_hp_after"`
}

// RoundEndEvent représente la conclusion d'un round
type RoundEndEvent struct {
	RoundNumber  int          `json:"round_number"`
	WinnerSide   Side         `json:"winner_side"`
	WinnerTeamID uuid.UUID    `json:"winner_team_id"`
	WinCondition WinCondition `json:"win_condition"`
}

// TimelineEvent représente un événement horodaté du déroulé d'un round.
// Type identifie le variant et exactement un payload est non-nil.
// Timestamp est en millisecondes depuis le début du round.
type TimelineEvent struct {
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp_ms"`

	Damage     *DamageEvent     `json:"damage,omitempty"`
	Kill       *KillEvent       `json:"kill,omitempty"`
	Plant      *PlantEvent      `json:"plant,omitempty"`
	Defuse     *DefuseEvent     `json:"defuse,omitempty"`
	Spike      *SpikeEvent      `json:"spike,omitempty"`
	Detonation *DetonationEvent `json:"detonation,omitempty"`
	Ability    *AbilityEvent    `json:"ability,omitempty"`
	Heal       *HealEvent       `json:"heal,omitempty"`
	RoundEnd   *RoundEndEvent   `json:"round_end,omitempty"`
}

// IsKill indique si l'événement est une élimination (kill ou trade kill)
func (e *TimelineEvent) IsKill() bool {
	return e.Type == EventKill || e.Type == EventTradeKill
}

// NewDamageEvent construit un événement de dégâts
func NewDamageEvent(ts int64, payload DamageEvent) TimelineEvent {
	return TimelineEvent{Type: EventDamage, Timestamp: ts, Damage: &payload}
}

// NewKillEvent construit un événement d'élimination
func NewKillEvent(ts int64, payload KillEvent) TimelineEvent {
	return TimelineEvent{Type: EventKill, Timestamp: ts, Kill: &payload}
}

// NewTradeKillEvent construit une élimination reclassée en trade kill
func NewTradeKillEvent(ts int64, payload KillEvent) TimelineEvent {
	return TimelineEvent{Type: EventTradeKill, Timestamp: ts, Kill: &payload}
}

// NewPlantStartEvent construit un début de pose
func NewPlantStartEvent(ts int64, payload PlantEvent) TimelineEvent {
	return TimelineEvent{Type: EventPlantStart, Timestamp: ts, Plant: &payload}
}

// NewPlantInterruptEvent construit une interruption de pose
func NewPlantInterruptEvent(ts int64, payload PlantEvent) TimelineEvent {
	return TimelineEvent{Type: EventPlantInterrupt, Timestamp: ts, Plant: &payload}
}

// NewPlantCompleteEvent construit une pose aboutie
func NewPlantCompleteEvent(ts int64, payload PlantEvent) TimelineEvent {
	return TimelineEvent{Type: EventPlantComplete, Timestamp: ts, Plant: &payload}
}

// NewDefuseStartEvent construit un début de désamorçage
func NewDefuseStartEvent(ts int64, payload DefuseEvent) TimelineEvent {
	return TimelineEvent{Type: EventDefuseStart, Timestamp: ts, Defuse: &payload}
}

// NewDefuseInterruptEvent construit une interruption de désamorçage
func NewDefuseInterruptEvent(ts int64, payload DefuseEvent) TimelineEvent {
	return TimelineEvent{Type: EventDefuseInterrupt, Timestamp: ts, Defuse: &payload}
}

// NewDefuseCompleteEvent construit un désamorçage abouti
func NewDefuseCompleteEvent(ts int64, payload DefuseEvent) TimelineEvent {
	return TimelineEvent{Type: EventDefuseComplete, Timestamp: ts, Defuse: &payload}
}

// NewSpikeDropEvent construit une perte du spike par son porteur
func NewSpikeDropEvent(ts int64, payload SpikeEvent) TimelineEvent {
	return TimelineEvent{Type: EventSpikeDrop, Timestamp: ts, Spike: &payload}
}

// NewSpikePickupEvent construit une récupération du spike
func NewSpikePickupEvent(ts int64, payload SpikeEvent) TimelineEvent {
	return TimelineEvent{Type: EventSpikePickup, Timestamp: ts, Spike: &payload}
}

// NewSpikeDetonationEvent construit l'explosion du spike
func NewSpikeDetonationEvent(ts int64, payload DetonationEvent) TimelineEvent {
	return TimelineEvent{Type: EventSpikeDetonation, Timestamp: ts, Detonation: &payload}
}

// NewAbilityUseEvent construit l'utilisation d'une compétence
func NewAbilityUseEvent(ts int64, payload AbilityEvent) TimelineEvent {
	return TimelineEvent{Type: EventAbilityUse, Timestamp: ts, Ability: &payload}
}

// NewHealEvent construit un soin
func NewHealEvent(ts int64, payload HealEvent) TimelineEvent {
	return TimelineEvent{Type: EventHeal, Timestamp: ts, Heal: &payload}
}

// NewRoundEndEvent construit la conclusion du round
func NewRoundEndEvent(ts int64, payload RoundEndEvent) TimelineEvent {
	return TimelineEvent{Type: EventRoundEnd, Timestamp: ts, RoundEnd: &payload}
}

// payloadPresent vérifie que le payload correspondant au type est renseigné
func (e *TimelineEvent) payloadPresent() bool {
	switch e.Type {
	case EventDamage:
		return e.Damage != nil
	case EventKill, EventTradeKill:
		return e.Kill != nil
	case EventPlantStart, EventPlantInterrupt, EventPlantComplete:
		return e.Plant != nil
	case EventDefuseStart, EventDefuseInterrupt, EventDefuseComplete:
		return e.Defuse != nil
	case EventSpikeDrop, EventSpikePickup:
		return e.Spike != nil
	case EventSpikeDetonation:
		return e.Detonation != nil
	case EventAbilityUse:
		return e.Ability != nil
	case EventHeal:
		return e.Heal != nil
	case EventRoundEnd:
		return e.RoundEnd != nil
	default:
		return false
	}
}

// ValidateTimeline vérifie les invariants structurels d'une timeline:
// timestamps croissants au sens large, payloads cohérents avec les types,
// et exactement un round_end placé en dernière position.
func ValidateTimeline(events []TimelineEvent) error {
	if len(events) == 0 {
		return fmt.Errorf("timeline is empty: missing round_end event")
	}

	roundEnds := 0
	var lastTS int64
	for i := range events {
		e := &events[i]
		if !e.payloadPresent() {
			return fmt.Errorf("event %d (%s) has no matching payload", i, e.Type)
		}
		if e.Timestamp < lastTS {
			return fmt.Errorf("event %d (%s) breaks timestamp ordering: %d < %d", i, e.Type, e.Timestamp, lastTS)
		}
		lastTS = e.Timestamp
		if e.Type == EventRoundEnd {
			roundEnds++
			if i != len(events)-1 {
				return fmt.Errorf("round_end event at position %d is not terminal", i)
			}
		}
	}
	if roundEnds != 1 {
		return fmt.Errorf("timeline has %d round_end events, expected exactly one", roundEnds)
	}
	return nil
}
