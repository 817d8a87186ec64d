package models

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

// killAt construit une élimination minimale pour les tests de structure
func killAt(ts int64, killer, victim uuid.UUID) TimelineEvent {
	return NewKillEvent(ts, KillEvent{
		KillerID:   killer,
		KillerName: "killer",
		VictimID:   victim,
		VictimName: "victim",
		WeaponID:   "vandal",
	})
}

// roundEndAt construit la conclusion d'un round gagné par les attaquants
func roundEndAt(ts int64, winnerTeamID uuid.UUID) TimelineEvent {
	return NewRoundEndEvent(ts, RoundEndEvent{
		RoundNumber:  1,
		WinnerSide:   SideAttacker,
		WinnerTeamID: winnerTeamID,
		WinCondition: WinByElimination,
	})
}

func TestValidateTimeline_AcceptsWellFormedRound(t *testing.T) {
	teamA := uuid.New()
	killer := uuid.New()
	victim := uuid.New()

	timeline := []TimelineEvent{
		NewDamageEvent(800, DamageEvent{
			AttackerID:  killer,
			VictimID:    victim,
			WeaponID:    "vandal",
			HitLocation: HitBody,
			RawDamage:   39,
			TotalDamage: 39,
		}),
		killAt(1200, killer, victim),
		roundEndAt(45000, teamA),
	}

	if err := ValidateTimeline(timeline); err != nil {
		t.Fatalf("ValidateTimeline() = %v, want nil", err)
	}
}

func TestValidateTimeline_AcceptsEqualTimestamps(t *testing.T) {
	// Un trade kill peut partager l'horodatage de l'élimination vengée
	killer := uuid.New()
	victim := uuid.New()

	timeline := []TimelineEvent{
		killAt(5000, killer, victim),
		NewTradeKillEvent(5000, KillEvent{
			KillerID:  uuid.New(),
			VictimID:  killer,
			WeaponID:  "sheriff",
			AvengedID: &victim,
		}),
		roundEndAt(9000, uuid.New()),
	}

	if err := ValidateTimeline(timeline); err != nil {
		t.Fatalf("ValidateTimeline() = %v, want nil", err)
	}
}

func TestValidateTimeline_RejectsEmptyTimeline(t *testing.T) {
	err := ValidateTimeline(nil)
	if err == nil {
		t.Fatal("ValidateTimeline(nil) = nil, want error")
	}
	if !strings.Contains(err.Error(), "round_end") {
		t.Fatalf("error %q does not mention the missing round_end", err)
	}
}

func TestValidateTimeline_RejectsMissingRoundEnd(t *testing.T) {
	timeline := []TimelineEvent{
		killAt(1000, uuid.New(), uuid.New()),
		killAt(2000, uuid.New(), uuid.New()),
	}

	err := ValidateTimeline(timeline)
	if err == nil {
		t.Fatal("ValidateTimeline() = nil, want error")
	}
	if !strings.Contains(err.Error(), "round_end") {
		t.Fatalf("error %q does not mention the missing round_end", err)
	}
}

func TestValidateTimeline_RejectsRoundEndBeforeLastEvent(t *testing.T) {
	timeline := []TimelineEvent{
		roundEndAt(8000, uuid.New()),
		killAt(9000, uuid.New(), uuid.New()),
	}

	err := ValidateTimeline(timeline)
	if err == nil {
		t.Fatal("ValidateTimeline() = nil, want error for non-terminal round_end")
	}
	if !strings.Contains(err.Error(), "not terminal") {
		t.Fatalf("error %q does not flag the non-terminal round_end", err)
	}
}

func TestValidateTimeline_RejectsDuplicateRoundEnd(t *testing.T) {
	timeline := []TimelineEvent{
		killAt(1000, uuid.New(), uuid.New()),
		roundEndAt(8000, uuid.New()),
		roundEndAt(8000, uuid.New()),
	}

	if err := ValidateTimeline(timeline); err == nil {
		t.Fatal("ValidateTimeline() = nil, want error for duplicated round_end")
	}
}

func TestValidateTimeline_RejectsDecreasingTimestamps(t *testing.T) {
	timeline := []TimelineEvent{
		killAt(5000, uuid.New(), uuid.New()),
		killAt(4000, uuid.New(), uuid.New()),
		roundEndAt(9000, uuid.New()),
	}

	err := ValidateTimeline(timeline)
	if err == nil {
		t.Fatal("ValidateTimeline() = nil, want error for decreasing timestamps")
	}
	if !strings.Contains(err.Error(), "ordering") {
		t.Fatalf("error %q does not flag the timestamp ordering", err)
	}
}

func TestValidateTimeline_RejectsMissingPayload(t *testing.T) {
	timeline := []TimelineEvent{
		{Type: EventKill, Timestamp: 1000},
		roundEndAt(8000, uuid.New()),
	}

	err := ValidateTimeline(timeline)
	if err == nil {
		t.Fatal("ValidateTimeline() = nil, want error for kill event without payload")
	}
	if !strings.Contains(err.Error(), "payload") {
		t.Fatalf("error %q does not mention the missing payload", err)
	}
}

func TestTimelineEvent_IsKill(t *testing.T) {
	kill := killAt(1000, uuid.New(), uuid.New())
	trade := NewTradeKillEvent(1500, KillEvent{KillerID: uuid.New(), VictimID: uuid.New()})
	damage := NewDamageEvent(500, DamageEvent{TotalDamage: 30})

	if !kill.IsKill() {
		t.Fatal("IsKill() on a kill event = false, want true")
	}
	if !trade.IsKill() {
		t.Fatal("IsKill() on a trade_kill event = false, want true")
	}
	if damage.IsKill() {
		t.Fatal("IsKill() on a damage event = true, want false")
	}
}

func TestSide_Opposite(t *testing.T) {
	if got := SideAttacker.Opposite(); got != SideDefender {
		t.Fatalf("SideAttacker.Opposite() = %s, want %s", got, SideDefender)
	}
	if got := SideDefender.Opposite(); got != SideAttacker {
		t.Fatalf("SideDefender.Opposite() = %s, want %s", got, SideAttacker)
	}
}
