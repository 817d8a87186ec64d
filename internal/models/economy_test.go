package models

import (
	"testing"

	"github.com/google/uuid"
)

// squadIDs retourne n identifiants de joueurs pour les tests d'économie
func squadIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func TestNewTeamEconomy_StartsAtPistolCredits(t *testing.T) {
	ids := squadIDs(TeamSize)
	eco := NewTeamEconomy(uuid.New(), ids)

	if len(eco.Credits) != TeamSize {
		t.Fatalf("credits entries = %d, want %d", len(eco.Credits), TeamSize)
	}
	for _, id := range ids {
		if eco.Credits[id] != PistolRoundCredits {
			t.Fatalf("credits[%s] = %d, want %d", id, eco.Credits[id], PistolRoundCredits)
		}
	}
	if eco.LossStreak != 0 {
		t.Fatalf("LossStreak = %d, want 0", eco.LossStreak)
	}
}

func TestTeamEconomy_LossBonusLadder(t *testing.T) {
	// La prime croît avec la série de défaites et plafonne à trois
	cases := []struct {
		streak int
		want   int
	}{
		{0, 1900},
		{1, 1900},
		{2, 2400},
		{3, 2900},
		{7, 2900},
	}
	eco := NewTeamEconomy(uuid.New(), squadIDs(2))
	for _, tc := range cases {
		eco.LossStreak = tc.streak
		if got := eco.LossBonus(); got != tc.want {
			t.Fatalf("LossBonus() with streak %d = %d, want %d", tc.streak, got, tc.want)
		}
	}
}

func TestTeamEconomy_AwardCapsAtMaxCredits(t *testing.T) {
	ids := squadIDs(1)
	eco := NewTeamEconomy(uuid.New(), ids)
	eco.Credits[ids[0]] = MaxCredits - 50

	eco.Award(ids[0], KillReward)
	if eco.Credits[ids[0]] != MaxCredits {
		t.Fatalf("credits after capped award = %d, want %d", eco.Credits[ids[0]], MaxCredits)
	}

	eco.Award(ids[0], 1)
	if eco.Credits[ids[0]] != MaxCredits {
		t.Fatalf("credits moved past the cap: %d", eco.Credits[ids[0]])
	}
}

func TestTeamEconomy_AwardAllCreditsEveryPlayer(t *testing.T) {
	ids := squadIDs(3)
	eco := NewTeamEconomy(uuid.New(), ids)

	eco.AwardAll(RoundWinReward)
	want := PistolRoundCredits + RoundWinReward
	for _, id := range ids {
		if eco.Credits[id] != want {
			t.Fatalf("credits[%s] = %d, want %d", id, eco.Credits[id], want)
		}
	}
}

func TestTeamEconomy_AverageCredits(t *testing.T) {
	ids := squadIDs(3)
	eco := NewTeamEconomy(uuid.New(), ids)
	eco.Credits[ids[0]] = 800
	eco.Credits[ids[1]] = 900
	eco.Credits[ids[2]] = 1001

	// Division entière: (800+900+1001)/3 = 900
	if got := eco.AverageCredits(); got != 900 {
		t.Fatalf("AverageCredits() = %d, want 900", got)
	}

	empty := &TeamEconomy{TeamID: uuid.New(), Credits: map[uuid.UUID]int{}}
	if got := empty.AverageCredits(); got != 0 {
		t.Fatalf("AverageCredits() on empty economy = %d, want 0", got)
	}
}

func TestTeamEconomy_ResetForOvertime(t *testing.T) {
	ids := squadIDs(TeamSize)
	eco := NewTeamEconomy(uuid.New(), ids)
	eco.LossStreak = 3
	eco.Credits[ids[0]] = 150
	eco.Credits[ids[1]] = MaxCredits

	eco.ResetForOvertime()
	for _, id := range ids {
		if eco.Credits[id] != OvertimeCredits {
			t.Fatalf("credits[%s] after reset = %d, want %d", id, eco.Credits[id], OvertimeCredits)
		}
	}
	if eco.LossStreak != 0 {
		t.Fatalf("LossStreak after reset = %d, want 0", eco.LossStreak)
	}
}
