package service

import (
	"fmt"

	"github.com/google/uuid"

	"simulation/internal/models"
)

// SummaryCalculatorInterface définit la dérivation des statistiques
// d'un round à partir de sa timeline
type SummaryCalculatorInterface interface {
	DeriveFromTimeline(timeline []models.TimelineEvent, playerStates map[uuid.UUID]*models.PlayerRoundState, teamAIDs, teamBIDs []uuid.UUID) (*models.RoundSummary, error)
}

// SummaryCalculator implémente l'interface SummaryCalculatorInterface
type SummaryCalculator struct{}

// NewSummaryCalculator crée un nouveau calculateur de résumés
func NewSummaryCalculator() SummaryCalculatorInterface {
	return &SummaryCalculator{}
}

// DeriveFromTimeline dérive le résumé complet d'un round depuis sa seule
// timeline et l'état final des joueurs. La fonction est pure: aucun
// compteur entretenu pendant la simulation n'est consulté, deux appels
// sur la même entrée produisent exactement le même résumé.
// Une timeline sans round_end est une violation d'invariant: l'appel
// échoue au lieu de produire un résumé vide.
func (c *SummaryCalculator) DeriveFromTimeline(timeline []models.TimelineEvent, playerStates map[uuid.UUID]*models.PlayerRoundState, teamAIDs, teamBIDs []uuid.UUID) (*models.RoundSummary, error) {
	roundEnd := findRoundEnd(timeline)
	if roundEnd == nil {
		return nil, fmt.Errorf("timeline has no round_end event: cannot derive a round summary")
	}

	summary := &models.RoundSummary{
		RoundNumber:   roundEnd.RoundEnd.RoundNumber,
		RoundDuration: roundEnd.Timestamp,
		WinnerSide:    roundEnd.RoundEnd.WinnerSide,
		WinnerTeamID:  roundEnd.RoundEnd.WinnerTeamID,
		WinCondition:  roundEnd.RoundEnd.WinCondition,
	}

	for i := range timeline {
		e := &timeline[i]
		switch e.Type {
		case models.EventDamage:
			summary.TotalDamage += e.Damage.TotalDamage

		case models.EventKill, models.EventTradeKill:
			if summary.FirstBlood == nil {
				summary.FirstBlood = &models.FirstBlood{
					KillerID:   e.Kill.KillerID,
					KillerName: e.Kill.KillerName,
					VictimID:   e.Kill.VictimID,
					VictimName: e.Kill.VictimName,
					Timestamp:  e.Timestamp,
					WeaponID:   e.Kill.WeaponID,
				}
			}
			summary.TotalKills++
			if e.Kill.Headshot {
				summary.TotalHeadshots++
			}

		case models.EventPlantStart:
			summary.PlantsAttempted++

		case models.EventPlantComplete:
			summary.SpikePlanted = true
			if summary.PlantSite == "" {
				summary.PlantSite = e.Plant.Site
			}

		case models.EventDefuseStart:
			summary.DefusesAttempted++

		case models.EventDefuseComplete:
			summary.SpikeDefused = true

		case models.EventSpikeDetonation:
			summary.SpikeDetonated = true

		case models.EventAbilityUse:
			summary.AbilitiesUsed++
			if e.Ability.Slot == models.SlotUltimate {
				summary.UltimatesUsed++
			}

		case models.EventHeal:
			summary.HealsApplied++
			summary.TotalHealing += e.Heal.Amount
		}
	}

	if summary.TotalKills > 0 {
		summary.HeadshotPercentage = float64(summary.TotalHeadshots) / float64(summary.TotalKills) * 100.0
	}

	clutch, err := c.detectClutch(timeline, playerStates, teamAIDs, teamBIDs, roundEnd)
	if err != nil {
		return nil, err
	}
	summary.ClutchAttempt = clutch

	return summary, nil
}

// detectClutch balaie les éliminations dans l'ordre chronologique en
// décomptant les vivants de chaque camp depuis les ensembles fournis.
// Le premier instant où un camp tombe à exactement un survivant face à
// au moins deux adversaires ouvre l'unique situation de clutch du round;
// elle est attribuée à ce survivant et gagnée si son équipe gagne.
func (c *SummaryCalculator) detectClutch(timeline []models.TimelineEvent, playerStates map[uuid.UUID]*models.PlayerRoundState, teamAIDs, teamBIDs []uuid.UUID, roundEnd *models.TimelineEvent) (*models.ClutchAttempt, error) {
	sideOf := make(map[uuid.UUID]int, len(teamAIDs)+len(teamBIDs))
	for _, id := range teamAIDs {
		sideOf[id] = 0
	}
	for _, id := range teamBIDs {
		sideOf[id] = 1
	}

	alive := [2]int{len(teamAIDs), len(teamBIDs)}
	dead := make(map[uuid.UUID]bool, len(sideOf))

	var clutch *models.ClutchAttempt
	for i := range timeline {
		e := &timeline[i]
		if !e.IsKill() {
			continue
		}

		if clutch != nil {
			if e.Kill.KillerID == clutch.PlayerID {
				clutch.KillsDuring++
			}
			continue
		}

		victimSide, known := sideOf[e.Kill.VictimID]
		if !known || dead[e.Kill.VictimID] {
			continue
		}
		dead[e.Kill.VictimID] = true
		alive[victimSide]--

		survivorSide := -1
		if alive[0] == 1 && alive[1] >= 2 {
			survivorSide = 0
		} else if alive[1] == 1 && alive[0] >= 2 {
			survivorSide = 1
		}
		if survivorSide == -1 {
			continue
		}

		survivorID, ok := lastSurvivor(survivorSide, teamAIDs, teamBIDs, dead)
		if !ok {
			return nil, fmt.Errorf("clutch detection found no survivor for side %d", survivorSide)
		}
		clutch = &models.ClutchAttempt{
			PlayerID:       survivorID,
			PlayerName:     playerNameFrom(playerStates, survivorID),
			Situation:      fmt.Sprintf("1v%d", alive[1-survivorSide]),
			StartTimestamp: e.Timestamp,
		}
	}

	if clutch == nil {
		return nil, nil
	}

	if state, ok := playerStates[clutch.PlayerID]; ok {
		clutch.Won = state.TeamID == roundEnd.RoundEnd.WinnerTeamID
	}
	return clutch, nil
}

func findRoundEnd(timeline []models.TimelineEvent) *models.TimelineEvent {
	for i := range timeline {
		if timeline[i].Type == models.EventRoundEnd {
			return &timeline[i]
		}
	}
	return nil
}

// lastSurvivor retourne le seul joueur encore en vie du camp donné
func lastSurvivor(side int, teamAIDs, teamBIDs []uuid.UUID, dead map[uuid.UUID]bool) (uuid.UUID, bool) {
	ids := teamAIDs
	if side == 1 {
		ids = teamBIDs
	}
	for _, id := range ids {
		if !dead[id] {
			return id, true
		}
	}
	return uuid.Nil, false
}

func playerNameFrom(playerStates map[uuid.UUID]*models.PlayerRoundState, id uuid.UUID) string {
	if state, ok := playerStates[id]; ok {
		return state.Name
	}
	return ""
}
