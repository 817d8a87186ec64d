package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"simulation/internal/models"
	"simulation/internal/utils"
)

// Étiquettes d'avancement rapportées pendant une simulation de match
const (
	StageValidating  = "validating"
	StageSimulating  = "simulating_map"
	StageAggregating = "aggregating"
)

// Garde-fou contre une carte qui ne se déciderait jamais en prolongations
const maxRoundsPerMap = 200

// ProgressFunc reçoit l'avancement d'une simulation en cours:
// une étiquette d'étape, un pourcentage 0-100 et un détail lisible
type ProgressFunc func(stage string, percent int, detail string)

// MatchSimulatorInterface définit l'orchestration d'une série best-of-N
type MatchSimulatorInterface interface {
	SimulateMatch(req *models.MatchRequest) (*models.MatchResult, error)
	SimulateMatchWithProgress(req *models.MatchRequest, progress ProgressFunc) (*models.MatchResult, error)
}

// MatchSimulator implémente l'interface MatchSimulatorInterface
type MatchSimulator struct {
	buyPhase     BuyPhaseResolverInterface
	rounds       RoundSimulatorInterface
	summaries    SummaryCalculatorInterface
	compositions CompositionAnalyzerInterface
	logger       *logrus.Logger
}

// NewMatchSimulator crée un nouveau simulateur de match
func NewMatchSimulator(
	buyPhase BuyPhaseResolverInterface,
	rounds RoundSimulatorInterface,
	summaries SummaryCalculatorInterface,
	compositions CompositionAnalyzerInterface,
	logger *logrus.Logger,
) MatchSimulatorInterface {
	return &MatchSimulator{
		buyPhase:     buyPhase,
		rounds:       rounds,
		summaries:    summaries,
		compositions: compositions,
		logger:       logger,
	}
}

// SimulateMatch simule une série complète sans rapporter d'avancement
func (s *MatchSimulator) SimulateMatch(req *models.MatchRequest) (*models.MatchResult, error) {
	return s.SimulateMatchWithProgress(req, nil)
}

// SimulateMatchWithProgress simule une série best-of-N carte par carte.
// Toute erreur de configuration est rejetée avant le premier round;
// aucun résultat partiel n'est jamais retourné. Le vainqueur de la série
// est déclaré dès qu'un camp atteint la majorité des cartes.
func (s *MatchSimulator) SimulateMatchWithProgress(req *models.MatchRequest, progress ProgressFunc) (*models.MatchResult, error) {
	report := func(stage string, percent int, detail string) {
		if progress != nil {
			progress(stage, percent, detail)
		}
	}

	report(StageValidating, 0, "checking rosters and strategies")
	if req == nil {
		return nil, fmt.Errorf("match request is nil")
	}
	if err := req.Validate(); err != nil {
		s.logger.WithError(err).Warn("Match request rejected")
		return nil, fmt.Errorf("match request rejected: %w", err)
	}

	bonusA, err := s.compositions.CompositionBonus(&req.SelectionA)
	if err != nil {
		return nil, fmt.Errorf("team A composition rejected: %w", err)
	}
	bonusB, err := s.compositions.CompositionBonus(&req.SelectionB)
	if err != nil {
		return nil, fmt.Errorf("team B composition rejected: %w", err)
	}

	roller := utils.NewRoller(req.Seed)
	startedAt := time.Now()

	result := &models.MatchResult{
		MatchID:   uuid.New(),
		TeamAID:   req.TeamA.ID,
		TeamAName: req.TeamA.Name,
		TeamBID:   req.TeamB.ID,
		TeamBName: req.TeamB.Name,
		Seed:      roller.Seed(),
		Maps:      make([]models.MapResult, 0, len(req.MapIDs)),
		MapScores: make([]models.MapScore, 0, len(req.MapIDs)),
	}

	mapsToWin := len(req.MapIDs)/2 + 1
	for i, mapID := range req.MapIDs {
		mapInfo, _ := models.GetMap(mapID)
		// L'ordre d'attaque initial alterne d'une carte à l'autre
		aStartsAttacking := i%2 == 0

		mapResult, err := s.simulateMap(req, mapInfo, aStartsAttacking, bonusA, bonusB, roller, func(pct int, detail string) {
			// L'avancement global ne redescend jamais: la phase
			// d'agrégation rapporte 99 puis 100 après la dernière carte
			overall := (i*100 + pct) / len(req.MapIDs)
			if overall > 98 {
				overall = 98
			}
			report(StageSimulating, overall, detail)
		})
		if err != nil {
			return nil, fmt.Errorf("map %s: %w", mapInfo.Name, err)
		}

		result.Maps = append(result.Maps, *mapResult)
		result.MapScores = append(result.MapScores, models.MapScore{
			MapID:      mapID,
			TeamAScore: mapResult.TeamAScore,
			TeamBScore: mapResult.TeamBScore,
		})
		result.TotalRounds += len(mapResult.Rounds)
		if mapResult.WinnerTeamID == req.TeamA.ID {
			result.TeamAMapWins++
		} else {
			result.TeamBMapWins++
		}
		if result.TeamAMapWins >= mapsToWin || result.TeamBMapWins >= mapsToWin {
			break
		}
	}

	report(StageAggregating, 99, "assembling match result")
	if result.TeamAMapWins > result.TeamBMapWins {
		result.WinnerTeamID = req.TeamA.ID
	} else {
		result.WinnerTeamID = req.TeamB.ID
	}
	result.SimulatedAt = time.Now().UTC().Format(time.RFC3339)

	s.logger.WithFields(logrus.Fields{
		"match_id":     result.MatchID,
		"team_a":       result.TeamAName,
		"team_b":       result.TeamBName,
		"map_wins_a":   result.TeamAMapWins,
		"map_wins_b":   result.TeamBMapWins,
		"total_rounds": result.TotalRounds,
		"seed":         result.Seed,
		"duration":     time.Since(startedAt).String(),
	}).Info("Match simulation completed")

	report(StageAggregating, 100, "done")
	return result, nil
}

// simulateMap joue une carte jusqu'à son terme: 24 rounds réglementaires
// avec échange des côtés à la mi-temps, puis prolongations au besoin avec
// remise à niveau de l'économie à chaque paire de rounds
func (s *MatchSimulator) simulateMap(req *models.MatchRequest, mapInfo models.MapInfo, aStartsAttacking bool, bonusA, bonusB float64, roller *utils.Roller, report func(pct int, detail string)) (*models.MapResult, error) {
	stratA := req.EffectiveStrategyA()
	stratB := req.EffectiveStrategyB()

	ecoA := models.NewTeamEconomy(req.TeamA.ID, req.TeamA.PlayerIDs())
	ecoB := models.NewTeamEconomy(req.TeamB.ID, req.TeamB.PlayerIDs())
	ultPoints := make(map[uuid.UUID]int)

	teamAIDs := req.TeamA.PlayerIDs()
	teamBIDs := req.TeamB.PlayerIDs()

	mapResult := &models.MapResult{
		MapID:   mapInfo.ID,
		MapName: mapInfo.Name,
		Rounds:  make([]models.RoundSummary, 0, models.RegulationRounds),
	}

	winsA, winsB := 0, 0
	for roundNumber := 1; ; roundNumber++ {
		if roundNumber > maxRoundsPerMap {
			return nil, fmt.Errorf("map did not resolve after %d rounds", maxRoundsPerMap)
		}

		// Mi-temps réglementaire puis alternance en prolongations
		if roundNumber == models.HalftimeRound+1 {
			ecoA = models.NewTeamEconomy(req.TeamA.ID, teamAIDs)
			ecoB = models.NewTeamEconomy(req.TeamB.ID, teamBIDs)
		}
		if roundNumber > models.RegulationRounds && (roundNumber-models.RegulationRounds)%2 == 1 {
			ecoA.ResetForOvertime()
			ecoB.ResetForOvertime()
		}

		aAttacks := attackerIsTeamA(roundNumber, aStartsAttacking)

		attackerTeam, defenderTeam := &req.TeamB, &req.TeamA
		attackerSel, defenderSel := &req.SelectionB, &req.SelectionA
		attackerStrat, defenderStrat := stratB, stratA
		attackerEco, defenderEco := ecoB, ecoA
		attackerBonus, defenderBonus := bonusB, bonusA
		if aAttacks {
			attackerTeam, defenderTeam = &req.TeamA, &req.TeamB
			attackerSel, defenderSel = &req.SelectionA, &req.SelectionB
			attackerStrat, defenderStrat = stratA, stratB
			attackerEco, defenderEco = ecoA, ecoB
			attackerBonus, defenderBonus = bonusA, bonusB
		}

		buyResult, err := s.buyPhase.ResolveBuyPhase(roundNumber,
			&TeamBuyContext{TeamID: attackerTeam.ID, PlayerIDs: attackerTeam.PlayerIDs(), Economy: attackerEco, Strategy: attackerStrat},
			&TeamBuyContext{TeamID: defenderTeam.ID, PlayerIDs: defenderTeam.PlayerIDs(), Economy: defenderEco, Strategy: defenderStrat},
		)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", roundNumber, err)
		}

		attackerSide := buildRoundSide(attackerTeam, attackerSel, attackerStrat, attackerBonus, models.SideAttacker, attackerEco, ultPoints, buyResult.Attacker.Purchases)
		defenderSide := buildRoundSide(defenderTeam, defenderSel, defenderStrat, defenderBonus, models.SideDefender, defenderEco, ultPoints, buyResult.Defender.Purchases)

		outcome, err := s.rounds.SimulateRound(&RoundInput{
			RoundNumber:   roundNumber,
			Map:           mapInfo,
			Attacker:      attackerSide,
			Defender:      defenderSide,
			TradeWindowMs: req.TradeWindowMs,
			Roller:        roller,
		})
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", roundNumber, err)
		}

		summary, err := s.summaries.DeriveFromTimeline(outcome.Timeline, outcome.FinalStates, teamAIDs, teamBIDs)
		if err != nil {
			return nil, fmt.Errorf("round %d summary: %w", roundNumber, err)
		}
		mapResult.Rounds = append(mapResult.Rounds, *summary)
		mapResult.DurationMs += outcome.DurationMs

		if outcome.WinnerTeamID == req.TeamA.ID {
			winsA++
		} else {
			winsB++
		}

		s.settleEconomy(outcome, summary, attackerEco, defenderEco)
		for id, state := range outcome.FinalStates {
			ultPoints[id] = state.Abilities.UltPoints
		}

		pct := roundNumber * 100 / models.RegulationRounds
		if pct > 95 {
			pct = 95
		}
		report(pct, fmt.Sprintf("%s %d-%d", mapInfo.Name, winsA, winsB))

		if mapDecided(winsA, winsB) {
			break
		}
	}

	mapResult.TeamAScore = winsA
	mapResult.TeamBScore = winsB
	if winsA > winsB {
		mapResult.WinnerTeamID = req.TeamA.ID
	} else {
		mapResult.WinnerTeamID = req.TeamB.ID
	}
	totalRounds := winsA + winsB
	if totalRounds > models.RegulationRounds {
		mapResult.Overtime = true
		mapResult.OvertimeRounds = totalRounds - models.RegulationRounds
	}
	report(100, fmt.Sprintf("%s final %d-%d", mapInfo.Name, winsA, winsB))
	return mapResult, nil
}

// attackerIsTeamA détermine le côté de l'équipe A pour un round donné:
// première mi-temps selon le tirage initial, seconde mi-temps inversée,
// puis alternance round par round en prolongations
func attackerIsTeamA(roundNumber int, aStartsAttacking bool) bool {
	if roundNumber <= models.HalftimeRound {
		return aStartsAttacking
	}
	if roundNumber <= models.RegulationRounds {
		return !aStartsAttacking
	}
	if (roundNumber-models.RegulationRounds)%2 == 1 {
		return aStartsAttacking
	}
	return !aStartsAttacking
}

// mapDecided vérifie si la carte est acquise: premier à 13 en temps
// réglementaire, deux rounds d'écart en prolongations
func mapDecided(winsA, winsB int) bool {
	total := winsA + winsB
	if total < models.RegulationRounds {
		return winsA >= models.RoundsToWinMap || winsB >= models.RoundsToWinMap
	}
	diff := winsA - winsB
	if diff < 0 {
		diff = -diff
	}
	return diff >= models.OvertimeWinMargin
}

// settleEconomy applique les conséquences économiques d'un round:
// prime de victoire, prime de défaite avec série, primes d'élimination
// dérivées de la timeline et prime de pose
func (s *MatchSimulator) settleEconomy(outcome *RoundOutcome, summary *models.RoundSummary, attackerEco, defenderEco *models.TeamEconomy) {
	winnerEco, loserEco := attackerEco, defenderEco
	if outcome.WinnerSide == models.SideDefender {
		winnerEco, loserEco = defenderEco, attackerEco
	}
	winnerEco.AwardAll(models.RoundWinReward)
	winnerEco.LossStreak = 0
	loserEco.LossStreak++
	loserEco.AwardAll(loserEco.LossBonus())

	for i := range outcome.Timeline {
		e := &outcome.Timeline[i]
		if !e.IsKill() {
			continue
		}
		if _, ok := attackerEco.Credits[e.Kill.KillerID]; ok {
			attackerEco.Award(e.Kill.KillerID, models.KillReward)
		} else {
			defenderEco.Award(e.Kill.KillerID, models.KillReward)
		}
	}

	if summary.SpikePlanted {
		attackerEco.AwardAll(models.PlantTeamBonus)
	}
}

// buildRoundSide matérialise l'état de round des cinq joueurs d'un côté
// en appliquant leurs achats: débit de l'économie, arme, bouclier et
// charges de compétence, points d'ultime reportés du round précédent
func buildRoundSide(team *models.Team, selection *models.AgentSelection, strategy models.TeamStrategy, bonus float64, side models.Side, economy *models.TeamEconomy, ultPoints map[uuid.UUID]int, purchases []models.PurchaseEntry) *RoundSide {
	purchaseByPlayer := make(map[uuid.UUID]models.PurchaseEntry, len(purchases))
	for _, p := range purchases {
		purchaseByPlayer[p.PlayerID] = p
	}

	roundSide := &RoundSide{
		TeamID:           team.ID,
		Strategy:         strategy,
		CompositionBonus: bonus,
		Players:          make([]*SidePlayer, 0, len(team.Players)),
	}

	for i := range team.Players {
		profile := &team.Players[i]
		agentID := selection.Agents[profile.ID]
		agent, _ := models.GetAgent(agentID)
		purchase := purchaseByPlayer[profile.ID]

		economy.Credits[profile.ID] -= purchase.CreditsSpent

		refills := purchase.AbilityRefills
		state := &models.PlayerRoundState{
			PlayerID:     profile.ID,
			Name:         profile.Name,
			TeamID:       team.ID,
			AgentID:      agent.ID,
			Role:         agent.Role,
			Side:         side,
			HP:           models.DefaultMaxHP,
			MaxHP:        models.DefaultMaxHP,
			ShieldHP:     models.ShieldPoints(purchase.Shield),
			ShieldType:   purchase.Shield,
			Credits:      economy.Credits[profile.ID],
			SpentCredits: purchase.CreditsSpent,
			WeaponID:     purchase.WeaponID,
			SidearmID:    purchase.SidearmID,
			Alive:        true,
			Abilities: models.AbilityCharges{
				Basic1:      (refills + 1) / 2,
				Basic2:      refills / 2,
				Signature:   1,
				UltPoints:   ultPoints[profile.ID],
				UltRequired: agent.UltRequired,
			},
		}

		roundSide.Players = append(roundSide.Players, &SidePlayer{
			State:      state,
			Attributes: profile.Attributes,
			Agent:      agent,
			Mastery:    profile.MasteryFor(agent.ID),
		})
	}
	return roundSide
}
