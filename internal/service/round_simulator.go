package service

import (
	"fmt"

	"github.com/google/uuid"

	"simulation/internal/models"
	"simulation/internal/utils"
)

// Cadence et probabilités du déroulé d'un round
const (
	minStepMs = 1500
	maxStepMs = 8000

	shotGapMinMs  = 80
	shotGapMaxMs  = 350
	maxBurstShots = 6

	decisiveDuelChance = 0.72
	returnFireChance   = 0.35
	duelChanceBase     = 0.55

	plantEarliestMs  = 15000
	plantChanceBase  = 0.10
	plantLateUrgency = 0.30
	contestChance    = 0.50

	defuseChanceBase = 0.25

	abilityStepChance = 0.35
	healStepChance    = 0.50
	ultStepChance     = 0.30
	ultMomentumBonus  = 0.08
	pickupDelayMinMs  = 2000
	pickupDelayMaxMs  = 6000

	detonationCasualtyChance = 0.40

	maxRoundIterations = 10000
)

// Motifs d'interruption portés par les événements
const (
	ReasonCarrierKilled  = "carrier_killed"
	ReasonPlanterKilled  = "planter_killed"
	ReasonPlanterDamaged = "planter_damaged"
	ReasonDefuserKilled  = "defuser_killed"
	ReasonDefuserDamaged = "defuser_damaged"
	ReasonTimeExpired    = "time_expired"
	ReasonDetonation     = "spike_detonated"
)

// SidePlayer représente un joueur prêt à jouer un round, avec tout le
// contexte nécessaire à la résolution de ses duels
type SidePlayer struct {
	State       *models.PlayerRoundState
	Attributes  models.PlayerAttributes
	Agent       models.AgentInfo
	Mastery     int
	UltMomentum bool
}

// RoundSide représente un côté (cinq joueurs) prêt à jouer un round
type RoundSide struct {
	TeamID           uuid.UUID
	Strategy         models.TeamStrategy
	CompositionBonus float64
	Players          []*SidePlayer
}

// RoundInput représente l'entrée complète d'une simulation de round.
// Un Roller nil est remplacé par un générateur d'entropie.
type RoundInput struct {
	RoundNumber   int
	Map           models.MapInfo
	Attacker      *RoundSide
	Defender      *RoundSide
	TradeWindowMs int64
	Roller        *utils.Roller
}

// RoundOutcome représente l'issue d'un round: la timeline gelée,
// l'état final de chaque joueur et les métadonnées de victoire
type RoundOutcome struct {
	RoundNumber  int
	Timeline     []models.TimelineEvent
	FinalStates  map[uuid.UUID]*models.PlayerRoundState
	WinnerSide   models.Side
	WinnerTeamID uuid.UUID
	WinCondition models.WinCondition
	DurationMs   int64
	SpikePlanted bool
	PlantSite    string
}

// RoundSimulatorInterface définit la simulation d'un round
type RoundSimulatorInterface interface {
	SimulateRound(input *RoundInput) (*RoundOutcome, error)
}

// RoundSimulator implémente l'interface RoundSimulatorInterface
type RoundSimulator struct {
	combat CombatResolverInterface
}

// NewRoundSimulator crée un nouveau simulateur de round
func NewRoundSimulator(combat CombatResolverInterface) RoundSimulatorInterface {
	return &RoundSimulator{combat: combat}
}

// SimulateRound déroule un round complet et émet sa timeline canonique.
// Toute entrée malformée est rejetée avant l'émission du moindre
// événement: le simulateur ne produit jamais de timeline partielle.
func (s *RoundSimulator) SimulateRound(input *RoundInput) (*RoundOutcome, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	roller := input.Roller
	if roller == nil {
		roller = utils.NewRoller(0)
	}
	tradeWindow := input.TradeWindowMs
	if tradeWindow == 0 {
		tradeWindow = models.DefaultTradeWindowMs
	}

	run := &roundRun{
		sim:         s,
		input:       input,
		roller:      roller,
		tradeWindow: tradeWindow,
		timeline:    make([]models.TimelineEvent, 0, 64),
	}
	return run.play()
}

func (s *RoundSimulator) validateInput(input *RoundInput) error {
	if input == nil {
		return fmt.Errorf("round input is nil")
	}
	if input.RoundNumber < 1 {
		return fmt.Errorf("invalid round number %d", input.RoundNumber)
	}
	if len(input.Map.Sites) == 0 {
		return fmt.Errorf("map %q has no sites", input.Map.ID)
	}
	if input.Attacker == nil || input.Defender == nil {
		return fmt.Errorf("round input is missing a side")
	}
	if input.Attacker.TeamID == input.Defender.TeamID {
		return fmt.Errorf("both sides share team id %s", input.Attacker.TeamID)
	}
	for _, side := range []*RoundSide{input.Attacker, input.Defender} {
		alive := 0
		for _, p := range side.Players {
			if p == nil || p.State == nil {
				return fmt.Errorf("side %s has a missing player state", side.TeamID)
			}
			if p.State.Alive {
				alive++
			}
		}
		if alive != models.TeamSize {
			return fmt.Errorf("side %s starts the round with %d live players, expected %d", side.TeamID, alive, models.TeamSize)
		}
	}
	return nil
}

// roundRun porte l'état mutable d'un round en cours de résolution
type roundRun struct {
	sim         *RoundSimulator
	input       *RoundInput
	roller      *utils.Roller
	tradeWindow int64

	clock    int64
	timeline []models.TimelineEvent

	spikePlanted  bool
	plantSite     string
	detonateAt    int64
	spikeCarrier  *SidePlayer
	spikeDropped  bool
	pickupReadyAt int64

	planting *objectiveAction
	defusing *objectiveAction

	kills []killRecord

	ended        bool
	winnerSide   models.Side
	winCondition models.WinCondition
}

// objectiveAction représente une pose ou un désamorçage en cours
type objectiveAction struct {
	player     *SidePlayer
	site       string
	startedAt  int64
	completeAt int64
}

func (a *objectiveAction) progressAt(ts int64) float64 {
	total := a.completeAt - a.startedAt
	if total <= 0 {
		return 0
	}
	progress := float64(ts-a.startedAt) / float64(total) * 100.0
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	return progress
}

// killRecord garde la trace d'une élimination pour la détection des trades
type killRecord struct {
	killerID     uuid.UUID
	killerTeamID uuid.UUID
	victimID     uuid.UUID
	victimTeamID uuid.UUID
	timestamp    int64
}

func (r *roundRun) play() (*RoundOutcome, error) {
	r.spikeCarrier = r.pickSidePlayer(r.aliveAttackers())

	for iterations := 0; !r.ended; iterations++ {
		if iterations > maxRoundIterations {
			return nil, fmt.Errorf("round %d simulation did not converge", r.input.RoundNumber)
		}

		next := r.clock + int64(r.roller.Between(minStepMs, maxStepMs))
		kind, at := r.nextScheduled(next)
		if kind != scheduledNone {
			// Une échéance dépassée pendant une rafale est traitée à
			// l'horloge courante pour préserver l'ordre des timestamps
			if at > r.clock {
				r.clock = at
			}
			r.processScheduled(kind)
			continue
		}

		r.clock = next
		r.freeAction()
	}

	return r.buildOutcome()
}

type scheduledKind int

const (
	scheduledNone scheduledKind = iota
	scheduledRoundTimer
	scheduledDetonation
	scheduledPlantComplete
	scheduledDefuseComplete
	scheduledSpikePickup
)

// nextScheduled retourne l'échéance la plus proche tombant avant until,
// afin que chaque événement programmé soit émis à son instant exact
func (r *roundRun) nextScheduled(until int64) (scheduledKind, int64) {
	kind := scheduledNone
	at := until + 1

	consider := func(k scheduledKind, t int64) {
		if t <= until && t < at {
			kind = k
			at = t
		}
	}

	if !r.spikePlanted {
		consider(scheduledRoundTimer, models.RoundTimerMs)
	} else {
		consider(scheduledDetonation, r.detonateAt)
	}
	if r.planting != nil {
		consider(scheduledPlantComplete, r.planting.completeAt)
	}
	if r.defusing != nil {
		consider(scheduledDefuseComplete, r.defusing.completeAt)
	}
	if r.spikeDropped && len(r.aliveAttackers()) > 0 {
		consider(scheduledSpikePickup, r.pickupReadyAt)
	}
	return kind, at
}

func (r *roundRun) processScheduled(kind scheduledKind) {
	switch kind {
	case scheduledRoundTimer:
		if r.planting != nil {
			r.emitPlantInterrupt(ReasonTimeExpired)
		}
		r.endRound(models.SideDefender, models.WinByTimeExpired)

	case scheduledDetonation:
		r.processDetonation()

	case scheduledPlantComplete:
		r.processPlantComplete()

	case scheduledDefuseComplete:
		r.processDefuseComplete()

	case scheduledSpikePickup:
		r.processSpikePickup()
	}
}

func (r *roundRun) processPlantComplete() {
	action := r.planting
	r.planting = nil
	r.spikePlanted = true
	r.plantSite = action.site
	r.detonateAt = r.clock + models.SpikeFuseMs
	r.spikeCarrier = nil
	r.awardUltPoint(action.player, models.UltPointsPerPlant)
	r.emit(models.NewPlantCompleteEvent(r.clock, models.PlantEvent{
		PlanterID:   action.player.State.PlayerID,
		PlanterName: action.player.State.Name,
		Site:        action.site,
		Progress:    100,
	}))
}

func (r *roundRun) processDefuseComplete() {
	action := r.defusing
	r.defusing = nil
	r.awardUltPoint(action.player, models.UltPointsPerDefuse)
	r.emit(models.NewDefuseCompleteEvent(r.clock, models.DefuseEvent{
		DefuserID:   action.player.State.PlayerID,
		DefuserName: action.player.State.Name,
		Site:        action.site,
		Progress:    100,
	}))
	r.endRound(models.SideDefender, models.WinBySpikeDefused)
}

func (r *roundRun) processDetonation() {
	if r.defusing != nil {
		action := r.defusing
		r.defusing = nil
		r.emit(models.NewDefuseInterruptEvent(r.clock, models.DefuseEvent{
			DefuserID:   action.player.State.PlayerID,
			DefuserName: action.player.State.Name,
			Site:        action.site,
			Progress:    action.progressAt(r.clock),
			Reason:      ReasonDetonation,
		}))
	}

	casualties := make([]uuid.UUID, 0, models.TeamSize)
	for _, p := range r.aliveDefenders() {
		if r.roller.Chance(detonationCasualtyChance) {
			p.State.HP = 0
			p.State.Alive = false
			casualties = append(casualties, p.State.PlayerID)
		}
	}
	r.emit(models.NewSpikeDetonationEvent(r.clock, models.DetonationEvent{
		Site:       r.plantSite,
		Casualties: casualties,
	}))
	r.endRound(models.SideAttacker, models.WinBySpikeDetonated)
}

func (r *roundRun) processSpikePickup() {
	attackers := r.aliveAttackers()
	if len(attackers) == 0 {
		return
	}
	carrier := r.pickSidePlayer(attackers)
	r.spikeCarrier = carrier
	r.spikeDropped = false
	r.emit(models.NewSpikePickupEvent(r.clock, models.SpikeEvent{
		CarrierID:   carrier.State.PlayerID,
		CarrierName: carrier.State.Name,
	}))
}

// freeAction choisit l'action du pas courant: objectif, soin, compétence,
// duel ou temps mort. Les duels pendant une pose ou un désamorçage visent
// en priorité le joueur sur l'objectif.
func (r *roundRun) freeAction() {
	attackers := r.aliveAttackers()
	defenders := r.aliveDefenders()
	if len(attackers) == 0 || len(defenders) == 0 {
		// Attaquants décimés après la pose: les défenseurs restants
		// foncent sur le spike sans opposition
		if r.spikePlanted && len(defenders) > 0 && r.defusing == nil {
			r.tryStartDefuse(defenders)
		}
		return
	}

	if r.planting != nil {
		if r.roller.Chance(contestChance) {
			r.contestPlant(defenders)
		}
		return
	}
	if r.defusing != nil {
		if r.roller.Chance(contestChance) {
			r.contestDefuse(attackers)
		}
		return
	}

	if r.tryStartPlant() {
		return
	}
	if r.tryStartDefuse(defenders) {
		return
	}
	if r.tryHeal() {
		return
	}
	if r.tryUltimate() {
		return
	}
	if r.tryAbility() {
		return
	}

	if r.roller.Chance(r.duelChance()) {
		aggressor, target := r.pickDuelPair(attackers, defenders)
		r.resolveDuel(aggressor, target)
	}
}

func (r *roundRun) duelChance() float64 {
	chance := duelChanceBase
	chance += r.input.Attacker.Strategy.AggressionModifier()
	chance += r.input.Defender.Strategy.AggressionModifier()
	if r.spikePlanted {
		chance += 0.15
	}
	return chance
}

func (r *roundRun) contestPlant(defenders []*SidePlayer) {
	contester := r.pickSidePlayer(defenders)
	if r.roller.Chance(0.5) {
		r.resolveDuel(contester, r.planting.player)
	} else {
		cover := r.pickCover(r.aliveAttackers(), r.planting.player)
		r.resolveDuel(contester, cover)
	}
}

func (r *roundRun) contestDefuse(attackers []*SidePlayer) {
	contester := r.pickSidePlayer(attackers)
	if r.roller.Chance(0.5) {
		r.resolveDuel(contester, r.defusing.player)
	} else {
		cover := r.pickCover(r.aliveDefenders(), r.defusing.player)
		r.resolveDuel(contester, cover)
	}
}

// pickCover retourne un coéquipier couvrant le joueur sur l'objectif,
// ou le joueur lui-même s'il est seul
func (r *roundRun) pickCover(side []*SidePlayer, onObjective *SidePlayer) *SidePlayer {
	others := make([]*SidePlayer, 0, len(side))
	for _, p := range side {
		if p != onObjective {
			others = append(others, p)
		}
	}
	if len(others) == 0 {
		return onObjective
	}
	return r.pickSidePlayer(others)
}

func (r *roundRun) tryStartPlant() bool {
	if r.spikePlanted || r.spikeDropped || r.spikeCarrier == nil || !r.spikeCarrier.State.Alive {
		return false
	}
	if r.clock < plantEarliestMs {
		return false
	}
	chance := plantChanceBase + float64(r.clock)/float64(models.RoundTimerMs)*0.35
	if r.clock > models.RoundTimerMs*7/10 {
		chance += plantLateUrgency
	}
	if r.input.Attacker.Strategy.Playstyle == models.PlaystyleAggressive {
		chance += 0.05
	}
	if !r.roller.Chance(chance) {
		return false
	}

	site := r.input.Map.Sites[r.roller.Intn(len(r.input.Map.Sites))]
	r.planting = &objectiveAction{
		player:     r.spikeCarrier,
		site:       site,
		startedAt:  r.clock,
		completeAt: r.clock + models.PlantDurationMs,
	}
	r.emit(models.NewPlantStartEvent(r.clock, models.PlantEvent{
		PlanterID:   r.spikeCarrier.State.PlayerID,
		PlanterName: r.spikeCarrier.State.Name,
		Site:        site,
		Progress:    0,
	}))
	return true
}

func (r *roundRun) tryStartDefuse(defenders []*SidePlayer) bool {
	if !r.spikePlanted || r.defusing != nil {
		return false
	}
	elapsed := r.clock - (r.detonateAt - models.SpikeFuseMs)
	chance := defuseChanceBase + float64(elapsed)/float64(models.SpikeFuseMs)*0.40
	if len(r.aliveAttackers()) == 0 {
		chance = 1.0
	}
	if !r.roller.Chance(chance) {
		return false
	}

	defuser := r.pickSidePlayer(defenders)
	r.defusing = &objectiveAction{
		player:     defuser,
		site:       r.plantSite,
		startedAt:  r.clock,
		completeAt: r.clock + models.DefuseDurationMs,
	}
	r.emit(models.NewDefuseStartEvent(r.clock, models.DefuseEvent{
		DefuserID:   defuser.State.PlayerID,
		DefuserName: defuser.State.Name,
		Site:        r.plantSite,
		Progress:    0,
	}))
	return true
}

func (r *roundRun) tryHeal() bool {
	if !r.roller.Chance(healStepChance) {
		return false
	}
	for _, side := range []*RoundSide{r.input.Attacker, r.input.Defender} {
		for _, p := range side.Players {
			if !p.State.Alive || !p.Agent.CanHeal() || !r.hasCharge(p, p.Agent.HealSlot) {
				continue
			}
			target := r.mostWoundedAlly(side, p)
			if target == nil {
				continue
			}
			r.consumeCharge(p, p.Agent.HealSlot)
			amount := r.sim.combat.CalculateHealAmount(p.Agent, r.roller)
			healed, hpAfter := target.State.ApplyHeal(amount)
			r.emit(models.NewAbilityUseEvent(r.clock, models.AbilityEvent{
				CasterID:    p.State.PlayerID,
				CasterName:  p.State.Name,
				AgentID:     p.Agent.ID,
				Slot:        p.Agent.HealSlot,
				AbilityName: p.Agent.Kit.NameFor(p.Agent.HealSlot),
			}))
			r.emit(models.NewHealEvent(r.clock, models.HealEvent{
				HealerID:      p.State.PlayerID,
				HealerName:    p.State.Name,
				TargetID:      target.State.PlayerID,
				TargetName:    target.State.Name,
				Amount:        healed,
				TargetHPAfter: hpAfter,
			}))
			return true
		}
	}
	return false
}

// mostWoundedAlly retourne le coéquipier vivant le plus amoché
// (le soigneur lui-même inclus), ou nil si personne n'est blessé
func (r *roundRun) mostWoundedAlly(side *RoundSide, healer *SidePlayer) *SidePlayer {
	var target *SidePlayer
	worst := 1.0
	for _, p := range side.Players {
		if !p.State.Alive || p.State.HP >= p.State.MaxHP {
			continue
		}
		ratio := float64(p.State.HP) / float64(p.State.MaxHP)
		if ratio < worst {
			worst = ratio
			target = p
		}
	}
	return target
}

func (r *roundRun) tryUltimate() bool {
	if !r.roller.Chance(ultStepChance) {
		return false
	}
	for _, side := range []*RoundSide{r.input.Attacker, r.input.Defender} {
		for _, p := range side.Players {
			if !p.State.Alive || !p.State.HasUltimate() || p.UltMomentum {
				continue
			}
			if !r.roller.Chance(side.Strategy.UltSpendChance()) {
				continue
			}
			p.State.Abilities.UltPoints = 0
			p.UltMomentum = true
			r.emit(models.NewAbilityUseEvent(r.clock, models.AbilityEvent{
				CasterID:    p.State.PlayerID,
				CasterName:  p.State.Name,
				AgentID:     p.Agent.ID,
				Slot:        models.SlotUltimate,
				AbilityName: p.Agent.Kit.NameFor(models.SlotUltimate),
			}))
			return true
		}
	}
	return false
}

func (r *roundRun) tryAbility() bool {
	if !r.roller.Chance(abilityStepChance) {
		return false
	}
	for _, side := range []*RoundSide{r.input.Attacker, r.input.Defender} {
		for _, p := range side.Players {
			if !p.State.Alive {
				continue
			}
			slot := r.availableSlot(p)
			if slot == "" {
				continue
			}
			if !r.roller.Chance(p.Agent.UtilityRating) {
				continue
			}
			r.consumeCharge(p, slot)
			r.emit(models.NewAbilityUseEvent(r.clock, models.AbilityEvent{
				CasterID:    p.State.PlayerID,
				CasterName:  p.State.Name,
				AgentID:     p.Agent.ID,
				Slot:        slot,
				AbilityName: p.Agent.Kit.NameFor(slot),
			}))
			return true
		}
	}
	return false
}

// availableSlot retourne l'emplacement non-ultime encore chargé,
// signature d'abord, hors compétence de soin
func (r *roundRun) availableSlot(p *SidePlayer) models.AbilitySlot {
	for _, slot := range []models.AbilitySlot{models.SlotSignature, models.SlotBasic1, models.SlotBasic2} {
		if p.Agent.CanHeal() && p.Agent.HealSlot == slot {
			continue
		}
		if r.hasCharge(p, slot) {
			return slot
		}
	}
	return ""
}

func (r *roundRun) hasCharge(p *SidePlayer, slot models.AbilitySlot) bool {
	switch slot {
	case models.SlotBasic1:
		return p.State.Abilities.Basic1 > 0
	case models.SlotBasic2:
		return p.State.Abilities.Basic2 > 0
	case models.SlotSignature:
		return p.State.Abilities.Signature > 0
	default:
		return false
	}
}

func (r *roundRun) consumeCharge(p *SidePlayer, slot models.AbilitySlot) {
	switch slot {
	case models.SlotBasic1:
		p.State.Abilities.Basic1--
	case models.SlotBasic2:
		p.State.Abilities.Basic2--
	case models.SlotSignature:
		p.State.Abilities.Signature--
	}
}

// pickDuelPair choisit l'initiateur et la cible du prochain duel.
// Les attaquants portent l'initiative la plupart du temps.
func (r *roundRun) pickDuelPair(attackers, defenders []*SidePlayer) (aggressor, target *SidePlayer) {
	if r.roller.Chance(0.6) {
		return r.pickSidePlayer(attackers), r.pickSidePlayer(defenders)
	}
	return r.pickSidePlayer(defenders), r.pickSidePlayer(attackers)
}

// pickSidePlayer tire un joueur vivant, pondéré par l'agressivité
// de son agent
func (r *roundRun) pickSidePlayer(players []*SidePlayer) *SidePlayer {
	if len(players) == 0 {
		return nil
	}
	weights := make([]float64, len(players))
	for i, p := range players {
		weights[i] = 0.5 + p.Agent.Aggression
	}
	return players[r.roller.WeightedIndex(weights)]
}

// resolveDuel joue un échange complet entre deux joueurs: tir de
// riposte éventuel, rafale décisive ou simple accrochage
func (r *roundRun) resolveDuel(aggressor, target *SidePlayer) {
	if aggressor == nil || target == nil || !aggressor.State.Alive || !target.State.Alive {
		return
	}

	band := r.rollRangeBand()
	chance := r.sim.combat.CalculateDuelWinChance(r.duelistContext(aggressor), r.duelistContext(target), band, r.roller)
	if aggressor.State.Side == models.SideAttacker {
		chance += r.input.Map.AttackerBias
	} else {
		chance -= r.input.Map.AttackerBias
	}
	if aggressor.UltMomentum {
		chance += ultMomentumBonus
	}
	if target.UltMomentum {
		chance -= ultMomentumBonus
	}
	chance = r.sim.combat.ClampChance(chance)

	winner, loser := aggressor, target
	if !r.roller.Chance(chance) {
		winner, loser = target, aggressor
	}

	// Riposte: le perdant accroche parfois le vainqueur avant de tomber
	if r.roller.Chance(returnFireChance) {
		if died := r.fireShot(loser, winner, true); died {
			r.afterDeath(loser, winner)
			winner.UltMomentum = false
			loser.UltMomentum = false
			return
		}
	}

	if r.roller.Chance(decisiveDuelChance) {
		for shots := 0; shots < maxBurstShots && loser.State.Alive; shots++ {
			if shots > 0 {
				r.clock += int64(r.roller.Between(shotGapMinMs, shotGapMaxMs))
			}
			if died := r.fireShot(winner, loser, false); died {
				r.afterDeath(winner, loser)
			}
		}
	} else {
		if died := r.fireShot(winner, loser, true); died {
			r.afterDeath(winner, loser)
		}
	}
	winner.UltMomentum = false
	loser.UltMomentum = false
}

// fireShot applique un tir du tireur sur la victime et émet l'événement
// de dégâts; retourne vrai si la victime meurt. Un tir d'accrochage
// (chip) est atténué par rapport à une rafale décisive.
func (r *roundRun) fireShot(shooter, victim *SidePlayer, chip bool) bool {
	weapon, ok := models.GetWeapon(shooter.State.WeaponID)
	if !ok {
		weapon, _ = models.GetWeapon(shooter.State.SidearmID)
	}
	location := r.sim.combat.RollHitLocation(r.duelistContext(shooter), weapon, r.roller)
	raw := r.sim.combat.CalculateShotDamage(weapon, location, r.roller)
	if chip {
		raw = raw / 2
		if raw < 1 {
			raw = 1
		}
	}

	absorbed, dealt, hpAfter := victim.State.TakeDamage(raw)
	shooter.State.DamageDealt += dealt

	r.emit(models.NewDamageEvent(r.clock, models.DamageEvent{
		AttackerID:     shooter.State.PlayerID,
		AttackerName:   shooter.State.Name,
		VictimID:       victim.State.PlayerID,
		VictimName:     victim.State.Name,
		WeaponID:       weapon.ID,
		HitLocation:    location,
		RawDamage:      raw,
		ShieldAbsorbed: absorbed,
		TotalDamage:    dealt,
		VictimHPAfter:  hpAfter,
	}))

	if victim.State.Alive {
		r.interruptObjectiveIfDamaged(victim)
		return false
	}
	return true
}

// interruptObjectiveIfDamaged interrompt la pose ou le désamorçage
// quand le joueur sur l'objectif encaisse des dégâts sans mourir
func (r *roundRun) interruptObjectiveIfDamaged(victim *SidePlayer) {
	if r.planting != nil && r.planting.player == victim {
		r.emitPlantInterrupt(ReasonPlanterDamaged)
	}
	if r.defusing != nil && r.defusing.player == victim {
		r.emitDefuseInterrupt(ReasonDefuserDamaged)
	}
}

// afterDeath enregistre l'élimination et toutes ses conséquences:
// reclassement en trade kill, interruption d'objectif, perte du spike,
// points d'ultime et fin de round par élimination
func (r *roundRun) afterDeath(killer, victim *SidePlayer) {
	location, weaponID := r.lastDamageInfo(victim.State.PlayerID)
	headshot := location == models.HitHead

	kill := models.KillEvent{
		KillerID:   killer.State.PlayerID,
		KillerName: killer.State.Name,
		VictimID:   victim.State.PlayerID,
		VictimName: victim.State.Name,
		WeaponID:   weaponID,
		Headshot:   headshot,
	}

	if avenged, latency, ok := r.findTrade(killer, victim); ok {
		kill.AvengedID = &avenged.victimID
		kill.AvengedName = r.playerName(avenged.victimID)
		kill.TradeLatencyMs = latency
		r.emit(models.NewTradeKillEvent(r.clock, kill))
	} else {
		r.emit(models.NewKillEvent(r.clock, kill))
	}

	r.kills = append(r.kills, killRecord{
		killerID:     killer.State.PlayerID,
		killerTeamID: killer.State.TeamID,
		victimID:     victim.State.PlayerID,
		victimTeamID: victim.State.TeamID,
		timestamp:    r.clock,
	})
	killer.State.Kills++
	r.awardUltPoint(killer, models.UltPointsPerKill)

	if r.planting != nil && r.planting.player == victim {
		r.emitPlantInterrupt(ReasonPlanterKilled)
	}
	if r.defusing != nil && r.defusing.player == victim {
		r.emitDefuseInterrupt(ReasonDefuserKilled)
	}

	if r.spikeCarrier == victim {
		r.spikeCarrier = nil
		r.spikeDropped = true
		r.pickupReadyAt = r.clock + int64(r.roller.Between(pickupDelayMinMs, pickupDelayMaxMs))
		r.emit(models.NewSpikeDropEvent(r.clock, models.SpikeEvent{
			CarrierID:   victim.State.PlayerID,
			CarrierName: victim.State.Name,
			Reason:      ReasonCarrierKilled,
		}))
	}

	r.checkElimination()
}

// findTrade cherche une élimination récente dont la victime du moment
// était l'auteur, et dont la victime appartenait à l'équipe du tueur:
// le tueur venge alors ce coéquipier
func (r *roundRun) findTrade(killer, victim *SidePlayer) (killRecord, int64, bool) {
	for i := len(r.kills) - 1; i >= 0; i-- {
		prev := r.kills[i]
		latency := r.clock - prev.timestamp
		if latency > r.tradeWindow {
			break
		}
		if prev.killerID == victim.State.PlayerID && prev.victimTeamID == killer.State.TeamID {
			return prev, latency, true
		}
	}
	return killRecord{}, 0, false
}

// lastDamageInfo retrouve la zone et l'arme du dernier tir encaissé
// par une victime, pour que l'élimination reste cohérente avec les
// dégâts qui l'ont causée
func (r *roundRun) lastDamageInfo(victimID uuid.UUID) (models.HitLocation, string) {
	for i := len(r.timeline) - 1; i >= 0; i-- {
		e := &r.timeline[i]
		if e.Type == models.EventDamage && e.Damage.VictimID == victimID {
			return e.Damage.HitLocation, e.Damage.WeaponID
		}
	}
	return models.HitBody, "classic"
}

func (r *roundRun) playerName(id uuid.UUID) string {
	for _, side := range []*RoundSide{r.input.Attacker, r.input.Defender} {
		for _, p := range side.Players {
			if p.State.PlayerID == id {
				return p.State.Name
			}
		}
	}
	return ""
}

// checkElimination conclut le round quand un côté est décimé. Des
// attaquants décimés après la pose ne concluent rien: le spike seul
// décide alors de l'issue.
func (r *roundRun) checkElimination() {
	if len(r.aliveDefenders()) == 0 {
		r.endRound(models.SideAttacker, models.WinByElimination)
		return
	}
	if len(r.aliveAttackers()) == 0 && !r.spikePlanted {
		r.endRound(models.SideDefender, models.WinByElimination)
	}
}

func (r *roundRun) emitPlantInterrupt(reason string) {
	action := r.planting
	r.planting = nil
	r.emit(models.NewPlantInterruptEvent(r.clock, models.PlantEvent{
		PlanterID:   action.player.State.PlayerID,
		PlanterName: action.player.State.Name,
		Site:        action.site,
		Progress:    action.progressAt(r.clock),
		Reason:      reason,
	}))
}

func (r *roundRun) emitDefuseInterrupt(reason string) {
	action := r.defusing
	r.defusing = nil
	r.emit(models.NewDefuseInterruptEvent(r.clock, models.DefuseEvent{
		DefuserID:   action.player.State.PlayerID,
		DefuserName: action.player.State.Name,
		Site:        action.site,
		Progress:    action.progressAt(r.clock),
		Reason:      reason,
	}))
}

func (r *roundRun) awardUltPoint(p *SidePlayer, points int) {
	charges := &p.State.Abilities
	charges.UltPoints += points
	if charges.UltRequired > 0 && charges.UltPoints > charges.UltRequired {
		charges.UltPoints = charges.UltRequired
	}
}

func (r *roundRun) rollRangeBand() models.RangeBand {
	idx := r.roller.WeightedIndex([]float64{
		r.input.Map.CloseWeight,
		r.input.Map.MediumWeight,
		r.input.Map.LongWeight,
	})
	switch idx {
	case 0:
		return models.RangeClose
	case 2:
		return models.RangeLong
	default:
		return models.RangeMedium
	}
}

func (r *roundRun) duelistContext(p *SidePlayer) *DuelistContext {
	side := r.input.Attacker
	if p.State.Side == models.SideDefender {
		side = r.input.Defender
	}
	return &DuelistContext{
		State:            p.State,
		Attributes:       p.Attributes,
		Agent:            p.Agent,
		Strategy:         side.Strategy,
		CompositionBonus: side.CompositionBonus,
		Mastery:          p.Mastery,
	}
}

func (r *roundRun) aliveAttackers() []*SidePlayer {
	return aliveSidePlayers(r.input.Attacker.Players)
}

func (r *roundRun) aliveDefenders() []*SidePlayer {
	return aliveSidePlayers(r.input.Defender.Players)
}

func aliveSidePlayers(players []*SidePlayer) []*SidePlayer {
	alive := make([]*SidePlayer, 0, len(players))
	for _, p := range players {
		if p.State.Alive {
			alive = append(alive, p)
		}
	}
	return alive
}

func (r *roundRun) emit(event models.TimelineEvent) {
	r.timeline = append(r.timeline, event)
}

func (r *roundRun) endRound(winner models.Side, condition models.WinCondition) {
	if r.ended {
		return
	}
	r.ended = true
	r.winnerSide = winner
	r.winCondition = condition

	winnerTeamID := r.input.Attacker.TeamID
	if winner == models.SideDefender {
		winnerTeamID = r.input.Defender.TeamID
	}
	r.emit(models.NewRoundEndEvent(r.clock, models.RoundEndEvent{
		RoundNumber:  r.input.RoundNumber,
		WinnerSide:   winner,
		WinnerTeamID: winnerTeamID,
		WinCondition: condition,
	}))
}

func (r *roundRun) buildOutcome() (*RoundOutcome, error) {
	if err := models.ValidateTimeline(r.timeline); err != nil {
		return nil, fmt.Errorf("round %d produced an invalid timeline: %w", r.input.RoundNumber, err)
	}

	finalStates := make(map[uuid.UUID]*models.PlayerRoundState, models.TeamSize*2)
	for _, side := range []*RoundSide{r.input.Attacker, r.input.Defender} {
		for _, p := range side.Players {
			finalStates[p.State.PlayerID] = p.State
		}
	}

	winnerTeamID := r.input.Attacker.TeamID
	if r.winnerSide == models.SideDefender {
		winnerTeamID = r.input.Defender.TeamID
	}

	return &RoundOutcome{
		RoundNumber:  r.input.RoundNumber,
		Timeline:     r.timeline,
		FinalStates:  finalStates,
		WinnerSide:   r.winnerSide,
		WinnerTeamID: winnerTeamID,
		WinCondition: r.winCondition,
		DurationMs:   r.clock,
		SpikePlanted: r.spikePlanted,
		PlantSite:    r.plantSite,
	}, nil
}
