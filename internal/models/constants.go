package models

// Règles de match
const (
	TeamSize          = 5
	RegulationRounds  = 24
	RoundsToWinMap    = 13
	HalftimeRound     = 12 // les côtés s'inversent après ce round
	OvertimeWinMargin = 2

	DefaultMaxHP = 100
)

// Économie (crédits)
const (
	PistolRoundCredits = 800
	MaxCredits         = 9000
	RoundWinReward     = 3000
	LossBonusBase      = 1900
	LossBonusStep      = 500
	LossBonusMaxStreak = 3
	PlantTeamBonus     = 300
	KillReward         = 200
	OvertimeCredits    = 5000

	// Seuils moyens de crédits par joueur pour la classification d'achat
	FullBuyAverageCredits = 3900
	HalfBuyAverageCredits = 2250

	ForceThresholdMin = 1000
	ForceThresholdMax = 4000
)

// Délais (millisecondes depuis le début du round)
const (
	RoundTimerMs         = 100000
	SpikeFuseMs          = 45000
	PlantDurationMs      = 4000
	DefuseDurationMs     = 7000
	DefaultTradeWindowMs = 3000
)

// Points d'ultime gagnés pendant un round
const (
	UltPointsPerKill   = 1
	UltPointsPerPlant  = 1
	UltPointsPerDefuse = 1
)
