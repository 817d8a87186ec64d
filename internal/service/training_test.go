package service

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"simulation/internal/models"
)

// traineeWith construit un joueur dont les cinq aptitudes valent value
func traineeWith(name string, value int) models.PlayerProfile {
	return models.PlayerProfile{
		ID:   uuid.New(),
		Name: name,
		Attributes: models.PlayerAttributes{
			Aim:       value,
			Reflexes:  value,
			GameSense: value,
			Composure: value,
			Utility:   value,
		},
	}
}

func TestTrainingEngine_SameSeedSameGains(t *testing.T) {
	engine := NewTrainingEngine(testLogger())
	req := &models.TrainingRequest{
		Player:      traineeWith("ruby", 60),
		Focus:       models.FocusAim,
		Intensity:   models.IntensityModerate,
		CoachRating: 75,
		Fatigue:     20,
		Seed:        4242,
	}

	first, err := engine.TrainPlayer(req)
	if err != nil {
		t.Fatalf("TrainPlayer() error = %v", err)
	}
	second, err := engine.TrainPlayer(req)
	if err != nil {
		t.Fatalf("TrainPlayer() second call error = %v", err)
	}

	if first.PlayerID != req.Player.ID {
		t.Fatalf("PlayerID = %s, want %s", first.PlayerID, req.Player.ID)
	}
	if first.Focus != models.FocusAim {
		t.Fatalf("Focus = %s, want %s", first.Focus, models.FocusAim)
	}
	if !reflect.DeepEqual(first.Gains, second.Gains) {
		t.Fatalf("same seed produced different gains: %v vs %v", first.Gains, second.Gains)
	}
	if first.Breakthrough != second.Breakthrough {
		t.Fatalf("same seed produced different breakthroughs: %v vs %v", first.Breakthrough, second.Breakthrough)
	}
	if first.FatigueAfter != second.FatigueAfter {
		t.Fatalf("same seed produced different fatigue: %d vs %d", first.FatigueAfter, second.FatigueAfter)
	}
	if _, err := time.Parse(time.RFC3339, first.TrainedAt); err != nil {
		t.Fatalf("TrainedAt %q is not RFC3339: %v", first.TrainedAt, err)
	}
}

func TestTrainingEngine_GainStaysWithinHeadroom(t *testing.T) {
	engine := NewTrainingEngine(testLogger())

	// Cinq points de marge seulement, coach parfait et intensité maximale
	for seed := int64(1); seed <= 60; seed++ {
		req := &models.TrainingRequest{
			Player:      traineeWith("vera", 95),
			Focus:       models.FocusReflexes,
			Intensity:   models.IntensityIntense,
			CoachRating: 100,
			Seed:        seed,
		}
		result, err := engine.TrainPlayer(req)
		if err != nil {
			t.Fatalf("seed %d: TrainPlayer() error = %v", seed, err)
		}
		gain, ok := result.Gains[string(models.FocusReflexes)]
		if !ok {
			t.Fatalf("seed %d: gains %v miss the trained focus", seed, result.Gains)
		}
		if gain < 0 || gain > 5 {
			t.Fatalf("seed %d: gain = %d, want within [0,5]", seed, gain)
		}
	}
}

func TestTrainingEngine_MaxedAttributeGainsNothing(t *testing.T) {
	engine := NewTrainingEngine(testLogger())

	for seed := int64(1); seed <= 50; seed++ {
		req := &models.TrainingRequest{
			Player:      traineeWith("apex", 100),
			Focus:       models.FocusAim,
			Intensity:   models.IntensityIntense,
			CoachRating: 100,
			Seed:        seed,
		}
		result, err := engine.TrainPlayer(req)
		if err != nil {
			t.Fatalf("seed %d: TrainPlayer() error = %v", seed, err)
		}
		if gain := result.Gains[string(models.FocusAim)]; gain != 0 {
			t.Fatalf("seed %d: maxed attribute gained %d, want 0", seed, gain)
		}
	}
}

func TestTrainingEngine_FavorableSessionAlwaysProgresses(t *testing.T) {
	engine := NewTrainingEngine(testLogger())

	// Base 3, coach 100 et fatigue nulle: même le pire tirage
	// de variance laisse un gain d'au moins trois points
	for seed := int64(1); seed <= 50; seed++ {
		req := &models.TrainingRequest{
			Player:      traineeWith("nova", 50),
			Focus:       models.FocusGameSense,
			Intensity:   models.IntensityIntense,
			CoachRating: 100,
			Seed:        seed,
		}
		result, err := engine.TrainPlayer(req)
		if err != nil {
			t.Fatalf("seed %d: TrainPlayer() error = %v", seed, err)
		}
		gain := result.Gains[string(models.FocusGameSense)]
		if gain < 3 {
			t.Fatalf("seed %d: gain = %d, want at least 3", seed, gain)
		}
		if gain > 50 {
			t.Fatalf("seed %d: gain = %d exceeds the remaining headroom", seed, gain)
		}
	}
}

func TestTrainingEngine_FatigueCostPerIntensity(t *testing.T) {
	engine := NewTrainingEngine(testLogger())

	cases := []struct {
		name      string
		intensity models.TrainingIntensity
		fatigue   int
		want      int
	}{
		{"light", models.IntensityLight, 40, 45},
		{"moderate", models.IntensityModerate, 40, 52},
		{"intense", models.IntensityIntense, 40, 62},
		{"capped at hundred", models.IntensityIntense, 90, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := &models.TrainingRequest{
				Player:      traineeWith("mara", 70),
				Focus:       models.FocusComposure,
				Intensity:   tc.intensity,
				CoachRating: 60,
				Fatigue:     tc.fatigue,
				Seed:        11,
			}
			result, err := engine.TrainPlayer(req)
			if err != nil {
				t.Fatalf("TrainPlayer() error = %v", err)
			}
			if result.FatigueAfter != tc.want {
				t.Fatalf("FatigueAfter = %d, want %d", result.FatigueAfter, tc.want)
			}
		})
	}
}

func TestTrainingEngine_IntensityScalesGains(t *testing.T) {
	engine := NewTrainingEngine(testLogger())

	// À seed égal les tirages sont identiques, seule la base change:
	// les gains doivent croître avec l'intensité
	player := traineeWith("ivo", 60)
	gainFor := func(intensity models.TrainingIntensity) int {
		req := &models.TrainingRequest{
			Player:      player,
			Focus:       models.FocusUtility,
			Intensity:   intensity,
			CoachRating: 80,
			Fatigue:     10,
			Seed:        9,
		}
		result, err := engine.TrainPlayer(req)
		if err != nil {
			t.Fatalf("TrainPlayer(%s) error = %v", intensity, err)
		}
		return result.Gains[string(models.FocusUtility)]
	}

	light := gainFor(models.IntensityLight)
	moderate := gainFor(models.IntensityModerate)
	intense := gainFor(models.IntensityIntense)
	if light > moderate || moderate > intense {
		t.Fatalf("gains %d/%d/%d do not grow with intensity", light, moderate, intense)
	}
}

func TestTrainingEngine_SpilloverAddsSingleSecondaryGain(t *testing.T) {
	engine := NewTrainingEngine(testLogger())

	valid := map[string]bool{
		string(models.FocusAim):       true,
		string(models.FocusReflexes):  true,
		string(models.FocusGameSense): true,
		string(models.FocusComposure): true,
		string(models.FocusUtility):   true,
	}
	spilled := 0
	for seed := int64(1); seed <= 80; seed++ {
		req := &models.TrainingRequest{
			Player:      traineeWith("sato", 55),
			Focus:       models.FocusGameSense,
			Intensity:   models.IntensityModerate,
			CoachRating: 70,
			Seed:        seed,
		}
		result, err := engine.TrainPlayer(req)
		if err != nil {
			t.Fatalf("seed %d: TrainPlayer() error = %v", seed, err)
		}
		if len(result.Gains) > 2 {
			t.Fatalf("seed %d: gains %v spread over more than two attributes", seed, result.Gains)
		}
		for attr, gain := range result.Gains {
			if !valid[attr] {
				t.Fatalf("seed %d: unknown attribute %q in gains", seed, attr)
			}
			if attr != string(models.FocusGameSense) {
				spilled++
				if gain != 1 {
					t.Fatalf("seed %d: spillover gain = %d, want 1", seed, gain)
				}
			}
		}
	}
	if spilled == 0 {
		t.Fatalf("no spillover in 80 sessions, want at least one")
	}
	if spilled == 80 {
		t.Fatalf("spillover in every session, want it occasional")
	}
}

func TestTrainingEngine_BreakthroughDoublesProgress(t *testing.T) {
	engine := NewTrainingEngine(testLogger())

	breakthroughs := 0
	for seed := int64(1); seed <= 200; seed++ {
		req := &models.TrainingRequest{
			Player:      traineeWith("remy", 10),
			Focus:       models.FocusAim,
			Intensity:   models.IntensityModerate,
			CoachRating: 70,
			Seed:        seed,
		}
		result, err := engine.TrainPlayer(req)
		if err != nil {
			t.Fatalf("seed %d: TrainPlayer() error = %v", seed, err)
		}
		if !result.Breakthrough {
			continue
		}
		breakthroughs++
		// Avec 90 points de marge le doublement n'est jamais écrêté
		if gain := result.Gains[string(models.FocusAim)]; gain < 1 || gain%2 == 0 {
			t.Fatalf("seed %d: breakthrough gain = %d, want a positive odd value", seed, gain)
		}
	}
	if breakthroughs == 0 {
		t.Fatalf("no breakthrough in 200 sessions, want at least one")
	}
	if breakthroughs == 200 {
		t.Fatalf("breakthrough in every session, want it rare")
	}
}

func TestTrainingEngine_RejectsMalformedRequests(t *testing.T) {
	engine := NewTrainingEngine(testLogger())

	if _, err := engine.TrainPlayer(nil); err == nil || !strings.Contains(err.Error(), "nil") {
		t.Fatalf("TrainPlayer(nil) error = %v, want a nil-request error", err)
	}

	base := func() *models.TrainingRequest {
		return &models.TrainingRequest{
			Player:      traineeWith("kira", 60),
			Focus:       models.FocusAim,
			Intensity:   models.IntensityLight,
			CoachRating: 50,
			Fatigue:     10,
			Seed:        3,
		}
	}
	cases := []struct {
		name    string
		mutate  func(*models.TrainingRequest)
		wantErr string
	}{
		{"player without id", func(r *models.TrainingRequest) { r.Player.ID = uuid.Nil }, "player has no id"},
		{"unknown focus", func(r *models.TrainingRequest) { r.Focus = "stamina" }, "invalid training focus"},
		{"unknown intensity", func(r *models.TrainingRequest) { r.Intensity = "crunch" }, "invalid training intensity"},
		{"coach rating too high", func(r *models.TrainingRequest) { r.CoachRating = 101 }, "coach rating"},
		{"negative fatigue", func(r *models.TrainingRequest) { r.Fatigue = -1 }, "fatigue"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base()
			tc.mutate(req)
			_, err := engine.TrainPlayer(req)
			if err == nil {
				t.Fatalf("TrainPlayer() accepted a malformed request")
			}
			if !strings.Contains(err.Error(), "training request rejected") {
				t.Fatalf("error %q does not carry the rejection prefix", err)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestTrainingEngine_BatchMatchesIndividualSession(t *testing.T) {
	engine := NewTrainingEngine(testLogger())
	player := traineeWith("lena", 65)

	single, err := engine.TrainPlayer(&models.TrainingRequest{
		Player:      player,
		Focus:       models.FocusReflexes,
		Intensity:   models.IntensityModerate,
		CoachRating: 80,
		Fatigue:     15,
		Seed:        77,
	})
	if err != nil {
		t.Fatalf("TrainPlayer() error = %v", err)
	}

	batch, err := engine.TrainBatch(&models.TrainingBatchRequest{
		Players:     []models.PlayerProfile{player},
		Focus:       models.FocusReflexes,
		Intensity:   models.IntensityModerate,
		CoachRating: 80,
		Fatigue:     15,
		Seed:        77,
	}, nil)
	if err != nil {
		t.Fatalf("TrainBatch() error = %v", err)
	}
	if len(batch.Results) != 1 {
		t.Fatalf("batch results = %d, want 1", len(batch.Results))
	}

	got := batch.Results[0]
	if got.PlayerID != single.PlayerID {
		t.Fatalf("batch PlayerID = %s, want %s", got.PlayerID, single.PlayerID)
	}
	if !reflect.DeepEqual(got.Gains, single.Gains) {
		t.Fatalf("batch gains = %v, individual session got %v", got.Gains, single.Gains)
	}
	if got.Breakthrough != single.Breakthrough {
		t.Fatalf("batch breakthrough = %v, individual session got %v", got.Breakthrough, single.Breakthrough)
	}
	if got.FatigueAfter != single.FatigueAfter {
		t.Fatalf("batch fatigue = %d, individual session got %d", got.FatigueAfter, single.FatigueAfter)
	}
}

func TestTrainingEngine_BatchReportsProgressPerPlayer(t *testing.T) {
	engine := NewTrainingEngine(testLogger())
	players := []models.PlayerProfile{
		traineeWith("ana", 60),
		traineeWith("bo", 62),
		traineeWith("cy", 64),
		traineeWith("dee", 66),
	}

	type step struct {
		stage   string
		percent int
		detail  string
	}
	var steps []step
	batch, err := engine.TrainBatch(&models.TrainingBatchRequest{
		Players:     players,
		Focus:       models.FocusComposure,
		Intensity:   models.IntensityLight,
		CoachRating: 65,
		Fatigue:     30,
		Seed:        31,
	}, func(stage string, percent int, detail string) {
		steps = append(steps, step{stage, percent, detail})
	})
	if err != nil {
		t.Fatalf("TrainBatch() error = %v", err)
	}

	if len(batch.Results) != len(players) {
		t.Fatalf("batch results = %d, want %d", len(batch.Results), len(players))
	}
	for i := range players {
		if batch.Results[i].PlayerID != players[i].ID {
			t.Fatalf("result %d is for %s, want %s", i, batch.Results[i].PlayerID, players[i].ID)
		}
	}

	if len(steps) != len(players) {
		t.Fatalf("progress calls = %d, want %d", len(steps), len(players))
	}
	wantPercents := []int{25, 50, 75, 100}
	for i, s := range steps {
		if s.stage != StageTraining {
			t.Fatalf("step %d stage = %q, want %q", i, s.stage, StageTraining)
		}
		if s.percent != wantPercents[i] {
			t.Fatalf("step %d percent = %d, want %d", i, s.percent, wantPercents[i])
		}
		if s.detail != players[i].Name {
			t.Fatalf("step %d detail = %q, want %q", i, s.detail, players[i].Name)
		}
	}
}

func TestTrainingEngine_BatchSameSeedReproducible(t *testing.T) {
	engine := NewTrainingEngine(testLogger())
	players := []models.PlayerProfile{
		traineeWith("px", 58),
		traineeWith("qy", 61),
		traineeWith("rz", 63),
	}
	request := func() *models.TrainingBatchRequest {
		return &models.TrainingBatchRequest{
			Players:     players,
			Focus:       models.FocusAim,
			Intensity:   models.IntensityIntense,
			CoachRating: 90,
			Fatigue:     5,
			Seed:        123,
		}
	}

	first, err := engine.TrainBatch(request(), nil)
	if err != nil {
		t.Fatalf("TrainBatch() error = %v", err)
	}
	second, err := engine.TrainBatch(request(), nil)
	if err != nil {
		t.Fatalf("TrainBatch() second call error = %v", err)
	}

	for i := range first.Results {
		a, b := first.Results[i], second.Results[i]
		if !reflect.DeepEqual(a.Gains, b.Gains) || a.Breakthrough != b.Breakthrough || a.FatigueAfter != b.FatigueAfter {
			t.Fatalf("player %d diverged between identical batches: %+v vs %+v", i, a, b)
		}
	}
}

func TestTrainingEngine_BatchRejections(t *testing.T) {
	engine := NewTrainingEngine(testLogger())

	if _, err := engine.TrainBatch(nil, nil); err == nil || !strings.Contains(err.Error(), "nil") {
		t.Fatalf("TrainBatch(nil) error = %v, want a nil-request error", err)
	}

	_, err := engine.TrainBatch(&models.TrainingBatchRequest{
		Focus:     models.FocusAim,
		Intensity: models.IntensityLight,
	}, nil)
	if err == nil || !strings.Contains(err.Error(), "no players to train") {
		t.Fatalf("empty batch error = %v, want it to mention the empty roster", err)
	}

	bad := traineeWith("ghost", 60)
	bad.ID = uuid.Nil
	_, err = engine.TrainBatch(&models.TrainingBatchRequest{
		Players:     []models.PlayerProfile{traineeWith("ok", 60), bad},
		Focus:       models.FocusAim,
		Intensity:   models.IntensityLight,
		CoachRating: 50,
	}, nil)
	if err == nil || !strings.Contains(err.Error(), "player 1") {
		t.Fatalf("batch error = %v, want it to name the offending player index", err)
	}
}
