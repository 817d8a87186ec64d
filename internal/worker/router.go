package worker

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"simulation/internal/models"
	"simulation/internal/repository"
	"simulation/internal/service"
)

// EngineSet regroupe les moteurs que le worker sait servir. MatchRepo
// est optionnel: s'il est présent, les résultats de match sont
// persistés avant d'être retournés. Les scrims ne sont jamais persistés.
type EngineSet struct {
	Matches   service.MatchSimulatorInterface
	Training  service.TrainingEngineInterface
	Scrims    service.ScrimEngineInterface
	Drama     service.DramaEngineInterface
	MatchRepo repository.MatchRepositoryInterface
}

// RegisterEngines associe chaque type de tâche du protocole à son moteur.
// Le pont ne porte aucune logique de simulation: tout passe par ici.
func RegisterEngines(bridge SimulationBridgeInterface, engines *EngineSet) {
	bridge.Register(RequestSimulateMatch, matchHandler(engines.Matches, engines.MatchRepo))
	bridge.Register(RequestTrainPlayer, trainPlayerHandler(engines.Training))
	bridge.Register(RequestTrainBatch, trainBatchHandler(engines.Training))
	bridge.Register(RequestResolveScrim, scrimHandler(engines.Scrims))
	bridge.Register(RequestEvaluateDrama, dramaHandler(engines.Drama))
}

func matchHandler(matches service.MatchSimulatorInterface, repo repository.MatchRepositoryInterface) Handler {
	return func(req *ComputeRequest, progress func(ProgressPayload)) (interface{}, error) {
		matchReq, ok := req.Payload.(*models.MatchRequest)
		if !ok {
			return nil, fmt.Errorf("%s payload must be a match request", req.Type)
		}

		result, err := matches.SimulateMatchWithProgress(matchReq, func(stage string, percent int, detail string) {
			progress(ProgressPayload{Stage: stage, Percent: percent, Detail: detail})
		})
		if err != nil {
			return nil, err
		}

		// L'échec de persistance n'invalide pas le résultat calculé
		if repo != nil {
			if err := repo.Create(result); err != nil {
				logrus.WithError(err).WithField("match_id", result.MatchID).Error("Failed to persist match result")
			}
		}

		return result, nil
	}
}

func trainPlayerHandler(training service.TrainingEngineInterface) Handler {
	return func(req *ComputeRequest, progress func(ProgressPayload)) (interface{}, error) {
		trainingReq, ok := req.Payload.(*models.TrainingRequest)
		if !ok {
			return nil, fmt.Errorf("%s payload must be a training request", req.Type)
		}
		return training.TrainPlayer(trainingReq)
	}
}

func trainBatchHandler(training service.TrainingEngineInterface) Handler {
	return func(req *ComputeRequest, progress func(ProgressPayload)) (interface{}, error) {
		batchReq, ok := req.Payload.(*models.TrainingBatchRequest)
		if !ok {
			return nil, fmt.Errorf("%s payload must be a training batch request", req.Type)
		}
		return training.TrainBatch(batchReq, func(stage string, percent int, detail string) {
			progress(ProgressPayload{Stage: stage, Percent: percent, Detail: detail})
		})
	}
}

func scrimHandler(scrims service.ScrimEngineInterface) Handler {
	return func(req *ComputeRequest, progress func(ProgressPayload)) (interface{}, error) {
		scrimReq, ok := req.Payload.(*models.ScrimRequest)
		if !ok {
			return nil, fmt.Errorf("%s payload must be a scrim request", req.Type)
		}
		return scrims.ResolveScrim(scrimReq)
	}
}

func dramaHandler(drama service.DramaEngineInterface) Handler {
	return func(req *ComputeRequest, progress func(ProgressPayload)) (interface{}, error) {
		dramaReq, ok := req.Payload.(*models.DramaRequest)
		if !ok {
			return nil, fmt.Errorf("%s payload must be a drama request", req.Type)
		}
		return drama.EvaluateDrama(dramaReq)
	}
}
