package worker

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"simulation/internal/monitoring"
)

const (
	defaultQueueCapacity = 64
	responseBuffer       = 16
)

// Handler exécute une tâche et retourne son résultat. La fonction
// progress peut être appelée librement pendant l'exécution; le pont
// garantit qu'aucun PROGRESS ne part après la réponse terminale.
type Handler func(req *ComputeRequest, progress func(ProgressPayload)) (interface{}, error)

// SimulationBridgeInterface définit le pont vers le worker de calcul
type SimulationBridgeInterface interface {
	Register(requestType RequestType, handler Handler)
	Submit(req *ComputeRequest) (<-chan ComputeResponse, error)
	Stop()
}

// SimulationBridge fait transiter les tâches de simulation vers un
// unique goroutine de calcul, créé paresseusement à la première
// soumission et recréé de même après un arrêt ou un crash.
//
// Garanties par identifiant de tâche: zéro ou plusieurs PROGRESS
// strictement avant une unique réponse terminale RESULT ou ERROR, puis
// fermeture du canal. Une panique de handler produit une ERROR pour
// cette tâche seulement; une mort du worker rejette toutes les tâches
// en attente. Aucune annulation par tâche n'est offerte.
type SimulationBridge struct {
	mu       sync.Mutex
	logger   *logrus.Logger
	handlers map[RequestType]Handler
	pending  map[string]chan ComputeResponse
	queue    chan *ComputeRequest
	stop     chan struct{}
	gen      int
	capacity int
}

// NewSimulationBridge crée un nouveau pont de simulation. Une capacité
// de file nulle ou négative retombe sur la valeur par défaut.
func NewSimulationBridge(logger *logrus.Logger, queueCapacity int) *SimulationBridge {
	if queueCapacity <= 0 {
		queueCapacity = defaultQueueCapacity
	}
	return &SimulationBridge{
		logger:   logger,
		handlers: make(map[RequestType]Handler),
		pending:  make(map[string]chan ComputeResponse),
		capacity: queueCapacity,
	}
}

// Register associe un handler à un type de tâche
func (b *SimulationBridge) Register(requestType RequestType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[requestType] = handler
}

// Submit met une tâche en file et retourne son canal de réponses.
// Le type de tâche n'est pas vérifié ici: un type inconnu produit une
// réponse ERROR corrélée plutôt qu'un refus de soumission.
func (b *SimulationBridge) Submit(req *ComputeRequest) (<-chan ComputeResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("compute request is nil")
	}
	if req.ID == "" {
		return nil, fmt.Errorf("compute request has no id")
	}

	b.mu.Lock()
	if _, inFlight := b.pending[req.ID]; inFlight {
		b.mu.Unlock()
		return nil, fmt.Errorf("request id %s is already in flight", req.ID)
	}
	ch := make(chan ComputeResponse, responseBuffer)
	b.pending[req.ID] = ch
	monitoring.ActiveJobs.Inc()
	if b.queue == nil {
		b.gen++
		b.queue = make(chan *ComputeRequest, b.capacity)
		b.stop = make(chan struct{})
		go b.run(b.gen, b.queue, b.stop)
	}
	queue := b.queue
	b.mu.Unlock()

	select {
	case queue <- req:
		return ch, nil
	default:
	}

	// File pleine: retirer la tâche, sauf si un arrêt ou un crash
	// survenu entre-temps l'a déjà rejetée avec une ERROR terminale
	b.mu.Lock()
	_, mine := b.pending[req.ID]
	if mine {
		delete(b.pending, req.ID)
	}
	b.mu.Unlock()
	if !mine {
		return ch, nil
	}
	monitoring.ActiveJobs.Dec()
	return nil, fmt.Errorf("simulation queue is full (%d requests)", b.capacity)
}

// Stop arrête le worker courant et rejette toutes les tâches en attente.
// Une soumission ultérieure recrée un worker.
func (b *SimulationBridge) Stop() {
	b.mu.Lock()
	stop := b.stop
	b.queue = nil
	b.stop = nil
	rejected := b.pending
	b.pending = make(map[string]chan ComputeResponse)
	b.mu.Unlock()

	if stop != nil {
		close(stop)
	}
	for id, ch := range rejected {
		ch <- ComputeResponse{Type: ResponseError, ID: id, Error: "simulation bridge stopped"}
		close(ch)
		monitoring.ActiveJobs.Dec()
	}
	if len(rejected) > 0 {
		b.logger.WithField("rejected", len(rejected)).Warn("Simulation bridge stopped with pending requests")
	}
}

// run est la boucle du worker de calcul. Une panique qui s'échappe
// d'un handler est convertie en ERROR par dispatch; une panique qui
// s'échappe de la boucle elle-même tue le worker.
func (b *SimulationBridge) run(gen int, queue chan *ComputeRequest, stop chan struct{}) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.WithField("panic", r).Error("Simulation worker crashed")
			b.crash(gen, fmt.Errorf("simulation worker crashed: %v", r))
		}
	}()

	b.logger.Debug("Simulation worker started")
	for {
		select {
		case <-stop:
			b.logger.Debug("Simulation worker stopped")
			return
		case req := <-queue:
			b.dispatch(req)
		}
	}
}

// crash rejette toutes les tâches en attente après la mort du worker.
// Si un nouveau worker a déjà pris la main, il n'y a plus rien à faire.
func (b *SimulationBridge) crash(gen int, cause error) {
	b.mu.Lock()
	if b.gen != gen {
		b.mu.Unlock()
		return
	}
	b.queue = nil
	b.stop = nil
	rejected := b.pending
	b.pending = make(map[string]chan ComputeResponse)
	b.mu.Unlock()

	for id, ch := range rejected {
		ch <- ComputeResponse{Type: ResponseError, ID: id, Error: cause.Error()}
		close(ch)
		monitoring.ActiveJobs.Dec()
	}
	monitoring.WorkerRestarts.Inc()
}

func (b *SimulationBridge) dispatch(req *ComputeRequest) {
	start := time.Now()
	resp := b.handle(req)

	status := "success"
	if resp.Type == ResponseError {
		status = "error"
	}
	b.finish(req.ID, resp)

	monitoring.SimulationsTotal.WithLabelValues(string(req.Type), status).Inc()
	monitoring.SimulationDuration.WithLabelValues(string(req.Type)).Observe(time.Since(start).Seconds())

	b.logger.WithFields(logrus.Fields{
		"request_id": req.ID,
		"type":       req.Type,
		"status":     status,
		"duration":   time.Since(start).String(),
	}).Info("Simulation request processed")
}

// handle exécute le handler de la tâche en confinant toute panique
// à une réponse ERROR pour cette tâche
func (b *SimulationBridge) handle(req *ComputeRequest) (resp ComputeResponse) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.WithFields(logrus.Fields{
				"request_id": req.ID,
				"type":       req.Type,
				"panic":      r,
			}).Error("Simulation handler panicked")
			resp = ComputeResponse{Type: ResponseError, ID: req.ID, Error: fmt.Sprintf("handler panic: %v", r)}
		}
	}()

	b.mu.Lock()
	handler, ok := b.handlers[req.Type]
	b.mu.Unlock()
	if !ok {
		return ComputeResponse{Type: ResponseError, ID: req.ID, Error: fmt.Sprintf("unknown request type %q", req.Type)}
	}

	payload, err := handler(req, func(p ProgressPayload) {
		b.sendProgress(req.ID, p)
	})
	if err != nil {
		return ComputeResponse{Type: ResponseError, ID: req.ID, Error: err.Error()}
	}
	return ComputeResponse{Type: ResponseResult, ID: req.ID, Payload: payload}
}

// finish remet la réponse terminale et ferme le canal de la tâche.
// Le premier à retirer l'identifiant de la table possède le canal, ce
// qui interdit tout double envoi entre dispatch, Stop et crash.
func (b *SimulationBridge) finish(id string, resp ComputeResponse) {
	b.mu.Lock()
	ch, ok := b.pending[id]
	if ok {
		delete(b.pending, id)
	}
	b.mu.Unlock()
	if !ok {
		return
	}
	ch <- resp
	close(ch)
	monitoring.ActiveJobs.Dec()
}

// sendProgress remet un PROGRESS sans jamais bloquer le worker: le
// dernier emplacement du tampon reste réservé à la réponse terminale,
// un consommateur en retard perd des jalons intermédiaires au pire.
func (b *SimulationBridge) sendProgress(id string, p ProgressPayload) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.pending[id]
	if !ok {
		return
	}
	if len(ch) < cap(ch)-1 {
		progress := p
		ch <- ComputeResponse{Type: ResponseProgress, ID: id, Progress: &progress}
	}
}
