package handlers

import (
	"sync"
	"time"

	"simulation/internal/worker"
)

// Rétention des jobs terminés avant nettoyage
const (
	jobRetention       = 10 * time.Minute
	jobCleanupInterval = time.Minute
	subscriberBuffer   = 16
)

// JobStatus représente l'état d'un job asynchrone
type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// JobView représente l'état consultable d'un job
type JobView struct {
	JobID       string                  `json:"job_id"`
	Type        worker.RequestType      `json:"type"`
	Status      JobStatus               `json:"status"`
	Progress    *worker.ProgressPayload `json:"progress,omitempty"`
	Result      interface{}             `json:"result,omitempty"`
	Error       string                  `json:"error,omitempty"`
	SubmittedAt time.Time               `json:"submitted_at"`
	CompletedAt *time.Time              `json:"completed_at,omitempty"`
}

// trackedJob porte l'état interne d'un job et ses abonnés WebSocket
type trackedJob struct {
	view        JobView
	subscribers map[chan worker.ProgressPayload]struct{}
}

// JobTracker suit l'état des jobs soumis au worker de calcul. Il
// consomme les réponses du bridge en arrière-plan afin que l'état
// reste consultable après la réponse HTTP initiale.
type JobTracker struct {
	mu   sync.RWMutex
	jobs map[string]*trackedJob
}

// NewJobTracker crée un nouveau tracker de jobs
func NewJobTracker() *JobTracker {
	t := &JobTracker{
		jobs: make(map[string]*trackedJob),
	}

	// Nettoyage périodique des jobs terminés
	go t.cleanupJobs()

	return t
}

// Track enregistre un job et consomme ses réponses en arrière-plan
func (t *JobTracker) Track(id string, requestType worker.RequestType, responses <-chan worker.ComputeResponse) {
	t.mu.Lock()
	t.jobs[id] = &trackedJob{
		view: JobView{
			JobID:       id,
			Type:        requestType,
			Status:      JobRunning,
			SubmittedAt: time.Now().UTC(),
		},
		subscribers: make(map[chan worker.ProgressPayload]struct{}),
	}
	t.mu.Unlock()

	go t.drain(id, responses)
}

// Get retourne une copie de l'état d'un job
func (t *JobTracker) Get(id string) (JobView, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	job, exists := t.jobs[id]
	if !exists {
		return JobView{}, false
	}

	return job.view, true
}

// Subscribe abonne un consommateur aux progressions d'un job. Le canal
// retourné est fermé quand le job atteint sa réponse terminale; pour un
// job déjà terminé il est retourné fermé immédiatement. La fonction
// d'annulation retire l'abonnement.
func (t *JobTracker) Subscribe(id string) (<-chan worker.ProgressPayload, func(), bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, exists := t.jobs[id]
	if !exists {
		return nil, nil, false
	}

	ch := make(chan worker.ProgressPayload, subscriberBuffer)
	if job.view.Status != JobRunning {
		close(ch)
		return ch, func() {}, true
	}

	job.subscribers[ch] = struct{}{}

	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()

		if j, ok := t.jobs[id]; ok {
			if _, subscribed := j.subscribers[ch]; subscribed {
				delete(j.subscribers, ch)
				close(ch)
			}
		}
	}

	return ch, cancel, true
}

// Counts retourne le nombre de jobs par état
func (t *JobTracker) Counts() (running, completed, failed int) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, job := range t.jobs {
		switch job.view.Status {
		case JobRunning:
			running++
		case JobCompleted:
			completed++
		case JobFailed:
			failed++
		}
	}

	return running, completed, failed
}

// drain consomme toutes les réponses d'un job jusqu'à la fermeture du canal
func (t *JobTracker) drain(id string, responses <-chan worker.ComputeResponse) {
	for resp := range responses {
		switch {
		case resp.Terminal():
			t.complete(id, resp)
		case resp.Progress != nil:
			t.progress(id, *resp.Progress)
		}
	}

	// Filet de sécurité si le canal se ferme sans réponse terminale
	t.mu.Lock()
	defer t.mu.Unlock()

	job, exists := t.jobs[id]
	if exists && job.view.Status == JobRunning {
		now := time.Now().UTC()
		job.view.Status = JobFailed
		job.view.Error = "job channel closed without terminal response"
		job.view.CompletedAt = &now
		t.closeSubscribers(job)
	}
}

// complete enregistre la réponse terminale d'un job
func (t *JobTracker) complete(id string, resp worker.ComputeResponse) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, exists := t.jobs[id]
	if !exists {
		return
	}

	now := time.Now().UTC()
	job.view.CompletedAt = &now

	if resp.Type == worker.ResponseError {
		job.view.Status = JobFailed
		job.view.Error = resp.Error
	} else {
		job.view.Status = JobCompleted
		job.view.Result = resp.Payload
	}

	t.closeSubscribers(job)
}

// progress enregistre la dernière progression et la diffuse aux abonnés
func (t *JobTracker) progress(id string, p worker.ProgressPayload) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, exists := t.jobs[id]
	if !exists {
		return
	}

	job.view.Progress = &p

	for ch := range job.subscribers {
		select {
		case ch <- p:
		default:
			// Abonné trop lent, cette progression est sautée
		}
	}
}

// closeSubscribers ferme tous les canaux abonnés, sous verrou appelant
func (t *JobTracker) closeSubscribers(job *trackedJob) {
	for ch := range job.subscribers {
		close(ch)
	}
	job.subscribers = make(map[chan worker.ProgressPayload]struct{})
}

// cleanupJobs supprime périodiquement les jobs terminés expirés
func (t *JobTracker) cleanupJobs() {
	ticker := time.NewTicker(jobCleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().UTC().Add(-jobRetention)

		t.mu.Lock()
		for id, job := range t.jobs {
			if job.view.Status == JobRunning {
				continue
			}
			if job.view.CompletedAt != nil && job.view.CompletedAt.Before(cutoff) {
				delete(t.jobs, id)
			}
		}
		t.mu.Unlock()
	}
}
