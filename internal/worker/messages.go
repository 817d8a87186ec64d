package worker

// RequestType définit les tâches déchargées sur le worker de calcul
type RequestType string

const (
	RequestSimulateMatch RequestType = "SIMULATE_MATCH"
	RequestTrainPlayer   RequestType = "TRAIN_PLAYER"
	RequestTrainBatch    RequestType = "TRAIN_BATCH"
	RequestResolveScrim  RequestType = "RESOLVE_SCRIM"
	RequestEvaluateDrama RequestType = "EVALUATE_DRAMA"
)

// ResponseType définit les réponses du worker de calcul
type ResponseType string

const (
	ResponseResult   ResponseType = "RESULT"
	ResponseProgress ResponseType = "PROGRESS"
	ResponseError    ResponseType = "ERROR"
)

// ComputeRequest représente une tâche soumise au worker. L'identifiant
// est choisi par l'appelant et corrèle toutes les réponses de la tâche.
type ComputeRequest struct {
	Type    RequestType `json:"type"`
	ID      string      `json:"id"`
	Payload interface{} `json:"payload"`
}

// ProgressPayload représente l'avancement d'une tâche en cours
type ProgressPayload struct {
	Stage   string `json:"stage"`
	Percent int    `json:"percent"`
	Detail  string `json:"detail,omitempty"`
}

// ComputeResponse représente une réponse du worker. Une tâche produit
// zéro ou plusieurs réponses PROGRESS puis exactement une réponse
// terminale RESULT ou ERROR; aucun ordre n'est garanti entre tâches,
// seule la corrélation par identifiant fait foi.
type ComputeResponse struct {
	Type     ResponseType     `json:"type"`
	ID       string           `json:"id"`
	Payload  interface{}      `json:"payload,omitempty"`
	Progress *ProgressPayload `json:"progress,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Terminal indique si la réponse clôt la tâche
func (r *ComputeResponse) Terminal() bool {
	return r.Type == ResponseResult || r.Type == ResponseError
}
