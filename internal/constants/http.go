package constants

// Constantes HTTP
const (
	// Découpage de l'en-tête Authorization ("Bearer <token>")
	AuthHeaderSplitParts = 2

	// Pagination des listes de résultats
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Clés de contexte gin posées par les middlewares
const (
	ContextUserID      = "user_id"
	ContextFranchiseID = "franchise_id"
	ContextUsername    = "username"
	ContextRole        = "role"
	ContextRequestID   = "request_id"
)
