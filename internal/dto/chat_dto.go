package dto

type ChatRequest struct {
	SessionId string `json:"session_id"`
	Message   string `json:"message" validate:"required"`
	// Optional mode name: fast | balanced | accurate. Empty means resolve
	// the default.
	Mode string `json:"mode" validate:"omitempty,oneof=fast balanced accurate"`
	// Optional subject hint forwarded to the router.
	Subject string `json:"subject"`
}

type ChatCitation struct {
	DocumentTitle string  `json:"document_title"`
	ChunkIndex    int     `json:"chunk_index"`
	Similarity    float64 `json:"similarity"`
}

type ChatResponse struct {
	SessionId  string         `json:"session_id"`
	Answer     string         `json:"answer"`
	Intent     string         `json:"intent"`
	Mode       string         `json:"mode"`
	UsedRAG    bool           `json:"used_rag"`
	Impossible bool           `json:"impossible"`
	Citations  []ChatCitation `json:"citations,omitempty"`
	// Node ids visited by the router, root first.
	RoutePath []string `json:"route_path"`
}

type RouteRequest struct {
	Query   string `json:"query" validate:"required"`
	Subject string `json:"subject"`
}
