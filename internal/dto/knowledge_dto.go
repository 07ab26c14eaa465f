package dto

type KnowledgeSearchRequest struct {
	Query string `json:"query" validate:"required,max=1000"`
	K     int    `json:"k" validate:"omitempty,min=1,max=10"`
}

type KnowledgePassage struct {
	Id       int      `json:"id"`
	Text     string   `json:"text"`
	Distance *float32 `json:"distance,omitempty"`
}

type CrisisResource struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

type HealthResponse struct {
	Status               string `json:"status"`
	Database             string `json:"database"`
	KnowledgeReady       bool   `json:"knowledge_ready"`
	LLMConfigured        bool   `json:"llm_configured"`
	WebsocketConnections int    `json:"websocket_connections"`
}
