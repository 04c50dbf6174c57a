package models

// Conversation roles understood by every provider.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Content is one turn of the conversation sent to the model.
type Content struct {
	Role string
	Text string
}

// GenerateRequest is the provider-neutral request built by the gateway.
type GenerateRequest struct {
	SystemInstruction string
	Contents          []Content
	// Schema, when set, asks the provider for a JSON response of that shape.
	Schema      *Schema
	Temperature float32
}

// GenerateResponse carries the raw model text and token usage when the provider reports it.
type GenerateResponse struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// AIError is the error envelope returned by the HTTP APIs.
type AIError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
