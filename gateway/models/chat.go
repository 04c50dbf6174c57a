package models

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Options carries the advisory source language tag and the locale of returned prose.
type Options struct {
	Language string
	Locale   string
}
