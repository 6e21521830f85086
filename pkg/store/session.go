package store

import "rag-assistant-be/pkg/llm"

// Session is the in-memory state of one chat conversation. It lives in the
// session cache, not the database: losing it costs continuity, not data.
type Session struct {
	ID      string        `json:"id"`
	History []llm.Message `json:"history"`

	// LastIntent and LastMode echo the previous routing verdict so a
	// follow-up question can reuse them as hints.
	LastIntent string `json:"last_intent"`
	LastMode   string `json:"last_mode"`
}

// Append records one chat turn.
func (s *Session) Append(role, content string) {
	s.History = append(s.History, llm.Message{Role: role, Content: content})
}
