package dto

import (
	"time"

	"github.com/google/uuid"
)

type IngestDocumentRequest struct {
	Title    string `json:"title" validate:"required"`
	FileType string `json:"file_type" validate:"required,oneof=txt text md markdown pdf html htm"`
	// Base64-encoded raw document bytes.
	Content string `json:"content" validate:"required"`
}

type IngestDocumentResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type ShowDocumentResponse struct {
	Id         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	FileType   string     `json:"file_type"`
	Status     string     `json:"status"`
	ChunkCount int        `json:"chunk_count"`
	LastError  string     `json:"last_error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

type DocumentChunkResponse struct {
	Id            uuid.UUID `json:"id"`
	Content       string    `json:"content"`
	ChunkIndex    int       `json:"chunk_index"`
	SentenceStart int       `json:"sentence_start"`
	SentenceEnd   int       `json:"sentence_end"`
}

// PublishIngestDocumentMessage is the queue payload that triggers the
// ingestion pipeline for an already-registered document.
type PublishIngestDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}
