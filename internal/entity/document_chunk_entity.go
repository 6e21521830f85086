package entity

import (
	"time"

	"github.com/google/uuid"
)

type DocumentChunk struct {
	Id             uuid.UUID
	Content        string
	EmbeddingValue []float32
	DocumentId     uuid.UUID
	ChunkIndex     int
	SentenceStart  int
	SentenceEnd    int
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
