package main

import (
	"log"

	"rag-assistant-be/internal/config"
	"rag-assistant-be/internal/model"
	"rag-assistant-be/pkg/database"
)

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	// pgvector must exist before the vector(768) column can be created.
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		log.Fatalf("Failed to create vector extension: %v", err)
	}

	if err := db.AutoMigrate(
		&model.Document{},
		&model.DocumentChunk{},
	); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// ivfflat keeps similarity search fast once the index grows.
	if err := db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_document_chunks_embedding ON document_chunks USING ivfflat (embedding_value vector_cosine_ops) WITH (lists = 100)",
	).Error; err != nil {
		log.Fatalf("Failed to create ivfflat index: %v", err)
	}

	log.Println("Migration complete")
}
