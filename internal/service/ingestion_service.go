package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"rag-assistant-be/internal/constant"
	"rag-assistant-be/internal/entity"
	"rag-assistant-be/internal/repository/specification"
	"rag-assistant-be/internal/repository/unitofwork"
	"rag-assistant-be/pkg/chunker"
	"rag-assistant-be/pkg/embedding"
	"rag-assistant-be/pkg/events"
	"rag-assistant-be/pkg/extract"
	pktNats "rag-assistant-be/pkg/nats"

	"github.com/google/uuid"
)

// ErrPermanent marks a failure that will not succeed on retry (missing
// document, unsupported or corrupt file). The consumer acks these instead
// of requeueing.
var ErrPermanent = errors.New("permanent ingestion failure")

type IIngestionService interface {
	ProcessDocument(ctx context.Context, documentId uuid.UUID) error
}

type ingestionService struct {
	uowFactory        unitofwork.RepositoryFactory
	extractor         *extract.Extractor
	splitter          *chunker.Splitter
	embeddingProvider embedding.Provider
	eventPublisher    *pktNats.Publisher
}

func NewIngestionService(
	uowFactory unitofwork.RepositoryFactory,
	extractor *extract.Extractor,
	splitter *chunker.Splitter,
	embeddingProvider embedding.Provider,
	eventPublisher *pktNats.Publisher,
) IIngestionService {
	return &ingestionService{
		uowFactory:        uowFactory,
		extractor:         extractor,
		splitter:          splitter,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
	}
}

// ProcessDocument runs the full pipeline for one document: extract, chunk,
// embed, persist. Old chunks are replaced atomically with the new set, so
// re-processing the same document is idempotent.
func (s *ingestionService) ProcessDocument(ctx context.Context, documentId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("%w: document %s not found", ErrPermanent, documentId)
	}

	if doc.Status != constant.DocumentStatusProcessing {
		if err := uow.DocumentRepository().SetStatus(ctx, documentId, constant.DocumentStatusProcessing, ""); err != nil {
			return err
		}
	}

	text, err := s.extractor.Extract(doc.RawContent, doc.FileType)
	if err != nil {
		s.failDocument(ctx, uow, doc, fmt.Sprintf("extraction failed: %v", err))
		if errors.Is(err, extract.ErrUnsupportedType) || errors.Is(err, extract.ErrCorruptDocument) {
			return fmt.Errorf("%w: %v", ErrPermanent, err)
		}
		return err
	}

	chunks := s.splitter.Split(text, doc.Title)
	if len(chunks) == 0 {
		s.failDocument(ctx, uow, doc, "document produced no chunks")
		return fmt.Errorf("%w: document %s produced no chunks", ErrPermanent, documentId)
	}
	log.Printf("[INFO] Document %s split into %d chunks", documentId, len(chunks))

	newChunks := make([]*entity.DocumentChunk, 0, len(chunks))
	for _, c := range chunks {
		res, err := s.embeddingProvider.Generate(ctx, c.Content, embedding.TaskDocument)
		if err != nil {
			// One failed chunk aborts the whole document: a partial index
			// silently answers from incomplete knowledge.
			log.Printf("[ERROR] Failed to embed chunk %d of document %s: %v", c.Index, documentId, err)
			s.failDocument(ctx, uow, doc, fmt.Sprintf("embedding failed at chunk %d: %v", c.Index, err))
			return err
		}

		newChunks = append(newChunks, &entity.DocumentChunk{
			Id:             uuid.New(),
			Content:        c.Content,
			EmbeddingValue: res.Values,
			DocumentId:     doc.Id,
			ChunkIndex:     c.Index,
			SentenceStart:  c.Metadata.SentenceStart,
			SentenceEnd:    c.Metadata.SentenceEnd,
			CreatedAt:      time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, doc.Id); err != nil {
		return err
	}
	if err := uow.DocumentChunkRepository().CreateBulk(ctx, newChunks); err != nil {
		return err
	}
	if err := uow.DocumentRepository().SetChunkCount(ctx, doc.Id, len(newChunks)); err != nil {
		return err
	}
	if err := uow.DocumentRepository().SetStatus(ctx, doc.Id, constant.DocumentStatusIndexed, ""); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	log.Printf("[SUCCESS] Document indexed: %d chunks for DocumentId: %s", len(newChunks), documentId)
	s.publishEvent(ctx, events.TypeDocumentIndexed, doc, len(newChunks), "")
	return nil
}

// failDocument records the error status best-effort: the original failure
// is what the caller reports, not a follow-up write error.
func (s *ingestionService) failDocument(ctx context.Context, uow unitofwork.UnitOfWork, doc *entity.Document, reason string) {
	if err := uow.DocumentRepository().SetStatus(ctx, doc.Id, constant.DocumentStatusError, reason); err != nil {
		log.Printf("[ERROR] Failed to mark document %s as errored: %v", doc.Id, err)
	}
	s.publishEvent(ctx, events.TypeDocumentError, doc, 0, reason)
}

func (s *ingestionService) publishEvent(ctx context.Context, eventType string, doc *entity.Document, chunkCount int, reason string) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"document_id": doc.Id,
			"title":       doc.Title,
			"chunk_count": chunkCount,
			"reason":      reason,
		},
		OccurredAt: time.Now(),
	}
	// Lifecycle events are auxiliary; a bus failure never fails ingestion.
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		log.Printf("[WARN] Failed to publish %s event: %v", eventType, err)
	}
}
