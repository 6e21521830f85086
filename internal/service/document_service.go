package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	"rag-assistant-be/internal/constant"
	"rag-assistant-be/internal/dto"
	"rag-assistant-be/internal/entity"
	"rag-assistant-be/internal/repository/specification"
	"rag-assistant-be/internal/repository/unitofwork"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentService interface {
	Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error)
	Reingest(ctx context.Context, id uuid.UUID) (*dto.IngestDocumentResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	List(ctx context.Context) ([]*dto.ShowDocumentResponse, error)
	Chunks(ctx context.Context, id uuid.UUID) ([]*dto.DocumentChunkResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
	}
}

func (s *documentService) Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error) {
	raw, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "content must be base64 encoded")
	}
	if len(raw) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "content is empty")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc := entity.Document{
		Id:         uuid.New(),
		Title:      req.Title,
		FileType:   req.FileType,
		RawContent: raw,
		Status:     constant.DocumentStatusProcessing,
		CreatedAt:  time.Now(),
	}

	if err := uow.DocumentRepository().Create(ctx, &doc); err != nil {
		return nil, err
	}

	if err := s.publishIngest(ctx, doc.Id); err != nil {
		return nil, err
	}

	return &dto.IngestDocumentResponse{
		Id:     doc.Id,
		Status: doc.Status,
	}, nil
}

// Reingest re-queues an existing document. Old chunks are replaced by the
// pipeline, so calling this repeatedly is safe.
func (s *documentService) Reingest(ctx context.Context, id uuid.UUID) (*dto.IngestDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "document not found")
	}

	if err := uow.DocumentRepository().SetStatus(ctx, id, constant.DocumentStatusProcessing, ""); err != nil {
		return nil, err
	}

	if err := s.publishIngest(ctx, id); err != nil {
		return nil, err
	}

	return &dto.IngestDocumentResponse{
		Id:     id,
		Status: constant.DocumentStatusProcessing,
	}, nil
}

func (s *documentService) publishIngest(ctx context.Context, id uuid.UUID) error {
	payload, err := json.Marshal(dto.PublishIngestDocumentMessage{DocumentId: id})
	if err != nil {
		return err
	}
	return s.publisherService.Publish(ctx, payload)
}

func (s *documentService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "document not found")
	}
	return toShowDocumentResponse(doc), nil
}

func (s *documentService) List(ctx context.Context) ([]*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	docs, err := uow.DocumentRepository().FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}
	res := make([]*dto.ShowDocumentResponse, len(docs))
	for i, d := range docs {
		res[i] = toShowDocumentResponse(d)
	}
	return res, nil
}

func (s *documentService) Chunks(ctx context.Context, id uuid.UUID) ([]*dto.DocumentChunkResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "document not found")
	}

	chunks, err := uow.DocumentChunkRepository().FindAll(ctx,
		specification.ByDocumentID{DocumentID: id},
		specification.OrderByChunkIndex{},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.DocumentChunkResponse, len(chunks))
	for i, c := range chunks {
		res[i] = &dto.DocumentChunkResponse{
			Id:            c.Id,
			Content:       c.Content,
			ChunkIndex:    c.ChunkIndex,
			SentenceStart: c.SentenceStart,
			SentenceEnd:   c.SentenceEnd,
		}
	}
	return res, nil
}

func (s *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if doc == nil {
		return fiber.NewError(fiber.StatusNotFound, "document not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		return err
	}
	return uow.Commit()
}

func toShowDocumentResponse(d *entity.Document) *dto.ShowDocumentResponse {
	return &dto.ShowDocumentResponse{
		Id:         d.Id,
		Title:      d.Title,
		FileType:   d.FileType,
		Status:     d.Status,
		ChunkCount: d.ChunkCount,
		LastError:  d.LastError,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}
