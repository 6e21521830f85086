package service

import (
	"context"
	"fmt"
	"sync"

	"rag-assistant-be/internal/entity"
	"rag-assistant-be/internal/repository/contract"
	"rag-assistant-be/internal/repository/specification"
	"rag-assistant-be/internal/repository/unitofwork"
	"rag-assistant-be/pkg/embedding"
	"rag-assistant-be/pkg/llm"

	"github.com/google/uuid"
)

// In-memory repository fakes. They interpret the specification types the
// services actually use instead of translating them to SQL.

func byID(id uuid.UUID) specification.Specification {
	return specification.ByID{ID: id}
}

type fakeDocumentRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*entity.Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[uuid.UUID]*entity.Document)}
}

func (r *fakeDocumentRepo) Create(_ context.Context, d *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *d
	r.docs[d.Id] = &cp
	return nil
}

func (r *fakeDocumentRepo) Update(_ context.Context, d *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *d
	r.docs[d.Id] = &cp
	return nil
}

func (r *fakeDocumentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	return nil
}

func (r *fakeDocumentRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, spec := range specs {
		if byID, ok := spec.(specification.ByID); ok {
			if d, found := r.docs[byID.ID]; found {
				cp := *d
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeDocumentRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids map[uuid.UUID]bool
	for _, spec := range specs {
		if byIDs, ok := spec.(specification.ByIDs); ok {
			ids = make(map[uuid.UUID]bool)
			for _, id := range byIDs.IDs {
				ids[id] = true
			}
		}
	}
	var out []*entity.Document
	for _, d := range r.docs {
		if ids != nil && !ids[d.Id] {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeDocumentRepo) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.docs)), nil
}

func (r *fakeDocumentRepo) SetStatus(_ context.Context, id uuid.UUID, status string, lastError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, found := r.docs[id]
	if !found {
		return fmt.Errorf("document %s not found", id)
	}
	d.Status = status
	d.LastError = lastError
	return nil
}

func (r *fakeDocumentRepo) SetChunkCount(_ context.Context, id uuid.UUID, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, found := r.docs[id]
	if !found {
		return fmt.Errorf("document %s not found", id)
	}
	d.ChunkCount = count
	return nil
}

func (r *fakeDocumentRepo) statusOf(id uuid.UUID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, found := r.docs[id]; found {
		return d.Status
	}
	return ""
}

type fakeChunkRepo struct {
	mu     sync.Mutex
	chunks []*entity.DocumentChunk
	// Scored results returned by similarity searches.
	scored []*contract.ScoredDocumentChunk
}

func newFakeChunkRepo() *fakeChunkRepo {
	return &fakeChunkRepo{}
}

func (r *fakeChunkRepo) Create(_ context.Context, c *entity.DocumentChunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.chunks = append(r.chunks, &cp)
	return nil
}

func (r *fakeChunkRepo) CreateBulk(_ context.Context, chunks []*entity.DocumentChunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range chunks {
		cp := *c
		r.chunks = append(r.chunks, &cp)
	}
	return nil
}

func (r *fakeChunkRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.chunks[:0]
	for _, c := range r.chunks {
		if c.Id != id {
			out = append(out, c)
		}
	}
	r.chunks = out
	return nil
}

func (r *fakeChunkRepo) DeleteByDocumentId(_ context.Context, documentId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.chunks[:0]
	for _, c := range r.chunks {
		if c.DocumentId != documentId {
			out = append(out, c)
		}
	}
	r.chunks = out
	return nil
}

func (r *fakeChunkRepo) FindOne(_ context.Context, _ ...specification.Specification) (*entity.DocumentChunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.chunks) == 0 {
		return nil, nil
	}
	cp := *r.chunks[0]
	return &cp, nil
}

func (r *fakeChunkRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var docID *uuid.UUID
	for _, spec := range specs {
		if byDoc, ok := spec.(specification.ByDocumentID); ok {
			id := byDoc.DocumentID
			docID = &id
		}
	}
	var out []*entity.DocumentChunk
	for _, c := range r.chunks {
		if docID != nil && c.DocumentId != *docID {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeChunkRepo) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.chunks)), nil
}

func (r *fakeChunkRepo) SearchSimilar(_ context.Context, _ []float32, _ int) ([]*entity.DocumentChunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entity.DocumentChunk(nil), r.chunks...), nil
}

func (r *fakeChunkRepo) SearchSimilarWithScore(_ context.Context, _ []float32, limit int, _ float64) ([]*contract.ScoredDocumentChunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.scored
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeChunkRepo) CountAboveThreshold(_ context.Context, _ []float32, _ float64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.scored)), nil
}

func (r *fakeChunkRepo) forDocument(id uuid.UUID) []*entity.DocumentChunk {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.DocumentChunk
	for _, c := range r.chunks {
		if c.DocumentId == id {
			out = append(out, c)
		}
	}
	return out
}

// fakeUnitOfWork hands out the shared fake repositories. Begin/Commit are
// bookkeeping only; the fakes mutate state immediately.
type fakeUnitOfWork struct {
	docRepo   *fakeDocumentRepo
	chunkRepo *fakeChunkRepo
}

func (u *fakeUnitOfWork) Begin(context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error               { return nil }
func (u *fakeUnitOfWork) Rollback() error             { return nil }

func (u *fakeUnitOfWork) DocumentRepository() contract.DocumentRepository {
	return u.docRepo
}

func (u *fakeUnitOfWork) DocumentChunkRepository() contract.DocumentChunkRepository {
	return u.chunkRepo
}

type fakeUowFactory struct {
	uow *fakeUnitOfWork
}

func newFakeUowFactory() *fakeUowFactory {
	return &fakeUowFactory{
		uow: &fakeUnitOfWork{
			docRepo:   newFakeDocumentRepo(),
			chunkRepo: newFakeChunkRepo(),
		},
	}
}

func (f *fakeUowFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return f.uow
}

// fakeEmbedder returns a fixed vector; failAfter > 0 makes the Nth call fail.
type fakeEmbedder struct {
	mu        sync.Mutex
	calls     int
	failAfter int // fail on call number failAfter (1-based), 0 disables
}

func (f *fakeEmbedder) Generate(_ context.Context, _ string, _ string) (*embedding.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failAfter > 0 && f.calls >= f.failAfter {
		return nil, fmt.Errorf("embedding backend unavailable")
	}
	return &embedding.Response{Values: make([]float32, embedding.Dimension)}, nil
}

// fakeLLM echoes a canned answer and records the messages it saw.
type fakeLLM struct {
	mu       sync.Mutex
	answer   string
	requests [][]llm.Message
}

func (f *fakeLLM) Chat(_ context.Context, messages []llm.Message, _ ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, messages)
	return f.answer, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}
