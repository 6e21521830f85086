package service

import (
	"context"

	"rag-assistant-be/internal/repository/unitofwork"
	"rag-assistant-be/pkg/embedding"
)

// vectorContextChecker answers the router's "is there anything to retrieve"
// question by probing the chunk index for at least one hit above the
// similarity floor.
type vectorContextChecker struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
	threshold         float64
}

func NewVectorContextChecker(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
	threshold float64,
) *vectorContextChecker {
	return &vectorContextChecker{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		threshold:         threshold,
	}
}

func (c *vectorContextChecker) HasRAGContext(ctx context.Context, query string) (bool, error) {
	res, err := c.embeddingProvider.Generate(ctx, query, embedding.TaskQuery)
	if err != nil {
		return false, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.DocumentChunkRepository().CountAboveThreshold(ctx, res.Values, c.threshold)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
