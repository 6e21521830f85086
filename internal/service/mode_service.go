package service

import (
	"context"

	"rag-assistant-be/internal/dto"
	"rag-assistant-be/pkg/mode"
)

type IModeService interface {
	Resolve(ctx context.Context, req *dto.ResolveModeRequest) (*mode.Preset, error)
	Recommend(ctx context.Context, req *dto.RecommendModeRequest) (*mode.Preset, error)
	List(ctx context.Context) []mode.Preset
}

type modeService struct{}

func NewModeService() IModeService {
	return &modeService{}
}

func (s *modeService) Resolve(_ context.Context, req *dto.ResolveModeRequest) (*mode.Preset, error) {
	p := mode.Merge(req.Mode, overridesFromMap(req.Overrides))
	return &p, nil
}

func (s *modeService) Recommend(_ context.Context, req *dto.RecommendModeRequest) (*mode.Preset, error) {
	name := mode.Recommend(req.Query, mode.Hints{
		RequiresAccuracy: req.RequiresAccuracy,
		IsComparison:     req.IsComparison,
		IsComplex:        req.IsComplex,
	})
	p := mode.Resolve(name)
	return &p, nil
}

func (s *modeService) List(_ context.Context) []mode.Preset {
	return []mode.Preset{
		mode.Resolve(mode.ModeFast),
		mode.Resolve(mode.ModeBalanced),
		mode.Resolve(mode.ModeAccurate),
	}
}

// overridesFromMap converts the loose JSON override object into typed
// overrides; unknown keys are ignored.
func overridesFromMap(m map[string]interface{}) mode.Overrides {
	var o mode.Overrides
	if m == nil {
		return o
	}
	if v, ok := m["retrieval_count"].(float64); ok {
		n := int(v)
		o.RetrievalCount = &n
	}
	if v, ok := m["similarity_threshold"].(float64); ok {
		f := v
		o.SimilarityThreshold = &f
	}
	if v, ok := m["use_reranking"].(bool); ok {
		b := v
		o.UseReranking = &b
	}
	if v, ok := m["rerank_method"].(string); ok {
		s := v
		o.RerankMethod = &s
	}
	if v, ok := m["use_compression"].(bool); ok {
		b := v
		o.UseCompression = &b
	}
	if v, ok := m["use_multi_query"].(bool); ok {
		b := v
		o.UseMultiQuery = &b
	}
	if v, ok := m["max_queries"].(float64); ok {
		n := int(v)
		o.MaxQueries = &n
	}
	if v, ok := m["final_chunk_count"].(float64); ok {
		n := int(v)
		o.FinalChunkCount = &n
	}
	return o
}
