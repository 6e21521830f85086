package service

import (
	"context"
	"testing"

	"rag-assistant-be/internal/dto"
	"rag-assistant-be/pkg/mode"

	"github.com/stretchr/testify/require"
)

func TestModeServiceRecommendPassesHints(t *testing.T) {
	svc := NewModeService()

	// Without the comparison hint the query stays on the default tier.
	plain, err := svc.Recommend(context.Background(), &dto.RecommendModeRequest{
		Query: "compare plan a and b",
	})
	require.NoError(t, err)
	require.Equal(t, mode.ModeBalanced, plain.Name)

	// The hint forces the accurate preset.
	hinted, err := svc.Recommend(context.Background(), &dto.RecommendModeRequest{
		Query:        "compare plan a and b",
		IsComparison: true,
	})
	require.NoError(t, err)
	require.Equal(t, mode.ModeAccurate, hinted.Name)
}

func TestModeServiceResolveAppliesOverrides(t *testing.T) {
	svc := NewModeService()

	resolved, err := svc.Resolve(context.Background(), &dto.ResolveModeRequest{
		Mode: mode.ModeFast,
		Overrides: map[string]interface{}{
			"retrieval_count": float64(9),
		},
	})
	require.NoError(t, err)
	require.Equal(t, mode.ModeFast, resolved.Name)
	require.Equal(t, 9, resolved.RetrievalCount)
}
