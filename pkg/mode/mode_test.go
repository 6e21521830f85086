package mode

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
	}{
		{name: "fast", input: "fast", wantName: ModeFast},
		{name: "balanced", input: "balanced", wantName: ModeBalanced},
		{name: "accurate", input: "accurate", wantName: ModeAccurate},
		{name: "unknown defaults to balanced", input: "turbo", wantName: ModeBalanced},
		{name: "empty defaults to balanced", input: "", wantName: ModeBalanced},
		{name: "case and spaces tolerated", input: "  Fast ", wantName: ModeFast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.input)
			if got.Name != tt.wantName {
				t.Errorf("Resolve(%q).Name = %q, want %q", tt.input, got.Name, tt.wantName)
			}
			if got.RetrievalCount == 0 || got.FinalChunkCount == 0 || got.MaxQueries == 0 {
				t.Errorf("Resolve(%q) returned a partial preset: %+v", tt.input, got)
			}
		})
	}
}

func TestResolveReturnsCopy(t *testing.T) {
	a := Resolve(ModeFast)
	a.RetrievalCount = 999
	if b := Resolve(ModeFast); b.RetrievalCount == 999 {
		t.Error("mutating a resolved preset leaked into the canonical preset")
	}
}

func TestPresetOrdering(t *testing.T) {
	fast := Resolve(ModeFast)
	balanced := Resolve(ModeBalanced)
	accurate := Resolve(ModeAccurate)

	if !(accurate.FinalChunkCount >= balanced.FinalChunkCount && balanced.FinalChunkCount >= fast.FinalChunkCount) {
		t.Errorf("final chunk counts not ordered: %d/%d/%d",
			fast.FinalChunkCount, balanced.FinalChunkCount, accurate.FinalChunkCount)
	}
	if !(accurate.RetrievalCount >= balanced.RetrievalCount && balanced.RetrievalCount >= fast.RetrievalCount) {
		t.Errorf("retrieval counts not ordered: %d/%d/%d",
			fast.RetrievalCount, balanced.RetrievalCount, accurate.RetrievalCount)
	}
	if !(accurate.MaxQueries >= balanced.MaxQueries && balanced.MaxQueries >= fast.MaxQueries) {
		t.Errorf("max queries not ordered: %d/%d/%d",
			fast.MaxQueries, balanced.MaxQueries, accurate.MaxQueries)
	}

	// Reranking must be strictly increasing in strength fast -> accurate.
	strength := map[string]int{RerankNone: 0, RerankAdaptive: 1, RerankCrossEncoder: 2}
	if !(strength[fast.RerankMethod] < strength[balanced.RerankMethod] &&
		strength[balanced.RerankMethod] < strength[accurate.RerankMethod]) {
		t.Errorf("rerank strength not strictly increasing: %s/%s/%s",
			fast.RerankMethod, balanced.RerankMethod, accurate.RerankMethod)
	}
	if fast.UseReranking || !balanced.UseReranking || !accurate.UseReranking {
		t.Error("reranking flags inconsistent with methods")
	}
	if fast.UseCompression || balanced.UseCompression || !accurate.UseCompression {
		t.Error("compression must be enabled only for accurate")
	}
}

func TestMerge(t *testing.T) {
	count := 7
	threshold := 0.5
	rerank := false

	got := Merge(ModeAccurate, Overrides{
		RetrievalCount:      &count,
		SimilarityThreshold: &threshold,
		UseReranking:        &rerank,
	})

	if got.RetrievalCount != 7 {
		t.Errorf("RetrievalCount = %d, want override 7", got.RetrievalCount)
	}
	if got.SimilarityThreshold != 0.5 {
		t.Errorf("SimilarityThreshold = %v, want override 0.5", got.SimilarityThreshold)
	}
	if got.UseReranking {
		t.Error("UseReranking = true, want override false")
	}
	// Untouched fields keep the preset values.
	if got.FinalChunkCount != Resolve(ModeAccurate).FinalChunkCount {
		t.Errorf("FinalChunkCount = %d, want preset value", got.FinalChunkCount)
	}
	if !got.UseCompression {
		t.Error("UseCompression lost its preset value")
	}
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		name  string
		query string
		hints Hints
		want  string
	}{
		{name: "short simple query", query: "what is a chunk", want: ModeFast},
		{name: "short query with comparison hint", query: "what is a chunk", hints: Hints{IsComparison: true}, want: ModeAccurate},
		{name: "accuracy hint forces accurate", query: "hi", hints: Hints{RequiresAccuracy: true}, want: ModeAccurate},
		{name: "comparison word disqualifies fast", query: "compare plan a and b", want: ModeBalanced},
		{name: "difference word disqualifies fast", query: "difference between modes", want: ModeBalanced},
		{name: "comparison word with hint", query: "compare plan a and b", hints: Hints{IsComparison: true}, want: ModeAccurate},
		{name: "short but complex", query: "short question", hints: Hints{IsComplex: true}, want: ModeBalanced},
		{name: "long query", query: "please walk me through the entire refund workflow step by step including edge cases", want: ModeBalanced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Recommend(tt.query, tt.hints); got != tt.want {
				t.Errorf("Recommend(%q, %+v) = %q, want %q", tt.query, tt.hints, got, tt.want)
			}
		})
	}
}
