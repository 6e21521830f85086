package mode

import "strings"

// Performance mode names, ordered by cost/accuracy trade-off.
const (
	ModeFast     = "fast"
	ModeBalanced = "balanced"
	ModeAccurate = "accurate"
)

// Reranking methods, increasing in strength.
const (
	RerankNone         = "none"
	RerankAdaptive     = "adaptive"
	RerankCrossEncoder = "cross_encoder"
)

// Preset bundles the retrieval/generation tuning parameters of one
// performance mode.
type Preset struct {
	Name                string  `json:"name"`
	RetrievalCount      int     `json:"retrieval_count"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	UseReranking        bool    `json:"use_reranking"`
	RerankMethod        string  `json:"rerank_method"`
	UseCompression      bool    `json:"use_compression"`
	UseMultiQuery       bool    `json:"use_multi_query"`
	MaxQueries          int     `json:"max_queries"`
	FinalChunkCount     int     `json:"final_chunk_count"`
}

// Overrides carries caller-supplied tuning values. Nil fields keep the
// preset's value; set fields always win.
type Overrides struct {
	RetrievalCount      *int
	SimilarityThreshold *float64
	UseReranking        *bool
	RerankMethod        *string
	UseCompression      *bool
	UseMultiQuery       *bool
	MaxQueries          *int
	FinalChunkCount     *int
}

// Hints are routing signals the caller already knows about the query.
type Hints struct {
	RequiresAccuracy bool
	IsComparison     bool
	IsComplex        bool
}

// fastQueryLength is the cutoff under which a plain query is considered
// cheap enough for the fast preset.
const fastQueryLength = 50

// comparisonWords mark queries that need the accurate preset regardless of
// length: comparing things means retrieving and weighing more context.
var comparisonWords = []string{"compare", "difference"}

var presets = map[string]Preset{
	ModeFast: {
		Name:                ModeFast,
		RetrievalCount:      10,
		SimilarityThreshold: 0.35,
		UseReranking:        false,
		RerankMethod:        RerankNone,
		UseCompression:      false,
		UseMultiQuery:       false,
		MaxQueries:          1,
		FinalChunkCount:     10,
	},
	ModeBalanced: {
		Name:                ModeBalanced,
		RetrievalCount:      10,
		SimilarityThreshold: 0.30,
		UseReranking:        true,
		RerankMethod:        RerankAdaptive,
		UseCompression:      false,
		UseMultiQuery:       false,
		MaxQueries:          2,
		FinalChunkCount:     12,
	},
	ModeAccurate: {
		Name:                ModeAccurate,
		RetrievalCount:      15,
		SimilarityThreshold: 0.25,
		UseReranking:        true,
		RerankMethod:        RerankCrossEncoder,
		UseCompression:      true,
		UseMultiQuery:       true,
		MaxQueries:          3,
		FinalChunkCount:     20,
	},
}

// Resolve returns the preset registered under name. Unrecognized names fall
// back to balanced so a partial preset never reaches the retrieval stage.
func Resolve(name string) Preset {
	if p, ok := presets[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p
	}
	return presets[ModeBalanced]
}

// Merge resolves name and applies the caller's overrides on top.
func Merge(name string, o Overrides) Preset {
	p := Resolve(name)
	if o.RetrievalCount != nil {
		p.RetrievalCount = *o.RetrievalCount
	}
	if o.SimilarityThreshold != nil {
		p.SimilarityThreshold = *o.SimilarityThreshold
	}
	if o.UseReranking != nil {
		p.UseReranking = *o.UseReranking
	}
	if o.RerankMethod != nil {
		p.RerankMethod = *o.RerankMethod
	}
	if o.UseCompression != nil {
		p.UseCompression = *o.UseCompression
	}
	if o.UseMultiQuery != nil {
		p.UseMultiQuery = *o.UseMultiQuery
	}
	if o.MaxQueries != nil {
		p.MaxQueries = *o.MaxQueries
	}
	if o.FinalChunkCount != nil {
		p.FinalChunkCount = *o.FinalChunkCount
	}
	return p
}

// Recommend picks a mode name from query heuristics. Explicit accuracy or
// comparison hints always win; otherwise a short, simple query with no
// comparison wording runs fast and everything else runs balanced.
func Recommend(query string, hints Hints) string {
	if hints.RequiresAccuracy || hints.IsComparison {
		return ModeAccurate
	}

	if len(query) < fastQueryLength && !hints.IsComplex && !containsComparisonWord(query) {
		return ModeFast
	}
	return ModeBalanced
}

func containsComparisonWord(query string) bool {
	lower := strings.ToLower(query)
	for _, w := range comparisonWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
