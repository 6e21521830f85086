package main

import (
	"context"
	"log"
	"strings"

	"rag-assistant-be/pkg/chunker"
	"rag-assistant-be/pkg/decision"
	"rag-assistant-be/pkg/mode"

	"github.com/fatih/color"
)

// simulate runs the routing policy and mode resolver offline against a set
// of sample queries. No database or model backend is required; the context
// check is faked with a keyword list standing in for the vector index.
func main() {
	checker := keywordChecker{indexed: []string{"refund", "pricing", "shipping"}}

	engine := decision.NewEngine(log.Default())
	if err := engine.Register(decision.NewMainTree(checker)); err != nil {
		log.Fatalf("register tree: %v", err)
	}

	queries := []string{
		"hey there",
		"what is the refund policy?",
		"how do i configure warranty claims",
		"tell me a joke",
		"compare the pricing plans in detail",
	}

	header := color.New(color.FgCyan, color.Bold)
	good := color.New(color.FgGreen)
	bad := color.New(color.FgRed)
	dim := color.New(color.Faint)

	for _, q := range queries {
		header.Printf("\n> %s\n", q)

		res, err := engine.Execute(context.Background(), decision.MainTreeName, decision.NewContext(q))
		if err != nil {
			bad.Printf("  error: %v\n", err)
			continue
		}

		intent, _ := res.Result["intent"].(string)
		if res.Impossible {
			bad.Printf("  intent: %s (impossible)\n", intent)
		} else {
			good.Printf("  intent: %s\n", intent)
		}
		dim.Printf("  path:   %s\n", strings.Join(res.Path, " -> "))

		preset := mode.Resolve(mode.Recommend(q, mode.Hints{}))
		dim.Printf("  mode:   %s (retrieve %d, threshold %.2f)\n",
			preset.Name, preset.RetrievalCount, preset.SimilarityThreshold)
	}

	demoChunker(header, dim)
}

func demoChunker(header, dim *color.Color) {
	header.Println("\n--- chunking a sample document ---")

	text := strings.Repeat("The refund window is thirty days from delivery. Contact support with your order number. ", 8)
	splitter := chunker.NewSplitter(200, 10, 40)

	for _, c := range splitter.Split(text, "refund-policy") {
		dim.Printf("  chunk %d: sentences %d-%d, %d chars\n",
			c.Index, c.Metadata.SentenceStart, c.Metadata.SentenceEnd, len(c.Content))
	}
}

// keywordChecker fakes the vector index probe for offline runs.
type keywordChecker struct {
	indexed []string
}

func (k keywordChecker) HasRAGContext(_ context.Context, query string) (bool, error) {
	q := strings.ToLower(query)
	for _, kw := range k.indexed {
		if strings.Contains(q, kw) {
			return true, nil
		}
	}
	return false, nil
}
