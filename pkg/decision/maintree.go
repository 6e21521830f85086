package decision

import (
	"context"
	"strings"
)

// MainTreeName is the default routing tree evaluated for every chat query.
const MainTreeName = "main"

// Intents carried in the verdict payload under "intent".
const (
	IntentGreeting         = "greeting"
	IntentProductQuery     = "product_query"
	IntentProductNoContext = "product_query_no_context"
	IntentGeneral          = "general_query"
)

// greetingMaxLength keeps longer messages that merely contain a greeting
// word from being classified as greetings.
const greetingMaxLength = 25

var greetingTerms = []string{
	"hi", "hello", "hey", "yo", "good morning", "good afternoon", "good evening",
}

// productIntentKeywords is the fixed vocabulary marking a query as being
// about the indexed product knowledge.
var productIntentKeywords = []string{
	"refund", "policy", "pricing", "price", "plan", "subscription",
	"feature", "billing", "account", "support", "warranty", "shipping",
	"product", "documentation", "how do i", "how to",
}

// ContextChecker reports whether the index holds any chunk relevant to the
// query above the configured similarity threshold. It is an external
// capability: the real implementation queries the vector index.
type ContextChecker interface {
	HasRAGContext(ctx context.Context, query string) (bool, error)
}

// NewMainTree builds the default routing policy:
//
//  1. a short greeting-like query is greeted,
//  2. a product-intent query with retrievable context routes to retrieval,
//  3. a product-intent query without context returns the impossible signal
//     plus a suggestion to add knowledge,
//  4. everything else falls through to general-purpose generation.
func NewMainTree(checker ContextChecker) *Tree {
	return &Tree{
		Name: MainTreeName,
		Root: NewRouter("root",
			NewCondition("is_greeting", greetingCondition{},
				NewAction("greet", greetAction{}),
			),
			NewCondition("has_product_intent", productIntentCondition{},
				NewCondition("has_rag_context", ragContextCondition{checker: checker},
					NewAction("use_retrieval", retrievalAction{}),
				),
				&Node{
					ID:         "no_context",
					Kind:       KindAction,
					Action:     noContextAction{},
					Impossible: true,
				},
			),
			NewAction("general", generalAction{}),
		),
	}
}

type greetingCondition struct{}

func (greetingCondition) Evaluate(_ context.Context, dc *Context) (any, error) {
	query := strings.ToLower(strings.TrimSpace(dc.Query))
	if len(query) >= greetingMaxLength {
		return false, nil
	}
	for _, term := range greetingTerms {
		if strings.Contains(query, term) {
			return true, nil
		}
	}
	return false, nil
}

type productIntentCondition struct{}

func (productIntentCondition) Evaluate(_ context.Context, dc *Context) (any, error) {
	query := strings.ToLower(dc.Query)
	for _, kw := range productIntentKeywords {
		if strings.Contains(query, kw) {
			return true, nil
		}
	}
	// A named subject hint counts as product intent even without a keyword.
	if dc.Subject != "" && strings.Contains(query, strings.ToLower(dc.Subject)) {
		return true, nil
	}
	return false, nil
}

type ragContextCondition struct {
	checker ContextChecker
}

func (c ragContextCondition) Evaluate(ctx context.Context, dc *Context) (any, error) {
	return c.checker.HasRAGContext(ctx, dc.Query)
}

type greetAction struct{}

func (greetAction) Act(_ context.Context, _ *Context) (*ActionResult, error) {
	return &ActionResult{
		Payload: map[string]any{
			"intent": IntentGreeting,
			"useRAG": false,
		},
		Confidence: 0.95,
		Reasoning:  "short greeting-like query",
	}, nil
}

type retrievalAction struct{}

func (retrievalAction) Act(_ context.Context, _ *Context) (*ActionResult, error) {
	return &ActionResult{
		Payload: map[string]any{
			"intent": IntentProductQuery,
			"useRAG": true,
		},
		Confidence: 0.9,
		Reasoning:  "product intent with retrievable context",
	}, nil
}

type noContextAction struct{}

func (noContextAction) Act(_ context.Context, _ *Context) (*ActionResult, error) {
	return &ActionResult{
		Payload: map[string]any{
			"intent":     IntentProductNoContext,
			"useRAG":     false,
			"suggestion": "No relevant knowledge was found for this question. Add documents covering this topic and try again.",
		},
		Confidence: 0.85,
		Reasoning:  "product intent but the index has no relevant context",
		Impossible: true,
	}, nil
}

type generalAction struct{}

func (generalAction) Act(_ context.Context, _ *Context) (*ActionResult, error) {
	return &ActionResult{
		Payload: map[string]any{
			"intent": IntentGeneral,
			"useRAG": false,
		},
		Confidence: 0.7,
		Reasoning:  "no routing signal matched, answering from the base model",
	}, nil
}
