package decision

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// ErrTreeNotFound is returned when Execute is called with an unregistered
// tree name. This is a caller programming error, never retried.
var ErrTreeNotFound = errors.New("decision tree not found")

// Condition confidence heuristic: boolean predicates score high/low, anything
// else is a shrug.
const (
	confidenceTrue    = 0.9
	confidenceFalse   = 0.1
	confidenceNeutral = 0.5
)

// Engine evaluates registered decision trees over per-query contexts. Trees
// are registered once at construction time and read-only afterwards, so one
// Engine serves concurrent queries safely.
type Engine struct {
	trees  map[string]*Tree
	logger *log.Logger
}

func NewEngine(logger *log.Logger) *Engine {
	return &Engine{
		trees:  make(map[string]*Tree),
		logger: logger,
	}
}

// Register validates and stores a tree under its name.
func (e *Engine) Register(t *Tree) error {
	if err := t.Validate(); err != nil {
		return err
	}
	e.trees[t.Name] = t
	return nil
}

// Execute traverses the named tree over dc and returns the routing verdict.
// Traversal is depth-first along a single path: declaration order of children
// is the priority order and the first terminal result wins. A tree with no
// matching branch yields a Result with a nil payload, not an error.
func (e *Engine) Execute(ctx context.Context, treeName string, dc *Context) (*Result, error) {
	tree, ok := e.trees[treeName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTreeNotFound, treeName)
	}

	res := &Result{}
	found, err := e.visit(ctx, tree.Root, dc, res)
	if err != nil {
		return nil, err
	}
	if !found {
		e.logger.Printf("[DECISION] Tree %q matched no branch for query %q", treeName, truncate(dc.Query, 60))
	}
	return res, nil
}

// visit descends into n, pushing its id onto the result path. The comma-ok
// return makes "no terminal result on this branch" explicit.
func (e *Engine) visit(ctx context.Context, n *Node, dc *Context, res *Result) (bool, error) {
	res.Path = append(res.Path, n.ID)

	switch n.Kind {
	case KindCondition:
		value, err := n.Condition.Evaluate(ctx, dc)
		if err != nil {
			return false, fmt.Errorf("condition %q: %w", n.ID, err)
		}

		pass, confidence := judge(value)
		e.recordStep(dc, res, Step{
			NodeID:     n.ID,
			Decision:   value,
			Reasoning:  fmt.Sprintf("condition %q evaluated to %v", n.ID, value),
			Confidence: confidence,
			Timestamp:  time.Now(),
			Impossible: n.Impossible,
		})

		if !pass {
			return false, nil
		}
		return e.visitChildren(ctx, n, dc, res)

	case KindAction:
		ar, err := n.Action.Act(ctx, dc)
		if err != nil {
			return false, fmt.Errorf("action %q: %w", n.ID, err)
		}
		if ar == nil {
			ar = &ActionResult{}
		}

		confidence := ar.Confidence
		if confidence == 0 {
			confidence = confidenceNeutral
		}
		e.recordStep(dc, res, Step{
			NodeID:     n.ID,
			Decision:   ar.Payload,
			Reasoning:  ar.Reasoning,
			Confidence: confidence,
			Timestamp:  time.Now(),
			Impossible: ar.Impossible,
		})

		// Only action steps flip the overall flag; condition steps merely
		// carry the tag in their log entry.
		if ar.Impossible {
			res.Impossible = true
		}
		res.Result = ar.Payload
		return true, nil

	case KindRouter:
		return e.visitChildren(ctx, n, dc, res)

	default:
		return false, fmt.Errorf("node %q has unknown kind %q", n.ID, n.Kind)
	}
}

// visitChildren tries each child in declaration order, short-circuiting on
// the first terminal result.
func (e *Engine) visitChildren(ctx context.Context, n *Node, dc *Context, res *Result) (bool, error) {
	for _, child := range n.Children {
		found, err := e.visit(ctx, child, dc, res)
		if err != nil {
			return false, err
		}
		if found {
			return true, nil
		}
	}
	return false, nil
}

// recordStep appends to both the per-query context log and the result.
func (e *Engine) recordStep(dc *Context, res *Result, s Step) {
	dc.record(s)
	res.Decisions = append(res.Decisions, s)
}

// judge maps a predicate value to (pass, confidence). Booleans gate directly;
// any other non-nil value passes with neutral confidence.
func judge(value any) (bool, float64) {
	switch v := value.(type) {
	case bool:
		if v {
			return true, confidenceTrue
		}
		return false, confidenceFalse
	case nil:
		return false, confidenceNeutral
	default:
		return true, confidenceNeutral
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
