package decision

import (
	"context"
	"fmt"
)

// Kind tags the three node variants of a decision tree.
type Kind string

const (
	// KindRouter dispatches over its children and carries no logic of its own.
	KindRouter Kind = "router"
	// KindCondition gates a subtree behind a predicate.
	KindCondition Kind = "condition"
	// KindAction is a terminal that produces the routing verdict.
	KindAction Kind = "action"
)

// Condition is a named predicate capability. Evaluate may block on external
// checks (e.g. "does retrievable context exist"). A bool result gates the
// subtree directly; a non-bool result counts as a pass when non-nil.
type Condition interface {
	Evaluate(ctx context.Context, dc *Context) (any, error)
}

// Action is a terminal capability producing the routing verdict.
type Action interface {
	Act(ctx context.Context, dc *Context) (*ActionResult, error)
}

// ActionResult is the payload an action reports back.
type ActionResult struct {
	Payload    map[string]any `json:"payload"`
	Confidence float64        `json:"confidence"` // 0 means "not reported", defaulted by traversal
	Reasoning  string         `json:"reasoning"`
	Impossible bool           `json:"impossible"`
}

// Node is one vertex of a decision tree. Nodes are tree-exclusive: a node
// belongs to exactly one tree and children never point back up.
type Node struct {
	ID        string
	Kind      Kind
	Children  []*Node
	Condition Condition // set for KindCondition
	Action    Action    // set for KindAction

	// Impossible tags every step recorded at this condition node, marking
	// the branch as "no retrievable knowledge" territory.
	Impossible bool
}

// Tree is a read-only decision hierarchy, safe for concurrent traversal by
// many queries once registered.
type Tree struct {
	Name string
	Root *Node
}

// NewRouter builds a dispatch node.
func NewRouter(id string, children ...*Node) *Node {
	return &Node{ID: id, Kind: KindRouter, Children: children}
}

// NewCondition builds a predicate node guarding children.
func NewCondition(id string, cond Condition, children ...*Node) *Node {
	return &Node{ID: id, Kind: KindCondition, Condition: cond, Children: children}
}

// NewAction builds a terminal node.
func NewAction(id string, act Action) *Node {
	return &Node{ID: id, Kind: KindAction, Action: act}
}

// Validate checks the structural invariants: a root exists, ids are unique
// within the tree, and every node carries the capability its kind requires.
func (t *Tree) Validate() error {
	if t.Root == nil {
		return fmt.Errorf("tree %q has no root", t.Name)
	}
	seen := make(map[string]bool)
	return validateNode(t.Name, t.Root, seen)
}

func validateNode(tree string, n *Node, seen map[string]bool) error {
	if n.ID == "" {
		return fmt.Errorf("tree %q contains a node without id", tree)
	}
	if seen[n.ID] {
		return fmt.Errorf("tree %q has duplicate node id %q", tree, n.ID)
	}
	seen[n.ID] = true

	switch n.Kind {
	case KindRouter:
		if len(n.Children) == 0 {
			return fmt.Errorf("router node %q has no children", n.ID)
		}
	case KindCondition:
		if n.Condition == nil {
			return fmt.Errorf("condition node %q has no predicate", n.ID)
		}
	case KindAction:
		if n.Action == nil {
			return fmt.Errorf("action node %q has no action", n.ID)
		}
		if len(n.Children) > 0 {
			return fmt.Errorf("action node %q must be terminal", n.ID)
		}
	default:
		return fmt.Errorf("node %q has unknown kind %q", n.ID, n.Kind)
	}

	for _, c := range n.Children {
		if err := validateNode(tree, c, seen); err != nil {
			return err
		}
	}
	return nil
}

// ConditionFunc adapts a plain function to the Condition capability.
type ConditionFunc func(ctx context.Context, dc *Context) (any, error)

func (f ConditionFunc) Evaluate(ctx context.Context, dc *Context) (any, error) {
	return f(ctx, dc)
}

// ActionFunc adapts a plain function to the Action capability.
type ActionFunc func(ctx context.Context, dc *Context) (*ActionResult, error)

func (f ActionFunc) Act(ctx context.Context, dc *Context) (*ActionResult, error) {
	return f(ctx, dc)
}
