package decision

import (
	"context"
	"errors"
	"io"
	"log"
	"reflect"
	"testing"
)

type stubChecker struct {
	has bool
	err error
}

func (s stubChecker) HasRAGContext(context.Context, string) (bool, error) {
	return s.has, s.err
}

func newTestEngine(t *testing.T, checker ContextChecker) *Engine {
	t.Helper()
	e := NewEngine(log.New(io.Discard, "", 0))
	if err := e.Register(NewMainTree(checker)); err != nil {
		t.Fatalf("register main tree: %v", err)
	}
	return e
}

func TestExecuteTreeNotFound(t *testing.T) {
	e := NewEngine(log.New(io.Discard, "", 0))
	_, err := e.Execute(context.Background(), "missing", NewContext("hello"))
	if !errors.Is(err, ErrTreeNotFound) {
		t.Errorf("err = %v, want ErrTreeNotFound", err)
	}
}

func TestExecuteGreeting(t *testing.T) {
	e := newTestEngine(t, stubChecker{has: true})

	res, err := e.Execute(context.Background(), MainTreeName, NewContext("hey there"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Result == nil {
		t.Fatal("expected a result payload")
	}
	if got := res.Result["intent"]; got != IntentGreeting {
		t.Errorf("intent = %v, want %q", got, IntentGreeting)
	}
	if got := res.Result["useRAG"]; got != false {
		t.Errorf("useRAG = %v, want false", got)
	}
	if res.Impossible {
		t.Error("greeting must not set the impossible flag")
	}

	// The terminal greet step carries the action's own confidence.
	last := res.Decisions[len(res.Decisions)-1]
	if last.NodeID != "greet" || last.Confidence != 0.95 {
		t.Errorf("terminal step = %+v, want greet with confidence 0.95", last)
	}
}

func TestExecuteLongGreetingIsNotGreeting(t *testing.T) {
	e := newTestEngine(t, stubChecker{has: true})

	res, err := e.Execute(context.Background(), MainTreeName,
		NewContext("hey, can you explain the whole onboarding flow to me"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := res.Result["intent"]; got == IntentGreeting {
		t.Errorf("long message containing a greeting word was classified as greeting")
	}
}

func TestExecuteProductQueryWithContext(t *testing.T) {
	e := newTestEngine(t, stubChecker{has: true})

	res, err := e.Execute(context.Background(), MainTreeName,
		NewContext("what is the refund policy"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := res.Result["intent"]; got != IntentProductQuery {
		t.Errorf("intent = %v, want %q", got, IntentProductQuery)
	}
	if got := res.Result["useRAG"]; got != true {
		t.Errorf("useRAG = %v, want true", got)
	}
	if res.Impossible {
		t.Error("impossible flag set despite retrievable context")
	}
}

func TestExecuteProductQueryWithoutContext(t *testing.T) {
	e := newTestEngine(t, stubChecker{has: false})

	res, err := e.Execute(context.Background(), MainTreeName,
		NewContext("what is the refund policy"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Impossible {
		t.Error("impossible flag not set")
	}
	if got := res.Result["intent"]; got != IntentProductNoContext {
		t.Errorf("intent = %v, want %q", got, IntentProductNoContext)
	}
	if _, ok := res.Result["suggestion"].(string); !ok {
		t.Error("verdict missing the user-facing suggestion")
	}
}

func TestExecuteGeneralFallthrough(t *testing.T) {
	e := newTestEngine(t, stubChecker{has: true})

	res, err := e.Execute(context.Background(), MainTreeName,
		NewContext("write me a haiku about winter mornings"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := res.Result["intent"]; got != IntentGeneral {
		t.Errorf("intent = %v, want %q", got, IntentGeneral)
	}
}

func TestExecuteDeterministic(t *testing.T) {
	e := newTestEngine(t, stubChecker{has: true})

	run := func() *Result {
		res, err := e.Execute(context.Background(), MainTreeName,
			NewContext("how do i change my plan"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return res
	}

	a, b := run(), run()
	if !reflect.DeepEqual(a.Path, b.Path) {
		t.Errorf("paths differ between identical runs: %v vs %v", a.Path, b.Path)
	}
	if !reflect.DeepEqual(a.Result, b.Result) {
		t.Errorf("results differ between identical runs: %v vs %v", a.Result, b.Result)
	}
}

func TestExecutePathNeverEmpty(t *testing.T) {
	// A tree whose every branch rejects still reports the visited path.
	never := ConditionFunc(func(context.Context, *Context) (any, error) {
		return false, nil
	})
	tree := &Tree{
		Name: "dead-end",
		Root: NewRouter("root",
			NewCondition("a", never, NewAction("a-act", greetAction{})),
			NewCondition("b", never, NewAction("b-act", greetAction{})),
		),
	}

	e := NewEngine(log.New(io.Discard, "", 0))
	if err := e.Register(tree); err != nil {
		t.Fatalf("register: %v", err)
	}

	res, err := e.Execute(context.Background(), "dead-end", NewContext("anything"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Result != nil {
		t.Errorf("result = %v, want none", res.Result)
	}
	if !reflect.DeepEqual(res.Path, []string{"root", "a", "b"}) {
		t.Errorf("path = %v, want [root a b]", res.Path)
	}
	if len(res.Decisions) != 2 {
		t.Errorf("got %d decision steps, want 2", len(res.Decisions))
	}
}

func TestExecuteDeclarationOrderWins(t *testing.T) {
	always := ConditionFunc(func(context.Context, *Context) (any, error) {
		return true, nil
	})
	action := func(intent string) Action {
		return ActionFunc(func(context.Context, *Context) (*ActionResult, error) {
			return &ActionResult{Payload: map[string]any{"intent": intent}}, nil
		})
	}
	tree := &Tree{
		Name: "ordered",
		Root: NewRouter("root",
			NewCondition("first", always, NewAction("first-act", action("first"))),
			NewCondition("second", always, NewAction("second-act", action("second"))),
		),
	}

	e := NewEngine(log.New(io.Discard, "", 0))
	if err := e.Register(tree); err != nil {
		t.Fatalf("register: %v", err)
	}

	res, err := e.Execute(context.Background(), "ordered", NewContext("q"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Result["intent"] != "first" {
		t.Errorf("intent = %v, first declared branch must win", res.Result["intent"])
	}
	// Traversal short-circuits: the second branch is never visited.
	for _, id := range res.Path {
		if id == "second" {
			t.Error("second branch visited after the first produced a result")
		}
	}
}

func TestExecuteConditionErrorPropagates(t *testing.T) {
	boom := ConditionFunc(func(context.Context, *Context) (any, error) {
		return nil, errors.New("index unavailable")
	})
	tree := &Tree{
		Name: "failing",
		Root: NewRouter("root",
			NewCondition("check", boom, NewAction("act", greetAction{})),
		),
	}

	e := NewEngine(log.New(io.Discard, "", 0))
	if err := e.Register(tree); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := e.Execute(context.Background(), "failing", NewContext("q")); err == nil {
		t.Error("expected the predicate error to surface")
	}
}

func TestRegisterRejectsInvalidTrees(t *testing.T) {
	tests := []struct {
		name string
		tree *Tree
	}{
		{name: "nil root", tree: &Tree{Name: "t"}},
		{name: "empty router", tree: &Tree{Name: "t", Root: NewRouter("root")}},
		{name: "condition without predicate", tree: &Tree{Name: "t", Root: &Node{ID: "c", Kind: KindCondition}}},
		{name: "action without action", tree: &Tree{Name: "t", Root: &Node{ID: "a", Kind: KindAction}}},
		{
			name: "duplicate ids",
			tree: &Tree{Name: "t", Root: NewRouter("root",
				NewAction("dup", greetAction{}),
				NewAction("dup", greetAction{}),
			)},
		},
	}

	e := NewEngine(log.New(io.Discard, "", 0))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := e.Register(tt.tree); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
