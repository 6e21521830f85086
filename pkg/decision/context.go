package decision

import "time"

// Context is the per-query mutable state a traversal works on. Each query
// gets its own Context; concurrent evaluations never share one.
type Context struct {
	Query    string         `json:"query"`
	Subject  string         `json:"subject,omitempty"` // optional subject/product hint
	Steps    []Step         `json:"steps"`             // append-only log of prior decisions
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewContext builds a fresh per-query context.
func NewContext(query string) *Context {
	return &Context{
		Query:    query,
		Metadata: make(map[string]any),
	}
}

// WithSubject attaches a subject/product hint.
func (c *Context) WithSubject(subject string) *Context {
	c.Subject = subject
	return c
}

// record appends a step to the context's append-only log.
func (c *Context) record(s Step) {
	c.Steps = append(c.Steps, s)
}

// Step is an immutable record of one decision taken during traversal.
type Step struct {
	NodeID     string    `json:"node_id"`
	Decision   any       `json:"decision"`
	Reasoning  string    `json:"reasoning"`
	Confidence float64   `json:"confidence"` // in [0,1]
	Timestamp  time.Time `json:"timestamp"`
	Impossible bool      `json:"impossible"`
}

// Result is the outcome of one Execute call, owned by the caller and
// JSON-serializable as {result, path, decisions, impossibleFlag}.
type Result struct {
	Result     map[string]any `json:"result"` // action payload, nil when no branch matched
	Path       []string       `json:"path"`   // node ids in traversal order, never empty
	Decisions  []Step         `json:"decisions"`
	Impossible bool           `json:"impossibleFlag"`
}
