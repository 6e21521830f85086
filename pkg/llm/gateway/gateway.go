package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"rag-assistant-be/pkg/llm"
)

// ErrExhausted wraps the failure of every backend in a fallback chain.
var ErrExhausted = errors.New("all configured backends failed")

// RetryConfig configures the retry behavior for the primary backend of a
// fallback pairing.
type RetryConfig struct {
	MaxAttempts  int           // attempts against the primary before falling back
	InitialDelay time.Duration // backoff before the second attempt, doubling afterwards
}

// DefaultRetryConfig returns sensible defaults for LLM API calls.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
	}
}

// step is one entry of a fallback chain: a named backend and its attempt
// budget. Chains are explicit ordered lists, iterated until one step
// succeeds or the list is exhausted.
type step struct {
	name     string
	attempts int
}

// Gateway exposes a uniform chat-completion contract over a set of
// interchangeable backends. One configured active backend name selects the
// backend per call; an unrecognized name falls back to the configured
// default. Retry and fallback are a policy of specific backend pairings, not
// a blanket behavior.
type Gateway struct {
	providers map[string]llm.Provider
	fallbacks map[string]string // primary backend name -> secondary backend name
	active    string
	fallback  string // default backend for unrecognized active names
	retry     RetryConfig
	logger    *log.Logger

	// sleep is swapped in tests to observe backoff without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

func New(active, defaultBackend string, retry RetryConfig, logger *log.Logger) *Gateway {
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 1
	}
	return &Gateway{
		providers: make(map[string]llm.Provider),
		fallbacks: make(map[string]string),
		active:    active,
		fallback:  defaultBackend,
		retry:     retry,
		logger:    logger,
		sleep:     sleepContext,
	}
}

// Register adds a named backend.
func (g *Gateway) Register(name string, p llm.Provider) {
	g.providers[name] = p
}

// Pair designates secondary as the fallback partner of primary. Calls routed
// to primary gain the retry budget and, once it is spent, one attempt against
// secondary.
func (g *Gateway) Pair(primary, secondary string) {
	g.fallbacks[primary] = secondary
}

// ChatCompletion sends messages to the active backend and returns the
// generated text, applying the retry/fallback policy of that backend.
func (g *Gateway) ChatCompletion(ctx context.Context, messages []llm.Message, opts ...llm.Option) (string, error) {
	name := g.active
	if _, ok := g.providers[name]; !ok {
		g.logger.Printf("[GATEWAY] Unknown backend %q, using default %q", name, g.fallback)
		name = g.fallback
	}
	if _, ok := g.providers[name]; !ok {
		return "", fmt.Errorf("no backend registered under %q", name)
	}

	return g.execute(ctx, g.chainFor(name), messages, opts)
}

// chainFor builds the ordered list of backend steps for name. A backend
// without a fallback partner gets a single-attempt chain: its failures
// propagate immediately.
func (g *Gateway) chainFor(name string) []step {
	secondary, paired := g.fallbacks[name]
	if !paired {
		return []step{{name: name, attempts: 1}}
	}
	return []step{
		{name: name, attempts: g.retry.MaxAttempts},
		{name: secondary, attempts: 1},
	}
}

func (g *Gateway) execute(ctx context.Context, chain []step, messages []llm.Message, opts []llm.Option) (string, error) {
	var failures []string

	for _, st := range chain {
		provider, ok := g.providers[st.name]
		if !ok {
			failures = append(failures, fmt.Sprintf("%s: not registered", st.name))
			continue
		}

		delay := g.retry.InitialDelay
		for attempt := 1; attempt <= st.attempts; attempt++ {
			reply, err := provider.Chat(ctx, messages, opts...)
			if err == nil {
				return reply, nil
			}

			g.logger.Printf("[GATEWAY] Backend %s attempt %d/%d failed: %v",
				st.name, attempt, st.attempts, err)

			if attempt == st.attempts {
				failures = append(failures, fmt.Sprintf("%s: %v", st.name, err))
				break
			}

			if sleepErr := g.sleep(ctx, delay); sleepErr != nil {
				failures = append(failures, fmt.Sprintf("%s: %v", st.name, sleepErr))
				return "", g.exhausted(failures)
			}
			delay *= 2
		}
	}

	return "", g.exhausted(failures)
}

// exhausted builds the composite error naming every attempted backend.
func (g *Gateway) exhausted(failures []string) error {
	return fmt.Errorf("%w: %s", ErrExhausted, strings.Join(failures, "; "))
}

// sleepContext blocks for d without holding any shared resource, so backoff
// never stalls other in-flight requests. Returns early when ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
