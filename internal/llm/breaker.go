package llm

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerSettings configures the quota circuit breaker.
type BreakerSettings struct {
	// MaxQuotaFailures is the number of consecutive quota errors that opens
	// the circuit.
	MaxQuotaFailures int
	// Cooldown is how long the circuit stays open before a trial call.
	Cooldown time.Duration
	// OnStateChange is called on every transition. Optional.
	OnStateChange func(from, to gobreaker.State)
}

// BreakerProvider wraps a Provider with a circuit breaker that opens after
// consecutive quota errors. While open, Chat fails fast with
// gobreaker.ErrOpenState, which Classify maps to OutcomeQuota. Calls are
// never retried.
type BreakerProvider struct {
	next Provider
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerProvider wraps next.
func NewBreakerProvider(next Provider, s BreakerSettings) *BreakerProvider {
	if s.MaxQuotaFailures <= 0 {
		s.MaxQuotaFailures = 3
	}
	if s.Cooldown <= 0 {
		s.Cooldown = time.Minute
	}

	settings := gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: 1,
		Timeout:     s.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(s.MaxQuotaFailures)
		},
		// Only quota errors count against the circuit.
		IsSuccessful: func(err error) bool {
			return Classify(err) != OutcomeQuota
		},
	}
	if s.OnStateChange != nil {
		settings.OnStateChange = func(_ string, from, to gobreaker.State) {
			s.OnStateChange(from, to)
		}
	}

	return &BreakerProvider{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (p *BreakerProvider) Name() string { return p.next.Name() }

func (p *BreakerProvider) Chat(ctx context.Context, system string, history []Message, opts Options) (*Response, error) {
	out, err := p.cb.Execute(func() (interface{}, error) {
		return p.next.Chat(ctx, system, history, opts)
	})
	if err != nil {
		return nil, err
	}
	return out.(*Response), nil
}

// State returns the current circuit state.
func (p *BreakerProvider) State() gobreaker.State {
	return p.cb.State()
}
