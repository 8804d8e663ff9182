package resilience

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/haulport/logistics-backend/pkg/logger"
)

// ErrCircuitOpen is returned when the breaker rejects a call.
var ErrCircuitOpen = errors.New("circuit breaker is open")

var (
	breakerStateGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Current state of circuit breakers (0=closed, 0.5=half-open, 1=open)",
	}, []string{"breaker"})

	breakerFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circuit_breaker_failures_total",
		Help: "Total number of circuit breaker executions that resulted in an error",
	}, []string{"breaker"})
)

// Settings tunes a circuit breaker.
type Settings struct {
	Name             string
	Interval         int // seconds; closed-state counter reset
	Timeout          int // seconds; open -> half-open
	FailureThreshold uint32
}

// Breaker wraps gobreaker with logging and metrics.
type Breaker struct {
	name string
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker creates a circuit breaker from settings, applying defaults for
// zero values.
func NewBreaker(s Settings) *Breaker {
	if s.Interval <= 0 {
		s.Interval = 60
	}
	if s.Timeout <= 0 {
		s.Timeout = 30
	}
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 5
	}

	b := &Breaker{name: s.Name}
	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     s.Name,
		Interval: secondsToDuration(s.Interval),
		Timeout:  secondsToDuration(s.Timeout),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			breakerStateGauge.WithLabelValues(name).Set(stateValue(to))
		},
	})
	return b
}

// Execute runs op through the breaker.
func (b *Breaker) Execute(ctx context.Context, op func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return op(ctx)
	})
	if err != nil {
		breakerFailuresTotal.WithLabelValues(b.name).Inc()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrCircuitOpen
		}
		return nil, err
	}
	return result, nil
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 0.5
	case gobreaker.StateOpen:
		return 1
	default:
		return -1
	}
}
