package pipeline

import (
	"github.com/jonboulle/clockwork"

	"github.com/YuminosukeSato/pricecast/internal/observability"
	"github.com/YuminosukeSato/pricecast/pkg/log"
)

// Default training parameters.
const (
	DefaultTestFraction  = 0.2
	DefaultSeed          = 0
	DefaultMaxIterations = 100
	DefaultL2            = 1e-4
	DefaultTolerance     = 1e-7
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Defaults to the package-level logger named "pipeline".
func WithLogger(l log.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithMetrics sets the Prometheus instruments. Defaults to an unregistered set.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithClock sets the clock used for fit timestamps and durations.
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) {
		p.clock = c
	}
}

// WithTestFraction sets the share of records held out for evaluation.
func WithTestFraction(f float64) Option {
	return func(p *Pipeline) {
		p.testFraction = f
	}
}

// WithSeed sets the seed of the split and of the solver's example order.
func WithSeed(seed int64) Option {
	return func(p *Pipeline) {
		p.seed = seed
	}
}

// WithMaxIterations caps the solver passes.
func WithMaxIterations(n int) Option {
	return func(p *Pipeline) {
		p.maxIterations = n
	}
}

// WithL2 sets the ridge regularization strength.
func WithL2(l2 float64) Option {
	return func(p *Pipeline) {
		p.l2 = l2
	}
}

// WithTolerance sets the solver's duality-gap tolerance.
func WithTolerance(tol float64) Option {
	return func(p *Pipeline) {
		p.tolerance = tol
	}
}
