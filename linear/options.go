package linear

// Option configures an SDCARegressor.
type Option func(*SDCARegressor)

// WithMaxIter sets the maximum number of passes over the training data.
func WithMaxIter(n int) Option {
	return func(r *SDCARegressor) {
		r.maxIter = n
	}
}

// WithL2 sets the ridge regularization strength.
func WithL2(l2 float64) Option {
	return func(r *SDCARegressor) {
		r.l2 = l2
	}
}

// WithTol sets the relative duality-gap tolerance used as the stopping rule.
func WithTol(tol float64) Option {
	return func(r *SDCARegressor) {
		r.tol = tol
	}
}

// WithRandomState sets the seed of the per-pass example order.
func WithRandomState(seed int64) Option {
	return func(r *SDCARegressor) {
		r.randomState = seed
	}
}

// WithShuffle controls whether each pass visits examples in a fresh seeded order.
func WithShuffle(shuffle bool) Option {
	return func(r *SDCARegressor) {
		r.shuffle = shuffle
	}
}
