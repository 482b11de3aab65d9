// Package pipeline trains a price regressor from historical records and serves
// predictions from the frozen result.
//
// A Pipeline moves once through Unfit -> Fitting -> Fitted. Fit splits the
// records, fits the encoder and normalizer on the training split only, trains
// the SDCA regressor and evaluates it on the held-out split. The returned
// FittedPipeline is immutable and safe for concurrent use.
//
//	p := pipeline.New(pipeline.WithSeed(0), pipeline.WithTestFraction(0.2))
//	fitted, err := p.Fit(records)
//	price, err := fitted.Predict(attrs)
package pipeline

import (
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pricecast/core/model"
	"github.com/YuminosukeSato/pricecast/internal/observability"
	"github.com/YuminosukeSato/pricecast/linear"
	"github.com/YuminosukeSato/pricecast/metrics"
	"github.com/YuminosukeSato/pricecast/model_selection"
	"github.com/YuminosukeSato/pricecast/pkg/errors"
	"github.com/YuminosukeSato/pricecast/pkg/log"
	"github.com/YuminosukeSato/pricecast/preprocessing"
	"github.com/YuminosukeSato/pricecast/schema"
)

// Pipeline is the training entry point. It can be fitted once; re-fitting
// means creating a new Pipeline.
type Pipeline struct {
	state  *model.StateManager
	fitted atomic.Pointer[FittedPipeline]

	testFraction  float64
	seed          int64
	maxIterations int
	l2            float64
	tolerance     float64

	logger  log.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
}

// New creates an Unfit pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		state:         model.NewStateManager(),
		testFraction:  DefaultTestFraction,
		seed:          DefaultSeed,
		maxIterations: DefaultMaxIterations,
		l2:            DefaultL2,
		tolerance:     DefaultTolerance,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = log.GetLoggerWithName("pipeline")
	}
	if p.metrics == nil {
		p.metrics = observability.NewMetricsForTesting()
	}
	if p.clock == nil {
		p.clock = clockwork.NewRealClock()
	}
	return p
}

// State returns the lifecycle state.
func (p *Pipeline) State() model.EstimatorState {
	return p.state.State()
}

// Fit trains the pipeline on records. Every record's multiplier is derived
// again from its category and disaster type. On failure the pipeline stays
// Unfit; a second Fit, or one racing an active Fit, returns ErrAlreadyFitted.
func (p *Pipeline) Fit(records []schema.PriceRecord) (fp *FittedPipeline, err error) {
	if err := p.state.BeginFit("Pipeline.Fit"); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			p.state.AbortFit()
			p.metrics.FitsTotal.WithLabelValues("error").Inc()
			p.logger.Error("Training failed", err, log.OperationKey, log.OperationFit)
		}
	}()
	defer errors.Recover(&err, "Pipeline.Fit")

	start := p.clock.Now()

	records, err = rederive("Pipeline.Fit", records)
	if err != nil {
		return nil, err
	}

	train, test, err := model_selection.TrainTestSplit(records, p.testFraction, p.seed)
	if err != nil {
		return nil, err
	}

	enc := preprocessing.NewOneHotEncoder()
	if err := enc.Fit(train, schema.CategoricalFields); err != nil {
		return nil, err
	}
	norm := preprocessing.NewMinMaxNormalizer()
	if err := norm.Fit(train, schema.NumericFields); err != nil {
		return nil, err
	}
	asm, err := preprocessing.NewFeatureAssembler(enc, norm)
	if err != nil {
		return nil, err
	}

	X, err := asm.AssembleMatrix(train)
	if err != nil {
		return nil, err
	}
	y := mat.NewDense(len(train), 1, schema.Labels(train))

	reg := linear.NewSDCARegressor(
		linear.WithMaxIter(p.maxIterations),
		linear.WithL2(p.l2),
		linear.WithTol(p.tolerance),
		linear.WithRandomState(p.seed),
	)
	fittedModel, err := reg.Fit(X, y)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	fp = &FittedPipeline{
		id:        id,
		encoder:   enc,
		assembler: asm,
		model:     fittedModel,
		testSet:   test,
		trainSize: len(train),
		fittedAt:  p.clock.Now(),
		logger:    p.logger.With(log.EstimatorIDKey, id.String(), log.ModelNameKey, "Pipeline"),
		metrics:   p.metrics,
	}

	report, err := fp.evaluate(test)
	if err != nil {
		return nil, err
	}
	fp.report = report
	fp.fitDuration = p.clock.Since(start)

	p.fitted.Store(fp)
	p.state.CompleteFit(asm.Width(), len(train))
	p.observeFit(fp)
	return fp, nil
}

func (p *Pipeline) observeFit(fp *FittedPipeline) {
	p.metrics.FitsTotal.WithLabelValues("success").Inc()
	p.metrics.FitDuration.Observe(fp.fitDuration.Seconds())
	p.metrics.SolverIterations.Observe(float64(fp.model.NIter()))
	p.metrics.TrainingSamples.Set(float64(fp.trainSize))
	p.metrics.FeatureWidth.Set(float64(fp.assembler.Width()))
	p.metrics.TestRSquared.Set(fp.report.RSquared)
	p.metrics.TestRMSE.Set(fp.report.RMSE)

	fp.logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		log.TrainSamplesKey, fp.trainSize,
		log.TestSamplesKey, len(fp.testSet),
		log.FeaturesKey, fp.assembler.Width(),
		log.IterationKey, fp.model.NIter(),
		log.ConvergedKey, fp.model.Converged(),
		log.R2ScoreKey, fp.report.RSquared,
		log.RMSEKey, fp.report.RMSE,
		log.DurationMsKey, fp.fitDuration.Milliseconds(),
	)
}

// Fitted returns the fitted pipeline, or a NotFittedError before Fit completes.
func (p *Pipeline) Fitted() (*FittedPipeline, error) {
	if err := p.state.RequireFitted("Pipeline", "Fitted"); err != nil {
		return nil, err
	}
	return p.fitted.Load(), nil
}

// Predict delegates to the fitted pipeline.
func (p *Pipeline) Predict(attrs schema.Attributes) (float64, error) {
	if err := p.state.RequireFitted("Pipeline", "Predict"); err != nil {
		return 0, err
	}
	return p.fitted.Load().Predict(attrs)
}

// Evaluate delegates to the fitted pipeline.
func (p *Pipeline) Evaluate(records []schema.PriceRecord) (metrics.RegressionReport, error) {
	if err := p.state.RequireFitted("Pipeline", "Evaluate"); err != nil {
		return metrics.RegressionReport{}, err
	}
	return p.fitted.Load().Evaluate(records)
}

// rederive rebuilds every record through the training constructor so the
// multiplier always follows the shared rule.
func rederive(op string, records []schema.PriceRecord) ([]schema.PriceRecord, error) {
	if len(records) == 0 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	out := make([]schema.PriceRecord, len(records))
	for i, r := range records {
		rec, err := schema.NewTrainingRecord(r.Attributes, r.Price)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", i)
		}
		out[i] = rec
	}
	return out, nil
}
