package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pricecast/core/model"
	"github.com/YuminosukeSato/pricecast/internal/observability"
	"github.com/YuminosukeSato/pricecast/linear"
	"github.com/YuminosukeSato/pricecast/metrics"
	"github.com/YuminosukeSato/pricecast/pkg/errors"
	"github.com/YuminosukeSato/pricecast/pkg/log"
	"github.com/YuminosukeSato/pricecast/preprocessing"
	"github.com/YuminosukeSato/pricecast/schema"
)

// FittedPipeline is the frozen result of Pipeline.Fit: the vocabularies, the
// normalization bounds, the model weights, and the held-out evaluation.
// Nothing in it changes after Fit returns.
type FittedPipeline struct {
	id        uuid.UUID
	encoder   *preprocessing.OneHotEncoder
	assembler *preprocessing.FeatureAssembler
	model     *linear.FittedModel

	testSet     []schema.PriceRecord
	trainSize   int
	report      metrics.RegressionReport
	fittedAt    time.Time
	fitDuration time.Duration

	logger  log.Logger
	metrics *observability.Metrics
}

// ID uniquely identifies this fit in logs.
func (fp *FittedPipeline) ID() string { return fp.id.String() }

// Metrics returns the evaluation on the held-out split computed during Fit.
func (fp *FittedPipeline) Metrics() metrics.RegressionReport { return fp.report }

// TestSet returns a copy of the held-out records.
func (fp *FittedPipeline) TestSet() []schema.PriceRecord {
	return append([]schema.PriceRecord(nil), fp.testSet...)
}

// TrainSize is the number of records the model was trained on.
func (fp *FittedPipeline) TrainSize() int { return fp.trainSize }

// FittedAt is when Fit completed.
func (fp *FittedPipeline) FittedAt() time.Time { return fp.fittedAt }

// FitDuration is the wall time of Fit.
func (fp *FittedPipeline) FitDuration() time.Duration { return fp.fitDuration }

// Model returns the trained regressor.
func (fp *FittedPipeline) Model() *linear.FittedModel { return fp.model }

// FeatureNames names each column of the assembled feature vector.
func (fp *FittedPipeline) FeatureNames() []string { return fp.assembler.FeatureNames() }

// Vocabulary returns the fitted values of a categorical field in slot order.
func (fp *FittedPipeline) Vocabulary(f schema.Field) []string {
	v, ok := fp.encoder.Vocabulary(f)
	if !ok {
		return nil
	}
	return v.Values()
}

// Weights returns a snapshot of the model weights labelled with feature names.
func (fp *FittedPipeline) Weights() *model.ModelWeights {
	w := fp.model.ToWeights(fp.assembler.FeatureNames())
	w.Metadata["pipeline_id"] = fp.ID()
	w.Metadata["fitted_at"] = fp.fittedAt.UTC().Format(time.RFC3339)
	w.Metadata["train_samples"] = fp.trainSize
	return w
}

// Predict returns the price estimate for a query. The disaster multiplier is
// derived from the query's category and disaster type. Categorical values
// unseen during Fit contribute nothing to the estimate.
func (fp *FittedPipeline) Predict(attrs schema.Attributes) (float64, error) {
	rec, err := schema.NewQueryRecord(attrs)
	if err != nil {
		return 0, err
	}
	fp.countUnseen(rec)

	x, err := fp.assembler.Assemble(rec)
	if err != nil {
		return 0, err
	}
	price, err := fp.model.PredictOne(x)
	if err != nil {
		return 0, err
	}
	fp.metrics.PredictionsTotal.Inc()

	if fp.logger.Enabled(context.Background(), log.LevelDebug) {
		fp.logger.Debug("Prediction served",
			log.OperationKey, log.OperationPredict,
			log.PhaseKey, log.PhaseInference,
			log.PredictionKey, price,
		)
	}
	return price, nil
}

// PredictBatch predicts the price of each record, in order.
func (fp *FittedPipeline) PredictBatch(records []schema.PriceRecord) (*mat.VecDense, error) {
	records, err := rederive("FittedPipeline.PredictBatch", records)
	if err != nil {
		return nil, err
	}
	return fp.predictDerived(records)
}

func (fp *FittedPipeline) predictDerived(records []schema.PriceRecord) (*mat.VecDense, error) {
	for _, rec := range records {
		fp.countUnseen(rec)
	}
	X, err := fp.assembler.AssembleMatrix(records)
	if err != nil {
		return nil, err
	}
	pred, err := fp.model.Predict(X)
	if err != nil {
		return nil, err
	}
	fp.metrics.PredictionsTotal.Add(float64(len(records)))
	return pred, nil
}

// Evaluate scores the model on labelled records. Constant labels give an
// undefined R² (NaN) rather than an error.
func (fp *FittedPipeline) Evaluate(records []schema.PriceRecord) (metrics.RegressionReport, error) {
	records, err := rederive("FittedPipeline.Evaluate", records)
	if err != nil {
		return metrics.RegressionReport{}, err
	}
	return fp.evaluate(records)
}

func (fp *FittedPipeline) evaluate(records []schema.PriceRecord) (metrics.RegressionReport, error) {
	pred, err := fp.predictDerived(records)
	if err != nil {
		return metrics.RegressionReport{}, err
	}
	report, err := metrics.EvaluateRegression(mat.NewVecDense(len(records), schema.Labels(records)), pred)
	if err != nil {
		return metrics.RegressionReport{}, errors.Wrap(err, "evaluate")
	}

	fp.logger.Debug("Evaluation completed",
		log.OperationKey, log.OperationScore,
		log.PhaseKey, log.PhaseTesting,
		log.SamplesKey, report.Samples,
		log.R2ScoreKey, report.RSquared,
		log.RMSEKey, report.RMSE,
	)
	return report, nil
}

func (fp *FittedPipeline) countUnseen(rec schema.PriceRecord) {
	for _, f := range schema.CategoricalFields {
		value, _ := rec.Categorical(f)
		if fp.encoder.Contains(f, value) {
			continue
		}
		fp.metrics.UnseenCategories.WithLabelValues(string(f)).Inc()
		fp.logger.Debug("Unseen category encoded as zeros",
			log.FieldKey, string(f),
			log.ValueKey, value,
		)
	}
}
