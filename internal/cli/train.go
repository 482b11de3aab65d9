package cli

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pricecast/internal/dataio"
	"github.com/YuminosukeSato/pricecast/internal/observability"
	"github.com/YuminosukeSato/pricecast/internal/report"
	"github.com/YuminosukeSato/pricecast/pipeline"
	"github.com/YuminosukeSato/pricecast/pkg/errors"
	"github.com/YuminosukeSato/pricecast/pkg/log"
	"github.com/YuminosukeSato/pricecast/schema"
)

// trainFlags override the training keys of the config file.
type trainFlags struct {
	dataPath      string
	testFraction  float64
	seed          int64
	maxIterations int
	l2            float64
	tolerance     float64
	plotPath      string
	metricsPath   string
}

func (tf *trainFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&tf.dataPath, "data", "", "CSV file of historical prices (overrides data_path)")
	f.Float64Var(&tf.testFraction, "test-fraction", pipeline.DefaultTestFraction, "share of records held out for evaluation")
	f.Int64Var(&tf.seed, "seed", pipeline.DefaultSeed, "seed of the split and the solver")
	f.IntVar(&tf.maxIterations, "max-iterations", pipeline.DefaultMaxIterations, "maximum solver passes")
	f.Float64Var(&tf.l2, "l2", pipeline.DefaultL2, "L2 regularization strength")
	f.Float64Var(&tf.tolerance, "tolerance", pipeline.DefaultTolerance, "solver duality-gap tolerance")
	f.StringVar(&tf.plotPath, "plot", "", "write a parity plot of the test split to this file (.png, .svg, .pdf)")
	f.StringVar(&tf.metricsPath, "metrics-out", "", "write Prometheus metrics in text format to this file")
}

// apply copies the flags the user set into the loaded config.
func (tf *trainFlags) apply(a *app, cmd *cobra.Command) error {
	f := cmd.Flags()
	c := a.cfg
	if f.Changed("data") {
		c.DataPath = tf.dataPath
	}
	if f.Changed("test-fraction") {
		c.TestFraction = tf.testFraction
	}
	if f.Changed("seed") {
		c.Seed = tf.seed
	}
	if f.Changed("max-iterations") {
		c.MaxIterations = tf.maxIterations
	}
	if f.Changed("l2") {
		c.L2 = tf.l2
	}
	if f.Changed("tolerance") {
		c.Tolerance = tf.tolerance
	}
	if f.Changed("plot") {
		c.PlotPath = tf.plotPath
	}
	if f.Changed("metrics-out") {
		c.MetricsPath = tf.metricsPath
	}
	return c.Validate()
}

func newTrainCommand(a *app) *cobra.Command {
	tf := &trainFlags{}
	cmd := &cobra.Command{
		Use:     "train",
		Aliases: []string{"run"},
		Short:   "Train on a CSV file and print the held-out metrics",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(cmd); err != nil {
				return err
			}
			if err := tf.apply(a, cmd); err != nil {
				return err
			}
			t, err := a.train(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return t.finish(cmd.OutOrStdout())
		},
	}
	tf.register(cmd)
	return cmd
}

// training is one completed fit with its metrics registry.
type training struct {
	fitted      *pipeline.FittedPipeline
	registry    *prometheus.Registry
	metricsPath string
}

// train loads the data, fits the pipeline, prints the metrics and writes the
// optional plot.
func (a *app) train(out io.Writer) (*training, error) {
	c := a.cfg
	logger := log.GetLoggerWithName("cli")

	records, err := dataio.NewReader().LoadFile(c.DataPath)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	p := pipeline.New(
		pipeline.WithMetrics(observability.NewMetricsWithRegistry(reg)),
		pipeline.WithTestFraction(c.TestFraction),
		pipeline.WithSeed(c.Seed),
		pipeline.WithMaxIterations(c.MaxIterations),
		pipeline.WithL2(c.L2),
		pipeline.WithTolerance(c.Tolerance),
	)
	logger.Info("Training started",
		log.SamplesKey, len(records),
		log.TestFractionKey, c.TestFraction,
		log.RandomSeedKey, c.Seed,
		log.MaxIterationsKey, c.MaxIterations,
		log.RegularizationKey, c.L2,
	)

	fitted, err := p.Fit(records)
	if err != nil {
		return nil, errors.Wrap(err, "train")
	}
	printMetrics(out, fitted.Metrics())

	if c.PlotPath != "" {
		paths, err := writePlots(fitted, c.PlotPath)
		if err != nil {
			return nil, err
		}
		for _, path := range paths {
			fmt.Fprintf(out, "✓ Plot written: %s\n", path)
		}
	}
	return &training{fitted: fitted, registry: reg, metricsPath: c.MetricsPath}, nil
}

// finish writes the metrics file once every prediction has been counted.
func (t *training) finish(out io.Writer) error {
	if t.metricsPath == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(t.metricsPath, t.registry); err != nil {
		return errors.Wrapf(err, "write metrics %s", t.metricsPath)
	}
	fmt.Fprintf(out, "✓ Metrics written: %s\n", t.metricsPath)
	return nil
}

func writePlots(fitted *pipeline.FittedPipeline, path string) ([]string, error) {
	test := fitted.TestSet()
	pred, err := fitted.PredictBatch(test)
	if err != nil {
		return nil, err
	}
	actual := mat.NewVecDense(len(test), schema.Labels(test))
	return report.SaveEvaluation(actual, pred, path)
}
