package cli

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/pricecast/schema"
)

type queryFlags struct {
	item          string
	category      string
	month         int
	year          int
	sourceCountry string
	tariffRate    float64
	disasterType  string
	severity      float64
}

func (q *queryFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&q.item, "item", "", "food item, e.g. Beef")
	f.StringVar(&q.category, "category", "", "food category: Meat, Dairy, Grain")
	f.IntVar(&q.month, "month", 0, "month (1-12)")
	f.IntVar(&q.year, "year", 0, "year")
	f.StringVar(&q.sourceCountry, "country", "", "source country")
	f.Float64Var(&q.tariffRate, "tariff", 0, "tariff rate (0.0-1.0)")
	f.StringVar(&q.disasterType, "disaster", "None", "disaster type: None, Drought, Flood")
	f.Float64Var(&q.severity, "severity", 0, "disaster severity (0.0-1.0)")

	for _, name := range []string{"item", "category", "month", "year", "country"} {
		_ = cmd.MarkFlagRequired(name)
	}
}

func (q *queryFlags) attributes() schema.Attributes {
	return schema.Attributes{
		Item:             q.item,
		Category:         q.category,
		Month:            q.month,
		Year:             q.year,
		SourceCountry:    q.sourceCountry,
		TariffRate:       q.tariffRate,
		DisasterType:     q.disasterType,
		DisasterSeverity: q.severity,
	}
}

func newPredictCommand(a *app) *cobra.Command {
	tf := &trainFlags{}
	q := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Train on a CSV file, then predict the price of one query",
		Example: `  pricecast predict --data food_prices.csv --item Beef --category Meat \
    --month 6 --year 2024 --country USA --tariff 0.1 --disaster Drought --severity 0.7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			attrs := q.attributes()
			// 学習の前にクエリを検証する
			if _, err := schema.NewQueryRecord(attrs); err != nil {
				return err
			}

			if err := a.loadConfig(cmd); err != nil {
				return err
			}
			if err := tf.apply(a, cmd); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			t, err := a.train(out)
			if err != nil {
				return err
			}

			price, err := t.fitted.Predict(attrs)
			if err != nil {
				return err
			}
			printPrediction(out, attrs, price)
			return t.finish(out)
		},
	}
	tf.register(cmd)
	q.register(cmd)
	return cmd
}
