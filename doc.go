// Package pricecast predicts commodity food prices from item, origin, tariff
// and natural-disaster attributes with a single ridge regression model.
//
// The library trains once from historical observations, evaluates the model on
// a held-out split and then serves single-record predictions from an
// immutable fitted pipeline.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/pricecast/internal/dataio"
//	    "github.com/YuminosukeSato/pricecast/pipeline"
//	    "github.com/YuminosukeSato/pricecast/schema"
//	)
//
//	func main() {
//	    records, err := dataio.NewReader().LoadFile("food_prices.csv")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    fitted, err := pipeline.New(pipeline.WithSeed(0)).Fit(records)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Printf("R²: %.2f RMSE: %.2f\n", fitted.Metrics().RSquared, fitted.Metrics().RMSE)
//
//	    price, err := fitted.Predict(schema.Attributes{
//	        Item: "Beef", Category: "Meat", Month: 6, Year: 2024,
//	        SourceCountry: "USA", TariffRate: 0.1,
//	        DisasterType: "Drought", DisasterSeverity: 0.7,
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Printf("$%.2f\n", price)
//	}
//
// # Packages
//
//   - schema: the record shape and the disaster multiplier rule
//   - preprocessing: one-hot encoding, min-max normalization, feature assembly
//   - model_selection: seeded train/test split
//   - linear: SDCA ridge regression
//   - metrics: MSE, RMSE, MAE, R²
//   - pipeline: the Unfit -> Fitting -> Fitted training lifecycle and predictions
//   - core/model: estimator state and weight snapshots
//   - core/parallel: row-parallel helpers
//   - pkg/errors, pkg/log: error taxonomy and structured logging
//
// The pricecast command (cmd/pricecast) wraps the pipeline for CSV files.
package pricecast
