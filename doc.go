// Package modelbench benchmarks classification models on tabular datasets.
//
// The library loads a dataset from common tabular formats, preprocesses it
// into a numeric train/test split, fits a catalog of classifiers with
// sensible defaults, and reports per-model scores, optionally as a bar
// chart.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "log"
//
//	    "github.com/modelbench/modelbench/dataset"
//	    "github.com/modelbench/modelbench/preprocessing"
//	    "github.com/modelbench/modelbench/training"
//	)
//
//	func main() {
//	    table, err := dataset.Load("data.csv")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    XTrain, XTest, yTrain, yTest, err := preprocessing.PreprocessTable(table, "label")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    results, err := training.Train(XTrain, XTest, yTrain, yTest)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    for model, scores := range results {
//	        log.Printf("%s: accuracy=%.3f", model, scores["accuracy"])
//	    }
//	}
//
// The cmd/modelbench command exposes the same pipeline on the command line.
package modelbench
