package cmd

import (
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/modelbench/modelbench/dataset"
	"github.com/modelbench/modelbench/pkg/log"
	"github.com/modelbench/modelbench/preprocessing"
	"github.com/modelbench/modelbench/training"
	"github.com/modelbench/modelbench/visualization"
)

// RunCommand returns the command that runs the full benchmark pipeline:
// load, preprocess, train, report and optionally plot.
func RunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load a dataset, benchmark classifiers and report their scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(
				viper.GetString("data"),
				viper.GetString("target"),
				viper.GetStringSlice("models"),
				viper.GetStringSlice("metrics"),
				viper.GetString("plot"),
			)
		},
	}

	cmd.Flags().String("data", "", "path to the dataset (csv, xlsx, xls, json, parquet, feather)")
	cmd.Flags().String("target", "target", "name of the label column")
	cmd.Flags().StringSlice("models", nil, "models to benchmark (default: all)")
	cmd.Flags().StringSlice("metrics", []string{"accuracy"}, "metrics to plot")
	cmd.Flags().String("plot", "", "write a comparison chart to this PNG path")
	cobra.CheckErr(cmd.MarkFlagRequired("data"))

	for _, flag := range []string{"data", "target", "models", "metrics", "plot"} {
		cobra.CheckErr(viper.BindPFlag(flag, cmd.Flags().Lookup(flag)))
	}

	return cmd
}

func runBenchmark(dataPath, target string, selected, plotMetrics []string, plotPath string) error {
	table, err := dataset.Load(dataPath)
	if err != nil {
		return err
	}
	log.L().Info().
		Str("path", dataPath).
		Int("rows", table.NumRows()).
		Int("columns", table.NumCols()).
		Msg("loaded dataset")

	XTrain, XTest, yTrain, yTest, err := preprocessing.PreprocessTable(table, target)
	if err != nil {
		return err
	}

	var opts []training.TrainOption
	if len(selected) > 0 {
		opts = append(opts, training.WithModels(selected...))
	}
	results, err := training.Train(XTrain, XTest, yTrain, yTest, opts...)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ev := log.L().Info().Str("model", name)
		for _, metric := range training.MetricNames {
			ev = ev.Float64(metric, results[name][metric])
		}
		ev.Msg("benchmark result")
	}

	if plotPath != "" {
		return visualization.PlotResults(results, plotMetrics, plotPath)
	}
	return nil
}
