// Package cmd wires the benchmark pipeline into a command-line interface.
package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/modelbench/modelbench/pkg/log"
)

// RootCommand returns the top-level modelbench command.
func RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "modelbench",
		Short:         "Benchmark classification models on a tabular dataset",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// An optional modelbench.yaml in the working directory can
			// supply any flag value.
			viper.SetConfigName("modelbench")
			viper.SetConfigType("yaml")
			viper.AddConfigPath(".")
			if err := viper.ReadInConfig(); err != nil {
				var notFound viper.ConfigFileNotFoundError
				if !errors.As(err, &notFound) {
					return err
				}
			}
			return log.Setup(viper.GetString("log-level"), viper.GetBool("quiet"))
		},
	}

	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("quiet", false, "suppress model warnings")
	cobra.CheckErr(viper.BindPFlag("log-level", root.PersistentFlags().Lookup("log-level")))
	cobra.CheckErr(viper.BindPFlag("quiet", root.PersistentFlags().Lookup("quiet")))

	viper.SetEnvPrefix("MODELBENCH")
	viper.AutomaticEnv()

	root.AddCommand(RunCommand())
	root.AddCommand(ModelsCommand())
	return root
}
