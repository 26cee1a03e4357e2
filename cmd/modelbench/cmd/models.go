package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/modelbench/modelbench/models"
)

// ModelsCommand returns the command that lists the model catalog and the
// default hyperparameters per model.
func ModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the supported models and their default hyperparameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := models.GetModels()
			names := make([]string, 0, len(catalog))
			for name := range catalog {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
				params := catalog[name].GetParams()
				keys := make([]string, 0, len(params))
				for k := range params {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s: %v\n", k, params[k])
				}
			}
			return nil
		},
	}
}
