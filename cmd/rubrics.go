package cmd

import (
	"fmt"

	"github.com/nikogura/suture-assessor/pkg/config"
	"github.com/nikogura/suture-assessor/pkg/rubric"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rubricFile string

//nolint:gochecknoglobals // Cobra boilerplate
var rubricsCmd = &cobra.Command{
	Use:   "rubrics [suture-type]",
	Short: "List rubric sets and their items",
	Long: `List the rubric sets available for assessment. Built-in sets can be
overridden or extended with a YAML file (rubric_location in config, or --file).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRubrics,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(rubricsCmd)
	rubricsCmd.Flags().StringVar(&rubricFile, "file", "", "Rubric YAML overrides (default from config)")
}

func runRubrics(cmd *cobra.Command, args []string) (err error) {
	path := rubricFile
	if path == "" {
		cfg, cfgErr := config.Load(getConfigFile())
		if cfgErr == nil {
			path = cfg.RubricLocation
		}
	}

	var catalog rubric.Catalog
	catalog, err = rubric.Load(path)
	if err != nil {
		return err
	}

	types := catalog.Types()
	if len(args) == 1 {
		types = args
	}

	for _, t := range types {
		var set rubric.Set
		set, err = catalog.Lookup(t)
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s)\n", set.Title, set.SutureType)
		for _, item := range set.Items {
			fmt.Printf("  %d) %-60s [%s]\n", item.Index, item.Text, item.Modality)
		}
		fmt.Println()
	}

	return err
}
