package cmd

import (
	"fmt"

	"github.com/nikogura/suture-assessor/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a default configuration file to $HOME/.suture-assessor/config.json
(or the path given with --config). Fill in gemini_api_key afterwards, or set
GEMINI_API_KEY in the environment or a .env file.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) (err error) {
	path := getConfigFile()
	if path == "" {
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	err = config.InitConfig(path)
	if err != nil {
		return err
	}

	fmt.Printf("Config written to %s\n", path)
	fmt.Println("Set gemini_api_key (or GEMINI_API_KEY) before running 'suture-assessor assess'.")

	return err
}
