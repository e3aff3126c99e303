package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var repositoriesCmd = &cobra.Command{
	Use:   "repositories",
	Short: "List the repositories of the registry",
	Run: func(cmd *cobra.Command, args []string) {
		repos, err := mustRegistry().Repositories()
		if err != nil {
			fatal(err)
		}

		for _, repo := range repos {
			fmt.Println(repo)
		}
	},
}

func init() {
	rootCmd.AddCommand(repositoriesCmd)
}
