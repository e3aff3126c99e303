package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that the configured address serves the registry V2 API",
	Run: func(cmd *cobra.Command, args []string) {
		reg := mustRegistry()
		err := reg.Validate()
		if err != nil {
			fatal(err)
		}

		fmt.Printf("%s is a valid registry V2 endpoint\n", reg.Address())
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
