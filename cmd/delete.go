package cmd

import (
	"fmt"

	digest "github.com/opencontainers/go-digest"
	"github.com/spf13/cobra"
)

var deleteManifestCmd = &cobra.Command{
	Use:   "delete-manifest <repository> <digest>",
	Short: "Delete a manifest by digest",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		dgst, err := digest.Parse(args[1])
		if err != nil {
			fatal(err)
		}

		err = mustRegistry().DeleteManifest(args[0], dgst)
		if err != nil {
			fatal(err)
		}

		fmt.Printf("deleted manifest %s@%s\n", args[0], dgst)
	},
}

var deleteBlobCmd = &cobra.Command{
	Use:   "delete-blob <repository> <digest>",
	Short: "Delete a blob by digest",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		dgst, err := digest.Parse(args[1])
		if err != nil {
			fatal(err)
		}

		err = mustRegistry().DeleteBlob(args[0], dgst)
		if err != nil {
			fatal(err)
		}

		fmt.Printf("deleted blob %s@%s\n", args[0], dgst)
	},
}

func init() {
	rootCmd.AddCommand(deleteManifestCmd)
	rootCmd.AddCommand(deleteBlobCmd)
}
