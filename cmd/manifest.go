package cmd

import (
	"fmt"

	"github.com/thoherr/vacuum-docker-registry/registry"

	"github.com/spf13/cobra"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest <repository> <reference>",
	Short: "Show the manifest of a tag or digest",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		m, found, err := mustRegistry().Manifest(args[0], args[1])
		if err != nil {
			fatal(err)
		}

		if !found {
			fmt.Printf("no manifest found for %s:%s\n", args[0], args[1])
			return
		}

		fmt.Printf("digest: %s\n", m.Digest())
		fmt.Printf("schema version: %d\n", m.SchemaVersion())
		for _, layer := range m.Layers() {
			fmt.Printf("layer: %s %s\n", layer.Digest(), registry.HumanSize(layer.Size()))
		}
	},
}

func init() {
	rootCmd.AddCommand(manifestCmd)
}
