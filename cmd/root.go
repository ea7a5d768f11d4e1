package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{
		Use:   "deepresearch",
		Short: "Staged research pipeline: plan, search, report",
	}

	root.AddCommand(researchCMD(), serveCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
