package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "daybook",
		Short:        "Plan the day and log what actually happened",
		SilenceUsage: true,
	}

	addServe(root)
	addMigrate(root)
	addImportICS(root)
	addDay(root)
	addToken(root)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
