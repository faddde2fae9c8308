package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rapport",
	Short: "Relationship state engine for AI companions",
	Long:  "Rapport turns discrete interaction events into a persistent, multi-dimensional affective state between a user and a companion character, and learns recurring behavioral patterns over time.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(decayCmd)
	rootCmd.AddCommand(showCmd)
}
