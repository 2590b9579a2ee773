package cmd

import (
	"github.com/spf13/cobra"

	"tunescout/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the TuneScout HTTP server",
	Long:  `Start the TuneScout discovery backend, serving the search, playlist and logging APIs.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
