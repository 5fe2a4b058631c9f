package cmd

import (
	"resona/config"
	"resona/logger"
	"resona/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Resona API server",
	Long:  `Start the HTTP server serving the Resona API and uploaded audio files.`,
	Run: func(cmd *cobra.Command, args []string) {
		runServer()
	},
}

func runServer() {
	cfg := config.Load()
	initLogging(cfg)

	if err := server.Start(); err != nil {
		logger.Fatal("Server exited", logger.ErrorField(err))
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
