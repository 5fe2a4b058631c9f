package cmd

import (
	"fmt"
	"os"

	"resona/config"
	"resona/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resona",
	Short: "Resona is an audio sharing platform.",
	Long:  `Resona runs the audio sharing API: user accounts, track uploads, playlists, comments, likes and the site-wide ultimate playlist.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Bare invocation runs the server, same as the server subcommand.
		runServer()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initLogging sets up the global logger from config. Every subcommand
// calls it first.
func initLogging(cfg *config.Config) {
	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})
}
