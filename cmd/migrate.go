package cmd

import (
	"fmt"
	"log"

	"resona/config"
	"resona/db"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long:  `Connect to MySQL and auto-migrate the Resona tables: users, tracks, playlists, playlist_tracks, comments and likes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		initLogging(cfg)

		fmt.Printf("Migrating database %s on %s:%s...\n", cfg.DBName, cfg.DBHost, cfg.DBPort)

		if err := db.ConnectGormDB(cfg); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.CloseGormDB()

		if err := db.MigrateSchema(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}

		fmt.Println("Migration complete.")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
