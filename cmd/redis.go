package cmd

import (
	"fmt"
	"log"

	"resona/config"
	"resona/db"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Test the Redis connection",
	Long:  `Connect to Redis and run a basic read/write round trip. Sessions live in Redis, so a failing check means logins will fail too.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		initLogging(cfg)

		fmt.Printf("Redis config: %s:%s, DB: %d\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

		if err := db.ConnectRedis(cfg); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		fmt.Println("Redis connection OK.")

		if err := db.TestRedis(); err != nil {
			log.Fatalf("Redis round trip failed: %v", err)
		}
		fmt.Println("Redis round trip OK.")

		if err := db.CloseRedis(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
