package cmd

import (
	"context"
	"fmt"
	"log"

	"resona/config"
	"resona/storage"

	"github.com/spf13/cobra"
)

var (
	minioPrefix string
	minioDelete bool
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "Inspect the MinIO audio bucket",
	Long:  `List objects in the configured MinIO bucket, or delete everything under a prefix. Useful for cleaning up orphaned audio blobs.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		initLogging(cfg)

		fmt.Printf("MinIO config: %s, bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		client, err := storage.NewAdminClient(
			cfg.MinioEndpoint,
			cfg.MinioAccessKey,
			cfg.MinioSecretKey,
			cfg.MinioBucket,
			cfg.MinioUseSSL,
		)
		if err != nil {
			log.Fatalf("Failed to create MinIO client: %v", err)
		}

		ctx := context.Background()

		if minioDelete {
			if minioPrefix == "" {
				log.Fatal("Delete requires a --prefix")
			}
			deleted, err := client.DeletePrefix(ctx, minioPrefix)
			if err != nil {
				log.Fatalf("Delete failed after %d objects: %v", deleted, err)
			}
			fmt.Printf("Deleted %d objects under %s\n", deleted, minioPrefix)
			return
		}

		if _, err := client.ListObjects(ctx, minioPrefix); err != nil {
			log.Fatalf("Failed to list objects: %v", err)
		}
	},
}

func init() {
	minioCmd.Flags().StringVar(&minioPrefix, "prefix", "", "object key prefix to list or delete")
	minioCmd.Flags().BoolVar(&minioDelete, "delete", false, "delete all objects under the prefix")
	rootCmd.AddCommand(minioCmd)
}
