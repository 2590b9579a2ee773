package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"tunescout/cache"
	"tunescout/config"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Test the Redis connection",
	Long:  `Connect to Redis with the configured settings and run a basic read/write round trip.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("Redis config: %s:%s, DB: %d\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

		if err := cache.ConnectRedis(cfg); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		fmt.Println("Redis connection established.")

		ctx := context.Background()
		if err := cache.RedisClient.Set(ctx, "tunescout_ping", "ok", time.Minute).Err(); err != nil {
			log.Fatalf("Redis write failed: %v", err)
		}
		val, err := cache.RedisClient.Get(ctx, "tunescout_ping").Result()
		if err != nil || val != "ok" {
			log.Fatalf("Redis read failed: value=%q err=%v", val, err)
		}
		if err := cache.RedisClient.Del(ctx, "tunescout_ping").Err(); err != nil {
			log.Fatalf("Redis delete failed: %v", err)
		}
		fmt.Println("Redis round trip succeeded.")

		if err := cache.CloseRedis(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
