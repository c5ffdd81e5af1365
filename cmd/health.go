/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"time"

	"chatpop/pkg/config"
	"chatpop/pkg/provider"

	"github.com/spf13/cobra"
)

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the configured responder provider",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Printf("failed to load config: %v\n", err)
			return
		}

		client, err := provider.New(cfg)
		if err != nil {
			fmt.Printf("failed to initialize provider: %v\n", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := client.Health(ctx); err != nil {
			fmt.Printf("provider %s: unhealthy: %v\n", cfg.Responder.Provider, err)
			return
		}

		fmt.Printf("provider %s: ok\n", cfg.Responder.Provider)
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
