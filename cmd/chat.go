/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chatpop/pkg/bubble"
	"chatpop/pkg/bus"
	"chatpop/pkg/config"
	"chatpop/pkg/logger"
	"chatpop/pkg/music"
	"chatpop/pkg/preview"
	"chatpop/pkg/provider"
	"chatpop/pkg/respond"
	"chatpop/pkg/store"
	"chatpop/pkg/ui/chat"

	"github.com/spf13/cobra"
)

var openChatName string

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the messages UI",
	Long:  "Loads configuration, connects the configured responder provider, and opens the inbox.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Printf("failed to load config: %v\n", err)
			return
		}

		log, closeLog, err := buildLogger(cfg)
		if err != nil {
			fmt.Printf("failed to initialize logger: %v\n", err)
			return
		}
		defer closeLog()
		slog.SetDefault(log)

		client, err := provider.New(cfg)
		if err != nil {
			fmt.Printf("failed to initialize provider: %v\n", err)
			return
		}

		events := bus.New()
		defer events.Close()

		messages := store.New(events)
		store.Seed(messages)

		catalog := music.NewClient(
			cfg.Music.BaseURL,
			time.Duration(cfg.Music.RequestTimeoutSeconds)*time.Second,
			music.NewCache(time.Duration(cfg.Music.CacheTTLSeconds)*time.Second),
		)

		responder := respond.New(messages, events, client, catalog, cfg.Chat.Persona, respond.DefaultTimings())

		var fetcher *preview.Fetcher
		if cfg.Preview.Enabled {
			fetcher = preview.NewFetcher(time.Duration(cfg.Preview.RequestTimeoutSeconds) * time.Second)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		err = chat.Run(ctx, chat.Deps{
			Store:     messages,
			Events:    events,
			Responder: responder,
			Registry:  bubble.NewRegistry(),
			Previews:  fetcher,
			OpenChat:  openChatName,
		})

		cancel()
		responder.Wait()

		if err != nil {
			fmt.Printf("chat ui failed: %v\n", err)
		}
	},
}

func init() {
	chatCmd.Flags().StringVar(&openChatName, "chat", "", "open the named conversation directly")
	rootCmd.AddCommand(chatCmd)
}

// buildLogger sends log output to CHATPOP_LOG_FILE when set. With no file
// the logs are discarded: the TUI owns the terminal, and interleaved log
// lines would corrupt the frame.
func buildLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	path := strings.TrimSpace(os.Getenv("CHATPOP_LOG_FILE"))
	if path == "" {
		log, err := logger.NewWithWriter(cfg.Logging, io.Discard)
		return log, func() {}, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	log, err := logger.NewWithWriter(cfg.Logging, file)
	if err != nil {
		file.Close()
		return nil, nil, err
	}

	return log, func() { file.Close() }, nil
}
