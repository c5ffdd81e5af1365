/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chatpop",
	Short: "A terminal messenger with an AI contact on the other end",
	Long: `chatpop renders an iMessage-style inbox and conversation in the
terminal. The contact replies through a configured completion provider
(or a built-in mock) and occasionally shares music.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
