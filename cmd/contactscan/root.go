package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for contactscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contactscan",
		Short: "Extract and score contact records from crawled pages",
		Long: `contactscan finds email addresses in crawled pages, including mailto links,
obfuscated and encoded forms, and attaches the names, titles, companies, phone
numbers and social profiles found near them. Every contact gets a confidence
score, and runs are stored so they can be compared later.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .contactscan in current, XDG config or home directory)")
	cmd.PersistentFlags().String("db-dir", "",
		"Directory of the run history database (default: XDG data directory)")

	cmd.AddCommand(NewExtractCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
