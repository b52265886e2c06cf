package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lampstand/commentary/pkg/commentary"
)

var reviewQueueCmd = &cobra.Command{
	Use:   "review-queue",
	Short: "List entries awaiting review, oldest first (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var result struct {
			Entries []commentary.CommentaryEntry `json:"entries"`
		}
		if err := client.getJSON(apiBase+"/review-queue", &result); err != nil {
			return fmt.Errorf("failed to list review queue: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}
		printEntryTable(result.Entries)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reviewQueueCmd)
}
