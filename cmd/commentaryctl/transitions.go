package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lampstand/commentary/pkg/commentary"
)

type transitionResult struct {
	Entry   *commentary.CommentaryEntry `json:"entry"`
	Allowed []commentary.Status         `json:"allowedTransitions"`
}

func runTransition(entryID string, target commentary.Status, reason string) error {
	client := newClient()

	body := map[string]any{
		"target": string(target),
		"reason": reason,
	}

	var result transitionResult
	if err := client.postJSON(apiBase+"/entries/"+entryID+"/transition", body, &result); err != nil {
		return fmt.Errorf("transition failed: %w", err)
	}

	if outputFmt == "json" || outputFmt == "yaml" {
		return printOutput(result)
	}
	fmt.Printf("%s is now %s", result.Entry.ID, result.Entry.Status)
	if len(result.Allowed) > 0 {
		fmt.Printf(" (next: %v)", result.Allowed)
	}
	fmt.Println()
	return nil
}

var submitCmd = &cobra.Command{
	Use:   "submit <id>",
	Short: "Submit a draft entry for review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(args[0], commentary.StatusPendingReview, "")
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish <id>",
	Short: "Publish an entry (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(args[0], commentary.StatusPublished, "")
	},
}

var rejectReason string

var rejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject a pending entry with a reason (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(args[0], commentary.StatusRejected, rejectReason)
	},
}

var reopenCmd = &cobra.Command{
	Use:   "reopen <id>",
	Short: "Return an entry to draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(args[0], commentary.StatusDraft, "")
	},
}

func init() {
	rejectCmd.Flags().StringVar(&rejectReason, "reason", "", "Rejection reason (required)")
	_ = rejectCmd.MarkFlagRequired("reason")

	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(rejectCmd)
	rootCmd.AddCommand(reopenCmd)
}
