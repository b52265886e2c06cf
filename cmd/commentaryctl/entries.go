package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lampstand/commentary/pkg/commentary"
)

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "Author and moderate commentary entries",
}

var (
	createBook    string
	createChapter int
	createVerse   int
	createContent string
)

var entriesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new draft entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		body := map[string]any{
			"book":    createBook,
			"chapter": createChapter,
			"content": createContent,
		}
		if createVerse > 0 {
			body["verse"] = createVerse
		}

		var entry commentary.CommentaryEntry
		if err := client.postJSON(apiBase+"/entries", body, &entry); err != nil {
			return fmt.Errorf("failed to create entry: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(entry)
		}
		fmt.Printf("Created %s (%s)\n", entry.ID, entry.Status)
		return nil
	},
}

var entriesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a single entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var entry commentary.CommentaryEntry
		if err := client.getJSON(apiBase+"/entries/"+args[0], &entry); err != nil {
			return fmt.Errorf("failed to get entry: %w", err)
		}
		return printOutput(entry)
	},
}

var editContent string

var entriesEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Replace an entry's content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var entry commentary.CommentaryEntry
		if err := client.patchJSON(apiBase+"/entries/"+args[0], map[string]any{"content": editContent}, &entry); err != nil {
			return fmt.Errorf("failed to edit entry: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(entry)
		}
		fmt.Printf("Updated %s (%s)\n", entry.ID, entry.Status)
		return nil
	},
}

var entriesMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List your own entries in every status",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var result struct {
			Entries []commentary.CommentaryEntry `json:"entries"`
		}
		if err := client.getJSON(apiBase+"/entries/mine", &result); err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}
		printEntryTable(result.Entries)
		return nil
	},
}

var entriesHistoryCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show an entry's audit trail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var result struct {
			Events        []map[string]any `json:"events"`
			NextPageToken string           `json:"nextPageToken"`
		}
		if err := client.getJSON(apiBase+"/entries/"+args[0]+"/history", &result); err != nil {
			return fmt.Errorf("failed to get history: %w", err)
		}
		return printOutput(result)
	},
}

func printEntryTable(entries []commentary.CommentaryEntry) {
	headers := []string{"ID", "Reference", "Status", "Author", "Updated", "Content"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		ref := fmt.Sprintf("%s %d", e.Book, e.Chapter)
		if e.Verse != nil {
			ref = fmt.Sprintf("%s:%d", ref, *e.Verse)
		}
		rows = append(rows, []string{
			truncate(e.ID, 12),
			ref,
			string(e.Status),
			e.AuthorID,
			e.UpdatedAt.Format(time.RFC3339),
			truncate(e.Content, 40),
		})
	}
	printTable(headers, rows)
	fmt.Printf("Total: %d\n", len(entries))
}

func init() {
	entriesCreateCmd.Flags().StringVar(&createBook, "book", "", "Book name or slug")
	entriesCreateCmd.Flags().IntVar(&createChapter, "chapter", 0, "Chapter number")
	entriesCreateCmd.Flags().IntVar(&createVerse, "verse", 0, "Verse number (omit for a chapter-level entry)")
	entriesCreateCmd.Flags().StringVar(&createContent, "content", "", "Entry content")
	_ = entriesCreateCmd.MarkFlagRequired("book")
	_ = entriesCreateCmd.MarkFlagRequired("chapter")
	_ = entriesCreateCmd.MarkFlagRequired("content")

	entriesEditCmd.Flags().StringVar(&editContent, "content", "", "Replacement content")
	_ = entriesEditCmd.MarkFlagRequired("content")

	entriesCmd.AddCommand(entriesCreateCmd)
	entriesCmd.AddCommand(entriesGetCmd)
	entriesCmd.AddCommand(entriesEditCmd)
	entriesCmd.AddCommand(entriesMineCmd)
	entriesCmd.AddCommand(entriesHistoryCmd)

	rootCmd.AddCommand(entriesCmd)
}
