package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lampstand/commentary/pkg/commentary"
)

var (
	resolveBook    string
	resolveChapter int
	resolveVerse   int
	resolveMode    string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show the commentary that applies to a reference",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		q := url.Values{}
		q.Set("book", resolveBook)
		q.Set("chapter", strconv.Itoa(resolveChapter))
		if resolveVerse > 0 {
			q.Set("verse", strconv.Itoa(resolveVerse))
		}
		if resolveMode != "" {
			q.Set("mode", resolveMode)
		}

		var result commentary.Resolution
		if err := client.getJSON(apiBase+"/resolve?"+q.Encode(), &result); err != nil {
			return fmt.Errorf("failed to resolve: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}

		headers := []string{"Kind", "Heading/Author", "Status", "Content"}
		rows := make([][]string, 0, len(result.SourceSegments)+len(result.ContributorEntries))
		for _, s := range result.SourceSegments {
			rows = append(rows, []string{"segment", s.Heading, "-", truncate(s.Content, 60)})
		}
		for _, e := range result.ContributorEntries {
			rows = append(rows, []string{"entry", e.AuthorID, string(e.Status), truncate(e.Content, 60)})
		}
		printTable(headers, rows)
		fmt.Printf("Segments: %d, Entries: %d\n", len(result.SourceSegments), len(result.ContributorEntries))
		return nil
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveBook, "book", "", "Book name or slug")
	resolveCmd.Flags().IntVar(&resolveChapter, "chapter", 0, "Chapter number")
	resolveCmd.Flags().IntVar(&resolveVerse, "verse", 0, "Verse number (omit for the whole chapter)")
	resolveCmd.Flags().StringVar(&resolveMode, "mode", "", "Entry match mode: verse, chapter, union")
	_ = resolveCmd.MarkFlagRequired("book")
	_ = resolveCmd.MarkFlagRequired("chapter")

	rootCmd.AddCommand(resolveCmd)
}
