package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lampstand/commentary/pkg/commentary"
	"github.com/lampstand/commentary/pkg/ingest"
)

// Ingestion runs against the database directly: it is an offline batch
// pass, not an API operation.
var (
	ingestDBType    string
	ingestDBDSN     string
	ingestSourceKey string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <dir-or-file>",
	Short: "Parse curated source documents into segments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		segments, err := openSegmentStore()
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		ing := ingest.NewIngestor(segments, ingestSourceKey, logger)

		info, err := os.Stat(args[0])
		if err != nil {
			return err
		}
		if info.IsDir() {
			stats, err := ing.IngestDir(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("ingest failed: %w", err)
			}
			fmt.Printf("Ingested %d segments from %d files (%d skipped)\n",
				stats.Segments, stats.Files, stats.Skipped)
			return nil
		}

		n, err := ing.IngestFile(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		fmt.Printf("Ingested %d segments\n", n)
		return nil
	},
}

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Re-derive verse fields for half-null segments from their raw anchor lines",
	RunE: func(cmd *cobra.Command, args []string) error {
		segments, err := openSegmentStore()
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		stats, err := ingest.NewRepairer(segments, logger).Repair(cmd.Context(), ingestSourceKey)
		if err != nil {
			return fmt.Errorf("repair failed: %w", err)
		}
		fmt.Printf("Repaired %d of %d candidates (%d unparsable)\n",
			stats.Repaired, stats.Candidates, stats.Unparsable)
		return nil
	},
}

func openSegmentStore() (*commentary.SegmentStore, error) {
	dsn := ingestDBDSN
	if dsn == "" {
		dsn = os.Getenv("COMMENTARY_DB_DSN")
	}
	if dsn == "" {
		return nil, fmt.Errorf("database DSN is required (use --db-dsn or COMMENTARY_DB_DSN)")
	}

	var dialector gorm.Dialector
	switch ingestDBType {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type %q", ingestDBType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := commentary.NewSegmentStore(db)
	if err := store.AutoMigrate(); err != nil {
		return nil, err
	}
	return store, nil
}

func init() {
	for _, cmd := range []*cobra.Command{ingestCmd, repairCmd} {
		cmd.Flags().StringVar(&ingestDBType, "db-type", "sqlite", "Database type (postgres, mysql, or sqlite)")
		cmd.Flags().StringVar(&ingestDBDSN, "db-dsn", "", "Database connection string")
		cmd.Flags().StringVar(&ingestSourceKey, "source", "default", "Source key the segments belong to")
	}

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(repairCmd)
}
