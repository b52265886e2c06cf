package main

import (
	"os"

	"github.com/spf13/cobra"
)

const apiBase = "/api/commentary/v1"

var (
	serverURL  string
	outputFmt  string
	callerID   string
	callerRole string
)

var rootCmd = &cobra.Command{
	Use:   "commentaryctl",
	Short: "CLI for the commentary server",
	Long: `commentaryctl drives the commentary server: authoring and moderating
contributor entries, inspecting the review queue, resolving what
commentary applies to a reference, and running the offline source
ingestion and repair passes.

Identity is asserted with --user and --role (or the COMMENTARY_USER and
COMMENTARY_ROLE environment variables), matching the server's
header-based development auth.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Commentary server URL")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&callerID, "user", "", "User ID to act as (default: COMMENTARY_USER env)")
	rootCmd.PersistentFlags().StringVar(&callerRole, "role", "", "Role to act as: USER, CONTRIBUTOR, ADMIN (default: COMMENTARY_ROLE env)")
}

// resolvedCaller returns the effective identity.
// Priority: flags > COMMENTARY_USER / COMMENTARY_ROLE env vars.
func resolvedCaller() (id, role string) {
	id, role = callerID, callerRole
	if id == "" {
		id = os.Getenv("COMMENTARY_USER")
	}
	if role == "" {
		role = os.Getenv("COMMENTARY_ROLE")
	}
	return id, role
}
