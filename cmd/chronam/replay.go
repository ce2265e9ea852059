// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/chronam/internal/sink"
	"github.com/pdiddy/chronam/pkg/types"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Print records saved by an earlier search",
	Long: `Replay prints the records of a YAML run file or SQLite database written by
"search --write" to the console, without querying the API. For a SQLite
database, --phrase selects one search; without it every stored page is
printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().String("phrase", "", "phrase to select from a SQLite database")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	path := args[0]
	phrase, _ := cmd.Flags().GetString("phrase")

	var records []types.Record
	switch filepath.Ext(path) {
	case ".db", ".sqlite":
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		db, err := sink.OpenSQLite(path, phrase)
		if err != nil {
			return err
		}
		defer db.Close()
		records, err = db.Records(cmd.Context())
		if err != nil {
			return err
		}
	default:
		run, err := sink.ReadRunFile(path)
		if err != nil {
			return err
		}
		records = run.Records
		if phrase == "" {
			phrase = run.Query.Phrase
		}
	}

	console := sink.NewConsole(cmd.OutOrStdout(), viper.GetString("search.base_url"), phrase)
	for _, rec := range records {
		if err := console.Emit(rec); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d records replayed from %s\n", len(records), path)
	return nil
}
