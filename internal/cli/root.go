// Package cli is the offline inspection tool for the bot's datastore: it
// prints moderation cases, notes and command history without connecting
// to Discord.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"server-warden/internal/storage"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	StoragePath string
	Format      string // "json" | "text"
}

var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the inspection CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "warden",
		Short: "Inspect the moderation bot datastore",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.StoragePath, "storage", "s", "datastore.json", "path to the datastore file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewCasesCommand(opts))
	cmd.AddCommand(NewNotesCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// withStorage opens the datastore for the duration of fn.
func withStorage(opts *RootOptions, fn func(*storage.Storage) error) error {
	if _, err := os.Stat(opts.StoragePath); err != nil {
		return fmt.Errorf("datastore not found: %w", err)
	}
	store, err := storage.New(opts.StoragePath, zerolog.Nop())
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
