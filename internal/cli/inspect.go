package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"server-warden/internal/storage"

	"github.com/spf13/cobra"
)

func NewCasesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cases <guild-id>",
		Short: "List the moderation cases of a guild",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(opts, func(s *storage.Storage) error {
				entries, err := s.AuditEntries(args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if opts.Format == "json" {
					return writeJSON(out, entries)
				}
				logChannel, err := s.LogChannel(args[0])
				if err != nil {
					return err
				}
				if logChannel != "" {
					fmt.Fprintf(out, "log channel: %s\n", logChannel)
				}
				return table(out, []string{"CASE", "ACTION", "TARGET", "MODERATOR", "REASON", "AT"}, len(entries), func(i int) []any {
					e := entries[i]
					return []any{e.CaseNumber, e.Action, e.TargetName, e.ModeratorName, e.Reason, e.CreatedAt.Format(time.DateTime)}
				})
			})
		},
	}
}

func NewNotesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "notes <guild-id> <user-id>",
		Short: "List the notes stored for a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(opts, func(s *storage.Storage) error {
				notes, err := s.Notes(args[0], args[1])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if opts.Format == "json" {
					return writeJSON(out, notes)
				}
				return table(out, []string{"ID", "TYPE", "AUTHOR", "REASON", "AT"}, len(notes), func(i int) []any {
					n := notes[i]
					return []any{n.ID, n.Type, n.AuthorID, n.Reason, n.CreatedAt.Format(time.DateTime)}
				})
			})
		},
	}
}

func NewHistoryCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <guild-id>",
		Short: "Show the most recent commands run in a guild",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(opts, func(s *storage.Storage) error {
				history, err := s.FetchCommandHistory(args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if opts.Format == "json" {
					return writeJSON(out, history)
				}
				return table(out, []string{"AT", "USER", "COMMAND", "ARGS"}, len(history), func(i int) []any {
					h := history[i]
					return []any{h.Datetime.Format(time.DateTime), h.Username, h.Command, h.Param}
				})
			})
		},
	}
}

func table(w io.Writer, header []string, rows int, row func(i int) []any) error {
	if rows == 0 {
		_, err := fmt.Fprintln(w, "nothing recorded")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, h := range header {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	fmt.Fprintln(tw)
	for i := 0; i < rows; i++ {
		for j, v := range row(i) {
			if j > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, v)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
