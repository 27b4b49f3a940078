package cli

import (
	"strings"

	"github.com/JonMunkholm/datasets/internal/core"
	"github.com/spf13/cobra"
)

func newSummaryCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show row counts and numeric column statistics per table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := opts.loadStore(cmd.Context(), cmd.ErrOrStderr())
			sum := core.Summarize(store)
			if opts.output == OutputJSON {
				return renderJSON(cmd.OutOrStdout(), sum)
			}
			renderSummary(cmd.OutOrStdout(), sum)
			return nil
		},
	}
}

func newGroupCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "group <table> <field>",
		Short: "Count the rows of a table by the value of one field",
		Example: `  dsctl group factors State
  dsctl group treatment Drug -o json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, field := args[0], args[1]
			if strings.TrimSpace(field) == "" {
				return core.ErrMissingField
			}

			store := opts.loadStore(cmd.Context(), cmd.ErrOrStderr())
			t, err := store.Lookup(name)
			if err != nil {
				return err
			}

			result := core.GroupBy(t, field)
			if opts.output == OutputJSON {
				return renderJSON(cmd.OutOrStdout(), result)
			}
			renderGroups(cmd.OutOrStdout(), field, result)
			return nil
		},
	}
}

func newTablesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List loaded tables with their row counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := opts.loadStore(cmd.Context(), cmd.ErrOrStderr())
			counts := store.RowCounts()

			entries := make([]tableEntry, 0, len(counts))
			for _, name := range store.Names() {
				entries = append(entries, tableEntry{Name: name, Rows: counts[name]})
			}
			if opts.output == OutputJSON {
				return renderJSON(cmd.OutOrStdout(), entries)
			}
			renderTables(cmd.OutOrStdout(), entries)
			return nil
		},
	}
}

type tableEntry struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}
