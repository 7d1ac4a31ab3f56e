package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"hopper/internal/ipc"
	"hopper/internal/ledger"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the processing ledger",
	}

	ledgerCmd.AddCommand(newLedgerListCommand(ctx))
	ledgerCmd.AddCommand(newLedgerClearCommand(ctx))

	return ledgerCmd
}

func newLedgerListCommand(ctx *commandContext) *cobra.Command {
	var outcomeFilter string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List processed files and their outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := strings.ToLower(strings.TrimSpace(outcomeFilter))
			if filter != "" {
				if _, ok := ledger.ParseOutcome(filter); !ok {
					return fmt.Errorf("unknown outcome %q (valid: %s)", outcomeFilter, outcomeNames())
				}
			}

			return ctx.withLedger(func(client *ipc.Client, store *ledger.Store) error {
				var entries []ipc.LedgerEntry
				if client != nil {
					resp, err := client.LedgerList(filter, limit)
					if err != nil {
						return err
					}
					entries = resp.Entries
				} else {
					rows, err := store.List(cmd.Context(), ledger.Outcome(filter), limit)
					if err != nil {
						return err
					}
					entries = make([]ipc.LedgerEntry, 0, len(rows))
					for _, row := range rows {
						entries = append(entries, ipc.LedgerEntry{
							ID:        row.ID,
							Path:      row.Path,
							Outcome:   string(row.Outcome),
							Attempts:  row.Attempts,
							Detail:    row.Detail,
							CreatedAt: row.CreatedAt,
						})
					}
				}

				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Ledger is empty")
					return nil
				}
				table := renderTable(
					[]string{"ID", "File", "Outcome", "Probes", "Recorded", "Detail"},
					buildLedgerListRows(entries),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				)
				fmt.Fprint(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&outcomeFilter, "outcome", "", "Filter by outcome ("+outcomeNames()+")")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Limit the number of entries shown (0 = all)")
	return cmd
}

func newLedgerClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all ledger entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLedger(func(client *ipc.Client, store *ledger.Store) error {
				var removed int64
				if client != nil {
					resp, err := client.LedgerClear()
					if err != nil {
						return err
					}
					removed = resp.Removed
				} else {
					count, err := store.Clear(cmd.Context())
					if err != nil {
						return err
					}
					removed = count
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d ledger entries\n", removed)
				return nil
			})
		},
	}
}

var outcomeTitle = cases.Title(language.English)

func outcomeLabel(outcome string) string {
	return outcomeTitle.String(outcome)
}

func outcomeNames() string {
	outcomes := ledger.Outcomes()
	names := make([]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		names = append(names, string(outcome))
	}
	return strings.Join(names, ", ")
}

func buildLedgerListRows(entries []ipc.LedgerEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			strconv.FormatInt(entry.ID, 10),
			filepath.Base(entry.Path),
			outcomeLabel(entry.Outcome),
			strconv.Itoa(entry.Attempts),
			formatRecordedAt(entry.CreatedAt),
			entry.Detail,
		})
	}
	return rows
}

func formatRecordedAt(value string) string {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return value
	}
	return parsed.Local().Format("2006-01-02 15:04:05")
}
