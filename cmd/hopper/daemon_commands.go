package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hopper/internal/daemonctl"
	"hopper/internal/ledger"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the hopper daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.EnsureStarted(
				ctx.socketPath(),
				exe,
				daemonLaunchOptions(ctx),
				10*time.Second,
			)
			if err != nil {
				return err
			}

			if result.Launched {
				fmt.Fprintln(stdout, "Daemon not running, launching...")
			}

			switch result.State {
			case daemonctl.StartStateStarted:
				fmt.Fprintln(stdout, "Daemon started")
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Daemon already running")
			case daemonctl.StartStateRequested:
				if strings.TrimSpace(result.Message) != "" {
					fmt.Fprintln(stdout, result.Message)
					return nil
				}
				fmt.Fprintln(stdout, "Start request sent")
			}
			return nil
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the hopper daemon (completely terminates the process)",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			result, err := daemonctl.StopAndTerminate(ctx.socketPath(), ctx.configValue(), 5*time.Second)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if !result.StopAcknowledged {
				fmt.Fprintln(stdout, "Stop request sent")
			} else {
				fmt.Fprintln(stdout, "Stopping ingestion pipeline...")
			}
			if result.ForcedKill && result.PID > 0 {
				fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", result.PID)
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and ledger status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			statusResp, err := daemonctl.BuildStatusSnapshot(cmd.Context(), ctx.socketPath(), cfg)
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(stdout, line)
			}
			runningKind := statusError
			runningMessage := "Not running"
			if statusResp.Running {
				runningKind = statusOK
				runningMessage = "Running"
				if statusResp.PID > 0 {
					runningMessage = fmt.Sprintf("Running (pid %d)", statusResp.PID)
				}
			}
			fmt.Fprintln(stdout, renderStatusLine("Hopper", runningKind, runningMessage, colorize))
			if statusResp.Running {
				fmt.Fprintln(stdout, renderStatusLine("Worker", statusInfo, statusResp.WorkerState, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Queue depth", statusInfo, strconv.Itoa(statusResp.QueueDepth), colorize))
			}
			if statusResp.WatchDir != "" {
				fmt.Fprintln(stdout, renderStatusLine("Watch directory", statusInfo, statusResp.WatchDir, colorize))
			}
			if statusResp.LedgerDBPath != "" {
				fmt.Fprintln(stdout, renderStatusLine("Ledger database", statusInfo, statusResp.LedgerDBPath, colorize))
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Ledger", colorize) {
				fmt.Fprintln(stdout, line)
			}
			rows := buildLedgerStatsRows(statusResp.LedgerStats)
			if len(rows) == 0 {
				fmt.Fprintln(stdout, "Ledger is empty")
				return nil
			}
			table := renderTable([]string{"Outcome", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
			fmt.Fprint(stdout, table)
			return nil
		},
	}

	restartCmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the hopper daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.Restart(
				ctx.socketPath(),
				ctx.configValue(),
				exe,
				daemonLaunchOptions(ctx),
				5*time.Second,
				10*time.Second,
			)
			if err != nil {
				return err
			}

			if result.WasRunning {
				if result.Stop.ForcedKill && result.Stop.PID > 0 {
					fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", result.Stop.PID)
				}
				fmt.Fprintln(stdout, "Daemon stopped")
			}

			switch result.Start.State {
			case daemonctl.StartStateStarted, daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Daemon restarted")
			case daemonctl.StartStateRequested:
				if strings.TrimSpace(result.Start.Message) != "" {
					fmt.Fprintln(stdout, result.Start.Message)
					return nil
				}
				fmt.Fprintln(stdout, "Start request sent")
			}
			return nil
		},
	}

	return []*cobra.Command{startCmd, stopCmd, restartCmd, statusCmd}
}

// buildLedgerStatsRows orders rows by the canonical outcome order, with any
// unrecognized outcomes sorted alphabetically at the end.
func buildLedgerStatsRows(stats map[string]int) [][]string {
	if len(stats) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(stats))
	seen := make(map[string]struct{}, len(stats))
	for _, outcome := range ledger.Outcomes() {
		count, ok := stats[string(outcome)]
		if !ok {
			continue
		}
		seen[string(outcome)] = struct{}{}
		rows = append(rows, []string{outcomeLabel(string(outcome)), strconv.Itoa(count)})
	}

	rest := make([]string, 0)
	for outcome := range stats {
		if _, ok := seen[outcome]; !ok {
			rest = append(rest, outcome)
		}
	}
	sort.Strings(rest)
	for _, outcome := range rest {
		rows = append(rows, []string{outcomeLabel(outcome), strconv.Itoa(stats[outcome])})
	}
	return rows
}

func daemonExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return exe, nil
}

func daemonLaunchOptions(ctx *commandContext) daemonctl.LaunchOptions {
	opts := daemonctl.LaunchOptions{}
	if ctx.socketFlag != nil {
		if socket := strings.TrimSpace(*ctx.socketFlag); socket != "" {
			opts.SocketPath = socket
		}
	}
	if ctx.configFlag != nil {
		if config := strings.TrimSpace(*ctx.configFlag); config != "" {
			opts.ConfigPath = config
		}
	}
	return opts
}
