package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"axon/internal/runstore"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded launch history",
	}

	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	runsCmd.AddCommand(newRunsClearCommand(ctx))

	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent invocations",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			items, err := store.ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, items)
			}

			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recorded invocations")
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, inv := range items {
				rows = append(rows, []string{
					strconv.FormatInt(inv.ID, 10),
					shortRunID(inv.RunID),
					string(inv.Kind),
					invocationRole(inv),
					string(inv.Status),
					exitCodeCell(inv),
					durationCell(inv),
					inv.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]tableColumn{
					{name: "ID", right: true},
					{name: "Run"},
					{name: "Kind"},
					{name: "Role"},
					{name: "Status"},
					{name: "Exit", right: true},
					{name: "Duration", right: true},
					{name: "Created"},
				},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of invocations to list")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one invocation in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid invocation id %q", args[0])
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			inv, err := store.GetByID(cmd.Context(), id)
			if errors.Is(err, runstore.ErrNotFound) {
				return fmt.Errorf("invocation %d not found", id)
			}
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, inv)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader(fmt.Sprintf("Invocation %d", inv.ID), colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Run", statusInfo, inv.RunID, colorize))
			fmt.Fprintln(out, renderStatusLine("Kind", statusInfo, string(inv.Kind), colorize))
			fmt.Fprintln(out, renderStatusLine("Role", statusInfo, invocationRole(inv), colorize))
			fmt.Fprintln(out, renderStatusLine("Status", statusKindFor(inv.Status), string(inv.Status), colorize))
			fmt.Fprintln(out, renderStatusLine("Exit code", statusInfo, exitCodeCell(inv), colorize))
			if inv.PID > 0 {
				fmt.Fprintln(out, renderStatusLine("PID", statusInfo, strconv.Itoa(inv.PID), colorize))
			}
			if d := inv.Duration(); d > 0 {
				fmt.Fprintln(out, renderStatusLine("Duration", statusInfo, d.Round(time.Second).String(), colorize))
			}
			if inv.LogPath != "" {
				fmt.Fprintln(out, renderStatusLine("Log", statusInfo, inv.LogPath, colorize))
			}
			fmt.Fprintln(out, renderStatusLine("Command", statusInfo, inv.Command, colorize))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")
	return cmd
}

func newRunsClearCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove finished invocations from the history",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context(), all)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d invocations\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Also remove pending and running invocations")
	return cmd
}

func invocationRole(inv *runstore.Invocation) string {
	if inv.Foreground {
		return "foreground"
	}
	return fmt.Sprintf("worker %d", inv.Slot)
}

func shortRunID(runID string) string {
	if len(runID) <= 8 {
		return runID
	}
	return runID[:8]
}

func exitCodeCell(inv *runstore.Invocation) string {
	if inv.ExitCode == nil {
		return "-"
	}
	return strconv.Itoa(*inv.ExitCode)
}

func durationCell(inv *runstore.Invocation) string {
	d := inv.Duration()
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Second).String()
}

func statusKindFor(status runstore.Status) statusKind {
	switch status {
	case runstore.StatusCompleted:
		return statusOK
	case runstore.StatusFailed:
		return statusError
	case runstore.StatusRunning:
		return statusInfo
	default:
		return statusWarn
	}
}
