package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"axon/internal/config"
	"axon/internal/patch"
)

func newPatchCommand(ctx *commandContext) *cobra.Command {
	patchCmd := &cobra.Command{
		Use:   "patch",
		Short: "Manage the sharded-skeleton override in the volumetric library",
	}

	patchCmd.AddCommand(newPatchApplyCommand(ctx))
	patchCmd.AddCommand(newPatchRevertCommand(ctx))
	patchCmd.AddCommand(newPatchStatusCommand(ctx))

	return patchCmd
}

func patcherFromConfig(ctx *commandContext) (*patch.Patcher, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	return patch.New(patch.Options{
		Interpreter: cfg.Python.Interpreter,
		Module:      cfg.Patch.Module,
		Source:      cfg.Patch.Source,
	}, ctx.ensureLogger()), nil
}

func newPatchApplyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Back up and replace the installed module",
		RunE: func(cmd *cobra.Command, args []string) error {
			patcher, err := patcherFromConfig(ctx)
			if err != nil {
				return err
			}
			state, err := patcher.Apply(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Patched %s\n", state.Target)
			fmt.Fprintf(out, "Original saved to %s\n", state.BackupPath)
			return nil
		},
	}
}

func newPatchRevertCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "revert",
		Short: "Restore the original module from its backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			patcher, err := patcherFromConfig(ctx)
			if err != nil {
				return err
			}
			state, err := patcher.Revert(cmd.Context())
			if errors.Is(err, patch.ErrNotApplied) {
				fmt.Fprintf(cmd.OutOrStdout(), "No backup at %s; nothing to revert\n", state.BackupPath)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s\n", state.Target)
			return nil
		},
	}
}

func newPatchStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the installed module is patched",
		RunE: func(cmd *cobra.Command, args []string) error {
			patcher, err := patcherFromConfig(ctx)
			if err != nil {
				return err
			}
			state, err := patcher.Status(cmd.Context())
			if err != nil {
				return err
			}

			cfg := ctx.configValue()
			source := ""
			if cfg != nil {
				source, _ = config.ExpandPath(cfg.Patch.Source)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Patch status", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Target", statusInfo, state.Target, colorize))
			if source != "" {
				fmt.Fprintln(out, renderStatusLine("Source", statusInfo, source, colorize))
			}

			appliedKind := statusWarn
			if state.Applied {
				appliedKind = statusOK
			}
			fmt.Fprintln(out, renderStatusLine("Applied", appliedKind, yesNo(state.Applied), colorize))

			syncKind := statusWarn
			if state.InSync {
				syncKind = statusOK
			}
			fmt.Fprintln(out, renderStatusLine("In sync", syncKind, yesNo(state.InSync), colorize))
			return nil
		},
	}
}
