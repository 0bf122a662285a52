package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"axon/internal/deps"
	"axon/internal/setup"
)

func newSetupCommand(ctx *commandContext) *cobra.Command {
	setupCmd := &cobra.Command{
		Use:   "setup",
		Short: "Prepare the Python environment for the pipelines",
	}

	setupCmd.AddCommand(newSetupRunCommand(ctx))
	setupCmd.AddCommand(newSetupCheckCommand(ctx))

	return setupCmd
}

func newSetupRunCommand(ctx *commandContext) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Install the Python packages the pipelines need",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			installer := setup.NewInstaller(setup.Options{
				Interpreter: cfg.Python.Interpreter,
				HTTPSProxy:  cfg.Proxy.HTTPSProxy,
				UpgradePip:  cfg.Setup.UpgradePip,
				Packages:    cfg.Setup.Packages,
				Strict:      strict || cfg.Setup.Strict,
			}, ctx.ensureLogger())

			results, err := installer.Run(cmd.Context())

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Environment setup", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, result := range results {
				kind := statusOK
				message := ""
				if result.Err != nil {
					kind = statusError
					message = result.Err.Error()
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, message, colorize))
			}
			if err != nil {
				return err
			}
			if failed := setup.Failed(results); len(failed) > 0 {
				fmt.Fprintf(out, "\n%d of %d steps failed\n", len(failed), len(results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Abort on the first failed step")
	return cmd
}

func newSetupCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check external binaries and Python modules",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.Defaults(cfg.Python.Interpreter))
			for _, pkg := range cfg.Setup.Packages {
				module := pipPackageToModule(pkg)
				statuses = append(statuses, deps.CheckModule(cmd.Context(), cfg.Python.Interpreter, module))
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Dependency check", colorize) {
				fmt.Fprintln(out, line)
			}

			missing := 0
			for _, status := range statuses {
				kind := statusOK
				message := ""
				switch {
				case status.Available:
				case status.Optional:
					kind = statusWarn
					message = status.Detail
				default:
					kind = statusError
					message = status.Detail
					missing++
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, message, colorize))
			}
			if missing > 0 {
				return fmt.Errorf("%d required dependencies missing", missing)
			}
			return nil
		},
	}
}

// pipPackageToModule maps a pip distribution name to its import name. Pip
// names use hyphens where import paths use underscores; version pins and
// extras are stripped.
func pipPackageToModule(pkg string) string {
	name := strings.TrimSpace(pkg)
	for _, sep := range []string{"==", ">=", "<=", "~=", "[", ">"} {
		if idx := strings.Index(name, sep); idx >= 0 {
			name = name[:idx]
		}
	}
	name = strings.ReplaceAll(name, "-", "_")
	// The connected-components package installs as cc3d.
	if name == "connected_components_3d" {
		return "cc3d"
	}
	return name
}
