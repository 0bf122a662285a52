package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"axon/internal/logging"
	"axon/internal/runstore"
	"axon/internal/services/pointnet"
	"axon/internal/setup"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	classifyCmd := &cobra.Command{
		Use:   "classify",
		Short: "Point-cloud classification test",
	}

	classifyCmd.AddCommand(newClassifyRunCommand(ctx))

	return classifyCmd
}

func newClassifyRunCommand(ctx *commandContext) *cobra.Command {
	var logDirFlag string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the biological classification test",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			// The test script needs its point-cloud file library; install
			// failures are reported but do not block the run.
			if pkg := strings.TrimSpace(cfg.Classification.Package); pkg != "" {
				installer := setup.NewInstaller(setup.Options{
					Interpreter: cfg.Python.Interpreter,
					HTTPSProxy:  cfg.Proxy.HTTPSProxy,
					Packages:    []string{pkg},
				}, ctx.ensureLogger())
				if _, err := installer.Run(cmd.Context()); err != nil {
					ctx.ensureLogger().Warn("package install failed", logging.Error(err))
				}
			}

			opts := []pointnet.Option{
				pointnet.WithInterpreter(cfg.Python.Interpreter),
			}
			if proxy := cfg.Proxy.HTTPSProxy; proxy != "" {
				opts = append(opts, pointnet.WithEnv("https_proxy="+proxy, "HTTPS_PROXY="+proxy))
			}
			cli := pointnet.NewCLI(cfg.Classification.ProjectDir, cfg.Classification.Script, opts...)

			params := pointnet.Params{
				Model:        cfg.Classification.Model,
				LogDir:       cfg.Classification.LogDir,
				NumGPUs:      cfg.Classification.NumGPUs,
				BatchSize:    cfg.Classification.BatchSize,
				LearningRate: cfg.Classification.LearningRate,
				ImageFeature: cfg.Classification.ImageFeatureDir,
				NumPoint:     cfg.Classification.NumPoint,
			}
			if strings.TrimSpace(logDirFlag) != "" {
				params.LogDir = logDirFlag
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			runID := uuid.NewString()
			command := strings.Join(append([]string{cfg.Python.Interpreter}, cli.BuildArgs(params)...), " ")
			logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("classify-%s.log", runID))

			record, storeErr := store.NewInvocation(cmd.Context(), runID, runstore.KindClassify, 0, true, command, logPath)
			if storeErr == nil {
				if err := store.MarkStarted(cmd.Context(), record.ID, os.Getpid()); err != nil {
					ctx.ensureLogger().Warn("failed to mark invocation started", logging.Error(err))
				}
			} else {
				ctx.ensureLogger().Warn("failed to record invocation", logging.Error(storeErr))
			}

			var output io.Writer = cmd.OutOrStdout()
			logFile, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
			if err == nil {
				defer logFile.Close()
				output = io.MultiWriter(output, logFile)
			}

			runErr := cli.Run(cmd.Context(), params, output)
			if record != nil {
				if err := store.MarkFinished(cmd.Context(), record.ID, classifyExitCode(runErr)); err != nil {
					ctx.ensureLogger().Warn("failed to mark invocation finished", logging.Error(err))
				}
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&logDirFlag, "log-dir", "", "Override the model log directory passed to the test script")
	return cmd
}

func classifyExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
