package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"axon/internal/checkpoint"
	"axon/internal/launcher"
	"axon/internal/services/embedding"
)

func newEmbedCommand(ctx *commandContext) *cobra.Command {
	embedCmd := &cobra.Command{
		Use:   "embed",
		Short: "Image-embedding extraction",
	}

	embedCmd.AddCommand(newEmbedRunCommand(ctx))

	return embedCmd
}

func newEmbedRunCommand(ctx *commandContext) *cobra.Command {
	var (
		workers   int
		stagger   int
		settle    int
		readiness bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the staggered embedding extraction",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.ensureLogger()

			resolver := checkpoint.NewResolver(cfg.Paths.CacheDir, cfg.Checkpoint, logger)
			ckpt, err := resolver.Resolve(cmd.Context(), cfg.Embedding.Checkpoint)
			if err != nil {
				return fmt.Errorf("resolve checkpoint: %w", err)
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			opts := []embedding.Option{
				embedding.WithInterpreter(cfg.Python.Interpreter),
			}
			if cfg.Embedding.WorkDir != "" {
				opts = append(opts, embedding.WithWorkDir(cfg.Embedding.WorkDir))
			}
			if proxy := cfg.Proxy.HTTPSProxy; proxy != "" {
				opts = append(opts, embedding.WithEnv("https_proxy="+proxy, "HTTPS_PROXY="+proxy))
			}
			cli := embedding.NewCLI(cfg.Embedding.Script, opts...)

			if workers <= 0 {
				workers = cfg.Embedding.Workers
			}
			if stagger < 0 {
				stagger = cfg.Embedding.StaggerSeconds
			}
			if settle < 0 {
				settle = cfg.Embedding.SettleSeconds
			}

			launch := launcher.New(launcher.ClientFunc(func(ctx context.Context, inv embedding.Invocation) (launcher.Process, error) {
				return cli.Start(ctx, inv)
			}), store, logger)

			result, err := launch.Run(cmd.Context(), launcher.Options{
				Workers:          workers,
				Stagger:          time.Duration(stagger) * time.Second,
				Settle:           time.Duration(settle) * time.Second,
				Readiness:        readiness || cfg.Embedding.Readiness,
				ReadinessTimeout: time.Duration(cfg.Embedding.ReadinessTimeout) * time.Second,
				MinFreeGiB:       cfg.Embedding.MinFreeGiB,
				Invocation: embedding.Invocation{
					ConfigBase: cfg.Embedding.ConfigBase,
					ConfigFile: cfg.Embedding.ConfigFile,
					Overrides: embedding.Overrides{
						NumCPUs:         cfg.Embedding.NumCPUs,
						InPlanes:        cfg.Embedding.InPlanes,
						OutPlanes:       cfg.Embedding.OutPlanes,
						InputPath:       cfg.Embedding.InputPath,
						OutputPath:      cfg.Embedding.OutputPath,
						Checkpoint:      ckpt,
						SamplesPerBatch: cfg.Embedding.SamplesPerBatch,
					},
				},
				LogDir:   cfg.Paths.LogDir,
				LockPath: filepath.Join(cfg.Paths.LogDir, "embed.lock"),
			})
			if result != nil {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Embedding run "+result.RunID, colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Invocations", statusInfo, fmt.Sprintf("%d", result.Invocations), colorize))

				bgKind := statusOK
				if result.BackgroundFailures > 0 {
					bgKind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine("Background failures", bgKind, fmt.Sprintf("%d", result.BackgroundFailures), colorize))

				feKind := statusOK
				if result.ForegroundExit != 0 {
					feKind = statusError
				}
				fmt.Fprintln(out, renderStatusLine("Foreground exit", feKind, fmt.Sprintf("%d", result.ForegroundExit), colorize))
				fmt.Fprintln(out, renderStatusLine("Elapsed", statusInfo, result.Elapsed.Round(time.Second).String(), colorize))
			}
			return err
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Background invocations before the foreground one (default from config)")
	cmd.Flags().IntVar(&stagger, "stagger", -1, "Seconds between background launches (default from config)")
	cmd.Flags().IntVar(&settle, "settle", -1, "Seconds before the foreground launch (default from config)")
	cmd.Flags().BoolVar(&readiness, "readiness", false, "Gate delays on output-directory activity")
	return cmd
}
