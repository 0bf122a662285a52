package embedding

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func testInvocation(logPath string) Invocation {
	return Invocation{
		ConfigBase: "configs/base.yaml",
		ConfigFile: "configs/embedding.yaml",
		Overrides: Overrides{
			NumCPUs:         4,
			InPlanes:        1,
			OutPlanes:       16,
			InputPath:       "/data/blocks",
			OutputPath:      "/data/embeddings",
			Checkpoint:      "/data/ckpt.pth.tar",
			SamplesPerBatch: 16,
		},
		LogPath: logPath,
	}
}

func TestBuildArgsOrder(t *testing.T) {
	cli := NewCLI("main.py")
	args := cli.BuildArgs(testInvocation(""))

	want := []string{
		"main.py",
		"--config-base", "configs/base.yaml",
		"--config-file", "configs/embedding.yaml",
		"--inference",
		"SYSTEM.NUM_CPUS", "4",
		"MODEL.IN_PLANES", "1",
		"MODEL.OUT_PLANES", "16",
		"INFERENCE.INPUT_PATH", "/data/blocks",
		"INFERENCE.OUTPUT_PATH", "/data/embeddings",
		"INFERENCE.CHECKPOINT_PATH", "/data/ckpt.pth.tar",
		"INFERENCE.SAMPLES_PER_BATCH", "16",
	}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("argument vector mismatch:\n got %v\nwant %v", args, want)
	}
}

func TestBuildArgsIdenticalAcrossInvocations(t *testing.T) {
	cli := NewCLI("main.py")
	inv := testInvocation("")
	first := strings.Join(cli.BuildArgs(inv), " ")
	for i := 0; i < 5; i++ {
		if got := strings.Join(cli.BuildArgs(inv), " "); got != first {
			t.Fatalf("invocation %d differs: %q vs %q", i, got, first)
		}
	}
}

func TestStartValidatesInvocation(t *testing.T) {
	cli := NewCLI("main.py")
	inv := testInvocation("")
	inv.ConfigBase = ""
	if _, err := cli.Start(context.Background(), inv); err == nil {
		t.Fatal("expected error for missing config base")
	}

	inv = testInvocation("")
	inv.Overrides.OutputPath = ""
	if _, err := cli.Start(context.Background(), inv); err == nil {
		t.Fatal("expected error for missing output path")
	}
}

func TestStartWritesLogAndWaits(t *testing.T) {
	restore := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c", "echo inference running")
	}
	t.Cleanup(func() { commandContext = restore })

	logPath := filepath.Join(t.TempDir(), "worker-0.log")
	cli := NewCLI("main.py", WithInterpreter("python3"))
	proc, err := cli.Start(context.Background(), testInvocation(logPath))
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if proc.PID() <= 0 {
		t.Fatalf("expected positive pid, got %d", proc.PID())
	}
	if proc.Args()[0] != "python3" {
		t.Fatalf("expected interpreter first in command line, got %v", proc.Args())
	}
	if err := proc.Wait(); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "inference running") {
		t.Fatalf("log missing child output: %q", string(data))
	}
}

func TestStartPropagatesFailure(t *testing.T) {
	restore := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c", "exit 3")
	}
	t.Cleanup(func() { commandContext = restore })

	cli := NewCLI("main.py")
	proc, err := cli.Start(context.Background(), testInvocation(""))
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := proc.Wait(); err == nil {
		t.Fatal("expected non-zero exit to surface from Wait")
	}
}
