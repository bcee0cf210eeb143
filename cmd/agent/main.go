// Command agent runs a single task through the file-tool loop and prints the answer.
//
// Usage:
//
//	agent [flags] <task words...>
//	echo "task" | agent
//	agent -demo
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/petasbytes/fsagent/internal/config"
	"github.com/petasbytes/fsagent/internal/fsops"
	"github.com/petasbytes/fsagent/internal/provider"
	"github.com/petasbytes/fsagent/internal/runner"
	"github.com/petasbytes/fsagent/internal/safety"
	"github.com/petasbytes/fsagent/internal/telemetry"
	"github.com/petasbytes/fsagent/memory"
	"github.com/petasbytes/fsagent/tools"
)

var errNoTask = errors.New("no task given; pass it as arguments or on stdin")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("agent", flag.ContinueOnError)
	flags.SetOutput(stderr)
	demo := flags.Bool("demo", false, "seed "+demoInputFile+" in the sandbox and run the summary demo task")
	maxTurns := flags.Int("max-turns", 0, "override AGT_MAX_TURNS")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if *maxTurns > 0 {
		cfg.MaxTurns = *maxTurns
	}
	logger := newLogger(stderr, cfg.LogLevel)

	sb, err := safety.NewSandbox(cfg.SandboxRoot)
	if err != nil {
		fmt.Fprintf(stderr, "error: sandbox: %v\n", err)
		return 1
	}
	fs := fsops.New(sb)

	var task string
	if *demo {
		task, err = seedDemo(fs)
	} else {
		task, err = readTask(flags.Args(), stdin)
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		if errors.Is(err, errNoTask) {
			flags.Usage()
			return 2
		}
		return 1
	}

	model, err := provider.New(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	r := runner.New(model, tools.Default(fs),
		runner.WithMaxTurns(cfg.MaxTurns),
		runner.WithTokenBudget(cfg.TokenBudget),
		runner.WithLogger(logger),
		runner.WithTelemetry(telemetry.NewSink(cfg.ArtifactsDir, cfg.ObserveJSON)),
	)
	logger.Info("run starting", "provider", cfg.Provider, "sandbox", sb.Root(), "max_turns", cfg.MaxTurns)

	// Set up graceful shutdown on Ctrl-C (SIGINT) / SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigch)
	go func() {
		select {
		case <-sigch:
			fmt.Fprintln(stderr, "\nExiting...")
			cancel()
		case <-ctx.Done():
		}
	}()

	res, runErr := r.Run(ctx, task)
	if cfg.TranscriptPath != "" {
		if err := memory.SaveTranscript(cfg.TranscriptPath, res.Transcript); err != nil {
			logger.Warn("failed to save transcript", "path", cfg.TranscriptPath, "err", err)
		}
	}
	if runErr != nil {
		fmt.Fprintf(stderr, "error: %v\n", runErr)
		return 1
	}

	logger.Info("run finished", "turns", res.Turns, "stopped", res.Stopped)
	fmt.Fprintln(stdout, res.Answer)
	return 0
}

// readTask joins positional arguments, or falls back to reading stdin.
func readTask(args []string, stdin io.Reader) (string, error) {
	task := strings.TrimSpace(strings.Join(args, " "))
	if task == "" && stdin != nil {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		task = strings.TrimSpace(string(b))
	}
	if task == "" {
		return "", errNoTask
	}
	return task, nil
}
