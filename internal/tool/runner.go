package tool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/Mpratama260304/proxy-scraper-checker/internal/shared/logger"
)

// Seam for tests, same trick drapto-style CLI wrappers use.
var commandContext = exec.CommandContext

// Stream identifies which pipe a chunk of output arrived on.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

// Sink receives output chunks as they arrive from the child process. Calls
// are serialized; chunks of a given stream are delivered in arrival order.
type Sink func(stream Stream, chunk string)

// RunResult is the terminal outcome of one invocation. Every failure path is
// represented here rather than as a returned error, so the streaming caller
// always reaches a terminal notification.
type RunResult struct {
	Success bool
	// Started distinguishes a process that ran and failed from one that
	// never started; the streaming layer reports the two differently.
	Started bool
	Message string
}

// Run launches the external checker and blocks until it exits or ctx is
// cancelled. The process runs with no arguments in the directory containing
// configPath, inheriting the host environment with terminal coloring
// disabled. Cancellation sends SIGTERM; there is no kill escalation and no
// timeout.
func Run(ctx context.Context, binPath, configPath string, sink Sink) RunResult {
	l := logger.WithComponent("Tool/Runner")

	cmd := commandContext(ctx, binPath)
	cmd.Dir = filepath.Dir(configPath)
	cmd.Env = append(os.Environ(), "NO_COLOR=1", "FORCE_COLOR=0")
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return RunResult{Success: false, Message: fmt.Sprintf("Failed to open stdout pipe: %v", err)}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return RunResult{Success: false, Message: fmt.Sprintf("Failed to open stderr pipe: %v", err)}
	}

	if err := cmd.Start(); err != nil {
		l.Error().Err(err).Str("binary", binPath).Msg("Failed to start external checker.")
		return RunResult{Success: false, Message: fmt.Sprintf("Failed to start %s: %v", binPath, err)}
	}
	l.Info().Str("binary", binPath).Str("workdir", cmd.Dir).Int("pid", cmd.Process.Pid).Msg("External checker started.")

	var sinkMu sync.Mutex
	emit := func(stream Stream, chunk string) {
		if sink == nil {
			return
		}
		sinkMu.Lock()
		defer sinkMu.Unlock()
		sink(stream, chunk)
	}

	var wg sync.WaitGroup
	forward := func(stream Stream, r io.Reader) {
		defer wg.Done()
		buf := make([]byte, 4096)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				emit(stream, string(buf[:n]))
			}
			if err != nil {
				return
			}
		}
	}
	wg.Add(2)
	go forward(Stdout, stdout)
	go forward(Stderr, stderr)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			l.Warn().Int("code", exitErr.ExitCode()).Msg("External checker exited with non-zero code.")
			return RunResult{Started: true, Message: fmt.Sprintf("Checker exited with code %d", exitErr.ExitCode())}
		}
		return RunResult{Started: true, Message: fmt.Sprintf("Checker failed: %v", err)}
	}

	l.Info().Msg("External checker finished successfully.")
	return RunResult{Success: true, Started: true, Message: "Checker completed successfully"}
}
