package subprocess

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/encoding/json"

	"github.com/botwright/sidecar/internal/config"
	"github.com/botwright/sidecar/internal/errors"
	"github.com/botwright/sidecar/internal/worker"
)

const (
	// maxScanTokenSize is the maximum buffer size for reading worker output lines.
	maxScanTokenSize = 1024 * 1024 // 1MB
	// maxStderrBufferSize caps the retained stderr buffer. Stderr forwarding
	// continues past this limit, only the buffer stops growing.
	maxStderrBufferSize = 10 * 1024 * 1024 // 10MB
)

// WorkerTransport implements Transport by spawning the worker subprocess.
type WorkerTransport struct {
	log            *slog.Logger
	options        *config.Options
	workerPath     string
	cmd            *exec.Cmd
	stdin          io.WriteCloser
	stdout         io.ReadCloser
	stderr         io.ReadCloser
	stderrCallback func(string)
	mu             sync.Mutex // Protects stdin writes
	closing        bool       // Whether Close() has been called (intentional shutdown)
	stdinClosed    bool       // Whether stdin was closed (e.g., due to context cancellation)
}

// Compile-time verification that WorkerTransport implements the Transport interface.
var _ config.Transport = (*WorkerTransport)(nil)

// NewWorkerTransport creates a new worker transport with the given options.
//
// The logger receives debug, info, warn, and error messages during transport
// operations. Worker discovery is deferred to Start().
func NewWorkerTransport(log *slog.Logger, options *config.Options) *WorkerTransport {
	return &WorkerTransport{
		log:            log.With("component", "worker_transport"),
		options:        options,
		stderrCallback: options.Stderr,
	}
}

// Start spawns the worker subprocess.
//
// This method discovers the worker executable and spawns it with stdin,
// stdout, and stderr redirected into pipes. The worker is forcibly
// terminated when ctx ends, and on Linux the kernel also kills it when the
// supervising process dies, so no orphaned workers outlive the supervisor.
//
// Returns *ConnectionError on failure; when the executable cannot be
// located it wraps a *WorkerNotFoundError.
func (t *WorkerTransport) Start(ctx context.Context) error {
	t.log.Info("Starting worker subprocess")

	discoverer := worker.NewDiscoverer(&worker.Config{
		WorkerPath: t.options.WorkerPath,
		Logger:     t.log,
	})

	workerPath, err := discoverer.Discover()
	if err != nil {
		return &errors.ConnectionError{Err: fmt.Errorf("discover worker: %w", err)}
	}

	t.workerPath = workerPath

	cwd := t.options.Cwd
	if cwd == "" {
		cwd, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
	}

	t.log.Debug("Set working directory", "cwd", cwd)

	//nolint:gosec // G204: Subprocess launching with a discovered path is the point
	cmd := exec.CommandContext(ctx, workerPath, t.options.WorkerArgs...)
	cmd.Dir = cwd
	cmd.Env = append(os.Environ(), t.options.Env...)
	configureProcAttr(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		t.log.Error("Failed to create stdin pipe", "error", err)

		return &errors.ConnectionError{Err: fmt.Errorf("stdin pipe: %w", err)}
	}

	t.stdin = stdin

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		t.log.Error("Failed to create stdout pipe", "error", err)

		return &errors.ConnectionError{Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	t.stdout = stdout

	stderr, err := cmd.StderrPipe()
	if err != nil {
		t.log.Error("Failed to create stderr pipe", "error", err)

		return &errors.ConnectionError{Err: fmt.Errorf("stderr pipe: %w", err)}
	}

	t.stderr = stderr

	if err := cmd.Start(); err != nil {
		t.log.Error("Failed to start worker process", "error", err)

		return &errors.ConnectionError{Err: fmt.Errorf("start process: %w", err)}
	}

	t.cmd = cmd
	t.log.Info("Worker subprocess started", "pid", cmd.Process.Pid, "path", workerPath)

	return nil
}

// ReadMessages reads JSON messages from the worker's stdout.
//
// This method starts both stream readers: a stdout goroutine that parses
// line-delimited JSON into the messages channel, and a stderr goroutine
// that forwards diagnostic lines verbatim. Call it immediately after Start
// so no output is dropped before the first call.
//
// A line that fails to parse yields a *WorkerJSONDecodeError on the error
// channel and does not stop message processing. The goroutine closes both
// channels when the stdout stream ends; if the process exited abnormally a
// *ProcessError carrying the exit code and buffered stderr is sent first.
func (t *WorkerTransport) ReadMessages(
	ctx context.Context,
) (<-chan map[string]any, <-chan error) {
	messages := make(chan map[string]any)
	errs := make(chan error, 1)

	var stderrWg sync.WaitGroup

	var stderrBuffer strings.Builder

	var stderrMu sync.Mutex

	// Stderr must be fully read before cmd.Wait().
	// See: https://pkg.go.dev/os/exec#Cmd.StderrPipe
	stderrWg.Add(1)

	go func() {
		defer stderrWg.Done()

		// Plain scanner loop - relies on process kill to close the pipe and
		// unblock Scan().
		scanner := bufio.NewScanner(t.stderr)
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			default:
			}

			line := scanner.Text()

			t.log.Debug("Worker stderr", "line", line)

			stderrMu.Lock()

			if stderrBuffer.Len() < maxStderrBufferSize {
				if stderrBuffer.Len() > 0 {
					stderrBuffer.WriteString("\n")
				}

				stderrBuffer.WriteString(line)
			}

			stderrMu.Unlock()

			if t.stderrCallback != nil {
				t.stderrCallback(line)
			}
		}

		if err := scanner.Err(); err != nil {
			t.log.Debug("Stderr scanner error", "error", err)
		}
	}()

	go func() {
		defer close(messages)
		defer close(errs)
		defer t.log.Debug("ReadMessages goroutine stopped")

		scanner := bufio.NewScanner(t.stdout)
		buf := make([]byte, maxScanTokenSize)
		scanner.Buffer(buf, maxScanTokenSize)

		for scanner.Scan() {
			select {
			case <-ctx.Done():
				t.log.Debug("Context cancelled during scan", "error", ctx.Err())

				errs <- ctx.Err()

				return
			default:
			}

			line := scanner.Bytes()

			var msg map[string]any

			if err := json.Unmarshal(line, &msg); err != nil {
				t.log.Debug("Failed to unmarshal worker line", "error", err, "line", string(line))

				errs <- &errors.WorkerJSONDecodeError{
					RawData: string(line),
					Err:     err,
				}

				continue
			}

			select {
			case messages <- msg:
			case <-ctx.Done():
				t.log.Debug("Context cancelled during message send", "error", ctx.Err())

				errs <- ctx.Err()

				return
			}
		}

		if err := scanner.Err(); err != nil {
			t.log.Error("Scanner error while reading worker output", "error", err)

			errs <- fmt.Errorf("scanner error: %w", err)
		}

		t.log.Debug("Worker stdout stream ended")

		// Wait for stderr goroutine before process wait
		stderrWg.Wait()

		t.log.Debug("Waiting for worker process to exit")

		if err := t.cmd.Wait(); err != nil {
			t.mu.Lock()
			isClosing := t.closing
			t.mu.Unlock()

			if isClosing {
				t.log.Debug("Worker process terminated during shutdown")

				return
			}

			stderrMu.Lock()

			stderrOutput := stderrBuffer.String()

			stderrMu.Unlock()

			exitCode := 0

			var exitErr *exec.ExitError
			if stderrors.As(err, &exitErr) {
				exitCode = exitErr.ExitCode()
			}

			t.log.Error("Worker process exited with error", "exit_code", exitCode, "stderr", stderrOutput)

			errs <- &errors.ProcessError{
				ExitCode: exitCode,
				Stderr:   stderrOutput,
				Err:      err,
			}
		} else {
			t.log.Info("Worker process exited")
		}
	}()

	return messages, errs
}

// SendMessage sends one JSON line to the worker's stdin.
//
// The data should be a complete JSON message; a trailing newline is appended
// if missing. This method is safe for concurrent use - the stdin mutex keeps
// concurrent callers from interleaving partial line writes - and respects
// context cancellation even during blocking writes.
//
// If the context is cancelled during a blocked write, stdin is closed to
// unblock the goroutine. Subsequent calls return ErrStdinClosed.
func (t *WorkerTransport) SendMessage(ctx context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stdin == nil {
		return errors.ErrTransportNotConnected
	}

	if t.stdinClosed {
		return errors.ErrStdinClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	t.log.Debug("Sending message to worker", "data_len", len(data))

	// Ensure data ends with newline. Explicit copy avoids mutating the
	// caller's backing array if the slice has spare capacity.
	if len(data) == 0 || data[len(data)-1] != '\n' {
		newData := make([]byte, len(data)+1)
		copy(newData, data)
		newData[len(data)] = '\n'
		data = newData
	}

	// Write in goroutine to respect context cancellation
	done := make(chan error, 1)

	go func() {
		_, err := t.stdin.Write(data)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.log.Error("Failed to write message to worker", "error", err)

			return fmt.Errorf("write to stdin: %w", err)
		}

		return nil

	case <-ctx.Done():
		t.log.Debug("Context cancelled during write, closing stdin")
		// Close stdin to unblock the blocked Write (safe since Go 1.9+)
		if t.stdin != nil {
			_ = t.stdin.Close()
			t.stdinClosed = true
		}

		select {
		case <-done:
		case <-time.After(1 * time.Second):
			t.log.Warn("Write goroutine did not exit after stdin close, potential leak")
		}

		return ctx.Err()
	}
}

// IsReady checks if the transport is ready for communication.
//
// Returns true if the worker process is running and stdin is open.
func (t *WorkerTransport) IsReady() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.cmd != nil && t.cmd.Process != nil && t.stdin != nil && !t.stdinClosed
}

// Close terminates the worker process.
//
// This forcefully kills the worker using SIGKILL. It's safe to call Close
// multiple times or on an already-terminated process.
func (t *WorkerTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closing = true
	t.stdinClosed = true

	if t.cmd != nil && t.cmd.Process != nil {
		t.log.Debug("Killing worker process", "pid", t.cmd.Process.Pid)

		if err := t.cmd.Process.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("kill worker process (pid %d): %w", t.cmd.Process.Pid, err)
		}
	}

	return nil
}
