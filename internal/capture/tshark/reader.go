// Package tshark decodes beacon frames by running tshark over a capture file
// and reading its Elasticsearch JSON (-T ek) output.
package tshark

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/roman-kulish/wifi-density/internal/capture"
)

const (
	// Runtime is the default tshark binary looked up in PATH.
	Runtime = "tshark"

	// StderrLimit is the default number of stderr bytes kept for error reports.
	StderrLimit = 4096

	maxLineSize = 4 << 20
	waitDelay   = 2 * time.Second
)

// ErrTsharkFailed is returned when tshark exits with a non-zero status.
var ErrTsharkFailed = errors.New("tshark failed")

// WithLogger sets the logger for the reader
func WithLogger(logger *slog.Logger) func(*Reader) {
	return func(r *Reader) {
		r.logger = logger
	}
}

// WithBinary sets the tshark binary, either a path or a name looked up in PATH.
func WithBinary(binary string) func(*Reader) {
	return func(r *Reader) {
		r.binary = binary
	}
}

// WithStderrLimit sets how many trailing stderr bytes are kept.
func WithStderrLimit(limit int) func(*Reader) {
	return func(r *Reader) {
		r.stderr.limit = limit
	}
}

// Reader is a capture.Source over the beacons tshark decodes from a file.
type Reader struct {
	binary string
	logger *slog.Logger

	cmd     *exec.Cmd
	cancel  context.CancelFunc
	ctx     context.Context
	scanner *bufio.Scanner
	stderr  tailBuffer

	current capture.Frame
	lines   int
	err     error
	done    bool
	waited  bool
}

// Args builds the tshark command line for a capture file.
func Args(path string) []string {
	args := []string{"-r", path, "-Y", BeaconFilter, "-l", "-n", "-T", "ek"}
	for _, f := range Fields {
		args = append(args, "-e", f)
	}
	return args
}

// Open starts tshark over the capture file. A missing capture file or tshark
// binary is reported here, before any frame is read.
func Open(ctx context.Context, path string, options ...func(*Reader)) (_ *Reader, err error) {
	r := Reader{
		binary: Runtime,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		stderr: tailBuffer{limit: StderrLimit},
	}
	for _, option := range options {
		option(&r)
	}

	if _, err = os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening capture file: %w", err)
	}

	binPath, err := exec.LookPath(r.binary)
	if err != nil {
		return nil, fmt.Errorf("finding %s: %w", r.binary, err)
	}

	r.ctx, r.cancel = context.WithCancel(ctx)
	defer func() {
		if err != nil {
			r.cancel()
		}
	}()

	r.cmd = exec.CommandContext(r.ctx, binPath, Args(path)...)
	r.cmd.Stderr = &r.stderr
	r.cmd.WaitDelay = waitDelay

	stdout, err := r.cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}

	if err = r.cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", binPath, err)
	}

	r.scanner = bufio.NewScanner(stdout)
	r.scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	r.logger.Debug("tshark started", slog.String("binary", binPath), slog.String("args", strings.Join(Args(path), " ")))
	return &r, nil
}

// Next advances to the next beacon. Lines that do not decode are skipped.
func (r *Reader) Next(ctx context.Context) bool {
	if r.done || r.err != nil {
		return false
	}

	for {
		if err := ctx.Err(); err != nil {
			r.err = err
			r.stop()
			return false
		}

		if !r.scanner.Scan() {
			r.finish()
			return false
		}
		r.lines++

		line := r.scanner.Bytes()
		if !isPacketLine(line) {
			continue
		}

		frame, err := ParseLine(line)
		if err != nil {
			r.logger.Warn(fmt.Sprintf("skipping tshark line: %s", err.Error()), slog.Int("line", r.lines))
			continue
		}

		r.current = frame
		return true
	}
}

// finish reaps the process once its output is exhausted.
func (r *Reader) finish() {
	r.done = true
	r.current = nil

	// tshark may still be blocked writing stdout after a read error, so it is
	// killed before it is reaped.
	if err := r.scanner.Err(); err != nil && !errors.Is(err, fs.ErrClosed) {
		r.cancel()
		_ = r.wait()
		r.err = fmt.Errorf("reading tshark output: %w", err)
		return
	}

	waitErr := r.wait()

	switch {
	case r.ctx.Err() != nil:
		r.err = r.ctx.Err()
	case waitErr != nil:
		r.err = fmt.Errorf("%w: %w: %s", ErrTsharkFailed, waitErr, r.stderr.String())
	}
}

func (r *Reader) wait() error {
	if r.waited {
		return nil
	}
	r.waited = true
	return r.cmd.Wait()
}

// stop kills the process and reaps it.
func (r *Reader) stop() {
	r.done = true
	r.current = nil
	r.cancel()
	_ = r.wait()
}

func (r *Reader) Current() capture.Frame {
	return r.current
}

func (r *Reader) Error() error {
	return r.err
}

// Close stops tshark if it is still running.
func (r *Reader) Close() error {
	if r.cmd == nil || r.waited {
		return nil
	}
	r.stop()
	return nil
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if b.limit > 0 && len(b.buf) > b.limit {
		b.buf = b.buf[len(b.buf)-b.limit:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	return strings.TrimSpace(string(b.buf))
}
