// internal/launcher/process.go
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hpcloud/tail"
	"go.uber.org/zap"
)

// StopGrace is how long Stop waits after interrupting a process before it
// kills it, when the caller's context has no deadline of its own.
const StopGrace = 5 * time.Second

// Process is a running grid process.
type Process struct {
	id      string
	role    string
	logPath string
	cmd     *exec.Cmd
	out     io.Closer
	logger  *zap.Logger

	done     chan struct{}
	err      error
	stopOnce sync.Once
	stopped  atomic.Bool
}

func newProcess(id, role, logPath string, cmd *exec.Cmd, out io.Closer, logger *zap.Logger) *Process {
	p := &Process{
		id:      id,
		role:    role,
		logPath: logPath,
		cmd:     cmd,
		out:     out,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go p.reap()
	return p
}

func (p *Process) reap() {
	err := p.cmd.Wait()
	if cerr := p.out.Close(); cerr != nil && err == nil {
		err = cerr
	}
	p.err = err
	if err != nil && !p.stopped.Load() {
		p.logger.Warn("Grid process exited.", zap.Error(err))
	} else {
		p.logger.Info("Grid process exited.")
	}
	close(p.done)
}

func (p *Process) ID() string            { return p.id }
func (p *Process) Role() string          { return p.role }
func (p *Process) LogPath() string       { return p.logPath }
func (p *Process) Pid() int              { return p.cmd.Process.Pid }
func (p *Process) Done() <-chan struct{} { return p.done }
func (p *Process) String() string        { return fmt.Sprintf("grid %s (pid %d)", p.role, p.Pid()) }
func (p *Process) Args() []string        { return append([]string(nil), p.cmd.Args...) }

// Wait blocks until the process exits and returns its exit error.
func (p *Process) Wait() error {
	<-p.done
	return p.err
}

// Stop interrupts the process and waits for it to exit, killing it if it is
// still running when ctx is done or StopGrace elapses. An exit caused by Stop
// is not an error.
func (p *Process) Stop(ctx context.Context) error {
	var err error
	p.stopOnce.Do(func() { err = p.stop(ctx) })
	return err
}

func (p *Process) stop(ctx context.Context) error {
	select {
	case <-p.done:
		return nil
	default:
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, StopGrace)
		defer cancel()
	}

	p.stopped.Store(true)
	p.logger.Info("Stopping grid process.")
	if err := p.cmd.Process.Signal(os.Interrupt); err != nil {
		// Interrupt is not deliverable everywhere (Windows).
		if kerr := p.cmd.Process.Kill(); kerr != nil && !errors.Is(kerr, os.ErrProcessDone) {
			return fmt.Errorf("killing %s: %w", p, kerr)
		}
	}

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
	}

	p.logger.Warn("Grid process did not exit after interrupt; killing it.")
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("killing %s: %w", p, err)
	}
	<-p.done
	return nil
}

// Follow streams the process log to fn line by line, from the start of the
// file, until ctx is done or the process has exited and the log is drained.
func (p *Process) Follow(ctx context.Context, fn func(line string)) error {
	t, err := tail.TailFile(p.logPath, tail.Config{
		Follow:    true,
		MustExist: true,
		Poll:      true,
		Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekStart},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to tail %s: %w", p.logPath, err)
	}
	defer stopTail(t)

	// offset counts the bytes handed to fn. The tailer holds back a trailing
	// partial line, so offset always lands on a line boundary.
	var offset int64
	exited := p.done
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-exited:
			// The tailer may be parked at EOF with lines it will never send.
			// Stop it while this loop keeps draining Lines, then read the rest
			// straight from the file.
			exited = nil
			go func() { _ = t.Stop() }()
		case line, ok := <-t.Lines:
			if !ok {
				if exited != nil {
					if err := t.Err(); err != nil {
						return fmt.Errorf("tailing %s ended early: %w", p.logPath, err)
					}
					return fmt.Errorf("tailing %s ended early", p.logPath)
				}
				return p.readFrom(offset, fn)
			}
			if line.Err != nil {
				p.logger.Warn("Error reading grid log.", zap.Error(line.Err))
				continue
			}
			offset += int64(len(line.Text)) + 1
			fn(line.Text)
		}
	}
}

// readFrom sends every line of the log past offset to fn, including an
// unterminated last line.
func (p *Process) readFrom(offset int64, fn func(line string)) error {
	t, err := tail.TailFile(p.logPath, tail.Config{
		MustExist: true,
		Location:  &tail.SeekInfo{Offset: offset, Whence: io.SeekStart},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", p.logPath, err)
	}
	for line := range t.Lines {
		if line.Err != nil {
			p.logger.Warn("Error reading grid log.", zap.Error(line.Err))
			continue
		}
		fn(line.Text)
	}
	return nil
}

// stopTail stops t. The tail goroutine can be blocked handing a line to
// Lines, so Lines is drained until it closes. Polling tails add no inotify
// watches, so there is nothing for Cleanup to remove.
func stopTail(t *tail.Tail) {
	stopped := make(chan struct{})
	go func() {
		_ = t.Stop()
		close(stopped)
	}()
	for range t.Lines {
	}
	<-stopped
}
