// internal/launcher/launcher.go
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/robustdom/internal/config"
)

const roleFlag = "-role"

// ErrMissingRole is returned when the grid arguments name no role.
var ErrMissingRole = errors.New("grid arguments must include -role <name>")

// Launcher starts driver-hosting grid processes (hub or node) described by
// the launcher configuration.
type Launcher struct {
	cfg    config.LauncherConfig
	logger *zap.Logger
}

func New(cfg config.LauncherConfig, logger *zap.Logger) *Launcher {
	return &Launcher{cfg: cfg, logger: logger.Named("launcher")}
}

// Role returns the value following -role in args.
func Role(args []string) (string, error) {
	for i, a := range args {
		if a != roleFlag {
			continue
		}
		if i+1 >= len(args) || args[i+1] == "" || strings.HasPrefix(args[i+1], "-") {
			return "", ErrMissingRole
		}
		return args[i+1], nil
	}
	return "", ErrMissingRole
}

// Command returns the full command line for a grid process:
// interpreter, -cp, classpath, entry point, configured args, then args.
func (l *Launcher) Command(args []string) ([]string, error) {
	interpreter, err := homedir.Expand(l.cfg.Interpreter)
	if err != nil {
		return nil, fmt.Errorf("expanding interpreter path: %w", err)
	}
	entries := make([]string, 0, len(l.cfg.Classpath))
	for _, e := range l.cfg.Classpath {
		expanded, err := homedir.Expand(e)
		if err != nil {
			return nil, fmt.Errorf("expanding classpath entry %q: %w", e, err)
		}
		entries = append(entries, expanded)
	}

	argv := []string{interpreter, "-cp", strings.Join(entries, string(os.PathListSeparator)), l.cfg.EntryPoint}
	argv = append(argv, l.cfg.Args...)
	return append(argv, args...), nil
}

// OutputDir is the configured output directory, or the working directory
// when none is set.
func (l *Launcher) OutputDir() (string, error) {
	if l.cfg.OutputDir == "" {
		return os.Getwd()
	}
	dir, err := homedir.Expand(l.cfg.OutputDir)
	if err != nil {
		return "", err
	}
	return filepath.Abs(dir)
}

// Start launches one grid process. Its stdout and stderr are both written to
// grid-<role>.log in the output directory, which is created if needed.
func (l *Launcher) Start(ctx context.Context, args ...string) (*Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	argv, err := l.Command(args)
	if err != nil {
		return nil, err
	}
	role, err := Role(argv[4:])
	if err != nil {
		return nil, err
	}

	p, err := l.start(role, argv)
	if err != nil {
		return nil, fmt.Errorf("failed to start grid %s process: %w", role, err)
	}
	return p, nil
}

func (l *Launcher) start(role string, argv []string) (*Process, error) {
	dir, err := l.OutputDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	logPath := filepath.Join(dir, "grid-"+role+".log")
	out, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Start(); err != nil {
		out.Close()
		return nil, err
	}

	id := uuid.NewString()
	logger := l.logger.With(zap.String("run_id", id), zap.String("role", role))
	logger.Info("Grid process started.", zap.Int("pid", cmd.Process.Pid), zap.String("log", logPath))
	return newProcess(id, role, logPath, cmd, out, logger), nil
}

// StartAll launches one process per argument set concurrently. If any of
// them fails to start, the ones that did are stopped again.
func (l *Launcher) StartAll(ctx context.Context, argSets ...[]string) ([]*Process, error) {
	procs := make([]*Process, len(argSets))
	g, gctx := errgroup.WithContext(ctx)
	for i, args := range argSets {
		g.Go(func() error {
			p, err := l.Start(gctx, args...)
			if err != nil {
				return err
			}
			procs[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, p := range procs {
			if p == nil {
				continue
			}
			if stopErr := p.Stop(context.Background()); stopErr != nil {
				l.logger.Warn("Failed to stop grid process after a sibling failed.", zap.String("role", p.Role()), zap.Error(stopErr))
			}
		}
		return nil, err
	}
	return procs, nil
}
