// cmd/grid.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/robustdom/internal/launcher"
	"github.com/xkilldash9x/robustdom/internal/observability"
)

func newGridCmd() *cobra.Command {
	var roles []string

	gridCmd := &cobra.Command{
		Use:   "grid [flags] [-- grid args]",
		Short: "Run the remote driver grid and stream its output",
		Long: `Starts the driver-hosting grid process configured under launcher and
streams its log until interrupted. Arguments after -- are passed to the grid
unchanged. With --role the grid is started once per role, each with its own
log file; otherwise the arguments must carry -role themselves.`,
		Example: `  robustdom grid --role hub -- -port 4444
  robustdom grid --role hub --role node --output-dir ./logs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			lc := cfg.Launcher()
			if err := lc.Validate(); err != nil {
				return fmt.Errorf("invalid launcher configuration: %w", err)
			}

			l := launcher.New(lc, observability.Component("cli"))
			procs, err := l.StartAll(cmd.Context(), gridArgSets(roles, args)...)
			if err != nil {
				return err
			}
			return runGrid(cmd, procs)
		},
	}

	gridCmd.Flags().StringSliceVarP(&roles, "role", "r", nil, "grid role to start; repeat for several")
	gridCmd.Flags().StringP("output-dir", "o", "", "directory for grid-<role>.log files (default is the working directory)")
	return gridCmd
}

// gridArgSets expands roles into one argument set each.
func gridArgSets(roles, args []string) [][]string {
	if len(roles) == 0 {
		return [][]string{args}
	}
	sets := make([][]string, 0, len(roles))
	for _, role := range roles {
		set := append([]string{"-role", role}, args...)
		sets = append(sets, set)
	}
	return sets
}

// runGrid streams every process log to the command output until the command
// context ends or every process has exited, then stops whatever is left.
func runGrid(cmd *cobra.Command, procs []*launcher.Process) error {
	ctx := cmd.Context()
	logger := observability.Component("cli")
	out := cmd.OutOrStdout()
	prefixed := len(procs) > 1

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range procs {
		g.Go(func() error {
			return p.Follow(gctx, func(line string) {
				mu.Lock()
				defer mu.Unlock()
				if prefixed {
					fmt.Fprintf(out, "[%s] %s\n", p.Role(), line)
					return
				}
				fmt.Fprintln(out, line)
			})
		})
	}
	followErr := g.Wait()

	var errs []error
	for _, p := range procs {
		select {
		case <-p.Done():
			// Exited on its own.
			if err := p.Wait(); err != nil {
				errs = append(errs, fmt.Errorf("%s exited: %w", p, err))
			}
		default:
			if err := p.Stop(context.Background()); err != nil {
				logger.Warn("Failed to stop grid process.", zap.String("role", p.Role()), zap.Error(err))
				errs = append(errs, err)
			}
		}
	}
	if followErr != nil {
		errs = append(errs, followErr)
	}
	return errors.Join(errs...)
}
