// internal/bowtie/runner.go
package bowtie

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LineFunc receives one line of subprocess stdout.
type LineFunc func(line string) error

// Runner executes an external command and streams its stdout
// line-by-line to handle. A nil handle discards stdout.
type Runner interface {
	Run(ctx context.Context, args []string, handle LineFunc) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	log *zap.SugaredLogger
}

func NewExecRunner(log *zap.SugaredLogger) *ExecRunner {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ExecRunner{log: log}
}

func (r *ExecRunner) Run(ctx context.Context, args []string, handle LineFunc) error {
	if len(args) == 0 {
		return fmt.Errorf("bowtie: empty command")
	}

	// The command runs under the errgroup's context so a handler error
	// kills the child. Otherwise a still-writing child would fill the
	// stdout pipe and Wait would never return.
	g, gctx := errgroup.WithContext(ctx)

	cmd := exec.CommandContext(gctx, args[0], args[1:]...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("bowtie: stdout pipe: %w", err)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	r.log.Debugw("running command", "command", strings.Join(args, " "))
	started := time.Now()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("bowtie: start %s: %w", args[0], err)
	}

	g.Go(func() error {
		sc := bufio.NewScanner(stdout)
		sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
		for sc.Scan() {
			if handle == nil {
				continue
			}
			if err := handle(sc.Text()); err != nil {
				return err
			}
		}
		return sc.Err()
	})

	handleErr := g.Wait()
	waitErr := cmd.Wait()

	if handleErr != nil {
		return fmt.Errorf("bowtie: reading %s output: %w", args[0], handleErr)
	}
	if waitErr != nil {
		return fmt.Errorf("bowtie: %s failed: %w: %s", args[0], waitErr, tail(stderr.String()))
	}

	r.log.Debugw("command finished",
		"command", args[0],
		"duration", time.Since(started),
	)
	return nil
}

// tail keeps the last few stderr lines so errors stay readable.
func tail(s string) string {
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	if len(lines) <= 5 {
		return s
	}
	return strings.Join(lines[len(lines)-5:], "\n")
}
