package plan

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
)

// Process is an external program invocation.
type Process struct {
	Name string
	Args []string
	Dir  string
}

// Launcher runs external processes on behalf of a run.
type Launcher interface {
	// Run blocks until the process exits.
	Run(ctx context.Context, p Process) error
	// Start returns once the process is running.
	Start(ctx context.Context, p Process) error
}

// ScriptProcess runs script through sh.
func ScriptProcess(script string) Process {
	return Process{Name: "sh", Args: []string{"-c", script}}
}

// PlayerProcess opens playlistPath in player.
func PlayerProcess(player, playlistPath string) Process {
	return Process{Name: player, Args: []string{playlistPath}}
}

type ExecLauncher struct {
	Stdout io.Writer
	Stderr io.Writer
}

func NewExecLauncher() *ExecLauncher {
	return &ExecLauncher{Stdout: os.Stdout, Stderr: os.Stderr}
}

func (l *ExecLauncher) command(ctx context.Context, p Process) *exec.Cmd {
	cmd := exec.CommandContext(ctx, p.Name, p.Args...)
	cmd.Dir = p.Dir
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	return cmd
}

func (l *ExecLauncher) Run(ctx context.Context, p Process) error {
	if err := l.command(ctx, p).Run(); err != nil {
		return fmt.Errorf("failed to run %s: %w", p.Name, err)
	}
	return nil
}

// Start detaches the process from ctx so it outlives the run.
func (l *ExecLauncher) Start(ctx context.Context, p Process) error {
	cmd := l.command(context.WithoutCancel(ctx), p)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", p.Name, err)
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			slog.Debug("Process exited", "name", p.Name, "error", err)
		}
	}()
	return nil
}
