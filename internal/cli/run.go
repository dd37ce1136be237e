// Package cli implements the interactive terminal frontend for the
// simulator: transcript printing, input prompting, and signal-aware
// shutdown.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/espalier-dev/espalier"
	"github.com/espalier-dev/espalier/internal/logging"
	"github.com/espalier-dev/espalier/internal/presentation/tui"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/sim"
)

// RunOptions configures the interactive run command.
type RunOptions struct {
	FlowPath string
	Debug    bool
	Fast     bool
	Plain    bool
	LogLevel string
}

// RunSession loads a flow file and drives a single interactive
// simulation run to completion on the terminal.
func RunSession(opts RunOptions) error {
	logger := logging.NewNop()
	if opts.Debug {
		logger = logging.New(logging.ParseLevel(opts.LogLevel))
	}

	interactive := term.IsTerminal(int(os.Stdout.Fd())) && !opts.Plain
	if interactive {
		tui.PrintBanner()
	}

	render := func(s string) (string, error) { return s, nil }
	if interactive {
		render = tui.NewRenderer()
	}

	statusCh := make(chan domain.RunStatus, 16)
	hooks := domain.Hooks{
		OnStatus: func(status domain.RunStatus) {
			statusCh <- status
		},
		OnChat: func(msg domain.ChatMessage) {
			if msg.Role == domain.RoleUser {
				// The user just typed it; no need to echo.
				return
			}
			content := msg.Content
			if msg.Role == domain.RoleBot {
				if rendered, err := render(content); err == nil {
					content = strings.TrimRight(rendered, "\n")
				}
			}
			fmt.Printf("%s %s\n", tui.FormatPrefix(msg.Role), content)
		},
	}
	if opts.Debug {
		hooks.OnDebug = func(msg domain.DebugMessage) {
			fmt.Fprintln(os.Stderr, tui.FormatDebug(msg))
		}
	}

	simOpts := []sim.Option{
		sim.WithLogger(logger),
		sim.WithHooks(hooks),
	}
	if opts.Fast {
		simOpts = append(simOpts, sim.WithDelayScale(0))
	}

	simulator, err := espalier.Load(opts.FlowPath, simOpts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lines := readLines(ctx)

	if err := simulator.Start(); err != nil {
		return fmt.Errorf("failed to start simulation: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			simulator.Stop()
			fmt.Println("\nSimulation interrupted.")
			return nil

		case status := <-statusCh:
			switch status {
			case domain.StatusCompleted:
				return nil
			case domain.StatusError:
				snap := simulator.Snapshot()
				return fmt.Errorf("simulation failed: %s", snap.Error)
			case domain.StatusWaitingForInput:
				if err := promptLoop(ctx, simulator, lines); err != nil {
					return err
				}
			}
		}
	}
}

// promptLoop reads lines until one is accepted by the waiting input
// node. Constraint violations keep the run waiting, so we just print
// the reason and prompt again.
func promptLoop(ctx context.Context, simulator *sim.Simulator, lines <-chan string) error {
	for {
		fmt.Print("> ")
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				simulator.Stop()
				return nil
			}
			err := simulator.SubmitInput(line)
			var inputErr *domain.InputError
			if errors.As(err, &inputErr) {
				fmt.Printf("%s %s\n", tui.FormatPrefix(domain.RoleSystem), inputErr.Reason)
				continue
			}
			if err != nil {
				return err
			}
			return nil
		}
	}
}

// readLines pumps stdin lines into a channel so the main loop can stay
// responsive to signals.
func readLines(ctx context.Context) <-chan string {
	out := make(chan string)
	scanner := bufio.NewScanner(os.Stdin)
	go func() {
		defer close(out)
		for scanner.Scan() {
			select {
			case out <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
