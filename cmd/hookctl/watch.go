package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const watchHelp = `
Read events from standard input, one per line, and trigger them.

Each line is an event name optionally followed by whitespace and a target:

	user.created alice
	cache.flush

Blank lines and lines starting with # are ignored. When the configuration
enables watching, plugins are reloaded as their files change. The command
returns when standard input is exhausted or the command is cancelled.
`

func newWatchCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "trigger events read from stdin",
		Long:  watchHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			a, err := g.newApp(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			logger := a.Logger()

			eg, gctx := errgroup.WithContext(ctx)
			lines := make(chan string)

			eg.Go(func() error {
				defer close(lines)
				sc := bufio.NewScanner(cmd.InOrStdin())
				for sc.Scan() {
					select {
					case lines <- sc.Text():
					case <-gctx.Done():
						return nil
					}
				}
				return sc.Err()
			})

			// Triggers and reloads share this goroutine so plugin Lua
			// states are never used concurrently.
			loopDone := make(chan struct{})
			eg.Go(func() error {
				defer close(loopDone)
				for {
					select {
					case <-gctx.Done():
						return gctx.Err()

					case name := <-a.Changes():
						if err := a.ReloadPlugin(gctx, name); err != nil {
							logger.WithError(err).Warn("reload of plugin %s failed", name)
						}

					case line, ok := <-lines:
						if !ok {
							return nil
						}
						name, target, ok := parseLine(line)
						if !ok {
							continue
						}
						e, err := a.Trigger(gctx, name, target)
						if err != nil {
							fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", name, err)
							continue
						}
						printEvent(out, e)
					}
				}
			})

			// A reader blocked on standard input cannot be interrupted, so
			// cancellation only waits for the trigger loop before the
			// deferred Close.
			done := make(chan error, 1)
			go func() { done <- eg.Wait() }()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				<-loopDone
				return ctx.Err()
			}
		},
	}
}

// parseLine splits an input line into an event name and optional target.
func parseLine(line string) (name string, target any, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", nil, false
	}
	name, rest, found := strings.Cut(line, " ")
	if !found {
		name, rest, found = strings.Cut(line, "\t")
	}
	if rest = strings.TrimSpace(rest); found && rest != "" {
		return name, rest, true
	}
	return name, nil, true
}
