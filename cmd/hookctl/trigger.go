package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/hookmgr/internal/event"
)

const triggerHelp = `
Trigger one or more events in order and print the resulting event.

Each event starts with the value of --target. Handlers may replace the
target or stop propagation; the printed line shows the final state.
`

type triggerOptions struct {
	target    string
	hasTarget bool
}

func newTriggerCmd(g *globalOptions) *cobra.Command {
	o := &triggerOptions{}

	cmd := &cobra.Command{
		Use:   "trigger EVENT...",
		Short: "trigger events",
		Long:  triggerHelp,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.hasTarget = cmd.Flags().Changed("target")

			a, err := g.newApp(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			for _, name := range args {
				var target any
				if o.hasTarget {
					target = o.target
				}
				e, err := a.Trigger(cmd.Context(), name, target)
				if err != nil {
					return fmt.Errorf("trigger %s: %w", name, err)
				}
				printEvent(cmd.OutOrStdout(), e)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&o.target, "target", "t", "", "target passed with each event")
	return cmd
}

// printEvent writes one line describing e.
func printEvent(out io.Writer, e event.Event) {
	fmt.Fprintf(out, "%s\ttarget=%v\tstopped=%t\n", e.Name(), e.Target(), e.IsPropagationStopped())
}
