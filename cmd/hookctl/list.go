package main

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

func newListCmd(g *globalOptions) *cobra.Command {
	var showPlugins bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "list events with attached handlers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.newApp(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			table := uitable.New()
			table.MaxColWidth = 60

			if showPlugins {
				table.AddRow("PLUGIN", "STATE", "HANDLERS", "PATH")
				for _, p := range a.Host().Plugins() {
					table.AddRow(p.Name, p.State, p.Handlers, p.Path)
				}
			} else {
				mgr := a.Manager()
				table.AddRow("EVENT", "HANDLERS")
				for _, name := range mgr.Names() {
					table.AddRow(name, mgr.Count(name))
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showPlugins, "plugins", "p", false, "list loaded plugins instead of events")
	return cmd
}
