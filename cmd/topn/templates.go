package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/coinwatch/topn/pkg/templates"
	"github.com/spf13/cobra"
)

var templatesCmd = cobra.Command{
	Use:   "templates",
	Short: "Inspect bundled and overridden templates",
}

var templatesListCmd = cobra.Command{
	Use:   "list",
	Short: "List template names",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadTopnConfig(); err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, name := range templates.Names() {
			t, err := templates.Get(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.Name, t.Kind, t.Source, t.Description)
		}
		return w.Flush()
	},
}

var templatesShowCmd = cobra.Command{
	Use:   "show NAME",
	Short: "Print a template body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadTopnConfig(); err != nil {
			return err
		}
		t, err := templates.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(t.Body))
		return nil
	},
}
