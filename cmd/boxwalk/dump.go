package main

import (
	"fmt"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"boxwalk/pkg/layout"
)

func newDumpCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "dump [file]",
		Short: "Print the layout tree of an HTML document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := stdinName
			if len(args) == 1 {
				input = args[0]
			}
			res, err := load(cmd, a.pipeline(), input)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !asJSON {
				return layout.Dump(out, res.Layout.Root)
			}
			data, err := json.MarshalIndent(layout.Snapshot(res.Layout.Root), "", "  ")
			if err != nil {
				return fmt.Errorf("encoding layout: %w", err)
			}
			_, err = fmt.Fprintln(out, string(data))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout tree as JSON")
	return cmd
}
