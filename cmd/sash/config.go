package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/1broseidon/sash/internal/config"
)

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "print",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.load()
			if err != nil {
				return err
			}
			data, err := res.Config.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and its includes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(res.Files) == 0 {
				fmt.Fprintln(out, "no config file found; defaults are valid")
				return nil
			}
			for _, f := range res.Files {
				fmt.Fprintf(out, "ok  %s\n", f)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "explain [path]",
		Short: "Show where a config value comes from",
		Long: `Show the effective value of a config key and whether it came from the
defaults, a config file (with line and column) or a flag/environment override.
Without a path every key is explained.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.load()
			if err != nil {
				return err
			}
			paths := config.Paths
			if len(args) == 1 {
				paths = args
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, p := range paths {
				val, src, err := config.Explain(res, p)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%v\t%s\n", p, val, src)
			}
			return tw.Flush()
		},
	})
	return cmd
}
