package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wham/wiregen/internal/config"
	"github.com/wham/wiregen/internal/ingest"
	"github.com/wham/wiregen/internal/schema"
)

func getDescribeCmd(c *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe [flags] FILE",
		Short: "Print the ingested schema as .proto text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.compiler().Compile(c.ctx, args[0])
			if err != nil {
				return err
			}
			f, err := ingest.Parse(args[0], data)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), schema.Format(f))
			return err
		},
	}
	cmd.Flags().AddFlagSet(config.CompileFlagSet())
	return cmd
}
