package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wham/wiregen/internal/config"
	"github.com/wham/wiregen/internal/ingest"
)

func getReflectCmd(c *rootCommand) *cobra.Command {
	var (
		target  string
		symbols []string
		list    bool
	)
	cmd := &cobra.Command{
		Use:   "reflect --target URL (--symbol NAME... | --list)",
		Short: "Generate Go encoders from a live gRPC server",
		Long: `Fetch schemas through gRPC server reflection and generate code for the
file declaring each symbol. TLS is used for https and grpcs URLs and for
port 443.`,
		Example: `  wiregen reflect --target localhost:50051 --list
  wiregen reflect --target https://api.example.com --symbol acme.shop.Orders -o gen`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := ingest.NewReflectionClient(target, c.dialOptions...)
			if err != nil {
				return err
			}

			if list {
				services, err := client.ListServices(c.ctx)
				if err != nil {
					return err
				}
				for _, s := range services {
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), s); err != nil {
						return err
					}
				}
				return nil
			}

			if len(symbols) == 0 {
				return errors.New("at least one --symbol is required unless --list is given")
			}
			_, err = c.generator(client).Run(c.ctx, symbols)
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&target, "target", "", "server address or URL")
	flags.StringSliceVar(&symbols, "symbol", nil, "fully qualified service or message name, may be repeated")
	flags.BoolVar(&list, "list", false, "print the services the server exposes and exit")
	flags.AddFlagSet(config.GenerateFlagSet())
	_ = cmd.MarkFlagRequired("target")
	return cmd
}
