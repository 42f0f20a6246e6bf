package main

import (
	"github.com/spf13/cobra"

	"github.com/wham/wiregen/internal/config"
	"github.com/wham/wiregen/internal/generate"
	"github.com/wham/wiregen/internal/watch"
)

func getGenerateCmd(c *rootCommand) *cobra.Command {
	var watchSources bool
	cmd := &cobra.Command{
		Use:   "generate [flags] FILE...",
		Short: "Generate Go encoders for .proto files",
		Long: `Generate one <name>.wire.go file per schema source.

Sources are processed in order; the first failure stops the batch and files
already written are kept.`,
		Example: `  wiregen generate -o gen protos/shop.proto
  wiregen generate --compiler protoparse -I protos -o gen protos/*.proto`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g := c.generator(c.compiler())
			_, err := g.Run(c.ctx, args)
			if !watchSources {
				return err
			}
			if err != nil {
				c.logger.WithError(err).Error("Generation failed")
			}
			return c.watch(g, args)
		},
	}
	flags := cmd.Flags()
	flags.AddFlagSet(config.GenerateFlagSet())
	flags.AddFlagSet(config.CompileFlagSet())
	flags.BoolVarP(&watchSources, "watch", "w", false, "regenerate whenever a source changes")
	flags.Duration(config.FlagWatchInterval, config.Default().WatchInterval, "polling interval for --watch")
	return cmd
}

// watch regenerates changed sources until the command's context ends.
func (c *rootCommand) watch(g *generate.Generator, sources []string) error {
	w := watch.New(c.fs, sources, c.cfg.WatchInterval, c.logger)
	defer w.Close()

	w.Subscribe(func(changed []string) {
		if _, err := g.Run(c.ctx, changed); err != nil {
			c.logger.WithError(err).Error("Generation failed")
		}
	})

	c.logger.WithField("sources", len(sources)).Info("Watching for changes, press Ctrl+C to stop")
	<-c.ctx.Done()
	return nil
}
