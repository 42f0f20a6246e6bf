package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/wham/wiregen/internal/config"
	"github.com/wham/wiregen/internal/emit"
	"github.com/wham/wiregen/internal/generate"
	"github.com/wham/wiregen/internal/ingest"
	"github.com/wham/wiregen/internal/logging"
	"github.com/wham/wiregen/internal/tempdir"
)

// This is to keep all fields needed for the main/root wiregen command
type rootCommand struct {
	ctx    context.Context
	logger *logrus.Logger
	fs     afero.Fs
	lookup config.LookupFunc
	cfg    config.Config
	cmd    *cobra.Command

	// dialOptions are added to every reflection connection.
	dialOptions []grpc.DialOption
}

func newRootCommand(ctx context.Context, logger *logrus.Logger, fs afero.Fs, lookup config.LookupFunc) *rootCommand {
	c := &rootCommand{
		ctx:    ctx,
		logger: logger,
		fs:     fs,
		lookup: lookup,
	}
	// the base command when called without any subcommands.
	c.cmd = &cobra.Command{
		Use:               "wiregen",
		Short:             "compile .proto schemas into Go wire encoders",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
	}
	c.cmd.PersistentFlags().AddFlagSet(config.GlobalFlagSet())
	c.cmd.AddCommand(
		getGenerateCmd(c),
		getDescribeCmd(c),
		getReflectCmd(c),
	)
	return c
}

func (c *rootCommand) persistentPreRunE(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	path, err := flags.GetString("config")
	if err != nil {
		return err
	}

	cfg, err := config.Load(c.fs, path, flags.Changed("config"), c.lookup, c.logger)
	if err != nil {
		return err
	}
	if err := cfg.ApplyFlags(flags, c.logger); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logging.Configure(c.logger, cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}
	c.cfg = cfg

	if removed := tempdir.Sweep(cfg.TempDir, tempdir.MaxAge, c.logger); removed > 0 {
		c.logger.WithField("removed", removed).Debug("Removed stale temp directories")
	}
	return nil
}

func (c *rootCommand) compiler() ingest.Compiler {
	if c.cfg.Compiler == config.CompilerProtoparse {
		return &ingest.Parser{Fs: c.fs, IncludePaths: c.cfg.IncludePaths}
	}
	return &ingest.Protoc{
		Path:         c.cfg.Protoc,
		IncludePaths: c.cfg.IncludePaths,
		TempRoot:     c.cfg.TempDir,
		Logger:       c.logger,
	}
}

func (c *rootCommand) generator(compiler ingest.Compiler) *generate.Generator {
	return &generate.Generator{
		Compiler:    compiler,
		Fs:          c.fs,
		OutDir:      c.cfg.OutDir,
		MapOptions:  c.cfg.MapOptions(),
		EmitOptions: emit.Options{Package: c.cfg.Package},
		Logger:      c.logger,
	}
}

// Execute adds all child commands to the root command sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := &logrus.Logger{
		Out:       os.Stderr,
		Formatter: new(logrus.TextFormatter),
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.InfoLevel,
	}

	c := newRootCommand(ctx, logger, afero.NewOsFs(), os.LookupEnv)
	if err := c.cmd.Execute(); err != nil {
		logger.Error(err)
		stop()
		os.Exit(1)
	}
}
