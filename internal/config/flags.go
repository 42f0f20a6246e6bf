package config

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// Flag names bound to Config fields.
const (
	FlagCompiler       = "compiler"
	FlagProtoc         = "protoc"
	FlagInclude        = "include"
	FlagOut            = "out"
	FlagPackage        = "package"
	FlagFloatByteOrder = "float-byte-order"
	FlagLogLevel       = "log-level"
	FlagLogFormat      = "log-format"
	FlagTempDir        = "temp-dir"
	FlagWatchInterval  = "watch-interval"
)

// GlobalFlagSet holds the flags every command accepts.
func GlobalFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	def := Default()
	flags.StringP("config", "c", DefaultFile, "YAML configuration file")
	flags.String(FlagLogLevel, def.LogLevel, "log level: trace, debug, info, warn, error")
	flags.String(FlagLogFormat, def.LogFormat, "log format: text or json")
	flags.BoolP("verbose", "v", false, "shorthand for --log-level=debug")
	flags.String(FlagTempDir, "", "root for scoped temp directories (default the system temp dir)")
	return flags
}

// GenerateFlagSet holds the flags of commands that write generated code.
func GenerateFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	def := Default()
	flags.StringP(FlagOut, "o", def.OutDir, "output directory")
	flags.String(FlagPackage, "", "Go package name of the generated code")
	flags.String(FlagFloatByteOrder, def.FloatByteOrder, "float layout: little-endian or big-endian")
	return flags
}

// CompileFlagSet holds the flags that select and configure the descriptor
// compiler.
func CompileFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	def := Default()
	flags.String(FlagCompiler, def.Compiler, "descriptor compiler: protoc or protoparse")
	flags.String(FlagProtoc, "", "path to the protoc binary")
	flags.StringSliceP(FlagInclude, "I", nil, "import search directory, may be repeated")
	return flags
}

// ApplyFlags overrides c with every flag the user set explicitly.
func (c *Config) ApplyFlags(flags *pflag.FlagSet, logger logrus.FieldLogger) error {
	strs := map[string]*string{
		FlagCompiler:       &c.Compiler,
		FlagProtoc:         &c.Protoc,
		FlagOut:            &c.OutDir,
		FlagPackage:        &c.Package,
		FlagFloatByteOrder: &c.FloatByteOrder,
		FlagLogLevel:       &c.LogLevel,
		FlagLogFormat:      &c.LogFormat,
		FlagTempDir:        &c.TempDir,
	}
	for name, dst := range strs {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if flags.Lookup(FlagInclude) != nil && flags.Changed(FlagInclude) {
		v, err := flags.GetStringSlice(FlagInclude)
		if err != nil {
			return err
		}
		c.IncludePaths = v
	}
	if flags.Lookup(FlagWatchInterval) != nil && flags.Changed(FlagWatchInterval) {
		v, err := flags.GetDuration(FlagWatchInterval)
		if err != nil {
			return err
		}
		c.WatchInterval = v
	}
	if flags.Lookup("verbose") != nil && flags.Changed("verbose") && !flags.Changed(FlagLogLevel) {
		if v, _ := flags.GetBool("verbose"); v {
			c.LogLevel = logrus.DebugLevel.String()
		}
	}

	c.normalize(logger)
	return nil
}
