// Package logging builds the logrus logger shared by the wiregen commands.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// New returns a logger writing to out at level in format ("text" or "json").
// Text output is colored when out is a terminal.
func New(out io.Writer, level, format string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := &logrus.Logger{
		Out:   out,
		Hooks: make(logrus.LevelHooks),
		Level: lvl,
	}
	if err := Configure(logger, level, format); err != nil {
		return nil, err
	}
	return logger, nil
}

// Configure applies level and format to an existing logger.
func Configure(logger *logrus.Logger, level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logger.SetLevel(lvl)

	switch format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.Debug("Logger format: JSON")
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{ForceColors: isTerminal(logger.Out)})
		logger.Debug("Logger format: TEXT")
	default:
		return fmt.Errorf("unsupported log format %q", format)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
