// Package generate runs the compile, ingest, resolve and emit stages over a
// batch of schema sources.
package generate

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/wham/wiregen/internal/emit"
	"github.com/wham/wiregen/internal/ingest"
	"github.com/wham/wiregen/internal/mapper"
)

type Generator struct {
	Compiler    ingest.Compiler
	Fs          afero.Fs
	OutDir      string
	MapOptions  mapper.Options
	EmitOptions emit.Options
	Logger      logrus.FieldLogger
}

// SourceError names the source a pipeline stage failed on.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Run processes sources in order and returns the paths written. It stops at
// the first failing source; files written for earlier sources are kept and
// nothing is written for the failing one.
func (g *Generator) Run(ctx context.Context, sources []string) ([]string, error) {
	fs := g.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if err := fs.MkdirAll(g.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		path, err := g.one(ctx, fs, source)
		if err != nil {
			return written, &SourceError{Source: source, Err: err}
		}
		written = append(written, path)
	}
	g.logger().WithField("files", len(written)).Info("Generation completed successfully")
	return written, nil
}

func (g *Generator) one(ctx context.Context, fs afero.Fs, source string) (string, error) {
	logger := g.logger().WithField("source", source)

	logger.Debug("Compiling descriptor")
	data, err := g.Compiler.Compile(ctx, source)
	if err != nil {
		return "", err
	}

	logger.Debug("Ingesting descriptor")
	file, err := ingest.Parse(source, data)
	if err != nil {
		return "", err
	}

	logger.WithFields(logrus.Fields{
		"messages": len(file.Messages),
		"enums":    len(file.Enums),
	}).Debug("Resolving field types")
	resolved, err := mapper.Resolve(file, g.MapOptions)
	if err != nil {
		return "", err
	}

	src, err := emit.Generate(resolved, g.EmitOptions)
	if err != nil {
		return "", err
	}

	name := file.Name
	if name == "" {
		name = source
	}
	path := filepath.Join(g.OutDir, emit.OutputName(name))
	if err := afero.WriteFile(fs, path, src, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.WithField("output", path).Info("Generated")
	return path, nil
}

func (g *Generator) logger() logrus.FieldLogger {
	if g.Logger == nil {
		return logrus.StandardLogger()
	}
	return g.Logger
}
