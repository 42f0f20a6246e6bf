package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wham/wiregen/internal/tempdir"
)

// Protoc compiles sources by running the external protoc binary.
type Protoc struct {
	// Path to the protoc binary; "protoc" is looked up on PATH when empty.
	Path string
	// IncludePaths are passed as -I flags. The source's directory is added
	// when none of them contains it.
	IncludePaths []string
	// TempRoot is where scoped directories are created; see tempdir.Base.
	TempRoot string
	Logger   logrus.FieldLogger
}

func (p *Protoc) binary() string {
	if p.Path == "" {
		return "protoc"
	}
	return p.Path
}

// Compile runs `protoc -o <tmp> -I<include>... <source>` and returns the
// bytes protoc wrote. The scoped directory is removed on every path.
func (p *Protoc) Compile(ctx context.Context, source string) ([]byte, error) {
	logger := p.logger().WithField("source", source)

	dir, err := tempdir.New(p.TempRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() {
		if err := tempdir.Remove(dir); err != nil {
			logger.WithError(err).Warn("Failed to remove temp directory")
		}
	}()

	out := filepath.Join(dir, "descriptor.pb")
	args := []string{"-o", out}
	includes, _ := locate(p.IncludePaths, source)
	for _, inc := range includes {
		args = append(args, "-I"+inc)
	}
	args = append(args, source)

	logger.Debugf("Running %s %s", p.binary(), strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, p.binary(), args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		invErr := &CompilerInvocationError{
			Source:   source,
			Compiler: "protoc",
			ExitCode: -1,
			Stderr:   stderr.String(),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			invErr.ExitCode = exitErr.ExitCode()
			invErr.Err = nil
		}
		logger.WithError(invErr).Error("Failed to run protoc")
		return nil, invErr
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, &CompilerInvocationError{
			Source:   source,
			Compiler: "protoc",
			ExitCode: 0,
			Stderr:   stderr.String(),
			Err:      fmt.Errorf("no descriptor written: %w", err),
		}
	}

	logger.Debug("Protoc completed successfully")
	return data, nil
}

func (p *Protoc) logger() logrus.FieldLogger {
	if p.Logger == nil {
		return logrus.StandardLogger()
	}
	return p.Logger
}
