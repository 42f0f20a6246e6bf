package ingest

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/spf13/afero"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Parser compiles .proto sources in process, without an external binary.
// It produces the same descriptor bytes protoc -o would.
type Parser struct {
	Fs           afero.Fs
	IncludePaths []string
}

func (p *Parser) Compile(ctx context.Context, source string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	includes, name := locate(p.IncludePaths, source)
	parser := protoparse.Parser{
		ImportPaths: includes,
		Accessor: protoparse.FileAccessor(func(filename string) (io.ReadCloser, error) {
			return p.fs().Open(filename)
		}),
	}

	fds, err := parser.ParseFiles(name)
	if err != nil {
		return nil, &CompilerInvocationError{Source: source, Compiler: "protoparse", ExitCode: -1, Err: err}
	}

	set := &descriptorpb.FileDescriptorSet{
		File: []*descriptorpb.FileDescriptorProto{fds[0].AsFileDescriptorProto()},
	}
	return proto.Marshal(set)
}

// locate returns the import paths and the source name relative to the one
// that contains it, mirroring how protoc names files. A source outside every
// include path gets its own directory prepended.
func locate(includePaths []string, source string) ([]string, string) {
	if len(includePaths) == 0 {
		return []string{filepath.Dir(source)}, filepath.Base(source)
	}
	clean := filepath.Clean(source)
	for _, inc := range includePaths {
		rel, err := filepath.Rel(filepath.Clean(inc), clean)
		if err == nil && !strings.HasPrefix(rel, "..") {
			return includePaths, filepath.ToSlash(rel)
		}
	}
	return append([]string{filepath.Dir(source)}, includePaths...), filepath.Base(source)
}

func (p *Parser) fs() afero.Fs {
	if p.Fs == nil {
		return afero.NewOsFs()
	}
	return p.Fs
}
