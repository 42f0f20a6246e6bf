// Package plugin implements the protoc plugin protocol for wiregen.
package plugin

import (
	"fmt"
	"io"
	"path"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"

	"github.com/wham/wiregen/internal/emit"
	"github.com/wham/wiregen/internal/ingest"
	"github.com/wham/wiregen/internal/mapper"
)

type params struct {
	mapOptions  mapper.Options
	emitOptions emit.Options
}

// parseParameters reads the comma-separated key=value list protoc passes
// through --wiregen_opt.
func parseParameters(paramStr *string) (params, error) {
	var p params
	if paramStr == nil || *paramStr == "" {
		return p, nil
	}

	for _, param := range strings.Split(*paramStr, ",") {
		key, value, _ := strings.Cut(strings.TrimSpace(param), "=")
		switch key {
		case "":
		case "package":
			p.emitOptions.Package = value
		case "float_byte_order":
			order, err := mapper.ParseByteOrder(value)
			if err != nil {
				return p, err
			}
			p.mapOptions.FloatByteOrder = order
		default:
			return p, fmt.Errorf("unknown parameter %q", key)
		}
	}
	return p, nil
}

// Run reads a serialized CodeGeneratorRequest from r and writes the
// serialized response to w. Generation failures travel inside the response;
// only transport failures are returned.
func Run(r io.Reader, w io.Writer) error {
	input, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}
	req := &pluginpb.CodeGeneratorRequest{}
	if err := proto.Unmarshal(input, req); err != nil {
		return fmt.Errorf("failed to unmarshal request: %w", err)
	}
	output, err := proto.Marshal(Generate(req))
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	_, err = w.Write(output)
	return err
}

// Generate answers one plugin request. Failures are reported in the
// response's error field, as protoc expects, and no files are returned.
func Generate(req *pluginpb.CodeGeneratorRequest) *pluginpb.CodeGeneratorResponse {
	resp := &pluginpb.CodeGeneratorResponse{}
	resp.SupportedFeatures = proto.Uint64(uint64(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL))

	files, err := generate(req)
	if err != nil {
		resp.Error = proto.String(err.Error())
		return resp
	}
	resp.File = files
	return resp
}

func generate(req *pluginpb.CodeGeneratorRequest) ([]*pluginpb.CodeGeneratorResponse_File, error) {
	params, err := parseParameters(req.Parameter)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*descriptorpb.FileDescriptorProto, len(req.GetProtoFile()))
	for _, fd := range req.GetProtoFile() {
		byName[fd.GetName()] = fd
	}

	var files []*pluginpb.CodeGeneratorResponse_File
	for _, fileName := range req.GetFileToGenerate() {
		fd, ok := byName[fileName]
		if !ok {
			return nil, fmt.Errorf("%s: not found in request", fileName)
		}

		f, err := ingest.FromFileDescriptor(fd)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fileName, err)
		}
		resolved, err := mapper.Resolve(f, params.mapOptions)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fileName, err)
		}
		src, err := emit.Generate(resolved, params.emitOptions)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fileName, err)
		}

		files = append(files, &pluginpb.CodeGeneratorResponse_File{
			Name:    proto.String(path.Join(path.Dir(fileName), emit.OutputName(fileName))),
			Content: proto.String(string(src)),
		})
	}
	return files, nil
}
