package ingest

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	reflectionpb "google.golang.org/grpc/reflection/grpc_reflection_v1"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

// ReflectionClient obtains descriptors from a live gRPC server through the
// server reflection service. As a Compiler, the source it compiles is a fully
// qualified symbol name such as "pkg.Service" or "pkg.Message".
type ReflectionClient struct {
	target      string
	useTLS      bool
	dialOptions []grpc.DialOption
}

// NewReflectionClient creates a client for target. http, https, grpc and
// grpcs URLs are reduced to their host; anything else is passed to gRPC
// unchanged, so resolver targets like "dns:///host:443" work too.
func NewReflectionClient(target string, opts ...grpc.DialOption) (*ReflectionClient, error) {
	if target == "" {
		return nil, fmt.Errorf("reflection target is required")
	}
	c := &ReflectionClient{target: target, dialOptions: opts}
	if !strings.Contains(target, "://") {
		return c, nil
	}
	parsed, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("failed to parse target URL: %w", err)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "grpc", "grpcs":
		c.target = parsed.Host
		c.useTLS = ShouldUseTLS(parsed)
	}
	return c, nil
}

// ShouldUseTLS reports whether target implies TLS: an https or grpcs scheme,
// or port 443.
func ShouldUseTLS(target *url.URL) bool {
	scheme := strings.ToLower(target.Scheme)
	if scheme == "https" || scheme == "grpcs" {
		return true
	}
	return target.Port() == "443"
}

// ListServices returns the services the server exposes, sorted, without the
// reflection service itself.
func (c *ReflectionClient) ListServices(ctx context.Context) ([]string, error) {
	var services []string
	err := c.withStream(ctx, func(stream reflectionpb.ServerReflection_ServerReflectionInfoClient) error {
		resp, err := roundTrip(stream, &reflectionpb.ServerReflectionRequest{
			MessageRequest: &reflectionpb.ServerReflectionRequest_ListServices{ListServices: ""},
		})
		if err != nil {
			return err
		}
		listResp := resp.GetListServicesResponse()
		if listResp == nil {
			return fmt.Errorf("unexpected response type")
		}
		for _, svc := range listResp.GetService() {
			if name := svc.GetName(); !strings.HasPrefix(name, "grpc.reflection.") {
				services = append(services, name)
			}
		}
		return nil
	})
	sort.Strings(services)
	return services, err
}

// Compile fetches the file that declares symbol and returns it as the first
// and only file of a serialized FileDescriptorSet.
func (c *ReflectionClient) Compile(ctx context.Context, symbol string) ([]byte, error) {
	var fd *descriptorpb.FileDescriptorProto
	err := c.withStream(ctx, func(stream reflectionpb.ServerReflection_ServerReflectionInfoClient) error {
		resp, err := roundTrip(stream, &reflectionpb.ServerReflectionRequest{
			MessageRequest: &reflectionpb.ServerReflectionRequest_FileContainingSymbol{
				FileContainingSymbol: symbol,
			},
		})
		if err != nil {
			return err
		}
		fdResp := resp.GetFileDescriptorResponse()
		if fdResp == nil {
			return fmt.Errorf("unexpected response type")
		}
		fd, err = declaringFile(fdResp.GetFileDescriptorProto(), symbol)
		return err
	})
	if err != nil {
		return nil, &CompilerInvocationError{Source: symbol, Compiler: "reflection " + c.target, ExitCode: -1, Err: err}
	}
	return proto.Marshal(&descriptorpb.FileDescriptorSet{File: []*descriptorpb.FileDescriptorProto{fd}})
}

func (c *ReflectionClient) withStream(ctx context.Context, fn func(reflectionpb.ServerReflection_ServerReflectionInfoClient) error) error {
	var creds credentials.TransportCredentials
	if c.useTLS {
		creds = credentials.NewTLS(&tls.Config{})
	} else {
		creds = insecure.NewCredentials()
	}

	opts := append([]grpc.DialOption{grpc.WithTransportCredentials(creds)}, c.dialOptions...)
	conn, err := grpc.NewClient(c.target, opts...)
	if err != nil {
		return fmt.Errorf("failed to create gRPC client: %w", err)
	}
	defer conn.Close()

	stream, err := reflectionpb.NewServerReflectionClient(conn).ServerReflectionInfo(ctx)
	if err != nil {
		return fmt.Errorf("failed to create reflection stream: %w", err)
	}
	defer stream.CloseSend()

	return fn(stream)
}

func roundTrip(stream reflectionpb.ServerReflection_ServerReflectionInfoClient, req *reflectionpb.ServerReflectionRequest) (*reflectionpb.ServerReflectionResponse, error) {
	if err := stream.Send(req); err != nil {
		return nil, fmt.Errorf("failed to send reflection request: %w", err)
	}
	resp, err := stream.Recv()
	if err != nil {
		return nil, fmt.Errorf("failed to receive reflection response: %w", err)
	}
	if errResp := resp.GetErrorResponse(); errResp != nil {
		return nil, fmt.Errorf("reflection error: %s", errResp.GetErrorMessage())
	}
	return resp, nil
}

// declaringFile picks, among the returned files, the one that declares
// symbol at top level. The server lists it first, but dependencies may
// precede it when they were not sent on this stream before.
func declaringFile(raw [][]byte, symbol string) (*descriptorpb.FileDescriptorProto, error) {
	var first *descriptorpb.FileDescriptorProto
	for _, b := range raw {
		fd := &descriptorpb.FileDescriptorProto{}
		if err := proto.Unmarshal(b, fd); err != nil {
			return nil, fmt.Errorf("failed to unmarshal file descriptor: %w", err)
		}
		if first == nil {
			first = fd
		}
		if declares(fd, symbol) {
			return fd, nil
		}
	}
	if first == nil {
		return nil, fmt.Errorf("no file descriptors returned for %s", symbol)
	}
	return first, nil
}

func declares(fd *descriptorpb.FileDescriptorProto, symbol string) bool {
	prefix := ""
	if fd.GetPackage() != "" {
		prefix = fd.GetPackage() + "."
	}
	local, ok := strings.CutPrefix(symbol, prefix)
	if !ok {
		return false
	}
	top, _, _ := strings.Cut(local, ".")
	for _, m := range fd.GetMessageType() {
		if m.GetName() == top {
			return true
		}
	}
	for _, e := range fd.GetEnumType() {
		if e.GetName() == top {
			return true
		}
	}
	for _, s := range fd.GetService() {
		if s.GetName() == top {
			return true
		}
	}
	return false
}
