package ingest

import (
	"context"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/test/bufconn"

	"github.com/wham/wiregen/internal/mapper"
)

func startReflectionServer(t *testing.T) *ReflectionClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	healthpb.RegisterHealthServer(s, health.NewServer())
	reflection.Register(s)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	c, err := NewReflectionClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	return c
}

func TestReflectionListServices(t *testing.T) {
	c := startReflectionServer(t)

	services, err := c.ListServices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"grpc.health.v1.Health"}, services)
}

func TestReflectionCompile(t *testing.T) {
	c := startReflectionServer(t)

	data, err := c.Compile(context.Background(), "grpc.health.v1.Health")
	require.NoError(t, err)

	f, err := Parse("grpc.health.v1.Health", data)
	require.NoError(t, err)
	assert.Equal(t, "grpc.health.v1", f.Package)
	_, ok := f.Message("HealthCheckRequest")
	assert.True(t, ok)

	resolved, err := mapper.Resolve(f, mapper.Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, resolved.Messages)
}

func TestReflectionUnknownSymbol(t *testing.T) {
	c := startReflectionServer(t)

	_, err := c.Compile(context.Background(), "no.such.Thing")
	var inv *CompilerInvocationError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "no.such.Thing", inv.Source)
}

func TestNewReflectionClient(t *testing.T) {
	tests := []struct {
		target string
		host   string
		tls    bool
	}{
		{"http://localhost:50051", "localhost:50051", false},
		{"https://api.example.com", "api.example.com", true},
		{"grpcs://api.example.com:8443", "api.example.com:8443", true},
		{"grpc://api.example.com:443", "api.example.com:443", true},
		{"localhost:50051", "localhost:50051", false},
		{"dns:///api.example.com:443", "dns:///api.example.com:443", false},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			c, err := NewReflectionClient(tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.host, c.target)
			assert.Equal(t, tt.tls, c.useTLS)
		})
	}

	_, err := NewReflectionClient("")
	assert.Error(t, err)
}

func TestShouldUseTLS(t *testing.T) {
	for raw, want := range map[string]bool{
		"https://example.com":     true,
		"grpcs://example.com":     true,
		"http://example.com:443":  true,
		"http://example.com:8080": false,
		"grpc://example.com":      false,
	} {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, want, ShouldUseTLS(u), raw)
	}
}
