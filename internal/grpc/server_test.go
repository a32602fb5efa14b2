package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestServerConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *ServerConfig) {}},
		{name: "empty address", mutate: func(c *ServerConfig) { c.Address = "" }, wantErr: true},
		{name: "no port", mutate: func(c *ServerConfig) { c.Address = "127.0.0.1" }, wantErr: true},
		{name: "zero recv size", mutate: func(c *ServerConfig) { c.MaxRecvMsgSize = 0 }, wantErr: true},
		{name: "zero send size", mutate: func(c *ServerConfig) { c.MaxSendMsgSize = 0 }, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultServerConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHealthEndpoint(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.Address = "127.0.0.1:0"
	server, err := NewServer(cfg)
	require.NoError(t, err)

	require.NoError(t, server.StartAsync())
	defer server.Stop()
	require.True(t, server.IsRunning())
	require.NotEmpty(t, server.Address())

	conn, err := grpc.NewClient(server.Address(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: healthServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)

	server.SetServing(true)
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: healthServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	server.SetServing(false)
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}

func TestStartTwiceFails(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.Address = "127.0.0.1:0"
	server, err := NewServer(cfg)
	require.NoError(t, err)

	require.NoError(t, server.StartAsync())
	defer server.Stop()

	assert.Error(t, server.StartAsync())
}
