package core

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"codeassist/internal/config"
	"codeassist/pkg/corerpc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/emptypb"
)

func startTestServer(t *testing.T) (*Server, *grpc.ClientConn, string) {
	t.Helper()

	cfg := config.GetDefaultConfig()
	cfg.Core.StateFile = filepath.Join(t.TempDir(), "state.json")

	server, err := NewServer(cfg)
	require.NoError(t, err)

	grpcListener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	httpListener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(ctx, grpcListener, httpListener)
	}()

	conn, err := grpc.NewClient(grpcListener.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		cancel()
		select {
		case err := <-serveErr:
			assert.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Error("server did not shut down")
		}
	})

	return server, conn, httpListener.Addr().String()
}

func TestServer_StateService(t *testing.T) {
	_, conn, _ := startTestServer(t)
	client := corerpc.NewStateServiceClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := &corerpc.ProviderUpdate{
		Provider:   "oca",
		Updates:    map[string]any{"ocaMode": "internal"},
		UpdateMask: []string{"ocaMode", "ocaBaseUrl"},
	}
	msg, err := update.ToStruct()
	require.NoError(t, err)

	_, err = client.UpdateProviderPartial(ctx, msg)
	require.NoError(t, err)

	latest, err := client.GetLatestState(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ocaMode":"internal"}`, latest.GetValue())
}

func TestServer_AuthStatusStream(t *testing.T) {
	server, conn, _ := startTestServer(t)
	account := corerpc.NewAccountServiceClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := account.SubscribeToAuthStatusUpdate(ctx, &emptypb.Empty{})
	require.NoError(t, err)

	// The current state arrives first.
	first, err := stream.Recv()
	require.NoError(t, err)
	assert.Nil(t, corerpc.AuthStateFromStruct(first).User)

	// Wait until the server has registered the subscriber before publishing.
	require.Eventually(t, func() bool {
		return server.account.broadcaster.count() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, server.Store().Set(map[string]any{
		KeyAPIKey:   "token",
		KeyUserInfo: map[string]any{"uid": "user-1"},
	}))
	server.account.broadcaster.publish(server.Store().AuthState())

	next, err := stream.Recv()
	require.NoError(t, err)
	state := corerpc.AuthStateFromStruct(next)
	require.NotNil(t, state.User)
	assert.Equal(t, "user-1", state.User.UID)

	_, err = account.LogoutClicked(ctx, &emptypb.Empty{})
	require.NoError(t, err)

	cleared, err := stream.Recv()
	require.NoError(t, err)
	assert.Nil(t, corerpc.AuthStateFromStruct(cleared).APIKey)
}

func TestServer_Health(t *testing.T) {
	_, conn, httpAddr := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.Eventually(t, func() bool {
		resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
	}, 3*time.Second, 20*time.Millisecond)

	resp, err := http.Get("http://" + httpAddr + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
