package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeassist/internal/oauth"
	"codeassist/pkg/corerpc"
	"codeassist/pkg/logging"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// DefaultDialTimeout bounds how long Dial waits for the core to report healthy.
const DefaultDialTimeout = 5 * time.Second

// DialStage describes where a dial attempt failed.
type DialStage string

const (
	// DialStageConnect indicates the connection could not be set up.
	DialStageConnect DialStage = "connect"
	// DialStageHealth indicates the core did not report SERVING.
	DialStageHealth DialStage = "health"
)

// DialError wraps dial and health check failures with a stage indicator.
type DialError struct {
	Address string
	Stage   DialStage
	Err     error
}

// Error implements the error interface.
func (e *DialError) Error() string {
	return fmt.Sprintf("core at %s: %s failed: %v", e.Address, e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *DialError) Unwrap() error {
	return e.Err
}

// CoreClient talks to the core process over one long-lived gRPC connection.
// It serves as the configuration store and the account RPC client.
type CoreClient struct {
	conn    *grpc.ClientConn
	account corerpc.AccountServiceClient
	state   corerpc.StateServiceClient
}

// Dial connects to the core at addr and waits for its health check to pass.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*CoreClient, error) {
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, &DialError{Address: addr, Stage: DialStageConnect, Err: err}
	}

	healthCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(healthCtx, &healthpb.HealthCheckRequest{}, grpc.WaitForReady(true))
	if err == nil && resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		err = fmt.Errorf("status %s", resp.GetStatus())
	}
	if err != nil {
		conn.Close()
		return nil, &DialError{Address: addr, Stage: DialStageHealth, Err: err}
	}

	logging.Debug("Client", "Connected to core at %s", addr)
	return &CoreClient{
		conn:    conn,
		account: corerpc.NewAccountServiceClient(conn),
		state:   corerpc.NewStateServiceClient(conn),
	}, nil
}

// NewCoreClient wraps an existing connection.
func NewCoreClient(conn grpc.ClientConnInterface) *CoreClient {
	return &CoreClient{
		account: corerpc.NewAccountServiceClient(conn),
		state:   corerpc.NewStateServiceClient(conn),
	}
}

// Close releases the connection if the client owns one.
func (c *CoreClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// LoginInitiate asks the core to start a login whose redirect lands on
// callbackURI, and returns the authorization URL.
func (c *CoreClient) LoginInitiate(ctx context.Context, callbackURI string) (string, error) {
	resp, err := c.account.LoginClicked(ctx, wrapperspb.String(callbackURI))
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	if resp.GetValue() == "" {
		return "", errors.New("login request returned no authorization URL")
	}
	return resp.GetValue(), nil
}

// Logout signs the user out in the core.
func (c *CoreClient) Logout(ctx context.Context) error {
	if _, err := c.account.LogoutClicked(ctx, &emptypb.Empty{}); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// SubscribeAuthStatus opens the auth status stream. The stream ends when ctx
// is cancelled.
func (c *CoreClient) SubscribeAuthStatus(ctx context.Context) (oauth.AuthStatusStream, error) {
	stream, err := c.account.SubscribeToAuthStatusUpdate(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, err
	}
	return &authStatusStream{stream: stream}, nil
}

// GetLatestState returns the core's state document.
func (c *CoreClient) GetLatestState(ctx context.Context) (string, error) {
	resp, err := c.state.GetLatestState(ctx, &emptypb.Empty{})
	if err != nil {
		return "", fmt.Errorf("failed to read state: %w", err)
	}
	return resp.GetValue(), nil
}

// UpdateProviderPartial sends a masked provider update.
func (c *CoreClient) UpdateProviderPartial(ctx context.Context, update *corerpc.ProviderUpdate) error {
	msg, err := update.ToStruct()
	if err != nil {
		return err
	}
	if _, err := c.state.UpdateProviderPartial(ctx, msg); err != nil {
		return fmt.Errorf("failed to update %s settings: %w", update.Provider, err)
	}
	return nil
}

type authStatusStream struct {
	stream grpc.ServerStreamingClient[structpb.Struct]
}

func (s *authStatusStream) Recv() (*corerpc.AuthState, error) {
	msg, err := s.stream.Recv()
	if err != nil {
		return nil, err
	}
	return corerpc.AuthStateFromStruct(msg), nil
}
