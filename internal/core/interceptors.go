package core

import (
	"context"
	"time"

	"codeassist/pkg/logging"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// loggingUnaryInterceptor logs every unary call with its status code.
func loggingUnaryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	logging.Debug("Core", "%s %s (%v)", info.FullMethod, status.Code(err), time.Since(start).Round(time.Millisecond))
	return resp, err
}

// loggingStreamInterceptor logs stream lifetimes.
func loggingStreamInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	logging.Debug("Core", "%s stream opened", info.FullMethod)
	start := time.Now()
	err := handler(srv, ss)
	logging.Debug("Core", "%s stream closed %s after %v", info.FullMethod, status.Code(err), time.Since(start).Round(time.Millisecond))
	return err
}
