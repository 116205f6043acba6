package logger

import (
	"context"
	"fmt"
	"runtime/debug"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/narwhalmedia/catalog/pkg/interfaces"
)

// UnaryRecoveryInterceptor turns panics in unary handlers into Internal errors.
func UnaryRecoveryInterceptor(logger interfaces.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = recovered(logger, info.FullMethod, r)
			}
		}()

		return handler(ctx, req)
	}
}

// StreamRecoveryInterceptor turns panics in streaming handlers into Internal errors.
func StreamRecoveryInterceptor(logger interfaces.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = recovered(logger, info.FullMethod, r)
			}
		}()

		return handler(srv, ss)
	}
}

func recovered(logger interfaces.Logger, method string, r interface{}) error {
	logger.Error("Panic recovered",
		interfaces.String("method", method),
		interfaces.String("panic", fmt.Sprint(r)),
		interfaces.String("stack", string(debug.Stack())))
	return status.Error(codes.Internal, "internal server error")
}
