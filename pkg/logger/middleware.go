package logger

import (
	"context"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/narwhalmedia/catalog/pkg/interfaces"
)

// HTTPMiddleware logs every request once it has been served and stores a
// request-scoped logger in the request context.
func HTTPMiddleware(logger interfaces.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := r.Context()
			if id := chimiddleware.GetReqID(ctx); id != "" {
				ctx = WithRequestID(ctx, id)
			}
			reqLogger := logger.WithContext(ctx)
			ctx = WithContext(ctx, reqLogger)

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			fields := []interfaces.Field{
				interfaces.String("method", r.Method),
				interfaces.String("path", r.URL.Path),
				interfaces.Int("status", ww.Status()),
				interfaces.Int("bytes", ww.BytesWritten()),
				interfaces.Duration("duration", time.Since(start)),
			}

			switch {
			case ww.Status() >= http.StatusInternalServerError:
				reqLogger.Error("HTTP request failed", fields...)
			case ww.Status() >= http.StatusBadRequest:
				reqLogger.Warn("HTTP request rejected", fields...)
			default:
				reqLogger.Info("HTTP request completed", fields...)
			}
		})
	}
}

// UnaryServerInterceptor returns a gRPC unary server interceptor for logging
func UnaryServerInterceptor(logger interfaces.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		ctx = WithContext(ctx, logger)

		resp, err := handler(ctx, req)

		code := codes.OK
		if err != nil {
			if s, ok := status.FromError(err); ok {
				code = s.Code()
			} else {
				code = codes.Unknown
			}
		}

		fields := []interfaces.Field{
			interfaces.String("method", info.FullMethod),
			interfaces.Duration("duration", time.Since(start)),
			interfaces.String("status", code.String()),
		}

		if err != nil {
			fields = append(fields, interfaces.Error(err))
			logger.Error("gRPC request failed", fields...)
		} else {
			logger.Debug("gRPC request completed", fields...)
		}

		return resp, err
	}
}
